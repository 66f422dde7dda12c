package tools

import (
	"encoding/json"
)

// decode unmarshals tool arguments into v.
func decode(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return invalidf("%v", err)
	}
	return nil
}

func object(required []string, props map[string]Property) Schema {
	return Schema{Type: "object", Properties: props, Required: required}
}

func intProp(desc string) Property { return Property{Type: "integer", Description: desc} }

func strProp(desc string) Property { return Property{Type: "string", Description: desc} }

func boolProp(desc string) Property { return Property{Type: "boolean", Description: desc} }

func enumProp(desc string, values ...string) Property {
	return Property{Type: "string", Description: desc, Enum: values}
}

func rangeProp(desc string, lo, hi int) Property {
	return Property{Type: "integer", Description: desc, Minimum: intPtr(lo), Maximum: intPtr(hi)}
}

// occurrenceOr returns a 1-based occurrence, defaulting to 1.
func occurrenceOr(p *int) (int, error) {
	if p == nil {
		return 1, nil
	}
	if *p < 1 {
		return 0, invalidf("occurrence must be >= 1, got %d", *p)
	}
	return *p, nil
}
