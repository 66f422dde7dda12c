// Package tools exposes the document-editing operations an agent calls by
// name. Each tool declares a JSON schema for its arguments, reads the
// current document through an editor.Editor, and applies at most one
// transaction.
package tools

import (
	"context"
	"encoding/json"

	"github.com/dgallion1/docedit/internal/editor"
)

// Category groups tools for listing.
type Category string

const (
	CategoryRead    Category = "read"
	CategoryInsert  Category = "insert"
	CategoryDelete  Category = "delete"
	CategoryColumns Category = "columns"
)

// Property describes one argument in a tool schema.
type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Default     any                 `json:"default,omitempty"`
	Minimum     *int                `json:"minimum,omitempty"`
	Maximum     *int                `json:"maximum,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

// Schema is the JSON schema of a tool's arguments.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Handler runs a tool against an editor. args is the raw JSON object the
// agent sent.
type Handler func(ctx context.Context, ed editor.Editor, args json.RawMessage) (any, error)

// Tool is a named, schema-described operation.
type Tool struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Schema      Schema   `json:"parameters"`
	Mutates     bool     `json:"mutates"`
	Handler     Handler  `json:"-"`
}

// Validate checks that the tool can be registered.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Handler == nil {
		return ErrHandlerNil
	}
	return nil
}

// ErrorResult is what an agent receives when a tool fails.
type ErrorResult struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// InsertResult reports a successful insertion.
type InsertResult struct {
	Success      bool `json:"success"`
	InsertedAt   int  `json:"insertedAt"`
	InsertedSize int  `json:"insertedSize"`
	Count        int  `json:"count,omitempty"`
}

// DeleteResult reports a successful deletion.
type DeleteResult struct {
	Success         bool   `json:"success"`
	DeletedFrom     int    `json:"deletedFrom"`
	DeletedTo       int    `json:"deletedTo"`
	DeletedSize     int    `json:"deletedSize"`
	DeletedText     string `json:"deletedText,omitempty"`
	Context         string `json:"context,omitempty"`
	RemainingBlocks *int   `json:"remainingBlocks,omitempty"`
}

func intPtr(v int) *int { return &v }
