package docpos

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name      string
		from, to  int
		docSize   int
		wantBound string
	}{
		{"whole document", 0, 18, 20, ""},
		{"single unit", 5, 6, 20, ""},
		{"negative from", -1, 5, 20, "from"},
		{"from past end", 19, 19, 20, "from"},
		{"to past end", 2, 19, 20, "to"},
		{"empty range", 4, 4, 20, "order"},
		{"reversed", 6, 4, 20, "order"},
		{"minimal doc", 0, 1, 2, "to"},
	}
	for _, tt := range tests {
		err := ValidateRange(tt.from, tt.to, tt.docSize)
		if tt.wantBound == "" {
			if err != nil {
				t.Errorf("%s: expected valid, got %v", tt.name, err)
			}
			continue
		}
		var rerr *RangeError
		if !errors.As(err, &rerr) {
			t.Errorf("%s: expected RangeError, got %v", tt.name, err)
			continue
		}
		if rerr.Bound != tt.wantBound {
			t.Errorf("%s: expected bound %s, got %s", tt.name, tt.wantBound, rerr.Bound)
		}
		if !strings.Contains(err.Error(), "document size is 20") && tt.docSize == 20 {
			t.Errorf("%s: expected message to name the document size, got %q", tt.name, err.Error())
		}
	}
}

func TestValidateRangeExhaustive(t *testing.T) {
	for docSize := 2; docSize <= 8; docSize++ {
		for from := -2; from <= docSize; from++ {
			for to := -2; to <= docSize; to++ {
				valid := from >= 0 && from <= docSize-2 && to <= docSize-2 && from < to
				err := ValidateRange(from, to, docSize)
				if (err == nil) != valid {
					t.Fatalf("docSize=%d from=%d to=%d: expected valid=%v, got %v", docSize, from, to, valid, err)
				}
			}
		}
	}
}

func TestValidatePosition(t *testing.T) {
	if err := ValidatePosition(18, 20); err != nil {
		t.Errorf("expected 18 valid in size 20, got %v", err)
	}
	if err := ValidatePosition(19, 20); err == nil {
		t.Error("expected 19 invalid in size 20")
	}
}

func TestCalculateChunkSize(t *testing.T) {
	if got := CalculateChunkSize(5, 20); got != 13 {
		t.Errorf("expected 13, got %d", got)
	}
	if got := CalculateChunkSize(0, 10000); got != MaxChunkSize {
		t.Errorf("expected %d, got %d", MaxChunkSize, got)
	}
	if got := CalculateChunkSize(30, 20); got != 0 {
		t.Errorf("expected 0 past the end, got %d", got)
	}
	if got := ChunkSizeWithin(0, 100, 10); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
}
