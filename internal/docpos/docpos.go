// Package docpos validates positions and ranges against a document size.
// The outer two units of every document are its own open and close tokens
// and are never addressable, so valid positions lie in [0, docSize-2].
package docpos

import "fmt"

// Read limits shared by the chunked read tools.
const (
	MaxChunkSize    = 4000
	MaxNodesPerRead = 50
	MaxCharsPerRead = 6000
	ContextWindow   = 100
)

// RangeError reports which bound a position or range violated.
type RangeError struct {
	Bound   string // "from", "to" or "order"
	Value   int
	Limit   int
	DocSize int
}

func (e *RangeError) Error() string {
	switch e.Bound {
	case "order":
		return fmt.Sprintf("invalid range: from (%d) must be less than to (%d); document size is %d", e.Limit, e.Value, e.DocSize)
	case "from":
		if e.Value < 0 {
			return fmt.Sprintf("invalid from position %d: must be >= 0; document size is %d", e.Value, e.DocSize)
		}
	}
	return fmt.Sprintf("invalid %s position %d: must be <= %d; document size is %d", e.Bound, e.Value, e.Limit, e.DocSize)
}

// MaxPos is the last addressable position of a document of the given size.
func MaxPos(docSize int) int {
	return docSize - 2
}

// ValidatePosition checks a single position.
func ValidatePosition(pos, docSize int) error {
	limit := MaxPos(docSize)
	if pos < 0 || pos > limit {
		return &RangeError{Bound: "from", Value: pos, Limit: limit, DocSize: docSize}
	}
	return nil
}

// ValidateRange checks a half-open range [from, to).
func ValidateRange(from, to, docSize int) error {
	if err := ValidatePosition(from, docSize); err != nil {
		return err
	}
	limit := MaxPos(docSize)
	if to > limit {
		return &RangeError{Bound: "to", Value: to, Limit: limit, DocSize: docSize}
	}
	if from >= to {
		return &RangeError{Bound: "order", Value: to, Limit: from, DocSize: docSize}
	}
	return nil
}

// CalculateChunkSize clamps a read starting at from to the default chunk
// size and to what remains of the document.
func CalculateChunkSize(from, docSize int) int {
	return ChunkSizeWithin(from, docSize, MaxChunkSize)
}

// ChunkSizeWithin is CalculateChunkSize with a caller-supplied maximum.
func ChunkSizeWithin(from, docSize, maxChunk int) int {
	return max(0, min(maxChunk, MaxPos(docSize)-from))
}
