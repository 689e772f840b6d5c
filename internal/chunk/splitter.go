// Package chunk splits documents into overlapping windows for embedding.
// Two strategies exist: a character window over the raw text and a token
// window over the encoded token sequence. Both stamp each produced chunk
// with the configuration that created it.
package chunk

import (
	"errors"
	"fmt"

	"ragline/internal/document"
)

// Metadata keys attached to every produced chunk.
const (
	MetaStrategy   = "chunk_strategy"
	MetaChunkSize  = "chunk_size"
	MetaOverlap    = "chunk_overlap"
	MetaTokenCount = "token_count"
)

var ErrInvalidWindow = errors.New("invalid chunk window")

// Splitter is the capability of splitting one document into ordered,
// overlapping pieces.
type Splitter interface {
	Chunk(doc document.Document) ([]document.Document, error)
}

// Tokenizer converts between text and token sequences. The character
// strategy uses it for measurement only; the token strategy windows over
// its output.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// validateWindow rejects configurations where the step size - overlap would
// be non-positive and the sliding loop would never terminate.
func validateWindow(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidWindow, size)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: chunk_overlap must be non-negative, got %d", ErrInvalidWindow, overlap)
	}
	if overlap >= size {
		return fmt.Errorf("%w: chunk_overlap %d must be less than chunk_size %d", ErrInvalidWindow, overlap, size)
	}
	return nil
}
