// Package token wraps the tiktoken BPE encodings used to measure and window
// chunk text.
package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenizer resolves a tiktoken encoding by name (e.g. "o200k_base").
func NewTokenizer(encodingName string) (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("unknown tiktoken encoding %q: %w", encodingName, err)
	}
	return &Tokenizer{encoding: enc}, nil
}

func (t *Tokenizer) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

func (t *Tokenizer) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}
