package chunk

import (
	"strings"

	"ragline/internal/document"
)

// TokenSplitter encodes the full document once and slides a fixed-size
// window over the token sequence, decoding each window back to text. The
// recorded token_count is exact: it is the window length. A window may begin
// or end inside a multi-byte character when BPE byte-fallback tokens are
// split; the leftover bytes are replaced with U+FFFD so stored chunk text is
// always valid UTF-8.
type TokenSplitter struct {
	size      int
	overlap   int
	tokenizer Tokenizer
}

func NewTokenSplitter(size, overlap int, tokenizer Tokenizer) (*TokenSplitter, error) {
	if err := validateWindow(size, overlap); err != nil {
		return nil, err
	}
	return &TokenSplitter{size: size, overlap: overlap, tokenizer: tokenizer}, nil
}

func (s *TokenSplitter) Chunk(doc document.Document) ([]document.Document, error) {
	tokens := s.tokenizer.Encode(doc.Content)
	step := s.size - s.overlap

	var chunks []document.Document
	for start := 0; start < len(tokens); start += step {
		end := start + s.size
		if end > len(tokens) {
			end = len(tokens)
		}
		window := tokens[start:end]

		meta := doc.CloneMetadata()
		meta[MetaStrategy] = "token"
		meta[MetaChunkSize] = s.size
		meta[MetaOverlap] = s.overlap
		meta[MetaTokenCount] = len(window)

		content := strings.ToValidUTF8(s.tokenizer.Decode(window), "�")
		chunks = append(chunks, document.Document{Content: content, Metadata: meta})
	}
	return chunks, nil
}
