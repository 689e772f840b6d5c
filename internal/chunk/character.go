package chunk

import "ragline/internal/document"

// CharacterSplitter slides a fixed-size character window over the raw text.
// Windows are counted in runes, not bytes, so multi-byte text is never cut
// mid-character. The tokenizer is only used to record a token count for each
// window.
type CharacterSplitter struct {
	size      int
	overlap   int
	tokenizer Tokenizer
}

func NewCharacterSplitter(size, overlap int, tokenizer Tokenizer) (*CharacterSplitter, error) {
	if err := validateWindow(size, overlap); err != nil {
		return nil, err
	}
	return &CharacterSplitter{size: size, overlap: overlap, tokenizer: tokenizer}, nil
}

func (s *CharacterSplitter) Chunk(doc document.Document) ([]document.Document, error) {
	runes := []rune(doc.Content)
	step := s.size - s.overlap

	var chunks []document.Document
	for start := 0; start < len(runes); start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		chunkText := string(runes[start:end])

		meta := doc.CloneMetadata()
		meta[MetaStrategy] = "character"
		meta[MetaChunkSize] = s.size
		meta[MetaOverlap] = s.overlap
		meta[MetaTokenCount] = len(s.tokenizer.Encode(chunkText))

		chunks = append(chunks, document.Document{Content: chunkText, Metadata: meta})
	}
	return chunks, nil
}
