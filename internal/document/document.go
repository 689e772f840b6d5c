package document

// Document is the unit of text consumed by chunking. It is not itself
// persisted; the store derives document, chunk and embedding rows from the
// chunks produced out of it.
type Document struct {
	Content  string
	Metadata map[string]any
}

// CloneMetadata returns an independent copy of the document's metadata, so
// that per-chunk mutation never leaks back into the source document or into
// sibling chunks.
func (d Document) CloneMetadata() map[string]any {
	meta := make(map[string]any, len(d.Metadata))
	for k, v := range d.Metadata {
		meta[k] = v
	}
	return meta
}
