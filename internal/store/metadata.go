package store

// documentMetadataKeys is the fixed set of keys that belong on the document
// record rather than on individual chunks. The two scopes are disjoint: a
// key in this set is stripped from every stored chunk's metadata, and vice
// versa.
var documentMetadataKeys = map[string]struct{}{
	"file_name":        {},
	"file_type":        {},
	"file_size":        {},
	"author":           {},
	"tags":             {},
	"ingestion_job_id": {},
}

// DocumentMetadata returns the document-scope subset of a chunk metadata map.
func DocumentMetadata(meta map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range meta {
		if _, ok := documentMetadataKeys[k]; ok {
			out[k] = v
		}
	}
	return out
}

// ChunkMetadata returns the chunk-scope remainder of a chunk metadata map.
func ChunkMetadata(meta map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range meta {
		if _, ok := documentMetadataKeys[k]; !ok {
			out[k] = v
		}
	}
	return out
}
