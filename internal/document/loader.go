package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrUnsupportedFormat = errors.New("unsupported file extension")

// Load reads the file at path and converts it into one or more Documents.
// Plain text yields a single Document; PDFs yield one Document per page,
// each stamped with its page number.
func Load(path string) ([]Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt":
		return loadText(path)
	case ".pdf":
		return loadPDF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func loadText(path string) ([]Document, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI invocation
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	return []Document{{
		Content: string(content),
		Metadata: map[string]any{
			"file_name": filepath.Base(path),
			"file_type": "text/plain",
			"file_size": info.Size(),
		},
	}}, nil
}

func loadPDF(path string) ([]Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	author := strings.TrimSpace(pdfCtx.Author)
	if author == "" {
		author = "Unknown"
	}

	base := Document{Metadata: map[string]any{
		"file_name": filepath.Base(path),
		"file_type": "application/pdf",
		"file_size": info.Size(),
		"author":    author,
	}}

	pageTexts, err := extractPageTexts(path, pdfCtx.PageCount)
	if err != nil {
		return nil, err
	}

	var docs []Document
	for pageNum := 1; pageNum <= pdfCtx.PageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		if text == "" {
			continue
		}
		meta := base.CloneMetadata()
		meta["page_number"] = pageNum
		docs = append(docs, Document{Content: text, Metadata: meta})
	}
	return docs, nil
}

// extractPageTexts runs pdfcpu content extraction into a scratch directory
// and maps page number to the text recovered from that page's content stream.
func extractPageTexts(path string, pageCount int) (map[int]string, error) {
	outDir, err := os.MkdirTemp("", "ragline-pdf-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract pdf content: %w", err)
	}

	pageTexts := make(map[int]string, pageCount)
	files, err := os.ReadDir(outDir)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		pageNum, ok := pageNumberFromName(file.Name())
		if !ok {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name())) // #nosec G304 -- scratch dir created above
		if err != nil {
			continue
		}
		pageTexts[pageNum] = textFromContentStream(string(content))
	}
	return pageTexts, nil
}

func pageNumberFromName(name string) (int, bool) {
	// pdfcpu names extracted files "<base>_Content_page_<n>.txt" depending
	// on version; match the trailing page number either way.
	var n int
	if idx := strings.LastIndex(name, "page_"); idx >= 0 {
		if _, err := fmt.Sscanf(name[idx:], "page_%d", &n); err == nil {
			return n, true
		}
	}
	return 0, false
}

// textFromContentStream pulls the literal strings out of Tj/TJ text-show
// operators in a decoded PDF content stream. It keeps one line per text run,
// which is enough for the text-based PDFs this pipeline ingests.
func textFromContentStream(content string) string {
	var b strings.Builder
	depth := 0
	escaped := false
	for i := 0; i < len(content); i++ {
		ch := content[i]
		if depth > 0 {
			switch {
			case escaped:
				switch ch {
				case 'n':
					b.WriteByte('\n')
				case 't':
					b.WriteByte('\t')
				case '(', ')', '\\':
					b.WriteByte(ch)
				}
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '(':
				depth++
			case ch == ')':
				depth--
				if depth == 0 {
					b.WriteByte(' ')
				}
			default:
				b.WriteByte(ch)
			}
			continue
		}
		if ch == '(' {
			depth = 1
		}
	}
	return strings.TrimSpace(b.String())
}
