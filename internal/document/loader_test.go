package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "some plain text\nwith two lines\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	docs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, content, docs[0].Content)
	assert.Equal(t, "notes.txt", docs[0].Metadata["file_name"])
	assert.Equal(t, "text/plain", docs[0].Metadata["file_type"])
	assert.Equal(t, int64(len(content)), docs[0].Metadata["file_size"])
}

func TestLoadUnsupportedExtension(t *testing.T) {
	tests := []string{"report.docx", "data.csv", "noextension", "archive.tar.gz"}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
		})
	}
}

func TestLoadExtensionIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "UPPER.TXT")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	docs, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestCloneMetadata(t *testing.T) {
	doc := Document{Metadata: map[string]any{"file_name": "a.txt"}}
	clone := doc.CloneMetadata()
	clone["file_name"] = "mutated"
	assert.Equal(t, "a.txt", doc.Metadata["file_name"])

	var empty Document
	assert.NotNil(t, empty.CloneMetadata())
}

func TestPageNumberFromName(t *testing.T) {
	tests := []struct {
		name   string
		num    int
		ok     bool
		inName string
	}{
		{"standard content file", 7, true, "report_Content_page_7.txt"},
		{"single digit", 1, true, "a_page_1.txt"},
		{"multi digit", 42, true, "doc_Content_page_42.txt"},
		{"no page marker", 0, false, "report_fonts.txt"},
		{"marker without number", 0, false, "report_page_.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := pageNumberFromName(tt.inName)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.num, n)
			}
		})
	}
}

func TestTextFromContentStream(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"single Tj operand",
			`BT /F1 12 Tf (Hello world) Tj ET`,
			"Hello world",
		},
		{
			"TJ array with multiple runs",
			`BT [(Hello) -250 (world)] TJ ET`,
			"Hello world",
		},
		{
			"escaped parentheses and backslash",
			`(a \(nested\) value \\ done) Tj`,
			`a (nested) value \ done`,
		},
		{
			"escaped newline and tab",
			`(line one\nline two\tend) Tj`,
			"line one\nline two\tend",
		},
		{
			"balanced inner parentheses",
			`(outer (inner) tail) Tj`,
			"outer inner tail",
		},
		{
			"no text operators",
			`q 1 0 0 1 50 50 cm /Im1 Do Q`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textFromContentStream(tt.content))
		})
	}
}
