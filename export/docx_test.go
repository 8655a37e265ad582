package export

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLToDocx(t *testing.T) {
	data, err := HTMLToDocx(`<h1>Title</h1><p>Plain and <strong>bold</strong> and <em>italic</em>.</p><ul><li>one</li><li>two</li></ul>`)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// A .docx file is a zip archive containing the document part.
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "word/document.xml")
}

func TestHTMLToDocxBareText(t *testing.T) {
	data, err := HTMLToDocx("just some words")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestHTMLToDocxNestedFormatting(t *testing.T) {
	data, err := HTMLToDocx(`<p><strong><em>both</em></strong></p><ol><li>first</li></ol>`)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
