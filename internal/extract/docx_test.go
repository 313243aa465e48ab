package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDocx creates a minimal valid DOCX archive in memory.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func wrapDocumentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>` + body + `</w:body>
</w:document>`
}

func TestDocx_Extensions(t *testing.T) {
	assert.Equal(t, []string{".docx"}, NewDocx().Extensions())
}

func TestDocx_ExtractsParagraphs(t *testing.T) {
	data := buildDocx(t, wrapDocumentXML(
		`<w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>`))

	out, err := NewDocx().Extract(data)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", out)
}

func TestDocx_HeadingStylesBecomeMarkdown(t *testing.T) {
	data := buildDocx(t, wrapDocumentXML(
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Experience</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Built search systems.</w:t></w:r></w:p>`+
			`<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Royal Canin</w:t></w:r></w:p>`))

	out, err := NewDocx().Extract(data)
	require.NoError(t, err)
	assert.Equal(t, "# Experience\n\nBuilt search systems.\n\n## Royal Canin", out)
}

func TestDocx_SkipsEmptyParagraphs(t *testing.T) {
	data := buildDocx(t, wrapDocumentXML(
		`<w:p><w:r><w:t>One.</w:t></w:r></w:p>`+
			`<w:p></w:p>`+
			`<w:p><w:r><w:t>Two.</w:t></w:r></w:p>`))

	out, err := NewDocx().Extract(data)
	require.NoError(t, err)
	assert.Equal(t, "One.\n\nTwo.", out)
}

func TestDocx_UnstyledParagraphStaysBodyText(t *testing.T) {
	data := buildDocx(t, wrapDocumentXML(
		`<w:p><w:pPr><w:pStyle w:val="Normal"/></w:pPr><w:r><w:t>Plain.</w:t></w:r></w:p>`))

	out, err := NewDocx().Extract(data)
	require.NoError(t, err)
	assert.Equal(t, "Plain.", out)
}

func TestDocx_RejectsNonArchive(t *testing.T) {
	_, err := NewDocx().Extract([]byte("not a zip file"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open docx archive")
}

func TestDocx_MissingDocumentXML(t *testing.T) {
	_, err := NewDocx().Extract(buildDocx(t, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}
