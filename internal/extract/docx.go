package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ensure Docx implements the interface.
var _ driven.TextExtractor = (*Docx)(nil)

// Docx extracts paragraph text from Word documents. Paragraphs styled
// Heading1-4 (and Title) become markdown headers so section-aware
// chunking still applies.
type Docx struct{}

// NewDocx creates a Word document extractor.
func NewDocx() *Docx {
	return &Docx{}
}

// Extensions returns the file extensions this extractor claims.
func (e *Docx) Extensions() []string {
	return []string{".docx"}
}

// Extract reads word/document.xml from the archive and joins its
// paragraphs with blank lines.
func (e *Docx) Extract(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	for _, f := range reader.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		content, err := io.ReadAll(rc)
		rc.Close() //nolint:errcheck // read-only archive entry
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}

		return parseDocumentXML(content)
	}

	return "", errors.New("docx has no word/document.xml")
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraphXML `xml:"p"`
	} `xml:"body"`
}

type paragraphXML struct {
	Props struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
	} `xml:"pPr"`
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Text []textXML `xml:"t"`
}

type textXML struct {
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var b strings.Builder
	for _, para := range doc.Body.Paragraphs {
		var text strings.Builder
		for _, run := range para.Runs {
			for _, t := range run.Text {
				text.WriteString(t.Content)
			}
		}
		line := strings.TrimSpace(text.String())
		if line == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		if marker := headingMarker(para.Props.Style.Val); marker != "" {
			b.WriteString(marker)
			b.WriteString(" ")
		}
		b.WriteString(line)
	}

	return b.String(), nil
}

// headingMarker maps Word heading styles onto markdown header levels.
// Deeper headings stay body text.
func headingMarker(style string) string {
	if style == "Title" {
		return "#"
	}
	if !strings.HasPrefix(style, "Heading") {
		return ""
	}
	switch strings.TrimPrefix(style, "Heading") {
	case "1":
		return "#"
	case "2":
		return "##"
	case "3":
		return "###"
	case "4":
		return "####"
	}
	return ""
}
