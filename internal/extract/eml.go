package extract

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/jobforge/jobforge/internal/core/ports/driven"
)

// Ensure EML implements the interface.
var _ driven.TextExtractor = (*EML)(nil)

// EML extracts the subject and text body from saved email messages.
// The subject becomes a markdown header so the message reads as one
// titled section.
type EML struct{}

// NewEML creates an email message extractor.
func NewEML() *EML {
	return &EML{}
}

// Extensions returns the file extensions this extractor claims.
func (e *EML) Extensions() []string {
	return []string{".eml"}
}

// Extract parses the message and returns "# subject" followed by the
// text body. Multipart messages prefer text/plain parts over text/html.
func (e *EML) Extract(data []byte) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse email: %w", err)
	}

	body, err := messageBody(msg)
	if err != nil {
		return "", err
	}
	body = strings.TrimSpace(strings.ReplaceAll(body, "\r\n", "\n"))

	subject := decodeHeader(msg.Header.Get("Subject"))
	switch {
	case subject == "":
		return body, nil
	case body == "":
		return "# " + subject, nil
	default:
		return "# " + subject + "\n\n" + body, nil
	}
}

// decodeHeader decodes RFC 2047 encoded words, falling back to the raw value.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// messageBody extracts the text content of an email message.
func messageBody(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Unparseable content type, read as plain text.
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return "", fmt.Errorf("read email body: %w", readErr)
		}
		return string(body), nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return multipartBody(msg.Body, params["boundary"])
	}

	reader := decodeTransfer(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read email body: %w", err)
	}

	if mediaType == "text/html" {
		return NewHTML().Extract(body)
	}
	return string(body), nil
}

// multipartBody walks the message parts, preferring plain text over HTML.
func multipartBody(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts []string
	var htmlParts []string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "application/octet-stream"
		}

		// The multipart reader already decodes quoted-printable parts;
		// base64 still needs unwrapping.
		content, readErr := io.ReadAll(decodeTransfer(part, part.Header.Get("Content-Transfer-Encoding")))
		part.Close() //nolint:errcheck // part is fully consumed
		if readErr != nil {
			continue
		}

		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, string(content))
		case mediaType == "text/html":
			text, htmlErr := NewHTML().Extract(content)
			if htmlErr == nil {
				htmlParts = append(htmlParts, text)
			}
		case strings.HasPrefix(mediaType, "multipart/"):
			nested, nestedErr := multipartBody(bytes.NewReader(content), params["boundary"])
			if nestedErr == nil && nested != "" {
				textParts = append(textParts, nested)
			}
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	return strings.Join(htmlParts, "\n"), nil
}

// decodeTransfer wraps r to decode the Content-Transfer-Encoding.
func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}
