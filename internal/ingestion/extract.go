// Package ingestion extracts plain text from uploaded documents.
//
// Extraction is lenient: a document that cannot be read, or whose kind is not
// supported, yields empty text rather than an error. Documents are optional context
// for generation, never the sole required input.
package ingestion

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"github.com/neurolearn/lecture-pipeline/internal/logging"
)

// maxDocumentXML caps how much of word/document.xml is read.
const maxDocumentXML = 32 << 20

// Extractor reads text from stored documents.
type Extractor struct {
	logger *logging.Logger
}

// NewExtractor creates an Extractor. A nil logger discards warnings.
func NewExtractor(logger *logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Extractor{logger: logger}
}

// Extract returns the document text at path, truncated to limit runes.
// Unsupported kinds and unreadable documents return "".
func (e *Extractor) Extract(ctx context.Context, path string, kind Kind, limit int) string {
	if ctx.Err() != nil {
		return ""
	}

	var (
		text string
		err  error
	)
	switch kind {
	case KindText:
		text, err = extractPlainText(path)
	case KindPDF:
		text, err = extractPDF(path)
	case KindDOCX:
		text, err = extractDOCX(path)
	case KindHTML:
		text, err = extractHTML(path)
	default:
		e.logger.Warn("unsupported document kind, continuing without document text", "path", path, "kind", string(kind))
		return ""
	}

	if err != nil {
		e.logger.Warn("document extraction failed, continuing without document text", "path", path, "kind", string(kind), "error", err)
		return ""
	}

	return Truncate(text, limit)
}

func extractPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// extractPDF reads the PDF text stream. The pdf reader panics on some malformed
// inputs, so panics are converted to errors.
func extractPDF(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("pdf open: %w", err)
	}
	defer func() { _ = f.Close() }()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return CleanText(string(b)), nil
}

// extractDOCX unzips the archive and collects <w:t> runs from word/document.xml,
// breaking lines at paragraph ends.
func extractDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("docx open: %w", err)
	}
	defer func() { _ = zr.Close() }()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("docx body: %w", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, maxDocumentXML))
	if err != nil {
		return "", fmt.Errorf("docx read: %w", err)
	}
	return CleanText(documentXMLText(data)), nil
}

func documentXMLText(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				var v string
				if err := dec.DecodeElement(&v, &el); err == nil {
					sb.WriteString(v)
				}
			case "tab":
				sb.WriteString("\t")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.EndElement:
			if el.Name.Local == "p" {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

func extractHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer").Remove()

	var parts []string
	doc.Find("body").Find("h1, h2, h3, h4, h5, h6, p, li, td, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		parts = append(parts, doc.Find("body").Text())
	}

	return CleanText(strings.Join(parts, "\n")), nil
}
