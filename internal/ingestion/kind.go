package ingestion

import (
	"mime"
	"path/filepath"
	"strings"
)

// Kind is the extraction capability resolved once per uploaded document.
type Kind string

const (
	KindText        Kind = "text"
	KindPDF         Kind = "pdf"
	KindDOCX        Kind = "docx"
	KindHTML        Kind = "html"
	KindUnsupported Kind = "unsupported"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DetectKind resolves a document kind from its declared content type, falling back to
// the filename extension when the type is missing or generic.
func DetectKind(contentType, filename string) Kind {
	if k := kindFromContentType(contentType); k != "" {
		return k
	}
	return kindFromExtension(filename)
}

func kindFromContentType(contentType string) Kind {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(contentType))
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch mediaType {
	case "", "application/octet-stream", "binary/octet-stream", "application/x-download", "application/zip":
		return ""
	case "text/plain", "text/markdown", "text/x-markdown":
		return KindText
	case "application/pdf", "application/x-pdf":
		return KindPDF
	case docxMIME:
		return KindDOCX
	case "text/html", "application/xhtml+xml":
		return KindHTML
	}
	// A specific type we cannot read (e.g. image/png) is unsupported even if the
	// extension claims otherwise.
	return KindUnsupported
}

func kindFromExtension(filename string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", ".md", ".markdown":
		return KindText
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDOCX
	case ".html", ".htm":
		return KindHTML
	default:
		return KindUnsupported
	}
}
