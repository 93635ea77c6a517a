package service

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dslipak/pdf"
)

// Document kinds accepted by the extractor
const (
	KindText = "text"
	KindPDF  = "pdf"
)

// ExtractText turns an uploaded document into raw text.
//
// For KindText the bytes are returned verbatim after a UTF-8 check.
// For KindPDF page text is extracted in page order and joined with
// newlines; pages that yield no text are skipped. Unsupported kinds
// return an empty string, not an error.
func ExtractText(data []byte, kind string) (string, error) {
	switch kind {
	case KindText:
		if !utf8.Valid(data) {
			return "", &ExtractionError{Kind: kind, Err: fmt.Errorf("input is not valid UTF-8")}
		}
		return string(data), nil
	case KindPDF:
		return extractPDF(data)
	default:
		slog.Warn("unsupported document kind, returning empty text", "kind", kind)
		return "", nil
	}
}

func extractPDF(data []byte) (text string, err error) {
	// The PDF parser panics on some malformed inputs; convert those
	// into an ExtractionError instead of taking the process down.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Kind: KindPDF, Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Kind: KindPDF, Err: err}
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("skipping unreadable page", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, "\n"), nil
}

// KindForFilename maps an upload's extension to a document kind.
// Unknown extensions map to an empty kind, which the extractor treats
// as unsupported.
func KindForFilename(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".txt"):
		return KindText
	case strings.HasSuffix(lower, ".pdf"):
		return KindPDF
	default:
		return ""
	}
}
