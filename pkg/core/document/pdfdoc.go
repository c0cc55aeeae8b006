// Package document downloads prospectus PDFs, validates them, and turns
// them into structured extraction results.
package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/kanekanefy/StockReport/pkg/models"
)

// minExtractableText is the smallest text volume a prospectus PDF must
// yield to count as parseable. Scanned-image PDFs fall below this.
const minExtractableText = 100

// pdfMagic is the required leading byte signature.
var pdfMagic = []byte("%PDF")

// HasPDFMagic reports whether the payload starts with the PDF signature.
func HasPDFMagic(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// parsePDF extracts the full plain text and document metadata from an
// in-memory PDF. The underlying reader panics on some corrupt streams
// (zlib headers in particular), so the whole pass runs under recover.
func parsePDF(data []byte) (text string, meta models.DocumentMetadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("panic during PDF extraction: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", meta, fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPages := reader.NumPage()
	meta.Pages = totalPages

	var sb strings.Builder
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	info := reader.Trailer().Key("Info")
	if !info.IsNull() {
		meta.Title = info.Key("Title").Text()
		meta.Author = info.Key("Author").Text()
		if created := parsePDFDate(info.Key("CreationDate").Text()); created != nil {
			meta.CreationDate = created
		}
	}

	return sb.String(), meta, nil
}

// ValidatePDF reports whether the payload is a readable prospectus: PDF
// signature, at least one page, and enough extractable text to analyze.
func ValidatePDF(data []byte) bool {
	if !HasPDFMagic(data) {
		return false
	}
	text, meta, err := parsePDF(data)
	if err != nil {
		return false
	}
	return meta.Pages > 0 && len(text) > minExtractableText
}

// parsePDFDate parses the PDF date format, D:YYYYMMDDHHMMSS with optional
// timezone suffix. Returns nil for anything it cannot read.
func parsePDFDate(raw string) *time.Time {
	s := strings.TrimPrefix(raw, "D:")
	if len(s) < 8 {
		return nil
	}
	layouts := []string{"20060102150405", "200601021504", "20060102"}
	for _, layout := range layouts {
		if len(s) < len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s[:len(layout)]); err == nil {
			return &t
		}
	}
	return nil
}
