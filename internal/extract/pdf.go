// Package extract pulls raw text out of PDF documents.
package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF reads a PDF file and returns its text content, page by page,
// joined with newlines. Pages that yield no text are skipped.
type PDF struct{}

// NewPDF creates a PDF text extractor.
func NewPDF() *PDF { return &PDF{} }

// Text extracts the plain text of every page of the PDF at path.
func (e *PDF) Text(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d of %s: %w", i, path, err)
		}
		if content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n"), nil
}
