// =============================================================================
// Invoice Regrouper - PDF Token Source
// =============================================================================
//
// TokenSource adapter over the ledongthuc/pdf reader. The document is
// opened once into a read-only view; every page is decoded at most once by
// the forward scan.
//
// Tokens are produced at two granularities: the raw positioned text
// fragments of the page, and one joined string per text row. Provider
// statements render the phone number as its own text object, so the raw
// fragments normally carry the match; the row joins cover renderers that
// split the number into digit-group fragments.
//
// =============================================================================

package pagelocate

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Document is an open paginated source document.
type Document struct {
	f *pdf.Reader
	c closerFunc
}

type closerFunc func() error

// OpenDocument opens a PDF file for token extraction. The caller owns the
// returned document and must Close it when the invoice's run completes.
func OpenDocument(path string) (*Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	return &Document{f: reader, c: file.Close}, nil
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.c()
}

// NumPages returns the document's total page count.
func (d *Document) NumPages() int {
	return d.f.NumPage()
}

// PageTokens extracts the text tokens of one 1-based page.
func (d *Document) PageTokens(page int) (tokens []string, err error) {
	// The underlying reader panics on malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			tokens = nil
			err = fmt.Errorf("malformed content stream on page %d: %v", page, r)
		}
	}()

	p := d.f.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}

	for _, fragment := range p.Content().Text {
		tokens = append(tokens, fragment.S)
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		// Fragment tokens already cover the common layout; row joins are
		// an additional granularity only.
		return tokens, nil
	}
	for _, row := range rows {
		joined := ""
		for _, fragment := range row.Content {
			joined += fragment.S
		}
		tokens = append(tokens, joined)
	}

	return tokens, nil
}
