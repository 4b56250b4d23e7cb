// =============================================================================
// Invoice Regrouper - Document Assembler
// =============================================================================
//
// This module builds the regrouped output document from an ordered list of
// page directives. A directive either copies a source page verbatim,
// copies a source page and draws an overlay on it, or synthesizes a whole
// page from a drawing callback.
//
// Directive i produces output page i; directives are resolved independently
// with no cross-page layout state. The document is accumulated in memory
// and written to the target path in one step at the end, so a failure
// mid-assembly leaves no output file behind.
//
// Copied pages are imported as templates at their original size. Drawn text
// uses a registered monospaced TTF when configured, falling back to the
// built-in Courier core font; either way the face must be monospaced so
// that space-padded numbers render as right-aligned columns.
//
// =============================================================================

package assemble

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
)

// Layout constants for synthesized and overlaid content, in points.
const (
	marginX    = 50.0
	marginTop  = 42.0
	lineHeight = 12.0
	fontSize   = 10.0
)

// Page is the drawing surface handed to directive callbacks.
type Page struct {
	pdf *fpdf.Fpdf
}

// SetFontSize changes the current font size.
func (p *Page) SetFontSize(size float64) {
	p.pdf.SetFontSize(size)
}

// Text places s with its baseline at (x, y), measured from the top left.
func (p *Page) Text(x, y float64, s string) {
	p.pdf.Text(x, y, s)
}

// Line draws a straight segment from (x1, y1) to (x2, y2).
func (p *Page) Line(x1, y1, x2, y2 float64) {
	p.pdf.Line(x1, y1, x2, y2)
}

// DrawFunc draws overlay or full-page content onto a page.
type DrawFunc func(p *Page)

// Directive describes one output page.
type Directive struct {
	// sourcePage is the 0-based source page to copy, or -1 for a
	// synthesized page.
	sourcePage int

	// draw is the overlay (copied pages) or the page content
	// (synthesized pages).
	draw DrawFunc
}

// CopyPage copies source page n (0-based) verbatim.
func CopyPage(n int) Directive {
	return Directive{sourcePage: n}
}

// CopyPageWith copies source page n and draws an overlay on it.
func CopyPageWith(n int, draw DrawFunc) Directive {
	return Directive{sourcePage: n, draw: draw}
}

// NewPage synthesizes a page from a drawing callback.
func NewPage(draw DrawFunc) Directive {
	return Directive{sourcePage: -1, draw: draw}
}

// IsCopy reports whether the directive copies a source page, and which.
func (d Directive) IsCopy() (int, bool) {
	if d.sourcePage >= 0 {
		return d.sourcePage, true
	}
	return 0, false
}

// HasOverlay reports whether a copied page carries an overlay.
func (d Directive) HasOverlay() bool {
	return d.sourcePage >= 0 && d.draw != nil
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// monoFamily is the registry name of the injected monospaced font.
const monoFamily = "regroupermono"

// Assemble builds dstPath from the pages of srcPath according to the
// directives. fontFile is the optional monospaced TTF; empty selects the
// built-in Courier.
func Assemble(srcPath, dstPath string, directives []Directive, fontFile string) (err error) {
	// The page importer panics on malformed source documents.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to import pages from %s: %v", srcPath, r)
		}
	}()

	doc := fpdf.New("P", "pt", "A4", "")

	family := "Courier"
	if fontFile != "" {
		doc.AddUTF8Font(monoFamily, "", fontFile)
		family = monoFamily
	}
	doc.SetFont(family, "", fontSize)
	doc.SetLineWidth(0.5)
	doc.SetAutoPageBreak(false, 0)

	importer := gofpdi.NewImporter()

	for i, d := range directives {
		if page, ok := d.IsCopy(); ok {
			if err := copySourcePage(doc, importer, srcPath, page); err != nil {
				return fmt.Errorf("directive %d: %w", i, err)
			}
		} else {
			doc.AddPage()
		}
		if d.draw != nil {
			doc.SetFont(family, "", fontSize)
			d.draw(&Page{pdf: doc})
		}
	}

	if doc.Err() {
		return fmt.Errorf("failed to assemble document: %w", doc.Error())
	}
	if err := doc.OutputFileAndClose(dstPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", dstPath, err)
	}
	return nil
}

// copySourcePage imports one source page (0-based) as a template and lays
// it onto a fresh output page of the same size.
func copySourcePage(doc *fpdf.Fpdf, importer *gofpdi.Importer, srcPath string, page int) error {
	tpl := importer.ImportPage(doc, srcPath, page+1, "/MediaBox")
	if doc.Err() {
		return fmt.Errorf("failed to import source page %d: %w", page+1, doc.Error())
	}

	box := importer.GetPageSizes()[page+1]["/MediaBox"]
	w, h := box["w"], box["h"]
	orientation := "P"
	if w > h {
		orientation = "L"
	}

	doc.AddPageFormat(orientation, fpdf.SizeType{Wd: w, Ht: h})
	importer.UseImportedTemplate(doc, tpl, 0, 0, w, h)
	return nil
}
