// Package sign orchestrates one document signing run: structured form
// filling when the document carries widgets, the heuristic fallback
// placement when it does not, and the final flatten and save.
package sign

import (
	"fmt"
	"log"

	"github.com/peterzat/auto-pdf-signer/internal/doc"
	"github.com/peterzat/auto-pdf-signer/internal/entity"
	"github.com/peterzat/auto-pdf-signer/internal/locate"
	"github.com/peterzat/auto-pdf-signer/internal/match"
)

// DefaultFlattenScale is the rasterization scale used for flattening.
const DefaultFlattenScale = 2.0

// Entity annotation layout below the fallback signature, in points.
const (
	annotationGap       = 20.0
	annotationLineStep  = 20.0
	annotationBoxWidth  = 300.0
	annotationBoxHeight = 15.0
	annotationFontSize  = 10.0
)

// Options configures a Signer.
type Options struct {
	// SignatureImage is the path of the rasterized signature image.
	SignatureImage string
	// OutputPath is where the signed document is written.
	OutputPath string
	// FlattenScale is the rasterization scale; zero means
	// DefaultFlattenScale.
	FlattenScale float64
}

// Signer runs the signing state machine over one document. A run is
// strictly sequential and best-effort: a single field or insert failing
// is logged and skipped, never aborting the run.
type Signer struct {
	matcher     *match.Matcher
	definitions *locate.DefinitionLocator
	signature   *locate.SignatureLocator
	opts        Options
}

// New creates a Signer with default matcher and locators.
func New(opts Options) *Signer {
	if opts.FlattenScale <= 0 {
		opts.FlattenScale = DefaultFlattenScale
	}
	return &Signer{
		matcher:     match.NewMatcher(),
		definitions: locate.NewDefinitionLocator(),
		signature:   locate.NewSignatureLocator(),
		opts:        opts,
	}
}

// Sign fills, signs, flattens and saves the document. Setup of the
// document and entity record is the caller's concern; Sign owns the
// handle for the duration of the run but does not close it.
func (s *Signer) Sign(d doc.Document, rec *entity.Record) error {
	log.Printf("checking for form fields")
	formFilled := s.fillFormFields(d, rec)

	log.Printf("checking for signature fields")
	signaturePlaced := s.fillSignatureWidgets(d)

	if !formFilled && !signaturePlaced {
		s.fallbackPlacement(d, rec)
	}

	log.Printf("flattening document")
	if err := d.Flatten(s.opts.FlattenScale); err != nil {
		return fmt.Errorf("failed to flatten document: %w", err)
	}

	log.Printf("saving signed document to %s", s.opts.OutputPath)
	if err := d.Save(s.opts.OutputPath); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// fillFormFields sets a value on every text widget the matcher can
// resolve. Reports whether at least one field was filled.
func (s *Signer) fillFormFields(d doc.Document, rec *entity.Record) bool {
	widgets, err := d.Widgets()
	if err != nil {
		log.Printf("error enumerating form fields: %v", err)
		return false
	}

	filled := false
	for _, w := range widgets {
		if w.Type != doc.WidgetText {
			continue
		}
		value, ok := s.matcher.Match(w.Name, rec)
		if !ok {
			continue
		}
		if err := d.SetWidgetValue(w.Name, value); err != nil {
			log.Printf("error filling field %q: %v", w.Name, err)
			continue
		}
		filled = true
		log.Printf("filled field %q with %q", w.Name, value)
	}
	return filled
}

// fillSignatureWidgets stamps the signature into every signature-typed
// widget, sized to the widget rectangle. Reports whether at least one
// signature was placed.
func (s *Signer) fillSignatureWidgets(d doc.Document) bool {
	widgets, err := d.Widgets()
	if err != nil {
		log.Printf("error enumerating signature fields: %v", err)
		return false
	}

	placed := false
	for _, w := range widgets {
		if w.Type != doc.WidgetSignature {
			continue
		}
		if err := s.stampSignature(d, w.Page, w.Rect); err != nil {
			log.Printf("error placing signature in field %q: %v", w.Name, err)
			continue
		}
		placed = true
		log.Printf("placed signature in signature field on page %d", w.Page+1)
	}
	return placed
}

// fallbackPlacement runs the heuristic chain: definition substitution,
// keyword-located signature placement, then the entity annotation block.
func (s *Signer) fallbackPlacement(d doc.Document, rec *entity.Record) {
	log.Printf("no form fields found, using fallback placement")

	if _, err := s.definitions.FillDefinitions(d, rec); err != nil {
		log.Printf("error filling definitions: %v", err)
	}

	placement, err := s.signature.Locate(d)
	if err != nil {
		log.Printf("error locating signature position: %v", err)
		return
	}

	if err := s.stampSignature(d, placement.Page, placement.Rect); err != nil {
		log.Printf("error placing signature: %v", err)
	} else {
		log.Printf("placed signature on page %d", placement.Page+1)
	}

	s.annotateEntity(d, placement.Page, placement.Rect, rec)
}

// stampSignature builds the scoped signature artifact sized to the
// target rectangle and stamps it. The artifact is removed on success
// and on error.
func (s *Signer) stampSignature(d doc.Document, page int, r doc.Rect) error {
	path, cleanup, err := signaturePDF(s.opts.SignatureImage, r.Width(), r.Height())
	if err != nil {
		return err
	}
	defer cleanup()

	return d.InsertPDF(page, r, path)
}

// annotateEntity writes the entity pairs as stacked "key: value" lines
// below the signature rectangle.
func (s *Signer) annotateEntity(d doc.Document, page int, sig doc.Rect, rec *entity.Record) {
	y := sig.Y1 + annotationGap
	for _, p := range rec.Pairs() {
		box := doc.Rect{
			X0: sig.X0,
			Y0: y,
			X1: sig.X0 + annotationBoxWidth,
			Y1: y + annotationBoxHeight,
		}
		text := p.Key + ": " + p.Value
		if err := d.InsertText(page, doc.Point{X: box.X0, Y: box.Y0}, text, annotationFontSize); err != nil {
			log.Printf("error adding entity text %q: %v", p.Key, err)
		}
		y += annotationLineStep
	}
}
