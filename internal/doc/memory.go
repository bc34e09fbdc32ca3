package doc

import (
	"strings"
)

// MemoryPage describes one page of an in-memory document: its size and
// the text spans laid out on it, in top-left space.
type MemoryPage struct {
	Width  float64
	Height float64
	Spans  []TextSpan
}

// InsertKind names the kind of content an insert operation placed.
type InsertKind string

const (
	InsertKindText  InsertKind = "text"
	InsertKindImage InsertKind = "image"
	InsertKindPDF   InsertKind = "pdf"
)

// InsertOp records a single mutating insert against a MemoryDocument.
type InsertOp struct {
	Kind     InsertKind
	Page     int
	At       Point
	Rect     Rect
	Text     string
	Path     string
	FontSize float64
}

// MemoryDocument is an in-memory Document used to drive the locator and
// orchestrator deterministically. Text search runs over scripted spans;
// inserts are recorded instead of rendered. Error fields, when set, make
// the corresponding operation fail so best-effort paths can be exercised.
type MemoryDocument struct {
	Pages   []MemoryPage
	widgets []Widget
	inserts []InsertOp

	InsertErr   error
	SetValueErr error

	flattened    bool
	flattenScale float64
	savedPath    string
	closed       bool
}

// NewMemoryDocument builds a document from scripted pages.
func NewMemoryDocument(pages ...MemoryPage) *MemoryDocument {
	return &MemoryDocument{Pages: pages}
}

// AddText lays a text span onto a page.
func (d *MemoryDocument) AddText(page int, text string, r Rect) {
	d.Pages[page].Spans = append(d.Pages[page].Spans, TextSpan{Page: page, Rect: r, Text: text})
}

// AddWidget registers a form widget.
func (d *MemoryDocument) AddWidget(w Widget) {
	d.widgets = append(d.widgets, w)
}

// PageCount returns the number of scripted pages.
func (d *MemoryDocument) PageCount() int {
	return len(d.Pages)
}

// PageSize returns the scripted page dimensions.
func (d *MemoryDocument) PageSize(page int) (float64, float64, error) {
	if page < 0 || page >= len(d.Pages) {
		return 0, 0, ErrInvalidPage
	}
	return d.Pages[page].Width, d.Pages[page].Height, nil
}

// SearchText finds case-insensitive literal occurrences of term within
// the page's spans, interpolating sub-rectangles for partial matches.
func (d *MemoryDocument) SearchText(page int, term string, clip *Rect) ([]Rect, error) {
	if page < 0 || page >= len(d.Pages) {
		return nil, ErrInvalidPage
	}
	if term == "" {
		return nil, nil
	}
	needle := strings.ToLower(term)

	var hits []Rect
	for _, span := range d.Pages[page].Spans {
		haystack := strings.ToLower(span.Text)
		from := 0
		for {
			idx := strings.Index(haystack[from:], needle)
			if idx < 0 {
				break
			}
			start := from + idx
			r := subRect(span, start, start+len(needle))
			if clip == nil || r.Intersects(*clip) {
				hits = append(hits, r)
			}
			from = start + 1
		}
	}
	return hits, nil
}

// subRect slices a span's rectangle proportionally for the character
// range [start, end), assuming uniform glyph advance.
func subRect(span TextSpan, start, end int) Rect {
	n := len(span.Text)
	if n == 0 {
		return span.Rect
	}
	w := span.Rect.Width()
	return Rect{
		X0: span.Rect.X0 + w*float64(start)/float64(n),
		Y0: span.Rect.Y0,
		X1: span.Rect.X0 + w*float64(end)/float64(n),
		Y1: span.Rect.Y1,
	}
}

// Widgets returns the registered widgets.
func (d *MemoryDocument) Widgets() ([]Widget, error) {
	out := make([]Widget, len(d.widgets))
	copy(out, d.widgets)
	return out, nil
}

// SetWidgetValue updates a registered widget's value.
func (d *MemoryDocument) SetWidgetValue(name, value string) error {
	if d.SetValueErr != nil {
		return d.SetValueErr
	}
	for i := range d.widgets {
		if d.widgets[i].Name == name {
			d.widgets[i].Value = value
			return nil
		}
	}
	return ErrNoSuchWidget
}

// InsertText records a text insert.
func (d *MemoryDocument) InsertText(page int, at Point, text string, fontSize float64) error {
	if d.InsertErr != nil {
		return d.InsertErr
	}
	d.inserts = append(d.inserts, InsertOp{
		Kind: InsertKindText, Page: page, At: at, Text: text, FontSize: fontSize,
	})
	return nil
}

// InsertImage records an image insert.
func (d *MemoryDocument) InsertImage(page int, r Rect, imagePath string) error {
	if d.InsertErr != nil {
		return d.InsertErr
	}
	d.inserts = append(d.inserts, InsertOp{Kind: InsertKindImage, Page: page, Rect: r, Path: imagePath})
	return nil
}

// InsertPDF records a PDF stamp insert.
func (d *MemoryDocument) InsertPDF(page int, r Rect, pdfPath string) error {
	if d.InsertErr != nil {
		return d.InsertErr
	}
	d.inserts = append(d.inserts, InsertOp{Kind: InsertKindPDF, Page: page, Rect: r, Path: pdfPath})
	return nil
}

// Flatten marks the document flattened and drops its widgets, matching
// the observable effect of rasterizing every page.
func (d *MemoryDocument) Flatten(scale float64) error {
	d.flattened = true
	d.flattenScale = scale
	d.widgets = nil
	return nil
}

// Save records the destination path.
func (d *MemoryDocument) Save(path string) error {
	d.savedPath = path
	return nil
}

// Close marks the document closed.
func (d *MemoryDocument) Close() error {
	d.closed = true
	return nil
}

// Inserts returns every recorded insert in order.
func (d *MemoryDocument) Inserts() []InsertOp {
	return d.inserts
}

// InsertsOfKind returns the recorded inserts of one kind, in order.
func (d *MemoryDocument) InsertsOfKind(kind InsertKind) []InsertOp {
	var out []InsertOp
	for _, op := range d.inserts {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Flattened reports whether Flatten ran, and at which scale.
func (d *MemoryDocument) Flattened() (bool, float64) {
	return d.flattened, d.flattenScale
}

// SavedPath returns the path passed to Save, if any.
func (d *MemoryDocument) SavedPath() string {
	return d.savedPath
}

// Closed reports whether Close ran.
func (d *MemoryDocument) Closed() bool {
	return d.closed
}
