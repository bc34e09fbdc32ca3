// Package doc defines the document collaborator contract used by the
// fill and placement engine, along with the geometry types shared by the
// locator heuristics. Two implementations exist: a pdfcpu-backed document
// for real files and an in-memory document used by tests.
package doc

import (
	"fmt"
)

// WidgetType classifies an interactive form widget.
type WidgetType string

const (
	WidgetText      WidgetType = "text"
	WidgetCheckbox  WidgetType = "checkbox"
	WidgetRadio     WidgetType = "radio"
	WidgetSelect    WidgetType = "select"
	WidgetButton    WidgetType = "button"
	WidgetSignature WidgetType = "signature"
	WidgetUnknown   WidgetType = "unknown"
)

// Widget represents a named interactive form field embedded in a page.
type Widget struct {
	Name  string
	Type  WidgetType
	Page  int
	Rect  Rect
	Value string
}

// TextSpan is a located occurrence of a search term on a page. Spans are
// produced by text search and consumed immediately; they are not persisted.
type TextSpan struct {
	Page int
	Rect Rect
	Text string
}

// Document is the contract the placement engine requires from a document
// library. Pages are addressed by zero-based index. All mutating calls
// operate on the in-memory document; nothing is written until Save.
type Document interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageSize returns the width and height of a page in points.
	PageSize(page int) (width, height float64, err error)

	// SearchText finds every occurrence of a literal term on a page,
	// matching case-insensitively. When clip is non-nil, only occurrences
	// whose rectangle intersects the clip region are returned, in reading
	// order.
	SearchText(page int, term string, clip *Rect) ([]Rect, error)

	// Widgets enumerates every interactive form widget in the document.
	Widgets() ([]Widget, error)

	// SetWidgetValue sets the value of the named form field.
	SetWidgetValue(name, value string) error

	// InsertText draws a string at the given baseline point in black.
	InsertText(page int, at Point, text string, fontSize float64) error

	// InsertImage draws an image file scaled into the given rectangle.
	InsertImage(page int, r Rect, imagePath string) error

	// InsertPDF stamps the first page of another PDF at its natural size,
	// anchored at the top-left corner of the given rectangle.
	InsertPDF(page int, r Rect, pdfPath string) error

	// Flatten rasterizes every page at the given scale factor and replaces
	// the document content with image-only pages, removing widgets, live
	// text and vector content.
	Flatten(scale float64) error

	// Save writes the current document to path.
	Save(path string) error

	// Close releases the document handle. The document must not be used
	// afterwards.
	Close() error
}

// DocError wraps a failed document operation with the backend and
// operation name, mirroring how library errors are surfaced to callers.
type DocError struct {
	Backend string
	Op      string
	Err     error
}

func (e *DocError) Error() string {
	return fmt.Sprintf("document %s error in %s: %v", e.Backend, e.Op, e.Err)
}

func (e *DocError) Unwrap() error {
	return e.Err
}

// Common error variables shared by backends.
var (
	ErrDocumentClosed = fmt.Errorf("document is closed")
	ErrInvalidPage    = fmt.Errorf("invalid page number")
	ErrNoSuchWidget   = fmt.Errorf("no widget with that name")
)
