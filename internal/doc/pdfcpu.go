package doc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const backendPDFCPU = "pdfcpu"

// PDFDocument is the pdfcpu-backed Document implementation. Widget
// enumeration and value setting go through a pdfcpu context, positioned
// text comes from a ledongthuc reader over the same bytes, and inserts
// are applied immediately as single-page stamps. The document content is
// held in memory; Save writes the current bytes to disk.
type PDFDocument struct {
	data       []byte
	conf       *model.Configuration
	rasterizer Rasterizer

	pageCount int
	pageSizes []types.Dim

	textCache map[int]*pageText
	closed    bool
}

// Open reads a PDF from disk using an external rasterizer resolved from
// PATH for flattening.
func Open(path string) (*PDFDocument, error) {
	r, err := NewExternalRasterizer()
	if err != nil {
		return nil, &DocError{Backend: backendPDFCPU, Op: "open", Err: err}
	}
	return OpenWith(path, r)
}

// OpenWith reads a PDF from disk with an explicit rasterizer.
func OpenWith(path string, rasterizer Rasterizer) (*PDFDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DocError{Backend: backendPDFCPU, Op: "open", Err: err}
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	d := &PDFDocument{
		data:       data,
		conf:       conf,
		rasterizer: rasterizer,
	}
	if err := d.refreshPageInfo(); err != nil {
		return nil, &DocError{Backend: backendPDFCPU, Op: "open", Err: err}
	}
	return d, nil
}

// readContext parses the current document bytes into a pdfcpu context.
func (d *PDFDocument) readContext() (*model.Context, error) {
	ctx, err := api.ReadContext(bytes.NewReader(d.data), d.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx, nil
}

func (d *PDFDocument) refreshPageInfo() error {
	ctx, err := d.readContext()
	if err != nil {
		return err
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return fmt.Errorf("failed to read page dimensions: %w", err)
	}
	d.pageCount = ctx.PageCount
	d.pageSizes = dims
	d.textCache = nil
	return nil
}

// PageCount returns the number of pages.
func (d *PDFDocument) PageCount() int {
	return d.pageCount
}

// PageSize returns the page dimensions in points.
func (d *PDFDocument) PageSize(page int) (float64, float64, error) {
	if d.closed {
		return 0, 0, &DocError{Backend: backendPDFCPU, Op: "page_size", Err: ErrDocumentClosed}
	}
	if page < 0 || page >= len(d.pageSizes) {
		return 0, 0, &DocError{Backend: backendPDFCPU, Op: "page_size", Err: ErrInvalidPage}
	}
	return d.pageSizes[page].Width, d.pageSizes[page].Height, nil
}

// SearchText finds literal occurrences of term on a page. Matching is
// case-insensitive; clip, when given, keeps only hits intersecting it.
func (d *PDFDocument) SearchText(page int, term string, clip *Rect) ([]Rect, error) {
	if d.closed {
		return nil, &DocError{Backend: backendPDFCPU, Op: "search_text", Err: ErrDocumentClosed}
	}
	pt, err := d.pageTextFor(page)
	if err != nil {
		return nil, &DocError{Backend: backendPDFCPU, Op: "search_text", Err: err}
	}

	hits := pt.search(term)
	if clip == nil {
		return hits, nil
	}
	var clipped []Rect
	for _, h := range hits {
		if h.Intersects(*clip) {
			clipped = append(clipped, h)
		}
	}
	return clipped, nil
}

func (d *PDFDocument) pageTextFor(page int) (*pageText, error) {
	if page < 0 || page >= d.pageCount {
		return nil, ErrInvalidPage
	}
	if pt, ok := d.textCache[page]; ok {
		return pt, nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(d.data), int64(len(d.data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open text reader: %w", err)
	}
	content := reader.Page(page + 1).Content()

	_, h, err := d.PageSize(page)
	if err != nil {
		return nil, err
	}
	pt := buildPageText(content, h)
	if d.textCache == nil {
		d.textCache = make(map[int]*pageText)
	}
	d.textCache[page] = pt
	return pt, nil
}

// Widgets walks the AcroForm field tree and returns every widget found.
func (d *PDFDocument) Widgets() ([]Widget, error) {
	if d.closed {
		return nil, &DocError{Backend: backendPDFCPU, Op: "widgets", Err: ErrDocumentClosed}
	}
	ctx, err := d.readContext()
	if err != nil {
		return nil, &DocError{Backend: backendPDFCPU, Op: "widgets", Err: err}
	}
	widgets, err := collectWidgets(ctx)
	if err != nil {
		return nil, &DocError{Backend: backendPDFCPU, Op: "widgets", Err: err}
	}

	// Widget rectangles come out of the PDF in bottom-left space; flip
	// them into the engine's top-left space.
	for i := range widgets {
		_, h, err := d.PageSize(widgets[i].Page)
		if err != nil {
			continue
		}
		r := widgets[i].Rect
		widgets[i].Rect = Rect{X0: r.X0, Y0: h - r.Y1, X1: r.X1, Y1: h - r.Y0}
	}
	return widgets, nil
}

// SetWidgetValue sets the V entry of the named field and flags the form
// so viewers regenerate appearances, then reserializes the document.
func (d *PDFDocument) SetWidgetValue(name, value string) error {
	if d.closed {
		return &DocError{Backend: backendPDFCPU, Op: "set_widget_value", Err: ErrDocumentClosed}
	}
	ctx, err := d.readContext()
	if err != nil {
		return &DocError{Backend: backendPDFCPU, Op: "set_widget_value", Err: err}
	}

	if err := setFieldValue(ctx, name, value); err != nil {
		return &DocError{Backend: backendPDFCPU, Op: "set_widget_value", Err: err}
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return &DocError{Backend: backendPDFCPU, Op: "set_widget_value", Err: fmt.Errorf("failed to write context: %w", err)}
	}
	d.data = buf.Bytes()
	d.textCache = nil
	return nil
}

// InsertText stamps a black text string onto a page at the baseline point.
func (d *PDFDocument) InsertText(page int, at Point, text string, fontSize float64) error {
	if d.closed {
		return &DocError{Backend: backendPDFCPU, Op: "insert_text", Err: ErrDocumentClosed}
	}
	_, h, err := d.PageSize(page)
	if err != nil {
		return err
	}

	desc := fmt.Sprintf("font:Helvetica, points:%d, sc:1 abs, pos:bl, off:%.2f %.2f, col:0 0 0, rot:0, op:1",
		int(fontSize), at.X, h-at.Y)
	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		return &DocError{Backend: backendPDFCPU, Op: "insert_text", Err: err}
	}
	return d.applyStamp(page, wm, "insert_text")
}

// InsertImage stamps an image file scaled into the given rectangle.
func (d *PDFDocument) InsertImage(page int, r Rect, imagePath string) error {
	if d.closed {
		return &DocError{Backend: backendPDFCPU, Op: "insert_image", Err: ErrDocumentClosed}
	}
	_, h, err := d.PageSize(page)
	if err != nil {
		return err
	}

	scale, err := imageScaleFor(imagePath, r)
	if err != nil {
		return &DocError{Backend: backendPDFCPU, Op: "insert_image", Err: err}
	}
	desc := fmt.Sprintf("sc:%.4f abs, pos:bl, off:%.2f %.2f, rot:0, op:1", scale, r.X0, h-r.Y1)
	wm, err := api.ImageWatermark(imagePath, desc, true, false, types.POINTS)
	if err != nil {
		return &DocError{Backend: backendPDFCPU, Op: "insert_image", Err: err}
	}
	return d.applyStamp(page, wm, "insert_image")
}

// InsertPDF stamps the first page of another PDF at natural size.
func (d *PDFDocument) InsertPDF(page int, r Rect, pdfPath string) error {
	if d.closed {
		return &DocError{Backend: backendPDFCPU, Op: "insert_pdf", Err: ErrDocumentClosed}
	}
	_, h, err := d.PageSize(page)
	if err != nil {
		return err
	}

	desc := fmt.Sprintf("sc:1 abs, pos:bl, off:%.2f %.2f, rot:0, op:1", r.X0, h-r.Y1)
	wm, err := api.PDFWatermark(pdfPath, desc, true, false, types.POINTS)
	if err != nil {
		return &DocError{Backend: backendPDFCPU, Op: "insert_pdf", Err: err}
	}
	return d.applyStamp(page, wm, "insert_pdf")
}

func (d *PDFDocument) applyStamp(page int, wm *model.Watermark, op string) error {
	var buf bytes.Buffer
	pages := []string{strconv.Itoa(page + 1)}
	if err := api.AddWatermarks(bytes.NewReader(d.data), &buf, pages, wm, d.conf); err != nil {
		return &DocError{Backend: backendPDFCPU, Op: op, Err: fmt.Errorf("failed to apply stamp: %w", err)}
	}
	d.data = buf.Bytes()
	d.textCache = nil
	return nil
}

// Flatten rasterizes every page and rebuilds the document from the page
// images at the original page sizes.
func (d *PDFDocument) Flatten(scale float64) error {
	if d.closed {
		return &DocError{Backend: backendPDFCPU, Op: "flatten", Err: ErrDocumentClosed}
	}
	if scale <= 0 {
		return &DocError{Backend: backendPDFCPU, Op: "flatten", Err: fmt.Errorf("scale must be positive, got %v", scale)}
	}

	dpi := int(scale * 72)
	images, err := d.rasterizer.Render(d.data, dpi)
	if err != nil {
		return &DocError{Backend: backendPDFCPU, Op: "flatten", Err: err}
	}
	if len(images) != d.pageCount {
		return &DocError{
			Backend: backendPDFCPU,
			Op:      "flatten",
			Err:     fmt.Errorf("rasterizer produced %d pages, want %d", len(images), d.pageCount),
		}
	}

	out, err := assembleImagePDF(d.pageSizes, images)
	if err != nil {
		return &DocError{Backend: backendPDFCPU, Op: "flatten", Err: err}
	}
	d.data = out
	return d.refreshPageInfo()
}

// Save writes the current document bytes to path.
func (d *PDFDocument) Save(path string) error {
	if d.closed {
		return &DocError{Backend: backendPDFCPU, Op: "save", Err: ErrDocumentClosed}
	}
	if err := os.WriteFile(path, d.data, 0o644); err != nil {
		return &DocError{Backend: backendPDFCPU, Op: "save", Err: err}
	}
	return nil
}

// Close releases the document.
func (d *PDFDocument) Close() error {
	d.closed = true
	d.data = nil
	d.textCache = nil
	return nil
}

// imageScaleFor computes the absolute scale factor that fits an image
// into the target rectangle, based on its pixel dimensions at 72 DPI.
func imageScaleFor(imagePath string, r Rect) (float64, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, fmt.Errorf("failed to decode image config: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return 0, fmt.Errorf("image has zero dimension")
	}

	sx := r.Width() / float64(cfg.Width)
	sy := r.Height() / float64(cfg.Height)
	if sx < sy {
		return sx, nil
	}
	return sy, nil
}
