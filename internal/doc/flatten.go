package doc

import (
	"bytes"
	"fmt"

	"codeberg.org/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// assembleImagePDF builds a new document whose pages contain nothing but
// the rendered page images, each drawn full-bleed at the original page
// size. The result carries no widgets, live text or vector content.
func assembleImagePDF(sizes []types.Dim, images [][]byte) ([]byte, error) {
	if len(sizes) != len(images) {
		return nil, fmt.Errorf("have %d page sizes for %d images", len(sizes), len(images))
	}

	out := fpdf.New("P", "pt", "A4", "")
	for i, img := range images {
		w, h := sizes[i].Width, sizes[i].Height
		out.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		name := fmt.Sprintf("page%d", i)
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		out.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
		out.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := out.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate flattened PDF: %w", err)
	}
	return buf.Bytes(), nil
}
