package sign

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/image/draw"
)

// artifactPixelDensity is the pixel-per-point density the signature
// image is resampled to, keeping it crisp through the final 2x flatten.
const artifactPixelDensity = 2.0

// signaturePDF renders the signature image into a single-page PDF of
// exactly width x height points and returns the temp file path together
// with a cleanup func. The caller must invoke cleanup on every path, so
// the artifact never outlives the placement call.
func signaturePDF(imagePath string, width, height float64) (string, func(), error) {
	img, err := loadScaledImage(imagePath, width, height)
	if err != nil {
		return "", nil, err
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return "", nil, fmt.Errorf("failed to encode signature image: %w", err)
	}

	tmp, err := os.CreateTemp("", "signature-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create signature artifact: %w", err)
	}
	path := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("failed to close signature artifact: %w", err)
	}
	cleanup := func() { os.Remove(path) }

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("signature", opts, &pngBuf)
	pdf.ImageOptions("signature", 0, 0, width, height, false, opts, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write signature artifact: %w", err)
	}
	return path, cleanup, nil
}

// loadScaledImage decodes the signature image and resamples it to the
// target box at artifact density.
func loadScaledImage(imagePath string, width, height float64) (image.Image, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open signature image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature image: %w", err)
	}

	pxW := int(width * artifactPixelDensity)
	pxH := int(height * artifactPixelDensity)
	if pxW < 1 || pxH < 1 {
		return nil, fmt.Errorf("signature box too small: %.1fx%.1f", width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, pxW, pxH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst, nil
}
