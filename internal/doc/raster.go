package doc

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Rasterizer renders every page of a PDF to a PNG image at the given
// resolution. Implementations return one image per page, in page order.
type Rasterizer interface {
	Render(pdfData []byte, dpi int) ([][]byte, error)
}

// ExternalRasterizer renders pages by invoking an external tool, either
// poppler's pdftoppm or mupdf's mutool, whichever is on PATH.
type ExternalRasterizer struct {
	pdftoppm string
	mutool   string
}

// NewExternalRasterizer resolves a rendering tool from PATH. pdftoppm is
// preferred; mutool is the fallback.
func NewExternalRasterizer() (*ExternalRasterizer, error) {
	r := &ExternalRasterizer{}
	if path, err := exec.LookPath("pdftoppm"); err == nil {
		r.pdftoppm = path
		return r, nil
	}
	if path, err := exec.LookPath("mutool"); err == nil {
		r.mutool = path
		return r, nil
	}
	return nil, fmt.Errorf("no page rasterizer found: install poppler (pdftoppm) or mupdf (mutool)")
}

// Render writes the document to a scratch directory, runs the tool and
// collects the page images in order.
func (r *ExternalRasterizer) Render(pdfData []byte, dpi int) ([][]byte, error) {
	workDir, err := os.MkdirTemp("", "pdfsigner-raster-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	inPath := filepath.Join(workDir, "in.pdf")
	if err := os.WriteFile(inPath, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write scratch PDF: %w", err)
	}

	var cmd *exec.Cmd
	switch {
	case r.pdftoppm != "":
		cmd = exec.Command(r.pdftoppm, "-png", "-r", strconv.Itoa(dpi),
			inPath, filepath.Join(workDir, "page"))
	case r.mutool != "":
		cmd = exec.Command(r.mutool, "draw", "-r", strconv.Itoa(dpi),
			"-o", filepath.Join(workDir, "page-%d.png"), inPath)
	default:
		return nil, fmt.Errorf("rasterizer not configured")
	}

	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("rasterizer failed: %w: %s", err, out)
	}
	return readPageImages(workDir)
}

// pageNumPattern extracts the trailing page number from rendered file
// names like page-3.png or page-03.png.
var pageNumPattern = regexp.MustCompile(`-(\d+)\.png$`)

func readPageImages(dir string) ([][]byte, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to list page images: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("rasterizer produced no page images")
	}

	sort.Slice(paths, func(i, j int) bool {
		return pageNumber(paths[i]) < pageNumber(paths[j])
	})

	images := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read page image %s: %w", p, err)
		}
		images = append(images, data)
	}
	return images, nil
}

func pageNumber(path string) int {
	m := pageNumPattern.FindStringSubmatch(path)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
