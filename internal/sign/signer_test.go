package sign

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterzat/auto-pdf-signer/internal/doc"
	"github.com/peterzat/auto-pdf-signer/internal/entity"
)

func record(t *testing.T, input string) *entity.Record {
	t.Helper()
	rec, _, err := entity.Parse(strings.NewReader(input))
	require.NoError(t, err)
	return rec
}

// writeTestImage writes a small opaque PNG usable as a signature image.
func writeTestImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 20, G: 20, B: 120, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "signature.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func newTestSigner(t *testing.T, scale float64) (*Signer, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "signed.pdf")
	return New(Options{
		SignatureImage: writeTestImage(t),
		OutputPath:     out,
		FlattenScale:   scale,
	}), out
}

func letterPage() doc.MemoryPage {
	return doc.MemoryPage{Width: 612, Height: 792}
}

func TestSignFormFieldsSkipFallback(t *testing.T) {
	d := doc.NewMemoryDocument(letterPage())
	d.AddWidget(doc.Widget{Name: "Company Name", Type: doc.WidgetText, Rect: doc.NewRect(100, 100, 300, 120)})
	d.AddWidget(doc.Widget{Name: "Comments", Type: doc.WidgetText, Rect: doc.NewRect(100, 140, 300, 160)})
	d.AddText(0, "Signature", doc.NewRect(70, 600, 130, 612))

	s, out := newTestSigner(t, 0)
	require.NoError(t, s.Sign(d, record(t, "company=Acme Corp\n")))

	// Structured filling succeeded, so the heuristic path never ran and
	// nothing was drawn onto the pages.
	assert.Empty(t, d.Inserts())

	flattened, scale := d.Flattened()
	assert.True(t, flattened)
	assert.Equal(t, DefaultFlattenScale, scale)
	assert.Equal(t, out, d.SavedPath())
}

func TestSignSignatureWidget(t *testing.T) {
	d := doc.NewMemoryDocument(letterPage())
	sigRect := doc.NewRect(100, 500, 250, 550)
	d.AddWidget(doc.Widget{Name: "sig_1", Type: doc.WidgetSignature, Rect: sigRect})

	s, _ := newTestSigner(t, 0)
	require.NoError(t, s.Sign(d, record(t, "company=Acme Corp\n")))

	stamps := d.InsertsOfKind(doc.InsertKindPDF)
	require.Len(t, stamps, 1)
	assert.Equal(t, sigRect, stamps[0].Rect)

	// No fallback annotations alongside a structured signature.
	assert.Empty(t, d.InsertsOfKind(doc.InsertKindText))

	// The stamped artifact is cleaned up after placement.
	_, err := os.Stat(stamps[0].Path)
	assert.True(t, os.IsNotExist(err))
}

func TestSignFallbackPlacement(t *testing.T) {
	d := doc.NewMemoryDocument(letterPage())
	d.AddText(0, "Sign here", doc.NewRect(70, 600, 130, 612))

	s, out := newTestSigner(t, 0)
	rec := record(t, "company=Acme Corp\ntitle=CEO\n")
	require.NoError(t, s.Sign(d, rec))

	stamps := d.InsertsOfKind(doc.InsertKindPDF)
	require.Len(t, stamps, 1)
	sig := stamps[0].Rect
	assert.Equal(t, doc.NewRect(70, 622, 220, 672), sig)

	// Entity pairs stacked below the signature box.
	texts := d.InsertsOfKind(doc.InsertKindText)
	require.Len(t, texts, 2)
	assert.Equal(t, "company: Acme Corp", texts[0].Text)
	assert.Equal(t, doc.Point{X: 70, Y: sig.Y1 + annotationGap}, texts[0].At)
	assert.Equal(t, "title: CEO", texts[1].Text)
	assert.Equal(t, doc.Point{X: 70, Y: sig.Y1 + annotationGap + annotationLineStep}, texts[1].At)

	flattened, _ := d.Flattened()
	assert.True(t, flattened)
	assert.Equal(t, out, d.SavedPath())
}

func TestSignFallbackFillsDefinitions(t *testing.T) {
	d := doc.NewMemoryDocument(letterPage())
	d.AddText(0, "Recipient:", doc.NewRect(50, 100, 115, 112))

	s, _ := newTestSigner(t, 0)
	require.NoError(t, s.Sign(d, record(t, "company=Acme Corp\n")))

	texts := d.InsertsOfKind(doc.InsertKindText)
	require.NotEmpty(t, texts)
	assert.Equal(t, " Acme Corp", texts[0].Text)

	// With no keyword anywhere the signature lands in the fixed
	// bottom-left box of the last page.
	stamps := d.InsertsOfKind(doc.InsertKindPDF)
	require.Len(t, stamps, 1)
	assert.Equal(t, doc.NewRect(50, 792-150, 200, 792-100), stamps[0].Rect)
}

func TestSignUnmatchedFieldsFallThrough(t *testing.T) {
	d := doc.NewMemoryDocument(letterPage())
	d.AddWidget(doc.Widget{Name: "Favorite Color", Type: doc.WidgetText, Rect: doc.NewRect(100, 100, 300, 120)})

	s, _ := newTestSigner(t, 0)
	require.NoError(t, s.Sign(d, record(t, "company=Acme Corp\n")))

	// No field matched, so the fallback stamped a signature anyway.
	assert.Len(t, d.InsertsOfKind(doc.InsertKindPDF), 1)
}

func TestSignCustomFlattenScale(t *testing.T) {
	d := doc.NewMemoryDocument(letterPage())

	s, _ := newTestSigner(t, 3.0)
	require.NoError(t, s.Sign(d, record(t, "company=Acme Corp\n")))

	_, scale := d.Flattened()
	assert.Equal(t, 3.0, scale)
}

func TestSignBadSignatureImageStillSaves(t *testing.T) {
	d := doc.NewMemoryDocument(letterPage())

	out := filepath.Join(t.TempDir(), "signed.pdf")
	s := New(Options{
		SignatureImage: filepath.Join(t.TempDir(), "missing.png"),
		OutputPath:     out,
	})
	require.NoError(t, s.Sign(d, record(t, "company=Acme Corp\n")))

	// The stamp failed but the run is best effort: the document still
	// flattens, saves and carries the entity annotations.
	assert.Empty(t, d.InsertsOfKind(doc.InsertKindPDF))
	assert.NotEmpty(t, d.InsertsOfKind(doc.InsertKindText))
	assert.Equal(t, out, d.SavedPath())
}

func TestSignaturePDFArtifact(t *testing.T) {
	path, cleanup, err := signaturePDF(writeTestImage(t), 150, 50)
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSignaturePDFMissingImage(t *testing.T) {
	_, _, err := signaturePDF(filepath.Join(t.TempDir(), "missing.png"), 150, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open signature image")
}
