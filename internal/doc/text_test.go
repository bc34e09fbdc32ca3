package doc

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frag builds extractor output: a run of chars with its baseline origin
// in bottom-left space, the convention the underlying library reports.
func frag(s string, x, y, w, fontSize float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: w, FontSize: fontSize}
}

func TestBuildPageTextCoordinateConversion(t *testing.T) {
	content := pdf.Content{Text: []pdf.Text{
		frag("Hello", 50, 700, 30, 12),
	}}
	pt := buildPageText(content, 792)

	hits := pt.search("Hello")
	require.Len(t, hits, 1)
	assert.Equal(t, NewRect(50, 792-700-12, 80, 792-700), hits[0])
}

func TestBuildPageTextFontSizeFallback(t *testing.T) {
	content := pdf.Content{Text: []pdf.Text{
		frag("Hello", 50, 700, 30, 0),
	}}
	pt := buildPageText(content, 792)

	hits := pt.search("hello")
	require.Len(t, hits, 1)
	assert.InDelta(t, 792-700-defaultTextHeight, hits[0].Y0, 0.001)
}

func TestPageTextSearchAcrossFragments(t *testing.T) {
	// "Sign" and "ature" are separate runs on the same baseline; the
	// search must see the concatenated row.
	content := pdf.Content{Text: []pdf.Text{
		frag("Sign", 50, 700, 24, 12),
		frag("ature", 74, 700, 30, 12),
	}}
	pt := buildPageText(content, 792)

	hits := pt.search("signature")
	require.Len(t, hits, 1)
	assert.InDelta(t, 50, hits[0].X0, 0.001)
	assert.InDelta(t, 104, hits[0].X1, 0.001)
}

func TestPageTextSearchPartialFragment(t *testing.T) {
	// Ten chars over 100 points: each char spans 10 points.
	content := pdf.Content{Text: []pdf.Text{
		frag("ABCDEFGHIJ", 0, 700, 100, 12),
	}}
	pt := buildPageText(content, 792)

	hits := pt.search("def")
	require.Len(t, hits, 1)
	assert.InDelta(t, 30, hits[0].X0, 0.001)
	assert.InDelta(t, 60, hits[0].X1, 0.001)
}

func TestPageTextSearchCaseInsensitive(t *testing.T) {
	content := pdf.Content{Text: []pdf.Text{
		frag("RECIPIENT", 50, 700, 60, 12),
	}}
	pt := buildPageText(content, 792)

	assert.Len(t, pt.search("Recipient"), 1)
	assert.Len(t, pt.search("recipient"), 1)
}

func TestPageTextSearchMultipleHits(t *testing.T) {
	content := pdf.Content{Text: []pdf.Text{
		frag("name: x name: y", 0, 700, 150, 12),
	}}
	pt := buildPageText(content, 792)

	hits := pt.search("name:")
	assert.Len(t, hits, 2)
}

func TestBuildPageTextRowBucketing(t *testing.T) {
	// Fragments within rowTolerance of each other share a row even when
	// their baselines differ slightly; a distant fragment starts a new row.
	content := pdf.Content{Text: []pdf.Text{
		frag("World", 90, 699, 35, 12),
		frag("Hello ", 50, 700, 40, 12),
		frag("Below", 50, 650, 35, 12),
	}}
	pt := buildPageText(content, 792)

	require.Len(t, pt.rows, 2)
	assert.Len(t, pt.search("Hello World"), 1)
	assert.Len(t, pt.search("Below"), 1)
}

func TestPageTextSearchNoHit(t *testing.T) {
	content := pdf.Content{Text: []pdf.Text{
		frag("Hello", 50, 700, 30, 12),
	}}
	pt := buildPageText(content, 792)

	assert.Empty(t, pt.search("missing"))
	assert.Empty(t, pt.search(""))
}
