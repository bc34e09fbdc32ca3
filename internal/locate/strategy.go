package locate

import (
	"strings"

	"github.com/peterzat/auto-pdf-signer/internal/doc"
)

// Tunables of the fill-in heuristics. All distances are in points.
const (
	// fillFontSize is the size of substituted text.
	fillFontSize = 10.0

	// charWidthEstimate approximates the rendered width of one character
	// at fillFontSize, used to center text over a fill-in area.
	charWidthEstimate = 5.0

	// baselineLift keeps inserted text slightly above the bottom of an
	// underscore run so it sits on the printed line.
	baselineLift = 2.0
)

// underscoreRunLengths are the literal underscore runs probed for, in
// longest-first order so a long blank is claimed before its substrings.
var underscoreRunLengths = []int{24, 18, 14, 10, 7, 4, 3}

// Context carries everything a strategy needs to attempt a fill: the
// document, the located term occurrence, the value to substitute and the
// run's overlap bookkeeping.
type Context struct {
	Doc      doc.Document
	Page     int
	Term     string
	TermRect doc.Rect
	Value    string
	Regions  *RegionLog
}

// Fill is a successful substitution. Region, when non-nil, is recorded
// in the region log; AlsoReplace lists extra terms to mark substituted
// (used to block near-duplicate terms).
type Fill struct {
	Region      *doc.Rect
	AlsoReplace []string
}

// Strategy is one way to place a substituted value near a located term.
// Attempt returns (nil, nil) when the strategy does not apply, so the
// chain moves on; a non-nil Fill stops the chain; an error means an
// insert failed and the term is abandoned for this run.
type Strategy interface {
	Name() string
	Attempt(ctx *Context) (*Fill, error)
}

// defaultStrategies returns the substitution chain in its fixed order.
// Reordering here is the only way strategy precedence changes.
func defaultStrategies() []Strategy {
	return []Strategy{
		underscoreOverlay{},
		meansPhrase{},
		colonPhrase{},
		bracketPair{},
		underscoreLine{},
		parenthesis{},
		directPlacement{},
	}
}

// underscoreOverlay writes the value directly on top of an underscore
// run to the right of the term, longest runs first.
type underscoreOverlay struct{}

func (underscoreOverlay) Name() string { return "underscores" }

func (underscoreOverlay) Attempt(ctx *Context) (*Fill, error) {
	clip := doc.Rect{
		X0: ctx.TermRect.X1,
		Y0: ctx.TermRect.Y0 - 10,
		X1: ctx.TermRect.X1 + 500,
		Y1: ctx.TermRect.Y1 + 50,
	}
	for _, n := range underscoreRunLengths {
		hits, err := ctx.Doc.SearchText(ctx.Page, strings.Repeat("_", n), &clip)
		if err != nil {
			return nil, err
		}
		if len(hits) == 0 {
			continue
		}

		u := hits[0]
		at := doc.Point{X: u.X0, Y: u.Y1 - baselineLift}
		if err := ctx.Doc.InsertText(ctx.Page, at, ctx.Value, fillFontSize); err != nil {
			return nil, err
		}
		return &Fill{}, nil
	}
	return nil, nil
}

// meansPhrase appends the value after a "<term> means" phrase.
type meansPhrase struct{}

func (meansPhrase) Name() string { return "means" }

func (meansPhrase) Attempt(ctx *Context) (*Fill, error) {
	return appendAfterPhrase(ctx, ctx.Term+" means")
}

// colonPhrase appends the value after a "<term>:" phrase.
type colonPhrase struct{}

func (colonPhrase) Name() string { return "colon" }

func (colonPhrase) Attempt(ctx *Context) (*Fill, error) {
	return appendAfterPhrase(ctx, ctx.Term+":")
}

func appendAfterPhrase(ctx *Context, phrase string) (*Fill, error) {
	hits, err := ctx.Doc.SearchText(ctx.Page, phrase, nil)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	m := hits[0]
	at := doc.Point{X: m.X1 + 5, Y: m.Y1}
	if err := ctx.Doc.InsertText(ctx.Page, at, " "+ctx.Value, fillFontSize); err != nil {
		return nil, err
	}
	return &Fill{}, nil
}

// bracketPair centers the value inside a [ ... ] fill-in area following
// the term.
type bracketPair struct{}

func (bracketPair) Name() string { return "square brackets" }

func (bracketPair) Attempt(ctx *Context) (*Fill, error) {
	region := enlargedRegion(ctx.TermRect)
	opens, err := ctx.Doc.SearchText(ctx.Page, "[", &region)
	if err != nil {
		return nil, err
	}

	// The fill-in bracket sits after the term; brackets to its left
	// belong to other text.
	var open *doc.Rect
	for i := range opens {
		if opens[i].X0 > ctx.TermRect.X1 {
			open = &opens[i]
			break
		}
	}
	if open == nil {
		return nil, nil
	}

	closeClip := doc.Rect{X0: open.X1, Y0: open.Y0 - 10, X1: open.X1 + 500, Y1: open.Y1 + 10}
	closes, err := ctx.Doc.SearchText(ctx.Page, "]", &closeClip)
	if err != nil {
		return nil, err
	}
	if len(closes) == 0 {
		return nil, nil
	}
	cl := closes[0]

	filled := doc.Rect{X0: open.X0 - 20, Y0: open.Y0 - 10, X1: cl.X1 + 20, Y1: cl.Y1 + 10}
	if ctx.Regions.IntersectsAny(filled) {
		return nil, nil
	}

	centerX := (open.X1 + cl.X0) / 2
	textWidth := float64(len(ctx.Value)) * charWidthEstimate
	at := doc.Point{X: centerX - textWidth/2, Y: open.Y1 - 3}
	if err := ctx.Doc.InsertText(ctx.Page, at, ctx.Value, fillFontSize); err != nil {
		return nil, err
	}
	return &Fill{Region: &filled}, nil
}

// underscoreLine centers the value over a bare underscore run in the
// enlarged region, for fill-in lines that carry no brackets.
type underscoreLine struct{}

func (underscoreLine) Name() string { return "underscore line" }

func (underscoreLine) Attempt(ctx *Context) (*Fill, error) {
	region := enlargedRegion(ctx.TermRect)
	for _, n := range underscoreRunLengths {
		hits, err := ctx.Doc.SearchText(ctx.Page, strings.Repeat("_", n), &region)
		if err != nil {
			return nil, err
		}
		if len(hits) == 0 {
			continue
		}

		u := hits[0]
		filled := u.Inflated(20, 10)
		if ctx.Regions.IntersectsAny(filled) {
			return nil, nil
		}

		centerX := (u.X0 + u.X1) / 2
		textWidth := float64(len(ctx.Value)) * charWidthEstimate
		at := doc.Point{X: centerX - textWidth/2, Y: u.Y1 - baselineLift}
		if err := ctx.Doc.InsertText(ctx.Page, at, ctx.Value, fillFontSize); err != nil {
			return nil, err
		}
		return &Fill{Region: &filled}, nil
	}
	return nil, nil
}

// parenthesis writes the quoted value just after an opening parenthesis
// close to the term.
type parenthesis struct{}

func (parenthesis) Name() string { return "parentheses" }

func (parenthesis) Attempt(ctx *Context) (*Fill, error) {
	clip := doc.Rect{
		X0: ctx.TermRect.X1,
		Y0: ctx.TermRect.Y0 - 5,
		X1: ctx.TermRect.X1 + 100,
		Y1: ctx.TermRect.Y1 + 5,
	}
	hits, err := ctx.Doc.SearchText(ctx.Page, "(", &clip)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	p := hits[0]
	filled := doc.Rect{X0: p.X0 - 20, Y0: p.Y0 - 10, X1: p.X0 + 200, Y1: p.Y1 + 10}
	if ctx.Regions.IntersectsAny(filled) {
		return nil, nil
	}

	at := doc.Point{X: p.X1 + 2, Y: p.Y1}
	if err := ctx.Doc.InsertText(ctx.Page, at, `"`+ctx.Value+`"`, fillFontSize); err != nil {
		return nil, err
	}

	fill := &Fill{Region: &filled}
	// "Representatives" and "Representative" are substring matches of
	// each other; filling one must block the other.
	if ctx.Term == "Representatives" {
		fill.AlsoReplace = []string{"Representative"}
	}
	return fill, nil
}

// directPlacement writes the quoted value right after the term. It is
// the terminal strategy and cannot fail to match.
type directPlacement struct{}

func (directPlacement) Name() string { return "direct placement" }

func (directPlacement) Attempt(ctx *Context) (*Fill, error) {
	at := doc.Point{X: ctx.TermRect.X1 + 10, Y: ctx.TermRect.Y1}
	if err := ctx.Doc.InsertText(ctx.Page, at, ` ("`+ctx.Value+`")`, fillFontSize); err != nil {
		return nil, err
	}
	filled := doc.Rect{
		X0: ctx.TermRect.X0 - 20,
		Y0: ctx.TermRect.Y0 - 10,
		X1: ctx.TermRect.X1 + 200,
		Y1: ctx.TermRect.Y1 + 10,
	}
	return &Fill{Region: &filled}, nil
}

// enlargedRegion is the wide search window used by the bracket and bare
// underscore strategies: the term extended well to the right and a bit
// to the left, spanning the surrounding lines.
func enlargedRegion(term doc.Rect) doc.Rect {
	return doc.Rect{
		X0: term.X0 - 50,
		Y0: term.Y0 - 30,
		X1: term.X1 + 700,
		Y1: term.Y1 + 60,
	}
}
