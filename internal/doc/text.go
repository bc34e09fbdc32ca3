package doc

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// rowTolerance is the maximum baseline distance, in points, between two
// text fragments that still count as the same line.
const rowTolerance = 2.0

// defaultTextHeight approximates glyph height when the extractor reports
// no font size.
const defaultTextHeight = 12.0

// textFragment is a positioned run of characters on a page, already
// converted to top-left origin coordinates.
type textFragment struct {
	text string
	rect Rect
}

// textRow is a sequence of fragments sharing a baseline, ordered
// left-to-right.
type textRow struct {
	fragments []textFragment
}

// pageText holds the searchable text of a single page.
type pageText struct {
	rows []textRow
}

// buildPageText converts extracted page content into search rows.
// Fragments are bucketed by baseline, then ordered by x within each row.
func buildPageText(content pdf.Content, pageHeight float64) *pageText {
	frags := make([]textFragment, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		height := t.FontSize
		if height == 0 {
			height = defaultTextHeight
		}
		// ledongthuc reports the baseline origin in bottom-left space.
		frags = append(frags, textFragment{
			text: t.S,
			rect: Rect{
				X0: t.X,
				Y0: pageHeight - t.Y - height,
				X1: t.X + t.W,
				Y1: pageHeight - t.Y,
			},
		})
	}

	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].rect.Y1 != frags[j].rect.Y1 {
			return frags[i].rect.Y1 < frags[j].rect.Y1
		}
		return frags[i].rect.X0 < frags[j].rect.X0
	})

	pt := &pageText{}
	for _, f := range frags {
		if n := len(pt.rows); n > 0 {
			last := &pt.rows[n-1]
			prev := last.fragments[len(last.fragments)-1]
			if f.rect.Y1-prev.rect.Y1 <= rowTolerance {
				last.fragments = append(last.fragments, f)
				continue
			}
		}
		pt.rows = append(pt.rows, textRow{fragments: []textFragment{f}})
	}
	for i := range pt.rows {
		sort.SliceStable(pt.rows[i].fragments, func(a, b int) bool {
			return pt.rows[i].fragments[a].rect.X0 < pt.rows[i].fragments[b].rect.X0
		})
	}
	return pt
}

// search finds every occurrence of term on the page, case-insensitively,
// and returns the bounding rectangle of each hit in reading order.
func (pt *pageText) search(term string) []Rect {
	if term == "" {
		return nil
	}
	needle := strings.ToLower(term)

	var hits []Rect
	for _, row := range pt.rows {
		hits = append(hits, row.search(needle)...)
	}
	return hits
}

// search scans one row for the lower-cased needle. The row text is the
// concatenation of its fragment strings; hit rectangles are interpolated
// proportionally inside the fragments that carry the matched characters.
func (row *textRow) search(needle string) []Rect {
	var sb strings.Builder
	offsets := make([]int, len(row.fragments)+1)
	for i, f := range row.fragments {
		offsets[i] = sb.Len()
		sb.WriteString(f.text)
	}
	offsets[len(row.fragments)] = sb.Len()
	haystack := strings.ToLower(sb.String())

	var hits []Rect
	from := 0
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(needle)
		if r, ok := row.spanRect(offsets, start, end); ok {
			hits = append(hits, r)
		}
		from = start + 1
	}
	return hits
}

// spanRect computes the rectangle covering character positions
// [start, end) of the row's concatenated text.
func (row *textRow) spanRect(offsets []int, start, end int) (Rect, bool) {
	first, last := -1, -1
	for i := range row.fragments {
		if offsets[i+1] > start && offsets[i] < end {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return Rect{}, false
	}

	fr := row.fragments[first]
	lr := row.fragments[last]
	x0 := interpolateX(fr, start-offsets[first])
	x1 := interpolateX(lr, end-offsets[last])

	r := Rect{X0: x0, X1: x1, Y0: fr.rect.Y0, Y1: fr.rect.Y1}
	for i := first; i <= last; i++ {
		if row.fragments[i].rect.Y0 < r.Y0 {
			r.Y0 = row.fragments[i].rect.Y0
		}
		if row.fragments[i].rect.Y1 > r.Y1 {
			r.Y1 = row.fragments[i].rect.Y1
		}
	}
	return r, true
}

// interpolateX maps a character offset within a fragment to an x
// coordinate, assuming uniform glyph advance.
func interpolateX(f textFragment, chars int) float64 {
	n := len(f.text)
	if chars <= 0 || n == 0 {
		return f.rect.X0
	}
	if chars >= n {
		return f.rect.X1
	}
	return f.rect.X0 + f.rect.Width()*float64(chars)/float64(n)
}
