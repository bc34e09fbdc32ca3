// Package locate implements the fallback placement heuristics: finding
// where to substitute a defined term's value and where to place the
// signature image when a document carries no usable form fields.
package locate

import "github.com/peterzat/auto-pdf-signer/internal/doc"

// RegionLog records the padded rectangles of accepted fills for the
// duration of one document run. Regions accumulate in order and are
// never removed; candidates intersecting any recorded region must be
// rejected so fills never overlap.
type RegionLog struct {
	regions []doc.Rect
}

// NewRegionLog returns an empty log.
func NewRegionLog() *RegionLog {
	return &RegionLog{}
}

// Add records an accepted fill region.
func (l *RegionLog) Add(r doc.Rect) {
	l.regions = append(l.regions, r)
}

// IntersectsAny reports whether r intersects any recorded region.
// A linear scan is plenty at the handful of fills a document sees.
func (l *RegionLog) IntersectsAny(r doc.Rect) bool {
	for _, prev := range l.regions {
		if r.Intersects(prev) {
			return true
		}
	}
	return false
}

// Regions returns the recorded regions in insertion order.
func (l *RegionLog) Regions() []doc.Rect {
	out := make([]doc.Rect, len(l.regions))
	copy(out, l.regions)
	return out
}

// TermSet tracks definition terms that have already been substituted.
// Once a term enters the set it stays there for the rest of the run,
// enforcing first-occurrence-only semantics.
type TermSet struct {
	terms map[string]struct{}
}

// NewTermSet returns an empty set.
func NewTermSet() *TermSet {
	return &TermSet{terms: make(map[string]struct{})}
}

// Add marks a term as substituted.
func (s *TermSet) Add(term string) {
	s.terms[term] = struct{}{}
}

// Has reports whether a term was already substituted.
func (s *TermSet) Has(term string) bool {
	_, ok := s.terms[term]
	return ok
}

// Terms returns the substituted terms in unspecified order.
func (s *TermSet) Terms() []string {
	out := make([]string, 0, len(s.terms))
	for t := range s.terms {
		out = append(out, t)
	}
	return out
}

// Len returns the number of substituted terms.
func (s *TermSet) Len() int {
	return len(s.terms)
}
