package locate

import (
	"log"
	"strings"

	"github.com/peterzat/auto-pdf-signer/internal/doc"
	"github.com/peterzat/auto-pdf-signer/internal/entity"
)

// maxDefinitionPages bounds the search to the early pages where legal
// documents put their definitions sections.
const maxDefinitionPages = 5

// termPadding inflates a located term before the overlap check.
const termPadding = 10.0

// DefaultDefinitionTerms lists the defined terms actively substituted.
// The machinery handles any term list; only Recipient is enabled to
// avoid over-filling documents that reuse definition-like words.
func DefaultDefinitionTerms() []string {
	return []string{"Recipient"}
}

// companyEntityKeys are the entity keys that can provide the substituted
// value, matched case-insensitively in record order.
var companyEntityKeys = []string{"company", "name", "entity"}

// DefinitionLocator substitutes the signing party's name into definition
// fill-in areas found by scanning rendered page text.
type DefinitionLocator struct {
	terms      []string
	strategies []Strategy
}

// NewDefinitionLocator creates a locator for the default term list.
func NewDefinitionLocator() *DefinitionLocator {
	return &DefinitionLocator{
		terms:      DefaultDefinitionTerms(),
		strategies: defaultStrategies(),
	}
}

// NewDefinitionLocatorForTerms creates a locator for a custom term list.
func NewDefinitionLocatorForTerms(terms []string) *DefinitionLocator {
	return &DefinitionLocator{
		terms:      terms,
		strategies: defaultStrategies(),
	}
}

// FillReport summarizes one FillDefinitions run.
type FillReport struct {
	// Filled counts the terms that were substituted.
	Filled int
	// Replaced holds every term marked substituted, including terms
	// blocked as near-duplicates of a filled one.
	Replaced []string
	// Regions holds the padded rectangles of the recorded fills.
	Regions []doc.Rect
}

// Any reports whether at least one definition was filled.
func (r *FillReport) Any() bool {
	return r.Filled > 0
}

// FillDefinitions searches the early pages for each active term and
// substitutes the company value using the strategy chain. Each term is
// substituted at most once per run; a term whose padded occurrence
// overlaps an earlier fill is abandoned for the whole run.
func (l *DefinitionLocator) FillDefinitions(d doc.Document, rec *entity.Record) (*FillReport, error) {
	report := &FillReport{}

	value, ok := CompanyValue(rec)
	if !ok {
		log.Printf("no company name found in entity data for definition filling")
		return report, nil
	}

	maxPages := d.PageCount()
	if maxPages > maxDefinitionPages {
		maxPages = maxDefinitionPages
	}

	regions := NewRegionLog()
	replaced := NewTermSet()
	log.Printf("searching for definition fields to fill with %q", value)

	for _, term := range l.terms {
		if replaced.Has(term) {
			continue
		}

		page, inst, found := firstOccurrence(d, term, maxPages)
		if !found {
			continue
		}
		log.Printf("found %q on page %d", term, page+1)

		if regions.IntersectsAny(inst.Inflated(termPadding, termPadding)) {
			log.Printf("skipping %q: overlaps a previously filled area", term)
			continue
		}

		ctx := &Context{
			Doc:      d,
			Page:     page,
			Term:     term,
			TermRect: inst,
			Value:    value,
			Regions:  regions,
		}
		l.runStrategies(ctx, replaced, report)
	}

	report.Replaced = replaced.Terms()
	report.Regions = regions.Regions()
	if report.Filled > 0 {
		log.Printf("completed filling definitions: replaced %d definition(s)", replaced.Len())
	} else {
		log.Printf("no definition fields found to fill")
	}
	return report, nil
}

// runStrategies tries the chain in order and stops at the first success.
// An insert error abandons the term for this run; the fill simply did
// not happen.
func (l *DefinitionLocator) runStrategies(ctx *Context, replaced *TermSet, report *FillReport) {
	for _, s := range l.strategies {
		fill, err := s.Attempt(ctx)
		if err != nil {
			log.Printf("error filling definition %q on page %d: %v", ctx.Term, ctx.Page+1, err)
			return
		}
		if fill == nil {
			continue
		}

		if fill.Region != nil {
			ctx.Regions.Add(*fill.Region)
		}
		replaced.Add(ctx.Term)
		for _, extra := range fill.AlsoReplace {
			replaced.Add(extra)
		}
		report.Filled++
		log.Printf("filled definition %q (%s) with %q on page %d", ctx.Term, s.Name(), ctx.Value, ctx.Page+1)
		return
	}
}

// firstOccurrence returns the first hit of term within the page scope:
// the first page carrying any match, and the first match on that page.
func firstOccurrence(d doc.Document, term string, maxPages int) (int, doc.Rect, bool) {
	for page := 0; page < maxPages; page++ {
		hits, err := d.SearchText(page, term, nil)
		if err != nil {
			log.Printf("error searching for %q on page %d: %v", term, page+1, err)
			continue
		}
		if len(hits) > 0 {
			return page, hits[0], true
		}
	}
	return 0, doc.Rect{}, false
}

// CompanyValue resolves the signing party's name from the record: the
// value of the first key, in record order, that case-insensitively
// equals company, name or entity.
func CompanyValue(rec *entity.Record) (string, bool) {
	for _, p := range rec.Pairs() {
		keyLower := strings.ToLower(p.Key)
		for _, want := range companyEntityKeys {
			if keyLower == want {
				return p.Value, true
			}
		}
	}
	return "", false
}
