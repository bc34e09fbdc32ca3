package locate

import (
	"log"

	"github.com/peterzat/auto-pdf-signer/internal/doc"
)

// Signature box geometry, in points.
const (
	signatureWidth  = 150.0
	signatureHeight = 50.0
	signatureGap    = 10.0

	// Fallback box in the bottom-left corner of the last page.
	fallbackLeft         = 50.0
	fallbackRight        = 200.0
	fallbackBottomOffset = 150.0
	fallbackTopOffset    = 100.0
)

// DefaultSignatureKeywords lists the phrases that indicate a signature
// area, probed in this order on every page.
func DefaultSignatureKeywords() []string {
	return []string{"signature", "sign here", "by:", "signed by", "name:", "title:", "date:"}
}

// Placement is a chosen signature position.
type Placement struct {
	Page int
	Rect doc.Rect
	// Keyword is the matched phrase, empty when the fixed fallback
	// position was used.
	Keyword string
	// Fallback reports that no keyword matched anywhere.
	Fallback bool
}

// SignatureLocator chooses where to place the signature image by
// scanning every page for signature-indicating keywords.
type SignatureLocator struct {
	keywords []string
}

// NewSignatureLocator creates a locator with the default keyword list.
func NewSignatureLocator() *SignatureLocator {
	return &SignatureLocator{keywords: DefaultSignatureKeywords()}
}

// Locate scans pages in order and keywords in list order, accumulating
// every match. The last match overall wins, on the assumption that
// signature blocks sit at the end of a document; the signature box goes
// just below it. With no matches anywhere the box lands in the
// bottom-left of the last page.
func (l *SignatureLocator) Locate(d doc.Document) (Placement, error) {
	type keywordHit struct {
		page    int
		rect    doc.Rect
		keyword string
	}
	var hits []keywordHit

	for page := 0; page < d.PageCount(); page++ {
		for _, kw := range l.keywords {
			rects, err := d.SearchText(page, kw, nil)
			if err != nil {
				log.Printf("error searching for %q on page %d: %v", kw, page+1, err)
				continue
			}
			for _, r := range rects {
				hits = append(hits, keywordHit{page: page, rect: r, keyword: kw})
			}
		}
	}

	if len(hits) > 0 {
		last := hits[len(hits)-1]
		return Placement{
			Page:    last.page,
			Keyword: last.keyword,
			Rect: doc.Rect{
				X0: last.rect.X0,
				Y0: last.rect.Y1 + signatureGap,
				X1: last.rect.X0 + signatureWidth,
				Y1: last.rect.Y1 + signatureGap + signatureHeight,
			},
		}, nil
	}

	lastPage := d.PageCount() - 1
	_, h, err := d.PageSize(lastPage)
	if err != nil {
		return Placement{}, err
	}
	return Placement{
		Page:     lastPage,
		Fallback: true,
		Rect: doc.Rect{
			X0: fallbackLeft,
			Y0: h - fallbackBottomOffset,
			X1: fallbackRight,
			Y1: h - fallbackTopOffset,
		},
	}, nil
}
