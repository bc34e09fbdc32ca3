// Package match resolves a form field name to a value from the entity
// record, first by exact key match and then by fuzzy category matching
// against named pattern tables.
package match

import (
	"strings"

	"github.com/peterzat/auto-pdf-signer/internal/entity"
)

// Matcher maps form field names onto entity values. It never fabricates
// a value: every result is a value already present in the record.
type Matcher struct {
	policy Policy
}

// NewMatcher creates a matcher with the default pattern tables.
func NewMatcher() *Matcher {
	return NewMatcherWithPolicy(DefaultPolicy())
}

// NewMatcherWithPolicy creates a matcher with custom pattern tables.
func NewMatcherWithPolicy(policy Policy) *Matcher {
	return &Matcher{policy: policy}
}

// Match resolves fieldName against the record. Rules run in strict
// priority order and the first rule producing a value wins:
//
//  1. case-insensitive exact key match;
//  2. company-category pattern containment, resolved via the company keys;
//  3. address-category pattern containment, resolved via the address keys;
//  4. keyword table, resolved by substring match against entity keys.
//
// Within a category, a pattern hit that resolves no value does not stop
// the scan; the remaining patterns of that category are still tried.
func (m *Matcher) Match(fieldName string, rec *entity.Record) (string, bool) {
	fieldLower := strings.ToLower(fieldName)

	if value, ok := rec.Lookup(fieldName); ok {
		return value, true
	}

	if value, ok := m.matchCategory(fieldLower, m.policy.CompanyPatterns, m.policy.CompanyKeys, rec); ok {
		return value, true
	}

	if value, ok := m.matchCategory(fieldLower, m.policy.AddressPatterns, m.policy.AddressKeys, rec); ok {
		return value, true
	}

	for _, mapping := range m.policy.KeywordMappings {
		if !strings.Contains(fieldLower, mapping.Pattern) {
			continue
		}
		for _, candidate := range mapping.CandidateKeys {
			for _, p := range rec.Pairs() {
				if strings.Contains(strings.ToLower(p.Key), candidate) {
					return p.Value, true
				}
			}
		}
	}

	return "", false
}

// matchCategory checks fieldLower for containment of any category
// pattern; on a hit it returns the value of the first record key, in
// record order, whose lower-cased key equals one of wantKeys.
func (m *Matcher) matchCategory(fieldLower string, patterns, wantKeys []string, rec *entity.Record) (string, bool) {
	for _, pattern := range patterns {
		if !strings.Contains(fieldLower, pattern) {
			continue
		}
		for _, p := range rec.Pairs() {
			keyLower := strings.ToLower(p.Key)
			for _, want := range wantKeys {
				if keyLower == want {
					return p.Value, true
				}
			}
		}
		// No record key satisfies this category; the remaining patterns
		// cannot do better but are scanned for parity with rule order.
	}
	return "", false
}
