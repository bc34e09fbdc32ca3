package match

// Policy holds the pattern tables driving field name resolution. The
// tables are data so tests can swap them; DefaultPolicy matches the
// matching behavior documents in the wild were tuned against.
type Policy struct {
	// CompanyPatterns are substrings of a field name that indicate the
	// field wants the signing party's name.
	CompanyPatterns []string
	// CompanyKeys are the entity keys, matched case-insensitively, that
	// can satisfy a company-pattern field.
	CompanyKeys []string

	// AddressPatterns are substrings indicating an address field.
	AddressPatterns []string
	// AddressKeys are the entity keys that can satisfy an address field.
	AddressKeys []string

	// KeywordMappings maps a field-name substring onto candidate entity
	// keys, matched by substring against the entity key. Evaluated in
	// order.
	KeywordMappings []KeywordMapping
}

// KeywordMapping pairs a field-name pattern with the entity keys that
// may provide its value.
type KeywordMapping struct {
	Pattern       string
	CandidateKeys []string
}

// DefaultPolicy returns the standard matching tables.
func DefaultPolicy() Policy {
	return Policy{
		CompanyPatterns: []string{
			"recipient", "receiving party", "offeree", "representatives",
			"representative", "company", "name", "entity", "party",
			"organization", "corporation", "firm", "business",
		},
		CompanyKeys: []string{"company", "name", "entity"},

		AddressPatterns: []string{
			"address", "location", "street", "city", "state", "zip",
			"postal", "residence", "place",
		},
		AddressKeys: []string{"address", "location"},

		KeywordMappings: []KeywordMapping{
			{Pattern: "title", CandidateKeys: []string{"title", "position"}},
			{Pattern: "date", CandidateKeys: []string{"date"}},
			// Signature fields carry the signing party's name.
			{Pattern: "signature", CandidateKeys: []string{"company", "name"}},
		},
	}
}
