// Package entity loads the key=value description of the signing party
// from a plain text file into an ordered, immutable record.
package entity

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Pair is a single key/value entry, in file order.
type Pair struct {
	Key   string
	Value string
}

// Record is an ordered mapping from field key to value. Keys keep their
// original case and file position; a key repeated later in the file
// overwrites the value but keeps the original position. Records are
// immutable once built.
type Record struct {
	pairs []Pair
	index map[string]int
}

// Warning describes a line that was skipped during parsing.
type Warning struct {
	Line int
	Text string
}

func (w Warning) String() string {
	return fmt.Sprintf("invalid format on line %d: %s", w.Line, w.Text)
}

// Load reads a record from path, logging any malformed lines.
func Load(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open entity file: %w", err)
	}
	defer f.Close()

	rec, warnings, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read entity file %s: %w", path, err)
	}
	for _, w := range warnings {
		log.Printf("warning: %s: %s", path, w)
	}
	return rec, nil
}

// Parse reads key=value lines from r. Blank lines and lines starting
// with '#' are ignored; lines without '=' are reported as warnings and
// skipped. The first '=' splits key from value; both are trimmed.
func Parse(r io.Reader) (*Record, []Warning, error) {
	rec := &Record{index: make(map[string]int)}
	var warnings []Warning

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			warnings = append(warnings, Warning{Line: lineNum, Text: line})
			continue
		}
		rec.set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, warnings, fmt.Errorf("failed to scan input: %w", err)
	}
	return rec, warnings, nil
}

func (r *Record) set(key, value string) {
	if i, ok := r.index[key]; ok {
		r.pairs[i].Value = value
		return
	}
	r.index[key] = len(r.pairs)
	r.pairs = append(r.pairs, Pair{Key: key, Value: value})
}

// Get returns the value for an exact key match.
func (r *Record) Get(key string) (string, bool) {
	i, ok := r.index[key]
	if !ok {
		return "", false
	}
	return r.pairs[i].Value, true
}

// Lookup returns the value for the first key, in file order, that
// matches case-insensitively.
func (r *Record) Lookup(key string) (string, bool) {
	lower := strings.ToLower(key)
	for _, p := range r.pairs {
		if strings.ToLower(p.Key) == lower {
			return p.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in file order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.pairs))
	for i, p := range r.pairs {
		keys[i] = p.Key
	}
	return keys
}

// Pairs returns the entries in file order.
func (r *Record) Pairs() []Pair {
	out := make([]Pair, len(r.pairs))
	copy(out, r.pairs)
	return out
}

// Len returns the number of entries.
func (r *Record) Len() int {
	return len(r.pairs)
}
