// Package idgen derives sequential, human-readable identifiers such as
// "g01", "QFB00001" and "a000000001" from the identifiers already stored.
//
// The candidate to increment is chosen by string order, not by numeric
// value. Once a counter outgrows its pad width ("g100" sorts below "g99")
// the generator keeps returning the successor of the string maximum. This
// matches how existing data sets were numbered and is kept on purpose.
//
// Generation is not guarded against concurrent writers: two requests that
// read the same id set compute the same next id, and the store's primary
// key rejects the second insert.
package idgen

import (
	"math/big"
	"regexp"
	"strings"
)

type selection int

const (
	// matchOnly increments the highest id matching the pattern.
	matchOnly selection = iota
	// prefixOnly increments the highest prefixed id, or restarts at the
	// seed when that id has a non-numeric tail.
	prefixOnly
	// prefixThenMatch behaves like prefixOnly but falls back to the
	// highest pattern match instead of the seed.
	prefixThenMatch
)

// Scheme describes one identifier family.
type Scheme struct {
	Prefix string
	Width  int
	Seed   string

	pattern *regexp.Regexp
	sel selection
}

// Identifier families of genres, questions and choices.
var (
	Genre    = newScheme("g", 2, matchOnly)
	Question = newScheme("QFB", 5, prefixThenMatch)
	Choice   = newScheme("a", 9, prefixOnly)
)

func newScheme(prefix string, width int, sel selection) Scheme {
	s := Scheme{
		Prefix:  prefix,
		Width:   width,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d+)$`),
		sel: sel,
	}
	s.Seed = s.format(big.NewInt(1))
	return s
}

// Matches reports whether id is a well-formed member of the family.
func (s Scheme) Matches(id string) bool {
	return s.pattern.MatchString(id)
}

// Next returns the identifier following the existing ones.
func (s Scheme) Next(existing []string) string {
	var maxPrefix, maxMatch string
	for _, id := range existing {
		if strings.HasPrefix(id, s.Prefix) && id > maxPrefix {
			maxPrefix = id
		}
		if s.Matches(id) && id > maxMatch {
			maxMatch = id
		}
	}
	return s.pick(maxPrefix, maxMatch)
}

func (s Scheme) pick(maxPrefix, maxMatch string) string {
	var last string
	switch s.sel {
	case matchOnly:
		last = maxMatch
	case prefixOnly:
		last = maxPrefix
	case prefixThenMatch:
		last = maxPrefix
		if !s.Matches(last) {
			last = maxMatch
		}
	}
	m := s.pattern.FindStringSubmatch(last)
	if m == nil {
		return s.Seed
	}
	n, ok := new(big.Int).SetString(m[1], 10)
	if !ok {
		return s.Seed
	}
	return s.format(n.Add(n, big.NewInt(1)))
}

func (s Scheme) format(n *big.Int) string {
	digits := n.String()
	if pad := s.Width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return s.Prefix + digits
}
