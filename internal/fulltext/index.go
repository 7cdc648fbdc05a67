// Package fulltext implements the free-text search the filter engine
// queries in full-text mode. Dives are flattened to a normalized token list
// covering notes, people, suit, tags and site name.
package fulltext

import (
	"regexp"
	"strings"

	"divelog/internal/models"
)

type StringMode int

const (
	Substring StringMode = iota
	StartsWith
	Exact
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Normalize lower-cases a query or document and collapses whitespace so
// that matching is insensitive to case and formatting.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func stripHTML(s string) string {
	return tagRe.ReplaceAllString(s, " ")
}

func diveTokens(d *models.Dive) []string {
	var fields []string
	fields = append(fields, stripHTML(d.Notes), d.Buddy, d.DiveMaster, d.Suit)
	fields = append(fields, d.Tags...)
	if d.Site != nil {
		fields = append(fields, d.Site.Name)
	}
	var tokens []string
	for _, f := range fields {
		tokens = append(tokens, strings.Fields(strings.ToLower(f))...)
	}
	return tokens
}

func tokenMatches(token, term string, mode StringMode) bool {
	switch mode {
	case StartsWith:
		return strings.HasPrefix(token, term)
	case Exact:
		return token == term
	default:
		return strings.Contains(token, term)
	}
}

// DiveMatches reports whether every whitespace-separated term of the
// normalized query matches some token of the dive under the given mode.
// An empty query matches nothing.
func DiveMatches(d *models.Dive, query string, mode StringMode) bool {
	terms := strings.Fields(Normalize(query))
	if len(terms) == 0 || d == nil {
		return false
	}
	tokens := diveTokens(d)
	for _, term := range terms {
		found := false
		for _, tok := range tokens {
			if tokenMatches(tok, term, mode) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Result is a precomputed match set for one query over a dive table.
type Result struct {
	matches map[*models.Dive]bool
}

func (r *Result) DiveMatches(d *models.Dive) bool {
	return r.matches[d]
}

// FindDives evaluates the query once over the whole table. The filter
// engine uses this for full recomputes to avoid re-tokenizing per call.
func FindDives(table *models.DiveTable, query string, mode StringMode) *Result {
	res := &Result{matches: make(map[*models.Dive]bool, table.Size())}
	table.ForEachDive(func(d *models.Dive) {
		if DiveMatches(d, query, mode) {
			res.matches[d] = true
		}
	})
	return res
}
