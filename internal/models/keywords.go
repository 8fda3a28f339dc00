package models

import (
	"sort"
	"strings"
	"unicode"
)

// maxKeywords bounds the number of terms kept per journal entry.
const maxKeywords = 30

var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "also": {}, "been": {},
	"before": {}, "being": {}, "because": {}, "between": {}, "both": {},
	"could": {}, "does": {}, "doing": {}, "during": {}, "each": {},
	"from": {}, "have": {}, "here": {}, "into": {}, "just": {},
	"more": {}, "most": {}, "once": {}, "only": {}, "other": {},
	"over": {}, "same": {}, "should": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "under": {}, "very": {}, "were": {}, "what": {},
	"when": {}, "where": {}, "which": {}, "while": {}, "will": {},
	"with": {}, "would": {}, "your": {},
}

// WordCount returns the whitespace-token count of content.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// ExtractKeywords derives a term→frequency mapping from content: tokens are
// lower-cased with punctuation stripped, tokens of length ≤3, pure-numeric
// tokens and stop words are discarded, and the top 30 terms by descending
// frequency are kept (ties broken by first-encountered order).
func ExtractKeywords(content string) map[string]int {
	type termStat struct {
		count int
		first int
	}

	stats := make(map[string]*termStat)
	pos := 0
	for _, raw := range strings.Fields(strings.ToLower(content)) {
		tok := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, raw)

		if len([]rune(tok)) <= 3 || isNumeric(tok) {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}

		if s, ok := stats[tok]; ok {
			s.count++
		} else {
			stats[tok] = &termStat{count: 1, first: pos}
		}
		pos++
	}

	if len(stats) == 0 {
		return nil
	}

	terms := make([]string, 0, len(stats))
	for t := range stats {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		a, b := stats[terms[i]], stats[terms[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.first < b.first
	})
	if len(terms) > maxKeywords {
		terms = terms[:maxKeywords]
	}

	keywords := make(map[string]int, len(terms))
	for _, t := range terms {
		keywords[t] = stats[t].count
	}
	return keywords
}

func isNumeric(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
