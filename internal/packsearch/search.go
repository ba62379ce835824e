// Package packsearch ranks packs by keyword relevance to a free-text
// query. Matching is token overlap with stopword filtering; title hits
// weigh more than step text so "flat tire" surfaces the tire pack before
// every pack that merely mentions tires in a step.
package packsearch

import (
	"sort"
	"strings"

	"github.com/everaidhq/everaid/internal/pack"
)

const (
	titleWeight = 0.6
	bodyWeight  = 0.4
)

// Result is a pack with its relevance score, 0.0 to 1.0.
type Result struct {
	Record pack.Record `json:"record"`
	Score  float32     `json:"score"`
}

// Search ranks records against the query and returns the top limit
// matches with a non-zero score. An empty or all-stopword query returns
// no results. limit <= 0 means no limit.
func Search(records []pack.Record, query string, limit int) []Result {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	results := make([]Result, 0, len(records))
	for _, rec := range records {
		titleScore := overlap(queryTokens, tokenize(rec.Title))
		bodyScore := overlap(queryTokens, tokenize(bodyText(rec)))
		score := titleWeight*titleScore + bodyWeight*bodyScore
		if score == 0 {
			continue
		}
		results = append(results, Result{Record: rec, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// bodyText flattens the searchable non-title content of a record.
func bodyText(rec pack.Record) string {
	var b strings.Builder
	b.WriteString(rec.OneLiner)
	b.WriteByte(' ')
	b.WriteString(rec.CTA)
	for _, s := range rec.Steps {
		b.WriteByte(' ')
		b.WriteString(s.Title)
		b.WriteByte(' ')
		b.WriteString(s.Description)
	}
	return b.String()
}

// tokenize splits text into lowercase terms, dropping stopwords and
// tokens shorter than three characters.
func tokenize(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isAlphanumeric(r)
	})

	filtered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) > 2 && !stopwords[token] {
			filtered = append(filtered, token)
		}
	}
	return filtered
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"was": true, "are": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "does": true, "did": true, "will": true,
	"would": true, "could": true, "should": true, "may": true, "might": true,
	"can": true, "this": true, "that": true, "these": true, "those": true,
	"you": true, "she": true, "they": true, "what": true, "which": true,
	"who": true, "when": true, "where": true, "why": true, "how": true,
	"your": true, "its": true, "not": true, "but": true,
}

// overlap returns the fraction of unique query tokens present in the
// candidate tokens.
func overlap(queryTokens, candidateTokens []string) float32 {
	if len(queryTokens) == 0 {
		return 0
	}

	candidateSet := make(map[string]bool, len(candidateTokens))
	for _, token := range candidateTokens {
		candidateSet[token] = true
	}

	matched := 0
	counted := make(map[string]bool, len(queryTokens))
	for _, token := range queryTokens {
		if candidateSet[token] && !counted[token] {
			matched++
			counted[token] = true
		}
	}
	return float32(matched) / float32(len(queryTokens))
}
