package search

import "strings"

// maxQueryTokens caps how many meaningful tokens are forwarded to retailers.
// Long free-text item descriptions ("a warm blanket for my daughter who...")
// match poorly; the leading tokens carry the product intent.
const maxQueryTokens = 6

// stopWords are tokens stripped before fan-out. Lowercase only; matching is
// case-insensitive.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {},
	"for": {}, "to": {}, "in": {}, "on": {}, "with": {}, "my": {},
	"our": {}, "your": {}, "new": {}, "some": {}, "any": {},
	"please": {}, "need": {}, "needs": {}, "needed": {},
}

// OptimizeQuery strips stop-words and truncates to the first maxQueryTokens
// meaningful tokens. Deterministic: the same input always yields the same
// output. It runs once per request, before the query is cloned to all
// retailers, so every adapter receives the identical optimized string.
func OptimizeQuery(query string) string {
	fields := strings.Fields(query)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, skip := stopWords[strings.ToLower(f)]; skip {
			continue
		}
		kept = append(kept, f)
		if len(kept) == maxQueryTokens {
			break
		}
	}
	if len(kept) == 0 {
		// Everything was a stop-word; better to send the raw query than nothing.
		return strings.TrimSpace(query)
	}
	return strings.Join(kept, " ")
}
