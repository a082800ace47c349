package search

import (
	"strings"

	"github.com/kailas-cloud/logsift/internal/domain/predicate"
)

// scanLines collects the lines of text matching at least one predicate, in
// first-occurrence order. A line recurring verbatim, or matching several
// predicates, is recorded once.
func scanLines(text string, predicates []predicate.Predicate) []string {
	if text == "" || len(predicates) == 0 {
		return nil
	}

	var matched []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		if _, dup := seen[line]; dup {
			continue
		}
		for _, p := range predicates {
			if !p.MatchesLine(line) {
				continue
			}
			seen[line] = struct{}{}
			matched = append(matched, line)
			break
		}
	}
	return matched
}
