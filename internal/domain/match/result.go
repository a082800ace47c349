package match

import "sort"

// Result maps a diagnostic name to the ordered unique lines that matched it.
// A name appears only with at least one line; within one name, lines keep
// first-occurrence order from the scanned text. Key order carries no
// guarantee.
type Result map[string][]string

// Add records the matched lines of one diagnostic. Empty line lists are
// dropped so the result never carries a key without matches.
func (r Result) Add(name string, lines []string) {
	if len(lines) == 0 {
		return
	}
	r[name] = lines
}

// Lines returns the matched lines for one diagnostic, nil when absent.
func (r Result) Lines(name string) []string { return r[name] }

// Names returns the matched diagnostic names in sorted order.
func (r Result) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsEmpty reports whether no diagnostic matched.
func (r Result) IsEmpty() bool { return len(r) == 0 }

// TotalLines returns the number of matched lines across all diagnostics.
func (r Result) TotalLines() int {
	n := 0
	for _, lines := range r {
		n += len(lines)
	}
	return n
}
