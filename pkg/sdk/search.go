package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kailas-cloud/logsift"
)

// SearchResult is the outcome of a batch search.
type SearchResult struct {
	// Matches maps a diagnostic name to its matched lines, ordered by first
	// occurrence and unique within each diagnostic.
	Matches map[string][]string `json:"matches"`
	// Diagnostics is the number of diagnostics with at least one match.
	Diagnostics int `json:"diagnostics"`
	// Lines is the total number of matched lines.
	Lines int `json:"lines"`
}

// Match locates the first predicate hit in a diagnostic.
type Match struct {
	// Fragment is the narrow matched text: the substring found or the regex
	// match span.
	Fragment string `json:"fragment"`
	// Line is the full matching line.
	Line string `json:"line"`
	// LineIndex is the zero-based line number within the text.
	LineIndex int `json:"line_index"`
}

// Search runs a batch search on the daemon. A nil batch applies the rules
// the daemon was configured with; a non-empty names list restricts the
// search to those diagnostics.
func (c *Client) Search(ctx context.Context, batch *logsift.BatchSearch, names ...string) (SearchResult, error) {
	start := time.Now()

	req := struct {
		Rules *logsift.BatchSearch `json:"rules,omitempty"`
		Names []string             `json:"names,omitempty"`
	}{Rules: batch, Names: names}

	var out SearchResult
	err := c.do(ctx, http.MethodPost, "/api/v1/search", req, &out)
	c.obs.observe("search", start, err)
	if err != nil {
		return SearchResult{}, err
	}
	c.obs.countLines(out.Lines)
	return out, nil
}

// FirstMatch reports the first predicate match in the named diagnostic's
// current text. The boolean is false when the diagnostic exists but nothing
// matches; an unknown name is an ErrDiagnosticNotFound error.
func (c *Client) FirstMatch(ctx context.Context, name string, p logsift.Predicate) (Match, bool, error) {
	start := time.Now()

	m, ok, err := c.firstMatch(ctx, name, p)
	c.obs.observe("first_match", start, err)
	if ok {
		c.obs.countLines(1)
	}
	return m, ok, err
}

func (c *Client) firstMatch(ctx context.Context, name string, p logsift.Predicate) (Match, bool, error) {
	pred, err := json.Marshal(p)
	if err != nil {
		return Match{}, false, fmt.Errorf("sdk: encode predicate: %w", err)
	}
	req := struct {
		Name      string          `json:"name"`
		Predicate json.RawMessage `json:"predicate"`
	}{Name: name, Predicate: pred}

	var out struct {
		Found bool   `json:"found"`
		Match *Match `json:"match"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/search/first", req, &out); err != nil {
		return Match{}, false, err
	}
	if !out.Found || out.Match == nil {
		return Match{}, false, nil
	}
	return *out.Match, true, nil
}

// Diagnostics lists the names of every diagnostic the daemon serves, sorted.
func (c *Client) Diagnostics(ctx context.Context) ([]string, error) {
	start := time.Now()

	var out struct {
		Items []string `json:"items"`
		Total int      `json:"total"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/diagnostics", nil, &out)
	c.obs.observe("diagnostics", start, err)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}
