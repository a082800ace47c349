// Package logsift finds matching lines in named text diagnostics such as
// crash logs and system logs.
//
// The core types work without any setup: a Predicate matches single lines by
// literal substrings or a regular expression, a SingleSearch reports the
// first match in one diagnostic, and a BatchSearch applies a validated rule
// mapping to a whole set of diagnostics concurrently.
//
//	batch, err := logsift.FromMapping(map[string][]logsift.Predicate{
//		"": {errors},             // wildcard: every diagnostic
//		"syslog": {shutdowns},    // only the diagnostic named syslog
//	})
//
// A Client adds diagnostic sources on top: fixed in-memory texts, directories
// of log files re-read on every search, and Redis keys written by external
// collectors.
package logsift
