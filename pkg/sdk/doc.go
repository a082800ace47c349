// Package sdk provides an HTTP client for the logsift daemon.
//
//	client, _ := sdk.New("http://localhost:8080", sdk.WithToken("secret"))
//
//	errs, _ := logsift.Substrings("ERROR", "panic")
//	batch, _ := logsift.FromMapping(map[string][]logsift.Predicate{"": {errs}})
//
//	result, _ := client.Search(ctx, &batch)
//	for name, lines := range result.Matches {
//		fmt.Println(name, lines)
//	}
//
// A nil batch reuses the rule set the daemon was started with. Failure
// conditions map to sentinel errors, so callers can write
// errors.Is(err, sdk.ErrDiagnosticNotFound).
package sdk
