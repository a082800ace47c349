package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/logsift/internal/domain"
	"github.com/kailas-cloud/logsift/internal/domain/match"
	"github.com/kailas-cloud/logsift/internal/domain/predicate"
	"github.com/kailas-cloud/logsift/internal/domain/rule"
	"github.com/kailas-cloud/logsift/internal/rulebundle"
	sourcedir "github.com/kailas-cloud/logsift/internal/source/dir"
	searchuc "github.com/kailas-cloud/logsift/internal/usecase/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [flags] <file|dir|->...",
	Short: "Search log files without a daemon",
	Long: `Scans the given files or directories and prints the matching lines
per diagnostic. Directory arguments contribute every file matching
--pattern; "-" reads a single diagnostic from stdin. Rules come from
--substring/--regex flags, a JSON mapping file, a compiled bundle, or
any combination.`,
	Example: `  logsift search --substring ERROR --substring panic /var/log/app
  logsift search --regex 'oom.killer' --json -- - < dmesg.txt
  logsift search --mapping rules.json --pattern '*.log' /var/log`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchSubstrings []string
	searchRegexes    []string
	searchMapping    string
	searchBundle     string
	searchPattern    string
	searchJSON       bool
	searchWorkers    int
)

func init() {
	searchCmd.Flags().StringArrayVar(&searchSubstrings, "substring", nil, "substring to match; repeatable, the values form one any-of predicate")
	searchCmd.Flags().StringArrayVar(&searchRegexes, "regex", nil, "regular expression to match; repeatable")
	searchCmd.Flags().StringVar(&searchMapping, "mapping", "", "path to a JSON rule mapping")
	searchCmd.Flags().StringVar(&searchBundle, "bundle", "", "path to a compiled rule bundle")
	searchCmd.Flags().StringVar(&searchPattern, "pattern", "*", "file name pattern for directory arguments")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the result as JSON")
	searchCmd.Flags().IntVar(&searchWorkers, "workers", 0, "diagnostics scanned concurrently (0 = automatic)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	set, err := buildRuleSet()
	if err != nil {
		return err
	}
	if set.IsEmpty() {
		return errors.New("no rules: pass --substring, --regex, --mapping, or --bundle")
	}

	diags, err := collectDiagnostics(cmd.Context(), args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	result := searchuc.New(nil).WithWorkers(searchWorkers).Batch(cmd.Context(), set, diags)

	if searchJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printPretty(cmd.OutOrStdout(), set, result)
	return nil
}

// buildRuleSet merges the flag predicates (as one wildcard rule), the mapping
// file, and the bundle, in that order.
func buildRuleSet() (rule.Set, error) {
	var rules []rule.Rule

	var preds []predicate.Predicate
	if len(searchSubstrings) > 0 {
		p, err := predicate.NewSubstrings(searchSubstrings)
		if err != nil {
			return rule.Set{}, err
		}
		preds = append(preds, p)
	}
	for _, pattern := range searchRegexes {
		preds = append(preds, predicate.NewRegex(pattern))
	}
	if len(preds) > 0 {
		r, err := rule.New(nil, preds)
		if err != nil {
			return rule.Set{}, err
		}
		rules = append(rules, r)
	}

	if searchMapping != "" {
		data, err := os.ReadFile(searchMapping)
		if err != nil {
			return rule.Set{}, err
		}
		set, err := rule.ParseMapping(data)
		if err != nil {
			return rule.Set{}, fmt.Errorf("%s: %w", searchMapping, err)
		}
		rules = append(rules, set.Rules()...)
	}

	if searchBundle != "" {
		set, err := rulebundle.ReadFile(searchBundle)
		if err != nil {
			return rule.Set{}, fmt.Errorf("%s: %w", searchBundle, err)
		}
		rules = append(rules, set.Rules()...)
	}

	return rule.FromRules(rules)
}

// collectDiagnostics resolves positional arguments: "-" reads stdin once,
// a directory contributes every file matching --pattern, anything else is
// treated as a single log file.
func collectDiagnostics(ctx context.Context, args []string, stdin io.Reader) ([]domain.Diagnostic, error) {
	var diags []domain.Diagnostic
	for _, arg := range args {
		if arg == "-" {
			text, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			diags = append(diags, domain.NewStaticDiagnostic("stdin", string(text)))
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			src, err := sourcedir.New(sourcedir.Config{Path: arg, Pattern: searchPattern})
			if err != nil {
				return nil, err
			}
			listed, err := src.List(ctx)
			if err != nil {
				return nil, err
			}
			diags = append(diags, listed...)
			continue
		}
		diags = append(diags, sourcedir.NewFileDiagnostic("", arg, 0))
	}
	return diags, nil
}

func printJSON(w io.Writer, result match.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printPretty(w io.Writer, set rule.Set, result match.Result) {
	if result.IsEmpty() {
		fmt.Fprintln(w, "no matches")
		return
	}

	nameColor := color.New(color.FgCyan, color.Bold)
	fragColor := color.New(color.FgRed, color.Bold)

	for _, name := range result.Names() {
		nameColor.Fprintln(w, name)
		preds := set.PredicatesFor(name)
		for _, line := range result.Lines(name) {
			fmt.Fprintf(w, "  %s\n", highlight(line, preds, fragColor))
		}
	}
	fmt.Fprintf(w, "\n%d diagnostics, %d lines\n", len(result.Names()), result.TotalLines())
}

// highlight paints the first fragment one of the predicates can name in the
// line. Lines matched by a predicate without a nameable fragment stay plain.
func highlight(line string, preds []predicate.Predicate, c *color.Color) string {
	for _, p := range preds {
		m, ok := p.FirstMatchIn(line)
		if !ok || m.Fragment == "" {
			continue
		}
		return strings.Replace(line, m.Fragment, c.Sprint(m.Fragment), 1)
	}
	return line
}
