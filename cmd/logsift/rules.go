package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/logsift/internal/domain/rule"
	"github.com/kailas-cloud/logsift/internal/rulebundle"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Work with rule mappings and compiled bundles",
}

var rulesCompileOut string

var rulesCompileCmd = &cobra.Command{
	Use:   "compile <mapping.json>",
	Short: "Compile a JSON rule mapping into a bundle",
	Long: `Validates a JSON rule mapping and writes it as a compiled bundle.
Bundles are schema-versioned, so a daemon refuses one written by an
incompatible release instead of misreading it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		set, err := rule.ParseMapping(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		out := rulesCompileOut
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".bundle"
		}
		if err := rulebundle.WriteFile(out, set); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "compiled %d rules to %s\n", set.Len(), out)
		return nil
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <mapping.json|rules.bundle>",
	Short: "Check a rule mapping or bundle without running a search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := loadRules(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		wildcards := 0
		for _, r := range set.Rules() {
			if r.IsWildcard() {
				wildcards++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules (%d wildcard), valid\n", args[0], set.Len(), wildcards)
		return nil
	},
}

func init() {
	rulesCompileCmd.Flags().StringVarP(&rulesCompileOut, "out", "o", "", "output path (default: mapping path with .bundle extension)")
	rulesCmd.AddCommand(rulesCompileCmd, rulesValidateCmd)
}
