package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"hornkb/internal/kb"
	"hornkb/internal/mangle"
)

func (a *app) dumpCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump [file...]",
		Short: "Print the decoded knowledge base",
		Long: `Prints the merged knowledge base in one of several formats:
  source     facts, rules and queries as source text (default)
  fragments  the delimiter-based fragment encoding
  mangle     Google Mangle source
  stats      predicate summary as JSON`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDump(cmd, args, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "source", "Output format: source, fragments, mangle, stats")
	return cmd
}

func (a *app) runDump(cmd *cobra.Command, args []string, format string) error {
	base, err := a.compileAll(cmd, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch format {
	case "source":
		fmt.Fprint(out, base.String())

	case "fragments":
		rulesText, factsText, err := kb.EncodeProgram(base)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "rules: %s\nfacts: %s\n", rulesText, factsText)
		for _, q := range base.Queries {
			text, err := q.Encode()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "query: %s\n", text)
		}

	case "mangle":
		text, err := mangle.Render(base)
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)

	case "stats":
		report := struct {
			kb.Stats
			Predicates []string `json:"predicate_list"`
		}{Stats: base.Stats()}
		for _, p := range base.Predicates() {
			report.Predicates = append(report.Predicates, p.Indicator())
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)

	default:
		return fmt.Errorf("unknown format %q (valid: source, fragments, mangle, stats)", format)
	}
	return nil
}
