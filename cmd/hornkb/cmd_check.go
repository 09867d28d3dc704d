package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hornkb/internal/kb"
	"hornkb/internal/logging"
	"hornkb/internal/metrics"
	"hornkb/internal/syntax"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file...]",
		Short: "Check that source files parse and decode",
		Long: `Parses and decodes each file independently and reports OK or the first
error per file. Exits non-zero if any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runCheck,
	}
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	sources, err := expandSources(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	opts := kb.OptionsFromConfig(a.cfg)
	failed := 0
	for _, src := range sources {
		start := time.Now()
		base, err := kb.Compile(src.Text, opts, a.log(logging.CategoryAssemble))
		metrics.ObserveCompile(start, err)
		if err != nil {
			failed++
			fmt.Fprintf(out, "ERROR in %s:\n%s\n", src.Name, describe(err, src.Text))
			continue
		}
		s := base.Stats()
		fmt.Fprintf(out, "OK: %s (%d facts, %d rules, %d queries)\n", src.Name, s.Facts, s.Rules, s.Queries)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(sources))
	}
	return nil
}

// describe renders a syntax error with a source excerpt; other errors are
// printed as is.
func describe(err error, src string) string {
	var synErr *syntax.Error
	if errors.As(err, &synErr) {
		return syntax.Snippet(synErr, src)
	}
	return err.Error()
}
