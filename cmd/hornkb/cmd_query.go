package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"hornkb/internal/kb"
	"hornkb/internal/logging"
	"hornkb/internal/mangle"
	"hornkb/internal/syntax"
)

func (a *app) queryCmd() *cobra.Command {
	var goal string

	cmd := &cobra.Command{
		Use:   "query [file...]",
		Short: "Answer queries against the loaded sources",
		Long: `Loads all files into one knowledge base, evaluates it, and answers
either the --goal given on the command line or every query directive found
in the sources.

Example:
  hornkb query family.pl --goal "grandparent(tom, Who)"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args, goal)
		},
	}
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "Goal to answer instead of the queries in the sources")
	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, args []string, goal string) error {
	base, err := a.compileAll(cmd, args)
	if err != nil {
		return err
	}

	queries := base.Queries
	if goal != "" {
		q, err := a.parseGoal(goal)
		if err != nil {
			return err
		}
		queries = []kb.Query{q}
	}
	if len(queries) == 0 {
		return fmt.Errorf("no queries: pass --goal or add a ?- directive")
	}

	engine := mangle.NewEngine(mangle.ConfigFrom(a.cfg), a.log(logging.CategoryEngine))
	if err := engine.Load(cmd.Context(), base); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, q := range queries {
		answers, err := engine.Ask(cmd.Context(), q)
		if err != nil {
			return err
		}
		printAnswers(out, q, answers)
	}
	return nil
}

func (a *app) parseGoal(text string) (kb.Query, error) {
	node, err := syntax.ParseGoal(text)
	if err != nil {
		return kb.Query{}, fmt.Errorf("invalid goal: %s", describe(err, text))
	}
	clause, err := kb.NewDecoder(kb.OptionsFromConfig(a.cfg), a.log(logging.CategoryDecode)).Clause(node)
	if err != nil {
		return kb.Query{}, err
	}
	return kb.Query{Goal: clause, Marker: "?-"}, nil
}

func printAnswers(out io.Writer, q kb.Query, answers []mangle.Answer) {
	fmt.Fprintln(out, q)
	if len(answers) == 0 {
		fmt.Fprintln(out, "  false.")
		return
	}
	vars := q.Variables()
	for _, ans := range answers {
		if len(vars) == 0 {
			fmt.Fprintln(out, "  true.")
			continue
		}
		parts := make([]string, 0, len(vars))
		for _, v := range vars {
			parts = append(parts, v+" = "+ans.Bindings[v].String())
		}
		sort.Strings(parts)
		fmt.Fprintf(out, "  %s\n", strings.Join(parts, ", "))
	}
}
