package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hornkb/internal/config"
	"hornkb/internal/kb"
	"hornkb/internal/logging"
	"hornkb/internal/metrics"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "hornkb",
		Short: "Translate Prolog-like programs into knowledge bases",
		Long: `hornkb parses Prolog-like source files (facts, rules and queries),
decodes them into an ordered knowledge base, and answers queries by
evaluating the result with Google Mangle.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "hornkb.yaml", "Config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		a.checkCmd(),
		a.queryCmd(),
		a.dumpCmd(),
		a.watchCmd(),
		a.configCmd(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.DebugMode = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", a.configPath, err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) log(cat logging.Category) *zap.Logger {
	return logging.For(a.logger, a.cfg.Logging, cat)
}

// expandSources resolves file arguments and glob patterns into sources, in
// sorted order per pattern.
func expandSources(patterns []string) ([]kb.Source, error) {
	var sources []kb.Source
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("no files found matching: %s", pattern)
			}
			matches = []string{pattern}
		}
		sort.Strings(matches)

		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			sources = append(sources, kb.Source{Name: path, Text: string(data)})
		}
	}
	return sources, nil
}

// compileAll compiles every source and merges the results in argument order.
func (a *app) compileAll(cmd *cobra.Command, patterns []string) (*kb.KnowledgeBase, error) {
	sources, err := expandSources(patterns)
	if err != nil {
		return nil, err
	}

	timer := logging.StartTimer(a.log(logging.CategoryBatch), "compile")
	compiled, err := kb.CompileAll(cmd.Context(), sources, kb.OptionsFromConfig(a.cfg), a.log(logging.CategoryAssemble))
	timer.Stop()
	if err != nil {
		return nil, err
	}

	bases := make([]*kb.KnowledgeBase, len(compiled))
	for i, c := range compiled {
		bases[i] = c.KB
	}
	merged := kb.Merge(bases...)
	metrics.RecordKnowledgeBase(merged)
	return merged, nil
}
