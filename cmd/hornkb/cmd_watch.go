package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hornkb/internal/logging"
	"hornkb/internal/metrics"
	"hornkb/internal/watch"
)

func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Recompile source files as they change",
		Long: `Compiles every source file in dir, then watches it and recompiles each
file after it changes. Runs until interrupted.

With --metrics-addr (or metrics.addr in the config) compile and watcher
counters are served in Prometheus format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runWatch,
	}
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

// serveMetrics starts the metrics endpoint when an address is configured.
// The returned function stops it and waits for shutdown.
func (a *app) serveMetrics(ctx context.Context, addr string) func() {
	if addr == "" {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	logger := a.log(logging.CategoryCLI)
	go func() {
		defer close(done)
		if err := metrics.Serve(ctx, addr, a.cfg.Metrics.Path, logger); err != nil {
			logger.Error("metrics endpoint stopped", zap.Error(err))
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (a *app) runWatch(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	w, err := watch.New(dir, watch.OptionsFromConfig(a.cfg), a.log(logging.CategoryWatch))
	if err != nil {
		return err
	}
	defer w.Stop()

	addr, _ := cmd.Flags().GetString("metrics-addr")
	if addr == "" {
		addr = a.cfg.Metrics.Addr
	}
	stopMetrics := a.serveMetrics(cmd.Context(), addr)
	defer stopMetrics()

	out := cmd.OutOrStdout()
	initial, err := w.Scan()
	if err != nil {
		return err
	}
	for _, res := range initial {
		printResult(cmd, res)
	}

	if err := w.Start(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(out, "watching %s (ctrl-c to stop)\n", dir)

	for res := range w.Results() {
		printResult(cmd, res)
	}
	return nil
}

func printResult(cmd *cobra.Command, res watch.Result) {
	out := cmd.OutOrStdout()
	switch {
	case res.Removed:
		fmt.Fprintf(out, "REMOVED: %s\n", res.Path)
	case res.Err != nil:
		fmt.Fprintf(out, "ERROR in %s: %v\n", res.Path, res.Err)
	default:
		s := res.KB.Stats()
		fmt.Fprintf(out, "OK: %s (%d facts, %d rules, %d queries)\n", res.Path, s.Facts, s.Rules, s.Queries)
	}
}
