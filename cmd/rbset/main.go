// Package main runs the ordered set scenarios with logging and metrics wired.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"
)

func main() {
	cfg := &appConfig{}
	rootCmd := &cobra.Command{
		Use:   "rbset",
		Short: "rbset - red-black tree ordered set demo",
		Long: `rbset builds an ordered set and runs search, traverse and remove on it.

Without --values it runs the classic scenario: insert 8 5 15 12 19 9 13 23 10,
search 10, traverse, remove 15 and traverse again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := rootCmd.Flags()
	flags.IntSliceVar(&cfg.values, "values", nil, "bulk load the values instead of the classic scenario")
	flags.StringVar(&cfg.logLevel, "log-level", os.Getenv("XLOG_LVL"), "DEBUG, INFO, WARN or ERROR")
	flags.StringVar(&cfg.metrics, "metrics", os.Getenv("RBSET_METRICS"), "metrics exporter: stdout, prometheus or empty")
	flags.StringVar(&cfg.metricsAddr, "metrics-addr", ":9464", "prometheus scrape address")
	flags.DurationVar(&cfg.metricsInterval, "metrics-interval", 10*time.Second, "stdout metrics export interval")
	flags.BoolVar(&cfg.serve, "serve", false, "keep running until interrupted")
	flags.BoolVar(&cfg.verify, "verify", false, "validate the tree properties after each mutation")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
