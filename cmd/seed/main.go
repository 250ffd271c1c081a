// Command seed fills a prediction service with synthetic requests so the
// dashboard has data to display.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/obesiscope/internal/seeder"

	"github.com/spf13/cobra"
)

// Default configuration constants.
const (
	defaultCount      = 500
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Seeding failed:", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop called above
	}
}

type options struct {
	baseURL    string
	count      int
	workers    int
	timeout    time.Duration
	outputFile string
	noOutput   bool
	logFile    string
	verbose    bool
}

// config resolves the dump location; an explicit --no-output wins over --output.
func (o *options) config(now time.Time) *seeder.Config {
	out := o.outputFile
	switch {
	case o.noOutput:
		out = ""
	case out == "":
		out = seeder.DefaultOutputFile(now)
	}
	return &seeder.Config{
		BaseURL:    o.baseURL,
		Count:      o.count,
		Workers:    o.workers,
		Timeout:    o.timeout,
		OutputFile: out,
		Verbose:    o.verbose,
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Submit synthetic prediction requests",
		Long: `Generates valid prediction requests and submits them to the prediction
service so the statistics dashboard has data to display.`,
		Example: `  seed --count 2000 --workers 16
  seed --url http://predictor:5000 --no-output`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := seeder.SetupLogging(cmd.OutOrStdout(), o.logFile); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()

			_, err := seeder.Run(ctx, o.config(time.Now()))
			return err
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	flags.StringVar(&o.baseURL, "url", "http://localhost:5000", "Prediction service origin")
	flags.IntVar(&o.count, "count", defaultCount, "Number of requests to generate and submit")
	flags.IntVar(&o.workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
	flags.DurationVar(&o.timeout, "timeout", defaultTimeout, "Per-request timeout")
	flags.StringVar(&o.outputFile, "output", "", "Output file for generated requests (default: generated_requests_TIMESTAMP.json)")
	flags.BoolVar(&o.noOutput, "no-output", false, "Do not save generated requests")
	flags.StringVar(&o.logFile, "log", "", "Also write logs to this file")
	flags.BoolVar(&o.verbose, "verbose", false, "Log progress while submitting")

	return rootCmd
}
