// Command predict talks to the prediction service from the terminal:
// submit one record, list the model inputs and stored predictions, or
// render the dashboard charts to files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/okian/obesiscope/internal/adapters/backend"
	"github.com/okian/obesiscope/internal/adapters/charts"
	"github.com/okian/obesiscope/internal/app/form"
	"github.com/okian/obesiscope/internal/domain/chartspec"
	"github.com/okian/obesiscope/internal/domain/prediction"
	"github.com/okian/obesiscope/pkg/logger"

	"github.com/spf13/cobra"
)

const (
	defaultTimeout  = 10 * time.Second
	chartPermission = 0o644
	dirPermission   = 0o750
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, form.UserMessage(err))
		stop()
		os.Exit(1) //nolint:gocritic // stop called above
	}
}

// globals are the flags shared by every subcommand.
type globals struct {
	baseURL string
	timeout time.Duration
	verbose bool
}

func (g *globals) client(stderr io.Writer) (*backend.Client, logger.Logger) {
	log := logger.Nop()
	if g.verbose {
		if err := logger.InitWithWriter(stderr); err == nil {
			_ = logger.SetLevelString("debug")
			log = logger.Get()
		}
	}
	return backend.New(g.baseURL, backend.WithTimeout(g.timeout), backend.WithLogger(log)), log
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "predict",
		Short:         "Command line client for the weight-status prediction service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&g.baseURL, "url", "http://localhost:5000", "Prediction service origin")
	rootCmd.PersistentFlags().DurationVar(&g.timeout, "timeout", defaultTimeout, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "Log requests to stderr")

	rootCmd.AddCommand(
		newSubmitCmd(g),
		newFeaturesCmd(g),
		newHistoryCmd(g),
		newRenderCmd(g),
	)
	return rootCmd
}

func newSubmitCmd(g *globals) *cobra.Command {
	defaults := map[string]string{
		prediction.FieldAge:           "",
		prediction.FieldGender:        "Male",
		prediction.FieldHeight:        "",
		prediction.FieldWeight:        "",
		prediction.FieldFAF:           "0",
		prediction.FieldSmoke:         "no",
		prediction.FieldFAVC:          "no",
		prediction.FieldFamilyHistory: "no",
		prediction.FieldCAEC:          "Sometimes",
		prediction.FieldCALC:          "Never",
		prediction.FieldMTRANS:        "Public_Transportation",
	}
	values := make(map[string]*string, len(defaults))

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate one record and print the prediction panel",
		Long: `Validate one biometric record and submit it for classification.

Flags use the service field names.

Example: predict submit --Age 31 --Height 1.80 --Weight 97.2 --SMOKE yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := make(map[string]string, len(values))
			for name, v := range values {
				fields[name] = *v
			}
			client, log := g.client(cmd.ErrOrStderr())
			return runSubmit(cmd.Context(), client, fields, cmd.OutOrStdout(), log)
		},
	}
	for name, def := range defaults {
		values[name] = cmd.Flags().String(name, def, "form field "+name)
	}
	return cmd
}

func newFeaturesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Print the model inputs described by the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _ := g.client(cmd.ErrOrStderr())
			return printJSON(cmd.OutOrStdout(), client.Features(cmd.Context()))
		},
	}
}

func newHistoryCmd(g *globals) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the most recent stored predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			client, _ := g.client(cmd.ErrOrStderr())
			return printJSON(cmd.OutOrStdout(), client.History(cmd.Context(), limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of predictions to print")
	return cmd
}

func newRenderCmd(g *globals) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "render [dir]",
		Short: "Fetch one snapshot and write every dashboard chart to dir",
		Long: `Fetch the five statistics documents once and render the four dashboard
charts as image files named after their region key.

Example: predict render ./charts --format png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _ := g.client(cmd.ErrOrStderr())
			return runRender(cmd.Context(), client, args[0], format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&format, "format", charts.FormatSVG, "Image format: svg|png")
	return cmd
}

func printJSON[T any](w io.Writer, res backend.Result[T]) error {
	v, err := res.Unwrap()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSubmit(ctx context.Context, client *backend.Client, fields map[string]string, w io.Writer, log logger.Logger) error {
	req, err := prediction.ParseForm(fields)
	if err != nil {
		return err
	}

	view := &form.RecordingView{}
	panel, err := form.NewController(client, form.WithLogger(log)).Submit(ctx, view, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%s)\n", panel.Label, panel.Category)
	for _, d := range panel.Details {
		fmt.Fprintf(w, "  %-17s %s\n", d.Label+":", d.Value)
	}
	if panel.PredictionID != "" {
		fmt.Fprintf(w, "  id: %s\n", panel.PredictionID)
	}
	return nil
}

func runRender(ctx context.Context, client *backend.Client, dir, format string, w io.Writer) error {
	if format != charts.FormatSVG && format != charts.FormatPNG {
		return fmt.Errorf("unknown format %q", format)
	}
	snap, err := client.FetchSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	reg := charts.NewRegistry(charts.NewGoChartRenderer(charts.WithFormat(format)))
	defer func() { _ = reg.Close() }()

	for _, region := range chartspec.Build(snap) {
		if err := reg.Upsert(ctx, region.Key, region.Spec); err != nil {
			return err
		}
		h, _ := reg.Get(region.Key)
		path := filepath.Join(dir, region.Key+"."+format)
		if err := os.WriteFile(path, h.Bytes(), chartPermission); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintln(w, path)
	}
	fmt.Fprintf(w, "total predictions: %s\n", form.FormatCount(snap.Total))
	return nil
}
