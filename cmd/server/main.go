// Command worlddash serves the world indicators dashboard.
//
//	worlddash serve   load the sources and serve the dashboard
//	worlddash check   load the sources, print a summary and exit
//
// Configuration comes from the environment (see internal/config). A .env
// file in the working directory is loaded first when present.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/worlddash/internal/config"
	"github.com/JonMunkholm/worlddash/internal/core"
	_ "github.com/JonMunkholm/worlddash/internal/core/tables" // Register source schemas
	"github.com/JonMunkholm/worlddash/internal/logging"
	"github.com/JonMunkholm/worlddash/internal/metrics"
	"github.com/JonMunkholm/worlddash/internal/web"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds global flags and the state prepared for subcommands.
type rootOptions struct {
	EnvFile string

	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "worlddash",
		Short:         "World indicators dashboard",
		Long:          "Joins country, population, infant mortality and life expectancy sources and serves them as a filterable dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Overload: values in the file win over the environment.
			if err := godotenv.Overload(opts.EnvFile); err != nil {
				slog.Debug("no env file loaded", "file", opts.EnvFile, "error", err)
			}

			cfg, err := config.Load()
			if err != nil {
				slog.Error("failed to load configuration", "error", err)
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			slog.Debug("configuration loaded", "config", cfg.String())

			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "environment file loaded before configuration")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	return cmd
}

// loadDataset opens the configured backend and builds the dataset once.
func loadDataset(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*core.Dataset, *core.Catalog, error) {
	catalog, err := core.LoadCatalog(cfg.Buckets.File)
	if err != nil {
		return nil, nil, fmt.Errorf("bucket catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Sources.LoadTimeout)
	defer cancel()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	defer b.close()

	loader := core.NewLoader(b.reader, core.WithLogger(slog.Default()))
	var opts []core.CacheOption
	if m != nil {
		opts = append(opts, core.WithBuildObserver(m))
	}
	ds, err := core.NewCache(loader, opts...).Get(ctx, b.set)
	if err != nil {
		return nil, nil, err
	}
	return ds, catalog, nil
}

// logLoadError logs err with its user-facing code.
func logLoadError(err error) {
	msg := core.MapError(err)
	slog.Error("dataset load failed",
		"error", err,
		"code", msg.Code,
		"action", msg.Action,
	)
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the sources and serve the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			slog.Info("configuration loaded",
				"addr", cfg.Server.Addr(),
				"backend", cfg.Sources.Backend,
				"rate_limit_enabled", cfg.Rate.Enabled,
				"metrics_enabled", cfg.Metrics.Enabled,
			)

			m := metrics.New()
			ds, catalog, err := loadDataset(cmd.Context(), cfg, m)
			if err != nil {
				logLoadError(err)
				return err
			}

			server := web.NewServer(web.Deps{
				Config:  cfg,
				Dataset: ds,
				Catalog: catalog,
				Metrics: m,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				server.Close()
				if err != nil {
					slog.Error("server stopped", "error", err)
				}
				return err
			case <-ctx.Done():
			}

			slog.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("shutdown error", "error", err)
				return err
			}
			return <-errCh
		},
	}
}

func newCheckCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the sources and print a summary",
		Long:  "Loads and joins every source exactly as serve would, prints a summary and exits non-zero on any load error.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, _, err := loadDataset(cmd.Context(), opts.cfg, nil)
			if err != nil {
				logLoadError(err)
				fmt.Fprintln(cmd.ErrOrStderr(), core.FormatUserError(err))
				return err
			}
			return printSummary(cmd.OutOrStdout(), ds.Summary(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func printSummary(w io.Writer, s core.Summary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "version\t%s\n", s.Version)
	fmt.Fprintf(tw, "countries\t%d\n", s.Countries)
	fmt.Fprintf(tw, "with population\t%d\n", s.WithPopulation)
	fmt.Fprintf(tw, "with infant mortality\t%d\n", s.WithMortality)
	fmt.Fprintf(tw, "with life expectancy\t%d\n", s.WithLife)
	fmt.Fprintf(tw, "total population\t%d\n", s.TotalPopulation)

	keys := make([]core.SourceKey, 0, len(s.Unmatched))
	for k := range s.Unmatched {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "unmatched %s\t%d\n", k, s.Unmatched[k])
	}
	fmt.Fprintf(tw, "load time\t%s\n", s.Took.Round(time.Millisecond))
	return tw.Flush()
}
