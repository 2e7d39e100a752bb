// Command ffreport generates weekly fantasy football report snapshots and
// serves them over HTTP.
//
// Usage:
//
//	ffreport report --platform sleeper --league 123456 --season 2025
//	ffreport report --week 8 --offline
//	ffreport serve
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gridironlab/ffreport/internal/api"
	"github.com/gridironlab/ffreport/internal/archive"
	"github.com/gridironlab/ffreport/internal/cache"
	"github.com/gridironlab/ffreport/internal/config"
	"github.com/gridironlab/ffreport/internal/enrich"
	"github.com/gridironlab/ffreport/internal/metrics"
	"github.com/gridironlab/ffreport/internal/platform"
	"github.com/gridironlab/ffreport/internal/snapshot"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "ffreport",
		Short: "Fantasy football weekly report generator",
	}

	root.AddCommand(reportCmd())
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// report command
// --------------------------------------------------------------------------

func reportCmd() *cobra.Command {
	var (
		platformName string
		leagueID     string
		season       int
		week         string
		offline      bool
		noSave       bool
		autoConfirm  bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate an enriched league snapshot for one report week",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config) error {
				if platformName != "" {
					cfg.Platform = strings.ToLower(platformName)
				}
				if leagueID != "" {
					cfg.LeagueID = leagueID
				}
				if season != 0 {
					cfg.Season = season
				}
				if week != "" {
					cfg.WeekForReport = week
				}
				if offline {
					cfg.Offline = true
				}
				if noSave {
					cfg.SaveData = false
				}
				if err := cfg.ValidateLeague(); err != nil {
					return err
				}

				confirm := platform.Confirm(stdinConfirm)
				if autoConfirm {
					confirm = func(string) (bool, error) { return true, nil }
				}

				start := time.Now()
				if err := runReport(ctx, cfg, confirm); err != nil {
					return err
				}
				logger.Info("Report finished", "duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&platformName, "platform", "", "Fantasy platform (yahoo, espn, sleeper, fleaflicker)")
	cmd.Flags().StringVar(&leagueID, "league", "", "League ID")
	cmd.Flags().IntVar(&season, "season", 0, "Season year")
	cmd.Flags().StringVar(&week, "week", "", `Report week (number or "default")`)
	cmd.Flags().BoolVar(&offline, "offline", false, "Replay previously saved data instead of fetching")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not persist fetched payloads to the data directory")
	cmd.Flags().BoolVar(&autoConfirm, "yes", false, "Answer yes to all confirmation prompts")
	return cmd
}

func runReport(ctx context.Context, cfg *config.Config, confirm platform.Confirm) error {
	store := cache.New(cfg.DataDir, cfg.SaveData, cfg.Offline, logger)

	logger.Info("Building league snapshot",
		"platform", cfg.Platform, "league_id", cfg.LeagueID, "season", cfg.Season,
		"week", cfg.WeekForReport, "offline", cfg.Offline)

	league, err := platform.Build(ctx, cfg, store, confirm, logger)
	if err != nil {
		return err
	}

	providers := enrich.Providers{
		Efficiency: metrics.NewCoachingEfficiency(league, logger),
		Records:    metrics.CalculateRecords(league, logger),
	}

	// Metrics datasets are best-effort: a provider whose dataset cannot be
	// loaded is skipped with a warning rather than failing the report.
	if cfg.BadBoyRankings {
		if badBoy, err := metrics.NewBadBoy(ctx, store, cfg.BadBoyDataURL, logger); err != nil {
			logger.Warn("Bad boy rankings unavailable, skipping", "error", err)
		} else {
			providers.BadBoy = badBoy
		}
	}
	if cfg.BeefRankings {
		if beef, err := metrics.NewBeef(ctx, store, cfg.PlayerDataURL, logger); err != nil {
			logger.Warn("Beef rankings unavailable, skipping", "error", err)
		} else {
			providers.Beef = beef
		}
	}
	if cfg.CovidRiskRankings {
		if covid, err := metrics.NewCovidRisk(ctx, store, cfg.CovidRiskDataURL, logger); err != nil {
			logger.Warn("Covid risk rankings unavailable, skipping", "error", err)
		} else {
			providers.Covid = covid
		}
	}

	enrich.Enrich(league, cfg, providers, logger)

	if err := snapshot.Write(cfg.DataDir, league); err != nil {
		return err
	}
	logger.Info("Snapshot written",
		"path", snapshot.Path(cfg.DataDir, league.Season, league.LeagueID, league.Week),
		"teams", len(league.Teams), "week", league.Week)

	// The Postgres archive is optional and non-fatal: the snapshot on disk
	// is the authoritative report output.
	if cfg.ArchiveEnabled() {
		pool, err := archive.New(ctx, cfg)
		if err != nil {
			logger.Warn("Metrics archive unavailable, skipping", "error", err)
			return nil
		}
		defer pool.Close()
		if err := pool.ArchiveLeague(ctx, league); err != nil {
			logger.Warn("Failed to archive league metrics", "error", err)
		} else {
			logger.Info("Archived team metrics", "teams", len(league.Teams), "week", league.Week)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// serve command
// --------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve stored snapshots over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config) error {
				var pool *archive.Pool
				if cfg.ArchiveEnabled() {
					p, err := archive.New(ctx, cfg)
					if err != nil {
						logger.Warn("Metrics archive unavailable", "error", err)
					} else {
						pool = p
						defer pool.Close()
					}
				}

				router := api.NewRouter(cfg, pool, logger)
				addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
				srv := &http.Server{
					Addr:         addr,
					Handler:      router,
					ReadTimeout:  10 * time.Second,
					WriteTimeout: 30 * time.Second,
					IdleTimeout:  60 * time.Second,
				}

				go func() {
					logger.Info("Starting snapshot API",
						"addr", addr, "environment", cfg.Environment, "data_dir", cfg.DataDir)
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("Server failed", "error", err)
						os.Exit(1)
					}
				}()

				<-ctx.Done()
				logger.Info("Shutting down...")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("Shutdown error", "error", err)
				}
				logger.Info("Server stopped")
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading and context cancellation.
func run(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	return fn(ctx, cfg)
}

// stdinConfirm asks a yes/no question on the terminal. Unrecognized input is
// re-prompted a bounded number of times instead of recursing forever.
func stdinConfirm(prompt string) (bool, error) {
	reader := bufio.NewReader(os.Stdin)
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Printf("%s [y/n] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("read confirmation: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Println(`Please answer "y" or "n".`)
	}
	return false, fmt.Errorf("no valid confirmation received after 3 attempts")
}
