// Package platform selects and drives the per-platform league adapters.
//
// Each supported platform owns the quirks of one external data source and
// exposes a single operation: MapDataToBase, producing the canonical model
// in internal/model. Everything downstream of this package is
// platform-agnostic.
package platform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gridironlab/ffreport/internal/cache"
	"github.com/gridironlab/ffreport/internal/config"
	"github.com/gridironlab/ffreport/internal/model"
	"github.com/gridironlab/ffreport/internal/platform/espn"
	"github.com/gridironlab/ffreport/internal/platform/fleaflicker"
	"github.com/gridironlab/ffreport/internal/platform/sleeper"
	"github.com/gridironlab/ffreport/internal/platform/yahoo"
)

// Adapter is the single seam between a platform integration and the core.
type Adapter interface {
	// MapDataToBase fetches (or replays) all league, team, and roster
	// payloads and translates them into a fully populated — but not yet
	// enriched — canonical league.
	MapDataToBase(ctx context.Context) (*model.League, error)
}

// New dispatches to the adapter for the configured platform. The supported
// set is closed; an unknown platform is a fatal configuration error and
// never falls back to a default.
func New(cfg *config.Config, store *cache.Store, confirm Confirm, logger *slog.Logger) (Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	validateWeek := func(requested string, currentWeek int) (int, error) {
		return ValidateWeek(requested, currentWeek, cfg.Season, time.Now(), confirm)
	}
	currentNFLWeek := func(ctx context.Context) int {
		return CurrentNFLWeek(ctx, cfg.NFLStateURL, cfg.CurrentWeek, cfg.Offline, logger)
	}

	switch cfg.Platform {
	case config.PlatformYahoo:
		return yahoo.New(yahoo.Options{
			WeekForReport:     cfg.WeekForReport,
			LeagueID:          cfg.LeagueID,
			GameID:            cfg.GameID,
			AccessToken:       cfg.YahooAccessToken,
			Season:            cfg.Season,
			StartWeek:         cfg.StartWeek,
			Store:             store,
			ValidateWeek:      validateWeek,
			RequestsPerMinute: cfg.PlatformAPILimit,
			Logger:            logger,
		}), nil
	case config.PlatformESPN:
		return espn.New(espn.Options{
			WeekForReport:     cfg.WeekForReport,
			LeagueID:          cfg.LeagueID,
			Season:            cfg.Season,
			StartWeek:         cfg.StartWeek,
			Store:             store,
			ValidateWeek:      validateWeek,
			RequestsPerMinute: cfg.PlatformAPILimit,
			Logger:            logger,
		}), nil
	case config.PlatformSleeper:
		return sleeper.New(sleeper.Options{
			WeekForReport:     cfg.WeekForReport,
			LeagueID:          cfg.LeagueID,
			Season:            cfg.Season,
			StartWeek:         cfg.StartWeek,
			Store:             store,
			ValidateWeek:      validateWeek,
			CurrentNFLWeek:    currentNFLWeek,
			RequestsPerMinute: cfg.PlatformAPILimit,
			Logger:            logger,
		}), nil
	case config.PlatformFleaflicker:
		return fleaflicker.New(fleaflicker.Options{
			WeekForReport:     cfg.WeekForReport,
			LeagueID:          cfg.LeagueID,
			Season:            cfg.Season,
			StartWeek:         cfg.StartWeek,
			Store:             store,
			ValidateWeek:      validateWeek,
			CurrentNFLWeek:    currentNFLWeek,
			RequestsPerMinute: cfg.PlatformAPILimit,
			Logger:            logger,
		}), nil
	default:
		return nil, fmt.Errorf("generating reports for the %q fantasy football platform is not supported: supported platforms are %s",
			cfg.Platform, strings.Join(config.SupportedPlatforms, ", "))
	}
}

// Build selects the platform adapter and immediately maps its data into the
// canonical model.
func Build(ctx context.Context, cfg *config.Config, store *cache.Store, confirm Confirm, logger *slog.Logger) (*model.League, error) {
	adapter, err := New(cfg, store, confirm, logger)
	if err != nil {
		return nil, err
	}
	league, err := adapter.MapDataToBase(ctx)
	if err != nil {
		return nil, fmt.Errorf("map %s league data: %w", cfg.Platform, err)
	}
	return league, nil
}
