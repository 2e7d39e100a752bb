package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	httpclient "github.com/gridironlab/ffreport/internal/platform/client"
)

// nflState is the subset of the Sleeper NFL state payload the resolver needs.
type nflState struct {
	Week       int    `json:"week"`
	SeasonType string `json:"season_type"`
}

// CurrentNFLWeek resolves the current NFL week. Offline runs (and failed
// live lookups) fall back to the configured value — a stale current week
// only affects validation prompts, never fetched data.
func CurrentNFLWeek(ctx context.Context, stateURL string, fallback int, offline bool, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	if offline {
		logger.Debug("Offline mode: current NFL week defaults to configured value", "week", fallback)
		return fallback
	}

	c := httpclient.New(stateURL, 60, nil, logger)
	body, err := c.Get(ctx, "", nil)
	if err != nil {
		logger.Warn("Unable to retrieve current NFL week, defaulting to configured value", "error", err, "week", fallback)
		return fallback
	}

	var state nflState
	if err := json.Unmarshal(body, &state); err != nil || state.Week == 0 {
		logger.Warn("Unable to decode current NFL week, defaulting to configured value",
			"error", fmt.Sprintf("%v", err), "week", fallback)
		return fallback
	}

	return state.Week
}
