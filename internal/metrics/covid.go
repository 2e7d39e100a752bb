package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/gridironlab/ffreport/internal/cache"
)

// covidFile is the dataset filename under the data directory.
const covidFile = "covid_risk_data.json"

// CovidRisk scores players by their NFL team's recent COVID case load.
// Entries are keyed by player full name. The enrichment engine gates this
// provider to seasons from 2020 onward; the provider itself is season-blind.
type CovidRisk struct {
	data   map[string]int
	logger *slog.Logger
}

// NewCovidRisk loads the covid risk dataset through the payload store.
func NewCovidRisk(ctx context.Context, store *cache.Store, dataURL string, logger *slog.Logger) (*CovidRisk, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Initializing covid risk")

	data, err := store.Fetch(ctx, store.DataDir, covidFile, func(ctx context.Context) ([]byte, error) {
		return fetchDataset(ctx, dataURL, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("load covid risk data: %w", err)
	}

	var risks map[string]int
	if err := json.Unmarshal(data, &risks); err != nil {
		return nil, fmt.Errorf("decode covid risk data: %w", err)
	}

	if len(risks) == 0 {
		logger.Warn("No covid risk data was loaded, covid risk scores will be empty")
	} else {
		logger.Info("Loaded covid risk entries", "count", len(risks))
	}
	return &CovidRisk{data: risks, logger: logger}, nil
}

// GetPlayerCovidRisk returns the player's covid risk score, or 0 on a miss.
func (c *CovidRisk) GetPlayerCovidRisk(fullName string) int {
	return c.data[fullName]
}
