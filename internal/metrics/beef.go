package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gridironlab/ffreport/internal/cache"
)

// beefFile is the raw Sleeper players dataset filename under the data
// directory.
const beefFile = "beef_data.json"

// tabbuValue converts player weight (lbs) to TABBU (taco-at-a-barbecue
// units): one TABBU per 500 lbs.
const tabbuValue = 500.0

// teamAbbrevConversions maps commonly used alternate pro team abbreviations
// to the canonical set.
var teamAbbrevConversions = map[string]string{
	"JAC": "JAX",
	"LA":  "LAR",
}

var nflTeamAbbreviations = []string{
	"ARI", "ATL", "BAL", "BUF", "CAR", "CHI", "CIN", "CLE",
	"DAL", "DEN", "DET", "GB", "HOU", "IND", "JAX", "KC",
	"LAR", "LAC", "LV", "MIA", "MIN", "NE", "NO", "NYG",
	"NYJ", "PHI", "PIT", "SEA", "SF", "TB", "TEN", "WAS",
}

// beefEntry is one player's (or one team defense's) weight stats.
type beefEntry struct {
	FullName string  `json:"fullName"`
	Weight   float64 `json:"weight"`
	TABBU    float64 `json:"tabbu"`
}

// sleeperPlayer is the subset of the Sleeper NFL players dataset the beef
// provider reads.
type sleeperPlayer struct {
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	FullName         string   `json:"full_name"`
	Team             string   `json:"team"`
	Weight           string   `json:"weight"`
	Position         string   `json:"position"`
	FantasyPositions []string `json:"fantasy_positions"`
}

// Beef ranks players by weight. Individual players are keyed by full name;
// team defenses aggregate the combined weight of the franchise's defensive
// linemen and backs.
type Beef struct {
	data   map[string]beefEntry
	logger *slog.Logger
}

// NewBeef loads the Sleeper NFL players dataset through the payload store
// and derives per-player and per-defense weight entries.
func NewBeef(ctx context.Context, store *cache.Store, playerDataURL string, logger *slog.Logger) (*Beef, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Initializing beef stats")

	data, err := store.Fetch(ctx, store.DataDir, beefFile, func(ctx context.Context) ([]byte, error) {
		return fetchDataset(ctx, playerDataURL, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("load beef data: %w", err)
	}

	var players map[string]sleeperPlayer
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("decode beef data: %w", err)
	}

	b := &Beef{data: make(map[string]beefEntry, len(players)), logger: logger}
	for _, p := range players {
		b.addEntry(p)
	}

	if len(b.data) == 0 {
		logger.Warn("No beef data was loaded, beef rankings will be empty")
	} else {
		logger.Info("Loaded player weights and TABBUs", "count", len(b.data))
	}
	return b, nil
}

func (b *Beef) addEntry(p sleeperPlayer) {
	if p.FullName == "" || p.Team == "" || len(p.FantasyPositions) == 0 {
		return
	}
	for _, pos := range p.FantasyPositions {
		if pos == "DEF" {
			return
		}
	}

	weight := parseWeight(p.Weight)
	b.data[p.FullName] = beefEntry{
		FullName: p.FullName,
		Weight:   weight,
		TABBU:    weight / tabbuValue,
	}

	// Defensive linemen and backs contribute to their franchise's combined
	// defense entry, looked up by team abbreviation for DEF roster slots.
	if isDefensivePlayer(p.FantasyPositions) {
		agg := b.data[p.Team]
		agg.FullName = p.Team
		agg.Weight += weight
		agg.TABBU += weight / tabbuValue
		b.data[p.Team] = agg
	}
}

// GetPlayerWeight returns the player's weight in pounds, or 0 on a miss.
func (b *Beef) GetPlayerWeight(firstName, lastName, teamAbbr string) float64 {
	return b.lookup(firstName, lastName, teamAbbr).Weight
}

// GetPlayerTABBU returns the player's TABBU, or 0 on a miss.
func (b *Beef) GetPlayerTABBU(firstName, lastName, teamAbbr string) float64 {
	return b.lookup(firstName, lastName, teamAbbr).TABBU
}

func (b *Beef) lookup(firstName, lastName, teamAbbr string) beefEntry {
	var key string
	if lastName != "" {
		key = strings.TrimSpace(firstName + " " + lastName)
	} else {
		// Team defenses carry no last name; the lookup key is the
		// franchise abbreviation.
		key = strings.ToUpper(teamAbbr)
		if !isKnownTeam(key) {
			if converted, ok := teamAbbrevConversions[key]; ok {
				key = converted
			}
		}
	}

	entry, ok := b.data[key]
	if !ok {
		b.logger.Debug("Player not found in beef data, weight and TABBU default to 0", "player", key)
		return beefEntry{FullName: key}
	}
	return entry
}

func parseWeight(s string) float64 {
	if s == "" {
		return 0
	}
	var w float64
	if _, err := fmt.Sscanf(s, "%f", &w); err != nil {
		return 0
	}
	return w
}

func isDefensivePlayer(positions []string) bool {
	for _, pos := range positions {
		switch pos {
		case "OL", "RB", "WR", "TE":
			return false
		}
	}
	for _, pos := range positions {
		if pos == "DL" || pos == "DB" {
			return true
		}
	}
	return false
}

func isKnownTeam(abbr string) bool {
	for _, t := range nflTeamAbbreviations {
		if t == abbr {
			return true
		}
	}
	return false
}
