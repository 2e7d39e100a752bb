// Package metrics implements the optional enrichment providers: bad-boy
// (off-field crime rankings), beef (player weight / TABBU), covid risk, the
// coaching-efficiency evaluator, and the luck/records calculator.
//
// Providers are lookup services: a miss is never an error, it resolves to
// the metric's neutral default. Most players legitimately have no match.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/gridironlab/ffreport/internal/cache"
)

// badBoyFile is the dataset filename under the data directory.
const badBoyFile = "bad_boy_data.json"

// fuzzyNameDistance is the maximum Levenshtein distance accepted when an
// exact name lookup misses. Platform rosters and arrest records frequently
// disagree on punctuation and suffixes.
const fuzzyNameDistance = 2

// badBoyRecord is one entry in the crime dataset.
type badBoyRecord struct {
	Name     string `json:"name"`
	Team     string `json:"team"`
	Position string `json:"position"`
	Crime    string `json:"crime"`
	Points   int    `json:"points"`
}

// teamOffenses aggregates a pro team's offenders for DEF lookups.
type teamOffenses struct {
	points       int
	numOffenders int
	worstCrime   string
	worstPoints  int
}

// BadBoy ranks players by off-field incidents. Individual players are keyed
// by "<full name> <team>"; team defenses aggregate every offender on the
// franchise.
type BadBoy struct {
	players map[string]badBoyRecord
	teams   map[string]teamOffenses
	keys    []string
	logger  *slog.Logger
}

// NewBadBoy loads the crime dataset through the payload store: live runs
// fetch from dataURL and save it, offline runs replay the saved file.
func NewBadBoy(ctx context.Context, store *cache.Store, dataURL string, logger *slog.Logger) (*BadBoy, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Initializing bad boy stats")

	data, err := store.Fetch(ctx, store.DataDir, badBoyFile, func(ctx context.Context) ([]byte, error) {
		return fetchDataset(ctx, dataURL, logger)
	})
	if err != nil {
		return nil, fmt.Errorf("load bad boy data: %w", err)
	}

	var records []badBoyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode bad boy data: %w", err)
	}

	b := &BadBoy{
		players: make(map[string]badBoyRecord, len(records)),
		teams:   make(map[string]teamOffenses),
		logger:  logger,
	}
	for _, r := range records {
		key := playerKey(r.Name, r.Team)
		b.players[key] = r
		b.keys = append(b.keys, key)

		agg := b.teams[r.Team]
		agg.points += r.Points
		agg.numOffenders++
		if r.Points > agg.worstPoints {
			agg.worstPoints = r.Points
			agg.worstCrime = r.Crime
		}
		b.teams[r.Team] = agg
	}
	sort.Strings(b.keys)

	if len(records) == 0 {
		logger.Warn("No bad boy data was loaded, bad boy rankings will be empty")
	} else {
		logger.Info("Loaded bad boy records", "count", len(records))
	}
	return b, nil
}

// GetPlayerBadBoyStats looks up one roster entry. Defensive units return the
// team's aggregated offenses; everyone else matches by name and team, with a
// fuzzy fallback for punctuation and suffix mismatches. A miss returns
// neutral defaults.
func (b *BadBoy) GetPlayerBadBoyStats(firstName, lastName, teamAbbr, position string) (crime string, points, numOffenders int) {
	if isDefense(position) {
		agg, ok := b.teams[strings.ToUpper(teamAbbr)]
		if !ok {
			return "", 0, 0
		}
		crime = agg.worstCrime
		if agg.numOffenders > 1 {
			crime = fmt.Sprintf("%s (+%d more)", agg.worstCrime, agg.numOffenders-1)
		}
		return crime, agg.points, agg.numOffenders
	}

	fullName := strings.TrimSpace(firstName + " " + lastName)
	key := playerKey(fullName, teamAbbr)
	if r, ok := b.players[key]; ok {
		return r.Crime, r.Points, 1
	}

	// Exact miss: try a bounded fuzzy match before giving up.
	ranks := fuzzy.RankFindNormalizedFold(key, b.keys)
	sort.Sort(ranks)
	if len(ranks) > 0 && ranks[0].Distance <= fuzzyNameDistance {
		r := b.players[ranks[0].Target]
		b.logger.Debug("Fuzzy-matched bad boy record", "player", fullName, "matched", r.Name)
		return r.Crime, r.Points, 1
	}

	return "", 0, 0
}

func playerKey(fullName, teamAbbr string) string {
	name := strings.ReplaceAll(fullName, ".", "")
	return strings.ToUpper(strings.TrimSpace(name + " " + strings.ToUpper(teamAbbr)))
}

func isDefense(position string) bool {
	switch position {
	case "DEF", "D/ST":
		return true
	}
	return false
}
