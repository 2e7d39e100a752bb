// Package snapshot persists enriched league snapshots as JSON under the
// same season/league/week tree as the raw payload cache, and enumerates
// them for the API server.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gridironlab/ffreport/internal/model"
)

// Filename is the snapshot document name inside a week directory.
const Filename = "snapshot.json"

// Info identifies one stored snapshot.
type Info struct {
	Platform string `json:"platform"`
	LeagueID string `json:"league_id"`
	Season   int    `json:"season"`
	Week     int    `json:"week"`
}

// Path returns the snapshot file path for one (season, league, week).
func Path(dataDir string, season int, leagueID string, week int) string {
	return filepath.Join(dataDir, strconv.Itoa(season), leagueID, fmt.Sprintf("week_%d", week), Filename)
}

// Write stores the enriched league under its week directory.
func Write(dataDir string, league *model.League) error {
	path := Path(dataDir, league.Season, league.LeagueID, league.Week)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(league, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads one stored snapshot back into the canonical model.
func Load(dataDir string, season int, leagueID string, week int) (*model.League, error) {
	path := Path(dataDir, season, leagueID, week)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var league model.League
	if err := json.Unmarshal(data, &league); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &league, nil
}

// List enumerates every stored snapshot under dataDir, ordered by season,
// league, and week.
func List(dataDir string) ([]Info, error) {
	var infos []Info

	seasons, err := os.ReadDir(dataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data dir %s: %w", dataDir, err)
	}

	for _, seasonEntry := range seasons {
		season, err := strconv.Atoi(seasonEntry.Name())
		if !seasonEntry.IsDir() || err != nil {
			continue
		}

		leagues, err := os.ReadDir(filepath.Join(dataDir, seasonEntry.Name()))
		if err != nil {
			continue
		}
		for _, leagueEntry := range leagues {
			if !leagueEntry.IsDir() {
				continue
			}
			leagueID := leagueEntry.Name()

			weeks, err := os.ReadDir(filepath.Join(dataDir, seasonEntry.Name(), leagueID))
			if err != nil {
				continue
			}
			for _, weekEntry := range weeks {
				week, ok := parseWeekDir(weekEntry.Name())
				if !weekEntry.IsDir() || !ok {
					continue
				}
				path := Path(dataDir, season, leagueID, week)
				if _, err := os.Stat(path); err != nil {
					continue
				}

				info := Info{LeagueID: leagueID, Season: season, Week: week}
				if league, err := Load(dataDir, season, leagueID, week); err == nil {
					info.Platform = league.Platform
				}
				infos = append(infos, info)
			}
		}
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Season != infos[j].Season {
			return infos[i].Season < infos[j].Season
		}
		if infos[i].LeagueID != infos[j].LeagueID {
			return infos[i].LeagueID < infos[j].LeagueID
		}
		return infos[i].Week < infos[j].Week
	})
	return infos, nil
}

func parseWeekDir(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "week_")
	if !ok {
		return 0, false
	}
	week, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return week, true
}
