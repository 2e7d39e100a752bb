// Package cache persists raw platform payloads to disk so a report run can
// be replayed offline. Payloads are written verbatim — the bytes saved from
// a live fetch are the bytes read back in offline mode, so both paths
// produce the identical canonical model.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// Store reads and writes per-league payload files under
// data_dir/<season>/<league_id>/week_<N>/<payload>.json.
type Store struct {
	DataDir  string
	SaveData bool
	Offline  bool

	logger *slog.Logger
}

// New creates a payload store rooted at dataDir.
func New(dataDir string, saveData, offline bool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{DataDir: dataDir, SaveData: saveData, Offline: offline, logger: logger}
}

// LeagueDir returns the directory for season-scoped league payloads.
func (s *Store) LeagueDir(season int, leagueID string) string {
	return filepath.Join(s.DataDir, strconv.Itoa(season), leagueID)
}

// WeekDir returns the directory for week-scoped league payloads.
func (s *Store) WeekDir(season int, leagueID string, week int) string {
	return filepath.Join(s.LeagueDir(season, leagueID), fmt.Sprintf("week_%d", week))
}

// Fetch retrieves one raw payload. In offline mode the payload is read from
// dir/filename; a missing file is an error since the run cannot proceed
// without data. Online, get is invoked and — when SaveData is set — the raw
// response is written to dir/filename before returning.
func (s *Store) Fetch(ctx context.Context, dir, filename string, get func(context.Context) ([]byte, error)) ([]byte, error) {
	path := filepath.Join(dir, filename)

	if s.Offline {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("offline payload %s: cannot load data locally without having previously saved data: %w", path, err)
		}
		s.logger.Debug("Loaded saved payload", "path", path)
		return data, nil
	}

	data, err := get(ctx)
	if err != nil {
		return nil, err
	}

	if s.SaveData {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create payload dir %s: %w", dir, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("save payload %s: %w", path, err)
		}
		s.logger.Debug("Saved payload", "path", path)
	}

	return data, nil
}
