package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gridironlab/ffreport/internal/cache"
)

func badBoyFixture(t *testing.T) *BadBoy {
	t.Helper()
	dir := t.TempDir()
	data := `[
		{"name": "Marvin Menace", "team": "DAL", "position": "WR", "crime": "DUI", "points": 5},
		{"name": "Larry Lawless", "team": "DAL", "position": "LB", "crime": "Assault", "points": 12},
		{"name": "Oscar Outlaw", "team": "KC", "position": "RB", "crime": "Theft", "points": 3}
	]`
	if err := os.WriteFile(filepath.Join(dir, badBoyFile), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	store := cache.New(dir, false, true, nil)
	b, err := NewBadBoy(context.Background(), store, "", nil)
	if err != nil {
		t.Fatalf("NewBadBoy: %v", err)
	}
	return b
}

func TestGetPlayerBadBoyStats_ExactMatch(t *testing.T) {
	b := badBoyFixture(t)

	crime, points, offenders := b.GetPlayerBadBoyStats("Oscar", "Outlaw", "KC", "RB")
	if crime != "Theft" || points != 3 || offenders != 1 {
		t.Errorf("got (%q, %d, %d), want (Theft, 3, 1)", crime, points, offenders)
	}
}

func TestGetPlayerBadBoyStats_Miss(t *testing.T) {
	b := badBoyFixture(t)

	crime, points, offenders := b.GetPlayerBadBoyStats("Saintly", "Cleanrecord", "GB", "QB")
	if crime != "" || points != 0 || offenders != 0 {
		t.Errorf("miss returned (%q, %d, %d), want neutral defaults", crime, points, offenders)
	}
}

func TestGetPlayerBadBoyStats_FuzzyMatch(t *testing.T) {
	b := badBoyFixture(t)

	// Platform roster spells the name slightly differently than the dataset.
	crime, points, _ := b.GetPlayerBadBoyStats("Marvin", "Menac", "DAL", "WR")
	if crime != "DUI" || points != 5 {
		t.Errorf("fuzzy lookup got (%q, %d), want (DUI, 5)", crime, points)
	}
}

func TestGetPlayerBadBoyStats_DefenseAggregates(t *testing.T) {
	b := badBoyFixture(t)

	crime, points, offenders := b.GetPlayerBadBoyStats("Dallas", "", "DAL", "D/ST")
	if points != 17 {
		t.Errorf("DEF points = %d, want 17 (5 + 12)", points)
	}
	if offenders != 2 {
		t.Errorf("DEF offenders = %d, want 2", offenders)
	}
	if crime != "Assault (+1 more)" {
		t.Errorf("DEF crime = %q, want the worst offense with the extra count", crime)
	}
}

func TestNewBadBoy_OfflineWithoutSavedData(t *testing.T) {
	store := cache.New(t.TempDir(), false, true, nil)
	if _, err := NewBadBoy(context.Background(), store, "", nil); err == nil {
		t.Fatal("expected an error when no saved dataset exists offline")
	}
}
