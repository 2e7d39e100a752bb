package model

import (
	"testing"
)

func rosterFixture() *Team {
	return &Team{
		ID: "1",
		Roster: []*Player{
			{FullName: "Al Active", SelectedPosition: "QB", Points: 20},
			{FullName: "Flo Flexed", SelectedPosition: "FLEX", Points: 9},
			{FullName: "Ben Benched", SelectedPosition: "BN", Points: 15},
			{FullName: "Ira Injured", SelectedPosition: "IR", Points: 0},
		},
	}
}

func TestActiveAndBenchRoster(t *testing.T) {
	league := &League{BenchPositions: []string{"BN", "IR"}}
	team := rosterFixture()

	active := team.ActiveRoster(league.IsBenchPosition)
	if len(active) != 2 {
		t.Fatalf("active roster size = %d, want 2", len(active))
	}
	for _, p := range active {
		if league.IsBenchPosition(p.SelectedPosition) {
			t.Errorf("bench player %s in active roster", p.FullName)
		}
	}

	bench := team.BenchRoster(league.IsBenchPosition)
	if len(bench) != 2 {
		t.Fatalf("bench roster size = %d, want 2", len(bench))
	}
	if len(active)+len(bench) != len(team.Roster) {
		t.Error("active/bench partition does not cover the roster")
	}
}

func TestRecordPercentage(t *testing.T) {
	tests := []struct {
		record Record
		want   float64
	}{
		{Record{}, 0},
		{Record{Wins: 3, Losses: 1}, 0.75},
		{Record{Wins: 1, Losses: 1, Ties: 2}, 0.5},
	}
	for _, tt := range tests {
		if got := tt.record.Percentage(); got != tt.want {
			t.Errorf("%+v.Percentage() = %v, want %v", tt.record, got, tt.want)
		}
	}
}

func TestResetEnrichment(t *testing.T) {
	p := &Player{
		BadBoyCrime:        "DUI",
		BadBoyPoints:       5,
		BadBoyNumOffenders: 1,
		Weight:             250,
		TABBU:              0.5,
		CovidRisk:          3,
	}
	p.ResetEnrichment()
	if p.BadBoyCrime != "" || p.BadBoyPoints != 0 || p.BadBoyNumOffenders != 0 ||
		p.Weight != 0 || p.TABBU != 0 || p.CovidRisk != 0 {
		t.Errorf("enrichment fields not reset: %+v", p)
	}
}

func TestLeagueClone(t *testing.T) {
	league := &League{
		Platform:       "sleeper",
		LeagueID:       "1",
		Season:         2025,
		Week:           4,
		BenchPositions: []string{"BN"},
		Teams:          []*Team{rosterFixture()},
	}

	clone, err := league.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	clone.Teams[0].Roster[0].Points = 999
	if league.Teams[0].Roster[0].Points == 999 {
		t.Error("clone shares player state with the original")
	}
}
