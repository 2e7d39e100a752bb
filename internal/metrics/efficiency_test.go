package metrics

import (
	"testing"

	"github.com/gridironlab/ffreport/internal/model"
)

func cePlayer(name, pos, selected string, points float64) *model.Player {
	return &model.Player{
		FullName:         name,
		PrimaryPosition:  pos,
		SelectedPosition: selected,
		Points:           points,
	}
}

func ceLeague(activePositions ...string) *model.League {
	return &model.League{
		BenchPositions:  []string{"BN", "IR"},
		ActivePositions: activePositions,
	}
}

func TestExecute_OptimalLineupBeatsActual(t *testing.T) {
	// One QB slot, one RB slot. The better RB sat on the bench.
	roster := []*model.Player{
		cePlayer("Quincy Quarterback", "QB", "QB", 20.0),
		cePlayer("Rory Runner", "RB", "RB", 5.0),
		cePlayer("Benny Better", "RB", "BN", 15.0),
	}
	ce := NewCoachingEfficiency(ceLeague("QB", "RB"), nil)

	efficiency, optimal, dq := ce.Execute("Testers", roster, 25.0, []string{"QB", "RB"}, 4, nil, false)

	if dq {
		t.Fatal("unexpected disqualification")
	}
	if optimal != 35.0 {
		t.Errorf("optimal = %v, want 35.0 (QB 20 + bench RB 15)", optimal)
	}
	if efficiency != 71.43 {
		t.Errorf("efficiency = %v, want 71.43", efficiency)
	}
}

func TestExecute_PerfectLineup(t *testing.T) {
	roster := []*model.Player{
		cePlayer("Quincy Quarterback", "QB", "QB", 20.0),
		cePlayer("Rory Runner", "RB", "RB", 15.0),
	}
	ce := NewCoachingEfficiency(ceLeague("QB", "RB"), nil)

	efficiency, optimal, _ := ce.Execute("Testers", roster, 35.0, []string{"QB", "RB"}, 4, nil, false)

	if optimal != 35.0 {
		t.Errorf("optimal = %v, want 35.0", optimal)
	}
	if efficiency != 100.0 {
		t.Errorf("efficiency = %v, want 100.0", efficiency)
	}
}

func TestExecute_FlexFilledAfterFixedSlots(t *testing.T) {
	// Two WRs and a FLEX: the best two WRs take the WR slots, the third
	// WR lands in FLEX over a weaker RB.
	roster := []*model.Player{
		cePlayer("Wanda One", "WR", "WR", 18.0),
		cePlayer("Willa Two", "WR", "WR", 14.0),
		cePlayer("Wendy Three", "WR", "BN", 11.0),
		cePlayer("Ronnie Weak", "RB", "FLEX", 6.0),
	}
	ce := NewCoachingEfficiency(ceLeague("WR", "WR", "FLEX"), nil)

	_, optimal, _ := ce.Execute("Testers", roster, 38.0, []string{"WR", "WR", "FLEX"}, 4, nil, false)

	if optimal != 43.0 {
		t.Errorf("optimal = %v, want 43.0 (18 + 14 + 11)", optimal)
	}
}

func TestExecute_InactivePlayersExcluded(t *testing.T) {
	roster := []*model.Player{
		cePlayer("Quincy Quarterback", "QB", "QB", 20.0),
		cePlayer("Quinn Backup", "QB", "BN", 8.0),
	}
	ce := NewCoachingEfficiency(ceLeague("QB"), nil)

	_, optimal, _ := ce.Execute("Testers", roster, 20.0, []string{"QB"}, 4,
		[]string{"Quincy Quarterback"}, false)

	if optimal != 8.0 {
		t.Errorf("optimal = %v, want 8.0 (starter inactive, backup is the best legal option)", optimal)
	}
}

func TestExecute_IncompleteLineupDisqualifies(t *testing.T) {
	// The RB slot was left empty: one filled slot against two required.
	roster := []*model.Player{cePlayer("Quincy Quarterback", "QB", "QB", 20.0)}
	ce := NewCoachingEfficiency(ceLeague("QB", "RB"), nil)

	efficiency, optimal, dq := ce.Execute("Testers", roster, 20.0, []string{"QB"}, 4, nil, false)

	if !dq {
		t.Fatal("expected disqualification for an incomplete active squad")
	}
	if efficiency != 0 {
		t.Errorf("disqualified efficiency = %v, want 0", efficiency)
	}
	if optimal != 20.0 {
		t.Errorf("optimal = %v, want 20.0 kept for reference", optimal)
	}
}

func TestExecute_InactiveBenchDisqualifies(t *testing.T) {
	roster := []*model.Player{
		cePlayer("Quincy Quarterback", "QB", "QB", 20.0),
		cePlayer("Ollie Out", "RB", "BN", 0.0),
	}
	ce := NewCoachingEfficiency(ceLeague("QB"), nil)

	efficiency, optimal, dq := ce.Execute("Testers", roster, 20.0, []string{"QB"}, 4,
		[]string{"Ollie Out"}, true)

	if !dq {
		t.Fatal("expected disqualification for an inactive bench player")
	}
	if efficiency != 0 || optimal != 20.0 {
		t.Errorf("disqualified team scored (%v, %v), want (0, 20.0)", efficiency, optimal)
	}
}

func TestExecute_InactiveBenchRequiresEligibility(t *testing.T) {
	roster := []*model.Player{
		cePlayer("Quincy Quarterback", "QB", "QB", 20.0),
		cePlayer("Ollie Out", "RB", "BN", 0.0),
	}
	ce := NewCoachingEfficiency(ceLeague("QB"), nil)

	efficiency, _, dq := ce.Execute("Testers", roster, 20.0, []string{"QB"}, 4,
		[]string{"Ollie Out"}, false)

	if dq {
		t.Fatal("bench eligibility checking is off, team should not be disqualified")
	}
	if efficiency != 100.0 {
		t.Errorf("efficiency = %v, want 100.0", efficiency)
	}
}

func TestExecute_HealthyBenchNotDisqualified(t *testing.T) {
	// Eligibility checking is on, but the only inactive player started, so
	// the bench is clean and the team is scored normally.
	roster := []*model.Player{
		cePlayer("Quincy Quarterback", "QB", "QB", 20.0),
		cePlayer("Quinn Backup", "QB", "BN", 8.0),
	}
	ce := NewCoachingEfficiency(ceLeague("QB"), nil)

	efficiency, optimal, dq := ce.Execute("Testers", roster, 20.0, []string{"QB"}, 4,
		[]string{"Quincy Quarterback"}, true)

	if dq {
		t.Fatal("unexpected disqualification with a healthy bench")
	}
	if optimal != 8.0 {
		t.Errorf("optimal = %v, want 8.0 (inactive starter excluded)", optimal)
	}
	if efficiency != 250.0 {
		t.Errorf("efficiency = %v, want 250.0", efficiency)
	}
}
