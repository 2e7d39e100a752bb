package metrics

import (
	"log/slog"
	"math"
	"sort"

	"github.com/gridironlab/ffreport/internal/model"
)

// flexEligibility maps flex lineup slots to the primary positions that may
// fill them when computing the optimal lineup.
var flexEligibility = map[string][]string{
	"FLEX_RB_WR": {"RB", "WR"},
	"FLEX_TE_WR": {"WR", "TE"},
	"FLEX":       {"RB", "WR", "TE"},
	"SUPERFLEX":  {"QB", "RB", "WR", "TE"},
	"FLEX_IOP":   {"QB", "RB", "WR", "TE", "K"},
	"FLEX_IDP":   {"DL", "LB", "DB", "DE", "DT", "CB", "S"},
}

// CoachingEfficiency scores how close each team's actual lineup came to the
// best lineup available from the same roster under the league's slot rules.
type CoachingEfficiency struct {
	activeSlots []string
	isBench     func(string) bool
	logger      *slog.Logger
}

// NewCoachingEfficiency builds an evaluator for one league's lineup rules.
func NewCoachingEfficiency(league *model.League, logger *slog.Logger) *CoachingEfficiency {
	if logger == nil {
		logger = slog.Default()
	}
	slots := append([]string(nil), league.ActivePositions...)

	// Fill the most restrictive slots first so flex slots see only the
	// leftovers — a WR burned on FLEX before the WR slots are filled would
	// understate the optimal score.
	sort.SliceStable(slots, func(i, j int) bool {
		return slotBreadth(slots[i]) < slotBreadth(slots[j])
	})

	return &CoachingEfficiency{
		activeSlots: slots,
		isBench:     league.IsBenchPosition,
		logger:      logger,
	}
}

// Execute computes (efficiency, optimal points, disqualified) for one team.
//
// The optimal lineup is a greedy fill of the league's active slots from the
// full roster, highest-scoring eligible player first, excluding players
// named in inactivePlayers.
//
// A team is disqualified when its active lineup is incomplete (fewer filled
// slots than the league requires), or — when the run opted into bench
// eligibility checking via dqEligible — when it left inactive players on
// the bench. Disqualified teams report zero efficiency but keep the optimal
// score for reference.
func (ce *CoachingEfficiency) Execute(teamName string, roster []*model.Player, teamPoints float64, positionsFilled []string, week int, inactivePlayers []string, dqEligible bool) (efficiency, optimalPoints float64, disqualified bool) {
	inactive := make(map[string]bool, len(inactivePlayers))
	for _, name := range inactivePlayers {
		inactive[name] = true
	}

	used := make(map[*model.Player]bool)
	for _, slot := range ce.activeSlots {
		best := bestForSlot(slot, roster, used, inactive)
		if best == nil {
			continue
		}
		used[best] = true
		optimalPoints += best.Points
	}
	optimalPoints = round2(optimalPoints)

	if len(positionsFilled) < len(ce.activeSlots) {
		ce.logger.Info("Team disqualified from coaching efficiency: incomplete active squad",
			"team", teamName, "week", week,
			"filled", len(positionsFilled), "required", len(ce.activeSlots))
		return 0, optimalPoints, true
	}

	if dqEligible {
		var benchedInactive int
		for _, p := range roster {
			if ce.isBench(p.SelectedPosition) && inactive[p.FullName] {
				benchedInactive++
			}
		}
		if benchedInactive > 0 {
			ce.logger.Info("Team disqualified from coaching efficiency: inactive bench players",
				"team", teamName, "week", week, "inactive_bench_players", benchedInactive)
			return 0, optimalPoints, true
		}
	}

	if optimalPoints > 0 {
		efficiency = round2(teamPoints / optimalPoints * 100)
	}

	ce.logger.Debug("Computed coaching efficiency",
		"team", teamName, "week", week, "efficiency", efficiency, "optimal_points", optimalPoints)
	return efficiency, optimalPoints, false
}

func bestForSlot(slot string, roster []*model.Player, used map[*model.Player]bool, inactive map[string]bool) *model.Player {
	var best *model.Player
	for _, p := range roster {
		if used[p] || inactive[p.FullName] {
			continue
		}
		if !eligibleForSlot(p, slot) {
			continue
		}
		if best == nil || p.Points > best.Points {
			best = p
		}
	}
	return best
}

func eligibleForSlot(p *model.Player, slot string) bool {
	if p.PrimaryPosition == slot {
		return true
	}
	for _, pos := range p.EligiblePositions {
		if pos == slot {
			return true
		}
	}
	if allowed, ok := flexEligibility[slot]; ok {
		for _, pos := range allowed {
			if p.PrimaryPosition == pos {
				return true
			}
		}
	}
	return false
}

// slotBreadth orders slots by how many positions can fill them. Fixed slots
// count as 1.
func slotBreadth(slot string) int {
	if allowed, ok := flexEligibility[slot]; ok {
		return len(allowed)
	}
	return 1
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
