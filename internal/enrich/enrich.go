// Package enrich applies the derived metrics to a canonical league produced
// by a platform adapter. Enrichment is a staged, in-order transformation:
// adapters output an un-enriched league, Enrich annotates it team by team,
// player by player. Nothing in this package touches the network.
package enrich

import (
	"log/slog"
	"math"

	"github.com/gridironlab/ffreport/internal/config"
	"github.com/gridironlab/ffreport/internal/metrics"
	"github.com/gridironlab/ffreport/internal/model"
)

// covidSeasonFloor is the first season with covid risk data. Earlier seasons
// keep neutral defaults even when the toggle is on.
const covidSeasonFloor = 2020

// pointsTolerance is the rounding tolerance for the team point consistency
// check, matching the two-decimal precision of platform scores.
const pointsTolerance = 0.01

// inactiveStatuses are player statuses excluded from optimal lineups.
var inactiveStatuses = map[string]bool{
	"O":        true,
	"Out":      true,
	"IR":       true,
	"COVID-19": true,
	"NA":       true,
}

// BadBoyProvider looks up off-field incident scores.
type BadBoyProvider interface {
	GetPlayerBadBoyStats(firstName, lastName, teamAbbr, position string) (crime string, points, numOffenders int)
}

// BeefProvider looks up player weight stats.
type BeefProvider interface {
	GetPlayerWeight(firstName, lastName, teamAbbr string) float64
	GetPlayerTABBU(firstName, lastName, teamAbbr string) float64
}

// CovidProvider looks up covid risk scores by full name.
type CovidProvider interface {
	GetPlayerCovidRisk(fullName string) int
}

// EfficiencyEvaluator scores a team's lineup against its optimal lineup.
type EfficiencyEvaluator interface {
	Execute(teamName string, roster []*model.Player, teamPoints float64, positionsFilled []string, week int, inactivePlayers []string, dqEligible bool) (efficiency, optimalPoints float64, disqualified bool)
}

// Providers bundles the metric lookups the engine consults. Any nil provider
// is simply skipped, independent of the configuration toggles.
type Providers struct {
	BadBoy     BadBoyProvider
	Beef       BeefProvider
	Covid      CovidProvider
	Efficiency EfficiencyEvaluator

	// Records is the precomputed per-team luck and record table, built once
	// per league before enrichment.
	Records map[string]metrics.TeamRecords
}

// Enrich annotates every team and player in the league with the enabled
// derived metrics and returns the same league. Lookup misses degrade to
// neutral defaults; the only diagnostics are data-quality warnings.
func Enrich(league *model.League, cfg *config.Config, p Providers, logger *slog.Logger) *model.League {
	if logger == nil {
		logger = slog.Default()
	}

	badBoy := cfg.BadBoyRankings && p.BadBoy != nil
	beef := cfg.BeefRankings && p.Beef != nil
	covid := cfg.CovidRiskRankings && p.Covid != nil && league.Season >= covidSeasonFloor
	if cfg.CovidRiskRankings && league.Season < covidSeasonFloor {
		logger.Debug("Covid risk rankings are enabled but unavailable before 2020, skipping",
			"season", league.Season)
	}

	for _, team := range league.Teams {
		enrichTeam(league, team, cfg, p, badBoy, beef, covid, logger)
	}
	return league
}

func enrichTeam(league *model.League, team *model.Team, cfg *config.Config, p Providers, badBoy, beef, covid bool, logger *slog.Logger) {
	var (
		activeSum float64
		benchSum  float64
		inactive  []string
		positions []string
	)

	team.PositionsFilled = nil
	team.BadBoyPoints, team.WorstOffense, team.WorstOffenseScore, team.NumOffenders = 0, "", 0, 0
	team.TotalWeight, team.TABBU = 0, 0
	team.TotalCovidRisk = 0

	for _, player := range team.Roster {
		player.ResetEnrichment()

		if inactiveStatuses[player.Status] {
			inactive = append(inactive, player.FullName)
		}

		// Bench players keep neutral defaults: only active lineup
		// production feeds the team aggregates.
		if league.IsBenchPosition(player.SelectedPosition) {
			benchSum += player.Points
			continue
		}

		activeSum += player.Points
		positions = append(positions, player.SelectedPosition)

		if badBoy {
			crime, points, offenders := p.BadBoy.GetPlayerBadBoyStats(
				player.FirstName, player.LastName, player.NFLTeamAbbr, player.PrimaryPosition)
			player.BadBoyCrime = crime
			player.BadBoyPoints = points
			player.BadBoyNumOffenders = offenders

			team.BadBoyPoints += points
			if player.PrimaryPosition == "DEF" || player.PrimaryPosition == "D/ST" {
				team.NumOffenders += offenders
			} else if points > 0 {
				team.NumOffenders++
			}
			if points > team.WorstOffenseScore {
				team.WorstOffenseScore = points
				team.WorstOffense = crime
			}
		}

		if beef {
			player.Weight = p.Beef.GetPlayerWeight(player.FirstName, player.LastName, player.NFLTeamAbbr)
			player.TABBU = p.Beef.GetPlayerTABBU(player.FirstName, player.LastName, player.NFLTeamAbbr)
			team.TotalWeight += player.Weight
			team.TABBU += player.TABBU
		}

		if covid {
			player.CovidRisk = p.Covid.GetPlayerCovidRisk(player.FullName)
			team.TotalCovidRisk += player.CovidRisk
		}
	}

	team.BenchPoints = round2(benchSum)
	team.TotalWeight = round2(team.TotalWeight)
	team.TABBU = round2(team.TABBU)
	team.PositionsFilled = positions

	// Consistency check: the platform's reported total, net of any home
	// bonus, should equal the starting-lineup sum. Platform data is
	// authoritative even when inconsistent, so a mismatch only warns.
	recomputed := round2(activeSum)
	reported := round2(team.Points - team.HomeFieldAdvantage)
	if math.Abs(recomputed-reported) > pointsTolerance {
		logger.Warn("Team points do not match the recomputed starting lineup sum",
			"team", team.Name, "week", team.Week,
			"reported", reported, "recomputed", recomputed)
		if cfg.PointsSource == config.PointsSourceRecomputed {
			team.Points = round2(recomputed + team.HomeFieldAdvantage)
		}
	}

	if p.Efficiency != nil {
		// Efficiency is scored against the starting-lineup production, so the
		// home bonus is netted out of both sides of the ratio.
		team.CoachingEfficiency, team.OptimalPoints, team.EfficiencyDQ = p.Efficiency.Execute(
			team.Name, team.Roster, team.Points-team.HomeFieldAdvantage, positions, team.Week, inactive,
			cfg.CoachingEfficiencyDQEligible)

		// The manual DQ list overrides whatever the evaluator decided.
		for _, name := range cfg.CoachingEfficiencyDQs {
			if name == team.Name {
				logger.Info("Team manually disqualified from coaching efficiency",
					"team", team.Name, "week", team.Week)
				team.CoachingEfficiency = 0
				team.EfficiencyDQ = true
				break
			}
		}
	}

	if r, ok := p.Records[team.ID]; ok {
		team.Luck = r.Luck
		team.WeeklyOverallRecord = r.WeeklyOverallRecord
		if team.Record == (model.Record{}) {
			team.Record = r.SeasonRecord
		}
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
