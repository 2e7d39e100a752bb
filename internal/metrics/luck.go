package metrics

import (
	"log/slog"
	"math"

	"github.com/gridironlab/ffreport/internal/model"
)

// TeamRecords carries the luck score and records computed for one team
// before enrichment.
type TeamRecords struct {
	Luck                float64
	WeeklyOverallRecord model.Record
	SeasonRecord        model.Record
}

// CalculateRecords computes per-team luck, weekly overall records, and
// season records from the league's matchup history, keyed by team id.
//
// The weekly overall ("all-play") record compares a team's report-week score
// against every other team that week. Luck measures how a team's actual
// matchup result diverged from that all-play record: a win over a schedule
// that mostly would have beaten you is lucky, a loss despite outscoring most
// of the league is unlucky. Winners score +(all-play losses + ties) and
// losers -(all-play wins + ties), normalized by the number of opponents and
// expressed as a percentage; ties score the signed difference.
func CalculateRecords(league *model.League, logger *slog.Logger) map[string]TeamRecords {
	if logger == nil {
		logger = slog.Default()
	}

	scores := make(map[string]float64)
	results := make(map[string]int) // 1 win, -1 loss, 0 tie
	for _, m := range league.MatchupsByWeek[league.Week] {
		scores[m.HomeID] = m.HomePts
		scores[m.AwayID] = m.AwayPts
		switch {
		case m.Tied:
			results[m.HomeID], results[m.AwayID] = 0, 0
		case m.HomePts > m.AwayPts:
			results[m.HomeID], results[m.AwayID] = 1, -1
		default:
			results[m.HomeID], results[m.AwayID] = -1, 1
		}
	}

	seasonRecords := seasonRecordsFromMatchups(league)

	records := make(map[string]TeamRecords, len(league.Teams))
	for _, team := range league.Teams {
		score, played := scores[team.ID]
		if !played {
			records[team.ID] = TeamRecords{SeasonRecord: seasonRecords[team.ID]}
			continue
		}

		var weekly model.Record
		for id, other := range scores {
			if id == team.ID {
				continue
			}
			switch {
			case score > other:
				weekly.Wins++
			case score < other:
				weekly.Losses++
			default:
				weekly.Ties++
			}
		}

		opponents := weekly.Wins + weekly.Losses + weekly.Ties
		var luck float64
		if opponents > 0 {
			switch results[team.ID] {
			case 1:
				luck = float64(weekly.Losses+weekly.Ties) / float64(opponents)
			case -1:
				luck = -float64(weekly.Wins+weekly.Ties) / float64(opponents)
			default:
				luck = float64(weekly.Losses-weekly.Wins) / float64(opponents)
			}
		}

		records[team.ID] = TeamRecords{
			Luck:                math.Round(luck*100*100) / 100,
			WeeklyOverallRecord: weekly,
			SeasonRecord:        seasonRecords[team.ID],
		}
	}

	logger.Debug("Calculated team records", "week", league.Week, "teams", len(records))
	return records
}

// seasonRecordsFromMatchups tallies each team's record across all completed
// matchup weeks up to and including the report week.
func seasonRecordsFromMatchups(league *model.League) map[string]model.Record {
	records := make(map[string]model.Record)
	for week, matchups := range league.MatchupsByWeek {
		if week > league.Week {
			continue
		}
		for _, m := range matchups {
			home, away := records[m.HomeID], records[m.AwayID]
			switch {
			case m.Tied:
				home.Ties++
				away.Ties++
			case m.HomePts > m.AwayPts:
				home.Wins++
				away.Losses++
			default:
				home.Losses++
				away.Wins++
			}
			records[m.HomeID], records[m.AwayID] = home, away
		}
	}
	return records
}
