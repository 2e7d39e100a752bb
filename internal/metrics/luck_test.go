package metrics

import (
	"testing"

	"github.com/gridironlab/ffreport/internal/model"
)

func luckLeague() *model.League {
	return &model.League{
		Week: 2,
		Teams: []*model.Team{
			{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"},
		},
		MatchupsByWeek: map[int][]model.Matchup{
			1: {
				{Week: 1, HomeID: "1", AwayID: "2", HomePts: 110, AwayPts: 95},
				{Week: 1, HomeID: "3", AwayID: "4", HomePts: 85, AwayPts: 88},
			},
			2: {
				{Week: 2, HomeID: "1", AwayID: "2", HomePts: 100, AwayPts: 90},
				{Week: 2, HomeID: "3", AwayID: "4", HomePts: 80, AwayPts: 70},
			},
		},
	}
}

func TestCalculateRecords_WeeklyOverall(t *testing.T) {
	records := CalculateRecords(luckLeague(), nil)

	tests := []struct {
		teamID string
		want   model.Record
	}{
		{"1", model.Record{Wins: 3}},
		{"2", model.Record{Wins: 2, Losses: 1}},
		{"3", model.Record{Wins: 1, Losses: 2}},
		{"4", model.Record{Losses: 3}},
	}
	for _, tt := range tests {
		got := records[tt.teamID].WeeklyOverallRecord
		if got != tt.want {
			t.Errorf("team %s weekly overall = %+v, want %+v", tt.teamID, got, tt.want)
		}
	}
}

func TestCalculateRecords_Luck(t *testing.T) {
	records := CalculateRecords(luckLeague(), nil)

	// Team 1 won and would have beaten everyone: no luck involved.
	if got := records["1"].Luck; got != 0 {
		t.Errorf("team 1 luck = %v, want 0", got)
	}
	// Team 2 lost despite outscoring two teams: unlucky.
	if got := records["2"].Luck; got != -66.67 {
		t.Errorf("team 2 luck = %v, want -66.67", got)
	}
	// Team 3 won despite outscoring only one team: lucky.
	if got := records["3"].Luck; got != 66.67 {
		t.Errorf("team 3 luck = %v, want 66.67", got)
	}
	// Team 4 lost and would have lost to everyone: no luck involved.
	if got := records["4"].Luck; got != 0 {
		t.Errorf("team 4 luck = %v, want 0", got)
	}
}

func TestCalculateRecords_SeasonRecords(t *testing.T) {
	records := CalculateRecords(luckLeague(), nil)

	// Team 1 won both weeks, team 4 split.
	if got := records["1"].SeasonRecord; got != (model.Record{Wins: 2}) {
		t.Errorf("team 1 season record = %+v, want 2-0-0", got)
	}
	if got := records["4"].SeasonRecord; got != (model.Record{Wins: 1, Losses: 1}) {
		t.Errorf("team 4 season record = %+v, want 1-1-0", got)
	}
}

func TestCalculateRecords_TeamWithoutMatchup(t *testing.T) {
	league := luckLeague()
	league.Teams = append(league.Teams, &model.Team{ID: "5"})

	records := CalculateRecords(league, nil)
	if got := records["5"]; got.Luck != 0 || got.WeeklyOverallRecord != (model.Record{}) {
		t.Errorf("bye team records = %+v, want zero values", got)
	}
}
