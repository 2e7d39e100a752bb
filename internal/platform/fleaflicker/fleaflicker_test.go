package fleaflicker

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gridironlab/ffreport/internal/cache"
)

func writeFixtures(t *testing.T, dir string) {
	t.Helper()

	leagueDir := filepath.Join(dir, "2025", "9999")
	weekDir := filepath.Join(leagueDir, "week_1")
	if err := os.MkdirAll(weekDir, 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(leagueDir, "9999-league_standings.json"): `{
			"league": {"name": "Flicker League"},
			"divisions": [{
				"teams": [
					{"id": 100, "name": "Alpha", "recordOverall": {"wins": 1, "losses": 0, "ties": 0}},
					{"id": 200, "name": "Bravo", "recordOverall": {"wins": 0, "losses": 1, "ties": 0}}
				]
			}]
		}`,
		filepath.Join(leagueDir, "9999-league_rules.json"): `{
			"rosterPositions": [
				{"label": "QB", "min": 1, "max": 1, "group": "START"},
				{"label": "RB", "max": 1, "group": "START"},
				{"label": "RB/WR/TE", "max": 1, "group": "START"},
				{"label": "BN", "max": 3, "group": "BENCH"},
				{"label": "IR", "max": 1, "group": "BENCH"}
			]
		}`,
		filepath.Join(weekDir, "week_1-scoreboard.json"): `{
			"games": [{
				"home": {"id": 100}, "away": {"id": 200},
				"homeScore": {"score": {"value": 88.5}},
				"awayScore": {"score": {"value": 91.0}},
				"isFinalScore": true
			}]
		}`,
		filepath.Join(weekDir, "week_1-100-roster.json"): `{
			"groups": [
				{"group": "START", "slots": [
					{"position": {"label": "QB"}, "leaguePlayer": {
						"proPlayer": {"id": 1, "nameFull": "Sam Slinger", "nameFirst": "Sam",
						              "nameLast": "Slinger", "position": "QB", "proTeamAbbreviation": "KC",
						              "injury": {}},
						"viewingActualPoints": {"value": 22.4}}},
					{"position": {"label": "RB"}, "leaguePlayer": {
						"proPlayer": {"id": 2, "nameFull": "Rhett Rusher", "nameFirst": "Rhett",
						              "nameLast": "Rusher", "position": "RB", "proTeamAbbreviation": "DAL",
						              "injury": {}},
						"viewingActualPoints": {"value": 14.1}}},
					{"position": {"label": "RB/WR/TE"}, "leaguePlayer": null}
				]},
				{"group": "BENCH", "slots": [
					{"position": {"label": "BN"}, "leaguePlayer": {
						"proPlayer": {"id": 3, "nameFull": "Ben Bencher", "nameFirst": "Ben",
						              "nameLast": "Bencher", "position": "WR", "proTeamAbbreviation": "GB",
						              "injury": {"description": "Out"}},
						"viewingActualPoints": {"value": 6.0}}}
				]},
				{"group": "INJURED_RESERVE", "slots": [
					{"position": {"label": "IR"}, "leaguePlayer": {
						"proPlayer": {"id": 4, "nameFull": "Ira Injured", "nameFirst": "Ira",
						              "nameLast": "Injured", "position": "TE", "proTeamAbbreviation": "MIA",
						              "injury": {"description": "IR"}},
						"viewingActualPoints": {"value": 0}}}
				]}
			]
		}`,
		filepath.Join(weekDir, "week_1-200-roster.json"): `{
			"groups": [
				{"group": "START", "slots": [
					{"position": {"label": "QB"}, "leaguePlayer": {
						"proPlayer": {"id": 5, "nameFull": "Quinn Second", "nameFirst": "Quinn",
						              "nameLast": "Second", "position": "QB", "proTeamAbbreviation": "BUF",
						              "injury": {}},
						"viewingActualPoints": {"value": 19.8}}}
				]}
			]
		}`,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func offlineAdapter(dir string) *LeagueData {
	return New(Options{
		WeekForReport: "1",
		LeagueID:      "9999",
		Season:        2025,
		StartWeek:     1,
		Store:         cache.New(dir, false, true, nil),
		ValidateWeek: func(requested string, currentWeek int) (int, error) {
			return 1, nil
		},
		CurrentNFLWeek: func(context.Context) int { return 2 },
	})
}

func TestMapDataToBase_Offline(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	league, err := offlineAdapter(dir).MapDataToBase(context.Background())
	if err != nil {
		t.Fatalf("MapDataToBase: %v", err)
	}

	if league.Name != "Flicker League" || league.NumTeams != 2 || league.Week != 1 {
		t.Errorf("league header = (%q, %d, %d)", league.Name, league.NumTeams, league.Week)
	}
	if got := league.ActivePositions; !reflect.DeepEqual(got, []string{"QB", "RB", "FLEX"}) {
		t.Errorf("ActivePositions = %v", got)
	}

	if len(league.Teams) != 2 {
		t.Fatalf("teams = %d, want 2", len(league.Teams))
	}
	alpha, bravo := league.Teams[0], league.Teams[1]
	if alpha.Points != 88.5 || bravo.Points != 91.0 {
		t.Errorf("points = (%v, %v), want (88.5, 91.0)", alpha.Points, bravo.Points)
	}
	if alpha.Record.Wins != 1 || bravo.Record.Losses != 1 {
		t.Errorf("records = (%+v, %+v)", alpha.Record, bravo.Record)
	}

	// The empty flex slot is skipped, so alpha carries 4 players.
	if len(alpha.Roster) != 4 {
		t.Fatalf("alpha roster = %d players, want 4", len(alpha.Roster))
	}
	selected := map[string]string{}
	for _, p := range alpha.Roster {
		selected[p.FullName] = p.SelectedPosition
	}
	want := map[string]string{
		"Sam Slinger":  "QB",
		"Rhett Rusher": "RB",
		"Ben Bencher":  "BN",
		"Ira Injured":  "IR",
	}
	if !reflect.DeepEqual(selected, want) {
		t.Errorf("selected positions = %v, want %v", selected, want)
	}

	m := league.MatchupsByWeek[1][0]
	if m.HomeID != "100" || m.AwayID != "200" || !m.Complete || m.Tied {
		t.Errorf("matchup = %+v", m)
	}
}

func TestMapDataToBase_MissingFixtureFails(t *testing.T) {
	if _, err := offlineAdapter(t.TempDir()).MapDataToBase(context.Background()); err == nil {
		t.Fatal("expected an error with no saved payloads")
	}
}
