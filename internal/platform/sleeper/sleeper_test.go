package sleeper

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/gridironlab/ffreport/internal/cache"
)

// writeFixtures lays out a complete saved-payload tree for a two-team league
// at report week 2, as a prior live run with save-data enabled would have.
func writeFixtures(t *testing.T, dir string, customPoints bool) {
	t.Helper()

	leagueDir := filepath.Join(dir, "2025", "77")
	week1Dir := filepath.Join(leagueDir, "week_1")
	week2Dir := filepath.Join(leagueDir, "week_2")
	for _, d := range []string{week1Dir, week2Dir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	files := map[string]string{
		filepath.Join(leagueDir, "77-league_info.json"): `{
			"name": "Fixture League",
			"season": "2025",
			"roster_positions": ["QB", "RB", "FLEX", "BN"],
			"scoring_settings": {"pass_td": 4.0, "rush_yd": 0.1},
			"settings": {"num_teams": 2, "playoff_teams": 2, "playoff_week_start": 15}
		}`,
		filepath.Join(leagueDir, "77-league_managers.json"): `[
			{"user_id": "u1", "display_name": "alpha", "metadata": {"team_name": "Alpha Squad"}},
			{"user_id": "u2", "display_name": "bravo", "metadata": {}}
		]`,
		filepath.Join(leagueDir, "77-league_standings.json"): `[
			{"roster_id": 1, "owner_id": "u1", "players": ["p1", "p2", "p3", "DAL"],
			 "starters": ["p1", "p2"], "settings": {"wins": 1, "losses": 0, "ties": 0}},
			{"roster_id": 2, "owner_id": "u2", "players": ["p4", "p5", "OAK"],
			 "starters": ["p4", "p5"], "settings": {"wins": 0, "losses": 1, "ties": 0}}
		]`,
		filepath.Join(leagueDir, "77-player_data.json"): `{
			"p1": {"first_name": "Sam", "last_name": "Slinger", "full_name": "Sam Slinger",
			       "team": "KC", "position": "QB", "fantasy_positions": ["QB"], "status": "Active"},
			"p2": {"first_name": "Rhett", "last_name": "Rusher", "full_name": "Rhett Rusher",
			       "team": "DAL", "position": "RB", "fantasy_positions": ["RB"], "status": "Active"},
			"p3": {"first_name": "Ben", "last_name": "Bencher", "full_name": "Ben Bencher",
			       "team": "GB", "position": "RB", "fantasy_positions": ["RB"], "status": "Active"},
			"p4": {"first_name": "Quinn", "last_name": "Second", "full_name": "Quinn Second",
			       "team": "BUF", "position": "QB", "fantasy_positions": ["QB"], "status": "Active"},
			"p5": {"first_name": "Randy", "last_name": "Runner", "full_name": "Randy Runner",
			       "team": "MIA", "position": "RB", "fantasy_positions": ["RB"], "status": "Active"},
			"DAL": {"first_name": "Dallas", "last_name": "Cowboys",
			        "team": "DAL", "position": "DEF", "fantasy_positions": ["DEF"]},
			"LV": {"first_name": "Las Vegas", "last_name": "Raiders",
			       "team": "LV", "position": "DEF", "fantasy_positions": ["DEF"]}
		}`,
		filepath.Join(week1Dir, "week_1-matchups_by_week.json"): `[
			{"roster_id": 1, "matchup_id": 1, "points": 20.0},
			{"roster_id": 2, "matchup_id": 1, "points": 18.0}
		]`,
		filepath.Join(week2Dir, "week_2-matchups_by_week.json"): `[
			{"roster_id": 1, "matchup_id": 1, "points": 16.5},
			{"roster_id": 2, "matchup_id": 1, "points": 12.0}
		]`,
		filepath.Join(week2Dir, "week_2-player_stats_by_week.json"): `[
			{"player_id": "p1", "stats": {"pass_td": 2, "pass_yd": 240}},
			{"player_id": "p2", "stats": {"rush_yd": 85}},
			{"player_id": "p3", "stats": {"rush_yd": 40}},
			{"player_id": "p4", "stats": {"pass_td": 1}},
			{"player_id": "p5", "stats": {"rush_yd": 80}}
		]`,
	}
	if customPoints {
		files[filepath.Join(week2Dir, "week_2-matchups_by_week.json")] = `[
			{"roster_id": 1, "matchup_id": 1, "points": 16.5},
			{"roster_id": 2, "matchup_id": 1, "points": 12.0, "custom_points": 99.9}
		]`
	}

	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func offlineAdapter(t *testing.T, dir string) *LeagueData {
	t.Helper()
	return New(Options{
		WeekForReport: "2",
		LeagueID:      "77",
		Season:        2025,
		StartWeek:     1,
		Store:         cache.New(dir, false, true, nil),
		ValidateWeek: func(requested string, currentWeek int) (int, error) {
			return 2, nil
		},
		CurrentNFLWeek: func(context.Context) int { return 3 },
	})
}

func TestMapDataToBase_Offline(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, false)

	league, err := offlineAdapter(t, dir).MapDataToBase(context.Background())
	if err != nil {
		t.Fatalf("MapDataToBase: %v", err)
	}

	if league.Name != "Fixture League" || league.Week != 2 || league.NumTeams != 2 {
		t.Errorf("league header = (%q, %d, %d), want (Fixture League, 2, 2)",
			league.Name, league.Week, league.NumTeams)
	}
	if got := league.ActivePositions; !reflect.DeepEqual(got, []string{"QB", "RB", "FLEX"}) {
		t.Errorf("ActivePositions = %v", got)
	}
	if league.RosterPositionCounts["BN"] != 1 {
		t.Errorf("RosterPositionCounts = %v, want one BN slot", league.RosterPositionCounts)
	}

	if len(league.Teams) != 2 {
		t.Fatalf("teams = %d, want 2", len(league.Teams))
	}
	alpha, bravo := league.Teams[0], league.Teams[1]

	if alpha.Name != "Alpha Squad" {
		t.Errorf("team 1 name = %q, want the metadata team name", alpha.Name)
	}
	if bravo.Name != "bravo" {
		t.Errorf("team 2 name = %q, want the display name fallback", bravo.Name)
	}
	if alpha.Points != 16.5 || bravo.Points != 12.0 {
		t.Errorf("points = (%v, %v), want (16.5, 12.0)", alpha.Points, bravo.Points)
	}

	// Player points are recomputed from scoring settings: only configured
	// stats count (pass_yd has no weight here).
	byID := map[string]float64{}
	selected := map[string]string{}
	for _, p := range alpha.Roster {
		byID[p.ID] = p.Points
		selected[p.ID] = p.SelectedPosition
	}
	if byID["p1"] != 8.0 {
		t.Errorf("p1 points = %v, want 8.0 (2 pass TDs)", byID["p1"])
	}
	if byID["p2"] != 8.5 {
		t.Errorf("p2 points = %v, want 8.5 (85 rush yards)", byID["p2"])
	}
	if selected["p1"] != "QB" || selected["p2"] != "RB" {
		t.Errorf("starter slots = %v, want positional assignment", selected)
	}
	if selected["p3"] != "BN" || selected["DAL"] != "BN" {
		t.Errorf("non-starters = %v, want BN", selected)
	}

	if len(league.MatchupsByWeek) != 2 {
		t.Errorf("MatchupsByWeek has %d weeks, want 2", len(league.MatchupsByWeek))
	}
	m := league.MatchupsByWeek[2][0]
	if m.HomeID != "1" || m.AwayID != "2" || m.HomePts != 16.5 {
		t.Errorf("week 2 matchup = %+v", m)
	}
}

func TestMapDataToBase_DefenseNaming(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, false)

	league, err := offlineAdapter(t, dir).MapDataToBase(context.Background())
	if err != nil {
		t.Fatalf("MapDataToBase: %v", err)
	}

	var def, relocated bool
	for _, team := range league.Teams {
		for _, p := range team.Roster {
			if p.ID == "DAL" {
				def = true
				if p.FullName != "Dallas Cowboys" || p.NFLTeamAbbr != "DAL" {
					t.Errorf("DAL defense = (%q, %q)", p.FullName, p.NFLTeamAbbr)
				}
			}
			if p.ID == "OAK" {
				relocated = true
				// Rosters predating the Raiders' move still say OAK; the
				// player dataset only knows LV.
				if p.NFLTeamAbbr != "LV" {
					t.Errorf("OAK defense team = %q, want LV", p.NFLTeamAbbr)
				}
			}
		}
	}
	if !def || !relocated {
		t.Errorf("defense fixtures missing from rosters (DAL=%v, OAK=%v)", def, relocated)
	}
}

func TestMapDataToBase_CommissionerOverride(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, true)

	league, err := offlineAdapter(t, dir).MapDataToBase(context.Background())
	if err != nil {
		t.Fatalf("MapDataToBase: %v", err)
	}
	if got := league.Teams[1].Points; got != 99.9 {
		t.Errorf("overridden points = %v, want 99.9", got)
	}
}

func TestMapDataToBase_ReplayIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir, false)

	first, err := offlineAdapter(t, dir).MapDataToBase(context.Background())
	if err != nil {
		t.Fatalf("first MapDataToBase: %v", err)
	}
	second, err := offlineAdapter(t, dir).MapDataToBase(context.Background())
	if err != nil {
		t.Fatalf("second MapDataToBase: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two offline replays produced different canonical models")
	}
}

func TestMapDataToBase_MissingFixtureFails(t *testing.T) {
	league, err := offlineAdapter(t, t.TempDir()).MapDataToBase(context.Background())
	if err == nil {
		t.Fatalf("MapDataToBase = %+v, want an error with no saved payloads", league)
	}
}
