// Package model defines the canonical league types that all platform
// adapters normalize into. These structs are the contract between the
// adapters and the enrichment engine — adapters output these, the engine
// reads and annotates them.
//
// Adding a new platform means implementing an adapter that returns these
// types. The enrichment engine never changes.
package model

import (
	"encoding/json"
	"sort"
)

// League is one fantasy league for one season, snapshotted at a report week.
type League struct {
	Platform  string `json:"platform"`
	LeagueID  string `json:"league_id"`
	Name      string `json:"name,omitempty"`
	Season    int    `json:"season"`
	Week      int    `json:"week"`       // report week
	StartWeek int    `json:"start_week"` // first week of the league season
	NumTeams  int    `json:"num_teams"`

	// Roster rules. BenchPositions must be populated by the adapter before
	// any player is scored — active/bench partitioning depends on it.
	BenchPositions       []string       `json:"bench_positions"`
	ActivePositions      []string       `json:"active_positions"`
	RosterPositionCounts map[string]int `json:"roster_position_counts,omitempty"`

	// HomeFieldAdvantage is a league-optional per-matchup scoring bonus for
	// the home team. Only ESPN exposes one; everywhere else it is 0.
	HomeFieldAdvantage float64 `json:"home_field_advantage"`

	Teams []*Team `json:"teams"`

	// MatchupsByWeek holds every matchup from the start week through the
	// report week. The luck/record builder consumes these.
	MatchupsByWeek map[int][]Matchup `json:"matchups_by_week,omitempty"`

	DataDir  string `json:"data_dir,omitempty"`
	SaveData bool   `json:"save_data,omitempty"`
	Offline  bool   `json:"offline,omitempty"`
}

// IsBenchPosition reports whether pos is a bench lineup slot in this league.
func (l *League) IsBenchPosition(pos string) bool {
	for _, bn := range l.BenchPositions {
		if pos == bn {
			return true
		}
	}
	return false
}

// TeamByID returns the team with the given id, or nil.
func (l *League) TeamByID(id string) *Team {
	for _, t := range l.Teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// SortTeamsByID orders l.Teams deterministically for stable output.
func (l *League) SortTeamsByID() {
	sort.Slice(l.Teams, func(i, j int) bool { return l.Teams[i].ID < l.Teams[j].ID })
}

// Matchup is one head-to-head pairing for one week.
type Matchup struct {
	Week     int     `json:"week"`
	HomeID   string  `json:"home_id"`
	AwayID   string  `json:"away_id"`
	HomePts  float64 `json:"home_pts"`
	AwayPts  float64 `json:"away_pts"`
	Complete bool    `json:"complete"`
	Tied     bool    `json:"tied"`
}

// Record is a win/loss/tie tally.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

// Percentage returns the winning percentage, counting ties as half wins.
func (r Record) Percentage() float64 {
	games := r.Wins + r.Losses + r.Ties
	if games == 0 {
		return 0
	}
	return (float64(r.Wins) + 0.5*float64(r.Ties)) / float64(games)
}

// Team is one franchise within a league for the report week.
type Team struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Week    int       `json:"week"`
	Roster  []*Player `json:"roster"` // platform-reported order, preserved for display
	Points  float64   `json:"points"` // official platform score
	Record  Record    `json:"record"` // season record from platform standings

	// HomeFieldAdvantage is the portion of Points granted as a home bonus
	// this week (0 for away teams and leagues without one).
	HomeFieldAdvantage float64 `json:"home_field_advantage"`

	// Derived by the enrichment engine.
	BenchPoints         float64  `json:"bench_points"`
	CoachingEfficiency  float64  `json:"coaching_efficiency"`
	EfficiencyDQ        bool     `json:"efficiency_dq"`
	OptimalPoints       float64  `json:"optimal_points"`
	Luck                float64  `json:"luck"`
	WeeklyOverallRecord Record   `json:"weekly_overall_record"`
	PositionsFilled     []string `json:"positions_filled_active,omitempty"`

	// Optional metric aggregates.
	BadBoyPoints      int     `json:"bad_boy_points"`
	WorstOffense      string  `json:"worst_offense,omitempty"`
	WorstOffenseScore int     `json:"worst_offense_score"`
	NumOffenders      int     `json:"num_offenders"`
	TotalWeight       float64 `json:"total_weight"`
	TABBU             float64 `json:"tabbu"`
	TotalCovidRisk    int     `json:"total_covid_risk"`
}

// ActiveRoster returns the players whose selected position is not a bench slot.
func (t *Team) ActiveRoster(isBench func(string) bool) []*Player {
	var active []*Player
	for _, p := range t.Roster {
		if !isBench(p.SelectedPosition) {
			active = append(active, p)
		}
	}
	return active
}

// BenchRoster returns the players whose selected position is a bench slot.
func (t *Team) BenchRoster(isBench func(string) bool) []*Player {
	var bench []*Player
	for _, p := range t.Roster {
		if isBench(p.SelectedPosition) {
			bench = append(bench, p)
		}
	}
	return bench
}

// Player is one roster entry for the report week.
type Player struct {
	ID                string   `json:"id,omitempty"`
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	FullName          string   `json:"full_name"`
	NFLTeamAbbr       string   `json:"nfl_team_abbr"`
	PrimaryPosition   string   `json:"primary_position"`
	SelectedPosition  string   `json:"selected_position"`
	EligiblePositions []string `json:"eligible_positions,omitempty"`
	Status            string   `json:"status,omitempty"` // injury status, e.g. "O" / "Out"
	Points            float64  `json:"points"`
	ProjectedPoints   float64  `json:"projected_points"`

	// Enrichment fields. Neutral defaults until the engine scores the
	// player; bench players keep the defaults regardless of lookups.
	BadBoyCrime        string  `json:"bad_boy_crime,omitempty"`
	BadBoyPoints       int     `json:"bad_boy_points"`
	BadBoyNumOffenders int     `json:"bad_boy_num_offenders"`
	Weight             float64 `json:"weight"`
	TABBU              float64 `json:"tabbu"`
	CovidRisk          int     `json:"covid_risk"`
}

// ResetEnrichment restores the neutral defaults for all enrichment fields.
func (p *Player) ResetEnrichment() {
	p.BadBoyCrime = ""
	p.BadBoyPoints = 0
	p.BadBoyNumOffenders = 0
	p.Weight = 0
	p.TABBU = 0
	p.CovidRisk = 0
}

// Clone returns a deep copy of the league via JSON round-trip. Snapshot
// round-trip fidelity is a tested property, so this is safe.
func (l *League) Clone() (*League, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	var out League
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
