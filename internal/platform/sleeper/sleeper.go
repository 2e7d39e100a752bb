// Package sleeper fetches and normalizes Sleeper fantasy football leagues.
//
// Sleeper has no official score field per roster slot — weekly player points
// are recomputed here from the league's scoring settings applied to each
// player's stat line, matching what the Sleeper app displays.
package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sort"
	"strconv"

	"github.com/gridironlab/ffreport/internal/cache"
	"github.com/gridironlab/ffreport/internal/model"
	httpclient "github.com/gridironlab/ffreport/internal/platform/client"
)

const (
	baseURL     = "https://api.sleeper.app/v1"
	statBaseURL = "https://api.sleeper.app"
)

// benchPositions is Sleeper's bench slot set in canonical vocabulary.
var benchPositions = []string{"BN", "IR"}

// flexLabels translates Sleeper flex slot codes into canonical labels.
var flexLabels = map[string]string{
	"FLEX":       "FLEX",
	"WRRB_FLEX":  "FLEX_RB_WR",
	"REC_FLEX":   "FLEX_TE_WR",
	"SUPER_FLEX": "SUPERFLEX",
	"IDP_FLEX":   "FLEX_IDP",
}

// Options configures a Sleeper league adapter.
type Options struct {
	WeekForReport     string
	LeagueID          string
	Season            int
	StartWeek         int
	Store             *cache.Store
	ValidateWeek      func(requested string, currentWeek int) (int, error)
	CurrentNFLWeek    func(ctx context.Context) int
	RequestsPerMinute int
	Logger            *slog.Logger
}

// LeagueData owns one Sleeper league fetch.
type LeagueData struct {
	opts   Options
	client *httpclient.Client
	stats  *httpclient.Client
	logger *slog.Logger
}

// New creates a Sleeper adapter.
func New(opts Options) *LeagueData {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LeagueData{
		opts:   opts,
		client: httpclient.New(baseURL, opts.RequestsPerMinute, nil, logger),
		stats:  httpclient.New(statBaseURL, opts.RequestsPerMinute, nil, logger),
		logger: logger,
	}
}

// --------------------------------------------------------------------------
// Raw payload shapes
// --------------------------------------------------------------------------

type leagueInfoRaw struct {
	Name            string             `json:"name"`
	Season          string             `json:"season"`
	RosterPositions []string           `json:"roster_positions"`
	ScoringSettings map[string]float64 `json:"scoring_settings"`
	Settings        struct {
		NumTeams         int `json:"num_teams"`
		PlayoffTeams     int `json:"playoff_teams"`
		PlayoffWeekStart int `json:"playoff_week_start"`
	} `json:"settings"`
}

type userRaw struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Metadata    struct {
		TeamName string `json:"team_name"`
	} `json:"metadata"`
}

type rosterRaw struct {
	RosterID int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	Players  []string `json:"players"`
	Starters []string `json:"starters"`
	Settings struct {
		Wins        int `json:"wins"`
		Losses      int `json:"losses"`
		Ties        int `json:"ties"`
		Fpts        int `json:"fpts"`
		FptsDecimal int `json:"fpts_decimal"`
	} `json:"settings"`
}

type matchupRaw struct {
	RosterID     int      `json:"roster_id"`
	MatchupID    int      `json:"matchup_id"`
	Points       float64  `json:"points"`
	CustomPoints *float64 `json:"custom_points"`
}

type playerRaw struct {
	FirstName        string   `json:"first_name"`
	LastName         string   `json:"last_name"`
	FullName         string   `json:"full_name"`
	Team             string   `json:"team"`
	Position         string   `json:"position"`
	FantasyPositions []string `json:"fantasy_positions"`
	Status           string   `json:"status"`
}

type playerStatsRaw struct {
	PlayerID string             `json:"player_id"`
	Stats    map[string]float64 `json:"stats"`
}

// --------------------------------------------------------------------------
// Fetching
// --------------------------------------------------------------------------

func (d *LeagueData) fetchJSON(ctx context.Context, c *httpclient.Client, path, dir, filename string, out interface{}) error {
	data, err := d.opts.Store.Fetch(ctx, dir, filename, func(ctx context.Context) ([]byte, error) {
		return c.Get(ctx, path, nil)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", filename, err)
	}
	return nil
}

func (d *LeagueData) fetchWeekStats(ctx context.Context, week int) (map[string]map[string]float64, error) {
	path := fmt.Sprintf("/stats/nfl/%d/%d", d.opts.Season, week)
	data, err := d.opts.Store.Fetch(ctx,
		d.opts.Store.WeekDir(d.opts.Season, d.opts.LeagueID, week),
		fmt.Sprintf("week_%d-player_stats_by_week.json", week),
		func(ctx context.Context) ([]byte, error) {
			return d.stats.Get(ctx, path, url.Values{"season_type": {"regular"}})
		})
	if err != nil {
		return nil, err
	}

	var raw []playerStatsRaw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode week %d player stats: %w", week, err)
	}

	stats := make(map[string]map[string]float64, len(raw))
	for _, ps := range raw {
		stats[ps.PlayerID] = ps.Stats
	}
	return stats, nil
}

// --------------------------------------------------------------------------
// Mapping
// --------------------------------------------------------------------------

// MapDataToBase fetches or replays all Sleeper payloads and translates them
// into the canonical league model.
func (d *LeagueData) MapDataToBase(ctx context.Context) (*model.League, error) {
	d.logger.Debug("Initializing Sleeper league", "league_id", d.opts.LeagueID)

	currentWeek := d.opts.CurrentNFLWeek(ctx)
	week, err := d.opts.ValidateWeek(d.opts.WeekForReport, currentWeek)
	if err != nil {
		return nil, err
	}

	leagueDir := d.opts.Store.LeagueDir(d.opts.Season, d.opts.LeagueID)

	var info leagueInfoRaw
	if err := d.fetchJSON(ctx, d.client, "/league/"+d.opts.LeagueID, leagueDir,
		d.opts.LeagueID+"-league_info.json", &info); err != nil {
		return nil, err
	}

	var users []userRaw
	if err := d.fetchJSON(ctx, d.client, "/league/"+d.opts.LeagueID+"/users", leagueDir,
		d.opts.LeagueID+"-league_managers.json", &users); err != nil {
		return nil, err
	}
	usersByID := make(map[string]userRaw, len(users))
	for _, u := range users {
		usersByID[u.UserID] = u
	}

	var rosters []rosterRaw
	if err := d.fetchJSON(ctx, d.client, "/league/"+d.opts.LeagueID+"/rosters", leagueDir,
		d.opts.LeagueID+"-league_standings.json", &rosters); err != nil {
		return nil, err
	}

	var players map[string]playerRaw
	if err := d.fetchJSON(ctx, d.stats, "/v1/players/nfl", leagueDir,
		d.opts.LeagueID+"-player_data.json", &players); err != nil {
		return nil, err
	}

	league := &model.League{
		Platform:       "sleeper",
		LeagueID:       d.opts.LeagueID,
		Name:           info.Name,
		Season:         d.opts.Season,
		Week:           week,
		StartWeek:      d.opts.StartWeek,
		NumTeams:       info.Settings.NumTeams,
		BenchPositions: append([]string(nil), benchPositions...),
		DataDir:        d.opts.Store.DataDir,
		SaveData:       d.opts.Store.SaveData,
		Offline:        d.opts.Store.Offline,
		MatchupsByWeek: make(map[int][]model.Matchup),
	}

	league.RosterPositionCounts = make(map[string]int)
	activeSlots := make([]string, 0, len(info.RosterPositions))
	for _, pos := range info.RosterPositions {
		name := pos
		if label, ok := flexLabels[pos]; ok {
			name = label
		}
		league.RosterPositionCounts[name]++
		if !league.IsBenchPosition(name) {
			league.ActivePositions = append(league.ActivePositions, name)
			activeSlots = append(activeSlots, name)
		}
	}

	// Matchups for every week through the report week.
	matchupsByWeek := make(map[int][]matchupRaw)
	for w := d.opts.StartWeek; w <= week; w++ {
		var entries []matchupRaw
		if err := d.fetchJSON(ctx, d.client, fmt.Sprintf("/league/%s/matchups/%d", d.opts.LeagueID, w),
			d.opts.Store.WeekDir(d.opts.Season, d.opts.LeagueID, w),
			fmt.Sprintf("week_%d-matchups_by_week.json", w), &entries); err != nil {
			return nil, err
		}
		matchupsByWeek[w] = entries
		league.MatchupsByWeek[w] = pairMatchups(entries, w)
	}

	// Weekly stat lines for the report week drive the roster point totals.
	weekStats, err := d.fetchWeekStats(ctx, week)
	if err != nil {
		return nil, err
	}

	reportPoints := make(map[int]float64)
	for _, entry := range matchupsByWeek[week] {
		pts := entry.Points
		if entry.CustomPoints != nil {
			pts = round2(*entry.CustomPoints)
			d.logger.Warn("Team points manually overridden by commissioner",
				"roster_id", entry.RosterID, "week", week,
				"points", entry.Points, "custom_points", pts)
		}
		reportPoints[entry.RosterID] = pts
	}

	for _, roster := range rosters {
		team := &model.Team{
			ID:   strconv.Itoa(roster.RosterID),
			Week: week,
			Name: teamName(roster, usersByID),
			Record: model.Record{
				Wins:   roster.Settings.Wins,
				Losses: roster.Settings.Losses,
				Ties:   roster.Settings.Ties,
			},
			Points: reportPoints[roster.RosterID],
		}

		starterSlot := make(map[string]string, len(roster.Starters))
		for i, playerID := range roster.Starters {
			if i < len(activeSlots) {
				starterSlot[playerID] = activeSlots[i]
			}
		}

		for _, playerID := range roster.Players {
			p, err := d.buildPlayer(playerID, players, weekStats, info.ScoringSettings, starterSlot)
			if err != nil {
				return nil, err
			}
			team.Roster = append(team.Roster, p)
		}

		league.Teams = append(league.Teams, team)
	}

	league.SortTeamsByID()
	return league, nil
}

func (d *LeagueData) buildPlayer(playerID string, players map[string]playerRaw,
	weekStats map[string]map[string]float64, scoring map[string]float64,
	starterSlot map[string]string) (*model.Player, error) {

	// The Raiders moved from Oakland (OAK) to Las Vegas (LV) between the
	// 2019 and 2020 seasons; old rosters may still carry the OAK defense.
	lookupID := playerID
	if lookupID == "OAK" {
		lookupID = "LV"
	}

	info, ok := players[lookupID]
	if !ok {
		return nil, fmt.Errorf("player %s missing from Sleeper player dataset: check data", playerID)
	}

	p := &model.Player{
		ID:              playerID,
		FirstName:       info.FirstName,
		LastName:        info.LastName,
		FullName:        info.FullName,
		NFLTeamAbbr:     info.Team,
		PrimaryPosition: info.Position,
		Status:          info.Status,
		Points:          scorePlayer(weekStats[lookupID], scoring),
	}

	// Team defenses are keyed by team abbreviation and have no full name.
	if info.Position == "DEF" {
		p.FullName = info.FirstName + " " + info.LastName
		p.NFLTeamAbbr = lookupID
	}

	for _, pos := range info.FantasyPositions {
		if label, ok := flexLabels[pos]; ok {
			pos = label
		}
		p.EligiblePositions = append(p.EligiblePositions, pos)
	}

	if slot, ok := starterSlot[playerID]; ok {
		p.SelectedPosition = slot
	} else {
		p.SelectedPosition = "BN"
	}

	return p, nil
}

// scorePlayer applies the league scoring settings to a raw stat line.
func scorePlayer(stats map[string]float64, scoring map[string]float64) float64 {
	var points float64
	for stat, value := range stats {
		if weight, ok := scoring[stat]; ok {
			points += value * weight
		}
	}
	return round2(points)
}

// pairMatchups groups matchup entries by matchup id into head-to-head pairs.
// Sleeper has no home/away concept, so the lower roster id is "home".
func pairMatchups(entries []matchupRaw, week int) []model.Matchup {
	byID := make(map[int][]matchupRaw)
	ids := make([]int, 0, len(entries)/2)
	for _, e := range entries {
		if _, seen := byID[e.MatchupID]; !seen {
			ids = append(ids, e.MatchupID)
		}
		byID[e.MatchupID] = append(byID[e.MatchupID], e)
	}
	sort.Ints(ids)

	var matchups []model.Matchup
	for _, id := range ids {
		pair := byID[id]
		if len(pair) != 2 {
			continue // bye weeks and median entries have no opponent
		}
		sort.Slice(pair, func(i, j int) bool { return pair[i].RosterID < pair[j].RosterID })
		matchups = append(matchups, model.Matchup{
			Week:     week,
			HomeID:   strconv.Itoa(pair[0].RosterID),
			AwayID:   strconv.Itoa(pair[1].RosterID),
			HomePts:  pair[0].Points,
			AwayPts:  pair[1].Points,
			Complete: true,
			Tied:     pair[0].Points == pair[1].Points,
		})
	}
	return matchups
}

func teamName(roster rosterRaw, users map[string]userRaw) string {
	owner, ok := users[roster.OwnerID]
	if !ok {
		return fmt.Sprintf("Team #%d", roster.RosterID)
	}
	if owner.Metadata.TeamName != "" {
		return owner.Metadata.TeamName
	}
	return owner.DisplayName
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
