// Package espn fetches and normalizes ESPN fantasy football leagues.
//
// ESPN's v3 API keys everything by numeric ids — lineup slots, positions,
// and pro teams are all integer-coded and translated here into the canonical
// vocabulary. ESPN is also the only supported platform with a home-field
// advantage scoring bonus.
package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/gridironlab/ffreport/internal/cache"
	"github.com/gridironlab/ffreport/internal/model"
	httpclient "github.com/gridironlab/ffreport/internal/platform/client"
)

const baseURL = "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"

// lineupSlots maps ESPN lineup slot ids to canonical position codes. ESPN
// calls its bench slot "BE"; the canonical vocabulary uses "BN".
var lineupSlots = map[int]string{
	0:  "QB",
	2:  "RB",
	3:  "FLEX_RB_WR", // RB/WR
	4:  "WR",
	5:  "FLEX_TE_WR", // WR/TE
	6:  "TE",
	7:  "FLEX_IOP", // OP
	16: "D/ST",
	17: "K",
	20: "BN", // BE
	21: "IR",
	23: "FLEX", // RB/WR/TE
}

// positions maps ESPN default position ids to position codes.
var positions = map[int]string{
	1: "QB", 2: "RB", 3: "WR", 4: "TE", 5: "K", 16: "D/ST",
}

// proTeams maps ESPN pro team ids to NFL team abbreviations.
var proTeams = map[int]string{
	1: "ATL", 2: "BUF", 3: "CHI", 4: "CIN", 5: "CLE", 6: "DAL", 7: "DEN", 8: "DET",
	9: "GB", 10: "TEN", 11: "IND", 12: "KC", 13: "LV", 14: "LAR", 15: "MIA", 16: "MIN",
	17: "NE", 18: "NO", 19: "NYG", 20: "NYJ", 21: "PHI", 22: "ARI", 23: "PIT", 24: "LAC",
	25: "SF", 26: "SEA", 27: "TB", 28: "WSH", 29: "CAR", 30: "JAX", 33: "BAL", 34: "HOU",
}

// benchPositions is ESPN's bench slot set in canonical vocabulary.
var benchPositions = []string{"BN", "IR"}

// Options configures an ESPN league adapter.
type Options struct {
	WeekForReport     string
	LeagueID          string
	Season            int
	StartWeek         int
	Store             *cache.Store
	ValidateWeek      func(requested string, currentWeek int) (int, error)
	RequestsPerMinute int
	Logger            *slog.Logger
}

// LeagueData owns one ESPN league fetch.
type LeagueData struct {
	opts   Options
	client *httpclient.Client
	logger *slog.Logger
}

// New creates an ESPN adapter.
func New(opts Options) *LeagueData {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LeagueData{
		opts:   opts,
		client: httpclient.New(baseURL, opts.RequestsPerMinute, nil, logger),
		logger: logger,
	}
}

// --------------------------------------------------------------------------
// Raw payload shapes
// --------------------------------------------------------------------------

type leagueRaw struct {
	Status struct {
		LatestScoringPeriod int `json:"latestScoringPeriod"`
	} `json:"status"`
	Settings struct {
		Name           string `json:"name"`
		RosterSettings struct {
			LineupSlotCounts map[string]int `json:"lineupSlotCounts"`
		} `json:"rosterSettings"`
		ScoringSettings struct {
			HomeTeamBonus float64 `json:"homeTeamBonus"`
		} `json:"scoringSettings"`
	} `json:"settings"`
	Teams []struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Location string `json:"location"`
		Nickname string `json:"nickname"`
		Record   struct {
			Overall struct {
				Wins   int `json:"wins"`
				Losses int `json:"losses"`
				Ties   int `json:"ties"`
			} `json:"overall"`
		} `json:"record"`
	} `json:"teams"`
}

type scoreboardRaw struct {
	Schedule []matchupSideRaw `json:"schedule"`
}

type matchupSideRaw struct {
	MatchupPeriodID int     `json:"matchupPeriodId"`
	Winner          string  `json:"winner"`
	Home            sideRaw `json:"home"`
	Away            sideRaw `json:"away"`
}

type sideRaw struct {
	TeamID                        int     `json:"teamId"`
	TotalPoints                   float64 `json:"totalPoints"`
	RosterForCurrentScoringPeriod struct {
		Entries []entryRaw `json:"entries"`
	} `json:"rosterForCurrentScoringPeriod"`
}

type entryRaw struct {
	PlayerID        int `json:"playerId"`
	LineupSlotID    int `json:"lineupSlotId"`
	PlayerPoolEntry struct {
		AppliedStatTotal float64 `json:"appliedStatTotal"`
		Player           struct {
			FirstName         string `json:"firstName"`
			LastName          string `json:"lastName"`
			FullName          string `json:"fullName"`
			DefaultPositionID int    `json:"defaultPositionId"`
			ProTeamID         int    `json:"proTeamId"`
			EligibleSlots     []int  `json:"eligibleSlots"`
			InjuryStatus      string `json:"injuryStatus"`
		} `json:"player"`
	} `json:"playerPoolEntry"`
}

// --------------------------------------------------------------------------
// Mapping
// --------------------------------------------------------------------------

// MapDataToBase fetches or replays all ESPN payloads and translates them
// into the canonical league model.
func (d *LeagueData) MapDataToBase(ctx context.Context) (*model.League, error) {
	d.logger.Debug("Initializing ESPN league", "league_id", d.opts.LeagueID)

	leaguePath := fmt.Sprintf("/seasons/%d/segments/0/leagues/%s", d.opts.Season, d.opts.LeagueID)
	leagueDir := d.opts.Store.LeagueDir(d.opts.Season, d.opts.LeagueID)

	var info leagueRaw
	if err := d.fetchJSON(ctx, leaguePath, url.Values{"view": {"mSettings", "mTeam"}},
		leagueDir, d.opts.LeagueID+"-league_info.json", &info); err != nil {
		return nil, err
	}

	currentWeek := info.Status.LatestScoringPeriod
	week, err := d.opts.ValidateWeek(d.opts.WeekForReport, currentWeek)
	if err != nil {
		return nil, err
	}

	hfa := info.Settings.ScoringSettings.HomeTeamBonus

	league := &model.League{
		Platform:           "espn",
		LeagueID:           d.opts.LeagueID,
		Name:               info.Settings.Name,
		Season:             d.opts.Season,
		Week:               week,
		StartWeek:          d.opts.StartWeek,
		NumTeams:           len(info.Teams),
		BenchPositions:     append([]string(nil), benchPositions...),
		HomeFieldAdvantage: hfa,
		DataDir:            d.opts.Store.DataDir,
		SaveData:           d.opts.Store.SaveData,
		Offline:            d.opts.Store.Offline,
		MatchupsByWeek:     make(map[int][]model.Matchup),
	}

	league.RosterPositionCounts = make(map[string]int)
	for slotID, count := range info.Settings.RosterSettings.LineupSlotCounts {
		if count <= 0 {
			continue
		}
		id, err := strconv.Atoi(slotID)
		if err != nil {
			continue
		}
		name, ok := lineupSlots[id]
		if !ok {
			continue
		}
		league.RosterPositionCounts[name] = count
		if !league.IsBenchPosition(name) {
			for i := 0; i < count; i++ {
				league.ActivePositions = append(league.ActivePositions, name)
			}
		}
	}

	// Teams from the league payload; points and rosters come from the
	// report-week box scores below.
	teamsByID := make(map[int]*model.Team, len(info.Teams))
	for _, t := range info.Teams {
		name := t.Name
		if name == "" {
			name = strings.TrimSpace(t.Location + " " + t.Nickname)
		}
		team := &model.Team{
			ID:   strconv.Itoa(t.ID),
			Name: name,
			Week: week,
			Record: model.Record{
				Wins:   t.Record.Overall.Wins,
				Losses: t.Record.Overall.Losses,
				Ties:   t.Record.Overall.Ties,
			},
		}
		teamsByID[t.ID] = team
		league.Teams = append(league.Teams, team)
	}

	for w := d.opts.StartWeek; w <= week; w++ {
		var board scoreboardRaw
		if err := d.fetchJSON(ctx, leaguePath,
			url.Values{"view": {"mMatchupScore", "mScoreboard"}, "scoringPeriodId": {strconv.Itoa(w)}},
			d.opts.Store.WeekDir(d.opts.Season, d.opts.LeagueID, w),
			fmt.Sprintf("week_%d-box_info.json", w), &board); err != nil {
			return nil, err
		}

		for _, m := range board.Schedule {
			if m.MatchupPeriodID != w {
				continue
			}
			homePts := m.Home.TotalPoints + hfa
			awayPts := m.Away.TotalPoints
			league.MatchupsByWeek[w] = append(league.MatchupsByWeek[w], model.Matchup{
				Week:     w,
				HomeID:   strconv.Itoa(m.Home.TeamID),
				AwayID:   strconv.Itoa(m.Away.TeamID),
				HomePts:  homePts,
				AwayPts:  awayPts,
				Complete: w < currentWeek,
				Tied:     homePts == awayPts,
			})

			if w != week {
				continue
			}

			// Report week: attach points and rosters.
			if home := teamsByID[m.Home.TeamID]; home != nil {
				home.HomeFieldAdvantage = hfa
				home.Points = homePts
				home.Roster = mapRoster(m.Home.RosterForCurrentScoringPeriod.Entries)
			}
			if away := teamsByID[m.Away.TeamID]; away != nil {
				away.Points = awayPts
				away.Roster = mapRoster(m.Away.RosterForCurrentScoringPeriod.Entries)
			}
		}
	}

	league.SortTeamsByID()
	return league, nil
}

func (d *LeagueData) fetchJSON(ctx context.Context, path string, params url.Values, dir, filename string, out interface{}) error {
	data, err := d.opts.Store.Fetch(ctx, dir, filename, func(ctx context.Context) ([]byte, error) {
		return d.client.Get(ctx, path, params)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", filename, err)
	}
	return nil
}

// mapRoster translates one team's box-score roster entries.
func mapRoster(entries []entryRaw) []*model.Player {
	roster := make([]*model.Player, 0, len(entries))
	for _, e := range entries {
		raw := e.PlayerPoolEntry.Player

		selected, ok := lineupSlots[e.LineupSlotID]
		if !ok {
			selected = "BN"
		}

		p := &model.Player{
			ID:               strconv.Itoa(e.PlayerID),
			FirstName:        raw.FirstName,
			LastName:         raw.LastName,
			FullName:         raw.FullName,
			NFLTeamAbbr:      proTeamAbbr(raw.ProTeamID),
			PrimaryPosition:  positionCode(raw.DefaultPositionID),
			SelectedPosition: selected,
			Status:           raw.InjuryStatus,
			Points:           e.PlayerPoolEntry.AppliedStatTotal,
		}

		// Team defenses carry the franchise name in firstName only.
		if p.PrimaryPosition == "D/ST" && p.FullName == "" {
			p.FullName = raw.FirstName
		}

		for _, slot := range raw.EligibleSlots {
			if name, ok := lineupSlots[slot]; ok {
				p.EligiblePositions = append(p.EligiblePositions, name)
			}
		}

		roster = append(roster, p)
	}
	return roster
}

func positionCode(id int) string {
	if pos, ok := positions[id]; ok {
		return pos
	}
	return ""
}

// proTeamAbbr resolves a pro team id. ESPN reports Washington as "WSH";
// every other data source in the pipeline uses "WAS".
func proTeamAbbr(id int) string {
	abbr, ok := proTeams[id]
	if !ok {
		return ""
	}
	if abbr == "WSH" {
		return "WAS"
	}
	return abbr
}
