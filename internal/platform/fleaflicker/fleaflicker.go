// Package fleaflicker fetches and normalizes Fleaflicker fantasy football
// leagues via the public Fetch* JSON endpoints.
package fleaflicker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/gridironlab/ffreport/internal/cache"
	"github.com/gridironlab/ffreport/internal/model"
	httpclient "github.com/gridironlab/ffreport/internal/platform/client"
)

const baseURL = "https://www.fleaflicker.com/api"

// benchPositions is Fleaflicker's bench group set. Taxi squads count as
// bench for lineup purposes.
var benchPositions = []string{"BN", "IR", "TAXI"}

// flexLabels maps Fleaflicker slot labels to canonical position codes.
var flexLabels = map[string]string{
	"RB/WR":    "FLEX_RB_WR",
	"WR/TE":    "FLEX_TE_WR",
	"RB/WR/TE": "FLEX",
	"Q/W/R/T":  "SUPERFLEX",
}

// Options configures a Fleaflicker league adapter.
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

// LeagueData owns one Fleaflicker league fetch.
type LeagueData struct {
	opts   Options
	client *httpclient.Client
	logger *slog.Logger
}

// New creates a Fleaflicker adapter.
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

type teamRaw struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	RecordOverall struct {
		Wins   int `json:"wins"`
		Losses int `json:"losses"`
		Ties   int `json:"ties"`
	} `json:"recordOverall"`
}

type standingsRaw struct {
	League struct {
		Name string `json:"name"`
	} `json:"league"`
	Divisions []struct {
		Teams []teamRaw `json:"teams"`
	} `json:"divisions"`
}

type scoreRaw struct {
	Score struct {
		Value float64 `json:"value"`
	} `json:"score"`
}

type scoreboardRaw struct {
	Games []struct {
		Home         teamRaw  `json:"home"`
		Away         teamRaw  `json:"away"`
		HomeScore    scoreRaw `json:"homeScore"`
		AwayScore    scoreRaw `json:"awayScore"`
		IsFinalScore bool     `json:"isFinalScore"`
	} `json:"games"`
}

type rulesRaw struct {
	RosterPositions []struct {
		Label string `json:"label"`
		Min   int    `json:"min"`
		Max   int    `json:"max"`
		Group string `json:"group"` // START or BENCH
	} `json:"rosterPositions"`
}

type rosterRaw struct {
	Groups []struct {
		Group string `json:"group"` // START, BENCH, INJURED_RESERVE, TAXI
		Slots []struct {
			Position struct {
				Label string `json:"label"`
			} `json:"position"`
			LeaguePlayer *struct {
				ProPlayer struct {
					ID                  int    `json:"id"`
					NameFull            string `json:"nameFull"`
					NameFirst           string `json:"nameFirst"`
					NameLast            string `json:"nameLast"`
					Position            string `json:"position"`
					ProTeamAbbreviation string `json:"proTeamAbbreviation"`
					Injury              struct {
						Description string `json:"description"`
					} `json:"injury"`
				} `json:"proPlayer"`
				ViewingActualPoints struct {
					Value float64 `json:"value"`
				} `json:"viewingActualPoints"`
			} `json:"leaguePlayer"`
		} `json:"slots"`
	} `json:"groups"`
}

// --------------------------------------------------------------------------
// Mapping
// --------------------------------------------------------------------------

// MapDataToBase fetches or replays all Fleaflicker payloads and translates
// them into the canonical league model. Fleaflicker does not report the
// current NFL week, so it is resolved from the shared NFL state source.
func (d *LeagueData) MapDataToBase(ctx context.Context) (*model.League, error) {
	d.logger.Debug("Initializing Fleaflicker league", "league_id", d.opts.LeagueID)

	currentWeek := d.opts.CurrentNFLWeek(ctx)
	week, err := d.opts.ValidateWeek(d.opts.WeekForReport, currentWeek)
	if err != nil {
		return nil, err
	}

	leagueDir := d.opts.Store.LeagueDir(d.opts.Season, d.opts.LeagueID)

	var standings standingsRaw
	if err := d.fetchJSON(ctx, "/FetchLeagueStandings", nil,
		leagueDir, d.opts.LeagueID+"-league_standings.json", &standings); err != nil {
		return nil, err
	}

	var rules rulesRaw
	if err := d.fetchJSON(ctx, "/FetchLeagueRules", nil,
		leagueDir, d.opts.LeagueID+"-league_rules.json", &rules); err != nil {
		return nil, err
	}

	league := &model.League{
		Platform:       "fleaflicker",
		LeagueID:       d.opts.LeagueID,
		Name:           standings.League.Name,
		Season:         d.opts.Season,
		Week:           week,
		StartWeek:      d.opts.StartWeek,
		BenchPositions: append([]string(nil), benchPositions...),
		DataDir:        d.opts.Store.DataDir,
		SaveData:       d.opts.Store.SaveData,
		Offline:        d.opts.Store.Offline,
		MatchupsByWeek: make(map[int][]model.Matchup),
	}

	league.RosterPositionCounts = make(map[string]int)
	for _, rp := range rules.RosterPositions {
		pos := positionCode(rp.Label)
		count := rp.Max
		if count <= 0 {
			count = rp.Min
		}
		if pos == "" || count <= 0 {
			continue
		}
		league.RosterPositionCounts[pos] += count
		if rp.Group == "START" {
			for i := 0; i < count; i++ {
				league.ActivePositions = append(league.ActivePositions, pos)
			}
		}
	}

	teamsByID := make(map[string]*model.Team)
	for _, div := range standings.Divisions {
		for _, t := range div.Teams {
			team := &model.Team{
				ID:   strconv.Itoa(t.ID),
				Name: t.Name,
				Week: week,
				Record: model.Record{
					Wins:   t.RecordOverall.Wins,
					Losses: t.RecordOverall.Losses,
					Ties:   t.RecordOverall.Ties,
				},
			}
			teamsByID[team.ID] = team
			league.Teams = append(league.Teams, team)
		}
	}
	league.NumTeams = len(league.Teams)

	for w := d.opts.StartWeek; w <= week; w++ {
		var board scoreboardRaw
		if err := d.fetchJSON(ctx, "/FetchLeagueScoreboard",
			url.Values{"scoring_period": {strconv.Itoa(w)}},
			d.opts.Store.WeekDir(d.opts.Season, d.opts.LeagueID, w),
			fmt.Sprintf("week_%d-scoreboard.json", w), &board); err != nil {
			return nil, err
		}

		for _, g := range board.Games {
			homePts := g.HomeScore.Score.Value
			awayPts := g.AwayScore.Score.Value
			league.MatchupsByWeek[w] = append(league.MatchupsByWeek[w], model.Matchup{
				Week:     w,
				HomeID:   strconv.Itoa(g.Home.ID),
				AwayID:   strconv.Itoa(g.Away.ID),
				HomePts:  homePts,
				AwayPts:  awayPts,
				Complete: g.IsFinalScore,
				Tied:     g.IsFinalScore && homePts == awayPts,
			})

			if w != week {
				continue
			}
			if home := teamsByID[strconv.Itoa(g.Home.ID)]; home != nil {
				home.Points = homePts
			}
			if away := teamsByID[strconv.Itoa(g.Away.ID)]; away != nil {
				away.Points = awayPts
			}
		}
	}

	for _, t := range league.Teams {
		roster, err := d.fetchRoster(ctx, t.ID, week)
		if err != nil {
			return nil, err
		}
		t.Roster = roster
	}

	league.SortTeamsByID()
	return league, nil
}

func (d *LeagueData) fetchRoster(ctx context.Context, teamID string, week int) ([]*model.Player, error) {
	var roster rosterRaw
	if err := d.fetchJSON(ctx, "/FetchRoster",
		url.Values{"team_id": {teamID}, "scoring_period": {strconv.Itoa(week)}},
		d.opts.Store.WeekDir(d.opts.Season, d.opts.LeagueID, week),
		fmt.Sprintf("week_%d-%s-roster.json", week, teamID), &roster); err != nil {
		return nil, err
	}

	var players []*model.Player
	for _, group := range roster.Groups {
		for _, slot := range group.Slots {
			lp := slot.LeaguePlayer
			if lp == nil {
				// Empty lineup slot.
				continue
			}

			selected := positionCode(slot.Position.Label)
			switch group.Group {
			case "BENCH":
				selected = "BN"
			case "INJURED_RESERVE":
				selected = "IR"
			case "TAXI":
				selected = "TAXI"
			}

			players = append(players, &model.Player{
				ID:               strconv.Itoa(lp.ProPlayer.ID),
				FirstName:        lp.ProPlayer.NameFirst,
				LastName:         lp.ProPlayer.NameLast,
				FullName:         lp.ProPlayer.NameFull,
				NFLTeamAbbr:      lp.ProPlayer.ProTeamAbbreviation,
				PrimaryPosition:  positionCode(lp.ProPlayer.Position),
				SelectedPosition: selected,
				EligiblePositions: []string{
					positionCode(lp.ProPlayer.Position),
				},
				Status: lp.ProPlayer.Injury.Description,
				Points: lp.ViewingActualPoints.Value,
			})
		}
	}
	return players, nil
}

func (d *LeagueData) fetchJSON(ctx context.Context, path string, params url.Values, dir, filename string, out interface{}) error {
	data, err := d.opts.Store.Fetch(ctx, dir, filename, func(ctx context.Context) ([]byte, error) {
		if params == nil {
			params = url.Values{}
		}
		params.Set("sport", "NFL")
		params.Set("league_id", d.opts.LeagueID)
		params.Set("season", strconv.Itoa(d.opts.Season))
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

// positionCode translates a Fleaflicker slot label to the canonical code.
func positionCode(label string) string {
	if code, ok := flexLabels[label]; ok {
		return code
	}
	return label
}
