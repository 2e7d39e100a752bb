// Package yahoo fetches and normalizes Yahoo fantasy football leagues.
//
// The Yahoo Fantasy API wraps every resource in a "fantasy_content" envelope
// and encodes objects as arrays of single-key fragments, with collections
// keyed by stringified indices plus a "count" field. The decoding helpers at
// the bottom of this file flatten that convention into plain structs; the
// mapping code above them stays readable.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"

	"github.com/gridironlab/ffreport/internal/cache"
	"github.com/gridironlab/ffreport/internal/model"
	httpclient "github.com/gridironlab/ffreport/internal/platform/client"
)

const baseURL = "https://fantasysports.yahooapis.com/fantasy/v2"

// benchPositions is Yahoo's bench slot set.
var benchPositions = []string{"BN", "IR"}

// flexLabels maps Yahoo flex position labels to canonical codes.
var flexLabels = map[string]string{
	"W/R":     "FLEX_RB_WR",
	"W/T":     "FLEX_TE_WR",
	"W/R/T":   "FLEX",
	"Q/W/R/T": "SUPERFLEX",
	"D":       "FLEX_IDP",
}

// Options configures a Yahoo league adapter.
type Options struct {
	WeekForReport     string
	LeagueID          string
	GameID            string
	AccessToken       string
	Season            int
	StartWeek         int
	Store             *cache.Store
	ValidateWeek      func(requested string, currentWeek int) (int, error)
	RequestsPerMinute int
	Logger            *slog.Logger
}

// LeagueData owns one Yahoo league fetch.
type LeagueData struct {
	opts      Options
	leagueKey string
	client    *httpclient.Client
	logger    *slog.Logger
}

// New creates a Yahoo adapter. The league key is the game id and league id
// joined in Yahoo's <game>.l.<league> form.
func New(opts Options) *LeagueData {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	headers := map[string]string{}
	if opts.AccessToken != "" {
		headers["Authorization"] = "Bearer " + opts.AccessToken
	}
	return &LeagueData{
		opts:      opts,
		leagueKey: fmt.Sprintf("%s.l.%s", opts.GameID, opts.LeagueID),
		client:    httpclient.New(baseURL, opts.RequestsPerMinute, headers, logger),
		logger:    logger,
	}
}

// --------------------------------------------------------------------------
// Decoded payload shapes (post-flattening)
// --------------------------------------------------------------------------

type leagueMeta struct {
	LeagueKey   string  `json:"league_key"`
	Name        string  `json:"name"`
	NumTeams    flexInt `json:"num_teams"`
	CurrentWeek flexInt `json:"current_week"`
	StartWeek   flexInt `json:"start_week"`
	Season      flexInt `json:"season"`
}

type leagueSettings struct {
	RosterPositions []struct {
		RosterPosition struct {
			Position string  `json:"position"`
			Count    flexInt `json:"count"`
		} `json:"roster_position"`
	} `json:"roster_positions"`
}

type teamRaw struct {
	TeamID        flexInt `json:"team_id"`
	Name          string  `json:"name"`
	TeamStandings struct {
		OutcomeTotals struct {
			Wins   flexInt `json:"wins"`
			Losses flexInt `json:"losses"`
			Ties   flexInt `json:"ties"`
		} `json:"outcome_totals"`
	} `json:"team_standings"`
}

type matchupTeamRaw struct {
	TeamID     flexInt `json:"team_id"`
	TeamPoints struct {
		Total flexFloat `json:"total"`
	} `json:"team_points"`
}

type matchupRaw struct {
	Week   flexInt `json:"week"`
	Status string  `json:"status"`
	IsTied flexInt `json:"is_tied"`
}

type playerRaw struct {
	PlayerID flexInt `json:"player_id"`
	Name     struct {
		Full  string `json:"full"`
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
	EditorialTeamAbbr string `json:"editorial_team_abbr"`
	PrimaryPosition   string `json:"primary_position"`
	Status            string `json:"status"`
	EligiblePositions []struct {
		Position string `json:"position"`
	} `json:"eligible_positions"`
	SelectedPosition struct {
		Position string `json:"position"`
	} `json:"selected_position"`
	PlayerPoints struct {
		Total flexFloat `json:"total"`
	} `json:"player_points"`
}

// --------------------------------------------------------------------------
// Mapping
// --------------------------------------------------------------------------

// MapDataToBase fetches or replays all Yahoo payloads and translates them
// into the canonical league model.
func (d *LeagueData) MapDataToBase(ctx context.Context) (*model.League, error) {
	d.logger.Debug("Initializing Yahoo league", "league_key", d.leagueKey)

	leagueDir := d.opts.Store.LeagueDir(d.opts.Season, d.opts.LeagueID)

	infoBody, err := d.fetch(ctx,
		fmt.Sprintf("/league/%s;out=metadata,settings,standings", d.leagueKey),
		leagueDir, d.opts.LeagueID+"-league_info.json")
	if err != nil {
		return nil, err
	}

	leagueNode, err := envelopeNode(infoBody, "league")
	if err != nil {
		return nil, fmt.Errorf("league info: %w", err)
	}

	var meta leagueMeta
	if err := json.Unmarshal(leagueNode, &meta); err != nil {
		return nil, fmt.Errorf("decode league metadata: %w", err)
	}
	var settings leagueSettings
	if err := json.Unmarshal(leagueNode, &settings); err != nil {
		return nil, fmt.Errorf("decode league settings: %w", err)
	}

	week, err := d.opts.ValidateWeek(d.opts.WeekForReport, int(meta.CurrentWeek))
	if err != nil {
		return nil, err
	}

	league := &model.League{
		Platform:       "yahoo",
		LeagueID:       d.opts.LeagueID,
		Name:           meta.Name,
		Season:         d.opts.Season,
		Week:           week,
		StartWeek:      d.opts.StartWeek,
		NumTeams:       int(meta.NumTeams),
		BenchPositions: append([]string(nil), benchPositions...),
		DataDir:        d.opts.Store.DataDir,
		SaveData:       d.opts.Store.SaveData,
		Offline:        d.opts.Store.Offline,
		MatchupsByWeek: make(map[int][]model.Matchup),
	}

	league.RosterPositionCounts = make(map[string]int)
	for _, rp := range settings.RosterPositions {
		pos := positionCode(rp.RosterPosition.Position)
		count := int(rp.RosterPosition.Count)
		if pos == "" || count <= 0 {
			continue
		}
		league.RosterPositionCounts[pos] += count
		if !league.IsBenchPosition(pos) {
			for i := 0; i < count; i++ {
				league.ActivePositions = append(league.ActivePositions, pos)
			}
		}
	}

	// Standings carry every team with its season record. Yahoo team names
	// arrive as serialized byte literals for leagues with non-ASCII names.
	teams, err := d.decodeStandings(leagueNode, week)
	if err != nil {
		return nil, err
	}
	league.Teams = teams

	teamsByID := make(map[string]*model.Team, len(teams))
	for _, t := range teams {
		teamsByID[t.ID] = t
	}

	for w := d.opts.StartWeek; w <= week; w++ {
		matchups, err := d.fetchScoreboard(ctx, w)
		if err != nil {
			return nil, err
		}
		league.MatchupsByWeek[w] = matchups

		if w != week {
			continue
		}
		for _, m := range matchups {
			if home := teamsByID[m.HomeID]; home != nil {
				home.Points = m.HomePts
			}
			if away := teamsByID[m.AwayID]; away != nil {
				away.Points = m.AwayPts
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

func (d *LeagueData) decodeStandings(leagueNode json.RawMessage, week int) ([]*model.Team, error) {
	var standings struct {
		Standings struct {
			Teams json.RawMessage `json:"teams"`
		} `json:"standings"`
	}
	if err := json.Unmarshal(leagueNode, &standings); err != nil {
		return nil, fmt.Errorf("decode league standings: %w", err)
	}

	items, err := collectionItems(standings.Standings.Teams, "team")
	if err != nil {
		return nil, fmt.Errorf("league standings teams: %w", err)
	}

	teams := make([]*model.Team, 0, len(items))
	for _, item := range items {
		var raw teamRaw
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("decode team: %w", err)
		}
		teams = append(teams, &model.Team{
			ID:   strconv.Itoa(int(raw.TeamID)),
			Name: model.DecodeName(raw.Name),
			Week: week,
			Record: model.Record{
				Wins:   int(raw.TeamStandings.OutcomeTotals.Wins),
				Losses: int(raw.TeamStandings.OutcomeTotals.Losses),
				Ties:   int(raw.TeamStandings.OutcomeTotals.Ties),
			},
		})
	}
	return teams, nil
}

func (d *LeagueData) fetchScoreboard(ctx context.Context, week int) ([]model.Matchup, error) {
	body, err := d.fetch(ctx,
		fmt.Sprintf("/league/%s/scoreboard;week=%d", d.leagueKey, week),
		d.opts.Store.WeekDir(d.opts.Season, d.opts.LeagueID, week),
		fmt.Sprintf("week_%d-matchups_by_week.json", week))
	if err != nil {
		return nil, err
	}

	leagueNode, err := envelopeNode(body, "league")
	if err != nil {
		return nil, fmt.Errorf("scoreboard week %d: %w", week, err)
	}

	var sb struct {
		Scoreboard struct {
			Matchups json.RawMessage `json:"matchups"`
		} `json:"scoreboard"`
	}
	if err := json.Unmarshal(leagueNode, &sb); err != nil {
		return nil, fmt.Errorf("decode scoreboard week %d: %w", week, err)
	}

	items, err := collectionItems(sb.Scoreboard.Matchups, "matchup")
	if err != nil {
		return nil, fmt.Errorf("scoreboard matchups week %d: %w", week, err)
	}

	matchups := make([]model.Matchup, 0, len(items))
	for _, item := range items {
		var raw matchupRaw
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("decode matchup week %d: %w", week, err)
		}

		var wrapper struct {
			Teams json.RawMessage `json:"teams"`
		}
		if err := json.Unmarshal(item, &wrapper); err != nil {
			return nil, fmt.Errorf("decode matchup teams week %d: %w", week, err)
		}
		sides, err := collectionItems(wrapper.Teams, "team")
		if err != nil {
			return nil, fmt.Errorf("matchup teams week %d: %w", week, err)
		}
		if len(sides) != 2 {
			d.logger.Warn("Skipping matchup without two teams", "week", week, "teams", len(sides))
			continue
		}

		var home, away matchupTeamRaw
		if err := json.Unmarshal(sides[0], &home); err != nil {
			return nil, fmt.Errorf("decode matchup side week %d: %w", week, err)
		}
		if err := json.Unmarshal(sides[1], &away); err != nil {
			return nil, fmt.Errorf("decode matchup side week %d: %w", week, err)
		}

		matchups = append(matchups, model.Matchup{
			Week:     week,
			HomeID:   strconv.Itoa(int(home.TeamID)),
			AwayID:   strconv.Itoa(int(away.TeamID)),
			HomePts:  float64(home.TeamPoints.Total),
			AwayPts:  float64(away.TeamPoints.Total),
			Complete: raw.Status == "postevent",
			Tied:     raw.IsTied == 1,
		})
	}
	return matchups, nil
}

func (d *LeagueData) fetchRoster(ctx context.Context, teamID string, week int) ([]*model.Player, error) {
	teamKey := fmt.Sprintf("%s.t.%s", d.leagueKey, teamID)
	body, err := d.fetch(ctx,
		fmt.Sprintf("/team/%s/roster;week=%d/players/stats;type=week;week=%d", teamKey, week, week),
		d.opts.Store.WeekDir(d.opts.Season, d.opts.LeagueID, week),
		fmt.Sprintf("week_%d-%s-roster_by_week.json", week, teamID))
	if err != nil {
		return nil, err
	}

	teamNode, err := envelopeNode(body, "team")
	if err != nil {
		return nil, fmt.Errorf("roster for team %s: %w", teamID, err)
	}

	var wrapper struct {
		Roster struct {
			Players json.RawMessage `json:"players"`
		} `json:"roster"`
	}
	if err := json.Unmarshal(teamNode, &wrapper); err != nil {
		return nil, fmt.Errorf("decode roster for team %s: %w", teamID, err)
	}

	items, err := collectionItems(wrapper.Roster.Players, "player")
	if err != nil {
		return nil, fmt.Errorf("roster players for team %s: %w", teamID, err)
	}

	roster := make([]*model.Player, 0, len(items))
	for _, item := range items {
		var raw playerRaw
		if err := json.Unmarshal(item, &raw); err != nil {
			return nil, fmt.Errorf("decode player for team %s: %w", teamID, err)
		}

		p := &model.Player{
			ID:               strconv.Itoa(int(raw.PlayerID)),
			FirstName:        model.DecodeName(raw.Name.First),
			LastName:         model.DecodeName(raw.Name.Last),
			FullName:         model.DecodeName(raw.Name.Full),
			NFLTeamAbbr:      raw.EditorialTeamAbbr,
			PrimaryPosition:  positionCode(raw.PrimaryPosition),
			SelectedPosition: positionCode(raw.SelectedPosition.Position),
			Status:           raw.Status,
			Points:           float64(raw.PlayerPoints.Total),
		}
		for _, ep := range raw.EligiblePositions {
			if pos := positionCode(ep.Position); pos != "" {
				p.EligiblePositions = append(p.EligiblePositions, pos)
			}
		}
		roster = append(roster, p)
	}
	return roster, nil
}

func (d *LeagueData) fetch(ctx context.Context, path, dir, filename string) ([]byte, error) {
	return d.opts.Store.Fetch(ctx, dir, filename, func(ctx context.Context) ([]byte, error) {
		return d.client.Get(ctx, path, url.Values{"format": {"json"}})
	})
}

// positionCode translates a Yahoo position label to the canonical code.
func positionCode(label string) string {
	if code, ok := flexLabels[label]; ok {
		return code
	}
	return label
}

// --------------------------------------------------------------------------
// Yahoo JSON conventions
// --------------------------------------------------------------------------

// envelopeNode extracts fantasy_content.<key> and flattens Yahoo's
// array-of-fragments encoding into a single JSON object.
func envelopeNode(body []byte, key string) (json.RawMessage, error) {
	var envelope struct {
		FantasyContent map[string]json.RawMessage `json:"fantasy_content"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	node, ok := envelope.FantasyContent[key]
	if !ok {
		return nil, fmt.Errorf("envelope is missing %q", key)
	}
	return flatten(node)
}

// collectionItems expands an indexed collection ({"0": {...}, "count": N})
// into the flattened objects under itemKey, in index order.
func collectionItems(raw json.RawMessage, itemKey string) ([]json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var indexed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &indexed); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}

	indices := make([]int, 0, len(indexed))
	for k := range indexed {
		if i, err := strconv.Atoi(k); err == nil {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)

	items := make([]json.RawMessage, 0, len(indices))
	for _, i := range indices {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(indexed[strconv.Itoa(i)], &wrapper); err != nil {
			return nil, fmt.Errorf("decode collection item %d: %w", i, err)
		}
		item, ok := wrapper[itemKey]
		if !ok {
			continue
		}
		flat, err := flatten(item)
		if err != nil {
			return nil, fmt.Errorf("flatten collection item %d: %w", i, err)
		}
		items = append(items, flat)
	}
	return items, nil
}

// flatten merges Yahoo's array-of-fragments object encoding into one JSON
// object. Elements may themselves be fragment arrays; non-array input is
// returned unchanged.
func flatten(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := trimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return raw, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}

	merged := make(map[string]json.RawMessage)
	var walk func(elem json.RawMessage) error
	walk = func(elem json.RawMessage) error {
		t := trimSpace(elem)
		if len(t) == 0 {
			return nil
		}
		switch t[0] {
		case '[':
			var nested []json.RawMessage
			if err := json.Unmarshal(elem, &nested); err != nil {
				return err
			}
			for _, n := range nested {
				if err := walk(n); err != nil {
					return err
				}
			}
		case '{':
			var frag map[string]json.RawMessage
			if err := json.Unmarshal(elem, &frag); err != nil {
				return err
			}
			for k, v := range frag {
				merged[k] = v
			}
		}
		return nil
	}
	for _, elem := range elems {
		if err := walk(elem); err != nil {
			return nil, err
		}
	}
	return json.Marshal(merged)
}

func trimSpace(raw json.RawMessage) json.RawMessage {
	i := 0
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t' || raw[i] == '\n' || raw[i] == '\r') {
		i++
	}
	return raw[i:]
}

// flexInt decodes Yahoo numeric fields, which arrive as either JSON numbers
// or quoted strings depending on the resource.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %q", s)
	}
	*f = flexInt(n)
	return nil
}

// flexFloat is the float counterpart of flexInt.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid float %q", s)
	}
	*f = flexFloat(v)
	return nil
}
