// Package config provides centralized configuration loaded from environment
// variables. Shared by the report pipeline and the snapshot API server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Platform registry — the closed set of supported fantasy platforms
// --------------------------------------------------------------------------

const (
	PlatformYahoo       = "yahoo"
	PlatformESPN        = "espn"
	PlatformSleeper     = "sleeper"
	PlatformFleaflicker = "fleaflicker"
)

// SupportedPlatforms is the static enumeration the adapter selector
// dispatches over. Order is the display order in error messages.
var SupportedPlatforms = []string{
	PlatformYahoo,
	PlatformESPN,
	PlatformSleeper,
	PlatformFleaflicker,
}

// IsSupportedPlatform reports whether name is a known platform.
func IsSupportedPlatform(name string) bool {
	for _, p := range SupportedPlatforms {
		if p == name {
			return true
		}
	}
	return false
}

// NFLSeasonLength is the number of weeks in an NFL regular season.
const NFLSeasonLength = 18

// WeekDefault is the sentinel for "report on the most recent complete week".
const WeekDefault = "default"

// PointsSource selects which team total downstream consumers should prefer
// when the reported and recomputed values disagree.
const (
	PointsSourceReported   = "reported"
	PointsSourceRecomputed = "recomputed"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// League selection
	Platform  string
	LeagueID  string
	GameID    string // platform-specific game/sport identifier (Yahoo)
	Season    int
	StartWeek int

	// Week selection: "default" or an explicit week number as a string.
	WeekForReport string

	// CurrentWeek is the fallback current NFL week used offline or when the
	// live lookup fails.
	CurrentWeek int

	// Data handling
	DataDir  string
	SaveData bool
	Offline  bool

	// Metric toggles
	BadBoyRankings    bool
	BeefRankings      bool
	CovidRiskRankings bool

	// Teams manually disqualified from coaching efficiency for the report week.
	CoachingEfficiencyDQs []string

	// CoachingEfficiencyDQEligible enables bench eligibility checking: teams
	// that left inactive players on the bench are disqualified from coaching
	// efficiency.
	CoachingEfficiencyDQEligible bool

	// PointsSource: "reported" (platform totals are authoritative) or
	// "recomputed" (prefer the recomputed starting-lineup sum).
	PointsSource string

	// YahooAccessToken is the OAuth bearer token for the Yahoo Fantasy API.
	// Only required for live yahoo runs; offline replays never need it.
	YahooAccessToken string

	// External datasets for the metrics providers
	BadBoyDataURL    string
	CovidRiskDataURL string
	PlayerDataURL    string // Sleeper NFL players dataset (beef weights)
	NFLStateURL      string // Sleeper NFL state endpoint (current week)
	PlatformAPILimit int    // requests per minute for platform clients

	// API server
	APIHost          string
	APIPort          int
	Environment      string // development, staging, production
	Debug            bool
	CORSAllowOrigins []string

	// API rate limiting (IP-based token bucket)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Optional Postgres archive of weekly team metrics
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Platform:      strings.ToLower(envOr("FF_PLATFORM", "")),
		LeagueID:      envOr("FF_LEAGUE_ID", ""),
		GameID:        envOr("FF_GAME_ID", "nfl"),
		Season:        envInt("FF_SEASON", time.Now().Year()),
		StartWeek:     envInt("FF_START_WEEK", 1),
		WeekForReport: envOr("FF_WEEK_FOR_REPORT", WeekDefault),
		CurrentWeek:   envInt("FF_CURRENT_WEEK", 1),

		DataDir:  envOr("FF_DATA_DIR", "output/data"),
		SaveData: envBool("FF_SAVE_DATA", true),
		Offline:  envBool("FF_OFFLINE", false),

		BadBoyRankings:    envBool("FF_LEAGUE_BAD_BOY_RANKINGS", true),
		BeefRankings:      envBool("FF_LEAGUE_BEEF_RANKINGS", true),
		CovidRiskRankings: envBool("FF_LEAGUE_COVID_RISK_RANKINGS", false),

		CoachingEfficiencyDQs:        envList("FF_COACHING_EFFICIENCY_DQS", nil),
		CoachingEfficiencyDQEligible: envBool("FF_COACHING_EFFICIENCY_DQ_ELIGIBLE", false),

		PointsSource: envOr("FF_POINTS_SOURCE", PointsSourceReported),

		YahooAccessToken: envOr("FF_YAHOO_ACCESS_TOKEN", ""),

		BadBoyDataURL:    envOr("FF_BAD_BOY_DATA_URL", ""),
		CovidRiskDataURL: envOr("FF_COVID_RISK_DATA_URL", ""),
		PlayerDataURL:    envOr("FF_PLAYER_DATA_URL", "https://api.sleeper.app/v1/players/nfl"),
		NFLStateURL:      envOr("FF_NFL_STATE_URL", "https://api.sleeper.app/v1/state/nfl"),
		PlatformAPILimit: envInt("FF_PLATFORM_API_LIMIT", 600),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", false),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,
	}

	if cfg.PointsSource != PointsSourceReported && cfg.PointsSource != PointsSourceRecomputed {
		return nil, fmt.Errorf("FF_POINTS_SOURCE must be %q or %q, got %q",
			PointsSourceReported, PointsSourceRecomputed, cfg.PointsSource)
	}

	return cfg, nil
}

// ValidateLeague checks the fields a report run cannot proceed without.
func (c *Config) ValidateLeague() error {
	if c.Platform == "" {
		return fmt.Errorf("FF_PLATFORM must be set (one of: %s)", strings.Join(SupportedPlatforms, ", "))
	}
	if !IsSupportedPlatform(c.Platform) {
		return fmt.Errorf("unsupported fantasy platform %q: supported platforms are %s",
			c.Platform, strings.Join(SupportedPlatforms, ", "))
	}
	if c.LeagueID == "" {
		return fmt.Errorf("FF_LEAGUE_ID must be set")
	}
	if c.Season < 2000 || c.Season > time.Now().Year() {
		return fmt.Errorf("FF_SEASON %d is not a valid NFL season", c.Season)
	}
	return nil
}

// ArchiveEnabled reports whether the Postgres metrics archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.DatabaseURL != ""
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
