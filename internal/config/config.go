// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// --------------------------------------------------------------------------
// Game registry — the games the pipeline tracks and their Liquipedia wikis
// --------------------------------------------------------------------------

type GameConfig struct {
	ID   string
	Name string
	Wiki string // Liquipedia wiki name used in API calls
	// EpochStart limits series/tournament fetches to the current competitive
	// era of the game. Zero means no lower bound.
	EpochStart time.Time
}

var GameRegistry = map[string]GameConfig{
	"cs2":      {ID: "cs2", Name: "Counter-Strike 2", Wiki: "counterstrike", EpochStart: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)},
	"valorant": {ID: "valorant", Name: "Valorant", Wiki: "valorant", EpochStart: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
}

// --------------------------------------------------------------------------
// Table names — single source of truth, matches the schema in internal/db
// --------------------------------------------------------------------------

const (
	GamesTable       = "games"
	TeamsTable       = "teams"
	PlayersTable     = "players"
	TournamentsTable = "tournaments"
	RostersTable     = "team_rosters"
	SeriesTable      = "match_series"
	MapsTable        = "played_maps"
	PlacementsTable  = "tournament_placements"
	MapStatsTable    = "player_map_stats"
)

// --------------------------------------------------------------------------
// Role vocabulary — the controlled set of valid player roles
// --------------------------------------------------------------------------

// DefaultRoleVocabulary lists the playing roles considered valid across the
// supported games. The role cleanup pass deletes players whose role is
// non-empty and outside this set. Override with ROLE_VOCABULARY (comma list)
// or ROLE_VOCABULARY_FILE (YAML).
var DefaultRoleVocabulary = []string{
	"igl", "awper", "rifler", "entry fragger", "lurker", "support",
	"duelist", "initiator", "controller", "sentinel", "flex",
}

// StaleTeamAuthority selects which signal marks a team as stale.
type StaleTeamAuthority string

const (
	// AuthorityRoster treats the absence of active roster rows as the stale
	// signal. The upstream "active" flag disagrees with the live roster for
	// a few dozen teams; the roster is authoritative by default.
	AuthorityRoster StaleTeamAuthority = "roster"
	// AuthoritySource trusts the upstream disbanded flag instead.
	AuthoritySource StaleTeamAuthority = "source"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Liquipedia API
	LiquipediaAPIKey  string
	ContactEmail      string
	APIRequestsPerMin int
	APIPageLimit      int
	APIMaxRetries     int
	FetchSince        string // YYYY-MM-DD lower bound for time-sensitive data, empty = all

	// Cleanup
	RoleVocabulary []string
	StaleAuthority StaleTeamAuthority

	// API server
	APIHost     string
	APIPort     int
	Environment string
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting (inbound, API server)
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("ARES_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or ARES_DATABASE_URL must be set")
	}

	vocab, err := loadRoleVocabulary()
	if err != nil {
		return nil, err
	}

	authority := StaleTeamAuthority(envOr("STALE_TEAM_AUTHORITY", string(AuthorityRoster)))
	if authority != AuthorityRoster && authority != AuthoritySource {
		return nil, fmt.Errorf("STALE_TEAM_AUTHORITY must be %q or %q, got %q",
			AuthorityRoster, AuthoritySource, authority)
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		LiquipediaAPIKey:  envOr("LIQUIPEDIA_API_KEY", ""),
		ContactEmail:      envOr("CONTACT_EMAIL", ""),
		APIRequestsPerMin: envInt("LIQUIPEDIA_REQUESTS_PER_MINUTE", 1),
		APIPageLimit:      envInt("LIQUIPEDIA_PAGE_LIMIT", 1000),
		APIMaxRetries:     envInt("LIQUIPEDIA_MAX_RETRIES", 3),
		FetchSince:        envOr("FETCH_DATA_SINCE", "2023-01-01"),

		RoleVocabulary: vocab,
		StaleAuthority: authority,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UserAgent returns the User-Agent string required by the Liquipedia API
// terms of use.
func (c *Config) UserAgent() string {
	contact := c.ContactEmail
	if contact == "" {
		contact = "unset"
	}
	return fmt.Sprintf("AresData/1.0 (%s) GoPgxAPIV3", contact)
}

// loadRoleVocabulary resolves the controlled role vocabulary, preferring a
// YAML file over the env list over the built-in default.
func loadRoleVocabulary() ([]string, error) {
	if path := os.Getenv("ROLE_VOCABULARY_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read role vocabulary file: %w", err)
		}
		var doc struct {
			Roles []string `yaml:"roles"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse role vocabulary file %s: %w", path, err)
		}
		if len(doc.Roles) == 0 {
			return nil, fmt.Errorf("role vocabulary file %s defines no roles", path)
		}
		return doc.Roles, nil
	}
	return envList("ROLE_VOCABULARY", DefaultRoleVocabulary), nil
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
