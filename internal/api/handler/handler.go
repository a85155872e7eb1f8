// Package handler provides HTTP handlers for all API endpoints.
// Handlers query Postgres directly via pgxpool — no service layer.
// List and profile statements aggregate to JSON in Postgres; handlers pass
// the raw bytes through.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projectares/aresdata/internal/api/respond"
	"github.com/projectares/aresdata/internal/cache"
	"github.com/projectares/aresdata/internal/config"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool  *pgxpool.Pool
	cache *cache.Cache
	cfg   *config.Config
}

// New creates a Handler with shared dependencies.
func New(pool *pgxpool.Pool, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{pool: pool, cache: c, cfg: cfg}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "AresData API",
		"version": "1.0.0",
		"status":  "running",
		"optimizations": []string{
			"pgxpool_connection_pooling",
			"prepared_statements",
			"postgres_json_passthrough",
			"gzip_compression",
			"in_memory_cache",
			"etag_support",
		},
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	var n int
	err := h.pool.QueryRow(r.Context(), "health_check").Scan(&n)
	if err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListGames serves the configured game set.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	h.serveListing(w, r, "games", cache.TTLGames, "api_games")
}

// ListTournaments serves tournaments for one game, newest first.
func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	if !validGame(game) {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_GAME", "game query parameter must name a configured game")
		return
	}
	h.serveListing(w, r, "tournaments:"+game, cache.TTLListings, "api_tournaments", game)
}

// ListTeams serves teams for one game with series counts.
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	if !validGame(game) {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_GAME", "game query parameter must name a configured game")
		return
	}
	h.serveListing(w, r, "teams:"+game, cache.TTLListings, "api_teams", game)
}

// GetTeamProfile serves one team with its active roster.
func (h *Handler) GetTeamProfile(w http.ResponseWriter, r *http.Request) {
	teamID, err := strconv.Atoi(chi.URLParam(r, "teamID"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_TEAM_ID", "teamID must be an integer")
		return
	}

	key := "team:" + strconv.Itoa(teamID)
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLProfile, true)
		return
	}

	var data []byte
	if err := h.pool.QueryRow(r.Context(), "api_team_profile", teamID).Scan(&data); err != nil || data == nil {
		respond.WriteError(w, http.StatusNotFound, "TEAM_NOT_FOUND", "no team with that id")
		return
	}
	etag := h.cache.Set(key, data, cache.TTLProfile)
	respond.WriteJSON(w, data, etag, cache.TTLProfile, false)
}

// serveListing runs one JSON-aggregating prepared statement through the
// cache. An empty table aggregates to SQL NULL, which becomes [].
func (h *Handler) serveListing(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, stmt string, args ...any) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	var data []byte
	if err := h.pool.QueryRow(r.Context(), stmt, args...).Scan(&data); err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "QUERY_FAILED", "database query failed")
		return
	}
	if data == nil {
		data = []byte("[]")
	}
	etag := h.cache.Set(key, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

func validGame(id string) bool {
	_, ok := config.GameRegistry[id]
	return ok
}
