// Package handler provides HTTP handlers for the snapshot API. Snapshot
// documents are served straight from the data directory as raw JSON — the
// report pipeline already wrote them fully formed.
package handler

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gridironlab/ffreport/internal/api/respond"
	"github.com/gridironlab/ffreport/internal/archive"
	"github.com/gridironlab/ffreport/internal/config"
	"github.com/gridironlab/ffreport/internal/snapshot"
)

// Handler holds shared dependencies for all endpoint handlers. The archive
// pool is nil when no database is configured.
type Handler struct {
	cfg     *config.Config
	archive *archive.Pool
}

// New creates a Handler with shared dependencies.
func New(cfg *config.Config, pool *archive.Pool) *Handler {
	return &Handler{cfg: cfg, archive: pool}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Fantasy Football Report API",
		"version": "1.0.0",
		"status":  "running",
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity for the metrics archive.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "not configured",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.archive.HealthCheck(r.Context()); err != nil {
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

// ListSnapshots enumerates all stored league snapshots.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	infos, err := snapshot.List(h.cfg.DataDir)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "LIST_FAILED", "Unable to enumerate snapshots")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"snapshots": infos,
		"count":     len(infos),
	})
}

// GetSnapshot serves one stored snapshot document verbatim.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	season, err := strconv.Atoi(chi.URLParam(r, "season"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SEASON", "Season must be an integer")
		return
	}
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_WEEK", "Week must be an integer")
		return
	}
	leagueID := chi.URLParam(r, "leagueID")

	path := snapshot.Path(h.cfg.DataDir, season, leagueID, week)
	stat, err := os.Stat(path)
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "SNAPSHOT_NOT_FOUND",
			fmt.Sprintf("No snapshot for season %d league %s week %d", season, leagueID, week))
		return
	}

	etag := fmt.Sprintf(`"%x-%x"`, stat.ModTime().Unix(), stat.Size())
	if r.Header.Get("If-None-Match") == etag {
		respond.WriteNotModified(w, etag)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "SNAPSHOT_READ_FAILED", "Unable to read snapshot")
		return
	}
	respond.WriteJSON(w, data, etag)
}
