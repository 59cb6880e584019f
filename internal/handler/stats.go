package handler

import (
	"net/http"
	"strconv"

	"github.com/darematch/api/internal/middleware"
	"github.com/darematch/api/internal/model"
	"github.com/darematch/api/internal/service"
)

// StatsHandler handles game statistics endpoints
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// Me handles GET /v1/stats/me - the caller's challenge history summary
func (h *StatsHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	stats, err := h.statsService.UserStats(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "user stats"))
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}

// Global handles GET /v1/stats/global
func (h *StatsHandler) Global(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	stats, err := h.statsService.GlobalStats(r.Context())
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "global stats"))
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}

// TopNumbers handles GET /v1/stats/numbers/top?limit=N
func (h *StatsHandler) TopNumbers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	numbers, err := h.statsService.TopNumbers(r.Context(), limit)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "top numbers"))
		return
	}

	WriteCollection(w, http.StatusOK, numbers, nil, map[string]string{
		"self": "/v1/stats/numbers/top",
	})
}

// TopPairs handles GET /v1/stats/pairs/top?limit=N
func (h *StatsHandler) TopPairs(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	pairs, err := h.statsService.TopPairs(r.Context(), limit)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "top pairs"))
		return
	}

	WriteCollection(w, http.StatusOK, pairs, nil, map[string]string{
		"self": "/v1/stats/pairs/top",
	})
}
