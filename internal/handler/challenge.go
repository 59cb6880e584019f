package handler

import (
	"net/http"
	"strconv"

	"github.com/darematch/api/internal/middleware"
	"github.com/darematch/api/internal/model"
	"github.com/darematch/api/internal/service"
)

// ChallengeHandler handles challenge endpoints
type ChallengeHandler struct {
	challengeService *service.ChallengeService
}

// NewChallengeHandler creates a new challenge handler
func NewChallengeHandler(challengeService *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

// Propose handles POST /v1/challenges - propose a new challenge
func (h *ChallengeHandler) Propose(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.ProposeChallengeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	challenge, err := h.challengeService.Propose(r.Context(), userID, &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "propose challenge"))
		return
	}

	WriteData(w, http.StatusCreated, challenge, map[string]string{
		"self": "/v1/challenges/" + challenge.ID,
	})
}

// List handles GET /v1/challenges - list the caller's challenges
func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	status, err := parseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	direction, err := parseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, err := h.challengeService.List(r.Context(), userID, status, direction, page, perPage)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list challenges"))
		return
	}

	WriteCollection(w, http.StatusOK, list.Challenges, &PaginationInfo{
		Page:    list.Page,
		PerPage: list.PerPage,
		Total:   list.Total,
		HasMore: list.Page*list.PerPage < list.Total,
	}, map[string]string{
		"self": "/v1/challenges",
	})
}

// Get handles GET /v1/challenges/{challengeId}
func (h *ChallengeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	challengeID := r.PathValue("challengeId")
	challenge, err := h.challengeService.Get(r.Context(), userID, challengeID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get challenge"))
		return
	}

	WriteData(w, http.StatusOK, challenge, map[string]string{
		"self":   "/v1/challenges/" + challenge.ID,
		"events": "/v1/challenges/" + challenge.ID + "/events",
	})
}

// Accept handles POST /v1/challenges/{challengeId}/accept
func (h *ChallengeHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.AcceptChallengeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	challenge, err := h.challengeService.Accept(r.Context(), userID, r.PathValue("challengeId"), req.Range)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "accept challenge"))
		return
	}

	WriteData(w, http.StatusOK, challenge, nil)
}

// Reject handles POST /v1/challenges/{challengeId}/reject
func (h *ChallengeHandler) Reject(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	challenge, err := h.challengeService.Reject(r.Context(), userID, r.PathValue("challengeId"))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "reject challenge"))
		return
	}

	WriteData(w, http.StatusOK, challenge, nil)
}

// SubmitNumber handles POST /v1/challenges/{challengeId}/number
func (h *ChallengeHandler) SubmitNumber(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.SubmitNumberRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	challenge, err := h.challengeService.SubmitNumber(r.Context(), userID, r.PathValue("challengeId"), req.Value)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "submit number"))
		return
	}

	WriteData(w, http.StatusOK, challenge, nil)
}

// parseStatusFilter validates the status query parameter
func parseStatusFilter(raw string) (*model.ChallengeStatus, error) {
	if raw == "" {
		return nil, nil
	}
	status := model.ChallengeStatus(raw)
	switch status {
	case model.ChallengeStatusPending,
		model.ChallengeStatusAccepted,
		model.ChallengeStatusActive,
		model.ChallengeStatusCompleted,
		model.ChallengeStatusRejected:
		return &status, nil
	}
	return nil, service.ErrInvalidStatusFilter
}

// parseDirection validates the direction query parameter
func parseDirection(raw string) (model.ChallengeDirection, error) {
	switch model.ChallengeDirection(raw) {
	case "", model.ChallengeDirectionAll:
		return model.ChallengeDirectionAll, nil
	case model.ChallengeDirectionIncoming:
		return model.ChallengeDirectionIncoming, nil
	case model.ChallengeDirectionOutgoing:
		return model.ChallengeDirectionOutgoing, nil
	}
	return "", service.ErrInvalidDirection
}
