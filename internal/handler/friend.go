package handler

import (
	"net/http"
	"strconv"

	"github.com/darematch/api/internal/middleware"
	"github.com/darematch/api/internal/model"
	"github.com/darematch/api/internal/service"
)

// FriendHandler handles friend request, friendship, and friend code endpoints
type FriendHandler struct {
	friendService *service.FriendService
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
	}
}

// SendRequest handles POST /v1/friends/requests - send a friend request
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	var req model.SendFriendRequestRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	request, err := h.friendService.SendRequest(r.Context(), userID, &req)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "send friend request"))
		return
	}

	// A mutual request collapses to an immediate acceptance.
	status := http.StatusCreated
	if request.Status == model.FriendRequestAccepted {
		status = http.StatusOK
	}
	WriteData(w, status, request, map[string]string{
		"self": "/v1/friends/requests/" + request.ID,
	})
}

// ListRequests handles GET /v1/friends/requests?direction=incoming|outgoing
func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	incoming := true
	switch r.URL.Query().Get("direction") {
	case "", "incoming":
	case "outgoing":
		incoming = false
	default:
		WriteError(w, MapServiceError(service.ErrInvalidDirection))
		return
	}

	list, err := h.friendService.ListRequests(r.Context(), userID, incoming)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list friend requests"))
		return
	}

	WriteCollection(w, http.StatusOK, list.Requests, nil, map[string]string{
		"self": "/v1/friends/requests",
	})
}

// AcceptRequest handles POST /v1/friends/requests/{requestId}/accept
func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.friendService.AcceptRequest(r.Context(), userID, r.PathValue("requestId")); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "accept friend request"))
		return
	}

	WriteNoContent(w)
}

// RejectRequest handles POST /v1/friends/requests/{requestId}/reject
func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.friendService.RejectRequest(r.Context(), userID, r.PathValue("requestId")); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "reject friend request"))
		return
	}

	WriteNoContent(w)
}

// CancelRequest handles DELETE /v1/friends/requests/{requestId}
func (h *FriendHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.friendService.CancelRequest(r.Context(), userID, r.PathValue("requestId")); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "cancel friend request"))
		return
	}

	WriteNoContent(w)
}

// ListFriends handles GET /v1/friends
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	list, err := h.friendService.ListFriends(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list friends"))
		return
	}

	WriteCollection(w, http.StatusOK, list.Friends, nil, map[string]string{
		"self": "/v1/friends",
	})
}

// RemoveFriend handles DELETE /v1/friends/{friendId}
func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.friendService.RemoveFriend(r.Context(), userID, r.PathValue("friendId")); err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "remove friend"))
		return
	}

	WriteNoContent(w)
}

// GetFriendCode handles GET /v1/friends/code
func (h *FriendHandler) GetFriendCode(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	code, err := h.friendService.GetFriendCode(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "get friend code"))
		return
	}

	WriteData(w, http.StatusOK, &model.FriendCodeResponse{FriendCode: code}, map[string]string{
		"qr": "/v1/friends/code/qr",
	})
}

// RegenerateFriendCode handles POST /v1/friends/code/regenerate.
// The previous code stops resolving immediately.
func (h *FriendHandler) RegenerateFriendCode(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	code, err := h.friendService.RegenerateFriendCode(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "regenerate friend code"))
		return
	}

	WriteData(w, http.StatusOK, &model.FriendCodeResponse{FriendCode: code}, nil)
}

// FriendCodeQR handles GET /v1/friends/code/qr - the caller's code as a PNG
func (h *FriendHandler) FriendCodeQR(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	png, err := h.friendService.FriendCodeQR(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "render friend code"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// LookupByCode handles GET /v1/friends/code/{code} - resolve a code to a
// public profile before sending a request.
func (h *FriendHandler) LookupByCode(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	user, err := h.friendService.LookupByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "lookup friend code"))
		return
	}

	WriteData(w, http.StatusOK, user, nil)
}
