package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darematch/api/internal/model"
	"github.com/darematch/api/internal/service"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type stubFriendRepo struct {
	createRequestFunc            func(ctx context.Context, request *model.FriendRequest) error
	getRequestByIDFunc           func(ctx context.Context, id string) (*model.FriendRequest, error)
	getPendingRequestBetweenFunc func(ctx context.Context, userA, userB string) (*model.FriendRequest, error)
	listRequestsForUserFunc      func(ctx context.Context, userID string, incoming bool) ([]*model.FriendRequest, error)
	updateRequestStatusFunc      func(ctx context.Context, id string, status model.FriendRequestStatus) error
	acceptRequestFunc            func(ctx context.Context, request *model.FriendRequest) error
	getFriendshipFunc            func(ctx context.Context, userA, userB string) (*model.Friendship, error)
	listFriendshipsFunc          func(ctx context.Context, userID string) ([]*model.Friendship, error)
	deleteFriendshipFunc         func(ctx context.Context, userA, userB string) error
}

func (s *stubFriendRepo) CreateRequest(ctx context.Context, request *model.FriendRequest) error {
	if s.createRequestFunc != nil {
		return s.createRequestFunc(ctx, request)
	}
	request.ID = "friend_request:1"
	return nil
}

func (s *stubFriendRepo) GetRequestByID(ctx context.Context, id string) (*model.FriendRequest, error) {
	if s.getRequestByIDFunc != nil {
		return s.getRequestByIDFunc(ctx, id)
	}
	return nil, nil
}

func (s *stubFriendRepo) GetPendingRequestBetween(ctx context.Context, userA, userB string) (*model.FriendRequest, error) {
	if s.getPendingRequestBetweenFunc != nil {
		return s.getPendingRequestBetweenFunc(ctx, userA, userB)
	}
	return nil, nil
}

func (s *stubFriendRepo) ListRequestsForUser(ctx context.Context, userID string, incoming bool) ([]*model.FriendRequest, error) {
	if s.listRequestsForUserFunc != nil {
		return s.listRequestsForUserFunc(ctx, userID, incoming)
	}
	return nil, nil
}

func (s *stubFriendRepo) UpdateRequestStatus(ctx context.Context, id string, status model.FriendRequestStatus) error {
	if s.updateRequestStatusFunc != nil {
		return s.updateRequestStatusFunc(ctx, id, status)
	}
	return nil
}

func (s *stubFriendRepo) AcceptRequest(ctx context.Context, request *model.FriendRequest) error {
	if s.acceptRequestFunc != nil {
		return s.acceptRequestFunc(ctx, request)
	}
	return nil
}

func (s *stubFriendRepo) GetFriendship(ctx context.Context, userA, userB string) (*model.Friendship, error) {
	if s.getFriendshipFunc != nil {
		return s.getFriendshipFunc(ctx, userA, userB)
	}
	return nil, nil
}

func (s *stubFriendRepo) ListFriendships(ctx context.Context, userID string) ([]*model.Friendship, error) {
	if s.listFriendshipsFunc != nil {
		return s.listFriendshipsFunc(ctx, userID)
	}
	return nil, nil
}

func (s *stubFriendRepo) DeleteFriendship(ctx context.Context, userA, userB string) error {
	if s.deleteFriendshipFunc != nil {
		return s.deleteFriendshipFunc(ctx, userA, userB)
	}
	return nil
}

type stubFriendUserRepo struct {
	getByIDFunc         func(ctx context.Context, id string) (*model.User, error)
	getByFriendCodeFunc func(ctx context.Context, code string) (*model.User, error)
	friendCodeExists    func(ctx context.Context, code string) (bool, error)
	setFriendCodeFunc   func(ctx context.Context, userID, code string) error
}

func (s *stubFriendUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if s.getByIDFunc != nil {
		return s.getByIDFunc(ctx, id)
	}
	return &model.User{ID: id, Email: id + "@example.com"}, nil
}

func (s *stubFriendUserRepo) GetByFriendCode(ctx context.Context, code string) (*model.User, error) {
	if s.getByFriendCodeFunc != nil {
		return s.getByFriendCodeFunc(ctx, code)
	}
	return nil, nil
}

func (s *stubFriendUserRepo) FriendCodeExists(ctx context.Context, code string) (bool, error) {
	if s.friendCodeExists != nil {
		return s.friendCodeExists(ctx, code)
	}
	return false, nil
}

func (s *stubFriendUserRepo) SetFriendCode(ctx context.Context, userID, code string) error {
	if s.setFriendCodeFunc != nil {
		return s.setFriendCodeFunc(ctx, userID, code)
	}
	return nil
}

// ============================================================================
// Test Helpers
// ============================================================================

func newFriendMux(friendRepo service.FriendRepository, userRepo service.FriendUserRepository) *http.ServeMux {
	svc := service.NewFriendService(service.FriendServiceConfig{
		FriendRepo: friendRepo,
		UserRepo:   userRepo,
	})
	h := NewFriendHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/friends", h.ListFriends)
	mux.HandleFunc("DELETE /v1/friends/{friendId}", h.RemoveFriend)
	mux.HandleFunc("POST /v1/friends/requests", h.SendRequest)
	mux.HandleFunc("GET /v1/friends/requests", h.ListRequests)
	mux.HandleFunc("POST /v1/friends/requests/{requestId}/accept", h.AcceptRequest)
	mux.HandleFunc("POST /v1/friends/requests/{requestId}/reject", h.RejectRequest)
	mux.HandleFunc("DELETE /v1/friends/requests/{requestId}", h.CancelRequest)
	mux.HandleFunc("GET /v1/friends/code", h.GetFriendCode)
	mux.HandleFunc("POST /v1/friends/code/regenerate", h.RegenerateFriendCode)
	mux.HandleFunc("GET /v1/friends/code/qr", h.FriendCodeQR)
	mux.HandleFunc("GET /v1/friends/code/{code}", h.LookupByCode)
	return mux
}

// ============================================================================
// Friend Code Tests
// ============================================================================

func TestGetFriendCode_GeneratesAndReturnsCode(t *testing.T) {
	t.Parallel()

	var stored string
	users := &stubFriendUserRepo{
		setFriendCodeFunc: func(ctx context.Context, userID, code string) error {
			stored = code
			return nil
		},
	}
	mux := newFriendMux(&stubFriendRepo{}, users)

	req := httptest.NewRequest(http.MethodGet, "/v1/friends/code", nil)
	req = withUserContext(req, "user:alice")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data  model.FriendCodeResponse `json:"data"`
		Links map[string]string        `json:"_links"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, model.ValidFriendCode(resp.Data.FriendCode))
	assert.Equal(t, stored, resp.Data.FriendCode)
	assert.Equal(t, "/v1/friends/code/qr", resp.Links["qr"])
}

func TestFriendCodeQR_ReturnsPNG(t *testing.T) {
	t.Parallel()

	users := &stubFriendUserRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, FriendCode: "1234567890123456"}, nil
		},
	}
	mux := newFriendMux(&stubFriendRepo{}, users)

	req := httptest.NewRequest(http.MethodGet, "/v1/friends/code/qr", nil)
	req = withUserContext(req, "user:alice")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, len(rr.Body.Bytes()) > 8)
	assert.Equal(t, "\x89PNG", string(rr.Body.Bytes()[:4]))
}

func TestLookupByCode_Malformed(t *testing.T) {
	t.Parallel()

	mux := newFriendMux(&stubFriendRepo{}, &stubFriendUserRepo{})

	req := httptest.NewRequest(http.MethodGet, "/v1/friends/code/0123", nil)
	req = withUserContext(req, "user:alice")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	pd := decodeProblem(t, rr)
	require.Len(t, pd.Errors, 1)
	assert.Equal(t, "friend_code", pd.Errors[0].Field)
}

func TestLookupByCode_Unknown(t *testing.T) {
	t.Parallel()

	mux := newFriendMux(&stubFriendRepo{}, &stubFriendUserRepo{})

	req := httptest.NewRequest(http.MethodGet, "/v1/friends/code/1234567890123456", nil)
	req = withUserContext(req, "user:alice")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// ============================================================================
// Friend Request Tests
// ============================================================================

func TestSendFriendRequest_Created(t *testing.T) {
	t.Parallel()

	mux := newFriendMux(&stubFriendRepo{}, &stubFriendUserRepo{})

	req := makeJSONRequest(http.MethodPost, "/v1/friends/requests", model.SendFriendRequestRequest{
		ToUser:  "user:bob",
		Message: "let's play",
	})
	req = withUserContext(req, "user:alice")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Data *model.FriendRequest `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "friend_request:1", resp.Data.ID)
	assert.Equal(t, model.FriendRequestPending, resp.Data.Status)
}

func TestSendFriendRequest_MutualCollapsesToOK(t *testing.T) {
	t.Parallel()

	friendRepo := &stubFriendRepo{
		getPendingRequestBetweenFunc: func(ctx context.Context, userA, userB string) (*model.FriendRequest, error) {
			return &model.FriendRequest{
				ID:       "friend_request:9",
				FromUser: "user:bob",
				ToUser:   "user:alice",
				Status:   model.FriendRequestPending,
			}, nil
		},
		acceptRequestFunc: func(ctx context.Context, request *model.FriendRequest) error {
			request.Status = model.FriendRequestAccepted
			return nil
		},
	}
	mux := newFriendMux(friendRepo, &stubFriendUserRepo{})

	req := makeJSONRequest(http.MethodPost, "/v1/friends/requests", model.SendFriendRequestRequest{
		ToUser: "user:bob",
	})
	req = withUserContext(req, "user:alice")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data *model.FriendRequest `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, model.FriendRequestAccepted, resp.Data.Status)
}

func TestSendFriendRequest_AmbiguousTarget(t *testing.T) {
	t.Parallel()

	mux := newFriendMux(&stubFriendRepo{}, &stubFriendUserRepo{})

	req := makeJSONRequest(http.MethodPost, "/v1/friends/requests", model.SendFriendRequestRequest{
		ToUser:     "user:bob",
		FriendCode: "1234567890123456",
	})
	req = withUserContext(req, "user:alice")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSendFriendRequest_AlreadyFriends(t *testing.T) {
	t.Parallel()

	friendRepo := &stubFriendRepo{
		getFriendshipFunc: func(ctx context.Context, userA, userB string) (*model.Friendship, error) {
			return &model.Friendship{ID: "friendship:1", UserA: "user:alice", UserB: "user:bob"}, nil
		},
	}
	mux := newFriendMux(friendRepo, &stubFriendUserRepo{})

	req := makeJSONRequest(http.MethodPost, "/v1/friends/requests", model.SendFriendRequestRequest{
		ToUser: "user:bob",
	})
	req = withUserContext(req, "user:alice")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAcceptFriendRequest_WrongRecipient(t *testing.T) {
	t.Parallel()

	friendRepo := &stubFriendRepo{
		getRequestByIDFunc: func(ctx context.Context, id string) (*model.FriendRequest, error) {
			return &model.FriendRequest{
				ID:       id,
				FromUser: "user:alice",
				ToUser:   "user:bob",
				Status:   model.FriendRequestPending,
			}, nil
		},
	}
	mux := newFriendMux(friendRepo, &stubFriendUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/v1/friends/requests/friend_request:1/accept", nil)
	req = withUserContext(req, "user:mallory")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAcceptFriendRequest_OK(t *testing.T) {
	t.Parallel()

	friendRepo := &stubFriendRepo{
		getRequestByIDFunc: func(ctx context.Context, id string) (*model.FriendRequest, error) {
			return &model.FriendRequest{
				ID:       id,
				FromUser: "user:alice",
				ToUser:   "user:bob",
				Status:   model.FriendRequestPending,
			}, nil
		},
	}
	mux := newFriendMux(friendRepo, &stubFriendUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/v1/friends/requests/friend_request:1/accept", nil)
	req = withUserContext(req, "user:bob")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

// ============================================================================
// Friend List Tests
// ============================================================================

func TestListFriends_ReturnsProfiles(t *testing.T) {
	t.Parallel()

	friendRepo := &stubFriendRepo{
		listFriendshipsFunc: func(ctx context.Context, userID string) ([]*model.Friendship, error) {
			return []*model.Friendship{
				{ID: "friendship:1", UserA: "user:alice", UserB: "user:bob"},
			}, nil
		},
	}
	users := &stubFriendUserRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, DisplayName: "Bob"}, nil
		},
	}
	mux := newFriendMux(friendRepo, users)

	req := httptest.NewRequest(http.MethodGet, "/v1/friends", nil)
	req = withUserContext(req, "user:alice")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data []*model.FriendEntry `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "user:bob", resp.Data[0].Friend.ID)
	assert.Equal(t, "Bob", resp.Data[0].Friend.DisplayName)
}

func TestRemoveFriend_NotFound(t *testing.T) {
	t.Parallel()

	friendRepo := &stubFriendRepo{
		deleteFriendshipFunc: func(ctx context.Context, userA, userB string) error {
			return service.ErrFriendNotFound
		},
	}
	mux := newFriendMux(friendRepo, &stubFriendUserRepo{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/friends/user:stranger", nil)
	req = withUserContext(req, "user:alice")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
