package repository

import (
	"context"
	"errors"

	"github.com/darematch/api/internal/database"
	"github.com/darematch/api/internal/model"
)

// FriendRepository handles friend request and friendship data access
type FriendRepository struct {
	db database.Database
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db database.Database) *FriendRepository {
	return &FriendRepository{db: db}
}

// CreateRequest persists a new friend request
func (r *FriendRepository) CreateRequest(ctx context.Context, request *model.FriendRequest) error {
	query := `
		CREATE friend_request CONTENT {
			from_user: $from_user,
			to_user: $to_user,
			message: $message,
			status: $status,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"from_user": request.FromUser,
		"to_user":   request.ToUser,
		"message":   request.Message,
		"status":    string(request.Status),
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	rows := unwrapRows(results)
	if len(rows) == 0 {
		return errors.New("no friend request record returned from create")
	}
	created, err := parseFriendRequestRow(rows[0])
	if err != nil {
		return err
	}

	request.ID = created.ID
	request.CreatedOn = created.CreatedOn
	request.UpdatedOn = created.UpdatedOn
	return nil
}

// GetRequestByID retrieves a friend request by ID
func (r *FriendRepository) GetRequestByID(ctx context.Context, id string) (*model.FriendRequest, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseFriendRequestRow(result)
}

// GetPendingRequestBetween finds a pending request between two users in
// either direction, or nil if none exists.
func (r *FriendRepository) GetPendingRequestBetween(ctx context.Context, userA, userB string) (*model.FriendRequest, error) {
	query := `
		SELECT * FROM friend_request
		WHERE status = 'pending'
			AND ((from_user = $a AND to_user = $b) OR (from_user = $b AND to_user = $a))
		LIMIT 1
	`
	vars := map[string]interface{}{"a": userA, "b": userB}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseFriendRequestRow(result)
}

// ListRequestsForUser retrieves pending requests involving the user, newest
// first. Incoming requests are those addressed to the user.
func (r *FriendRepository) ListRequestsForUser(ctx context.Context, userID string, incoming bool) ([]*model.FriendRequest, error) {
	query := `SELECT * FROM friend_request WHERE status = 'pending' AND `
	if incoming {
		query += `to_user = $user_id`
	} else {
		query += `from_user = $user_id`
	}
	query += ` ORDER BY created_on DESC`

	vars := map[string]interface{}{"user_id": userID}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows := unwrapRows(results)
	requests := make([]*model.FriendRequest, 0, len(rows))
	for _, row := range rows {
		request, err := parseFriendRequestRow(row)
		if err != nil {
			continue
		}
		requests = append(requests, request)
	}
	return requests, nil
}

// UpdateRequestStatus resolves a friend request
func (r *FriendRepository) UpdateRequestStatus(ctx context.Context, id string, status model.FriendRequestStatus) error {
	query := `
		UPDATE type::record($id) SET
			status = $status,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":     id,
		"status": string(status),
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}
	if len(unwrapRows(results)) == 0 {
		return database.ErrNotFound
	}
	return nil
}

// AcceptRequest resolves a request and creates the friendship in one atomic
// batch so a crash between the two writes cannot strand a half-accepted
// request.
func (r *FriendRepository) AcceptRequest(ctx context.Context, request *model.FriendRequest) error {
	userA, userB := model.OrderPair(request.FromUser, request.ToUser)

	batch := database.NewAtomicBatch()
	batch.Add(`
		UPDATE type::record($id) SET
			status = 'accepted',
			updated_on = time::now()
	`, map[string]interface{}{
		"id": request.ID,
	})
	batch.Add(`
		CREATE friendship CONTENT {
			user_a: $user_a,
			user_b: $user_b,
			request_id: $request_id,
			created_on: time::now()
		}
	`, map[string]interface{}{
		"user_a":     userA,
		"user_b":     userB,
		"request_id": request.ID,
	})

	if err := batch.Execute(ctx, r.db); err != nil {
		if isUniqueConstraintError(err) {
			return database.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetFriendship finds the friendship between two users, or nil if they are
// not friends.
func (r *FriendRepository) GetFriendship(ctx context.Context, userA, userB string) (*model.Friendship, error) {
	a, b := model.OrderPair(userA, userB)

	query := `SELECT * FROM friendship WHERE user_a = $a AND user_b = $b LIMIT 1`
	vars := map[string]interface{}{"a": a, "b": b}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseFriendshipRow(result)
}

// ListFriendships retrieves all friendships for a user, newest first
func (r *FriendRepository) ListFriendships(ctx context.Context, userID string) ([]*model.Friendship, error) {
	query := `
		SELECT * FROM friendship
		WHERE user_a = $user_id OR user_b = $user_id
		ORDER BY created_on DESC
	`
	vars := map[string]interface{}{"user_id": userID}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows := unwrapRows(results)
	friendships := make([]*model.Friendship, 0, len(rows))
	for _, row := range rows {
		friendship, err := parseFriendshipRow(row)
		if err != nil {
			continue
		}
		friendships = append(friendships, friendship)
	}
	return friendships, nil
}

// DeleteFriendship removes a friendship between two users
func (r *FriendRepository) DeleteFriendship(ctx context.Context, userA, userB string) error {
	a, b := model.OrderPair(userA, userB)

	query := `DELETE friendship WHERE user_a = $a AND user_b = $b RETURN BEFORE`
	vars := map[string]interface{}{"a": a, "b": b}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}
	if len(unwrapRows(results)) == 0 {
		return database.ErrNotFound
	}
	return nil
}

// parseFriendRequestRow parses a single friend request record
func parseFriendRequestRow(result interface{}) (*model.FriendRequest, error) {
	m, ok := unwrapRow(result)
	if !ok {
		return nil, database.ErrNotFound
	}

	return &model.FriendRequest{
		ID:        convertSurrealID(m["id"]),
		FromUser:  getString(m, "from_user"),
		ToUser:    getString(m, "to_user"),
		Message:   getString(m, "message"),
		Status:    model.FriendRequestStatus(getString(m, "status")),
		CreatedOn: getTime(m, "created_on"),
		UpdatedOn: getTime(m, "updated_on"),
	}, nil
}

// parseFriendshipRow parses a single friendship record
func parseFriendshipRow(result interface{}) (*model.Friendship, error) {
	m, ok := unwrapRow(result)
	if !ok {
		return nil, database.ErrNotFound
	}

	return &model.Friendship{
		ID:        convertSurrealID(m["id"]),
		UserA:     getString(m, "user_a"),
		UserB:     getString(m, "user_b"),
		RequestID: convertSurrealID(m["request_id"]),
		CreatedOn: getTime(m, "created_on"),
	}, nil
}
