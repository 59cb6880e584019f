package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/darematch/api/internal/database"
	"github.com/darematch/api/internal/model"
)

// UserRepository handles user data access
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user record. A caller-supplied id (the identity
// provider's stable subject) is honored; otherwise the database assigns one.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		CREATE user CONTENT {
			email: $email,
			display_name: $display_name,
			friend_code: $friend_code,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"email":        user.Email,
		"display_name": user.DisplayName,
		"friend_code":  user.FriendCode,
	}

	if user.ID != "" {
		query = `
			CREATE type::record($id) CONTENT {
				email: $email,
				display_name: $display_name,
				friend_code: $friend_code,
				created_on: time::now(),
				updated_on: time::now()
			}
		`
		vars["id"] = user.ID
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return database.ErrDuplicate
		}
		return err
	}

	rows := unwrapRows(results)
	if len(rows) == 0 {
		return errors.New("no user record returned from create")
	}
	created, err := parseUserRow(rows[0])
	if err != nil {
		return err
	}

	user.ID = created.ID
	user.CreatedOn = created.CreatedOn
	user.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseUserRow(result)
}

// GetByFriendCode retrieves a user by their shareable friend code
func (r *UserRepository) GetByFriendCode(ctx context.Context, code string) (*model.User, error) {
	query := `SELECT * FROM user WHERE friend_code = $code LIMIT 1`
	vars := map[string]interface{}{"code": code}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseUserRow(result)
}

// FriendCodeExists reports whether any user already holds the given code.
// Used during code generation to retry on collisions.
func (r *UserRepository) FriendCodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT count() AS count FROM user WHERE friend_code = $code GROUP ALL`
	vars := map[string]interface{}{"code": code}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return extractCount(result) > 0, nil
}

// SetFriendCode assigns a new friend code to a user
func (r *UserRepository) SetFriendCode(ctx context.Context, userID, code string) error {
	query := `
		UPDATE type::record($id) SET
			friend_code = $code,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":   userID,
		"code": code,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return database.ErrDuplicate
		}
		return err
	}

	if len(unwrapRows(results)) == 0 {
		return fmt.Errorf("%w: user %s", database.ErrNotFound, userID)
	}
	return nil
}

// parseUserRow parses a single user record
func parseUserRow(result interface{}) (*model.User, error) {
	m, ok := unwrapRow(result)
	if !ok {
		return nil, database.ErrNotFound
	}

	return &model.User{
		ID:          convertSurrealID(m["id"]),
		Email:       getString(m, "email"),
		DisplayName: getString(m, "display_name"),
		FriendCode:  getString(m, "friend_code"),
		CreatedOn:   getTime(m, "created_on"),
		UpdatedOn:   getTime(m, "updated_on"),
	}, nil
}
