package repository

import (
	"context"
	"errors"

	"github.com/darematch/api/internal/database"
	"github.com/darematch/api/internal/model"
)

// ChallengeRepository handles challenge data access
type ChallengeRepository struct {
	db database.Database
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db database.Database) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Create persists a newly proposed challenge and fills in the generated
// id, version, and timestamps.
func (r *ChallengeRepository) Create(ctx context.Context, challenge *model.Challenge) error {
	query := `
		CREATE challenge CONTENT {
			from_user: $from_user,
			to_user: $to_user,
			description: $description,
			status: $status,
			numbers: {},
			version: 1,
			created_on: time::now(),
			updated_on: time::now()
		}
	`

	vars := map[string]interface{}{
		"from_user":   challenge.FromUser,
		"to_user":     challenge.ToUser,
		"description": challenge.Description,
		"status":      string(challenge.Status),
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	rows := unwrapRows(results)
	if len(rows) == 0 {
		return errors.New("no challenge record returned from create")
	}
	created, err := parseChallengeRow(rows[0])
	if err != nil {
		return err
	}

	challenge.ID = created.ID
	challenge.Version = created.Version
	challenge.CreatedOn = created.CreatedOn
	challenge.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a challenge by ID
func (r *ChallengeRepository) GetByID(ctx context.Context, id string) (*model.Challenge, error) {
	query := `SELECT * FROM type::record($id)`
	vars := map[string]interface{}{"id": id}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseChallengeRow(result)
}

// CompareAndUpdate writes the mutated challenge only if no other writer has
// committed since it was read. The UPDATE is guarded on the version the
// record carried at read time; zero matched rows means a concurrent commit
// won, reported as database.ErrVersionConflict. On success the challenge's
// version and updated_on are advanced in place.
func (r *ChallengeRepository) CompareAndUpdate(ctx context.Context, challenge *model.Challenge) error {
	query := `
		UPDATE type::record($id) SET
			status = $status,
			range = $range,
			numbers = $numbers,
			result = $result,
			completed_on = $completed_on,
			version = version + 1,
			updated_on = time::now()
		WHERE version = $expected_version
	`

	var rangeVal interface{}
	if challenge.Range != nil {
		rangeVal = map[string]interface{}{
			"min": challenge.Range.Min,
			"max": challenge.Range.Max,
		}
	}
	var resultVal interface{}
	if challenge.Result != nil {
		resultVal = string(*challenge.Result)
	}
	var completedVal interface{}
	if challenge.CompletedOn != nil {
		completedVal = challenge.CompletedOn.UTC()
	}

	numbers := make(map[string]interface{}, len(challenge.Numbers))
	for user, value := range challenge.Numbers {
		numbers[user] = value
	}

	vars := map[string]interface{}{
		"id":               challenge.ID,
		"status":           string(challenge.Status),
		"range":            rangeVal,
		"numbers":          numbers,
		"result":           resultVal,
		"completed_on":     completedVal,
		"expected_version": challenge.Version,
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	rows := unwrapRows(results)
	if len(rows) == 0 {
		return database.ErrVersionConflict
	}

	updated, err := parseChallengeRow(rows[0])
	if err != nil {
		return err
	}
	challenge.Version = updated.Version
	challenge.UpdatedOn = updated.UpdatedOn
	return nil
}

// ListForUser retrieves challenges where the user is either party, newest
// first, optionally filtered by status and direction.
func (r *ChallengeRepository) ListForUser(ctx context.Context, userID string, status *model.ChallengeStatus, direction model.ChallengeDirection, limit, offset int) ([]*model.Challenge, error) {
	query := `SELECT * FROM challenge WHERE `
	vars := map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
		"offset":  offset,
	}

	switch direction {
	case model.ChallengeDirectionIncoming:
		query += `to_user = $user_id`
	case model.ChallengeDirectionOutgoing:
		query += `from_user = $user_id`
	default:
		query += `(from_user = $user_id OR to_user = $user_id)`
	}

	if status != nil {
		query += ` AND status = $status`
		vars["status"] = string(*status)
	}

	query += ` ORDER BY created_on DESC LIMIT $limit START $offset`

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return parseChallengeRows(unwrapRows(results))
}

// CountForUser counts challenges matching the same filter as ListForUser
func (r *ChallengeRepository) CountForUser(ctx context.Context, userID string, status *model.ChallengeStatus, direction model.ChallengeDirection) (int, error) {
	query := `SELECT count() AS count FROM challenge WHERE `
	vars := map[string]interface{}{"user_id": userID}

	switch direction {
	case model.ChallengeDirectionIncoming:
		query += `to_user = $user_id`
	case model.ChallengeDirectionOutgoing:
		query += `from_user = $user_id`
	default:
		query += `(from_user = $user_id OR to_user = $user_id)`
	}

	if status != nil {
		query += ` AND status = $status`
		vars["status"] = string(*status)
	}

	query += ` GROUP ALL`

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return extractCount(result), nil
}

// ListAll retrieves every challenge, used by the stats service. Filtering
// and aggregation happen in the service so the numbers map stays opaque to
// the database.
func (r *ChallengeRepository) ListAll(ctx context.Context) ([]*model.Challenge, error) {
	results, err := r.db.Query(ctx, `SELECT * FROM challenge`, nil)
	if err != nil {
		return nil, err
	}
	return parseChallengeRows(unwrapRows(results))
}

// parseChallengeRow parses a single challenge record
func parseChallengeRow(result interface{}) (*model.Challenge, error) {
	m, ok := unwrapRow(result)
	if !ok {
		return nil, database.ErrNotFound
	}

	challenge := &model.Challenge{
		ID:          convertSurrealID(m["id"]),
		FromUser:    getString(m, "from_user"),
		ToUser:      getString(m, "to_user"),
		Description: getString(m, "description"),
		Status:      model.ChallengeStatus(getString(m, "status")),
		Version:     getInt64(m, "version"),
		CreatedOn:   getTime(m, "created_on"),
		UpdatedOn:   getTime(m, "updated_on"),
		CompletedOn: getTimePtr(m, "completed_on"),
		Numbers:     map[string]int{},
	}

	if rng, ok := m["range"].(map[string]interface{}); ok {
		challenge.Range = &model.ChallengeRange{
			Min: getInt(rng, "min"),
			Max: getInt(rng, "max"),
		}
	}

	if numbers, ok := m["numbers"].(map[string]interface{}); ok {
		for user := range numbers {
			challenge.Numbers[user] = getInt(numbers, user)
		}
	}

	if result := getString(m, "result"); result != "" {
		res := model.ChallengeResult(result)
		challenge.Result = &res
	}

	return challenge, nil
}

// parseChallengeRows parses multiple challenge records, skipping malformed rows
func parseChallengeRows(rows []interface{}) ([]*model.Challenge, error) {
	challenges := make([]*model.Challenge, 0, len(rows))
	for _, row := range rows {
		challenge, err := parseChallengeRow(row)
		if err != nil {
			continue
		}
		challenges = append(challenges, challenge)
	}
	return challenges, nil
}
