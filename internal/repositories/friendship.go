package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/recipeshift/internal/models"
)

const legacyFriendshipColumns = `id, requester_household_id, target_household_id, status, message, created_at, updated_at`

// LegacyFriendshipRepository reads household_friendships.
type LegacyFriendshipRepository struct {
	db Querier
}

// NewLegacyFriendshipRepository creates a new [LegacyFriendshipRepository] with the given database connection
func NewLegacyFriendshipRepository(db Querier) *LegacyFriendshipRepository {
	return &LegacyFriendshipRepository{db: db}
}

// Create inserts a household friendship
func (r *LegacyFriendshipRepository) Create(ctx context.Context, f *models.LegacyFriendship) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	stamp(&f.CreatedAt, &f.UpdatedAt)

	query := `INSERT INTO household_friendships (` + legacyFriendshipColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.RequesterHouseholdID, f.TargetHouseholdID, string(f.Status), nullable(f.Message),
		f.CreatedAt.UTC(), f.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert household friendship: %w", err)
	}
	return nil
}

// Get retrieves a household friendship by ID
func (r *LegacyFriendshipRepository) Get(ctx context.Context, id string) (*models.LegacyFriendship, error) {
	query := `SELECT ` + legacyFriendshipColumns + ` FROM household_friendships WHERE id = $1`
	f, err := scanLegacyFriendship(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "household friendship", id)
	}
	return f, nil
}

// List retrieves every household friendship
func (r *LegacyFriendshipRepository) List(ctx context.Context) ([]*models.LegacyFriendship, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+legacyFriendshipColumns+` FROM household_friendships ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query household friendships: %w", err)
	}
	return collect(rows, scanLegacyFriendship)
}

// ListByStatus retrieves household friendships with the given status
func (r *LegacyFriendshipRepository) ListByStatus(ctx context.Context, status models.FriendshipStatus) ([]*models.LegacyFriendship, error) {
	query := `SELECT ` + legacyFriendshipColumns + ` FROM household_friendships WHERE status = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query household friendships: %w", err)
	}
	return collect(rows, scanLegacyFriendship)
}

// Count returns the number of household friendships
func (r *LegacyFriendshipRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM household_friendships`)
}

// CountByStatus counts household friendships with the given status
func (r *LegacyFriendshipRepository) CountByStatus(ctx context.Context, status models.FriendshipStatus) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM household_friendships WHERE status = $1`, string(status))
}

func scanLegacyFriendship(s scanner) (*models.LegacyFriendship, error) {
	var (
		f       models.LegacyFriendship
		status  string
		message sql.NullString
	)
	if err := s.Scan(&f.ID, &f.RequesterHouseholdID, &f.TargetHouseholdID, &status, &message, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Status = models.FriendshipStatus(status)
	f.Message = message.String
	return &f, nil
}

const friendshipColumns = `id, requester_id, target_id, status, message, created_at, updated_at`

// FriendshipRepository implements [models.Repository] for user_friendships.
type FriendshipRepository struct {
	db Querier
}

// NewFriendshipRepository creates a new [FriendshipRepository] with the given database connection
func NewFriendshipRepository(db Querier) *FriendshipRepository {
	return &FriendshipRepository{db: db}
}

// Create inserts a user friendship. A row for the same unordered pair or ID is left untouched.
func (r *FriendshipRepository) Create(ctx context.Context, f *models.Friendship) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	stamp(&f.CreatedAt, &f.UpdatedAt)

	query := `INSERT INTO user_friendships (id, requester_id, target_id, pair_key, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.RequesterID, f.TargetID, f.Pair().String(), string(f.Status), nullable(f.Message),
		f.CreatedAt.UTC(), f.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert user friendship %s: %w", f.ID, err)
	}
	return nil
}

// Get retrieves a user friendship by ID
func (r *FriendshipRepository) Get(ctx context.Context, id string) (*models.Friendship, error) {
	query := `SELECT ` + friendshipColumns + ` FROM user_friendships WHERE id = $1`
	f, err := scanFriendship(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "user friendship", id)
	}
	return f, nil
}

// List retrieves every user friendship
func (r *FriendshipRepository) List(ctx context.Context) ([]*models.Friendship, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+friendshipColumns+` FROM user_friendships ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user friendships: %w", err)
	}
	return collect(rows, scanFriendship)
}

// Count returns the number of user friendships
func (r *FriendshipRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM user_friendships`)
}

// CountByStatus counts user friendships with the given status
func (r *FriendshipRepository) CountByStatus(ctx context.Context, status models.FriendshipStatus) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM user_friendships WHERE status = $1`, string(status))
}

// IDs returns the set of every user friendship ID.
func (r *FriendshipRepository) IDs(ctx context.Context) (map[string]struct{}, error) {
	return idSet(ctx, r.db, `SELECT id FROM user_friendships`)
}

// Pairs returns the unordered user pairs that already have a friendship.
func (r *FriendshipRepository) Pairs(ctx context.Context) (map[models.PairKey]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT requester_id, target_id FROM user_friendships`)
	if err != nil {
		return nil, fmt.Errorf("failed to query friendship pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(map[models.PairKey]struct{})
	for rows.Next() {
		var requester, target string
		if err := rows.Scan(&requester, &target); err != nil {
			return nil, fmt.Errorf("failed to scan friendship pair: %w", err)
		}
		pairs[models.NewPairKey(requester, target)] = struct{}{}
	}
	return pairs, rows.Err()
}

func scanFriendship(s scanner) (*models.Friendship, error) {
	var (
		f       models.Friendship
		status  string
		message sql.NullString
	)
	if err := s.Scan(&f.ID, &f.RequesterID, &f.TargetID, &status, &message, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Status = models.FriendshipStatus(status)
	f.Message = message.String
	return &f, nil
}
