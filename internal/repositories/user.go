package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/recipeshift/internal/models"
)

// UserRepository implements [models.Repository] for [models.User] persistence.
type UserRepository struct {
	db Querier
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO users (id, email, name, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.Name, user.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, name, created_at FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

// List retrieves all users ordered by ID
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, email, name, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return collect(rows, scanUser)
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM users`)
}

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	if err := s.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// HouseholdRepository implements [models.Repository] for [models.Household] persistence.
type HouseholdRepository struct {
	db Querier
}

// NewHouseholdRepository creates a new [HouseholdRepository] with the given database connection
func NewHouseholdRepository(db Querier) *HouseholdRepository {
	return &HouseholdRepository{db: db}
}

// Create inserts a new household
func (r *HouseholdRepository) Create(ctx context.Context, household *models.Household) error {
	if err := household.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if household.CreatedAt.IsZero() {
		household.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO households (id, name, leader_id, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, household.ID, household.Name, nullable(household.LeaderID), household.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert household: %w", err)
	}
	return nil
}

// Get retrieves a household by ID
func (r *HouseholdRepository) Get(ctx context.Context, id string) (*models.Household, error) {
	query := `SELECT id, name, leader_id, created_at FROM households WHERE id = $1`
	household, err := scanHousehold(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "household", id)
	}
	return household, nil
}

// List retrieves all households ordered by ID
func (r *HouseholdRepository) List(ctx context.Context) ([]*models.Household, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, leader_id, created_at FROM households ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query households: %w", err)
	}
	return collect(rows, scanHousehold)
}

// Count returns the number of households
func (r *HouseholdRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM households`)
}

// Leaders maps each household that has a leader onto the leader's user ID.
func (r *HouseholdRepository) Leaders(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, leader_id FROM households WHERE leader_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to query household leaders: %w", err)
	}
	defer rows.Close()

	leaders := make(map[string]string)
	for rows.Next() {
		var id, leader string
		if err := rows.Scan(&id, &leader); err != nil {
			return nil, fmt.Errorf("failed to scan household leader: %w", err)
		}
		if leader != "" {
			leaders[id] = leader
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return leaders, nil
}

func scanHousehold(s scanner) (*models.Household, error) {
	var (
		h      models.Household
		leader sql.NullString
	)
	if err := s.Scan(&h.ID, &h.Name, &leader, &h.CreatedAt); err != nil {
		return nil, err
	}
	h.LeaderID = leader.String
	return &h, nil
}
