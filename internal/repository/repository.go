// Package repository provides the database access layer.
//
// Queries are written against database/sql using the pgx stdlib driver.
// Each method maps to a single SQL statement; transaction coordination and
// error translation live in the service layer.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Queries holds the database handle and exposes all query methods.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance backed by the given database handle.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// =============================================================================
// Models
// =============================================================================

// User is the database representation of a user row.
type User struct {
	ID                 uuid.UUID
	Email              string
	PasswordHash       string
	Name               string
	StripeCustomerID   string
	SubscriptionStatus string
	SubscriptionTier   string
	SubscriptionID     string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Session is the database representation of a session row.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

const userColumns = `id, email, password_hash, name, stripe_customer_id,
	subscription_status, subscription_tier, subscription_id, created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.StripeCustomerID,
		&u.SubscriptionStatus,
		&u.SubscriptionTier,
		&u.SubscriptionID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// =============================================================================
// User Queries
// =============================================================================

// CreateUserParams contains the fields needed to insert a user.
type CreateUserParams struct {
	Email        string
	PasswordHash string
	Name         string
}

// CreateUser inserts a new user and returns the created row.
func (q *Queries) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		params.Email, params.PasswordHash, params.Name,
	)
	return scanUser(row)
}

// GetUserByID returns the user with the given ID.
func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetUserByStripeCustomerID returns the user with the given Stripe customer ID.
func (q *Queries) GetUserByStripeCustomerID(ctx context.Context, customerID string) (User, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE stripe_customer_id = $1`, customerID)
	return scanUser(row)
}

// UpdateStripeCustomer sets the Stripe customer ID for a user.
func (q *Queries) UpdateStripeCustomer(ctx context.Context, userID uuid.UUID, customerID string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users SET stripe_customer_id = $2, updated_at = now() WHERE id = $1`,
		userID, customerID,
	)
	return err
}

// UpdateSubscriptionParams contains the subscription fields updated by billing events.
type UpdateSubscriptionParams struct {
	UserID         uuid.UUID
	Status         string
	Tier           string
	SubscriptionID string
}

// UpdateSubscription updates a user's subscription status, tier, and ID.
func (q *Queries) UpdateSubscription(ctx context.Context, params UpdateSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE users
		SET subscription_status = $2, subscription_tier = $3, subscription_id = $4, updated_at = now()
		WHERE id = $1`,
		params.UserID, params.Status, params.Tier, params.SubscriptionID,
	)
	return err
}

// =============================================================================
// Session Queries
// =============================================================================

// CreateSessionParams contains the fields needed to insert a session.
type CreateSessionParams struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
}

// CreateSession inserts a new session and returns the created row.
func (q *Queries) CreateSession(ctx context.Context, params CreateSessionParams) (Session, error) {
	var s Session
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO sessions (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, token_hash, expires_at, created_at`,
		params.UserID, params.TokenHash, params.ExpiresAt,
	).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

// GetSessionByTokenHash returns the session with the given token hash.
func (q *Queries) GetSessionByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	var s Session
	err := q.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM sessions WHERE token_hash = $1`, tokenHash,
	).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

// DeleteSession removes the session with the given token hash.
func (q *Queries) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	return err
}

// DeleteExpiredSessions removes all sessions past their expiry time and
// returns the number of rows deleted.
func (q *Queries) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
