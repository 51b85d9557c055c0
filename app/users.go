// Package app provides user persistence for the identity bootstrap and the
// subscription authority.
package app

import (
	"context"
	"database/sql"

	"github.com/Jason121485/StudyMate-AI/app/models"
)

const userColumns = `id, email, password, name, subscription, request_count, last_request_date`

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1;
	`, id)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1;
	`, email)
	return scanUser(row)
}

// CreateUser inserts a fresh free-tier row. lastRequestDate is today's UTC
// date string so the first quota check starts from a zero counter.
func (s *PostgresStore) CreateUser(ctx context.Context, email, credential, name, lastRequestDate string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password, name, subscription, request_count, last_request_date)
		VALUES ($1, $2, $3, $4, 0, $5)
		RETURNING `+userColumns+`;
	`, email, credential, nullIfEmpty(name), models.SubscriptionFree, lastRequestDate)
	return scanUser(row)
}

// UpgradeSubscription sets the premium tier unconditionally; upgrading an
// already-premium user is a no-op in outcome. There is no downgrade.
func (s *PostgresStore) UpgradeSubscription(ctx context.Context, userID int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET subscription = $1
		WHERE id = $2
		RETURNING `+userColumns+`;
	`, models.SubscriptionPremium, userID)
	return scanUser(row)
}

func (s *PostgresStore) ResetUsage(ctx context.Context, userID int64, today string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET request_count = 0, last_request_date = $1
		WHERE id = $2;
	`, today, userID)
	return err
}

func (s *PostgresStore) IncrementUsage(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET request_count = request_count + 1
		WHERE id = $1;
	`, userID)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanUser(row *sql.Row) (models.User, error) {
	var (
		user     models.User
		name     sql.NullString
		lastDate sql.NullString
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Credential,
		&name,
		&user.Subscription,
		&user.RequestCount,
		&lastDate,
	)
	if err != nil {
		return models.User{}, err
	}
	user.Name = name.String
	user.LastRequestDate = lastDate.String
	return user, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
