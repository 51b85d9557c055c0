// Package app enforces the daily free-tier request allowance.
package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/Jason121485/StudyMate-AI/app/models"
)

const FreeDailyLimit = 5

type quotaError struct {
	Limit int
	Used  int
}

func (e quotaError) Error() string {
	return "daily quota exceeded"
}

// todayUTC renders the process clock as the UTC calendar date string the
// quota window is keyed on.
func todayUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ReserveUsage authorizes one AI request and records the consumption in a
// single serializable transaction, so two concurrent requests for the same
// user cannot both pass the check on the last remaining slot.
//
// Premium users are always authorized and their counter is never touched.
// Free users get a counter reset when the stored date is not today, then the
// increment is granted only while the new count stays within the allowance.
func (s *PostgresStore) ReserveUsage(ctx context.Context, userID int64) (models.User, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	user, err := getUserForUpdate(ctx, tx, userID)
	if err != nil {
		return models.User{}, err
	}

	if user.Subscription == models.SubscriptionPremium {
		return user, tx.Commit()
	}

	today := todayUTC(time.Now())
	resetUsage := user.LastRequestDate != today
	if resetUsage {
		user.RequestCount = 0
		user.LastRequestDate = today
	}

	if user.RequestCount+1 > FreeDailyLimit {
		return user, quotaError{Limit: FreeDailyLimit, Used: user.RequestCount}
	}
	user.RequestCount++

	if err := updateUserUsage(ctx, tx, userID, user.RequestCount, user.LastRequestDate); err != nil {
		return models.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}

	return user, nil
}

func getUserForUpdate(ctx context.Context, tx *sql.Tx, userID int64) (models.User, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
		FOR UPDATE;
	`, userID)
	return scanUser(row)
}

func updateUserUsage(ctx context.Context, tx *sql.Tx, userID int64, count int, lastDate string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET request_count = $1, last_request_date = $2
		WHERE id = $3;
	`, count, lastDate, userID)
	return err
}
