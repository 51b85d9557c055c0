package app

import (
	"context"

	"github.com/Jason121485/StudyMate-AI/app/models"
)

// historyPageSize caps the interaction log view at the most recent entries.
const historyPageSize = 20

// ListHistory returns a user's most recent AI interactions, newest first.
func (s *PostgresStore) ListHistory(ctx context.Context, userID int64) ([]models.HistoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, query, response, timestamp
		FROM history
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2;
	`, userID, historyPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.HistoryItem{}
	for rows.Next() {
		var h models.HistoryItem
		if err := rows.Scan(
			&h.ID,
			&h.UserID,
			&h.Type,
			&h.Query,
			&h.Response,
			&h.Timestamp,
		); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendHistory records one interaction. Rows are never mutated or deleted.
func (s *PostgresStore) AppendHistory(ctx context.Context, item models.HistoryItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (user_id, type, query, response)
		VALUES ($1, $2, $3, $4);
	`, item.UserID, item.Type, item.Query, item.Response)
	return err
}
