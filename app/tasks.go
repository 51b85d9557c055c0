package app

import (
	"context"
	"database/sql"

	"github.com/Jason121485/StudyMate-AI/app/models"
)

// ListTasks returns a user's planner entries ordered by deadline ascending.
// Past-due tasks stay visible.
func (s *PostgresStore) ListTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, subject, deadline, priority, completed
		FROM tasks
		WHERE user_id = $1
		ORDER BY deadline ASC;
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Name,
			&t.Subject,
			&t.Deadline,
			&t.Priority,
			&t.Completed,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (user_id, name, subject, deadline, priority)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;
	`, task.UserID, task.Name, task.Subject, task.Deadline, task.Priority).Scan(&task.ID)
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// SetTaskCompleted flips the completion flag. The flag is the only mutable
// field on a task in this design.
func (s *PostgresStore) SetTaskCompleted(ctx context.Context, taskID int64, completed bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET completed = $1
		WHERE id = $2;
	`, completed, taskID)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
