package app

import (
	"context"

	"github.com/Jason121485/StudyMate-AI/app/models"
)

// Store is the request-scoped persistence surface injected into handlers.
// Lookups that miss return sql.ErrNoRows.
type Store interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateUser(ctx context.Context, email, credential, name, lastRequestDate string) (models.User, error)

	// ResetUsage zeroes the counter and stamps today; IncrementUsage adds one
	// unconditionally (legacy two-step wire contract). ReserveUsage is the
	// atomic check-and-increment used by the AI endpoints.
	ResetUsage(ctx context.Context, userID int64, today string) error
	IncrementUsage(ctx context.Context, userID int64) error
	ReserveUsage(ctx context.Context, userID int64) (models.User, error)

	UpgradeSubscription(ctx context.Context, userID int64) (models.User, error)

	ListTasks(ctx context.Context, userID int64) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	SetTaskCompleted(ctx context.Context, taskID int64, completed bool) error

	ListHistory(ctx context.Context, userID int64) ([]models.HistoryItem, error)
	AppendHistory(ctx context.Context, item models.HistoryItem) error
}
