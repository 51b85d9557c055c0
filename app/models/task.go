package models

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is a planner entry owned by exactly one user. Past-due deadlines are
// kept visible; rows are never hard-deleted.
type Task struct {
	ID        int64    `json:"id" db:"id"`
	UserID    int64    `json:"user_id" db:"user_id"`
	Name      string   `json:"name" db:"name"`
	Subject   string   `json:"subject" db:"subject"`
	Deadline  string   `json:"deadline" db:"deadline"` // "YYYY-MM-DD"
	Priority  Priority `json:"priority" db:"priority"`
	Completed bool     `json:"completed" db:"completed"`
}
