package models

import "time"

const (
	HistoryTypeAssignment = "assignment"
	HistoryTypeResearch   = "research"
	HistoryTypeExplainer  = "explainer"
)

// HistoryItem is an append-only record of one AI interaction.
type HistoryItem struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Query     string    `json:"query" db:"query"`
	Response  string    `json:"response" db:"response"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
