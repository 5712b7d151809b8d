package models

import (
	"time"
)

// Work request lifecycle statuses. Rows start pending; admin approval
// moves them to completed, admin decline to rejected. No transition is
// defined out of in_progress, completed, or rejected.
const (
	RequestPending    = "pending"
	RequestInProgress = "in_progress"
	RequestCompleted  = "completed"
	RequestRejected   = "rejected"
)

// Request is a unit of admin-actionable work. UserID is nullable because
// requests may be loaded outside any account context.
type Request struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"userId"`
	Status    string    `gorm:"not null;default:pending;index" json:"status"`
	Type      *string   `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// StatusCounts aggregates requests by lifecycle status. All four keys are
// always present so dashboards never have to zero-fill.
type StatusCounts struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Rejected   int64 `json:"rejected"`
}
