// Package domain holds the reindex job types and ports
package domain

import "time"

// Status is the reindex job lifecycle state
type Status string

// Job lifecycle: pending -> running -> completed | failed | cancelled
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Cancellable reports whether a job in this status may still be cancelled
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusRunning
}

// Terminal reports whether this status ends the job lifecycle
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Modes a reindex job can run in
const (
	ModeUpsert  = "upsert"
	ModeReplace = "replace"
)

// ReindexJob tracks one reindexing run over a set of services and entity types
type ReindexJob struct {
	ID            string     `json:"id"`
	Domains       []string   `json:"domains,omitempty"`
	EntityTypes   []string   `json:"entity_types,omitempty"`
	Providers     []string   `json:"providers,omitempty"`
	Mode          string     `json:"mode"`
	UpdatedAfter  *time.Time `json:"updated_after,omitempty"`
	UpdatedBefore *time.Time `json:"updated_before,omitempty"`
	Status        Status     `json:"status"`
	Progress      float64    `json:"progress"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// CreateInput is the payload for creating a reindex job
type CreateInput struct {
	Domains       []string   `json:"domains,omitempty" validate:"omitempty,dive,min=1"`
	EntityTypes   []string   `json:"entity_types,omitempty" validate:"omitempty,dive,min=1"`
	Providers     []string   `json:"providers,omitempty" validate:"omitempty,dive,min=1"`
	Mode          string     `json:"mode,omitempty" validate:"omitempty,oneof=upsert replace" example:"upsert"`
	UpdatedAfter  *time.Time `json:"updated_after,omitempty"`
	UpdatedBefore *time.Time `json:"updated_before,omitempty"`
}

// ListQuery selects a page of reindex jobs
type ListQuery struct {
	Page     int `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize int `json:"page_size,omitempty" validate:"omitempty,min=1,max=200"`
}

// StatusView is the trimmed status response for job polling
type StatusView struct {
	ID           string     `json:"id"`
	Status       Status     `json:"status"`
	Progress     float64    `json:"progress"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}
