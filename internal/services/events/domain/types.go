// Package domain holds the event types and ports
package domain

import "time"

// Event is one consumed or emitted event record.
// Shape follows the CloudEvents attributes plus routing metadata
type Event struct {
	ID        string            `json:"id"`
	Source    string            `json:"source"`
	Type      string            `json:"type"`
	Subject   string            `json:"subject"`
	Data      map[string]any    `json:"data,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	Privy     bool              `json:"privy"`
	UserID    string            `json:"user_id,omitempty"`
	ProjectID string            `json:"project_id,omitempty"`
	Time      time.Time         `json:"time"`
	CreatedAt time.Time         `json:"created_at"`
}

// IngestInput is the payload for ingesting an inbound event
type IngestInput struct {
	Source    string            `json:"source" validate:"required,min=1,max=300" example:"/petstore"`
	Type      string            `json:"type" validate:"required,min=1,max=300" example:"com.petstore.pets.created"`
	Subject   string            `json:"subject" validate:"required,min=1,max=500" example:"/pets/42"`
	Data      map[string]any    `json:"data,omitempty"`
	Tags      []string          `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
	Labels    map[string]string `json:"labels,omitempty"`
	Privy     bool              `json:"privy,omitempty"`
	UserID    string            `json:"user_id,omitempty" validate:"omitempty,max=100"`
	ProjectID string            `json:"project_id,omitempty" validate:"omitempty,max=100"`
	Time      *time.Time        `json:"time,omitempty"`
}

// ListQuery filters stored events.
// Privy events are excluded unless IncludePrivy is set
type ListQuery struct {
	Tags         []string          `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
	Labels       map[string]string `json:"labels,omitempty"`
	IncludePrivy bool              `json:"include_privy,omitempty"`
	Page         int               `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize     int               `json:"page_size,omitempty" validate:"omitempty,min=1,max=200"`
}
