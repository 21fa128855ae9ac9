// Package domain holds the registry types and ports
package domain

import "time"

// DomainService is one registered upstream service owning a set of domain prefixes
type DomainService struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Domains           []string   `json:"domains"`
	BaseURL           string     `json:"base_url"`
	IndexesPathPrefix string     `json:"indexes_path_prefix,omitempty"`
	ExcludedEntities  []string   `json:"excluded_entities,omitempty"`
	Enabled           bool       `json:"enabled"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

// Excludes reports whether entityType is excluded from indexing for this service
func (d DomainService) Excludes(entityType string) bool {
	for _, e := range d.ExcludedEntities {
		if e == entityType {
			return true
		}
	}
	return false
}

// CreateInput is the payload for registering a domain service
type CreateInput struct {
	Name              string   `json:"name" validate:"required,min=1,max=200" example:"petstore"`
	Domains           []string `json:"domains" validate:"required,min=1,dive,min=1" example:"com.petstore"`
	BaseURL           string   `json:"base_url" validate:"required,url" example:"https://petstore.internal"`
	IndexesPathPrefix string   `json:"indexes_path_prefix,omitempty" validate:"omitempty,max=200" example:"indexes"`
	ExcludedEntities  []string `json:"excluded_entities,omitempty" validate:"omitempty,dive,min=1"`
	Enabled           *bool    `json:"enabled,omitempty"`
}

// UpdateInput is the payload for mutating a domain service, nil fields are untouched
type UpdateInput struct {
	Name              *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Domains           *[]string `json:"domains,omitempty" validate:"omitempty,min=1,dive,min=1"`
	BaseURL           *string   `json:"base_url,omitempty" validate:"omitempty,url"`
	IndexesPathPrefix *string   `json:"indexes_path_prefix,omitempty" validate:"omitempty,max=200"`
	ExcludedEntities  *[]string `json:"excluded_entities,omitempty" validate:"omitempty,dive,min=1"`
	Enabled           *bool     `json:"enabled,omitempty"`
}

// ListQuery selects a page of domain services
type ListQuery struct {
	Page     int `json:"page,omitempty" validate:"omitempty,min=1" example:"1"`
	PageSize int `json:"page_size,omitempty" validate:"omitempty,min=1,max=200" example:"50"`
}
