// Package domain defines the settings ports and types
package domain

import (
	"context"
	"time"
)

// Setting is one persisted key value pair
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReaderPort reads runtime settings with defaults for unset keys
type ReaderPort interface {
	Get(ctx context.Context, key string) (Setting, error)
	Bool(ctx context.Context, key string, def bool) bool
	String(ctx context.Context, key string, def string) string
}

// WriterPort mutates runtime settings
type WriterPort interface {
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
