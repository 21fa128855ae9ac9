// Package time has small time helpers shared across packages
package time

import "time"

// Ptr returns a pointer to t
func Ptr(t time.Time) *time.Time { return &t }

// NowUTC returns the current time truncated to UTC
func NowUTC() time.Time { return time.Now().UTC() }

// FromPtr returns the value of t or the zero time if t is nil
func FromPtr(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
