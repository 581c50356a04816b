// Package period guards postings against closed accounting periods.
package period

import (
	"context"
	"time"

	"kardex/internal/core/apperror"
)

// Policy decides whether a posting date is acceptable.
type Policy interface {
	// CanPost checks if an entry can be posted with the given date.
	CanPost(ctx context.Context, date time.Time) error
}

// StrictPolicy forbids postings dated before the closed boundary.
type StrictPolicy struct {
	closedUntil time.Time
}

// NewStrictPolicy creates a policy that rejects dates before closedUntil.
func NewStrictPolicy(closedUntil time.Time) *StrictPolicy {
	return &StrictPolicy{closedUntil: closedUntil}
}

func (p *StrictPolicy) CanPost(ctx context.Context, date time.Time) error {
	if date.Before(p.closedUntil) {
		return apperror.NewPeriodClosed(p.closedUntil.Format("2006-01"))
	}
	return nil
}

// OpenPolicy accepts any posting date.
type OpenPolicy struct{}

// NewOpenPolicy creates a policy without period restrictions.
func NewOpenPolicy() *OpenPolicy { return &OpenPolicy{} }

func (p *OpenPolicy) CanPost(ctx context.Context, date time.Time) error { return nil }
