// Package clock abstracts the effective-date source so pricing tests can
// pin time.
package clock

import (
	"context"
	"time"
)

type Clock interface {
	Now(ctx context.Context) time.Time
}

// System is the production clock: UTC wall time.
type System struct{}

func (System) Now(context.Context) time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now(context.Context) time.Time { return f.At }
