package domain

import (
	"context"
	"time"
)

// UsageRepository records one row per caption generation request and
// summarises a user's recent successful generations.
type UsageRepository interface {
	Record(ctx context.Context, event UsageEvent) error
	Summary(ctx context.Context, email string, since time.Time) (UsageSummary, error)
}
