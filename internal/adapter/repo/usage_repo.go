package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"captioner/internal/domain"
	"captioner/internal/infra"
	"captioner/internal/sqlinline"
)

// UsageRepositoryPG writes the caption usage audit log through the marker-checked runner.
type UsageRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewUsageRepository(sql infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{sql: sql}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (r *UsageRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QCreateUsageEvents); err != nil {
		return fmt.Errorf("create usage table: %w", err)
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QCreateUsageEventsEmailIndex); err != nil {
		return fmt.Errorf("create usage index: %w", err)
	}
	return nil
}

func (r *UsageRepositoryPG) Record(ctx context.Context, event domain.UsageEvent) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertUsageEvent,
		event.Email,
		event.RequestID,
		event.Outcome,
		event.Success(),
		event.Count,
		event.Captions,
		event.ImageFound,
		event.Provider,
		int(event.Latency.Milliseconds()),
	)
	if err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

// Summary counts the successful generations for email recorded at or after since.
func (r *UsageRepositoryPG) Summary(ctx context.Context, email string, since time.Time) (domain.UsageSummary, error) {
	var summary domain.UsageSummary
	err := r.sql.QueryRow(ctx, sqlinline.QSummarizeUsageSince, email, since.UTC()).
		Scan(&summary.Generations, &summary.Captions)
	if err != nil {
		return domain.UsageSummary{}, fmt.Errorf("summarize usage: %w", err)
	}
	return summary, nil
}

// NopUsageRepository is used when no database is configured.
type NopUsageRepository struct {
	Logger *zerolog.Logger
}

func (n NopUsageRepository) Record(ctx context.Context, event domain.UsageEvent) error {
	if n.Logger != nil {
		n.Logger.Debug().
			Str("request_id", event.RequestID).
			Str("outcome", event.Outcome).
			Int("captions", event.Captions).
			Bool("image_found", event.ImageFound).
			Dur("latency", event.Latency).
			Msg("usage event")
	}
	return nil
}

func (n NopUsageRepository) Summary(ctx context.Context, email string, since time.Time) (domain.UsageSummary, error) {
	return domain.UsageSummary{}, domain.ErrUsageUnavailable
}

var (
	_ domain.UsageRepository = (*UsageRepositoryPG)(nil)
	_ domain.UsageRepository = NopUsageRepository{}
)
