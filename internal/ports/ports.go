package ports

import (
	"context"
	"database/sql"
	"time"

	"ShortageWatcher/internal/domain"
	"ShortageWatcher/internal/report"
)

// ConnectionProvider hands out the shared database handle, connecting on first use.
type ConnectionProvider interface {
	DB(ctx context.Context) (*sql.DB, error)
	Close() error
}

// ShortageSource runs a report's shortage query and returns its rows.
type ShortageSource interface {
	FetchShortages(ctx context.Context, rep report.Report) ([]domain.ShortageRow, error)
}

// Notifier posts a text message to the chat webhook.
type Notifier interface {
	Publish(ctx context.Context, text string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
