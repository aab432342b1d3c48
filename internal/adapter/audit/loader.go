package audit

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

// BatchLoader is the sink the Loader decorates.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.MineRecord) error
}

// Loader records each batch in the audit store after the wrapped loader has
// accepted it. Audit failures are logged and do not fail the batch.
type Loader struct {
	next   BatchLoader
	store  *Store
	logger *slog.Logger
}

// NewLoader wraps next so every loaded batch is audited.
func NewLoader(next BatchLoader, store *Store, logger *slog.Logger) *Loader {
	return &Loader{next: next, store: store, logger: logger}
}

func (l *Loader) LoadBatch(ctx context.Context, records []domain.MineRecord) error {
	if err := l.next.LoadBatch(ctx, records); err != nil {
		return err
	}
	if err := l.store.Record(ctx, records); err != nil {
		l.logger.Warn("audit write failed", "error", err, "batch_size", len(records), "run_id", l.store.RunID())
	}
	return nil
}
