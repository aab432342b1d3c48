package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
	"github.com/couchcryptid/mine-data-normalizer/internal/observability"
)

// MineTransformer implements Transformer: it parses the raw record,
// normalizes its measurement fields and optionally verifies the location by
// reverse geocoding.
type MineTransformer struct {
	normalizer *domain.Normalizer
	geocoder   domain.Geocoder
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewTransformer creates a MineTransformer. Pass a nil geocoder to disable
// geocode verification.
func NewTransformer(normalizer *domain.Normalizer, geocoder domain.Geocoder, metrics *observability.Metrics, logger *slog.Logger) *MineTransformer {
	if normalizer == nil {
		normalizer = domain.NewNormalizer(nil)
	}
	return &MineTransformer{
		normalizer: normalizer,
		geocoder:   geocoder,
		metrics:    metrics,
		logger:     logger,
	}
}

func (t *MineTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.MineRecord, error) {
	record, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.MineRecord{}, err
	}

	record = domain.EnrichMineRecord(record, t.normalizer)
	for _, c := range record.Conversions {
		t.metrics.ObserveConversion(string(c.Result.Category), string(c.Result.Outcome), c.Result.Confidence)
		if !c.Result.HasValue() {
			t.logger.Debug("field not converted",
				"record_id", record.ID,
				"field", c.Field,
				"outcome", c.Result.Outcome,
				"provenance", c.Result.Provenance,
			)
		}
	}

	return domain.EnrichWithGeocoding(ctx, record, t.geocoder, t.logger), nil
}
