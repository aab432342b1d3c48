package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

var processedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func normalizedRecord(id string, fields map[string]string) domain.MineRecord {
	rec := domain.EnrichMineRecord(domain.MineRecord{ID: id, MineName: fields[domain.FieldMineName], Fields: fields}, domain.NewNormalizer(nil))
	rec.ProcessedAt = processedAt
	return rec
}

func TestStore_Record(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	rec := normalizedRecord("eleonore-1", map[string]string{
		domain.FieldMineName: "Éléonore",
		"Produktionsrate":    "ca. 7,8 t/Jahr",
		"Fläche der Mine":    "12,5 km²",
	})
	require.NoError(t, s.Record(ctx, []domain.MineRecord{rec}))

	entries, err := s.Conversions(ctx, "eleonore-1")
	require.NoError(t, err)
	require.Len(t, entries, len(rec.Conversions))

	byField := make(map[string]Entry, len(entries))
	for _, e := range entries {
		assert.Equal(t, s.RunID(), e.RunID)
		assert.Equal(t, "Éléonore", e.MineName)
		assert.True(t, processedAt.Equal(e.ProcessedAt))
		byField[e.Field] = e
	}

	area, ok := byField["Fläche der Mine"]
	require.True(t, ok)
	assert.Equal(t, domain.CategoryArea, area.Category)
	assert.Equal(t, domain.RoleGeneral, area.Role)
	assert.Equal(t, domain.OutcomeFullMatch, area.Outcome)
	assert.InDelta(t, 12.5, area.Value, 1e-9)
	assert.Equal(t, domain.UnitSquareKm, area.Unit)
	assert.Equal(t, "12,5 km²", area.RawText)
	assert.NotEmpty(t, area.Provenance)
}

func TestStore_OutcomeCounts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	records := []domain.MineRecord{
		normalizedRecord("a", map[string]string{"Produktionsrate": "1000 t/Jahr"}),
		normalizedRecord("b", map[string]string{"Produktionsrate": "keine Angabe"}),
	}
	require.NoError(t, s.Record(ctx, records))

	counts, err := s.OutcomeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.OutcomeFullMatch])
	assert.Equal(t, 1, counts[domain.OutcomeNoMatch])
}

func TestStore_RunsAreSeparate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	ctx := context.Background()
	rec := normalizedRecord("a", map[string]string{"Produktionsrate": "500 t/Jahr"})

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Record(ctx, []domain.MineRecord{rec}))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	assert.NotEqual(t, first.RunID(), second.RunID())

	counts, err := second.OutcomeCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	entries, err := second.Conversions(ctx, "a")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, first.RunID(), entries[0].RunID)
}

func TestStore_ConversionsUnknownRecord(t *testing.T) {
	s := openStore(t)
	entries, err := s.Conversions(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type stubLoader struct {
	err     error
	batches int
}

func (l *stubLoader) LoadBatch(_ context.Context, _ []domain.MineRecord) error {
	l.batches++
	return l.err
}

func TestLoader_AuditsAfterLoad(t *testing.T) {
	s := openStore(t)
	next := &stubLoader{}
	l := NewLoader(next, s, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := normalizedRecord("a", map[string]string{"Produktionsrate": "500 t/Jahr"})
	require.NoError(t, l.LoadBatch(context.Background(), []domain.MineRecord{rec}))
	assert.Equal(t, 1, next.batches)

	entries, err := s.Conversions(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoader_LoadErrorSkipsAudit(t *testing.T) {
	s := openStore(t)
	next := &stubLoader{err: errors.New("broker down")}
	l := NewLoader(next, s, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := normalizedRecord("a", map[string]string{"Produktionsrate": "500 t/Jahr"})
	err := l.LoadBatch(context.Background(), []domain.MineRecord{rec})
	require.EqualError(t, err, "broker down")

	entries, err := s.Conversions(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
