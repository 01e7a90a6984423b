package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuotePress/internal/domain"
	"QuotePress/internal/ports"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestJSONLedgerAppendAndReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "processed.json")
	ledger := NewJSONLedger(path)
	ledger.now = fixedClock

	records, err := ledger.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, ledger.Append(context.Background(), "111"))
	require.NoError(t, ledger.Append(context.Background(), "222"))
	require.NoError(t, ledger.Append(context.Background(), "111"))

	reloaded, err := NewJSONLedger(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, reloaded, 2)
	assert.Equal(t, "111", reloaded[0].ID)
	assert.Equal(t, "222", reloaded[1].ID)
	assert.True(t, reloaded[0].ProcessedAt.Equal(fixedClock()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {")
	assert.Contains(t, string(raw), `"processed_at": "2026-03-01T12:00:00Z"`)
}

func TestJSONLedgerKeepsLegacyEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "processed.json")
	legacy := `["900", {"id": "901", "processed_at": "2024-05-01T10:00:00.123456"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	ledger := NewJSONLedger(path)
	ledger.now = fixedClock
	require.NoError(t, ledger.Append(context.Background(), "902"))

	records, err := ledger.Load(context.Background())
	require.NoError(t, err)
	ids := domain.ProcessedIDs(records)
	assert.True(t, ids["900"])
	assert.True(t, ids["901"])
	assert.True(t, ids["902"])
	assert.Len(t, records, 3)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"900\",")
	assert.Contains(t, string(raw), `"processed_at": "2024-05-01T10:00:00.123456"`)
}

func TestJSONLedgerCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "processed.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONLedger(path).Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, NewJSONLedger(path).Append(context.Background(), "1"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestSQLiteLedger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "ledger.db")

	ledger, err := OpenSQLiteLedger(ctx, dsn)
	require.NoError(t, err)
	ledger.now = fixedClock

	var _ ports.Ledger = ledger
	require.NoError(t, ledger.Append(ctx, "b"))
	require.NoError(t, ledger.Append(ctx, "a"))
	require.NoError(t, ledger.Append(ctx, "b"))
	require.NoError(t, ledger.Close())

	reopened, err := OpenSQLiteLedger(ctx, dsn)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "a", records[1].ID)
	assert.True(t, records[0].ProcessedAt.Equal(fixedClock()))
}
