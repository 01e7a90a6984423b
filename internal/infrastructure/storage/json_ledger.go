package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"QuotePress/internal/domain"
	"QuotePress/internal/ports"
)

// JSONLedger keeps processed records in a single JSON array on disk.
type JSONLedger struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

var _ ports.Ledger = (*JSONLedger)(nil)

// NewJSONLedger points the ledger at a file. The file is created on first append.
func NewJSONLedger(path string) *JSONLedger {
	return &JSONLedger{path: path, now: time.Now}
}

// Load returns all records in file order. A missing file is an empty ledger.
func (l *JSONLedger) Load(_ context.Context) ([]domain.ProcessedRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// Append records id with the current time. Known ids are left untouched.
func (l *JSONLedger) Append(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.ID == id {
			return nil
		}
	}

	records = append(records, domain.ProcessedRecord{ID: id, ProcessedAt: l.now().UTC()})
	return l.write(records)
}

func (l *JSONLedger) read() ([]domain.ProcessedRecord, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var records []domain.ProcessedRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", l.path, err)
	}
	return records, nil
}

// write replaces the file through a temp file and rename so a crash never leaves half a ledger.
func (l *JSONLedger) write(records []domain.ProcessedRecord) error {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
