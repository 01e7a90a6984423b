package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"QuotePress/internal/domain"
	"QuotePress/internal/scanner"
)

// ManualScanner reads a hand-curated list of posts. Entries bypass qualification:
// whoever wrote the file already chose them.
type ManualScanner struct {
	path   string
	logger *slog.Logger
}

var _ scanner.Strategy = (*ManualScanner)(nil)

// NewManualScanner points the strategy at a JSON file.
func NewManualScanner(path string, log *slog.Logger) *ManualScanner {
	return &ManualScanner{path: path, logger: log}
}

// Name identifies the strategy inside the registry.
func (m *ManualScanner) Name() string {
	return "manual"
}

type manualEntry struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	QuotedText string `json:"quoted_text"`
	URL        string `json:"url"`
}

// Attempt loads the file. A missing file yields no items and no error.
func (m *ManualScanner) Attempt(_ context.Context, q scanner.Query) ([]domain.CandidateItem, error) {
	raw, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			debug(m.logger, "manual file absent", "path", m.path)
			return nil, nil
		}
		return nil, fmt.Errorf("read manual file: %w", err)
	}

	var entries []manualEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode manual file %s: %w", m.path, err)
	}

	items := make([]domain.CandidateItem, 0, len(entries))
	for i, entry := range entries {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			if m.logger != nil {
				m.logger.Warn("manual entry without id dropped", "path", m.path, "index", i)
			}
			continue
		}
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			text = fmt.Sprintf("%s manual entry %s", q.Hashtag, id)
		}
		link := entry.URL
		if link == "" {
			link = scanner.StatusURL(q.Username, id)
		}
		items = append(items, domain.CandidateItem{
			ID:         id,
			Text:       text,
			QuotedText: strings.TrimSpace(entry.QuotedText),
			URL:        link,
			Source:     m.Name(),
		})
	}
	return items, nil
}
