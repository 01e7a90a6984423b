package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CandidateItem is a post fetched from one of the source strategies.
type CandidateItem struct {
	ID         string
	Text       string
	QuotedText string
	URL        string
	Source     string
}

// Topic returns the text worth researching: the quoted post when present.
func (c CandidateItem) Topic() string {
	if strings.TrimSpace(c.QuotedText) != "" {
		return c.QuotedText
	}
	return c.Text
}

// legacyStampLayouts covers timestamps written without a zone offset.
var legacyStampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ProcessedRecord marks an item that went through the whole pipeline.
type ProcessedRecord struct {
	ID          string
	ProcessedAt time.Time

	// bare and rawStamp hold the decoded shape so a rewrite reproduces it.
	bare     bool
	rawStamp string
}

type processedRecordJSON struct {
	ID          string `json:"id"`
	ProcessedAt string `json:"processed_at,omitempty"`
}

// MarshalJSON writes a decoded record back in the shape and stamp text it was read with.
func (r ProcessedRecord) MarshalJSON() ([]byte, error) {
	if r.bare {
		return json.Marshal(r.ID)
	}
	stamp := r.rawStamp
	if stamp == "" && !r.ProcessedAt.IsZero() {
		stamp = r.ProcessedAt.Format(time.RFC3339)
	}
	return json.Marshal(processedRecordJSON{ID: r.ID, ProcessedAt: stamp})
}

// UnmarshalJSON accepts both {"id": ..., "processed_at": ...} and a bare id string.
func (r *ProcessedRecord) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*r = ProcessedRecord{ID: bare, bare: true}
		return nil
	}

	var obj processedRecordJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("processed record: %w", err)
	}

	*r = ProcessedRecord{ID: obj.ID, rawStamp: obj.ProcessedAt}
	if obj.ProcessedAt == "" {
		return nil
	}
	for _, layout := range legacyStampLayouts {
		if ts, err := time.Parse(layout, obj.ProcessedAt); err == nil {
			r.ProcessedAt = ts
			return nil
		}
	}
	return nil
}

// ProcessedIDs builds the membership set used to skip already handled items.
func ProcessedIDs(records []ProcessedRecord) map[string]bool {
	ids := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.ID != "" {
			ids[rec.ID] = true
		}
	}
	return ids
}

// SourceReference is one research hit handed to the composer.
type SourceReference struct {
	Title   string
	URL     string
	Snippet string
}

// Markdown renders the reference as a Markdown link.
func (s SourceReference) Markdown() string {
	return fmt.Sprintf("[%s](%s)", s.Title, s.URL)
}

// ComposedArticle is the generated long-form text.
type ComposedArticle struct {
	Title      string
	Body       string
	References []string
}

// Paragraphs splits the body on blank lines.
func (a ComposedArticle) Paragraphs() []string {
	var (
		out     []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(a.Body, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimRight(line, " \t\r"))
	}
	flush()
	return out
}

// PublishResult reports where a published article lives.
type PublishResult struct {
	Location string
}

// RunReport summarises one pipeline execution.
type RunReport struct {
	RunID     string
	Source    string
	Fetched   int
	New       int
	Deferred  int
	Published int
	Failed    int
	Locations []string
}
