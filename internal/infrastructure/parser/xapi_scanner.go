package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"QuotePress/internal/config"
	"QuotePress/internal/domain"
	"QuotePress/internal/scanner"
)

// XAPIScanner queries the official v2 API with a bearer token.
type XAPIScanner struct {
	client     *http.Client
	endpoint   string
	token      string
	maxResults int
	logger     *slog.Logger
}

var _ scanner.Strategy = (*XAPIScanner)(nil)

// NewXAPIScanner configures the API strategy; maxResults is clamped to the API's 5..100 window.
func NewXAPIScanner(cfg config.XAPIConfig, client *http.Client, log *slog.Logger) *XAPIScanner {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	maxResults := cfg.MaxResults
	switch {
	case maxResults <= 0:
		maxResults = 10
	case maxResults < 5:
		maxResults = 5
	case maxResults > 100:
		maxResults = 100
	}
	return &XAPIScanner{
		client:     client,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		token:      cfg.BearerToken,
		maxResults: maxResults,
		logger:     log,
	}
}

// Name identifies the strategy inside the registry.
func (x *XAPIScanner) Name() string {
	return "xapi"
}

type xUserResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type xTweet struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
}

type xTimelineResponse struct {
	Data     []xTweet `json:"data"`
	Includes struct {
		Tweets []xTweet `json:"tweets"`
	} `json:"includes"`
}

// Attempt resolves the user id and reads the recent timeline with quoted posts expanded.
func (x *XAPIScanner) Attempt(ctx context.Context, q scanner.Query) ([]domain.CandidateItem, error) {
	if x.token == "" {
		return nil, fmt.Errorf("%w: no bearer token configured", domain.ErrSourceUnavailable)
	}

	var user xUserResponse
	if err := x.getJSON(ctx, "/2/users/by/username/"+url.PathEscape(q.Username), nil, &user); err != nil {
		return nil, err
	}
	if user.Data.ID == "" {
		return nil, fmt.Errorf("%w: user %s not found", domain.ErrSourceUnavailable, q.Username)
	}

	params := url.Values{}
	params.Set("max_results", strconv.Itoa(x.maxResults))
	params.Set("tweet.fields", "referenced_tweets")
	params.Set("expansions", "referenced_tweets.id")

	var timeline xTimelineResponse
	if err := x.getJSON(ctx, "/2/users/"+user.Data.ID+"/tweets", params, &timeline); err != nil {
		return nil, err
	}

	included := make(map[string]string, len(timeline.Includes.Tweets))
	for _, t := range timeline.Includes.Tweets {
		included[t.ID] = t.Text
	}

	var collected []domain.CandidateItem
	for _, tweet := range timeline.Data {
		var quoted string
		for _, ref := range tweet.ReferencedTweets {
			if ref.Type == "quoted" {
				quoted = included[ref.ID]
				if quoted == "" {
					quoted = ref.ID
				}
				break
			}
		}
		text := scanner.CollapseSpace(tweet.Text)
		if !scanner.Qualifies(text, quoted, q) {
			continue
		}
		collected = append(collected, domain.CandidateItem{
			ID:         tweet.ID,
			Text:       text,
			QuotedText: scanner.CollapseSpace(quoted),
			URL:        scanner.StatusURL(q.Username, tweet.ID),
			Source:     x.Name(),
		})
	}

	debug(x.logger, "api timeline parsed", "tweets", len(timeline.Data), "qualifying", len(collected))
	return collected, nil
}

func (x *XAPIScanner) getJSON(ctx context.Context, path string, params url.Values, target any) error {
	endpoint := x.endpoint + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+x.token)

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: api returned %s", domain.ErrSourceUnavailable, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrSourceUnavailable, err)
	}
	return nil
}
