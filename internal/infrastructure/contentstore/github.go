package contentstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"QuotePress/internal/config"
	"QuotePress/internal/domain"
	"QuotePress/internal/ports"
)

const (
	defaultTimeout = 30 * time.Second

	// proactiveRate keeps writes well under the authenticated quota.
	proactiveRate = 1.2
)

// GitHubStore keeps site files in a repository through the contents API.
// The version token is the blob SHA.
type GitHubStore struct {
	gh      *gh.Client
	owner   string
	repo    string
	branch  string
	limiter *rate.Limiter
}

var _ ports.ContentStore = (*GitHubStore)(nil)

// NewGitHubStore authenticates with a static token.
func NewGitHubStore(ctx context.Context, cfg config.GitHubStoreConfig) *GitHubStore {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = defaultTimeout

	return NewGitHubStoreWithClient(gh.NewClient(tc), cfg, rate.NewLimiter(rate.Limit(proactiveRate), 1))
}

// NewGitHubStoreWithClient wires a prepared go-github client and limiter.
func NewGitHubStoreWithClient(client *gh.Client, cfg config.GitHubStoreConfig, limiter *rate.Limiter) *GitHubStore {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &GitHubStore{
		gh:      client,
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		branch:  cfg.Branch,
		limiter: limiter,
	}
}

// Get reads a file from the configured branch.
func (s *GitHubStore) Get(ctx context.Context, path string) ([]byte, string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: s.branch}
	file, _, resp, err := s.gh.Repositories.GetContents(ctx, s.owner, s.repo, cleanPath(path), opts)
	if err != nil {
		if isGitHubNotFound(resp, err) {
			return nil, "", fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return nil, "", wrapGitHubError(err, "get contents")
	}
	if file == nil {
		return nil, "", fmt.Errorf("%s is a directory, not a file", path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, "", fmt.Errorf("decode content: %w", err)
	}
	return []byte(content), file.GetSHA(), nil
}

// Put creates the file when version is empty, otherwise updates the blob with that SHA.
func (s *GitHubStore) Put(ctx context.Context, path string, content []byte, version, message string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		Content: content,
	}
	if s.branch != "" {
		opts.Branch = gh.Ptr(s.branch)
	}

	var err error
	if version == "" {
		_, _, err = s.gh.Repositories.CreateFile(ctx, s.owner, s.repo, cleanPath(path), opts)
	} else {
		opts.SHA = gh.Ptr(version)
		_, _, err = s.gh.Repositories.UpdateFile(ctx, s.owner, s.repo, cleanPath(path), opts)
	}
	if err != nil {
		return wrapGitHubError(err, "write contents")
	}
	return nil
}

func isGitHubNotFound(resp *gh.Response, err error) bool {
	if resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound {
		return true
	}
	var ghErr *gh.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

func wrapGitHubError(err error, operation string) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return fmt.Errorf("%s: github returned %d: %s", operation, ghErr.Response.StatusCode, ghErr.Message)
	}
	return fmt.Errorf("%s: %w", operation, err)
}

func cleanPath(path string) string {
	return strings.TrimLeft(path, "/")
}
