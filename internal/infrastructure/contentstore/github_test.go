package contentstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuotePress/internal/config"
	"QuotePress/internal/domain"
)

func newTestGitHubStore(t *testing.T, handler http.Handler) *GitHubStore {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := gh.NewClient(srv.Client())
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base

	return NewGitHubStoreWithClient(client, config.GitHubStoreConfig{Owner: "me", Repo: "site", Branch: "main"}, nil)
}

func TestGitHubStoreGet(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/me/site/contents/index.html", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		_, _ = w.Write([]byte(`{"type":"file","encoding":"base64","content":"PGgxPmhpPC9oMT4=","sha":"abc123","path":"index.html"}`))
	})
	mux.HandleFunc("/repos/me/site/contents/missing.html", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	store := newTestGitHubStore(t, mux)

	content, sha, err := store.Get(context.Background(), "/index.html")
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", string(content))
	assert.Equal(t, "abc123", sha)

	_, _, err = store.Get(context.Background(), "missing.html")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGitHubStorePutCreatesAndUpdates(t *testing.T) {
	t.Parallel()

	type putBody struct {
		Message string  `json:"message"`
		Content string  `json:"content"`
		SHA     *string `json:"sha"`
		Branch  string  `json:"branch"`
	}

	var bodies []putBody
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/me/site/contents/posts/a.html", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body putBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{"sha":"new"},"commit":{"sha":"c1"}}`))
	})

	store := newTestGitHubStore(t, mux)

	require.NoError(t, store.Put(context.Background(), "posts/a.html", []byte("<p>one</p>"), "", "Add post"))
	require.NoError(t, store.Put(context.Background(), "posts/a.html", []byte("<p>two</p>"), "old-sha", "Update post"))

	require.Len(t, bodies, 2)
	assert.Nil(t, bodies[0].SHA)
	assert.Equal(t, "Add post", bodies[0].Message)
	assert.Equal(t, "main", bodies[0].Branch)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("<p>one</p>")), bodies[0].Content)

	require.NotNil(t, bodies[1].SHA)
	assert.Equal(t, "old-sha", *bodies[1].SHA)
}

func TestGitHubStorePutConflict(t *testing.T) {
	t.Parallel()

	store := newTestGitHubStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"sha does not match"}`))
	}))

	err := store.Put(context.Background(), "index.html", []byte("x"), "stale", "Update index")
	assert.ErrorContains(t, err, "409")
	assert.ErrorContains(t, err, "sha does not match")
}
