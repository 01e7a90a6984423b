package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuotePress/internal/config"
)

func TestCleanQuery(t *testing.T) {
	t.Parallel()

	got := CleanQuery("Look at this #blogthis https://t.co/abc @nasa #Space   rover", "#BlogThis")
	assert.Equal(t, "Look at this nasa Space rover", got)

	assert.Empty(t, CleanQuery("#BlogThis https://t.co/x", "#BlogThis"))

	long := strings.Repeat("é", 200)
	assert.Len(t, []rune(CleanQuery(long, "")), 150)
}

func TestResearchBuildsReferences(t *testing.T) {
	t.Parallel()

	var query atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.Query())
		_, _ = w.Write([]byte(`{
		  "AbstractSource": "",
		  "AbstractURL": "https://en.wikipedia.org/wiki/Battery",
		  "AbstractText": "` + strings.Repeat("a", 400) + `",
		  "RelatedTopics": [
		    {"FirstURL": "https://duckduckgo.com/Lithium", "Text": "Lithium - a soft metal"},
		    {"Name": "Group", "Topics": []},
		    {"FirstURL": "https://duckduckgo.com/Cell", "Text": "Cell - electrochemical"},
		    {"FirstURL": "https://duckduckgo.com/Anode", "Text": "Anode"},
		    {"FirstURL": "https://duckduckgo.com/Fifth", "Text": "Fifth - ignored"}
		  ]
		}`))
	}))
	defer srv.Close()

	r := NewDuckDuckGo(config.ResearchConfig{Endpoint: srv.URL}, "#BlogThis", srv.Client(), nil)
	refs := r.Research(context.Background(), "battery chemistry #BlogThis")

	require.Len(t, refs, 4)
	assert.Equal(t, "Source", refs[0].Title)
	assert.Len(t, refs[0].Snippet, 300)
	assert.Equal(t, "Lithium", refs[1].Title)
	assert.Equal(t, "Lithium - a soft metal", refs[1].Snippet)
	assert.Equal(t, "Cell", refs[2].Title)
	assert.Equal(t, "Anode", refs[3].Title)

	params, ok := query.Load().(url.Values)
	require.True(t, ok)
	assert.Equal(t, []string{"battery chemistry"}, params["q"])
	assert.Equal(t, []string{"json"}, params["format"])
	assert.Equal(t, []string{"1"}, params["no_html"])
	assert.Equal(t, []string{"1"}, params["skip_disambig"])
}

func TestResearchSwallowsFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewDuckDuckGo(config.ResearchConfig{Endpoint: srv.URL}, "#BlogThis", srv.Client(), nil)
	assert.Empty(t, r.Research(context.Background(), "anything"))
	assert.Empty(t, r.Research(context.Background(), "#BlogThis"))
	assert.EqualValues(t, 1, calls.Load())
}
