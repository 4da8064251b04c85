package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingJSON = `{
	"data": {
		"children": [
			{
				"data": {
					"id": "abc123",
					"title": "[Offering] 1BR in East Village - $2400/mo",
					"selftext": "Great light, close to the L.",
					"author": "someuser",
					"permalink": "/r/NYCapartments/comments/abc123/offering_1br/",
					"link_flair_text": "Offering",
					"created_utc": 1756400000,
					"score": 12,
					"num_comments": 3,
					"is_self": true
				}
			},
			{
				"data": {
					"id": "def456",
					"title": "Looking for a studio",
					"author": "otheruser",
					"permalink": "/r/NYCapartments/comments/def456/looking/",
					"created_utc": 1756400100,
					"is_self": true
				}
			}
		]
	}
}`

const listingAtom = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>newest submissions : NYCapartments</title>
  <entry>
    <author><name>/u/someuser</name></author>
    <id>t3_abc123</id>
    <link href="https://www.reddit.com/r/NYCapartments/comments/abc123/offering_1br/"/>
    <published>2026-08-29T12:00:00+00:00</published>
    <title>[Offering] 1BR in East Village - $2400/mo</title>
    <content type="html">Great light, close to the L.</content>
  </entry>
</feed>`

func newTestClient(t *testing.T, baseURL string, subreddits ...string) *Client {
	t.Helper()
	if len(subreddits) == 0 {
		subreddits = []string{"NYCapartments"}
	}
	c, err := NewClient(subreddits, "aptscout-test/1.0", nil,
		WithBaseURL(baseURL), WithMinInterval(0))
	require.NoError(t, err)
	return c
}

func TestFetchNewListingsJSON(t *testing.T) {
	var gotPath, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(listingJSON))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	listings, err := c.FetchNewListings(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "/r/NYCapartments/new.json", gotPath)
	assert.Equal(t, "aptscout-test/1.0", gotUA)

	first := listings[0]
	assert.Equal(t, "abc123", first.ID)
	assert.Equal(t, "NYCapartments", first.Subreddit)
	assert.Equal(t, "[Offering] 1BR in East Village - $2400/mo", first.Title)
	assert.Equal(t, "Great light, close to the L.", first.Body)
	assert.Equal(t, "someuser", first.Author)
	assert.Equal(t, "Offering", first.Flair)
	assert.Equal(t, server.URL+"/r/NYCapartments/comments/abc123/offering_1br/", first.URL)
	assert.Equal(t, 12, first.Score)
	assert.Equal(t, 3, first.NumComments)
	assert.True(t, first.IsSelf)
	assert.Equal(t, time.Unix(1756400000, 0).UTC(), first.Created)

	second := listings[1]
	assert.Equal(t, "def456", second.ID)
	assert.Empty(t, second.Flair)
	assert.Empty(t, second.Body)
}

func TestFetchNewListingsLimitClamped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data": {"children": []}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.FetchNewListings(context.Background(), 0)
	require.NoError(t, err)

	_, err = c.FetchNewListings(context.Background(), 500)
	require.NoError(t, err)
}

func TestFetchNewListingsRSSFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/r/NYCapartments/new.json":
			w.WriteHeader(http.StatusTooManyRequests)
		case "/r/NYCapartments/new.rss":
			w.Header().Set("Content-Type", "application/atom+xml")
			_, _ = w.Write([]byte(listingAtom))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	listings, err := c.FetchNewListings(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, listings, 1)

	l := listings[0]
	assert.Equal(t, "abc123", l.ID)
	assert.Equal(t, "NYCapartments", l.Subreddit)
	assert.Equal(t, "[Offering] 1BR in East Village - $2400/mo", l.Title)
	assert.Equal(t, "Great light, close to the L.", l.Body)
	assert.Equal(t, "someuser", l.Author)
	assert.Empty(t, l.Flair)
	assert.True(t, l.IsSelf)
	assert.Equal(t, time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC), l.Created)
}

func TestFetchNewListingsSkipsBrokenSubreddit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/r/broken/new.json" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(listingJSON))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, "broken", "NYCapartments")
	listings, err := c.FetchNewListings(context.Background(), 25)
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(nil, "agent", nil)
	require.Error(t, err)

	_, err = NewClient([]string{"NYCapartments"}, "", nil)
	require.Error(t, err)
}

func TestPaceSpacing(t *testing.T) {
	c, err := NewClient([]string{"NYCapartments"}, "agent", nil,
		WithMinInterval(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, c.pace(context.Background()))
	require.NoError(t, c.pace(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
