package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagus-watch/ratelimit"
	"tagus-watch/retry"
)

func testFetcher() *GraphFetcher {
	return &GraphFetcher{
		http:        &http.Client{Timeout: 5 * time.Second},
		limiter:     ratelimit.New(1000, nil, time.Hour),
		policy:      retry.Policy{MaxAttempts: 3, Delay: time.Millisecond},
		pageID:      "123",
		accessToken: "token",
		apiVersion:  "v23.0",
		window:      10 * time.Minute,
		pageSize:    25,
	}
}

func TestFetchPageFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") == "cursor1" {
			fmt.Fprint(w, `{"data":[{"id":"2","message":"second","created_time":"2026-08-30T10:00:00+0000"}]}`)
			return
		}
		fmt.Fprintf(w, `{"data":[{"id":"1","message":"first","from":{"name":"Dorjee"},"permalink_url":"https://fb/1","full_picture":"https://cdn/1.jpg"}],"paging":{"next":"%s?after=cursor1"}}`, srv.URL)
	}))
	defer srv.Close()

	f := testFetcher()

	first, err := f.fetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, first.Data, 1)
	assert.NotEmpty(t, first.Paging.Next)

	second, err := f.fetchPage(context.Background(), first.Paging.Next)
	require.NoError(t, err)
	require.Len(t, second.Data, 1)
	assert.Equal(t, "2", second.Data[0].ID)
	assert.Empty(t, second.Paging.Next)
}

func TestFetchPageRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	f := testFetcher()
	_, err := f.fetchPage(context.Background(), srv.URL)
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestFetchPageDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"invalid token","code":190}}`)
	}))
	defer srv.Close()

	f := testFetcher()
	_, err := f.fetchPage(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestToRawPost(t *testing.T) {
	post := toRawPost(graphPost{
		ID:           "42",
		Message:      "road broken",
		From:         &graphAuthor{Name: "Pema"},
		CreatedTime:  "2026-08-30T10:00:00+0000",
		PermalinkURL: "https://fb/42",
		Picture:      "https://cdn/small.jpg",
	})

	assert.Equal(t, "42", post.ID)
	assert.Equal(t, "Pema", post.AuthorName)
	require.Len(t, post.MediaRefs, 1)
	assert.Equal(t, "image", post.MediaRefs[0].Type)
	assert.Equal(t, "https://cdn/small.jpg", post.MediaRefs[0].URL)
}
