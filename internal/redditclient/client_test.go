package redditclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestClient(ts *httptest.Server) *HTTPClient {
	return &HTTPClient{
		baseURL:     ts.URL,
		httpClient:  ts.Client(),
		limiter:     rate.NewLimiter(rate.Inf, 1),
		userAgent:   "redditscout-test",
		maxAttempts: 3,
		baseBackoff: 10 * time.Millisecond,
	}
}

func listingJSON(after string, things ...Thing) []byte {
	var l Listing
	l.Kind = KindTListing
	l.Data.After = after
	l.Data.Children = things
	b, _ := json.Marshal(l)
	return b
}

func postThing(id string, score int) Thing {
	return Thing{Kind: KindTPost, Data: ThingData{
		ID: id, Subreddit: "golang", Author: "someone", Title: "t",
		Score: score, CreatedUTC: 1700000000,
	}}
}

func TestDoWithRetryHandles429(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write(listingJSON("", postThing("a1", 5)))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	got, err := c.FetchSubredditFeed(context.Background(), "golang", 10, "hot", "")
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if len(got) != 1 || got[0].Data.ID != "a1" {
		t.Fatalf("unexpected things: %+v", got)
	}
	if attempts < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", attempts)
	}
}

func TestNotFoundIsNotRetried(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	_, err := c.FetchUserActivity(context.Background(), "ghost", 50, "both")
	if err == nil {
		t.Fatal("expected error")
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if !errors.As(err, &fe) || fe.Retryable() {
		t.Fatalf("not_found must not be retryable")
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt, got %d", attempts)
	}
}

func TestFetchListingPaginates(t *testing.T) {
	pages := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		switch r.URL.Query().Get("after") {
		case "":
			var things []Thing
			for i := 0; i < 100; i++ {
				things = append(things, postThing(fmt.Sprintf("p%d", i), i))
			}
			_, _ = w.Write(listingJSON("t3_p99", things...))
		case "t3_p99":
			_, _ = w.Write(listingJSON("", postThing("p100", 1), postThing("p101", 2)))
		default:
			t.Errorf("unexpected after cursor %q", r.URL.Query().Get("after"))
			_, _ = w.Write(listingJSON(""))
		}
	}))
	defer ts.Close()

	c := newTestClient(ts)
	got, err := c.FetchUserActivity(context.Background(), "busy", 150, "both")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 102 {
		t.Fatalf("expected 102 items (listing exhausted), got %d", len(got))
	}
	if pages != 2 {
		t.Fatalf("expected 2 pages, got %d", pages)
	}
}

func TestFetchThreadDecodesTwoListings(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		post := listingJSON("", postThing("abc", 42))
		comment := Thing{Kind: KindTComment, Data: ThingData{
			ID: "c1", Author: "alice", Body: "hi", Score: 3, CreatedUTC: 1700000100,
		}}
		comments := listingJSON("", comment)
		fmt.Fprintf(w, "[%s,%s]", post, comments)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	post, comments, err := c.FetchThread(context.Background(), "t3_abc", 100, 5, "best")
	if err != nil {
		t.Fatal(err)
	}
	if post.Data.ID != "abc" {
		t.Fatalf("wrong post: %+v", post.Data)
	}
	if len(comments) != 1 || comments[0].Data.Author != "alice" {
		t.Fatalf("wrong comments: %+v", comments)
	}
}

func TestNormalizePostID(t *testing.T) {
	cases := map[string]string{
		"abc123":    "abc123",
		"t3_abc123": "abc123",
		"https://www.reddit.com/r/golang/comments/abc123/some_title/": "abc123",
		"https://reddit.com/comments/xyz":                             "xyz",
	}
	for in, want := range cases {
		if got := NormalizePostID(in); got != want {
			t.Errorf("NormalizePostID(%q) = %q, want %q", in, got, want)
		}
	}
}
