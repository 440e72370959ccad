package batch

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"redditscout/internal/model"
	"redditscout/internal/redditclient"
)

// stubFetcher serves canned per-user activity and counts concurrency.
type stubFetcher struct {
	mu       sync.Mutex
	activity map[string][]redditclient.Thing
	errs     map[string]error
	delay    time.Duration

	inFlight int32
	maxSeen  int32
}

func (s *stubFetcher) FetchUserActivity(ctx context.Context, username string, limit int, contentTypes string) ([]redditclient.Thing, error) {
	cur := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		max := atomic.LoadInt32(&s.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt32(&s.maxSeen, max, cur) {
			break
		}
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, &redditclient.FetchError{Kind: redditclient.KindTransient, Op: "stub", Err: ctx.Err()}
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[username]; ok {
		return nil, err
	}
	things := s.activity[username]
	if len(things) > limit {
		things = things[:limit]
	}
	return things, nil
}

func (s *stubFetcher) FetchSubredditFeed(ctx context.Context, subreddit string, limit int, sort, timeFilter string) ([]redditclient.Thing, error) {
	return nil, nil
}

func (s *stubFetcher) FetchThread(ctx context.Context, postID string, commentLimit, depth int, sort string) (redditclient.Thing, []redditclient.Thing, error) {
	return redditclient.Thing{}, nil, nil
}

func (s *stubFetcher) Search(ctx context.Context, query string, subreddits []string, limit int, sort, timeFilter string) ([]redditclient.Thing, error) {
	return nil, nil
}

func userThings(n int, sub string, score int) []redditclient.Thing {
	base := time.Now().UTC()
	out := make([]redditclient.Thing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, redditclient.Thing{Kind: redditclient.KindTPost, Data: redditclient.ThingData{
			ID:         fmt.Sprintf("p%d", i),
			Subreddit:  sub,
			Author:     "x",
			Score:      score,
			CreatedUTC: float64(base.Add(-time.Duration(i) * time.Hour).Unix()),
		}})
	}
	return out
}

func TestCompareFailedUserIsKeptWithZeroMetrics(t *testing.T) {
	f := &stubFetcher{
		activity: map[string][]redditclient.Thing{"a": userThings(50, "golang", 10)},
		errs: map[string]error{
			"b": &redditclient.FetchError{Kind: redditclient.KindNotFound, Op: "/user/b/overview"},
		},
	}
	res := Compare(context.Background(), f, Query{
		Usernames: []string{"a", "b"},
		Depth:     "basic",
		Metric:    "all",
	}, Options{})

	if len(res.Users) != 2 {
		t.Fatalf("result must keep all users, got %d", len(res.Users))
	}
	if res.Users[0].Username != "a" || res.Users[0].Rank != 1 {
		t.Fatalf("expected a ranked first: %+v", res.Users)
	}
	// Cap 50 was hit exactly, so a's snapshot is partial, not silent ok.
	if res.Users[0].Status != model.StatusPartial {
		t.Fatalf("expected partial status for capped fetch, got %s", res.Users[0].Status)
	}
	b := res.Users[1]
	if b.Username != "b" || b.Status != model.StatusFailed || b.Error == "" {
		t.Fatalf("expected failed entry for b: %+v", b)
	}
	if b.Metrics.InfluenceScore != 0 || b.Metrics.ExpertiseSignal != 0 || b.Metrics.ActivityRate != 0 {
		t.Fatalf("failed user must have zero metrics: %+v", b.Metrics)
	}
	if res.Incomplete {
		t.Fatal("batch completed, must not be flagged incomplete")
	}
}

func TestCompareIsIdempotent(t *testing.T) {
	f := &stubFetcher{activity: map[string][]redditclient.Thing{
		"a": userThings(10, "golang", 5),
		"b": userThings(10, "rust", 5),
		"c": userThings(10, "python", 5),
	}}
	q := Query{Usernames: []string{"c", "a", "b"}, Depth: "standard", Metric: "all"}
	r1 := Compare(context.Background(), f, q, Options{})
	r2 := Compare(context.Background(), f, q, Options{})
	if !reflect.DeepEqual(r1, r2) {
		t.Fatalf("identical inputs must produce identical rankings:\n%+v\n%+v", r1, r2)
	}
}

func TestCompareTiesBreakLexically(t *testing.T) {
	// Identical activity for all: every metric ties.
	f := &stubFetcher{activity: map[string][]redditclient.Thing{
		"zoe":   userThings(5, "golang", 3),
		"adam":  userThings(5, "golang", 3),
		"milly": userThings(5, "golang", 3),
	}}
	res := Compare(context.Background(), f, Query{
		Usernames: []string{"zoe", "adam", "milly"},
		Depth:     "standard",
		Metric:    "influence",
	}, Options{})
	want := []string{"adam", "milly", "zoe"}
	for i, u := range res.Users {
		if u.Username != want[i] {
			t.Fatalf("tie order wrong: got %+v", res.Users)
		}
		if u.Rank != i+1 {
			t.Fatalf("ranks must be 1..n: %+v", res.Users)
		}
	}
}

func TestCompareBoundsConcurrency(t *testing.T) {
	activity := map[string][]redditclient.Thing{}
	var names []string
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("user%02d", i)
		names = append(names, name)
		activity[name] = userThings(3, "golang", 1)
	}
	f := &stubFetcher{activity: activity, delay: 20 * time.Millisecond}
	Compare(context.Background(), f, Query{Usernames: names, Depth: "basic", Metric: "activity"}, Options{MaxConcurrency: 5})
	if max := atomic.LoadInt32(&f.maxSeen); max > 5 {
		t.Fatalf("concurrency exceeded cap: %d", max)
	}
}

func TestCompareUserTimeoutBecomesFailed(t *testing.T) {
	f := &stubFetcher{
		activity: map[string][]redditclient.Thing{"fast": userThings(5, "golang", 2)},
		delay:    50 * time.Millisecond,
	}
	// "slow" has no canned data but the shared delay exceeds its timeout.
	f.activity["slow"] = userThings(5, "golang", 2)
	res := Compare(context.Background(), f, Query{
		Usernames: []string{"fast", "slow"},
		Depth:     "basic",
		Metric:    "influence",
	}, Options{UserTimeout: 10 * time.Millisecond})
	for _, u := range res.Users {
		if u.Status != model.StatusFailed {
			t.Fatalf("timed-out users must be failed: %+v", u)
		}
	}
	if len(res.Users) != 2 {
		t.Fatalf("length invariant broken: %d", len(res.Users))
	}
}

func TestCompareCancellationKeepsCompletedUsers(t *testing.T) {
	f := &stubFetcher{
		activity: map[string][]redditclient.Thing{
			"done":    userThings(5, "golang", 2),
			"pending": userThings(5, "golang", 2),
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := Compare(ctx, f, Query{
		Usernames: []string{"done", "pending"},
		Depth:     "basic",
		Metric:    "influence",
	}, Options{})
	if !res.Incomplete {
		t.Fatal("cancelled batch must be flagged incomplete")
	}
	if len(res.Users) != 2 {
		t.Fatalf("length invariant broken: %d", len(res.Users))
	}
}

func TestCompareFocusFilterYieldsPartial(t *testing.T) {
	f := &stubFetcher{activity: map[string][]redditclient.Thing{
		"a": userThings(5, "python", 3),
		"b": userThings(5, "golang", 3),
	}}
	res := Compare(context.Background(), f, Query{
		Usernames:       []string{"a", "b"},
		Depth:           "standard",
		FocusSubreddits: []string{"golang"},
		Metric:          "influence",
	}, Options{})
	var a model.RankedUser
	for _, u := range res.Users {
		if u.Username == "a" {
			a = u
		}
	}
	if a.Status != model.StatusPartial {
		t.Fatalf("filter reducing a non-empty fetch to zero items must be partial, got %s", a.Status)
	}
	if a.Metrics.ItemCount != 0 {
		t.Fatalf("filtered-out user should have no items: %+v", a.Metrics)
	}
}
