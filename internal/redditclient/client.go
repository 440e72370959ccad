package redditclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"redditscout/internal/metrics"
)

const (
	authURL = "https://www.reddit.com/api/v1/access_token"
	apiURL  = "https://oauth.reddit.com"

	// Reddit caps listing pages at 100 items.
	maxPageSize = 100
)

// Client defines the fetch capabilities the tools depend on.
type Client interface {
	FetchUserActivity(ctx context.Context, username string, limit int, contentTypes string) ([]Thing, error)
	FetchSubredditFeed(ctx context.Context, subreddit string, limit int, sort, timeFilter string) ([]Thing, error)
	FetchThread(ctx context.Context, postID string, commentLimit, depth int, sort string) (Thing, []Thing, error)
	Search(ctx context.Context, query string, subreddits []string, limit int, sort, timeFilter string) ([]Thing, error)
}

// Options configure the HTTP client.
type Options struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	RPS          float64
	Burst        int
	MaxAttempts  int
	BaseBackoff  time.Duration
	Timeout      time.Duration
}

// HTTPClient talks to the Reddit API with app-only OAuth2 credentials.
type HTTPClient struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	userAgent   string
	maxAttempts int
	baseBackoff time.Duration
}

func NewHTTPClient(opts Options) *HTTPClient {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "redditscout/0.1"
	}
	conf := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     authURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	hc := conf.Client(context.Background())
	hc.Timeout = opts.Timeout
	return &HTTPClient{
		baseURL:     apiURL,
		httpClient:  hc,
		limiter:     newLimiter(opts.RPS, opts.Burst),
		userAgent:   opts.UserAgent,
		maxAttempts: opts.MaxAttempts,
		baseBackoff: opts.BaseBackoff,
	}
}

// FetchUserActivity returns recent things for a user, newest first.
// contentTypes selects the upstream endpoint: posts, comments, or both.
func (c *HTTPClient) FetchUserActivity(ctx context.Context, username string, limit int, contentTypes string) ([]Thing, error) {
	ep := "overview"
	switch contentTypes {
	case "posts":
		ep = "submitted"
	case "comments":
		ep = "comments"
	}
	path := fmt.Sprintf("/user/%s/%s", url.PathEscape(username), ep)
	q := url.Values{"sort": {"new"}}
	return c.fetchListing(ctx, path, q, limit)
}

// FetchSubredditFeed returns feed posts for one subreddit.
func (c *HTTPClient) FetchSubredditFeed(ctx context.Context, subreddit string, limit int, sort, timeFilter string) ([]Thing, error) {
	if sort == "" {
		sort = "hot"
	}
	path := fmt.Sprintf("/r/%s/%s", url.PathEscape(subreddit), sort)
	q := url.Values{}
	if sort == "top" && timeFilter != "" {
		q.Set("t", timeFilter)
	}
	return c.fetchListing(ctx, path, q, limit)
}

// FetchThread returns a post thing and its top-level comment things.
// Nested replies stay embedded in each comment's Replies field.
func (c *HTTPClient) FetchThread(ctx context.Context, postID string, commentLimit, depth int, sort string) (Thing, []Thing, error) {
	id := NormalizePostID(postID)
	path := "/comments/" + url.PathEscape(id)
	q := url.Values{
		"limit": {strconv.Itoa(commentLimit)},
		"depth": {strconv.Itoa(depth)},
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	body, err := c.get(ctx, path, q)
	if err != nil {
		return Thing{}, nil, err
	}
	var pages []Listing
	if err := json.Unmarshal(body, &pages); err != nil {
		return Thing{}, nil, &FetchError{Kind: KindTransient, Op: path, Err: err}
	}
	if len(pages) < 2 || len(pages[0].Data.Children) == 0 {
		return Thing{}, nil, &FetchError{Kind: KindNotFound, Op: path}
	}
	return pages[0].Data.Children[0], pages[1].Data.Children, nil
}

// Search queries Reddit, optionally restricted to subreddits.
func (c *HTTPClient) Search(ctx context.Context, query string, subreddits []string, limit int, sort, timeFilter string) ([]Thing, error) {
	path := "/search"
	q := url.Values{"q": {query}, "type": {"link"}}
	if len(subreddits) > 0 {
		path = fmt.Sprintf("/r/%s/search", url.PathEscape(strings.Join(subreddits, "+")))
		q.Set("restrict_sr", "1")
	}
	if sort != "" {
		q.Set("sort", sort)
	}
	if timeFilter != "" {
		q.Set("t", timeFilter)
	}
	return c.fetchListing(ctx, path, q, limit)
}

// NormalizePostID accepts bare ids, t3_ fullnames, and comment-page URLs.
func NormalizePostID(raw string) string {
	id := strings.TrimSpace(raw)
	if i := strings.Index(id, "/comments/"); i >= 0 {
		rest := id[i+len("/comments/"):]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			rest = rest[:j]
		}
		id = rest
	}
	return strings.TrimPrefix(id, "t3_")
}

// fetchListing pages through a listing endpoint until limit items are
// collected or the listing is exhausted.
func (c *HTTPClient) fetchListing(ctx context.Context, path string, q url.Values, limit int) ([]Thing, error) {
	var out []Thing
	after := ""
	for len(out) < limit {
		page := limit - len(out)
		if page > maxPageSize {
			page = maxPageSize
		}
		q.Set("limit", strconv.Itoa(page))
		if after != "" {
			q.Set("after", after)
		}
		body, err := c.get(ctx, path, q)
		if err != nil {
			return nil, err
		}
		var l Listing
		if err := json.Unmarshal(body, &l); err != nil {
			return nil, &FetchError{Kind: KindTransient, Op: path, Err: err}
		}
		if len(l.Data.Children) == 0 {
			break
		}
		out = append(out, l.Data.Children...)
		after = l.Data.After
		if after == "" {
			break
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindTransient, Op: path, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Kind: KindTransient, Op: path, Err: err}
	}
	start := time.Now()
	resp, err := c.doWithRetry(ctx, req, path)
	metrics.ObserveFetchDuration(start)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		kind := kindForStatus(resp.StatusCode)
		metrics.IncFetchError(string(kind))
		return nil, &FetchError{Kind: kind, Op: path, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindTransient, Op: path, Err: err}
	}
	return body, nil
}

// doWithRetry retries 429 and 5xx responses and transport errors with
// exponential backoff, honoring Retry-After when present.
func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request, endpoint string) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode != http.StatusTooManyRequests && (resp.StatusCode < 500 || resp.StatusCode > 599) {
				return resp, nil
			}
			if attempt == c.maxAttempts {
				return resp, nil
			}
			wait := backoff
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					wait = time.Duration(secs) * time.Second
				} else if t, err := http.ParseTime(ra); err == nil {
					if d := time.Until(t); d > 0 {
						wait = d
					}
				}
			}
			_ = resp.Body.Close()
			// jitter +/-20%
			jitter := time.Duration(float64(wait) * 0.2)
			if jitter > 0 {
				wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
			}
			metrics.IncAPIRetry(endpoint)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, &FetchError{Kind: KindTransient, Op: endpoint, Err: ctx.Err()}
			}
			backoff *= 2
			continue
		}
		lastErr = err
		if attempt == c.maxAttempts {
			break
		}
		metrics.IncAPIRetry(endpoint)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, &FetchError{Kind: KindTransient, Op: endpoint, Err: ctx.Err()}
		}
		backoff *= 2
	}
	metrics.IncFetchError(string(KindTransient))
	return nil, &FetchError{Kind: KindTransient, Op: endpoint,
		Err: fmt.Errorf("request failed after %d attempts: %w", c.maxAttempts, lastErr)}
}
