package tools

import (
	"context"
	"fmt"
	"strings"

	"redditscout/internal/model"
	"redditscout/internal/normalize"
	"redditscout/internal/redditclient"
)

// SearchResult holds filtered search hits.
type SearchResult struct {
	Query      string       `json:"query"`
	Subreddits []string     `json:"subreddits,omitempty"`
	Results    []model.Post `json:"results"`
	// Excluded counts hits dropped by the min_engagement thresholds.
	Excluded int `json:"excluded,omitempty"`
}

func (t *Toolkit) searchContent(ctx context.Context, raw map[string]any) (Result, error) {
	p, verr := searchContentSchema.Validate(raw)
	if verr != nil {
		return nil, verr
	}
	q := p.Str("query")
	subs := p.Strs("subreddits")
	limit := p.Int("result_limit")
	thresholds := p.Ints("min_engagement")

	things, err := t.fetcher.Search(ctx, q, subs, limit, p.Str("sort_method"), p.Str("time_filter"))
	if err != nil {
		return nil, err
	}
	minScore := thresholds["score"]
	minComments := thresholds["comments"]
	results := make([]model.Post, 0, len(things))
	excluded := 0
	for _, th := range things {
		if th.Kind != redditclient.KindTPost {
			continue
		}
		post := normalize.Post(th)
		if post.Score < minScore || post.CommentCount < minComments {
			excluded++
			continue
		}
		results = append(results, post)
		if len(results) == limit {
			break
		}
	}
	return &SearchResult{Query: q, Subreddits: subs, Results: results, Excluded: excluded}, nil
}

func (r *SearchResult) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search %q: %d results", r.Query, len(r.Results))
	if len(r.Subreddits) > 0 {
		fmt.Fprintf(&b, " in r/%s", strings.Join(r.Subreddits, ", r/"))
	}
	if r.Excluded > 0 {
		fmt.Fprintf(&b, " (%d below engagement thresholds)", r.Excluded)
	}
	b.WriteString("\n")
	for _, p := range r.Results {
		fmt.Fprintf(&b, "- [r/%s] %s (score=%d, comments=%d, by u/%s)\n",
			p.Subreddit, p.Title, p.Score, p.CommentCount, p.Author)
	}
	return b.String()
}
