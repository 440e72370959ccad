package tools

import (
	"context"
	"fmt"
	"strings"

	"redditscout/internal/model"
	"redditscout/internal/normalize"
	"redditscout/internal/redditclient"
)

// FeedSummary aggregates engagement across a subreddit feed.
type FeedSummary struct {
	TotalScore    int     `json:"total_score"`
	AvgScore      float64 `json:"avg_score"`
	TotalComments int     `json:"total_comments,omitempty"`
	AvgComments   float64 `json:"avg_comments,omitempty"`
	TopPostID     string  `json:"top_post_id,omitempty"`
	TopPostTitle  string  `json:"top_post_title,omitempty"`
}

// SubredditResult is a feed snapshot with its engagement summary.
type SubredditResult struct {
	Subreddit string       `json:"subreddit"`
	Sort      string       `json:"sort"`
	Posts     []model.Post `json:"posts"`
	Summary   FeedSummary  `json:"summary"`
}

func (t *Toolkit) viewSubreddit(ctx context.Context, raw map[string]any) (Result, error) {
	p, verr := viewSubredditSchema.Validate(raw)
	if verr != nil {
		return nil, verr
	}
	name := strings.TrimPrefix(strings.ToLower(p.Str("subreddit_name")), "r/")
	sortMethod := p.Str("sort_method")
	includeComments := p.Bool("include_comments")

	things, err := t.fetcher.FetchSubredditFeed(ctx, name, p.Int("post_limit"), sortMethod, p.Str("time_filter"))
	if err != nil {
		return nil, err
	}
	posts := make([]model.Post, 0, len(things))
	for _, th := range things {
		if th.Kind != redditclient.KindTPost {
			continue
		}
		posts = append(posts, normalize.Post(th))
	}
	return &SubredditResult{
		Subreddit: name,
		Sort:      sortMethod,
		Posts:     posts,
		Summary:   summarize(posts, includeComments),
	}, nil
}

func summarize(posts []model.Post, includeComments bool) FeedSummary {
	var s FeedSummary
	if len(posts) == 0 {
		return s
	}
	top := posts[0]
	for _, p := range posts {
		s.TotalScore += p.Score
		if includeComments {
			s.TotalComments += p.CommentCount
		}
		if p.Score > top.Score {
			top = p
		}
	}
	n := float64(len(posts))
	s.AvgScore = float64(s.TotalScore) / n
	if includeComments {
		s.AvgComments = float64(s.TotalComments) / n
	}
	s.TopPostID = top.ID
	s.TopPostTitle = top.Title
	return s
}

func (r *SubredditResult) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "r/%s (%s): %d posts, avg score %.1f", r.Subreddit, r.Sort, len(r.Posts), r.Summary.AvgScore)
	if r.Summary.TotalComments > 0 {
		fmt.Fprintf(&b, ", avg comments %.1f", r.Summary.AvgComments)
	}
	b.WriteString("\n")
	if r.Summary.TopPostTitle != "" {
		fmt.Fprintf(&b, "top: %s\n", r.Summary.TopPostTitle)
	}
	for _, p := range r.Posts {
		fmt.Fprintf(&b, "- %s (score=%d, comments=%d)\n", p.Title, p.Score, p.CommentCount)
	}
	return b.String()
}
