package tools

import (
	"context"
	"fmt"
	"strings"

	"redditscout/internal/model"
	"redditscout/internal/normalize"
	"redditscout/internal/redditclient"
)

// ThreadResult is a post with its flattened comment tree.
type ThreadResult struct {
	model.Thread
}

func (t *Toolkit) extractThread(ctx context.Context, raw map[string]any) (Result, error) {
	p, verr := extractThreadSchema.Validate(raw)
	if verr != nil {
		return nil, verr
	}
	limit := p.Int("comment_limit")
	maxDepth := p.Int("comment_depth")
	includeDeleted := p.Bool("include_deleted")

	postThing, commentThings, err := t.fetcher.FetchThread(ctx, p.Str("post_id"), limit, maxDepth, p.Str("sort_comments"))
	if err != nil {
		return nil, err
	}
	thread := model.Thread{Post: normalize.Post(postThing)}
	flattenComments(&thread.Comments, commentThings, 0, maxDepth, limit, includeDeleted)
	return &ThreadResult{thread}, nil
}

// flattenComments walks the comment tree depth-first, annotating depth
// and honoring the caller's limit, depth, and deletion settings. "more"
// stubs are skipped; loading them is the transport's concern.
func flattenComments(out *[]model.Comment, things []redditclient.Thing, depth, maxDepth, limit int, includeDeleted bool) {
	if depth >= maxDepth {
		return
	}
	for _, th := range things {
		if len(*out) >= limit {
			return
		}
		if th.Kind != redditclient.KindTComment {
			continue
		}
		c := normalize.Comment(th, depth)
		if c.IsDeleted && !includeDeleted {
			continue
		}
		*out = append(*out, c)
		flattenComments(out, th.Data.RepliesListing(), depth+1, maxDepth, limit, includeDeleted)
	}
}

func (r *ThreadResult) Text() string {
	var b strings.Builder
	p := r.Post
	fmt.Fprintf(&b, "[r/%s] %s (score=%d, comments=%d, by u/%s)\n",
		p.Subreddit, p.Title, p.Score, p.CommentCount, p.Author)
	for _, c := range r.Comments {
		indent := strings.Repeat("  ", c.Depth+1)
		body := c.Body
		if len(body) > 120 {
			body = body[:117] + "..."
		}
		fmt.Fprintf(&b, "%su/%s (%+d): %s\n", indent, c.Author, c.Score, body)
	}
	return b.String()
}
