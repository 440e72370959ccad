package tools

import "redditscout/internal/query"

// Input contracts, one per tool. Field bounds and defaults here are the
// documented tool interface; the validator enforces them before any
// fetch begins.

var analyzeUserSchema = query.Schema{
	Tool: ToolAnalyzeUser,
	Fields: []query.Field{
		{Name: "username", Kind: query.String, Required: true},
		{Name: "activity_limit", Kind: query.Int, Min: 10, Max: 500, Default: 100},
		{Name: "content_types", Kind: query.Enum, Values: []string{"posts", "comments", "both"}, Default: "both"},
		{Name: "subreddit_filter", Kind: query.Subreddits, Default: []string(nil)},
	},
}

var scanUserBatchSchema = query.Schema{
	Tool: ToolScanUserBatch,
	Fields: []query.Field{
		{Name: "usernames", Kind: query.Usernames, Required: true},
		{Name: "analysis_depth", Kind: query.Enum, Values: []string{"basic", "standard", "deep"}, Default: "standard"},
		{Name: "focus_subreddits", Kind: query.Subreddits, Default: []string(nil)},
		{Name: "comparison_metrics", Kind: query.Enum, Values: []string{"influence", "expertise", "activity", "all"}, Default: "all"},
	},
}

var searchContentSchema = query.Schema{
	Tool: ToolSearchContent,
	Fields: []query.Field{
		{Name: "query", Kind: query.String, Required: true},
		{Name: "subreddits", Kind: query.Subreddits, Default: []string(nil)},
		{Name: "result_limit", Kind: query.Int, Min: 1, Max: 100, Default: 25},
		{Name: "time_filter", Kind: query.Enum, Values: []string{"hour", "day", "week", "month", "year", "all"}, Default: "week"},
		{Name: "sort_method", Kind: query.Enum, Values: []string{"relevance", "hot", "top", "new", "comments"}, Default: "relevance"},
		{Name: "min_engagement", Kind: query.Thresholds, Default: map[string]int{}},
	},
}

var extractThreadSchema = query.Schema{
	Tool: ToolExtractThread,
	Fields: []query.Field{
		{Name: "post_id", Kind: query.String, Required: true},
		{Name: "comment_limit", Kind: query.Int, Min: 1, Max: 500, Default: 100},
		{Name: "comment_depth", Kind: query.Int, Min: 1, Max: 10, Default: 5},
		{Name: "sort_comments", Kind: query.Enum, Values: []string{"best", "top", "new", "controversial"}, Default: "best"},
		{Name: "include_deleted", Kind: query.Bool, Default: false},
	},
}

var viewSubredditSchema = query.Schema{
	Tool: ToolViewSubreddit,
	Fields: []query.Field{
		{Name: "subreddit_name", Kind: query.String, Required: true},
		{Name: "post_limit", Kind: query.Int, Min: 1, Max: 100, Default: 25},
		{Name: "sort_method", Kind: query.Enum, Values: []string{"hot", "new", "top", "rising"}, Default: "hot"},
		{Name: "time_filter", Kind: query.Enum, Values: []string{"hour", "day", "week", "month", "year", "all"}, Default: "week"},
		{Name: "include_comments", Kind: query.Bool, Default: true},
	},
}
