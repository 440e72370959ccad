// Package tools implements the five Reddit analytics tools on top of
// the shared validator and fetch client.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"redditscout/internal/batch"
	"redditscout/internal/metrics"
	"redditscout/internal/query"
	"redditscout/internal/redditclient"
	"redditscout/internal/store/runlog"
)

// Tool names as exposed to callers.
const (
	ToolViewSubreddit = "view_subreddit"
	ToolAnalyzeUser   = "analyze_user"
	ToolSearchContent = "search_content"
	ToolExtractThread = "extract_thread"
	ToolScanUserBatch = "scan_user_batch"
)

var descriptions = map[string]string{
	ToolViewSubreddit: "Extract subreddit feeds with engagement metrics",
	ToolAnalyzeUser:   "Get user activity patterns and influence metrics",
	ToolSearchContent: "Search Reddit with advanced filters",
	ToolExtractThread: "Get complete thread data with comment hierarchy",
	ToolScanUserBatch: "Analyze multiple users for comparison",
}

// Names lists the available tools in stable order.
func Names() []string {
	out := make([]string, 0, len(descriptions))
	for name := range descriptions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Describe returns the one-line description for a tool, or "".
func Describe(name string) string { return descriptions[name] }

// Result is a structured tool output convertible to display text.
type Result interface {
	Text() string
}

// Toolkit binds the tools to a fetch client and batch options.
type Toolkit struct {
	fetcher redditclient.Client
	batch   batch.Options
	// runs is the optional run-history store for scan_user_batch.
	runs *runlog.DB
}

func New(fetcher redditclient.Client, batchOpts batch.Options) *Toolkit {
	return &Toolkit{fetcher: fetcher, batch: batchOpts}
}

// WithRunLog enables recording of batch comparisons.
func (t *Toolkit) WithRunLog(db *runlog.DB) *Toolkit {
	t.runs = db
	return t
}

// ErrUnknownTool is returned for unregistered tool names.
var ErrUnknownTool = errors.New("unknown tool")

// Execute dispatches a tool by name with raw parameters.
func (t *Toolkit) Execute(ctx context.Context, tool string, params map[string]any) (Result, error) {
	var run func(context.Context, map[string]any) (Result, error)
	switch tool {
	case ToolViewSubreddit:
		run = t.viewSubreddit
	case ToolAnalyzeUser:
		run = t.analyzeUser
	case ToolSearchContent:
		run = t.searchContent
	case ToolExtractThread:
		run = t.extractThread
	case ToolScanUserBatch:
		run = t.scanUserBatch
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, tool)
	}
	metrics.IncToolRun(tool)
	res, err := run(ctx, params)
	if err != nil {
		metrics.IncToolError(tool)
	}
	return res, err
}

// ErrorText renders any tool error as the caller-facing string. All
// failures surface as a descriptive string beginning with "Error:".
func ErrorText(err error) string {
	var ve *query.ValidationError
	if errors.As(err, &ve) {
		return "Error: " + ve.Message
	}
	var fe *redditclient.FetchError
	if errors.As(err, &fe) {
		return fmt.Sprintf("Error: fetch failed (%s): %v", fe.Kind, err)
	}
	return "Error: " + err.Error()
}
