package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"redditscout/internal/batch"
	"redditscout/internal/config"
	"redditscout/internal/logging"
	"redditscout/internal/metrics"
	"redditscout/internal/redditclient"
	"redditscout/internal/server"
	"redditscout/internal/store/runlog"
	"redditscout/internal/theme"
	"redditscout/internal/tools"
)

func main() {
	logging.Init(slog.LevelInfo)
	config.LoadEnvFile("")

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "serve":
		cmdServe()
	case "analyze":
		cmdAnalyze()
	case "scan":
		cmdScan()
	case "search":
		cmdSearch()
	case "thread":
		cmdThread()
	case "subreddit":
		cmdSubreddit()
	case "history":
		cmdHistory()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: redditscout <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./redditscout.yaml")
	fmt.Println("  serve       Run the HTTP tool API")
	fmt.Println("  analyze     Analyze one user's activity and metrics")
	fmt.Println("  scan        Compare multiple users (batch analysis)")
	fmt.Println("  search      Search content with engagement filters")
	fmt.Println("  thread      Extract a thread with its comment tree")
	fmt.Println("  subreddit   View a subreddit feed with engagement summary")
	fmt.Println("  history     Show recent batch comparison runs")
}

func mustLoadConfig(path string) config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = config.Default()
			cfg.ResolveEnv()
			return cfg
		}
		fmt.Println("error:", err)
		os.Exit(1)
	}
	return cfg
}

// buildToolkit wires the fetcher, batch options, and optional run
// history. The returned closer releases the history store.
func buildToolkit(cfg config.Config) (*tools.Toolkit, func()) {
	if cfg.Credentials.ClientID == "" || cfg.Credentials.ClientSecret == "" {
		fmt.Println("warning: missing REDDIT_CLIENT_ID/REDDIT_CLIENT_SECRET; API calls will fail")
	}
	client := redditclient.NewHTTPClient(redditclient.Options{
		ClientID:     cfg.Credentials.ClientID,
		ClientSecret: cfg.Credentials.ClientSecret,
		UserAgent:    cfg.API.UserAgent,
		RPS:          cfg.API.RPS,
		Burst:        cfg.API.Burst,
		MaxAttempts:  cfg.API.MaxAttempts,
		BaseBackoff:  cfg.API.BaseBackoff,
		Timeout:      cfg.API.RequestTimeout,
	})
	tk := tools.New(client, batch.Options{
		MaxConcurrency: cfg.Batch.MaxConcurrency,
		UserTimeout:    cfg.Batch.UserTimeout,
	})
	closer := func() {}
	if cfg.Storage.DBPath != "" {
		db, err := runlog.Open(cfg.Storage.DBPath)
		if err != nil {
			slog.Warn("run history unavailable", "path", cfg.Storage.DBPath, "error", err)
		} else {
			tk.WithRunLog(db)
			closer = func() { _ = db.Close() }
		}
	}
	metrics.StartServer(cfg.Metrics.Addr)
	return tk, closer
}

func runTool(cfgPath, tool string, params map[string]any) {
	cfg := mustLoadConfig(cfgPath)
	tk, done := buildToolkit(cfg)
	defer done()
	res, err := tk.Execute(context.Background(), tool, params)
	if err != nil {
		fmt.Println(tools.ErrorText(err))
		os.Exit(1)
	}
	fmt.Print(res.Text())
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./redditscout.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	if err := config.Save(*path, config.Default()); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "./redditscout.yaml", "config path")
	addr := fs.String("addr", "", "listen address (overrides config)")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	tk, done := buildToolkit(cfg)
	defer done()
	theme.PrintBanner()
	if err := server.New(tk).ListenAndServe(cfg.Server.Addr); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	cfgPath := fs.String("config", "./redditscout.yaml", "config path")
	user := fs.String("user", "", "username without u/ prefix")
	limit := fs.Int("limit", 100, "items to analyze (10-500)")
	types := fs.String("types", "both", "posts, comments, or both")
	subs := fs.String("subreddits", "all", "comma-separated subreddit filter or 'all'")
	_ = fs.Parse(os.Args[2:])
	runTool(*cfgPath, tools.ToolAnalyzeUser, map[string]any{
		"username":         *user,
		"activity_limit":   *limit,
		"content_types":    *types,
		"subreddit_filter": *subs,
	})
}

func cmdScan() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	cfgPath := fs.String("config", "./redditscout.yaml", "config path")
	users := fs.String("users", "", "comma-separated usernames (2-20)")
	depth := fs.String("depth", "standard", "basic, standard, or deep")
	focus := fs.String("focus", "all", "comma-separated focus subreddits or 'all'")
	metric := fs.String("metric", "all", "influence, expertise, activity, or all")
	_ = fs.Parse(os.Args[2:])
	var names []any
	for _, u := range splitComma(*users) {
		names = append(names, u)
	}
	runTool(*cfgPath, tools.ToolScanUserBatch, map[string]any{
		"usernames":          names,
		"analysis_depth":     *depth,
		"focus_subreddits":   *focus,
		"comparison_metrics": *metric,
	})
}

func cmdSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	cfgPath := fs.String("config", "./redditscout.yaml", "config path")
	q := fs.String("query", "", "search terms")
	subs := fs.String("subreddits", "all", "comma-separated subreddits or 'all'")
	limit := fs.Int("limit", 25, "max results (1-100)")
	timeFilter := fs.String("time", "week", "hour, day, week, month, year, all")
	sortMethod := fs.String("sort", "relevance", "relevance, hot, top, new, comments")
	minScore := fs.Int("min-score", 0, "minimum post score")
	minComments := fs.Int("min-comments", 0, "minimum comment count")
	_ = fs.Parse(os.Args[2:])
	runTool(*cfgPath, tools.ToolSearchContent, map[string]any{
		"query":          *q,
		"subreddits":     *subs,
		"result_limit":   *limit,
		"time_filter":    *timeFilter,
		"sort_method":    *sortMethod,
		"min_engagement": map[string]any{"score": *minScore, "comments": *minComments},
	})
}

func cmdThread() {
	fs := flag.NewFlagSet("thread", flag.ExitOnError)
	cfgPath := fs.String("config", "./redditscout.yaml", "config path")
	post := fs.String("post", "", "post id or URL")
	limit := fs.Int("limit", 100, "max comments (1-500)")
	depth := fs.Int("depth", 5, "max comment depth (1-10)")
	sortMethod := fs.String("sort", "best", "best, top, new, controversial")
	includeDeleted := fs.Bool("include-deleted", false, "keep deleted/removed comments")
	_ = fs.Parse(os.Args[2:])
	runTool(*cfgPath, tools.ToolExtractThread, map[string]any{
		"post_id":         *post,
		"comment_limit":   *limit,
		"comment_depth":   *depth,
		"sort_comments":   *sortMethod,
		"include_deleted": *includeDeleted,
	})
}

func cmdSubreddit() {
	fs := flag.NewFlagSet("subreddit", flag.ExitOnError)
	cfgPath := fs.String("config", "./redditscout.yaml", "config path")
	name := fs.String("name", "", "subreddit name without r/ prefix")
	limit := fs.Int("limit", 25, "posts to retrieve (1-100)")
	sortMethod := fs.String("sort", "hot", "hot, new, top, rising")
	timeFilter := fs.String("time", "week", "hour, day, week, month, year, all")
	noComments := fs.Bool("no-comments", false, "skip comment aggregates")
	_ = fs.Parse(os.Args[2:])
	runTool(*cfgPath, tools.ToolViewSubreddit, map[string]any{
		"subreddit_name":   *name,
		"post_limit":       *limit,
		"sort_method":      *sortMethod,
		"time_filter":      *timeFilter,
		"include_comments": !*noComments,
	})
}

func cmdHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	cfgPath := fs.String("config", "./redditscout.yaml", "config path")
	n := fs.Int("n", 10, "number of runs to show")
	_ = fs.Parse(os.Args[2:])
	cfg := mustLoadConfig(*cfgPath)
	if cfg.Storage.DBPath == "" {
		fmt.Println("run history disabled (storage.dbPath is empty)")
		return
	}
	db, err := runlog.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer db.Close()
	runs, err := db.Recent(context.Background(), *n)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return
	}
	for _, r := range runs {
		mark := ""
		if r.Incomplete {
			mark = " [incomplete]"
		}
		fmt.Printf("#%d %s depth=%s metric=%s%s\n", r.ID, r.TS.Format(time.RFC3339), r.Depth, r.Metric, mark)
		for _, u := range r.Users {
			fmt.Printf("  %2d. u/%-20s %-8s inf=%.2f exp=%.2f act=%.2f\n",
				u.Rank, u.Username, u.Status, u.Influence, u.Expertise, u.Activity)
		}
	}
}

func splitComma(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == ',' {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			continue
		}
		if r != ' ' {
			cur += string(r)
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
