package runlog

import (
	"context"
	"testing"
	"time"

	"redditscout/internal/model"
)

func TestRecordAndRecent(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	ctx := context.Background()

	res := model.ComparisonResult{
		Metric: "all",
		Depth:  "standard",
		Users: []model.RankedUser{
			{Rank: 1, Username: "a", Status: model.StatusOK, Composite: 0.9,
				Metrics: model.UserMetrics{InfluenceScore: 12.5, ExpertiseSignal: 62.5, ActivityRate: 1.5}},
			{Rank: 2, Username: "b", Status: model.StatusFailed},
		},
	}
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	runID, err := db.Record(ctx, at, res)
	if err != nil {
		t.Fatal(err)
	}
	if runID == 0 {
		t.Fatal("expected run id")
	}

	runs, err := db.Recent(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	r := runs[0]
	if r.Metric != "all" || r.Depth != "standard" || !r.TS.Equal(at) {
		t.Fatalf("run header mismatch: %+v", r)
	}
	if len(r.Users) != 2 || r.Users[0].Username != "a" || r.Users[1].Status != "failed" {
		t.Fatalf("user rows mismatch: %+v", r.Users)
	}
	if r.Users[0].Influence != 12.5 {
		t.Fatalf("score mismatch: %+v", r.Users[0])
	}
}
