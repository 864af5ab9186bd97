package pipeline

import (
	"testing"

	"github.com/trendscout/trendscout/internal/types"
)

func repoListing(key string, total, delta int) *types.Listing {
	l := types.NewListing(types.SourceRepositoryTrend, types.PeriodDaily, key, key)
	l.Metrics.Total = total
	l.Metrics.PeriodDelta = delta
	return l
}

func TestMergeDedup(t *testing.T) {
	a := repoListing("golang/go", 128000, 250)
	a.Description = "The Go programming language"
	a.Tags = []string{"language", "compiler"}

	b := repoListing("golang/go", 128010, 245)
	b.Tags = []string{"compiler", "runtime"}
	b.Language = "Go"

	c := repoListing("rust-lang/rust", 98000, 900)

	merged := Merge([]*types.Listing{a, b, c})
	if len(merged) != 2 {
		t.Fatalf("got %d listings, want 2", len(merged))
	}

	// First-seen order wins.
	if merged[0].ID != a.ID || merged[1].ID != c.ID {
		t.Errorf("order = [%s, %s]", merged[0].ID, merged[1].ID)
	}

	got := merged[0]
	if got.Description != "The Go programming language" {
		t.Errorf("description = %q, want first non-empty kept", got.Description)
	}
	if got.Metrics.Total != 128010 {
		t.Errorf("total = %d, want max 128010", got.Metrics.Total)
	}
	if got.Metrics.PeriodDelta != 250 {
		t.Errorf("delta = %d, want max 250", got.Metrics.PeriodDelta)
	}
	if got.Language != "Go" {
		t.Errorf("language = %q, want filled from second copy", got.Language)
	}
	if len(got.Tags) != 3 {
		t.Errorf("tags = %v, want union of 3", got.Tags)
	}
}

func TestMergeOrderIndependentMetrics(t *testing.T) {
	a := repoListing("a/b", 100, 5)
	b := repoListing("a/b", 90, 8)

	ab := Merge([]*types.Listing{a, b})[0]
	ba := Merge([]*types.Listing{b, a})[0]

	if ab.Metrics != ba.Metrics {
		t.Errorf("metrics depend on order: %+v vs %+v", ab.Metrics, ba.Metrics)
	}
	if ab.Metrics.Total != 100 || ab.Metrics.PeriodDelta != 8 {
		t.Errorf("metrics = %+v, want 100/8", ab.Metrics)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	a := repoListing("a/b", 100, 5)
	a.Tags = []string{"one"}
	b := repoListing("a/b", 200, 9)
	b.Tags = []string{"two"}

	Merge([]*types.Listing{a, b})

	if a.Metrics.Total != 100 || len(a.Tags) != 1 {
		t.Errorf("first input mutated: %+v %v", a.Metrics, a.Tags)
	}
	if b.Metrics.Total != 200 || len(b.Tags) != 1 {
		t.Errorf("second input mutated: %+v %v", b.Metrics, b.Tags)
	}
}

func TestMergeCrossPeriodDelta(t *testing.T) {
	a := repoListing("a/b", 100, 5)
	b := types.NewListing(types.SourceRepositoryTrend, types.PeriodWeekly, "a/b", "a/b")
	b.Metrics = types.Metrics{Total: 100, PeriodDelta: 40}

	// Deltas from different windows are not comparable; the first period's
	// delta stands.
	merged := Merge([]*types.Listing{a, b})[0]
	if merged.Metrics.PeriodDelta != 5 {
		t.Errorf("delta = %d, want 5 kept across periods", merged.Metrics.PeriodDelta)
	}
}
