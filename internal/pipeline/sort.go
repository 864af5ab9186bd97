package pipeline

import (
	"sort"

	"github.com/trendscout/trendscout/internal/types"
)

// SortStage ranks listings by (period delta desc, lifetime total desc).
// The sort is stable so equally-ranked listings keep first-seen order.
type SortStage struct{}

// Name implements Stage.
func (SortStage) Name() string { return "sort" }

// Apply implements Stage.
func (SortStage) Apply(listings []*types.Listing) []*types.Listing {
	out := append([]*types.Listing(nil), listings...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Metrics, out[j].Metrics
		if a.PeriodDelta != b.PeriodDelta {
			return a.PeriodDelta > b.PeriodDelta
		}
		return a.Total > b.Total
	})
	return out
}

// LimitStage truncates the collection to Max listings. Max <= 0 means
// unlimited; the launch-listing source runs without a limit because its
// page count already bounds volume.
type LimitStage struct {
	Max int
}

// Name implements Stage.
func (s *LimitStage) Name() string { return "limit" }

// Apply implements Stage.
func (s *LimitStage) Apply(listings []*types.Listing) []*types.Listing {
	if s.Max <= 0 || len(listings) <= s.Max {
		return listings
	}
	return listings[:s.Max]
}
