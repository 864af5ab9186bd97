package pipeline

import (
	"github.com/trendscout/trendscout/internal/types"
)

// Merge collapses records that share a natural identity (the stable listing
// ID) into one listing per key, preserving first-seen order. Merging
// constructs a new listing; neither input is mutated.
//
// Field policy on collision: description keeps the first non-empty value,
// metrics take the max (period delta only across the same time period),
// tags are set-unioned, links fill in whichever side has a value.
// Max-based metric merging makes the operation order-independent.
func Merge(listings []*types.Listing) []*types.Listing {
	byID := make(map[string]int, len(listings))
	out := make([]*types.Listing, 0, len(listings))

	for _, incoming := range listings {
		idx, seen := byID[incoming.ID]
		if !seen {
			byID[incoming.ID] = len(out)
			out = append(out, incoming.Clone())
			continue
		}
		out[idx] = mergePair(out[idx], incoming)
	}

	return out
}

// mergePair combines two listings with the same identity into a fresh one.
func mergePair(existing, incoming *types.Listing) *types.Listing {
	merged := existing.Clone()

	if merged.Description == "" {
		merged.Description = incoming.Description
	}
	if incoming.Metrics.Total > merged.Metrics.Total {
		merged.Metrics.Total = incoming.Metrics.Total
	}
	if existing.Period == incoming.Period && incoming.Metrics.PeriodDelta > merged.Metrics.PeriodDelta {
		merged.Metrics.PeriodDelta = incoming.Metrics.PeriodDelta
	}

	merged.Tags = unionTags(merged.Tags, incoming.Tags)

	if merged.Language == "" {
		merged.Language = incoming.Language
	}
	if merged.Pricing == "" {
		merged.Pricing = incoming.Pricing
	}
	if merged.Links.Website == "" {
		merged.Links.Website = incoming.Links.Website
	}
	if merged.Links.Repository == "" {
		merged.Links.Repository = incoming.Links.Repository
	}
	if merged.Links.SourcePage == "" {
		merged.Links.SourcePage = incoming.Links.SourcePage
	}
	if merged.Links.Documentation == "" {
		merged.Links.Documentation = incoming.Links.Documentation
	}

	return merged
}

// unionTags appends tags from b not already present in a, preserving order.
func unionTags(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, t := range a {
		seen[t] = true
	}
	out := a
	for _, t := range b {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// MergeStage wraps Merge for use in a stage chain.
type MergeStage struct{}

// Name implements Stage.
func (MergeStage) Name() string { return "merge" }

// Apply implements Stage.
func (MergeStage) Apply(listings []*types.Listing) []*types.Listing {
	return Merge(listings)
}
