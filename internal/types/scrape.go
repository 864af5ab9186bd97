package types

import "time"

// ListingMode selects how the launch-listing source is queried.
type ListingMode string

const (
	// ModeLeaderboard scrapes one period-scoped leaderboard page.
	ModeLeaderboard ListingMode = "leaderboard"

	// ModeByTopic scrapes one page per (topic, page) combination.
	ModeByTopic ListingMode = "by-topic"
)

// Filters narrows and shapes a scrape. Fields apply per source: TechStack,
// Query and MaxLimit only affect the repository-trend source; the date
// fields, Mode, Topics, PageCount, FeaturedOnly and SecondaryAPIKey only
// affect the launch-listing source.
type Filters struct {
	TimePeriod TimePeriod `json:"timePeriod"`
	Domains    []string   `json:"domain,omitempty"`
	Categories []string   `json:"category,omitempty"`
	TechStack  []string   `json:"techStack,omitempty"`
	Query      string     `json:"query,omitempty"`
	MaxLimit   int        `json:"maxLimit,omitempty"`

	Year         int         `json:"year,omitempty"`
	Month        int         `json:"month,omitempty"`
	Day          int         `json:"day,omitempty"`
	Week         int         `json:"week,omitempty"`
	FeaturedOnly bool        `json:"featuredOnly,omitempty"`
	Mode         ListingMode `json:"mode,omitempty"`
	Topics       []string    `json:"topics,omitempty"`
	PageCount    int         `json:"pageCount,omitempty"`

	SecondaryAPIKey string `json:"secondaryApiKey,omitempty"`
}

// DefaultMaxLimit bounds repository-trend results when the caller does not
// ask for a specific count.
const DefaultMaxLimit = 20

// ScrapeRequest is the single contract the core consumes.
type ScrapeRequest struct {
	Source  SourceKind `json:"source"`
	Filters Filters    `json:"filters"`
}

// ScrapeResult is the structured envelope every scrape returns. A scrape
// where every URL failed is still a successful (empty) result with an
// explanatory message; only request validation produces Success=false.
type ScrapeResult struct {
	Success    bool       `json:"success"`
	Products   []*Listing `json:"products"`
	TotalFound int        `json:"total_found"`
	Timestamp  time.Time  `json:"timestamp"`
	Message    string     `json:"message,omitempty"`
	Error      string     `json:"error,omitempty"`
	Applied    Filters    `json:"applied_filters"`
}
