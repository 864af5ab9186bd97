package types

import (
	"strings"
	"time"
	"unicode"
)

// SourceKind identifies which scraping source produced a listing.
type SourceKind string

const (
	SourceRepositoryTrend SourceKind = "repository-trend"
	SourceLaunchListing   SourceKind = "launch-listing"
)

// Valid reports whether the source kind is one of the known sources.
func (k SourceKind) Valid() bool {
	return k == SourceRepositoryTrend || k == SourceLaunchListing
}

// TimePeriod is the trending window a scrape request targets.
type TimePeriod string

const (
	PeriodDaily   TimePeriod = "daily"
	PeriodWeekly  TimePeriod = "weekly"
	PeriodMonthly TimePeriod = "monthly"
)

// Valid reports whether the period is one of the supported windows.
func (p TimePeriod) Valid() bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

// PricingModel describes how a product is monetized, when known.
type PricingModel string

const (
	PricingFree     PricingModel = "free"
	PricingPaid     PricingModel = "paid"
	PricingFreemium PricingModel = "freemium"
)

// Domain is a classification label. The set is closed: classification
// assigns zero or more of these and falls back to DomainOther.
type Domain string

const (
	DomainAI           Domain = "ai"
	DomainDevTools     Domain = "devtools"
	DomainWeb          Domain = "web"
	DomainMobile       Domain = "mobile"
	DomainData         Domain = "data"
	DomainSecurity     Domain = "security"
	DomainProductivity Domain = "productivity"
	DomainDesign       Domain = "design"
	DomainGaming       Domain = "gaming"
	DomainOther        Domain = "other"
)

// Links holds the outbound URLs associated with a listing.
type Links struct {
	Website       string `json:"website,omitempty" bson:"website,omitempty"`
	Repository    string `json:"repository,omitempty" bson:"repository,omitempty"`
	SourcePage    string `json:"source_page,omitempty" bson:"source_page,omitempty"`
	Documentation string `json:"documentation,omitempty" bson:"documentation,omitempty"`
}

// Any reports whether at least one link is populated.
func (l Links) Any() bool {
	return l.Website != "" || l.Repository != "" || l.SourcePage != "" || l.Documentation != ""
}

// Metrics holds popularity counters. Total is the lifetime score (stars or
// upvotes); PeriodDelta is the score gained within the requested window.
// A delta exceeding the total indicates a parsing oddity upstream and is
// accepted as-is.
type Metrics struct {
	Total       int `json:"total" bson:"total"`
	PeriodDelta int `json:"period_delta" bson:"period_delta"`
}

// Listing is the canonical scraped entity ("Product" in caller-facing
// contracts). Listings are create-once: merging builds a new Listing rather
// than mutating either input.
type Listing struct {
	ID          string       `json:"id" bson:"_id"`
	Name        string       `json:"name" bson:"name"`
	Description string       `json:"description" bson:"description"`
	Tags        []string     `json:"tags" bson:"tags"`
	Domains     []Domain     `json:"domains" bson:"domains"`
	Pricing     PricingModel `json:"pricing_model,omitempty" bson:"pricing_model,omitempty"`
	Links       Links        `json:"links" bson:"links"`
	Metrics     Metrics      `json:"metrics" bson:"metrics"`
	Language    string       `json:"language,omitempty" bson:"language,omitempty"`
	Source      SourceKind   `json:"source_kind" bson:"source_kind"`
	Period      TimePeriod   `json:"time_period" bson:"time_period"`
	ScrapedAt   time.Time    `json:"scraped_at" bson:"scraped_at"`
}

// NewListing creates a Listing with its identity derived from the source kind
// and natural key. Scraping the same item twice yields the same ID.
func NewListing(kind SourceKind, period TimePeriod, naturalKey, name string) *Listing {
	return &Listing{
		ID:        ListingID(kind, naturalKey),
		Name:      name,
		Source:    kind,
		Period:    period,
		ScrapedAt: time.Now(),
	}
}

// ListingID derives a stable identifier from a source kind and natural key.
func ListingID(kind SourceKind, naturalKey string) string {
	return string(kind) + ":" + Slugify(naturalKey)
}

// Clone returns a deep copy of the listing.
func (l *Listing) Clone() *Listing {
	clone := *l
	clone.Tags = append([]string(nil), l.Tags...)
	clone.Domains = append([]Domain(nil), l.Domains...)
	return &clone
}

// HasDomain reports whether the listing carries the given domain label.
func (l *Listing) HasDomain(d Domain) bool {
	for _, have := range l.Domains {
		if have == d {
			return true
		}
	}
	return false
}

// Slugify lowercases s and collapses runs of non-alphanumeric characters
// into single hyphens. Path separators survive as hyphens so "owner/repo"
// and "Owner / Repo" slug identically.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
