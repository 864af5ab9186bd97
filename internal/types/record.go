package types

import (
	"strconv"
	"strings"
	"time"
)

// Record is a raw extraction record: the transient, pre-canonical structure
// produced directly from HTML parsing. All fields are optional until a source
// adapter maps the record into a Listing. Records never leave the
// extraction/adapter boundary.
type Record struct {
	// Fields stores the extracted key-value data.
	Fields map[string]any

	// SourceURL is the page URL this record was extracted from.
	SourceURL string

	// ScrapedAt is when this record was created.
	ScrapedAt time.Time
}

// NewRecord creates an empty Record from a source page URL.
func NewRecord(sourceURL string) *Record {
	return &Record{
		Fields:    make(map[string]any),
		SourceURL: sourceURL,
		ScrapedAt: time.Now(),
	}
}

// Set sets a field value.
func (r *Record) Set(key string, value any) {
	r.Fields[key] = value
}

// Has returns true if the field exists.
func (r *Record) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// GetString retrieves a field value as a trimmed string.
func (r *Record) GetString(key string) string {
	v, ok := r.Fields[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// GetStrings retrieves a field value as a string slice. A scalar string
// field is returned as a one-element slice.
func (r *Record) GetStrings(key string) []string {
	switch v := r.Fields[key].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// GetInt retrieves a numeric field, parsing strings like "1,234" or "12.5k"
// that trending pages use for counters. Unparseable values yield 0.
func (r *Record) GetInt(key string) int {
	switch v := r.Fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		return ParseCount(v)
	default:
		return 0
	}
}

// ParseCount parses human-formatted counters: "1,234", "12.5k", "3m",
// "1,234 stars today". Returns 0 when no leading number is present.
func ParseCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	// Cut at the first rune that cannot be part of the number.
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == ',' || c == '.' {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}

	multiplier := 1.0
	if end < len(s) {
		switch s[end] | 0x20 {
		case 'k':
			multiplier = 1_000
		case 'm':
			multiplier = 1_000_000
		}
	}

	numeric := strings.ReplaceAll(s[:end], ",", "")
	f, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0
	}
	n := int(f * multiplier)
	if n < 0 {
		return 0
	}
	return n
}
