package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FieldPattern is one way of pulling a field value out of a container.
// Patterns within a rule are tried in order; the first that yields a
// non-empty value wins.
type FieldPattern struct {
	// Selector is a CSS selector evaluated relative to the container.
	Selector string

	// Attr names the attribute to read. Empty means text content.
	Attr string
}

// Apply evaluates the pattern against a container and returns the first
// matched value, trimmed.
func (p FieldPattern) Apply(container *goquery.Selection) string {
	sel := container.Find(p.Selector).First()
	if sel.Length() == 0 {
		return ""
	}
	if p.Attr != "" {
		v, _ := sel.Attr(p.Attr)
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(sel.Text())
}

// ApplyAll evaluates the pattern and returns every matched value.
func (p FieldPattern) ApplyAll(container *goquery.Selection) []string {
	var out []string
	container.Find(p.Selector).Each(func(_ int, sel *goquery.Selection) {
		var v string
		if p.Attr != "" {
			v, _ = sel.Attr(p.Attr)
		} else {
			v = sel.Text()
		}
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	})
	return out
}

// FieldRule extracts one target field from a container via an ordered list
// of sub-patterns.
type FieldRule struct {
	// Name is the record field this rule populates.
	Name string

	// Patterns are tried in order; the first non-empty result is accepted.
	Patterns []FieldPattern

	// Multi collects every match of the first productive pattern instead of
	// the first match only (tags, topics).
	Multi bool

	// Validate optionally rejects a candidate value; rejected values fall
	// through to the next pattern.
	Validate func(string) bool
}

// Schema describes how one source's pages are turned into raw records.
type Schema struct {
	// Name identifies the schema in logs.
	Name string

	// Containers is the prioritized list of container strategies.
	// Escalation to a later strategy happens only when an earlier one finds
	// zero containers, never on partial field-extraction failure.
	Containers []ContainerStrategy

	// Fields are the per-field extraction rules.
	Fields []FieldRule

	// NameField is the record field a container must yield to become a
	// record. Containers without it are discarded.
	NameField string

	// LinkField names the record field holding the item's own link, checked
	// against DeniedPathPrefixes.
	LinkField string

	// DeniedPathPrefixes lists first path segments whose links are known
	// non-item pages (organization, sponsorship, topic-index pages).
	DeniedPathPrefixes []string
}

// LinkDenied reports whether a raw item link resolves to a known non-item
// URL shape. Relative and absolute links are both handled.
func (s *Schema) LinkDenied(rawLink string) bool {
	if rawLink == "" || len(s.DeniedPathPrefixes) == 0 {
		return false
	}
	u, err := url.Parse(rawLink)
	if err != nil {
		return false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return false
	}
	for _, denied := range s.DeniedPathPrefixes {
		if strings.EqualFold(segments[0], denied) {
			return true
		}
	}
	return false
}
