package pipeline

import (
	"strings"

	"github.com/trendscout/trendscout/internal/types"
)

// DomainFilter keeps listings matching at least one requested domain label.
// An empty request list keeps everything.
type DomainFilter struct {
	Domains []string
}

// Name implements Stage.
func (f *DomainFilter) Name() string { return "domain_filter" }

// Apply implements Stage.
func (f *DomainFilter) Apply(listings []*types.Listing) []*types.Listing {
	if len(f.Domains) == 0 {
		return listings
	}
	out := listings[:0:0]
	for _, l := range listings {
		for _, want := range f.Domains {
			if l.HasDomain(types.Domain(strings.ToLower(want))) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// CategoryFilter keeps listings whose tags match at least one requested
// category, case-insensitively.
type CategoryFilter struct {
	Categories []string
}

// Name implements Stage.
func (f *CategoryFilter) Name() string { return "category_filter" }

// Apply implements Stage.
func (f *CategoryFilter) Apply(listings []*types.Listing) []*types.Listing {
	if len(f.Categories) == 0 {
		return listings
	}
	out := listings[:0:0]
	for _, l := range listings {
		if matchesAnyTag(l.Tags, f.Categories) {
			out = append(out, l)
		}
	}
	return out
}

func matchesAnyTag(tags, wanted []string) bool {
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, want := range wanted {
			if lower == strings.ToLower(want) {
				return true
			}
		}
	}
	return false
}

// QueryFilter keeps listings containing the free-text query as a
// case-insensitive substring of name, description, or any tag.
type QueryFilter struct {
	Query string
}

// Name implements Stage.
func (f *QueryFilter) Name() string { return "query_filter" }

// Apply implements Stage.
func (f *QueryFilter) Apply(listings []*types.Listing) []*types.Listing {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return listings
	}
	out := listings[:0:0]
	for _, l := range listings {
		if queryMatches(l, q) {
			out = append(out, l)
		}
	}
	return out
}

func queryMatches(l *types.Listing, q string) bool {
	if strings.Contains(strings.ToLower(l.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(l.Description), q) {
		return true
	}
	for _, tag := range l.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// techAliases normalizes the common shorthand names for languages so
// "golang" matches a repo whose language is "Go".
var techAliases = map[string]string{
	"golang":   "go",
	"js":       "javascript",
	"node":     "javascript",
	"nodejs":   "javascript",
	"ts":       "typescript",
	"py":       "python",
	"rb":       "ruby",
	"cpp":      "c++",
	"csharp":   "c#",
	"objc":     "objective-c",
	"rustlang": "rust",
}

// TechFilter keeps listings matching a requested technology: exact language
// (after alias normalization) or a tag substring. Repository source only;
// the scraper skips this stage for launch listings.
type TechFilter struct {
	Stack []string
}

// Name implements Stage.
func (f *TechFilter) Name() string { return "tech_filter" }

// Apply implements Stage.
func (f *TechFilter) Apply(listings []*types.Listing) []*types.Listing {
	if len(f.Stack) == 0 {
		return listings
	}

	wanted := make([]string, 0, len(f.Stack))
	for _, tech := range f.Stack {
		wanted = append(wanted, NormalizeTech(tech))
	}

	out := listings[:0:0]
	for _, l := range listings {
		if techMatches(l, wanted) {
			out = append(out, l)
		}
	}
	return out
}

func techMatches(l *types.Listing, wanted []string) bool {
	lang := NormalizeTech(l.Language)
	for _, tech := range wanted {
		if lang != "" && lang == tech {
			return true
		}
		for _, tag := range l.Tags {
			if strings.Contains(strings.ToLower(tag), tech) {
				return true
			}
		}
	}
	return false
}

// NormalizeTech lowercases a technology name and resolves known aliases.
func NormalizeTech(tech string) string {
	t := strings.ToLower(strings.TrimSpace(tech))
	if canonical, ok := techAliases[t]; ok {
		return canonical
	}
	return t
}
