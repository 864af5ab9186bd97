package github

import (
	"strings"

	"github.com/trendscout/trendscout/internal/extract"
)

// deniedPathPrefixes lists first path segments whose links are known
// non-repository pages on the code host.
var deniedPathPrefixes = []string{
	"orgs",
	"sponsors",
	"topics",
	"settings",
	"collections",
	"features",
	"marketplace",
	"trending",
	"login",
	"about",
}

// newSchema builds the extraction schema for trending pages. The container
// chain goes from the stable article marker class down to a bare article
// match; field rules mirror the markup the trending page has used across
// its recent revisions.
func newSchema() *extract.Schema {
	return &extract.Schema{
		Name: "repository-trend",
		Containers: []extract.ContainerStrategy{
			&extract.CSSStrategy{Label: "primary", Selector: "article.Box-row"},
			&extract.CSSStrategy{Label: "secondary", Selector: "div.Box-row, li.Box-row"},
			&extract.XPathStrategy{Label: "fallback", Expr: "//article"},
		},
		Fields: []extract.FieldRule{
			{
				Name: "name",
				Patterns: []extract.FieldPattern{
					{Selector: "h2 a"},
					{Selector: "h1 a"},
				},
				Validate: func(v string) bool { return strings.Contains(v, "/") },
			},
			{
				Name: "link",
				Patterns: []extract.FieldPattern{
					{Selector: "h2 a", Attr: "href"},
					{Selector: "h1 a", Attr: "href"},
				},
			},
			{
				Name: "description",
				Patterns: []extract.FieldPattern{
					{Selector: "p.col-9"},
					{Selector: "p"},
				},
			},
			{
				Name: "language",
				Patterns: []extract.FieldPattern{
					{Selector: "[itemprop='programmingLanguage']"},
					{Selector: "span.repo-language-color + span"},
				},
			},
			{
				Name: "stars",
				Patterns: []extract.FieldPattern{
					{Selector: "a[href$='/stargazers']"},
					{Selector: "div.f6 a"},
				},
			},
			{
				Name: "forks",
				Patterns: []extract.FieldPattern{
					{Selector: "a[href$='/forks']"},
				},
			},
			{
				Name: "stars_period",
				Patterns: []extract.FieldPattern{
					{Selector: "span.d-inline-block.float-sm-right"},
					{Selector: "span.float-sm-right"},
				},
			},
		},
		NameField:          "name",
		LinkField:          "link",
		DeniedPathPrefixes: deniedPathPrefixes,
	}
}
