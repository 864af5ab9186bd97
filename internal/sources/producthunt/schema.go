package producthunt

import (
	"github.com/trendscout/trendscout/internal/extract"
)

// deniedPathPrefixes lists first path segments whose links are index or
// sponsorship pages rather than product posts.
var deniedPathPrefixes = []string{
	"topics",
	"categories",
	"sponsor",
	"stories",
	"discussions",
	"newsletters",
	"visit-streaks",
}

// newSchema builds the extraction schema for leaderboard and topic pages.
// The primary container marker and the field selectors track the site's
// data-test attributes; the fallbacks cover older class-based markup.
func newSchema() *extract.Schema {
	return &extract.Schema{
		Name: "launch-listing",
		Containers: []extract.ContainerStrategy{
			&extract.CSSStrategy{Label: "primary", Selector: "section[data-test^='post-item']"},
			&extract.CSSStrategy{Label: "secondary", Selector: "[data-test^='post-item'], div[data-test^='product-item']"},
			&extract.XPathStrategy{Label: "fallback", Expr: "//main//section[.//a[starts-with(@href,'/posts/')]]"},
		},
		Fields: []extract.FieldRule{
			{
				Name: "name",
				Patterns: []extract.FieldPattern{
					{Selector: "div[data-test^='post-name'] a"},
					{Selector: "a[data-test^='post-name']"},
					{Selector: "h3 a"},
				},
			},
			{
				Name: "link",
				Patterns: []extract.FieldPattern{
					{Selector: "div[data-test^='post-name'] a", Attr: "href"},
					{Selector: "a[data-test^='post-name']", Attr: "href"},
					{Selector: "a[href^='/posts/']", Attr: "href"},
				},
			},
			{
				Name: "description",
				Patterns: []extract.FieldPattern{
					{Selector: "div[data-test^='post-name'] + div.text-secondary"},
					{Selector: "div[data-test^='post-name'] + div[data-sentry-component='LegacyText']"},
					{Selector: "div[data-test^='post-name'] + div"},
				},
			},
			{
				Name: "votes",
				Patterns: []extract.FieldPattern{
					{Selector: "button[data-test='vote-button'] p"},
					{Selector: "button[data-test='vote-button']"},
					{Selector: "[data-test='vote-button'] div"},
				},
			},
			{
				Name:  "tags",
				Multi: true,
				Patterns: []extract.FieldPattern{
					{Selector: "div[data-sentry-component='TagList'] a"},
					{Selector: "a[href^='/topics/']"},
				},
			},
			{
				Name: "logo",
				Patterns: []extract.FieldPattern{
					{Selector: "img", Attr: "src"},
				},
			},
		},
		NameField:          "name",
		LinkField:          "link",
		DeniedPathPrefixes: deniedPathPrefixes,
	}
}
