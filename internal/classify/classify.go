// Package classify maps listing text, topics, and language onto domain
// labels using keyword rules. Pure and deterministic: no external calls,
// no state.
package classify

import (
	"strings"

	"github.com/trendscout/trendscout/internal/types"
)

// rule holds the keyword memberships for one domain. Rules are evaluated
// independently, so a listing may match several domains.
type rule struct {
	domain   types.Domain
	keywords []string
}

// rules is the closed rule set. Keywords are matched case-insensitively as
// substrings of the listing's combined text, and exactly against topics and
// language.
var rules = []rule{
	{types.DomainAI, []string{
		"ai", "llm", "machine learning", "deep learning", "neural",
		"gpt", "agent", "rag", "transformer", "inference", "model",
		"chatbot", "langchain", "diffusion",
	}},
	{types.DomainDevTools, []string{
		"cli", "sdk", "compiler", "debugger", "devops", "kubernetes",
		"docker", "terminal", "editor", "ide", "git", "ci/cd", "testing",
		"framework", "library", "api",
	}},
	{types.DomainWeb, []string{
		"web", "frontend", "react", "vue", "svelte", "css", "browser",
		"javascript", "typescript", "nextjs", "website", "http",
	}},
	{types.DomainMobile, []string{
		"mobile", "ios", "android", "flutter", "react native", "swift",
		"kotlin", "app store",
	}},
	{types.DomainData, []string{
		"database", "sql", "analytics", "etl", "data pipeline", "warehouse",
		"postgres", "storage", "search engine", "vector", "scraping",
		"visualization",
	}},
	{types.DomainSecurity, []string{
		"security", "vulnerability", "pentest", "encryption", "auth",
		"password", "firewall", "malware", "privacy", "zero trust",
	}},
	{types.DomainProductivity, []string{
		"productivity", "notes", "todo", "calendar", "workflow",
		"automation", "collaboration", "project management", "email",
	}},
	{types.DomainDesign, []string{
		"design", "figma", "ui kit", "icons", "typography", "illustration",
		"prototyping", "color",
	}},
	{types.DomainGaming, []string{
		"game", "gaming", "game engine", "unity", "godot", "multiplayer",
		"voxel", "shader",
	}},
}

// languageDomains maps programming languages to domains they imply.
var languageDomains = map[string]types.Domain{
	"javascript": types.DomainWeb,
	"typescript": types.DomainWeb,
	"css":        types.DomainWeb,
	"html":       types.DomainWeb,
	"swift":      types.DomainMobile,
	"kotlin":     types.DomainMobile,
	"dart":       types.DomainMobile,
}

// Classify assigns domain labels to a listing from its name, description,
// topics, and language. Never returns an empty set: listings matching no
// rule get DomainOther.
func Classify(l *types.Listing) []types.Domain {
	text := strings.ToLower(l.Name + " " + l.Description)
	topics := make(map[string]bool, len(l.Tags))
	for _, t := range l.Tags {
		topics[strings.ToLower(t)] = true
	}
	lang := strings.ToLower(l.Language)

	var domains []types.Domain
	seen := make(map[types.Domain]bool)

	add := func(d types.Domain) {
		if !seen[d] {
			seen[d] = true
			domains = append(domains, d)
		}
	}

	for _, r := range rules {
		if matches(r, text, topics) {
			add(r.domain)
		}
	}
	if d, ok := languageDomains[lang]; ok {
		add(d)
	}

	if len(domains) == 0 {
		domains = []types.Domain{types.DomainOther}
	}
	return domains
}

// matches reports whether any rule keyword appears in the combined text as
// a word, or exactly as a topic.
func matches(r rule, text string, topics map[string]bool) bool {
	for _, kw := range r.keywords {
		if topics[kw] {
			return true
		}
		if containsWord(text, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether kw occurs in text on word boundaries.
// Substring matching alone would make "ai" match "maintain".
func containsWord(text, kw string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}
