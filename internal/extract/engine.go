// Package extract turns one HTML document into zero or more raw extraction
// records for a source schema, using layered fallback strategies to survive
// unstable third-party markup.
package extract

import (
	"bytes"
	"html"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/trendscout/trendscout/internal/types"
)

// Engine applies a Schema to HTML documents. Stateless per call: no
// cross-call memory, safe for concurrent use.
type Engine struct {
	maxPerPage int
	logger     *slog.Logger
}

// NewEngine creates an extraction engine. maxPerPage caps records per
// document to bound downstream cost.
func NewEngine(maxPerPage int, logger *slog.Logger) *Engine {
	if maxPerPage <= 0 {
		maxPerPage = 25
	}
	return &Engine{
		maxPerPage: maxPerPage,
		logger:     logger.With("component", "extract_engine"),
	}
}

// Extract parses body and returns the raw records the schema recognizes.
// Failures are local: a page where no container strategy matches returns
// zero records and ErrNoContainers for the caller to log.
func (e *Engine) Extract(sourceURL string, body []byte, schema *Schema) ([]*types.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &types.ExtractError{URL: sourceURL, Err: err}
	}
	return e.ExtractDoc(sourceURL, doc, schema)
}

// ExtractDoc is Extract for an already parsed document.
func (e *Engine) ExtractDoc(sourceURL string, doc *goquery.Document, schema *Schema) ([]*types.Record, error) {
	containers, strategy := e.findContainers(doc, schema)
	if len(containers) == 0 {
		return nil, &types.ExtractError{URL: sourceURL, Err: types.ErrNoContainers}
	}

	e.logger.Debug("containers found",
		"schema", schema.Name,
		"strategy", strategy,
		"count", len(containers),
		"url", sourceURL,
	)

	records := make([]*types.Record, 0, len(containers))
	dropped := 0
	for _, container := range containers {
		if len(records) >= e.maxPerPage {
			break
		}

		rec := e.extractContainer(sourceURL, container, schema)
		if rec == nil {
			dropped++
			continue
		}
		records = append(records, rec)
	}

	if dropped > 0 {
		e.logger.Debug("containers dropped",
			"schema", schema.Name,
			"dropped", dropped,
			"kept", len(records),
			"url", sourceURL,
		)
	}

	return records, nil
}

// findContainers walks the strategy chain until one finds containers.
// A strategy that finds containers wins outright even if most of them later
// fail field extraction; escalation happens only on zero matches.
func (e *Engine) findContainers(doc *goquery.Document, schema *Schema) ([]*goquery.Selection, string) {
	for _, strategy := range schema.Containers {
		containers := strategy.Find(doc)
		if len(containers) > 0 {
			return containers, strategy.Name()
		}
	}
	return nil, ""
}

// extractContainer runs every field rule against one container. Returns nil
// when the container cannot become a record (no name, or denied link).
func (e *Engine) extractContainer(sourceURL string, container *goquery.Selection, schema *Schema) *types.Record {
	rec := types.NewRecord(sourceURL)

	for _, rule := range schema.Fields {
		if rule.Multi {
			if values := extractMulti(container, rule); len(values) > 0 {
				rec.Set(rule.Name, values)
			}
			continue
		}
		if value := extractFirst(container, rule); value != "" {
			rec.Set(rule.Name, value)
		}
	}

	// A container that yields no usable name cannot become a listing.
	if rec.GetString(schema.NameField) == "" {
		return nil
	}

	if schema.LinkField != "" && schema.LinkDenied(rec.GetString(schema.LinkField)) {
		return nil
	}

	return rec
}

// extractFirst tries the rule's sub-patterns in order and accepts the first
// non-empty, validated value.
func extractFirst(container *goquery.Selection, rule FieldRule) string {
	for _, pattern := range rule.Patterns {
		value := sanitize(pattern.Apply(container))
		if value == "" {
			continue
		}
		if rule.Validate != nil && !rule.Validate(value) {
			continue
		}
		return value
	}
	return ""
}

// extractMulti returns every match of the first sub-pattern that produces
// any, validated individually.
func extractMulti(container *goquery.Selection, rule FieldRule) []string {
	for _, pattern := range rule.Patterns {
		raw := pattern.ApplyAll(container)
		if len(raw) == 0 {
			continue
		}
		values := make([]string, 0, len(raw))
		for _, v := range raw {
			v = sanitize(v)
			if v == "" {
				continue
			}
			if rule.Validate != nil && !rule.Validate(v) {
				continue
			}
			values = append(values, v)
		}
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

// sanitize decodes HTML entities and normalizes inner whitespace.
func sanitize(s string) string {
	return collapseSpaces(html.UnescapeString(s))
}

func collapseSpaces(s string) string {
	var b []byte
	space := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			space = true
			continue
		}
		if space && len(b) > 0 {
			b = append(b, ' ')
		}
		space = false
		b = append(b, c)
	}
	return string(b)
}
