// Package ai is the optional text-enhancement collaborator. Given a
// listing's name, description, and tags it asks an LLM for a short summary,
// highlights, and suggested tags. Failures never block a scrape.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/types"
)

// LLMProvider specifies which LLM backend to use.
type LLMProvider string

const (
	ProviderOllama LLMProvider = "ollama"
	ProviderOpenAI LLMProvider = "openai"
)

// Enhancement is what the collaborator produces for one listing.
type Enhancement struct {
	Summary       string   `json:"summary"`
	Highlights    []string `json:"highlights"`
	SuggestedTags []string `json:"suggestedTags"`
}

// LLMClient communicates with an LLM backend.
type LLMClient struct {
	cfg    config.AI
	client *http.Client
	logger *slog.Logger
}

// NewLLMClient creates a new LLM client.
func NewLLMClient(cfg config.AI, logger *slog.Logger) *LLMClient {
	return &LLMClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger.With("component", "llm_client"),
	}
}

// Enhance asks the LLM for a summary, highlights, and suggested tags for
// one listing.
func (c *LLMClient) Enhance(ctx context.Context, l *types.Listing) (*Enhancement, error) {
	prompt := buildPrompt(l)

	response, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw := extractJSON(response)
	var enh Enhancement
	if err := json.Unmarshal([]byte(raw), &enh); err != nil {
		return nil, fmt.Errorf("decode enhancement: %w", err)
	}
	if enh.Summary == "" {
		return nil, fmt.Errorf("empty enhancement for %q", l.Name)
	}
	return &enh, nil
}

// EnhanceAll enhances listings sequentially, keeping originals on failure.
// Returned listings are clones; inputs are never mutated.
func (c *LLMClient) EnhanceAll(ctx context.Context, listings []*types.Listing) []*types.Listing {
	out := make([]*types.Listing, len(listings))
	for i, l := range listings {
		out[i] = l

		enh, err := c.Enhance(ctx, l)
		if err != nil {
			c.logger.Warn("enhancement failed", "name", l.Name, "error", err)
			continue
		}

		clone := l.Clone()
		clone.Description = enh.Summary
		for _, tag := range enh.SuggestedTags {
			if !hasTag(clone.Tags, tag) {
				clone.Tags = append(clone.Tags, tag)
			}
		}
		out[i] = clone
	}
	return out
}

func buildPrompt(l *types.Listing) string {
	return fmt.Sprintf(`You are summarizing a trending product for a discovery feed.

Name: %s
Description: %s
Tags: %s

Return JSON with keys:
- "summary": one crisp sentence describing the product
- "highlights": array of up to 3 short strings naming what stands out
- "suggestedTags": array of up to 5 lowercase topic tags`,
		l.Name, l.Description, strings.Join(l.Tags, ", "))
}

func (c *LLMClient) generate(ctx context.Context, prompt string) (string, error) {
	switch LLMProvider(c.cfg.Provider) {
	case ProviderOllama:
		return c.generateOllama(ctx, prompt)
	case ProviderOpenAI:
		return c.generateOpenAI(ctx, prompt)
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", c.cfg.Provider)
	}
}

func (c *LLMClient) generateOllama(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  c.cfg.Model,
		"prompt": prompt,
		"stream": false,
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.Endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return result.Response, nil
}

func (c *LLMClient) generateOpenAI(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	body, _ := json.Marshal(payload)
	endpoint := c.cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", err
	}

	content := gjson.GetBytes(buf.Bytes(), "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("no choices in openai response")
	}
	return content.String(), nil
}

func hasTag(tags []string, tag string) bool {
	for _, have := range tags {
		if strings.EqualFold(have, tag) {
			return true
		}
	}
	return false
}

// extractJSON finds the first balanced JSON object in an LLM response,
// tolerating prose or code fences around it.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return "{}"
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return "{}"
}
