package storage

import (
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trendscout/trendscout/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func sampleListings() []*types.Listing {
	a := types.NewListing(types.SourceRepositoryTrend, types.PeriodDaily, "golang/go", "golang/go")
	a.Description = "The Go programming language"
	a.Language = "Go"
	a.Tags = []string{"language", "compiler"}
	a.Domains = []types.Domain{types.DomainDevTools}
	a.Metrics = types.Metrics{Total: 128000, PeriodDelta: 250}
	a.Links.Repository = "https://github.com/golang/go"

	b := types.NewListing(types.SourceLaunchListing, types.PeriodDaily, "LaunchPad", "LaunchPad")
	b.Metrics = types.Metrics{Total: 512, PeriodDelta: 512}
	b.Links.SourcePage = "https://www.producthunt.com/posts/launchpad"

	return []*types.Listing{a, b}
}

func TestJSONStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "listings.json")

	s, err := NewJSONStorage(path, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Store(sampleListings()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out []*types.Listing
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d listings", len(out))
	}
	if out[0].ID != "repository-trend:golang-go" {
		t.Errorf("ID = %q", out[0].ID)
	}
	if out[0].Metrics.PeriodDelta != 250 {
		t.Errorf("delta = %d", out[0].Metrics.PeriodDelta)
	}
}

func TestJSONLStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.jsonl")

	s, err := NewJSONLStorage(path, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Store(sampleListings()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		var l types.Listing
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestCSVStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.csv")

	s, err := NewCSVStorage(path, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Store(sampleListings()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || rows[0][1] != "name" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "golang/go" {
		t.Errorf("first row name = %q", rows[1][1])
	}
	if rows[1][10] != "https://github.com/golang/go" {
		t.Errorf("first row link = %q", rows[1][10])
	}
	if rows[2][10] != "https://www.producthunt.com/posts/launchpad" {
		t.Errorf("second row link = %q", rows[2][10])
	}
}
