package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/trendscout/trendscout/internal/types"
)

// JSONStorage buffers listings and writes them as one indented JSON array
// on Close.
type JSONStorage struct {
	path     string
	listings []*types.Listing
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(path string, logger *slog.Logger) (*JSONStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &JSONStorage{
		path:   path,
		logger: logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(listings []*types.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append(s.listings, listings...)
	s.logger.Debug("listings buffered", "count", len(listings), "total", len(s.listings))
	return nil
}

func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.listings); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	s.logger.Info("JSON written", "path", s.path, "listings", len(s.listings))
	return nil
}

// JSONLStorage streams listings as newline-delimited JSON, one object per
// line.
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage.
func NewJSONLStorage(path string, logger *slog.Logger) (*JSONLStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return &JSONLStorage{
		path:   path,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(listings []*types.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range listings {
		if err := s.enc.Encode(l); err != nil {
			return fmt.Errorf("encode JSONL: %w", err)
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "listings", s.count)
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// csvHeader is the fixed column set for CSV output. Listings have a known
// shape, so no header detection is needed.
var csvHeader = []string{
	"id", "name", "description", "source", "period", "language",
	"total", "period_delta", "tags", "domains", "link", "scraped_at",
}

// CSVStorage writes listings as CSV rows with a fixed header.
type CSVStorage struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewCSVStorage creates a new CSV file storage.
func NewCSVStorage(path string, logger *slog.Logger) (*CSVStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}

	return &CSVStorage{
		path:   path,
		file:   f,
		writer: w,
		logger: logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(listings []*types.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range listings {
		if err := s.writer.Write(csvRow(l)); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
		s.count++
	}

	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVStorage) Close() error {
	s.logger.Info("CSV written", "path", s.path, "listings", s.count)
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func csvRow(l *types.Listing) []string {
	domains := make([]string, len(l.Domains))
	for i, d := range l.Domains {
		domains[i] = string(d)
	}
	return []string{
		l.ID,
		l.Name,
		l.Description,
		string(l.Source),
		string(l.Period),
		l.Language,
		strconv.Itoa(l.Metrics.Total),
		strconv.Itoa(l.Metrics.PeriodDelta),
		strings.Join(l.Tags, ";"),
		strings.Join(domains, ";"),
		primaryLink(l),
		l.ScrapedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func primaryLink(l *types.Listing) string {
	if l.Links.Repository != "" {
		return l.Links.Repository
	}
	if l.Links.Website != "" {
		return l.Links.Website
	}
	return l.Links.SourcePage
}
