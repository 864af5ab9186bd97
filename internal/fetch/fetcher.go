package fetch

import (
	"bytes"
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves the content of a single URL. A fetch failure is always
// recoverable by the caller: the URL simply contributes zero records.
type Fetcher interface {
	// Fetch retrieves the content at the given URL. The context carries the
	// call's deadline; there is no unbounded wait.
	Fetch(ctx context.Context, rawURL string) (*Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// Response is the result of fetching one URL.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the raw response body bytes.
	Body []byte

	// FinalURL is the URL after any redirects.
	FinalURL string

	// Duration is how long the fetch took.
	Duration time.Duration

	// FetchedAt is when this response was received.
	FetchedAt time.Time

	doc *goquery.Document
}

// Document returns a parsed goquery document, lazily initializing it.
func (r *Response) Document() (*goquery.Document, error) {
	if r.doc != nil {
		return r.doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		return nil, err
	}
	r.doc = doc
	return doc, nil
}

// IsSuccess returns true if the response status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
