// Copyright Matt King, 2026. All rights reserved.

// Package crossref resolves DOIs found in clinical papers to canonical
// bibliographic metadata via the CrossRef works API. The rename
// workflow uses it to recover title, first-author surname, and year for
// PDFs whose own metadata is junk.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mattkingphysio/letterkit/internal/httputil"
)

// worksBase is the CrossRef works endpoint. Declared as a var so tests
// can substitute an httptest server.
var worksBase = "https://api.crossref.org/works/"

// doiRe matches a DOI anywhere in free text. The trailing class stops
// before whitespace and common sentence punctuation.
var doiRe = regexp.MustCompile(`10\.\d{4,9}/[^\s"'<>]+`)

// FindDOI returns the first DOI-looking token in text, trimmed of
// trailing punctuation, or "" when none is present.
func FindDOI(text string) string {
	doi := doiRe.FindString(text)
	return strings.TrimRight(doi, ".,;:)]}")
}

// Work is the subset of a CrossRef work record the renamer needs.
type Work struct {
	DOI     string
	Title   string
	Author  string // first author's family name
	Year    int
	Journal string
}

// Client queries the CrossRef works API.
type Client struct {
	HTTPClient *http.Client
	Mailto     string // identifies the caller per CrossRef's polite pool
	UserAgent  string
}

// NewClient builds a client with a sane default timeout.
func NewClient(mailto, userAgent string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Mailto:     mailto,
		UserAgent:  userAgent,
	}
}

type worksResponse struct {
	Message struct {
		DOI    string   `json:"DOI"`
		Title  []string `json:"title"`
		Author []struct {
			Family string `json:"family"`
			Given  string `json:"given"`
		} `json:"author"`
		Issued struct {
			DateParts [][]int `json:"date-parts"`
		} `json:"issued"`
		ContainerTitle []string `json:"container-title"`
	} `json:"message"`
}

// Lookup resolves one DOI. A 404 means the DOI is unknown and returns
// an error naming it; rate limits are retried with backoff.
func (c *Client) Lookup(ctx context.Context, doi string) (Work, error) {
	apiURL := worksBase + url.PathEscape(doi)
	if c.Mailto != "" {
		apiURL += "?mailto=" + url.QueryEscape(c.Mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return Work{}, fmt.Errorf("creating CrossRef request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, 0)
	if err != nil {
		return Work{}, fmt.Errorf("CrossRef request for %s: %w", doi, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Work{}, fmt.Errorf("DOI not found: %s", doi)
	}
	if resp.StatusCode != http.StatusOK {
		return Work{}, fmt.Errorf("CrossRef returned HTTP %d for %s", resp.StatusCode, doi)
	}

	var wr worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return Work{}, fmt.Errorf("parsing CrossRef response: %w", err)
	}

	w := Work{DOI: wr.Message.DOI}
	if w.DOI == "" {
		w.DOI = doi
	}
	if len(wr.Message.Title) > 0 {
		w.Title = wr.Message.Title[0]
	}
	if len(wr.Message.Author) > 0 {
		w.Author = wr.Message.Author[0].Family
	}
	if parts := wr.Message.Issued.DateParts; len(parts) > 0 && len(parts[0]) > 0 {
		w.Year = parts[0][0]
	}
	if len(wr.Message.ContainerTitle) > 0 {
		w.Journal = wr.Message.ContainerTitle[0]
	}
	return w, nil
}
