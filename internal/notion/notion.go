// Copyright Matt King, 2026. All rights reserved.

// Package notion pushes catalog entries to a Notion database, one page
// per letter. Sync is incremental: only rows without a sync timestamp
// are sent, and each success is stamped back into the catalog.
// See docs/ARCHITECTURE § Notion Sync.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mattkingphysio/letterkit/internal/catalog"
	"github.com/mattkingphysio/letterkit/internal/httputil"
)

// apiBase is the Notion API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.notion.com/v1"

// notionVersion is the pinned API revision sent with every request.
const notionVersion = "2022-06-28"

// Client talks to the Notion pages API.
type Client struct {
	HTTPClient *http.Client
	Token      string
	DatabaseID string
}

// NewClient builds a client with a sane default timeout.
func NewClient(token, databaseID string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Token:      token,
		DatabaseID: databaseID,
	}
}

// pageRequest is the create-page payload for one letter.
type pageRequest struct {
	Parent     map[string]string         `json:"parent"`
	Properties map[string]map[string]any `json:"properties"`
}

func (c *Client) pagePayload(l catalog.Letter) pageRequest {
	title := func(s string) map[string]any {
		return map[string]any{"title": []map[string]any{{"text": map[string]string{"content": s}}}}
	}
	text := func(s string) map[string]any {
		return map[string]any{"rich_text": []map[string]any{{"text": map[string]string{"content": s}}}}
	}
	return pageRequest{
		Parent: map[string]string{"database_id": c.DatabaseID},
		Properties: map[string]map[string]any{
			"Name":       title(l.Filename),
			"Patient":    text(l.PatientKey),
			"Body Area":  text(l.BodyArea),
			"Referrer":   text(l.Referrer),
			"Provenance": text(l.Provenance),
			"Source":     text(l.SourceFile),
			"Created": {
				"date": map[string]string{"start": l.CreatedAt.UTC().Format(time.RFC3339)},
			},
		},
	}
}

// CreatePage creates one database page for a letter.
func (c *Client) CreatePage(ctx context.Context, l catalog.Letter) error {
	body, err := json.Marshal(c.pagePayload(l))
	if err != nil {
		return fmt.Errorf("encoding page for %s: %w", l.Filename, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+"/pages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating Notion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.HTTPClient, req, 0)
	if err != nil {
		return fmt.Errorf("Notion request for %s: %w", l.Filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Notion returned HTTP %d for %s: %s", resp.StatusCode, l.Filename, detail)
	}
	return nil
}

// SyncSummary counts the outcome of a sync run.
type SyncSummary struct {
	Synced  int
	Failed  int
	Pending int
}

// Total returns the number of letters considered.
func (s SyncSummary) Total() int {
	return s.Synced + s.Failed
}

// HasFailures reports whether any page creation failed.
func (s SyncSummary) HasFailures() bool { return s.Failed > 0 }

// Sync pushes every unsynced catalog letter and stamps successes.
// Failures are reported per letter and do not stop the run.
func (c *Client) Sync(ctx context.Context, store *catalog.Store, w io.Writer) (SyncSummary, error) {
	letters, err := store.Unsynced(ctx)
	if err != nil {
		return SyncSummary{}, err
	}

	var summary SyncSummary
	for _, l := range letters {
		select {
		case <-ctx.Done():
			summary.Pending = len(letters) - summary.Total()
			return summary, ctx.Err()
		default:
		}

		if err := c.CreatePage(ctx, l); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", l.Filename, err)
			summary.Failed++
			continue
		}
		if err := store.MarkSynced(ctx, l.ID, time.Now()); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", l.Filename, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "synced  %s\n", l.Filename)
		summary.Synced++
	}

	fmt.Fprintf(w, "\nsynced: %d, failed: %d\n", summary.Synced, summary.Failed)
	return summary, nil
}
