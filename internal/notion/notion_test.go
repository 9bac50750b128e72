// Copyright Matt King, 2026. All rights reserved.

package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattkingphysio/letterkit/internal/catalog"
)

func withTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := apiBase
	apiBase = ts.URL
	t.Cleanup(func() { apiBase = old })

	c := NewClient("ntn_test_token", "db-123")
	c.HTTPClient = ts.Client()
	return c
}

func TestCreatePage(t *testing.T) {
	var got pageRequest
	c := withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pages", r.URL.Path)
		assert.Equal(t, "Bearer ntn_test_token", r.Header.Get("Authorization"))
		assert.Equal(t, notionVersion, r.Header.Get("Notion-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"object":"page"}`))
	})

	l := catalog.Letter{
		Filename:   "SmithJ-Knee-Letter to Dr. Jones-24.08.26.pdf",
		PatientKey: "SmithJ",
		BodyArea:   "Knee",
		Referrer:   "Dr. Jones",
		CreatedAt:  time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.CreatePage(context.Background(), l))

	assert.Equal(t, "db-123", got.Parent["database_id"])
	require.Contains(t, got.Properties, "Name")
	require.Contains(t, got.Properties, "Patient")
	require.Contains(t, got.Properties, "Created")
}

func TestCreatePageErrorIncludesBody(t *testing.T) {
	c := withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Body Area is not a property"}`))
	})

	err := c.CreatePage(context.Background(), catalog.Letter{Filename: "x.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
	assert.Contains(t, err.Error(), "Body Area is not a property")
}

func TestSyncMarksSuccesses(t *testing.T) {
	store, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for _, name := range []string{"a.pdf", "b.pdf"} {
		_, err := store.Record(ctx, catalog.Letter{Filename: name, PatientKey: "SmithJ"})
		require.NoError(t, err)
	}

	var calls int32
	c := withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"object":"page"}`))
	})

	var out bytes.Buffer
	summary, err := c.Sync(ctx, store, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Synced)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	unsynced, err := store.Unsynced(ctx)
	require.NoError(t, err)
	assert.Empty(t, unsynced)

	// A second sync has nothing to do.
	summary, err = c.Sync(ctx, store, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total())
}

func TestSyncContinuesPastFailures(t *testing.T) {
	store, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"fails.pdf", "works.pdf"} {
		_, err := store.Record(ctx, catalog.Letter{
			Filename:   name,
			PatientKey: "SmithJ",
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	var calls int32
	c := withTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"object":"page"}`))
	})

	var out bytes.Buffer
	summary, err := c.Sync(ctx, store, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Synced)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures())

	// The failed letter stays unsynced for the next run.
	unsynced, err := store.Unsynced(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, "fails.pdf", unsynced[0].Filename)
}
