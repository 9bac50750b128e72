// Copyright Matt King, 2026. All rights reserved.

package crossref

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDOI(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain DOI",
			text: "See doi:10.1016/j.jsams.2020.04.005 for details",
			want: "10.1016/j.jsams.2020.04.005",
		},
		{
			name: "DOI with trailing period",
			text: "Available at https://doi.org/10.1136/bjsports-2019-101206.",
			want: "10.1136/bjsports-2019-101206",
		},
		{
			name: "no DOI",
			text: "Dear Dr. Smith, thank you for the referral.",
			want: "",
		},
		{
			name: "DOI before closing bracket",
			text: "(10.1007/s40279-021-01443-8)",
			want: "10.1007/s40279-021-01443-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindDOI(tt.text))
		})
	}
}

func TestLookup(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "mailto=clinic%40example.com")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"message": {
				"DOI": "10.1136/bjsports-2019-101206",
				"title": ["Exercise therapy for rotator cuff tendinopathy"],
				"author": [
					{"family": "Littlewood", "given": "Chris"},
					{"family": "May", "given": "Stephen"}
				],
				"issued": {"date-parts": [[2020, 3, 12]]},
				"container-title": ["British Journal of Sports Medicine"]
			}
		}`))
	}))
	defer ts.Close()

	oldBase := worksBase
	worksBase = ts.URL + "/"
	defer func() { worksBase = oldBase }()

	c := NewClient("clinic@example.com", "letterkit/test")
	c.HTTPClient = ts.Client()

	w, err := c.Lookup(context.Background(), "10.1136/bjsports-2019-101206")
	require.NoError(t, err)
	assert.Equal(t, "10.1136/bjsports-2019-101206", w.DOI)
	assert.Equal(t, "Exercise therapy for rotator cuff tendinopathy", w.Title)
	assert.Equal(t, "Littlewood", w.Author)
	assert.Equal(t, 2020, w.Year)
	assert.Equal(t, "British Journal of Sports Medicine", w.Journal)
}

func TestLookupNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	oldBase := worksBase
	worksBase = ts.URL + "/"
	defer func() { worksBase = oldBase }()

	c := NewClient("", "")
	c.HTTPClient = ts.Client()

	_, err := c.Lookup(context.Background(), "10.9999/does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOI not found")
}

func TestLookupEmptyFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"message": {}}`))
	}))
	defer ts.Close()

	oldBase := worksBase
	worksBase = ts.URL + "/"
	defer func() { worksBase = oldBase }()

	c := NewClient("", "")
	c.HTTPClient = ts.Client()

	w, err := c.Lookup(context.Background(), "10.1234/sparse")
	require.NoError(t, err)
	// The requested DOI backfills a missing response DOI.
	assert.Equal(t, "10.1234/sparse", w.DOI)
	assert.Empty(t, w.Title)
	assert.Zero(t, w.Year)
}
