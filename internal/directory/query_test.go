package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryAll_SinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/collections/col-1/query", r.URL.Path)

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultPageSize, req.PageSize)
		assert.Empty(t, req.StartCursor)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"results": [
				{"id":"rec-1","created_time":"2026-01-01T00:00:00Z","last_edited_time":"2026-01-02T00:00:00Z",
				 "properties":{"Name":{"type":"title","title":[{"plain_text":"Acme Corp"}]}}},
				{"id":"rec-2","created_time":"2026-01-01T00:00:00Z","last_edited_time":"2026-01-02T00:00:00Z",
				 "properties":{}}
			],
			"has_more": false,
			"next_cursor": null
		}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	records, err := client.QueryAll(context.Background(), "col-1")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "rec-1", records[0].ID)
	assert.Equal(t, "Acme Corp", records[0].Prop("Name").PlainText())
	assert.Equal(t, "rec-2", records[1].ID)
}

func TestQueryAll_FollowsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")

		if req.StartCursor == "" {
			fmt.Fprint(w, `{
				"results": [{"id":"rec-1","properties":{}}],
				"has_more": true,
				"next_cursor": "cursor-2"
			}`)

			return
		}

		assert.Equal(t, "cursor-2", req.StartCursor)
		fmt.Fprint(w, `{
			"results": [{"id":"rec-2","properties":{}}],
			"has_more": false,
			"next_cursor": null
		}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	records, err := client.QueryAll(context.Background(), "col-1")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "rec-1", records[0].ID)
	assert.Equal(t, "rec-2", records[1].ID)
}

func TestQueryAll_FailedPageAbortsEnumeration(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"results":[{"id":"rec-1","properties":{}}],"has_more":true,"next_cursor":"c2"}`)

			return
		}

		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.QueryAll(context.Background(), "col-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/records/rec-9", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"rec-9","properties":{"Name":{"type":"title","title":[{"plain_text":"SOC 2"}]}}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	rec, err := client.GetRecord(context.Background(), "rec-9")
	require.NoError(t, err)
	assert.Equal(t, "rec-9", rec.ID)
	assert.Equal(t, "SOC 2", rec.Prop("Name").PlainText())
}

func TestGetRecord_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.GetRecord(context.Background(), "rec-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}
