package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// DefaultPageSize is the per-call page cap the directory enforces.
const DefaultPageSize = 100

// queryRequest is the body of a collection query call.
type queryRequest struct {
	PageSize    int    `json:"page_size"`
	StartCursor string `json:"start_cursor,omitempty"`
}

// queryResponse mirrors the directory's paginated query response.
// Unexported — callers receive []Record from QueryAll.
type queryResponse struct {
	Results    []Record `json:"results"`
	HasMore    bool     `json:"has_more"`
	NextCursor *string  `json:"next_cursor"`
}

// QueryPage fetches one page of records from a collection. Pass an empty
// cursor for the first page; subsequent calls pass the cursor from the
// previous response.
func (c *Client) QueryPage(ctx context.Context, collectionID, cursor string, pageSize int) ([]Record, string, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	body, err := json.Marshal(queryRequest{PageSize: pageSize, StartCursor: cursor})
	if err != nil {
		return nil, "", fmt.Errorf("directory: encoding query request: %w", err)
	}

	path := fmt.Sprintf("/v1/collections/%s/query", collectionID)

	resp, err := c.Do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return nil, "", fmt.Errorf("directory: decoding query response: %w", err)
	}

	next := ""
	if qr.HasMore && qr.NextCursor != nil {
		next = *qr.NextCursor
	}

	return qr.Results, next, nil
}

// QueryAll fetches every record in a collection, following the cursor
// until the directory reports no more pages. Any failed page aborts the
// whole enumeration — directory access is a precondition for a sync run,
// not a per-record concern.
func (c *Client) QueryAll(ctx context.Context, collectionID string) ([]Record, error) {
	c.logger.Info("enumerating collection", slog.String("collection_id", collectionID))

	var all []Record

	cursor := ""
	page := 1

	for {
		records, next, err := c.QueryPage(ctx, collectionID, cursor, DefaultPageSize)
		if err != nil {
			return nil, fmt.Errorf("directory: querying collection %s page %d: %w", collectionID, page, err)
		}

		all = append(all, records...)

		c.logger.Debug("accumulated records",
			slog.Int("page", page),
			slog.Int("page_records", len(records)),
			slog.Int("total_records", len(all)),
		)

		if next == "" {
			c.logger.Info("collection enumeration complete",
				slog.String("collection_id", collectionID),
				slog.Int("total_records", len(all)),
				slog.Int("pages", page),
			)

			return all, nil
		}

		cursor = next
		page++
	}
}

// GetRecord fetches a single record by id. Used only for lazy
// compliance-framework name resolution; everything else comes through
// QueryAll.
func (c *Client) GetRecord(ctx context.Context, recordID string) (*Record, error) {
	resp, err := c.Do(ctx, http.MethodGet, "/v1/records/"+recordID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("directory: decoding record %s: %w", recordID, err)
	}

	return &rec, nil
}
