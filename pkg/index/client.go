package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog"

	"github.com/campusops/wayfind/pkg/errors"
	"github.com/campusops/wayfind/pkg/locations"
)

const (
	scrollKeepAlive = time.Minute
	scrollPageSize  = 1000
)

// Client wraps the search index HTTP API with the two operations a sync
// needs: scanning every stored ID and executing one bulk plan.
type Client struct {
	es     *elasticsearch.Client
	logger zerolog.Logger
}

// NewClient creates a search index client.
func NewClient(addresses []string, username, password string, logger zerolog.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}
	return &Client{es: es, logger: logger}, nil
}

type scrollPage struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// AllIDs scans every document ID currently stored in the named index,
// scrolling with `_source` disabled so only IDs travel. An index that does
// not exist yet reads as empty.
func (c *Client) AllIDs(ctx context.Context, indexName string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(indexName),
		c.es.Search.WithScroll(scrollKeepAlive),
		c.es.Search.WithSize(scrollPageSize),
		c.es.Search.WithSource("false"),
	)
	if err != nil {
		return nil, fmt.Errorf("scan index %s: %w", indexName, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		// First sync against a fresh cluster.
		return ids, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("scan index %s: %s", indexName, res.Status())
	}

	var page scrollPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("scan index %s: %w", indexName, err)
	}

	for len(page.Hits.Hits) > 0 {
		for _, hit := range page.Hits.Hits {
			ids[hit.ID] = struct{}{}
		}

		next, err := c.es.Scroll(
			c.es.Scroll.WithContext(ctx),
			c.es.Scroll.WithScrollID(page.ScrollID),
			c.es.Scroll.WithScroll(scrollKeepAlive),
		)
		if err != nil {
			return nil, fmt.Errorf("scroll index %s: %w", indexName, err)
		}
		if next.IsError() {
			next.Body.Close()
			return nil, fmt.Errorf("scroll index %s: %s", indexName, next.Status())
		}

		page = scrollPage{}
		err = json.NewDecoder(next.Body).Decode(&page)
		next.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("scroll index %s: %w", indexName, err)
		}
	}

	c.clearScroll(ctx, page.ScrollID)
	return ids, nil
}

func (c *Client) clearScroll(ctx context.Context, scrollID string) {
	if scrollID == "" {
		return
	}
	res, err := c.es.ClearScroll(
		c.es.ClearScroll.WithContext(ctx),
		c.es.ClearScroll.WithScrollID(scrollID),
	)
	if err != nil {
		c.logger.Debug().Err(err).Msg("clear scroll failed")
		return
	}
	res.Body.Close()
}

type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type     string `json:"type"`
		Reason   string `json:"reason"`
		CausedBy *struct {
			Reason string `json:"reason"`
		} `json:"caused_by"`
	} `json:"error"`
}

type bulkReport struct {
	Errors bool                `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

// Execute runs the plan against the named index as a single bulk request.
// Creates and updates are enqueued before deletes so a replaced document
// never transiently disappears. Any per-item failure is logged with its
// document ID and reason and surfaces as a *errors.SyncError.
func (c *Client) Execute(ctx context.Context, indexName string, plan Plan, docs map[string]locations.Resource) error {
	if plan.Total() == 0 {
		return nil
	}

	var body bytes.Buffer
	encoder := json.NewEncoder(&body)

	writes := make([]string, 0, len(plan.Create)+len(plan.Update))
	writes = append(writes, plan.Create...)
	writes = append(writes, plan.Update...)

	for _, id := range writes {
		doc, ok := docs[id]
		if !ok {
			return fmt.Errorf("plan references unknown document %s", id)
		}
		if err := encoder.Encode(map[string]map[string]string{"index": {"_id": id}}); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("encode document %s: %w", id, err)
		}
	}
	for _, id := range plan.Delete {
		if err := encoder.Encode(map[string]map[string]string{"delete": {"_id": id}}); err != nil {
			return fmt.Errorf("encode bulk action: %w", err)
		}
	}

	res, err := c.es.Bulk(
		bytes.NewReader(body.Bytes()),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(indexName),
	)
	if err != nil {
		return fmt.Errorf("bulk request to index %s: %w", indexName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk request to index %s: %s", indexName, res.Status())
	}

	var report bulkReport
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if !report.Errors {
		return nil
	}

	var failures []errors.DocumentFailure
	for _, item := range report.Items {
		for action, detail := range item {
			if detail.Error == nil {
				continue
			}
			reason := detail.Error.Reason
			if reason == "" && detail.Error.CausedBy != nil {
				reason = detail.Error.CausedBy.Reason
			}
			c.logger.Error().
				Str("index", indexName).
				Str("action", action).
				Str("id", detail.ID).
				Int("status", detail.Status).
				Str("reason", reason).
				Msg("bulk operation failed")
			failures = append(failures, errors.DocumentFailure{
				Index:  indexName,
				ID:     detail.ID,
				Reason: reason,
			})
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &errors.SyncError{Index: indexName, Failures: failures}
}
