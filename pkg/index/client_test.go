package index

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/wayfind/pkg/errors"
	"github.com/campusops/wayfind/pkg/locations"
)

// newIndexServer wraps a handler with the product header the client
// verifies on every response.
func newIndexServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
}

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient([]string{server.URL}, "", "", zerolog.Nop())
	require.NoError(t, err)
	return client
}

func TestAllIDsScrollsAllPages(t *testing.T) {
	server := newIndexServer(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/_search/scroll") {
			io.WriteString(w, `{"_scroll_id":"cursor-2","hits":{"hits":[]}}`)
			return
		}
		io.WriteString(w, `{"_scroll_id":"cursor-1","hits":{"hits":[{"_id":"doc-a"},{"_id":"doc-b"}]}}`)
	})
	defer server.Close()

	ids, err := newTestClient(t, server).AllIDs(context.Background(), "locations")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"doc-a": {}, "doc-b": {}}, ids)
}

func TestAllIDsMissingIndexReadsEmpty(t *testing.T) {
	server := newIndexServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	ids, err := newTestClient(t, server).AllIDs(context.Background(), "locations")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestExecuteOrdersWritesBeforeDeletes(t *testing.T) {
	var bulkBody []byte
	server := newIndexServer(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bulkBody = body
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"errors":false,"items":[]}`)
	})
	defer server.Close()

	plan := Plan{Create: []string{"new"}, Update: []string{"kept"}, Delete: []string{"stale"}}
	docs := map[string]locations.Resource{
		"new":  {ID: "new", Type: "locations"},
		"kept": {ID: "kept", Type: "locations"},
	}

	err := newTestClient(t, server).Execute(context.Background(), "locations", plan, docs)
	require.NoError(t, err)

	var actions []string
	scanner := bufio.NewScanner(bytes.NewReader(bulkBody))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, `{"index":`):
			actions = append(actions, "index")
		case strings.HasPrefix(line, `{"delete":`):
			actions = append(actions, "delete")
		}
	}
	assert.Equal(t, []string{"index", "index", "delete"}, actions)
}

func TestExecutePartialFailure(t *testing.T) {
	server := newIndexServer(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"errors": true,
			"items": [
				{"index": {"_id": "good", "status": 200}},
				{"index": {"_id": "bad", "status": 400,
					"error": {"type": "mapper_parsing_exception", "reason": "failed to parse field"}}}
			]
		}`)
	})
	defer server.Close()

	plan := Plan{Create: []string{"bad", "good"}}
	docs := map[string]locations.Resource{
		"good": {ID: "good", Type: "locations"},
		"bad":  {ID: "bad", Type: "locations"},
	}

	err := newTestClient(t, server).Execute(context.Background(), "locations", plan, docs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSyncFailed))

	var syncErr *errors.SyncError
	require.True(t, errors.As(err, &syncErr))
	require.Len(t, syncErr.Failures, 1)
	assert.Equal(t, "bad", syncErr.Failures[0].ID)
	assert.Equal(t, "failed to parse field", syncErr.Failures[0].Reason)
}

func TestExecuteEmptyPlanIsNoOp(t *testing.T) {
	server := newIndexServer(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty plan")
	})
	defer server.Close()

	err := newTestClient(t, server).Execute(context.Background(), "locations", Plan{}, nil)
	assert.NoError(t, err)
}
