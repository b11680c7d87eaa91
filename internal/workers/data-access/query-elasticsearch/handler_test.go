// internal/workers/data-access/query-elasticsearch/handler_test.go
package queryelasticsearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vms-workers/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeES serves canned search responses and captures the request body.
func fakeES(t *testing.T, response map[string]interface{}) (*elasticsearch.Client, *map[string]interface{}) {
	t.Helper()

	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&captured)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client, &captured
}

func searchResponse(hits []map[string]interface{}) map[string]interface{} {
	wrapped := make([]interface{}, 0, len(hits))
	for _, h := range hits {
		wrapped = append(wrapped, map[string]interface{}{"_source": h})
	}
	return map[string]interface{}{
		"took": 3,
		"hits": map[string]interface{}{
			"total":     map[string]interface{}{"value": float64(len(hits))},
			"max_score": 1.5,
			"hits":      wrapped,
		},
	}
}

func TestHandler_Execute_CandidateSearch(t *testing.T) {
	client, captured := fakeES(t, searchResponse([]map[string]interface{}{
		{"full_name": "Jan Dekker", "skills": []string{"go", "postgres"}},
		{"full_name": "Piet Visser", "skills": []string{"go"}},
	}))

	handler := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{
		IndexName: "candidates",
		QueryType: "candidate_search",
		Filters: map[string]interface{}{
			"keywords": "go developer",
			"skills":   []interface{}{"go"},
		},
		Pagination: Pagination{From: 0, Size: 10},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), output.TotalHits)
	assert.Equal(t, 1.5, output.MaxScore)
	require.Len(t, output.Data, 2)
	assert.Equal(t, "Jan Dekker", output.Data[0]["full_name"])

	// The sent query carries both the keyword clause and the skills filter.
	body := *captured
	require.NotNil(t, body["query"])
	raw, _ := json.Marshal(body)
	assert.Contains(t, string(raw), "multi_match")
	assert.Contains(t, string(raw), `"skills"`)
}

func TestHandler_Execute_BureauScopedSearch(t *testing.T) {
	client, captured := fakeES(t, searchResponse(nil))

	handler := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))
	_, err := handler.Execute(context.Background(), &Input{
		IndexName:  "candidates",
		QueryType:  "candidate_search",
		BureauID:   "bureau-1",
		Pagination: Pagination{Size: 20},
	})

	require.NoError(t, err)
	raw, _ := json.Marshal(*captured)
	assert.Contains(t, string(raw), "owning_bureau_id")
	assert.Contains(t, string(raw), "bureau-1")
}

func TestHandler_Execute_JobSearchFiltersOpenByDefault(t *testing.T) {
	client, captured := fakeES(t, searchResponse([]map[string]interface{}{
		{"title": "Senior Go Developer", "status": "OPEN"},
	}))

	handler := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{
		IndexName: "jobs",
		QueryType: "job_search",
		Filters: map[string]interface{}{
			"contractType": "INTERIM",
		},
		Pagination: Pagination{Size: 20},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), output.TotalHits)

	raw, _ := json.Marshal(*captured)
	assert.Contains(t, string(raw), `"OPEN"`)
	assert.Contains(t, string(raw), `"INTERIM"`)
}

func TestHandler_Execute_MissingIndex(t *testing.T) {
	client, _ := fakeES(t, searchResponse(nil))

	handler := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))
	_, err := handler.Execute(context.Background(), &Input{
		QueryType:  "candidate_search",
		Pagination: Pagination{Size: 10},
	})

	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestHandler_Execute_UnknownQueryType(t *testing.T) {
	client, _ := fakeES(t, searchResponse(nil))

	handler := NewHandler(LoadConfig(), client, logger.NewTestLogger(t))
	_, err := handler.Execute(context.Background(), &Input{
		IndexName:  "candidates",
		QueryType:  "everything",
		Pagination: Pagination{Size: 10},
	})

	assert.ErrorIs(t, err, ErrSearchQueryFailed)
}
