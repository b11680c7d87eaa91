// internal/workers/data-access/query-elasticsearch/queries/builders.go
package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// ElasticsearchQuery defines the structure of a query request
type ElasticsearchQuery struct {
	Index      string
	QueryType  string
	Filters    map[string]interface{}
	BureauID   string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, eq ElasticsearchQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch eq.QueryType {
	case "candidate_search":
		queryBody = buildCandidateSearchQuery(eq)
	case "job_search":
		queryBody = buildJobSearchQuery(eq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{eq.Index},
		Body:  strings.NewReader(string(body)),
		From:  &eq.Pagination.From,
		Size:  &eq.Pagination.Size,
	}

	return &req, nil
}

func buildCandidateSearchQuery(eq ElasticsearchQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if keywords, ok := eq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"full_name^3", "skills^2", "current_title", "summary"},
				"type":   "best_fields",
			},
		})
	}

	if skills, ok := eq.Filters["skills"].([]interface{}); ok && len(skills) > 0 {
		terms := make([]string, 0, len(skills))
		for _, s := range skills {
			if str, ok := s.(string); ok {
				terms = append(terms, str)
			}
		}
		if len(terms) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"terms": map[string]interface{}{"skills": terms},
			})
		}
	}

	if location, ok := eq.Filters["location"].(string); ok && location != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"location": location},
		})
	}

	if available, ok := eq.Filters["availableOnly"].(bool); ok && available {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"available": true},
		})
	}

	// A bureau searching its own pool only sees candidates it owns.
	if eq.BureauID != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"owning_bureau_id": eq.BureauID},
		})
	}

	if rateRange, ok := eq.Filters["hourlyRateRange"].(map[string]interface{}); ok {
		rangeClause := map[string]interface{}{}
		if min, ok := toFloat(rateRange["min"]); ok && min > 0 {
			rangeClause["gte"] = min
		}
		if max, ok := toFloat(rateRange["max"]); ok && max > 0 {
			rangeClause["lte"] = max
		}
		if len(rangeClause) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{"hourly_rate": rangeClause},
			})
		}
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	if sortBy, ok := eq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "hourly_rate":
			query["sort"] = []map[string]interface{}{{"hourly_rate": "asc"}}
		case "full_name":
			query["sort"] = []map[string]interface{}{{"full_name.keyword": "asc"}}
		}
	}

	return query
}

func buildJobSearchQuery(eq ElasticsearchQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if keywords, ok := eq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"title^3", "description^2", "required_skills"},
				"type":   "best_fields",
			},
		})
	}

	if contractType, ok := eq.Filters["contractType"].(string); ok && contractType != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"contract_type": contractType},
		})
	}

	if location, ok := eq.Filters["location"].(string); ok && location != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"location": location},
		})
	}

	// Only open positions by default; closed ones on explicit request.
	if includeClosed, ok := eq.Filters["includeClosed"].(bool); !ok || !includeClosed {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"status": "OPEN"},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
