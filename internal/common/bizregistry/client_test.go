// internal/common/bizregistry/client_test.go
package bizregistry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCompany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/enheter/912345678", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"organisasjonsnummer":"912345678","navn":"TechStaffing BV","konkurs":false,"underAvvikling":false}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second)

	record, err := client.GetCompany(context.Background(), "912345678")
	require.NoError(t, err)
	assert.Equal(t, "TechStaffing BV", record.Name)
	assert.True(t, record.IsActive())
}

func TestGetCompany_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second)

	_, err := client.GetCompany(context.Background(), "000000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSearchCompanies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TechStaffing", r.URL.Query().Get("navn"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_embedded":{"enheter":[{"organisasjonsnummer":"912345678","navn":"TechStaffing BV"}]}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", 5*time.Second)

	records, err := client.SearchCompanies(context.Background(), "TechStaffing")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "912345678", records[0].OrgNumber)
}

func TestIsActive_Bankrupt(t *testing.T) {
	record := &CompanyRecord{OrgNumber: "912345678", Bankrupt: true}
	assert.False(t, record.IsActive())
}
