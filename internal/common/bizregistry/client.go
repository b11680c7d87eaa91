// internal/common/bizregistry/client.go
package bizregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	commonhttp "vms-workers/internal/common/http"
)

// Client looks up company registrations in the national business registry.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *commonhttp.Client
}

type CompanyRecord struct {
	OrgNumber        string `json:"organisasjonsnummer"`
	Name             string `json:"navn"`
	OrgForm          string `json:"organisasjonsform,omitempty"`
	IndustryCode     string `json:"naeringskode,omitempty"`
	RegisteredDate   string `json:"registreringsdato,omitempty"`
	Bankrupt         bool   `json:"konkurs"`
	UnderLiquidation bool   `json:"underAvvikling"`
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: commonhttp.NewClient(timeout),
	}
}

// GetCompany fetches a single registration by organization number.
func (c *Client) GetCompany(ctx context.Context, orgNumber string) (*CompanyRecord, error) {
	reqURL := fmt.Sprintf("%s/enheter/%s", c.baseURL, url.PathEscape(orgNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("company %s not found in registry", orgNumber)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("registry lookup failed (status %d): %s", resp.StatusCode, string(body))
	}

	var record CompanyRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &record, nil
}

// SearchCompanies searches registrations by name.
func (c *Client) SearchCompanies(ctx context.Context, name string) ([]CompanyRecord, error) {
	reqURL := fmt.Sprintf("%s/enheter?navn=%s", c.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("registry search failed (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Embedded struct {
			Enheter []CompanyRecord `json:"enheter"`
		} `json:"_embedded"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Embedded.Enheter, nil
}

// IsActive reports whether a registration is in good standing for onboarding.
func (r *CompanyRecord) IsActive() bool {
	return !r.Bankrupt && !r.UnderLiquidation
}
