// Package enterprise provides the HTTP client for the remote enterprise
// learner and catalog service.
package enterprise

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EnterpriseCustomer identifies the organization a learner belongs to.
type EnterpriseCustomer struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// LearnerData is one entry of the learner-profile result set.
type LearnerData struct {
	EnterpriseCustomer EnterpriseCustomer `json:"enterprise_customer"`
}

type learnerListResponse struct {
	Count   int           `json:"count"`
	Results []LearnerData `json:"results"`
}

type containsContentResponse struct {
	ContainsContentItems bool `json:"contains_content_items"`
}

// Client encapsulates HTTP interaction with the enterprise service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the enterprise service at the given address.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchLearnerData retrieves the enterprise learner records for a username.
// An empty result set is not an error: it means the user is not linked to any
// enterprise customer.
func (c *Client) FetchLearnerData(ctx context.Context, username string) ([]LearnerData, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("enterprise client not configured")
	}

	endpoint := fmt.Sprintf("%s/enterprise-learner/?username=%s", c.baseURL, url.QueryEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result learnerListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return result.Results, nil
}

// CatalogContainsCourseRuns checks whether the enterprise customer's
// catalog(s) contain every given course run. When catalogUUID is set the
// check is scoped to that single catalog, otherwise it spans all catalogs of
// the enterprise customer.
func (c *Client) CatalogContainsCourseRuns(ctx context.Context, courseRunIDs []string, enterpriseUUID, catalogUUID uuid.UUID) (bool, error) {
	if c == nil || c.baseURL == "" {
		return false, fmt.Errorf("enterprise client not configured")
	}

	var endpoint string
	if catalogUUID != uuid.Nil {
		endpoint = fmt.Sprintf("%s/enterprise-customer/%s/catalogs/%s/contains-content-items/",
			c.baseURL, enterpriseUUID, catalogUUID)
	} else {
		endpoint = fmt.Sprintf("%s/enterprise-customer/%s/contains-content-items/", c.baseURL, enterpriseUUID)
	}

	query := url.Values{}
	for _, id := range courseRunIDs {
		query.Add("course_run_ids", id)
	}
	endpoint += "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result containsContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}

	return result.ContainsContentItems, nil
}
