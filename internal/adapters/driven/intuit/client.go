package intuit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quill-labs/qbconnect/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.BooksAPI = (*Client)(nil)

const (
	// ProductionBaseURL is the live QuickBooks v3 API.
	ProductionBaseURL = "https://quickbooks.api.intuit.com"

	// SandboxBaseURL is the developer sandbox API.
	SandboxBaseURL = "https://sandbox-quickbooks.api.intuit.com"
)

// Client provides read-only QuickBooks v3 API operations. The bearer
// token comes in per call from the credential store; the client never
// refreshes it and never retries a failed request.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new QuickBooks API client. An empty baseURL means
// production.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = ProductionBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// CompanyInfo fetches the company record for a realm.
func (c *Client) CompanyInfo(ctx context.Context, accessToken, realmID string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v3/company/%s/companyinfo/%s",
		c.baseURL, url.PathEscape(realmID), url.PathEscape(realmID))
	return c.get(ctx, accessToken, endpoint)
}

// Query runs a QBO query, e.g. "select * from Invoice".
func (c *Client) Query(ctx context.Context, accessToken, realmID, query string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v3/company/%s/query?query=%s",
		c.baseURL, url.PathEscape(realmID), url.QueryEscape(query))
	return c.get(ctx, accessToken, endpoint)
}

// Report runs a named report (ProfitAndLoss, BalanceSheet, ...).
func (c *Client) Report(ctx context.Context, accessToken, realmID, name string, params url.Values) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v3/company/%s/reports/%s",
		c.baseURL, url.PathEscape(realmID), url.PathEscape(name))
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	return c.get(ctx, accessToken, endpoint)
}

// get issues an authenticated GET and passes the JSON body through.
func (c *Client) get(ctx context.Context, accessToken, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &driven.APIError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return json.RawMessage(body), nil
}
