package driven

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// BooksAPI is the downstream QuickBooks v3 surface the connector proxies.
// All calls are read-only; responses are passed through as raw JSON.
// Callers supply the bearer token; implementations never refresh it.
type BooksAPI interface {
	// CompanyInfo fetches the company record for a realm.
	CompanyInfo(ctx context.Context, accessToken, realmID string) (json.RawMessage, error)

	// Query runs a QBO SQL-ish query (e.g. "select * from Invoice").
	Query(ctx context.Context, accessToken, realmID, query string) (json.RawMessage, error)

	// Report runs a named report (ProfitAndLoss, BalanceSheet, ...)
	// with optional report parameters.
	Report(ctx context.Context, accessToken, realmID, name string, params url.Values) (json.RawMessage, error)
}

// APIError reports a non-2xx response from the downstream API.
// No retry is attempted; retry policy belongs to the caller.
type APIError struct {
	// StatusCode is the downstream HTTP status.
	StatusCode int

	// Body is the downstream response body.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quickbooks api error: status %d: %s", e.StatusCode, e.Body)
}
