package driving

import (
	"context"
	"encoding/json"
	"net/url"
)

// BooksService issues authenticated downstream calls for a realm using
// its stored credential. It never refreshes expired tokens; callers
// check ConnectService.Status and re-run the flow when needed.
type BooksService interface {
	// CompanyInfo fetches the company record.
	// Returns domain.ErrNotConnected when no credential is stored.
	CompanyInfo(ctx context.Context, realmID string) (json.RawMessage, error)

	// Query runs a QBO query and passes the response through.
	Query(ctx context.Context, realmID, query string) (json.RawMessage, error)

	// Report runs a named report with optional parameters.
	Report(ctx context.Context, realmID, name string, params url.Values) (json.RawMessage, error)
}
