// Package intuit implements the Intuit-facing adapters: the OAuth2
// token exchange client and the QuickBooks v3 API client.
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

// Ensure OAuthClient implements the interface.
var _ driven.TokenExchanger = (*OAuthClient)(nil)

const (
	// DefaultAuthURL is Intuit's OAuth2 authorization endpoint.
	DefaultAuthURL = "https://appcenter.intuit.com/connect/oauth2"

	// DefaultTokenURL is Intuit's token exchange endpoint.
	DefaultTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"

	// DefaultScope grants read/write access to accounting data.
	DefaultScope = "com.intuit.quickbooks.accounting"
)

// OAuthConfig holds the confidential client configuration. The client
// secret is only ever sent server-side to the token endpoint.
type OAuthConfig struct {
	// ClientID is the Intuit app's OAuth client ID.
	ClientID string

	// ClientSecret is the Intuit app's OAuth client secret.
	ClientSecret string

	// Scopes are the requested OAuth scopes.
	Scopes []string

	// AuthURL overrides DefaultAuthURL (tests).
	AuthURL string

	// TokenURL overrides DefaultTokenURL (tests).
	TokenURL string
}

// OAuthClient performs the authorization-code grant against Intuit.
// Every Exchange is a live round trip: no caching, no retries.
type OAuthClient struct {
	cfg        OAuthConfig
	httpClient *http.Client
}

// NewOAuthClient creates a new Intuit OAuth client.
func NewOAuthClient(cfg OAuthConfig) *OAuthClient {
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{DefaultScope}
	}
	return &OAuthClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// AuthorizationURL constructs the Intuit authorization URL. url.Values
// percent-encodes every parameter, including the redirect URI and scope.
func (c *OAuthClient) AuthorizationURL(state, redirectURI string) string {
	params := url.Values{
		"client_id":     {c.cfg.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(c.cfg.Scopes, " ")},
		"state":         {state},
	}
	return c.cfg.AuthURL + "?" + params.Encode()
}

// Exchange swaps an authorization code for tokens. Any non-2xx response,
// transport failure, or unparseable body comes back as *ExchangeError;
// the code is single-use so the request is never retried.
func (c *OAuthClient) Exchange(ctx context.Context, code, redirectURI string) (*driven.TokenGrant, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &driven.ExchangeError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &driven.ExchangeError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &driven.ExchangeError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var tokenResp struct {
		AccessToken      string `json:"access_token"`
		RefreshToken     string `json:"refresh_token"`
		TokenType        string `json:"token_type"`
		ExpiresIn        int    `json:"expires_in"`
		RefreshExpiresIn int    `json:"x_refresh_token_expires_in"`
		Error            string `json:"error"`
		ErrorDesc        string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, &driven.ExchangeError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        err,
		}
	}

	if tokenResp.Error != "" {
		return nil, &driven.ExchangeError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return &driven.TokenGrant{
		AccessToken:      tokenResp.AccessToken,
		RefreshToken:     tokenResp.RefreshToken,
		TokenType:        tokenResp.TokenType,
		ExpiresIn:        tokenResp.ExpiresIn,
		RefreshExpiresIn: tokenResp.RefreshExpiresIn,
	}, nil
}
