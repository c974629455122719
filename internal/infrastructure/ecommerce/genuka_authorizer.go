package ecommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/commercesync/backend/internal/domain/integration"
)

// GenukaAuthorizer completes the SOURCE authorization-code flow.
type GenukaAuthorizer struct {
	config    *GenukaConfig
	transport *transport
	logger    *zap.Logger
}

var _ integration.SourceAuthorizer = (*GenukaAuthorizer)(nil)

// NewGenukaAuthorizer creates an authorizer for the configured OAuth client.
func NewGenukaAuthorizer(config *GenukaConfig, logger *zap.Logger) (*GenukaAuthorizer, error) {
	if err := config.ValidateOAuth(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenukaAuthorizer{config: config, transport: newTransport(config.HTTP, logger), logger: logger}, nil
}

// ExchangeCode trades an authorization code for a tenant access token.
func (a *GenukaAuthorizer) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", a.config.ClientID)
	form.Set("client_secret", a.config.ClientSecret)
	form.Set("redirect_uri", a.config.RedirectURI)

	endpoint := a.config.APIBaseURL + "/oauth/token"
	resp, err := a.transport.do(ctx, apiRequest{
		method: http.MethodPost,
		url:    endpoint,
		body:   []byte(form.Encode()),
		headers: map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/x-www-form-urlencoded",
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: POST %s: %v", integration.ErrSourceRequestFailed, endpoint, err)
	}
	if resp.status < 200 || resp.status >= 300 {
		return "", fmt.Errorf("%w: POST %s: HTTP %d: %s",
			integration.ErrSourceRequestFailed, endpoint, resp.status, errorSnippet(resp.body))
	}

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := decodeBody(resp.body, &token); err != nil {
		return "", fmt.Errorf("%w: token response: %v", integration.ErrSourceInvalidResponse, err)
	}
	if strings.TrimSpace(token.AccessToken) == "" {
		return "", fmt.Errorf("%w: token response without access_token", integration.ErrSourceInvalidResponse)
	}
	return token.AccessToken, nil
}

// FetchCompany loads the company profile with the tenant access token.
func (a *GenukaAuthorizer) FetchCompany(ctx context.Context, companyID, accessToken string) (*integration.CompanyProfile, error) {
	client, err := NewGenukaClient(a.config, companyID, accessToken, a.logger)
	if err != nil {
		return nil, err
	}
	body, err := client.doRequest(ctx, http.MethodGet, a.config.adminURL("company"), nil)
	if err != nil {
		return nil, err
	}

	var wrapped struct {
		Data *integration.CompanyProfile `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil && wrapped.Data.ID != "" {
		return wrapped.Data, nil
	}
	var profile integration.CompanyProfile
	if err := decodeBody(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: company %s: %v", integration.ErrSourceInvalidResponse, companyID, err)
	}
	if profile.ID == "" {
		profile.ID = companyID
	}
	return &profile, nil
}
