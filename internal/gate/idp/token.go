package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/harborchat/harbor/internal/gate/domain"
)

// DefaultScope is requested on user-facing grants.
const DefaultScope = "openid profile email"

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ExchangePassword performs the resource-owner-password grant. An OAuth
// error response means the credentials were wrong; transport failures
// surface as ErrProviderUnavailable.
//
// owner may be empty for ordinary users of the configured organization;
// the built-in administrator passes "built-in" explicitly.
func (c *Client) ExchangePassword(
	ctx context.Context,
	username, password, owner string,
) (domain.BearerToken, error) {
	data := url.Values{
		"grant_type":    {"password"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"scope":         {DefaultScope},
		"username":      {username},
		"password":      {password},
	}
	if owner != "" {
		data.Set("owner", owner)
	}

	resp, err := c.requestToken(ctx, data)
	if err != nil {
		return domain.BearerToken{}, err
	}
	if resp.Error != "" {
		return domain.BearerToken{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, resp.Error)
	}

	return domain.BearerToken{
		Token: resp.AccessToken,
		Grant: domain.GrantPassword,
		Scope: DefaultScope,
	}, nil
}

// ExchangeClientCredentials obtains an app-level token carrying no end
// user. It authorizes privileged lookups only - never operations on a
// user's behalf.
func (c *Client) ExchangeClientCredentials(
	ctx context.Context,
	scope string,
) (domain.BearerToken, error) {
	if scope == "" {
		scope = DefaultScope
	}

	data := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"scope":         {scope},
	}

	resp, err := c.requestToken(ctx, data)
	if err != nil {
		return domain.BearerToken{}, err
	}
	if resp.Error != "" {
		// The only way this grant fails at the OAuth layer is a rejected
		// client id/secret.
		return domain.BearerToken{}, fmt.Errorf("%w: %s", ErrConfiguration, resp.Error)
	}

	return domain.BearerToken{
		Token: resp.AccessToken,
		Grant: domain.GrantClientCredentials,
		Scope: scope,
	}, nil
}

func (c *Client) requestToken(ctx context.Context, data url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint("/login/oauth/access_token"),
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: decoding token response: %v", ErrProviderUnavailable, err)
	}

	return &tr, nil
}
