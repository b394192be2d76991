package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/harborchat/harbor/internal/gate/domain"
)

// Account is the raw provider account record. Mutation calls round-trip
// it: fetch, overwrite the changed fields, post the whole thing back.
type Account map[string]any

// Owner returns the account's organization, or "" when absent.
func (a Account) Owner() string {
	s, _ := a["owner"].(string)
	return s
}

// Name returns the account's username, or "" when absent.
func (a Account) Name() string {
	s, _ := a["name"].(string)
	return s
}

// SubjectID returns the canonical "org/username" id for the account.
func (a Account) SubjectID() string {
	return a.Owner() + "/" + a.Name()
}

// FetchAccount resolves the account record belonging to a user-scoped
// bearer token.
func (c *Client) FetchAccount(ctx context.Context, token domain.BearerToken) (Account, error) {
	q := url.Values{"accessToken": {token.Token}}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.endpoint("/get-account")+"?"+q.Encode(),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var ar struct {
		Status string  `json:"status"`
		Msg    string  `json:"msg"`
		Data   Account `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("%w: decoding account response: %v", ErrProviderUnavailable, err)
	}

	if ar.Status != "ok" || ar.Data == nil {
		return nil, fmt.Errorf("%w: account lookup failed: %s", ErrProviderUnavailable, ar.Msg)
	}

	return ar.Data, nil
}

// UpdateUser posts a full account record back to the provider,
// authorized by the user's own bearer token.
func (c *Client) UpdateUser(
	ctx context.Context,
	subjectID string,
	token domain.BearerToken,
	account Account,
) error {
	q := url.Values{
		"id":          {subjectID},
		"accessToken": {token.Token},
	}

	return c.postStatusJSON(ctx, c.endpoint("/update-user")+"?"+q.Encode(), account)
}

// AddUser provisions a new provider account. The token must come from
// the administrator password grant; the client-credentials token has no
// right to name new users.
func (c *Client) AddUser(ctx context.Context, adminToken domain.BearerToken, account Account) error {
	q := url.Values{"accessToken": {adminToken.Token}}
	return c.postStatusJSON(ctx, c.endpoint("/add-user")+"?"+q.Encode(), account)
}

// UploadResource streams a file into the provider's resource store and
// returns the public URL it was stored under. Used to proxy avatar
// uploads.
func (c *Client) UploadResource(
	ctx context.Context,
	token domain.BearerToken,
	owner, application, tag, fullFilePath, filename string,
	file io.Reader,
) (string, error) {
	q := url.Values{
		"owner":        {owner},
		"application":  {application},
		"tag":          {tag},
		"parent":       {""},
		"fullFilePath": {fullFilePath},
		"accessToken":  {token.Token},
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint("/upload-resource")+"?"+q.Encode(),
		&body,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var ur statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("%w: decoding upload response: %v", ErrProviderUnavailable, err)
	}

	if ur.Status != "ok" || ur.Data == "" {
		return "", fmt.Errorf("upload resource: %s", ur.Msg)
	}

	return ur.Data, nil
}

// ExchangeAdminPassword logs the configured built-in administrator in
// via the password grant. The resulting token authorizes account
// provisioning.
func (c *Client) ExchangeAdminPassword(ctx context.Context) (domain.BearerToken, error) {
	if c.cfg.AdminUser == "" || c.cfg.AdminPassword == "" {
		return domain.BearerToken{}, fmt.Errorf("%w: admin credentials unset", ErrConfiguration)
	}
	return c.ExchangePassword(ctx, c.cfg.AdminUser, c.cfg.AdminPassword, "built-in")
}

func (c *Client) postStatusJSON(ctx context.Context, rawURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrProviderUnavailable, err)
	}

	if sr.Status != "ok" {
		return fmt.Errorf("provider rejected request: %s", sr.Msg)
	}

	return nil
}
