package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/harborchat/harbor/internal/gate/domain"
)

// profilePayload is the loosely-typed profile blob the provider
// returns. It is mapped to a strict Identity at this boundary so
// downstream components never see untyped data.
type profilePayload struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	DisplayName   string `json:"displayName"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Phone         string `json:"phone"`
	Avatar        string `json:"avatar"`
	Tag           string `json:"tag"`
	Role          string `json:"role"`
}

// FetchProfile resolves the full profile for a subject id and maps it
// to an Identity. The bearer token may be user-scoped (password grant)
// or app-scoped (client_credentials after a code signin); either
// authorizes the lookup. phoneHint is forwarded when the login name was
// a phone number, matching the provider's lookup semantics.
func (c *Client) FetchProfile(
	ctx context.Context,
	subjectID string,
	token domain.BearerToken,
	phoneHint string,
) (domain.Identity, error) {
	q := url.Values{
		"id":          {subjectID},
		"owner":       {c.cfg.Organization},
		"accessToken": {token.Token},
	}
	if phoneHint != "" {
		q.Set("phone", phoneHint)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.endpoint("/get-user")+"?"+q.Encode(),
		nil,
	)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to create profile request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var pr struct {
		Status string          `json:"status"`
		Msg    string          `json:"msg"`
		Data   *profilePayload `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: decoding profile response: %v", ErrProviderUnavailable, err)
	}

	if pr.Status != "ok" || pr.Data == nil {
		return domain.Identity{}, fmt.Errorf("%w: profile lookup failed: %s", ErrProviderUnavailable, pr.Msg)
	}

	return mapProfile(subjectID, *pr.Data), nil
}

// mapProfile applies explicit field defaults: a user with no display
// name falls back to their phone number, then to the subject id.
func mapProfile(subjectID string, p profilePayload) domain.Identity {
	if p.Owner != "" && p.Name != "" {
		subjectID = p.Owner + "/" + p.Name
	}

	name := p.DisplayName
	if name == "" {
		name = p.Name
	}
	if name == "" {
		name = p.Phone
	}
	if name == "" {
		name = subjectID
	}

	role := p.Tag
	if role == "" {
		role = p.Role
	}
	if role == "" {
		role = domain.DefaultRole
	}

	return domain.Identity{
		SubjectID:     subjectID,
		DisplayName:   name,
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		AvatarURL:     p.Avatar,
		Role:          role,
		Kind:          domain.KindRegular,
	}
}
