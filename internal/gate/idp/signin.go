package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/harborchat/harbor/internal/gate/domain"
)

// turingFailedMsg is the distinguished provider message signalling the
// caller must solve a captcha before a code can be sent.
const turingFailedMsg = "Turing test failed"

type statusResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
	Data   string `json:"data"`
}

// VerifySigninCode checks a one-time verification code with the
// provider's code-based signin endpoint. On success it returns the
// canonical "org/username" subject id. The call yields no token; the
// caller follows up with ExchangeClientCredentials for the profile
// lookup.
func (c *Client) VerifySigninCode(
	ctx context.Context,
	username, code string,
) (string, error) {
	payload := map[string]any{
		"application":  c.cfg.Application,
		"organization": c.cfg.Organization,
		"username":     username,
		"code":         code,
		"signinMethod": "Verification code",
		"type":         "login",
		"autoSignin":   true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode signin payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint("/login"),
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create signin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("%w: decoding signin response: %v", ErrProviderUnavailable, err)
	}

	if sr.Status != "ok" || sr.Data == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidCode, sr.Msg)
	}

	return sr.Data, nil
}

// SendVerificationCode asks the provider to send a one-time code to
// dest (a phone number). action is "login" or "signup". The captcha
// pair is forwarded opaquely when present; a "Turing test failed"
// answer maps to ErrCaptchaRequired so the caller can obtain one.
func (c *Client) SendVerificationCode(
	ctx context.Context,
	dest, action string,
	captcha domain.CaptchaChallenge,
) error {
	data := url.Values{
		"dest":          {dest},
		"type":          {"phone"},
		"countryCode":   {"CN"},
		"method":        {action},
		"applicationId": {c.cfg.ApplicationID},
		"checkUser":     {""},
	}
	if captcha.IsZero() {
		data.Set("captchaType", "none")
		data.Set("captchaToken", "")
		data.Set("clientSecret", "")
	} else {
		data.Set("captchaType", "Default")
		data.Set("captchaToken", captcha.Proof)
		data.Set("clientSecret", captcha.ChallengeID)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint("/send-verification-code"),
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("failed to create send-code request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return fmt.Errorf("%w: decoding send-code response: %v", ErrProviderUnavailable, err)
	}

	if sr.Msg == turingFailedMsg {
		return ErrCaptchaRequired
	}
	if sr.Status != "ok" {
		return fmt.Errorf("send verification code: %s", sr.Msg)
	}

	return nil
}

// Captcha is the opaque challenge handed to the client for rendering.
type Captcha struct {
	ChallengeID string `json:"captchaId"`
	ImageBase64 string `json:"captchaImage"`
}

// FetchCaptcha retrieves a fresh graphical challenge from the provider.
func (c *Client) FetchCaptcha(ctx context.Context) (Captcha, error) {
	q := url.Values{
		"applicationId":     {c.cfg.ApplicationID},
		"isCurrentProvider": {"false"},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.endpoint("/get-captcha")+"?"+q.Encode(),
		nil,
	)
	if err != nil {
		return Captcha{}, fmt.Errorf("failed to create captcha request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Captcha{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	var cr struct {
		Status string  `json:"status"`
		Msg    string  `json:"msg"`
		Data   Captcha `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Captcha{}, fmt.Errorf("%w: decoding captcha response: %v", ErrProviderUnavailable, err)
	}

	if cr.Data.ChallengeID == "" {
		return Captcha{}, fmt.Errorf("%w: empty captcha: %s", ErrProviderUnavailable, cr.Msg)
	}

	return cr.Data, nil
}
