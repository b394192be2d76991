package idp

import "errors"

// Error taxonomy for provider calls. Handlers map these to OAuth-style
// JSON error bodies; anything user-correctable is returned verbatim.
var (
	// ErrInvalidCredentials - wrong username or password.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidCode - wrong or expired verification code.
	ErrInvalidCode = errors.New("invalid_code")

	// ErrCaptchaRequired - the provider demands a solved captcha before it
	// will send a verification code. Not a hard failure; the caller must
	// retry with a (challengeId, proof) pair.
	ErrCaptchaRequired = errors.New("captcha_required")

	// ErrProviderUnavailable - transport failure or timeout talking to the
	// provider. Retryable by the caller, never retried here.
	ErrProviderUnavailable = errors.New("provider_unavailable")

	// ErrConfiguration - client id/secret/organization are unset or
	// rejected. Fatal to the whole authenticator; NewClient fails fast so
	// this should never surface per request.
	ErrConfiguration = errors.New("configuration_error")
)
