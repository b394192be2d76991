package idp

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every outbound provider call. Calls are single
// attempts; a timeout surfaces as ErrProviderUnavailable.
const DefaultTimeout = 10 * time.Second

// Config carries the provider connection settings. It is constructed
// once at startup and treated as immutable; there is no ambient global
// client state.
type Config struct {
	BaseURL       string // provider origin, e.g. http://idp.internal:8000
	ClientID      string
	ClientSecret  string
	Organization  string // organization owning the end users
	Application   string // application name, used by the code signin call
	ApplicationID string // "admin/<app>" id used by send-code and captcha calls

	// AdminUser/AdminPassword identify the built-in administrator used to
	// authorize account provisioning (add-user).
	AdminUser     string
	AdminPassword string
}

// Client makes stateless HTTP calls to the provider's token, login and
// user-lookup endpoints.
type Client struct {
	cfg        Config
	HTTPClient *http.Client
}

// NewClient validates the configuration and returns a provider client.
// Missing client id/secret or organization fail here rather than on the
// first request.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: provider base URL unset", ErrConfiguration)
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client id/secret unset", ErrConfiguration)
	}
	if cfg.Organization == "" || cfg.Application == "" {
		return nil, fmt.Errorf("%w: organization/application unset", ErrConfiguration)
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		cfg: cfg,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}, nil
}

// Organization returns the configured user organization.
func (c *Client) Organization() string { return c.cfg.Organization }

// Application returns the configured application name.
func (c *Client) Application() string { return c.cfg.Application }

// SubjectID builds the canonical "org/username" subject id.
func (c *Client) SubjectID(username string) string {
	return c.cfg.Organization + "/" + username
}

func (c *Client) endpoint(path string) string {
	return c.cfg.BaseURL + "/api" + path
}
