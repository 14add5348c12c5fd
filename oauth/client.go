// Package oauth implements the Authorization Code + PKCE flow against a
// data-platform workspace: consent generation, authorization URL
// construction, callback exchange and token refresh.
package oauth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// DefaultScopes are the scopes requested when the caller supplies none.
// offline_access is required for the provider to issue a refresh token.
var DefaultScopes = []string{"all-apis", "offline_access"}

// Config holds the registered OAuth application details for one workspace.
// Immutable once the Client is constructed.
type Config struct {
	Host         string // workspace base URL, e.g. https://my-workspace.example.com
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Client drives the authorization-code flow for a single OAuth application.
type Client struct {
	cfg    Config
	oauth2 *oauth2.Config
}

// NewClient builds a Client for the workspace in cfg. Endpoints are taken
// from the workspace's OIDC discovery document when it serves one;
// otherwise the conventional {host}/oidc/v1 layout is used.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	if cfg.RedirectURL == "" {
		return nil, fmt.Errorf("redirect URL is required")
	}
	cfg.Host = strings.TrimSuffix(cfg.Host, "/")
	if _, err := url.Parse(cfg.Host); err != nil {
		return nil, fmt.Errorf("invalid host %q: %w", cfg.Host, err)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &Client{
		cfg: cfg,
		oauth2: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     discoverEndpoint(ctx, cfg.Host),
		},
	}, nil
}

// Host returns the workspace base URL the client was built for.
func (c *Client) Host() string {
	return c.cfg.Host
}

// AuthCodeURL composes the provider's authorization URL for a consent,
// carrying the code challenge and the CSRF state token.
func (c *Client) AuthCodeURL(consent Consent) string {
	return c.oauth2.AuthCodeURL(consent.State,
		oauth2.SetAuthURLParam("code_challenge", consent.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// CallbackParams are the query or form parameters the provider sends to the
// redirect URL.
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackParamsFromValues extracts the callback parameters from parsed
// request values.
func CallbackParamsFromValues(values url.Values) CallbackParams {
	return CallbackParams{
		Code:             values.Get("code"),
		State:            values.Get("state"),
		Error:            values.Get("error"),
		ErrorDescription: values.Get("error_description"),
	}
}

// Exchange validates the callback against the stored consent and trades the
// authorization code plus verifier for credentials. The state check fails
// closed: no token endpoint call is made on a mismatch.
func (c *Client) Exchange(ctx context.Context, consent Consent, params CallbackParams) (Credentials, error) {
	if params.State == "" || params.State != consent.State {
		return Credentials{}, ErrStateMismatch
	}
	if params.Error != "" {
		if params.ErrorDescription != "" {
			return Credentials{}, fmt.Errorf("%w: %s: %s", ErrAuthorizationDenied, params.Error, params.ErrorDescription)
		}
		return Credentials{}, fmt.Errorf("%w: %s", ErrAuthorizationDenied, params.Error)
	}
	if params.Code == "" {
		return Credentials{}, fmt.Errorf("%w: missing authorization code", ErrAuthorizationDenied)
	}

	tok, err := c.oauth2.Exchange(ctx, params.Code,
		oauth2.SetAuthURLParam("code_verifier", consent.Verifier),
	)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	return credentialsFromToken(tok), nil
}

// Refresh obtains fresh credentials using the refresh token. The previous
// refresh token is carried over when the provider does not rotate it.
func (c *Client) Refresh(ctx context.Context, creds Credentials) (Credentials, error) {
	if creds.RefreshToken == "" {
		return Credentials{}, fmt.Errorf("%w: no refresh token", ErrTokenExchange)
	}

	tok, err := c.oauth2.TokenSource(ctx, creds.Token()).Token()
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	return credentialsFromToken(tok), nil
}

// discoverEndpoint resolves the workspace's OAuth endpoints. Discovery uses
// the OIDC metadata served under {host}/oidc; workspaces that do not serve
// it get the conventional authorize/token URLs.
func discoverEndpoint(ctx context.Context, host string) oauth2.Endpoint {
	issuer := host + "/oidc"
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		log.Debug().Str("issuer", issuer).Msg("OIDC discovery unavailable, using conventional endpoints")
		return oauth2.Endpoint{
			AuthURL:  host + "/oidc/v1/authorize",
			TokenURL: host + "/oidc/v1/token",
		}
	}
	return provider.Endpoint()
}
