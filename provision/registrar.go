// Package provision registers a custom OAuth application with the account
// console. It is a one-time bootstrap tool and is never called from the
// serving request path.
package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Registration is the credential pair issued for a newly registered
// application. The secret is shown once; callers are expected to print it
// so testing can resume later with --client-id/--client-secret.
type Registration struct {
	IntegrationID string `json:"integration_id"`
	ClientID      string `json:"client_id"`
	ClientSecret  string `json:"client_secret"`
}

// Registrar creates custom OAuth app integrations through the account
// console API, authenticated with account username and password.
type Registrar struct {
	accountHost string
	accountID   string
	base        *http.Client
}

func NewRegistrar(accountHost, accountID string) *Registrar {
	return &Registrar{
		accountHost: strings.TrimSuffix(accountHost, "/"),
		accountID:   accountID,
		base:        http.DefaultClient,
	}
}

type customAppRequest struct {
	Name         string   `json:"name"`
	RedirectURLs []string `json:"redirect_urls"`
	Confidential bool     `json:"confidential"`
	Scopes       []string `json:"scopes"`
}

// RegisterCustomApp registers a confidential OAuth application with the
// given redirect URLs and returns its client credentials.
func (r *Registrar) RegisterCustomApp(ctx context.Context, username, password, appName string, redirectURLs []string) (Registration, error) {
	body, err := json.Marshal(customAppRequest{
		Name:         appName,
		RedirectURLs: redirectURLs,
		Confidential: true,
		Scopes:       []string{"all-apis"},
	})
	if err != nil {
		return Registration{}, fmt.Errorf("marshal registration request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/2.0/accounts/%s/oauth2/custom-app-integrations", r.accountHost, r.accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Registration{}, fmt.Errorf("build registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(username, password)

	resp, err := r.base.Do(req)
	if err != nil {
		return Registration{}, fmt.Errorf("register custom app: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Registration{}, fmt.Errorf("read registration response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Registration{}, fmt.Errorf("register custom app: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var reg Registration
	if err := json.Unmarshal(raw, &reg); err != nil {
		return Registration{}, fmt.Errorf("decode registration response: %w", err)
	}
	if reg.ClientID == "" {
		return Registration{}, fmt.Errorf("registration response missing client_id")
	}
	return reg, nil
}
