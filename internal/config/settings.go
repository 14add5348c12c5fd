package config

import (
	"fmt"
	"os"
	"time"
)

const (
	hostEnvVar         = "WORKSPACE_HOST"
	clientIDEnvVar     = "OAUTH_CLIENT_ID"
	clientSecretEnvVar = "OAUTH_CLIENT_SECRET"
	warehouseEnvVar    = "WAREHOUSE_ID"
	appNameEnvVar      = "APP_NAME"

	defaultAppName = "query-console"
	defaultPort    = 5001
)

// Settings carries the values supplied on the command line, with
// environment fallbacks applied by the flag defaults. Immutable once the
// Config is constructed.
type Settings struct {
	AppName      string
	Host         string
	ClientID     string
	ClientSecret string
	WarehouseID  string
	Port         int
	Profile      string
}

var _ Config = mainConfig{}

// DefaultSettings returns Settings pre-populated from the environment,
// ready to be overridden by CLI flags.
func DefaultSettings() Settings {
	return Settings{
		AppName:      GetEnv(appNameEnvVar, defaultAppName),
		Host:         GetEnv(hostEnvVar, ""),
		ClientID:     GetEnv(clientIDEnvVar, ""),
		ClientSecret: GetEnv(clientSecretEnvVar, ""),
		WarehouseID:  GetEnv(warehouseEnvVar, ""),
		Port:         defaultPort,
	}
}

// Validate checks that everything the serving path needs was supplied.
func (s Settings) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("workspace host is required (--host or %s)", hostEnvVar)
	}
	if s.ClientID == "" {
		return fmt.Errorf("OAuth client ID is required (--client-id, %s, or run the register command)", clientIDEnvVar)
	}
	if s.WarehouseID == "" {
		return fmt.Errorf("warehouse ID is required (--warehouse-id or %s)", warehouseEnvVar)
	}
	return nil
}

func (s Settings) GetAppName() string {
	return s.AppName
}

func (s Settings) GetPort() string {
	return fmt.Sprintf(":%d", s.Port)
}

func (s Settings) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (s Settings) GetHost() string {
	return s.Host
}

func (s Settings) GetClientID() string {
	return s.ClientID
}

func (s Settings) GetClientSecret() string {
	return s.ClientSecret
}

// GetRedirectURL returns the callback URL registered for this app. The
// listening port is part of it, so it must match the registered redirect.
func (s Settings) GetRedirectURL() string {
	return fmt.Sprintf("http://localhost:%d/callback", s.Port)
}

func (s Settings) GetScopes() []string {
	return nil // defer to the oauth package defaults
}

func (s Settings) GetWarehouseID() string {
	return s.WarehouseID
}

func (s Settings) GetMaxSessionAge() time.Duration {
	return 8 * time.Hour
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
