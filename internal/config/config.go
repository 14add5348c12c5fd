package config

import "time"

type Config interface {
	EnvConfig
	OAuthConfig
	WarehouseConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetPort() string
	GetEnv() string
}

type OAuthConfig interface {
	GetHost() string
	GetClientID() string
	GetClientSecret() string
	GetRedirectURL() string
	GetScopes() []string
}

type WarehouseConfig interface {
	GetWarehouseID() string
}

type SessionConfig interface {
	GetMaxSessionAge() time.Duration
}

type mainConfig struct {
	Settings
}

func New(settings Settings) Config {
	return mainConfig{Settings: settings}
}
