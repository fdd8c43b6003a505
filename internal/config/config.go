package config

import "time"

// Config is the full configuration surface of the broker client.
type Config interface {
	EnvConfig
}

// EnvConfig exposes environment-sourced settings.
type EnvConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetRetryAttempts() int
	GetRetryDelay() time.Duration
	GetCredentialFile() string
	GetTokenCheckInterval() time.Duration
	GetTokenWarningThreshold() time.Duration
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
