package config

import (
	"os"
	"strconv"
	"time"
)

const (
	baseURLVar        = "BASE_URL"
	appNameVar        = "APP_NAME"
	timeoutVar        = "REQUEST_TIMEOUT_MS"
	retryAttemptsVar  = "RETRY_ATTEMPTS"
	retryDelayVar     = "RETRY_DELAY_MS"
	credentialFileVar = "CREDENTIAL_FILE"
	checkIntervalVar  = "TOKEN_CHECK_INTERVAL_S"
	warnThresholdVar  = "TOKEN_WARNING_THRESHOLD_S"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetBaseURL returns the API base URL including the version prefix,
// e.g. "http://localhost:8080/api/v1".
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080/api/v1")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Broker Platform")
}

func (EnvVars) GetRequestTimeout() time.Duration {
	return getDurationEnv(timeoutVar, time.Millisecond, 30*time.Second)
}

func (EnvVars) GetRetryAttempts() int {
	return getIntEnv(retryAttemptsVar, 3)
}

func (EnvVars) GetRetryDelay() time.Duration {
	return getDurationEnv(retryDelayVar, time.Millisecond, time.Second)
}

// GetCredentialFile returns the path of the persisted credential store.
func (EnvVars) GetCredentialFile() string {
	return GetEnv(credentialFileVar, ".brokerdeck-credentials.json")
}

func (EnvVars) GetTokenCheckInterval() time.Duration {
	return getDurationEnv(checkIntervalVar, time.Second, time.Minute)
}

func (EnvVars) GetTokenWarningThreshold() time.Duration {
	return getDurationEnv(warnThresholdVar, time.Second, 5*time.Minute)
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntEnv(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getDurationEnv(envVar string, unit time.Duration, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return time.Duration(n) * unit
}
