package config

import (
	"os"
	"strings"
	"time"
)

const (
	nightscoutURLEnv            = "NIGHTSCOUT_URL"
	nightscoutTokenEnv          = "NIGHTSCOUT_TOKEN"
	nightscoutTimeoutSecondsEnv = "NIGHTSCOUT_TIMEOUT_SECONDS"
	nightscoutRetryAttemptsEnv  = "NIGHTSCOUT_RETRY_ATTEMPTS"
	nightscoutPageLimitEnv      = "NIGHTSCOUT_PAGE_LIMIT"

	defaultNightscoutTimeoutSeconds = 30
	defaultNightscoutRetryAttempts  = 5
	defaultNightscoutPageLimit      = 1000
)

type NightscoutConfig struct {
	URL           string
	Token         string
	Timeout       time.Duration
	RetryAttempts int
	PageLimit     int
}

func LoadNightscoutConfig() *NightscoutConfig {
	return &NightscoutConfig{
		URL:           strings.TrimRight(os.Getenv(nightscoutURLEnv), "/"),
		Token:         os.Getenv(nightscoutTokenEnv),
		Timeout:       time.Duration(positiveIntEnv(nightscoutTimeoutSecondsEnv, defaultNightscoutTimeoutSeconds)) * time.Second,
		RetryAttempts: positiveIntEnv(nightscoutRetryAttemptsEnv, defaultNightscoutRetryAttempts),
		PageLimit:     positiveIntEnv(nightscoutPageLimitEnv, defaultNightscoutPageLimit),
	}
}

func (c *NightscoutConfig) Validate() error {
	if c == nil || c.URL == "" {
		return ErrNightscoutURLMissing
	}
	return nil
}
