package config

import "os"

const historyDatabaseDSNEnv = "HISTORY_DATABASE_DSN"

type HistoryConfig struct {
	DSN string
}

func LoadHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		DSN: os.Getenv(historyDatabaseDSNEnv),
	}
}

// Enabled reports whether computed days are also written to the history database.
func (c *HistoryConfig) Enabled() bool {
	return c != nil && c.DSN != ""
}
