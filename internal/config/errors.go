package config

import "errors"

var (
	ErrRedisAddrMissing     = errors.New("REDIS_ADDR is required")
	ErrInvalidRedisDB       = errors.New("REDIS_DB must be a non-negative integer")
	ErrNightscoutURLMissing = errors.New("NIGHTSCOUT_URL is required")
)
