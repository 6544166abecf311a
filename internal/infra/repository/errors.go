package repository

import "errors"

var (
	ErrRedisConnection   = errors.New("redis connection error")
	ErrInvalidDoseData   = errors.New("invalid daily dose data")
	ErrHistoryConnection = errors.New("history database connection error")
)
