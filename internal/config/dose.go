package config

import (
	"os"
	"time"
)

const (
	doseScheduleNameEnv           = "DOSE_SCHEDULE_NAME"
	doseCacheTTLMinutesEnv        = "DOSE_CACHE_TTL_MINUTES"
	doseProfileCacheTTLMinutesEnv = "DOSE_PROFILE_CACHE_TTL_MINUTES"
	doseRangeMaxDaysEnv           = "DOSE_RANGE_MAX_DAYS"
	doseRangeConcurrencyEnv       = "DOSE_RANGE_CONCURRENCY"

	defaultDoseCacheTTLMinutes        = 60
	defaultDoseProfileCacheTTLMinutes = 15
	defaultDoseRangeMaxDays           = 31
	defaultDoseRangeConcurrency       = 4
)

type DoseConfig struct {
	// ScheduleName selects the basal schedule in the profile store. Empty
	// means the profile's defaultProfile.
	ScheduleName     string
	CacheTTL         time.Duration
	ProfileCacheTTL  time.Duration
	RangeMaxDays     int
	RangeConcurrency int
}

func LoadDoseConfig() *DoseConfig {
	return &DoseConfig{
		ScheduleName:     os.Getenv(doseScheduleNameEnv),
		CacheTTL:         time.Duration(positiveIntEnv(doseCacheTTLMinutesEnv, defaultDoseCacheTTLMinutes)) * time.Minute,
		ProfileCacheTTL:  time.Duration(positiveIntEnv(doseProfileCacheTTLMinutesEnv, defaultDoseProfileCacheTTLMinutes)) * time.Minute,
		RangeMaxDays:     positiveIntEnv(doseRangeMaxDaysEnv, defaultDoseRangeMaxDays),
		RangeConcurrency: positiveIntEnv(doseRangeConcurrencyEnv, defaultDoseRangeConcurrency),
	}
}
