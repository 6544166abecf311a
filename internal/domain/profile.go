package domain

// BasalEntry marks the rate (U/hr) that applies from TimeAsSeconds (local time of day)
// until the next entry starts.
type BasalEntry struct {
	Time          string  `json:"time,omitempty"`
	TimeAsSeconds int     `json:"timeAsSeconds"`
	Value         float64 `json:"value"`
}

type ProfileStore struct {
	Basal    []BasalEntry `json:"basal"`
	Timezone string       `json:"timezone,omitempty"`
	Units    string       `json:"units,omitempty"`
	DIA      float64      `json:"dia,omitempty"`
}

// Profile is one version of the device profile. Nightscout returns them newest first.
type Profile struct {
	DefaultProfile string                  `json:"defaultProfile"`
	StartDate      string                  `json:"startDate,omitempty"`
	UTCOffset      *int                    `json:"utcOffset"`
	Store          map[string]ProfileStore `json:"store"`
}

// OffsetMinutes returns the profile's UTC offset (local minus UTC) in minutes.
func (p *Profile) OffsetMinutes() (int, error) {
	if p.UTCOffset == nil {
		return 0, NewMissingFieldError("utcOffset")
	}
	return *p.UTCOffset, nil
}

// BasalSchedule returns the basal schedule stored under name, or under the
// profile's defaultProfile when name is empty.
func (p *Profile) BasalSchedule(name string) ([]BasalEntry, error) {
	if name == "" {
		name = p.DefaultProfile
	}
	if name == "" {
		return nil, NewMissingFieldError("defaultProfile")
	}

	store, ok := p.Store[name]
	if !ok {
		return nil, NewMissingFieldError("store." + name)
	}
	if len(store.Basal) == 0 {
		return nil, NewMissingFieldError("store." + name + ".basal")
	}

	return store.Basal, nil
}

// LatestProfile returns the first (most recent) profile version.
func LatestProfile(profiles []Profile) (*Profile, error) {
	if len(profiles) == 0 {
		return nil, NewMissingFieldError("profile")
	}
	return &profiles[0], nil
}
