package models

// FieldErrors maps a field name to a human-readable validation message.
type FieldErrors map[string]string

// Validate checks the onboarding constraints: minimum name length, positive
// numeric values, and an enumerated gender. Returns nil when the profile is
// valid.
func (p UserProfile) Validate() FieldErrors {
	errs := FieldErrors{}
	if len([]rune(p.Name)) < 2 {
		errs["name"] = "name must be at least 2 characters"
	}
	if p.InitialWeight <= 0 {
		errs["initialWeight"] = "initial weight must be a positive number"
	}
	if p.CurrentWeight <= 0 {
		errs["currentWeight"] = "current weight must be a positive number"
	}
	if p.TargetWeight <= 0 {
		errs["targetWeight"] = "target weight must be a positive number"
	}
	if p.Height <= 0 {
		errs["height"] = "height must be a positive number"
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		errs["gender"] = "gender must be one of: male, female, other"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// NewProfile builds a profile from onboarding input. CurrentWeight mirrors
// InitialWeight at creation time.
func NewProfile(name string, initialWeight, height, targetWeight float64, gender string) *UserProfile {
	return &UserProfile{
		Name:          name,
		InitialWeight: initialWeight,
		CurrentWeight: initialWeight,
		TargetWeight:  targetWeight,
		Height:        height,
		Gender:        gender,
	}
}
