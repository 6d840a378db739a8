package models

import (
	"fmt"
	"unicode/utf8"
)

const maxDescriptionLen = 500

// FormPreferences is the structured questionnaire submitted for a
// recommendation. Importance weights are opaque to the client; the ranking
// effect is entirely server-side.
type FormPreferences struct {
	DeviceID           string   `json:"device_id,omitempty"`
	MinMonthlyRent     int      `json:"min_monthly_rent"`
	MaxMonthlyRent     int      `json:"max_monthly_rent"`
	SchoolID           int      `json:"school_id"`
	TargetDistrictID   *int     `json:"target_district_id,omitempty"`
	MaxSchoolLimit     *int     `json:"max_school_limit,omitempty"`
	FlatTypePreference []string `json:"flat_type_preference,omitempty"`
	MaxMRTDistance     *int     `json:"max_mrt_distance,omitempty"`
	ImportanceRent     int      `json:"importance_rent"`
	ImportanceLocation int      `json:"importance_location"`
	ImportanceFacility int      `json:"importance_facility"`
}

// Validate enforces the client-side preconditions before any network call.
func (f *FormPreferences) Validate() error {
	if f.MinMonthlyRent < 0 || f.MaxMonthlyRent < 0 {
		return fmt.Errorf("rent bounds must not be negative")
	}
	if f.MinMonthlyRent > f.MaxMonthlyRent {
		return fmt.Errorf("min monthly rent %d exceeds max %d", f.MinMonthlyRent, f.MaxMonthlyRent)
	}
	if f.SchoolID <= 0 {
		return fmt.Errorf("a target school must be selected")
	}
	return nil
}

// DescriptionEnquiry is the free-text alternative to the questionnaire.
type DescriptionEnquiry struct {
	DeviceID               string `json:"device_id,omitempty"`
	RequirementDescription string `json:"requirement_description"`
}

func (d *DescriptionEnquiry) Validate() error {
	if d.RequirementDescription == "" {
		return fmt.Errorf("requirement description is empty")
	}
	if utf8.RuneCountInString(d.RequirementDescription) > maxDescriptionLen {
		return fmt.Errorf("requirement description exceeds %d characters", maxDescriptionLen)
	}
	return nil
}
