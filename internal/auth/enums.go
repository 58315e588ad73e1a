package auth

import (
	"encoding/json"

	"github.com/gogofit/backend/internal/validation"
)

// The enum types decode any JSON string. Values outside the set are
// rejected by the "enum" validation tag, so they are reported together
// with the other field errors of the request.

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	}
	return false
}

func (g *Gender) UnmarshalJSON(b []byte) error {
	s, err := decodeEnum(b, "gender")
	*g = Gender(s)
	return err
}

type Goal string

const (
	GoalLoseWeight  Goal = "lose_weight"
	GoalGainWeight  Goal = "gain_weight"
	GoalStayHealthy Goal = "stay_healthy"
)

func (g Goal) Valid() bool {
	switch g {
	case GoalLoseWeight, GoalGainWeight, GoalStayHealthy:
		return true
	}
	return false
}

func (g *Goal) UnmarshalJSON(b []byte) error {
	s, err := decodeEnum(b, "goal")
	*g = Goal(s)
	return err
}

type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivitySuperActive      ActivityLevel = "super_active"
)

func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityLightlyActive, ActivityModeratelyActive, ActivityVeryActive, ActivitySuperActive:
		return true
	}
	return false
}

func (a *ActivityLevel) UnmarshalJSON(b []byte) error {
	s, err := decodeEnum(b, "activity_level")
	*a = ActivityLevel(s)
	return err
}

// decodeEnum reads a JSON string. Any other JSON type is reported as an
// invalid selection for field.
func decodeEnum(b []byte, field string) (string, error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", &validation.EnumError{Field: field, Value: string(b)}
	}
	return s, nil
}
