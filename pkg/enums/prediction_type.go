package enums

import "fmt"

// PredictionType distinguishes headline ("big") tips from regular ones.
type PredictionType string

const (
	PredictionTypeBig   PredictionType = "big"
	PredictionTypeSmall PredictionType = "small"
)

var validPredictionTypes = []PredictionType{
	PredictionTypeBig,
	PredictionTypeSmall,
}

// String implements fmt.Stringer.
func (p PredictionType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PredictionType.
func (p PredictionType) IsValid() bool {
	for _, candidate := range validPredictionTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePredictionType converts raw input into a PredictionType.
func ParsePredictionType(value string) (PredictionType, error) {
	for _, candidate := range validPredictionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid prediction type %q", value)
}
