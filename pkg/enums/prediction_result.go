package enums

import "fmt"

// PredictionResult is the settlement outcome of a published tip.
// Values are capitalized on the wire and in storage.
type PredictionResult string

const (
	PredictionResultPending PredictionResult = "Pending"
	PredictionResultWon     PredictionResult = "Won"
	PredictionResultLoss    PredictionResult = "Loss"
	PredictionResultReturn  PredictionResult = "Return"
)

var validPredictionResults = []PredictionResult{
	PredictionResultPending,
	PredictionResultWon,
	PredictionResultLoss,
	PredictionResultReturn,
}

// String implements fmt.Stringer.
func (p PredictionResult) String() string {
	return string(p)
}

// IsSettled reports whether the prediction has been graded.
func (p PredictionResult) IsSettled() bool {
	return p.IsValid() && p != PredictionResultPending
}

// IsValid reports whether the value is a known PredictionResult.
func (p PredictionResult) IsValid() bool {
	for _, candidate := range validPredictionResults {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePredictionResult converts raw input into a PredictionResult.
func ParsePredictionResult(value string) (PredictionResult, error) {
	for _, candidate := range validPredictionResults {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid prediction result %q", value)
}
