package types

// The API speaks a two-envelope wire contract: 2xx bodies nest the
// payload under "data", everything else nests an APIError under
// "error". Clients never need to sniff the top-level shape.

// SuccessEnvelope wraps a 2xx response payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing form of a pkg/errors AppError. Details
// is populated only for codes whose metadata allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps a non-2xx response payload.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Success builds the envelope for a 2xx body.
func Success(data any) SuccessEnvelope {
	return SuccessEnvelope{Data: data}
}

// Failure builds the envelope for an error body.
func Failure(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Details: details}}
}
