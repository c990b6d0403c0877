package area

import "errors"

var (
	ErrAreaNotFound     = errors.New("area: area not found")
	ErrCycleDetected    = errors.New("area: cycle detected in connections")
	ErrUnknownServiceID = errors.New("area: unknown service id")
	ErrSaveInProgress   = errors.New("area: save already in progress")
	ErrDraftNotFound    = errors.New("area: draft not found")

	// ErrValidation matches every *ValidationError through errors.Is.
	ErrValidation = errors.New("area: validation failed")
)

// Validation codes.
const (
	CodeMissingEndpoints     = "missing-endpoints"
	CodeInvalidConditionJSON = "invalid-condition-json"
	CodeInvalidMappingJSON   = "invalid-mapping-json"
	CodeInvalidLinkType      = "invalid-link-type"
	CodeMissingName          = "missing-name"
	CodeNoActions            = "no-actions"

	// CodeInvalid stands in when the backend rejects a request without a code.
	CodeInvalid = "invalid"
)

// Codes reported by the backend for rejected connection graphs.
const (
	CodeCycle            = "cycle"
	CodeUnknownServiceID = "unknown-service-id"
)

// ValidationError is a locally recoverable input problem, shown to the user.
type ValidationError struct {
	Code string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return "validation: " + e.Code + ": " + e.Err.Error()
	}
	return "validation: " + e.Code
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a *ValidationError with the given code.
func Invalid(code string, cause error) error {
	return &ValidationError{Code: code, Err: cause}
}

// ValidationCode returns the code of a validation error, or "" if err is not one.
func ValidationCode(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
