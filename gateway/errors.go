package gateway

import (
	"errors"
	"fmt"
)

// Operation names, used in errors, logs and metric labels
const (
	OpCheckURL        = "check_url"
	OpGenerateFakeURL = "generate_fake_url"
	OpAnalyzeFiles    = "check_spam"
	OpExportReport    = "generate_pdf_report"
)

// NetworkError is a transport level failure: DNS, refused connection,
// timeout or a cancelled context.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServiceError means the service answered, but not with a usable success
// response.
type ServiceError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: invalid response (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: service returned status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: service returned status %d", e.Op, e.StatusCode)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// InputError is raised before any request is sent.
type InputError struct {
	Op     string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// Outcome classifies the result of a gateway call.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNetworkError
	OutcomeServiceError
	OutcomeInputError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNetworkError:
		return "network_error"
	case OutcomeServiceError:
		return "service_error"
	case OutcomeInputError:
		return "input_error"
	default:
		return "unknown"
	}
}

// OutcomeOf maps an error returned by the gateway to its Outcome. Errors
// that are not gateway errors count as network errors.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return OutcomeServiceError
	}
	var inErr *InputError
	if errors.As(err, &inErr) {
		return OutcomeInputError
	}
	return OutcomeNetworkError
}
