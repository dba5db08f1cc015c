package commons

import "github.com/sente-books/ledger-service/src/internal/ledger"

type Response[T any] struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       *T                 `json:"data,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
	Violations []ledger.Violation `json:"violations,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

// ViolationResponse carries the full validator output so the caller can
// show every problem at once, never just the first.
func ViolationResponse[T any](message string, violations []ledger.Violation) Response[T] {
	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		messages = append(messages, violation.Message)
	}

	return Response[T]{
		Success:    false,
		Message:    message,
		Errors:     messages,
		Violations: violations,
	}
}
