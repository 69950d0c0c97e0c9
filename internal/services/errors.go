package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidQuery marks blank or malformed user input. Fails fast, never retried.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNotFound marks a lookup that produced no match. Reported, not a fault.
	// Ambiguous lookups are not errors; match results carry them as outcomes.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable marks a collaborator that cannot be reached at all,
	// typically because credentials are missing.
	ErrUnavailable = errors.New("service unavailable")
	// ErrTransient marks a failure worth a bounded retry.
	ErrTransient = errors.New("transient failure")
	// ErrRemoteMutation marks a write the remote server rejected.
	ErrRemoteMutation = errors.New("remote mutation rejected")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

// HTTPStatusError reports a non-success HTTP response from a collaborator.
type HTTPStatusError struct {
	Service string
	Method  string
	Path    string
	Code    int
	Body    string
}

func (e *HTTPStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s %s returned %d: %s", e.Service, e.Method, e.Path, e.Code, e.Body)
	}
	return fmt.Sprintf("%s %s %s returned %d", e.Service, e.Method, e.Path, e.Code)
}

// Is maps status classes onto the sentinel taxonomy so callers can use
// errors.Is without inspecting codes directly.
func (e *HTTPStatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnavailable:
		return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
	case ErrTransient:
		return e.Code >= 500
	}
	return false
}

// Retryable reports whether an error is worth another attempt. Client errors
// (4xx) indicate a bad request and are final; everything else is assumed to
// be a transient network condition.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500
	}
	if errors.Is(err, ErrInvalidQuery) || errors.Is(err, ErrUnavailable) {
		return false
	}
	return true
}
