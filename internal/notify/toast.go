// Package notify carries the toast payloads rendered by the storefront UI.
package notify

// Severity is the color class of a toast banner.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Toast is one user-visible notification attached to a JSON response.
type Toast struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// OK builds a success toast.
func OK(message string) Toast {
	return Toast{Message: message, Severity: SeverityOK}
}

// Warning builds a warning toast, used for refused inputs that never reach
// the backend.
func Warning(message string) Toast {
	return Toast{Message: message, Severity: SeverityWarning}
}

// Error builds an error toast, used for failed backend calls.
func Error(message string) Toast {
	return Toast{Message: message, Severity: SeverityError}
}
