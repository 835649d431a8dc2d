package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
)

// ErrReleaseNotFound is returned by GetReleaseByTag when no release carries the tag.
// The reconciler treats it as a branch condition, not a failure.
var ErrReleaseNotFound = errors.New("release not found")

// ErrorType represents different categories of release publishing errors
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeAuth          ErrorType = "authentication"
	ErrorTypePermission    ErrorType = "permission"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeConflict      ErrorType = "conflict"
	ErrorTypeNetwork       ErrorType = "network"
	ErrorTypeRemote        ErrorType = "remote"
)

// GitHubError represents a structured error from release operations
type GitHubError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Cause      error     `json:"-"`
	Resource   string    `json:"resource,omitempty"`
	Field      string    `json:"field,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
}

// Error implements the error interface
func (e *GitHubError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s error for %s: %s", e.Type, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *GitHubError) Unwrap() error {
	return e.Cause
}

// NewGitHubError creates a new GitHubError with the specified type and message
func NewGitHubError(errorType ErrorType, message string, cause error) *GitHubError {
	return &GitHubError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigurationError reports missing or incomplete settings such as credentials
func NewConfigurationError(message string, cause error) *GitHubError {
	return NewGitHubError(ErrorTypeConfiguration, message, cause)
}

// IsErrorType reports whether err is a GitHubError of the given type
func IsErrorType(err error, errorType ErrorType) bool {
	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		return ghErr.Type == errorType
	}
	return false
}

// WrapGitHubError wraps a GitHub API error into our structured error type
func WrapGitHubError(err error, resource string) *GitHubError {
	if err == nil {
		return nil
	}

	var ghErr *GitHubError
	if errors.As(err, &ghErr) {
		if ghErr.Resource == "" {
			ghErr.Resource = resource
		}
		return ghErr
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &GitHubError{
			Type:       ErrorTypeRemote,
			Message:    fmt.Sprintf("rate limit exceeded, resets at %v", rateErr.Rate.Reset.Time),
			Cause:      err,
			Resource:   resource,
			StatusCode: http.StatusForbidden,
		}
	}

	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return parseGitHubAPIError(apiErr, resource)
	}

	if isNetworkError(err) {
		return &GitHubError{
			Type:     ErrorTypeNetwork,
			Message:  "network error occurred, check your connection and re-run",
			Cause:    err,
			Resource: resource,
		}
	}

	return &GitHubError{
		Type:     ErrorTypeRemote,
		Message:  err.Error(),
		Cause:    err,
		Resource: resource,
	}
}

// parseGitHubAPIError parses GitHub API error responses into structured errors
func parseGitHubAPIError(apiErr *github.ErrorResponse, resource string) *GitHubError {
	baseErr := &GitHubError{
		Resource:   resource,
		Cause:      apiErr,
		StatusCode: apiErr.Response.StatusCode,
	}

	switch apiErr.Response.StatusCode {
	case http.StatusUnauthorized:
		baseErr.Type = ErrorTypeAuth
		baseErr.Message = "authentication failed, check your GitHub username and token"

	case http.StatusForbidden:
		baseErr.Type = ErrorTypePermission
		baseErr.Message = "insufficient permissions, the token needs the repo (or public_repo) scope"

	case http.StatusNotFound:
		baseErr.Type = ErrorTypeNotFound
		if strings.Contains(resource, "release") {
			baseErr.Message = "release not found, check the repository name and tag"
		} else {
			baseErr.Message = "resource not found"
		}

	case http.StatusConflict:
		baseErr.Type = ErrorTypeConflict
		baseErr.Message = "resource conflict occurred"

	case http.StatusUnprocessableEntity:
		baseErr.Type = ErrorTypeValidation
		baseErr.Message = "validation failed"

		if len(apiErr.Errors) > 0 {
			var details []string
			for _, e := range apiErr.Errors {
				switch {
				case e.Field != "" && e.Code == "already_exists":
					details = append(details, fmt.Sprintf("%s: already exists", e.Field))
				case e.Field != "":
					details = append(details, fmt.Sprintf("%s: %s", e.Field, e.Code))
				default:
					details = append(details, e.Message)
				}
				if baseErr.Field == "" {
					baseErr.Field = e.Field
				}
			}
			baseErr.Message = fmt.Sprintf("validation failed: %s", strings.Join(details, "; "))
		}

	default:
		baseErr.Type = ErrorTypeRemote
		baseErr.Message = fmt.Sprintf("unexpected status %d: %s", apiErr.Response.StatusCode, apiErr.Message)
	}

	return baseErr
}

// isNetworkError checks if an error is a network-related error
func isNetworkError(err error) bool {
	errStr := strings.ToLower(err.Error())
	networkKeywords := []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no such host",
		"dial tcp",
		"i/o timeout",
	}

	for _, keyword := range networkKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

// ValidationError represents a local validation error
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "validation error for " + e.detail()
}

func (e *ValidationError) detail() string {
	if e.Value != "" {
		return fmt.Sprintf("field '%s' (value: %s): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}

	if len(e) == 1 {
		return e[0].Error()
	}

	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e), strings.Join(messages, "; "))
}

// Add adds a validation error to the collection
func (e *ValidationErrors) Add(field, value, message string) {
	*e = append(*e, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// AsError wraps the collection in a validation GitHubError, or returns nil when empty
func (e ValidationErrors) AsError() error {
	if !e.HasErrors() {
		return nil
	}
	// GitHubError already prefixes "validation error: "
	var details []string
	for i := range e {
		details = append(details, e[i].detail())
	}
	message := details[0]
	if len(details) > 1 {
		message = fmt.Sprintf("%d errors: %s", len(details), strings.Join(details, "; "))
	}

	return &GitHubError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   e,
	}
}
