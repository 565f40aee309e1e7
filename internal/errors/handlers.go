package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// CLIErrorHandler handles errors for CLI interface
type CLIErrorHandler struct {
	Verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool) *CLIErrorHandler {
	return &CLIErrorHandler{Verbose: verbose}
}

// HandleError handles errors for CLI interface
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	if h.Verbose && appErr.Cause != nil {
		slog.Debug("Command failed", "code", appErr.Code, "cause", appErr.Cause)
	}
	return fmt.Errorf("%s", h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)
	switch appErr.Severity {
	case SeverityCritical, SeverityError:
		return fmt.Sprintf("error: %s", appErr.Message)
	case SeverityWarning:
		return fmt.Sprintf("warning: %s", appErr.Message)
	default:
		return appErr.Message
	}
}

// HTTPErrorHandler handles errors for the HTTP interface
type HTTPErrorHandler struct {
	IncludeDetails bool
}

// NewHTTPErrorHandler creates a new HTTP error handler
func NewHTTPErrorHandler(includeDetails bool) *HTTPErrorHandler {
	return &HTTPErrorHandler{IncludeDetails: includeDetails}
}

// HandleError handles errors for HTTP interface
func (h *HTTPErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)
	// Expected conditions are not operational failures.
	switch appErr.Severity {
	case SeverityInfo:
		slog.Info("Request rejected", "code", appErr.Code, "message", appErr.Message)
	case SeverityWarning:
		slog.Warn("Request rejected", "code", appErr.Code, "message", appErr.Message)
	default:
		slog.Error("Request failed", "code", appErr.Code, "message", appErr.Message, "cause", appErr.Cause)
	}
	return appErr
}

// FormatError formats an error as a JSON response body
func (h *HTTPErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	body := map[string]any{
		"code":      appErr.Code,
		"message":   appErr.Message,
		"timestamp": appErr.Timestamp,
	}
	if h.IncludeDetails && appErr.Details != "" {
		body["details"] = appErr.Details
	}

	jsonBytes, _ := json.Marshal(map[string]any{"error": body})
	return string(jsonBytes)
}

// WriteHTTPError writes an error response to HTTP
func (h *HTTPErrorHandler) WriteHTTPError(w http.ResponseWriter, err error) {
	appErr := GetAppError(err)
	h.HandleError(appErr)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.getHTTPStatusCode(appErr))
	w.Write([]byte(h.FormatError(appErr)))
}

// getHTTPStatusCode maps error codes to HTTP status codes
func (h *HTTPErrorHandler) getHTTPStatusCode(appErr *AppError) int {
	switch appErr.Code {
	case ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeInvalidCommand:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
