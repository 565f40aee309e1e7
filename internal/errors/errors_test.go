package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAppErrorCategorization(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category ErrorCategory
		severity ErrorSeverity
	}{
		{ErrCodeValidation, CategoryValidation, SeverityWarning},
		{ErrCodeNotFound, CategoryResource, SeverityInfo},
		{ErrCodeAlreadyExists, CategoryResource, SeverityWarning},
		{ErrCodeStorageFailure, CategoryStorage, SeverityError},
		{ErrCodeFileCorrupted, CategoryStorage, SeverityError},
		{ErrCodeInternalError, CategorySystem, SeverityCritical},
	}
	for _, tt := range tests {
		err := NewAppError(tt.code, "test")
		if err.Category != tt.category {
			t.Errorf("%s category = %s, want %s", tt.code, err.Category, tt.category)
		}
		if err.Severity != tt.severity {
			t.Errorf("%s severity = %s, want %s", tt.code, err.Severity, tt.severity)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	appErr := Wrap(cause, ErrCodeStorageFailure, "write failed")
	if !errors.Is(appErr, cause) {
		t.Error("wrapped error does not unwrap to its cause")
	}
	if !appErr.Retryable {
		t.Error("storage failures should be retryable")
	}
}

func TestHasCode(t *testing.T) {
	err := NotFoundError("Sprint Retro")
	if !HasCode(err, ErrCodeNotFound) {
		t.Error("HasCode missed matching code")
	}
	if HasCode(err, ErrCodeValidation) {
		t.Error("HasCode matched wrong code")
	}
	if HasCode(errors.New("plain"), ErrCodeNotFound) {
		t.Error("HasCode matched a non-AppError")
	}
}

func TestGetAppErrorConvertsPlainErrors(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	if appErr.Code != ErrCodeInternalError {
		t.Errorf("code = %s, want INTERNAL_ERROR", appErr.Code)
	}
}

func TestWriteHTTPErrorStatusCodes(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ValidationError("bad input"), http.StatusUnprocessableEntity},
		{NotFoundError("X"), http.StatusNotFound},
		{AlreadyExistsError("X"), http.StatusConflict},
		{StorageError("write", errors.New("io")), http.StatusInternalServerError},
		{CorruptError("X", errors.New("yaml")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	h := NewHTTPErrorHandler(false)
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.WriteHTTPError(rec, tt.err)
		if rec.Code != tt.status {
			t.Errorf("%v -> status %d, want %d", tt.err, rec.Code, tt.status)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}

		var body struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response body is not JSON: %v", err)
		}
		if body.Error.Code == "" || body.Error.Message == "" {
			t.Errorf("incomplete error body: %s", rec.Body.String())
		}
	}
}

func TestFormatErrorDetailToggle(t *testing.T) {
	appErr := ValidationError("bad input").WithDetails("field: title")

	withDetails := NewHTTPErrorHandler(true).FormatError(appErr)
	if !strings.Contains(withDetails, "field: title") {
		t.Errorf("details missing when enabled: %s", withDetails)
	}

	withoutDetails := NewHTTPErrorHandler(false).FormatError(appErr)
	if strings.Contains(withoutDetails, "field: title") {
		t.Errorf("details leaked when disabled: %s", withoutDetails)
	}
}

func TestCLIErrorHandlerFormat(t *testing.T) {
	h := NewCLIErrorHandler(false)
	if got := h.FormatError(ValidationError("title required")); got != "warning: title required" {
		t.Errorf("validation format = %q", got)
	}
	if got := h.FormatError(InternalError("boom")); got != "error: boom" {
		t.Errorf("internal format = %q", got)
	}
	if got := h.FormatError(NotFoundError("X")); got != "Template 'X' not found" {
		t.Errorf("not-found format = %q", got)
	}
}
