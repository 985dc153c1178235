package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name       string
		cause      error
		wantStatus int
		wantIs     error
	}{
		{"gorm duplicated key", gorm.ErrDuplicatedKey, http.StatusConflict, ErrConflict},
		{"pg unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), http.StatusConflict, ErrConflict},
		{"record not found", gorm.ErrRecordNotFound, http.StatusNotFound, ErrNotFound},
		{"connection refused", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable, ErrDatabaseConnection},
		{"anything else", errors.New("syntax error"), http.StatusInternalServerError, ErrDatabaseQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError("save", "post", tt.cause)
			if err.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.wantStatus)
			}
			if !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
		})
	}
}

func TestNewDatabaseError_PassesApiErrThrough(t *testing.T) {
	inner := NewNotFound("post")
	if got := NewDatabaseError("find", "post", inner); got != inner {
		t.Errorf("expected the original ApiErr, got %v", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violation reported as unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("wrapped: %w", gorm.ErrDuplicatedKey)) {
		t.Error("wrapped gorm.ErrDuplicatedKey not detected")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError(map[string]string{"title": "required", "content": "too short"})
	if err.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %d", err.StatusCode)
	}
	if !IsValidation(err) {
		t.Error("IsValidation = false")
	}
	if want := "validation failed: invalid content, title"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestGetFullError(t *testing.T) {
	err := NewStorageError("put", "uploads/a.png", errors.New("timeout"))
	want := `blob storage failure: Blob storage failed to put "uploads/a.png" -> timeout`
	if got := err.GetFullError(); got != want {
		t.Errorf("GetFullError() = %q, want %q", got, want)
	}
	if StatusCode(err) != http.StatusBadGateway {
		t.Errorf("StatusCode = %d", StatusCode(err))
	}
	if StatusCode(errors.New("plain")) != http.StatusInternalServerError {
		t.Error("plain errors should map to 500")
	}
}

func TestConstructorsWrapSentinels(t *testing.T) {
	if !IsNotFound(NewNotFound("post")) {
		t.Error("NewNotFound does not wrap ErrNotFound")
	}
	if !IsConflict(NewAlreadyExists("post")) {
		t.Error("NewAlreadyExists does not wrap ErrConflict")
	}
	if !IsUnauthorized(NewInvalidTokenError(nil)) {
		t.Error("NewInvalidTokenError does not wrap ErrUnauthorized")
	}
	if !errors.Is(NewMalformedPayloadError("post", nil), ErrBadRequest) {
		t.Error("NewMalformedPayloadError does not wrap ErrBadRequest")
	}
	if !errors.Is(NewTransactionFailedError("commit", nil), ErrTransactionFailed) {
		t.Error("NewTransactionFailedError does not wrap ErrTransactionFailed")
	}
	if StatusCode(NewServiceUnavailableError("database", nil)) != http.StatusServiceUnavailable {
		t.Error("NewServiceUnavailableError is not a 503")
	}
	if !IsConfigError(NewConfigError("MAX_UPLOAD_BYTES", nil)) {
		t.Error("NewConfigError is not a config error")
	}
}
