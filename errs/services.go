package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Blob storage & message broker errors
var (
	ErrStorage            = errors.New("blob storage failure")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
	ErrConfigInvalid = errors.New("configuration invalid")
)

// NewStorageError wraps a failed blob store operation. The upstream store is
// treated as a bad gateway so clients can tell it apart from our own failures.
func NewStorageError(operation, key string, cause error) *ApiErr {
	details := fmt.Sprintf("Blob storage failed to %s", operation)
	if key != "" {
		details = fmt.Sprintf("%s %q", details, key)
	}
	return &ApiErr{
		StatusCode: http.StatusBadGateway,
		err:        ErrStorage,
		Details:    details,
		Cause:      cause,
		Field:      "cover_img",
	}
}

func NewServiceUnavailableError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceUnavailable,
		Details:    fmt.Sprintf("%s is unavailable", service),
		Cause:      cause,
	}
}

func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigInvalid,
		Details:    fmt.Sprintf("Invalid configuration: %s", configName),
		Cause:      cause,
		Field:      "config",
	}
}

func NewEnvironmentVariableError(varName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("Environment variable %s is not set", varName),
		Field:      "environment",
	}
}

func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigInvalid) || errors.Is(err, ErrConfigMissing)
}
