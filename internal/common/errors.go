// Package common defines the error taxonomy and small helpers shared by the
// local store, the remote gateway and the synchronization engine. Callers
// should match sentinel values with errors.Is and typed errors with errors.As.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	// ErrRowChanged means a row was edited after the sync engine read it.
	ErrRowChanged = errors.New("row changed since it was read")

	// Session / connectivity errors.
	ErrNetworkUnavailable = errors.New("network unavailable")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrSyncInProgress     = errors.New("sync already in progress")

	// Offline auth errors.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")

	// Validation errors raised before touching storage.
	ErrEmptyPatch = errors.New("no fields to update")
)

// StorageError reports a failed statement against the local store. It keeps
// the operation and table for context but never the bound values.
type StorageError struct {
	Op    string
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NotFoundError is returned when an update or delete matched no row.
type NotFoundError struct {
	Table string
	ID    int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: row %d not found", e.Table, e.ID)
}

// Is makes NotFoundError match ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// MediaStagingError reports a failed copy or delete of a staged asset.
type MediaStagingError struct {
	Op   string
	Path string
	Err  error
}

func (e *MediaStagingError) Error() string {
	return fmt.Sprintf("media %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *MediaStagingError) Unwrap() error { return e.Err }

// ApiError is a non-2xx response from the backend.
type ApiError struct {
	StatusCode       int
	Message          string
	ValidationErrors []string
}

func (e *ApiError) Error() string {
	msg := fmt.Sprintf("request failed: %d", e.StatusCode)
	if e.Message != "" {
		msg += " - " + e.Message
	}
	if len(e.ValidationErrors) > 0 {
		msg += " - " + strings.Join(e.ValidationErrors, ", ")
	}
	return msg
}

// Unauthorized reports whether the backend rejected the credential.
func (e *ApiError) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
