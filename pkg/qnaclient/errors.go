package qnaclient

import (
	"errors"
	"fmt"
)

var ErrInvalidArgument = errors.New("filename and question are required")

// UnauthorizedError means the backend rejected the bearer token.
type UnauthorizedError struct {
	Detail string
}

func (e *UnauthorizedError) Error() string {
	if e.Detail == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.Detail
}

// NetworkError wraps transport failures (connection refused, reset, ...).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UploadError is any non-2xx answer to an upload.
type UploadError struct {
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	return e.Message
}

// StatusError is any other non-2xx answer.
type StatusError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Detail)
}
