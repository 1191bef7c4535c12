package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrDuplicateRequestID = errors.New("booking with this request id already exists")
)
