package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation lock not found")

	ErrDuplicateRequestID = errors.New("reservation lock with this request id already exists")

	ErrGuardBusy = errors.New("room hold guard is held by another request")

	ErrRoomNotFound = errors.New("room not found")

	ErrEventAlreadyApplied = errors.New("booking event already applied")
)
