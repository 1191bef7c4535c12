package http

import (
	"encoding/json"
	"net/http"

	apperrors "roombook/pkg/errors"
)

func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError renders err as apperrors.ErrorResponse. Anything that is not an
// AppError becomes a 500 without leaking the cause.
func WriteError(w http.ResponseWriter, err error) {
	if !apperrors.IsAppError(err) {
		WriteJSON(w, http.StatusInternalServerError, apperrors.ErrorResponse{
			Error: "Internal server error",
			Code:  apperrors.CodeInternal,
		})
		return
	}

	e := apperrors.AsAppError(err)
	statusCode := e.StatusCode()
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	WriteJSON(w, statusCode, apperrors.ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	})
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

