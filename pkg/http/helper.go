package http

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "roombook/pkg/errors"
	"roombook/pkg/model"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderUserID    = "X-User-Id"
)

// QueryDate parses a required YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (model.Date, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return model.Date{}, apperrors.InvalidInput("missing " + name + " parameter")
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, apperrors.InvalidInput("invalid " + name + " parameter: " + s)
	}
	return d, nil
}

// QueryString returns a required, non-blank query parameter.
func QueryString(r *http.Request, name string) (string, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return "", apperrors.InvalidInput("missing " + name + " parameter")
	}
	return s, nil
}

func ParseID(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid " + name + ": " + raw)
	}
	return id, nil
}

// UserID extracts the caller id set by the gateway.
func UserID(r *http.Request) (int64, error) {
	raw := r.Header.Get(HeaderUserID)
	if raw == "" {
		return 0, apperrors.InvalidInput("missing " + HeaderUserID + " header")
	}
	return ParseID(raw, "user id")
}
