package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/middleware"
	"parkfinder/pkg/model"
)

// DecodeJSON strictly decodes a request body into dst. Unknown fields and
// trailing garbage are rejected so malformed clients fail loudly.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.InvalidInput("request body is required")
		}
		return apperrors.InvalidInput("invalid JSON in request body")
	}
	if decoder.More() {
		return apperrors.InvalidInput("request body must contain a single JSON object")
	}
	return nil
}

// RequireSession returns the acting session or an Unauthorized error for
// anonymous requests.
func RequireSession(r *http.Request) (*model.Session, error) {
	session := middleware.SessionFrom(r.Context())
	if session == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	return session, nil
}

// RequireSupervisor allows supervisors and admins.
func RequireSupervisor(r *http.Request) (*model.Session, error) {
	session, err := RequireSession(r)
	if err != nil {
		return nil, err
	}
	if !session.CanSupervise() {
		return nil, apperrors.Forbidden("Supervisor access required")
	}
	return session, nil
}

// RequireAdmin allows admins only.
func RequireAdmin(r *http.Request) (*model.Session, error) {
	session, err := RequireSession(r)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}
	return session, nil
}
