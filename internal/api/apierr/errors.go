package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/projectr/roomserver/internal/model"
)

// Wire error strings surfaced on the HTTP surface
const (
	CodeBadRequest    = "bad_request"
	CodeRoomNotFound  = "room_not_found"
	CodeRoomFull      = "room_full"
	CodeUnknownToken  = "unknown_token"
	CodeUnavailable   = "unavailable"
	CodeInternalError = "internal_error"
)

// errorBody is the uniform failure shape: {ok:false, error:"..."}
type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// httpError combines an HTTP status with a wire error string
type httpError struct {
	status int
	code   string
}

func (e *httpError) Error() string {
	return e.code
}

// WriteError maps err to a status and writes the {ok:false, error} body
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(errorBody{OK: false, Error: he.code})
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrInvalidRoomCode):
		return &httpError{http.StatusBadRequest, CodeBadRequest}
	case errors.Is(err, model.ErrEmptyToken):
		return &httpError{http.StatusBadRequest, CodeBadRequest}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, CodeRoomNotFound}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, CodeRoomFull}
	case errors.Is(err, model.ErrUnknownToken):
		return &httpError{http.StatusForbidden, CodeUnknownToken}
	case errors.Is(err, model.ErrActorClosed):
		return &httpError{http.StatusServiceUnavailable, CodeUnavailable}
	default:
		return &httpError{http.StatusInternalServerError, CodeInternalError}
	}
}

// NewBadRequestError creates a 400 with the bad_request wire code
func NewBadRequestError() error {
	return &httpError{http.StatusBadRequest, CodeBadRequest}
}

// NewInternalError creates a 500 with the internal_error wire code
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, CodeInternalError}
}
