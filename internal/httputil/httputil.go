package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gogofit/backend/internal/apperr"
	"github.com/gogofit/backend/internal/validation"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

type errorBody struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Errors  apperr.Fields `json:"errors,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// WriteError maps err onto the error taxonomy and writes it. Errors that
// are not *apperr.Error are reported as internal errors.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.Internal("Internal server error", err)
	}

	body := errorBody{Message: e.Message, Errors: e.Fields}
	if e.Kind == apperr.KindInternal {
		log.Error().
			Err(e.Err).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg(e.Message)
		if e.Err != nil {
			body.Error = e.Err.Error()
		}
	}

	WriteJSON(w, e.Kind.Status(), body)
}

// DecodeJSON reads the request body into dst. An empty body leaves dst
// untouched so required-field validation reports the missing fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var enumErr *validation.EnumError
	if errors.As(err, &enumErr) {
		return apperr.FieldError(enumErr.Field, enumErr.Message())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.FieldError(typeErr.Field, validation.TypeMessage(typeErr.Field, typeErr.Type))
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.InvalidFormat("Request body too large")
	}

	return apperr.InvalidFormat("Malformed JSON body")
}
