package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pratofeito/marmita-orders/internal/apperr"
	log "github.com/sirupsen/logrus"
)

var errBadJSON = errors.New("invalid json")

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be absent.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errBadJSON
	}
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadJSON
	}
	return nil
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadJSON):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrUnauthenticated), errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUnavailable),
		errors.Is(err, apperr.ErrEmptyCart),
		errors.Is(err, apperr.ErrMissingAddress),
		errors.Is(err, apperr.ErrInvalidStatus),
		errors.Is(err, apperr.ErrInvalidQuantity),
		errors.Is(err, apperr.ErrIndexOutOfRange),
		errors.Is(err, apperr.ErrInvalidPrice),
		errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).Error("request failed")
		msg = "internal error"
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.ErrNotFound
	}
	return id, nil
}
