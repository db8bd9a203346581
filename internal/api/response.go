// Package api holds the JSON request/response plumbing shared by all HTTP
// handlers: strict body decoding, uniform error rendering, and CORS.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sorjordet/sorjordet/pkg/validator"
)

// ErrNotFound maps to a 404 response.
var ErrNotFound = errors.New("api: not found")

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details map[string][]string `json:"details,omitempty"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error renders err with the appropriate status. Validation failures become
// 422 with per-field details, not-found becomes 404, anything else becomes a
// generic 500: internal failure detail is for logs, not clients.
func Error(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		details := make(map[string][]string, len(verrs))
		for _, ve := range verrs {
			details[ve.Field] = append(details[ve.Field], ve.Message)
		}
		JSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: details})
	case errors.Is(err, ErrNotFound):
		JSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	default:
		JSON(w, http.StatusInternalServerError, ErrorResponse{Error: "something went wrong"})
	}
}

// Decode reads the request body as strict JSON into v. Unknown fields and
// trailing data are rejected so malformed payloads fail loudly.
func Decode(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("api: empty request body")
		}
		return err
	}

	// Ensure the entire body was consumed.
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("api: unexpected data after JSON body")
	}

	return nil
}

// BadRequest renders a 400 for unparseable request bodies.
func BadRequest(w http.ResponseWriter) {
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
}
