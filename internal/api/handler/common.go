package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Ayu-zh/placement-connector/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// decode reads a JSON request body into v
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}
