package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as a JSON body with the given status
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Items writes a 200 list envelope
func Items[T any](w http.ResponseWriter, items []T) {
	JSON(w, http.StatusOK, NewList(items))
}

// Created writes a newly stored record
func Created(w http.ResponseWriter, record any) {
	JSON(w, http.StatusCreated, record)
}

// NoContent acknowledges a write that returns no body
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
