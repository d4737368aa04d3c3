package response

import "time"

// List wraps a collection in API responses
type List[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewList creates a List, rendering nil slices as empty arrays
func NewList[T any](items []T) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Count: len(items)}
}

// Health is the response for the health endpoint
type Health struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}
