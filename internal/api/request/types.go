package request

import "github.com/Ayu-zh/placement-connector/internal/model"

// LoginRequest is the request body for signing in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the request body for a student's own sign-up.
// There is no role field: self-registered accounts are always students.
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Year       string `json:"year"`
}

// StudentRequest is the request body for adding or updating a student.
// Password is required when adding and optional when updating.
type StudentRequest struct {
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Password   string              `json:"password,omitempty"`
	Department string              `json:"department"`
	Year       string              `json:"year"`
	Status     model.StudentStatus `json:"status,omitempty"`
	Verified   bool                `json:"verified"`
}
