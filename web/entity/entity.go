// Package entity defines the JSON shapes returned by the web layer.
package entity

import (
	"time"

	"github.com/acquisitions/api/database/model"
	"github.com/acquisitions/api/security"
)

// ErrorResponse is the uniform error envelope: a short error tag, an
// optional human message, and field details for validation failures.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type UserEnvelope struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

type UserList struct {
	Message string       `json:"message"`
	Users   []model.User `json:"users"`
	Count   int          `json:"count"`
}

type Health struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Uptime    float64        `json:"uptime"`
	CPU       float64        `json:"cpu_percent"`
	MemUsed   uint64         `json:"mem_used"`
	MemTotal  uint64         `json:"mem_total"`
	Admission security.Stats `json:"admission"`
}
