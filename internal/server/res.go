package server

import (
	"time"
)

// ErrorRes is the body of every non-2xx response written by a handler.
type ErrorRes struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
