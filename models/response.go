package models

// Response is the envelope every endpoint returns. On failure Message
// carries the coarse error category and Errors the human-readable detail.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
	Message string `json:"message,omitempty"`
}
