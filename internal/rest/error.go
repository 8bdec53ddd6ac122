package rest

// ErrorResponse is the JSON error shape all handlers return.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
