package handlers

// ErrorResponse is the standard format for API error responses. The
// server's error handler marshals unhandled errors into this shape for
// JSON requests.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
