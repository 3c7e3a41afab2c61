package dtos

// ErrorResponse is the failure envelope shared by every endpoint. Only the
// detail field matching the failure kind is populated.
type ErrorResponse struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Error         string            `json:"error,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	MissingFields []string          `json:"missingFields,omitempty"`
	Stack         string            `json:"stack,omitempty"`
}
