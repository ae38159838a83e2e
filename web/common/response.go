package common

type ErrorResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Message: message}
}

type StatusResponse struct {
	Status string `json:"status"`
}

func NewStatusResponse(status string) *StatusResponse {
	return &StatusResponse{Status: status}
}
