package client

import (
	"fmt"
)

// StatusCodeError - ответ сервера с неуспешным статусом. Message содержит поле error из тела ответа,
// если сервер его прислал.
type StatusCodeError struct {
	Code    int
	Message string
}

func NewStatusCodeError(code int, message string) *StatusCodeError {
	return &StatusCodeError{Code: code, Message: message}
}

func (e *StatusCodeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("Unexpected status code %d", e.Code)
	}
	return fmt.Sprintf("Unexpected status code %d: %s", e.Code, e.Message)
}
