package events

import (
	"errors"
	"fmt"
)

var (
	ErrQueueFull = errors.New("event queue is full")
)

// PublishError сообщает, что событие не удалось доставить за все попытки.
type PublishError struct {
	EventType string
	Attempts  uint
	Err       error
}

func NewPublishError(eventType string, attempts uint, err error) *PublishError {
	return &PublishError{EventType: eventType, Attempts: attempts, Err: err}
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s: gave up after %d attempts: %s", e.EventType, e.Attempts, e.Err.Error())
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
