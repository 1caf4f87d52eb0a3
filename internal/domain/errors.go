package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrConflict       = errors.New("conflict")
	ErrValidation     = errors.New("validation failed")
	ErrUnknown        = errors.New("unknown error")
)

// ValidationError отклоняет входные данные до каких-либо изменений.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MaxExpenseAmount - верхняя граница суммы расхода (не включительно), диапазон колонки NUMERIC(14,2).
var MaxExpenseAmount = decimal.New(1, 12)

// InvalidAmountError - ошибка валидации суммы расхода, которая не положительна или не меньше
// MaxExpenseAmount.
type InvalidAmountError struct {
	Amount decimal.Decimal
}

func NewInvalidAmountError(amount decimal.Decimal) error {
	return &InvalidAmountError{Amount: amount}
}

func (e *InvalidAmountError) Error() string {
	if e.Amount.IsPositive() {
		return fmt.Sprintf("amount must be less than %s, got %s",
			MaxExpenseAmount.StringFixed(2), e.Amount.StringFixed(2))
	}
	return fmt.Sprintf("amount must be positive, got %s", e.Amount.StringFixed(2))
}

func (e *InvalidAmountError) Unwrap() error {
	return ErrValidation
}

type InvalidPayerError struct {
	PayerID int64
}

func NewInvalidPayerError(payerID int64) error {
	return &InvalidPayerError{PayerID: payerID}
}

func (e *InvalidPayerError) Error() string {
	return fmt.Sprintf("payer %d is not a member of the group", e.PayerID)
}

// InvalidSplitError сообщает о наборе участников, который нельзя разделить: пустом, с дубликатами
// или с пользователями не из группы. UserID равен нулю, если виноват не один конкретный пользователь.
type InvalidSplitError struct {
	UserID int64
	Reason string
}

func NewInvalidSplitError(userID int64, reason string) error {
	return &InvalidSplitError{UserID: userID, Reason: reason}
}

func (e *InvalidSplitError) Error() string {
	if e.UserID == 0 {
		return "invalid split: " + e.Reason
	}
	return fmt.Sprintf("invalid split for user %d: %s", e.UserID, e.Reason)
}

type NotFoundError struct {
	Entity string
	ID     int64
}

func NewNotFoundError(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrRecordNotFound
}

type ConflictError struct {
	Reason string
}

func NewConflictError(reason string) error {
	return &ConflictError{Reason: reason}
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
