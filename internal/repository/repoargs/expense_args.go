package repoargs

import (
	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateExpense struct {
	GroupID     int64
	Description string
	Amount      decimal.Decimal
	PaidBy      int64
	SplitType   domain.SplitType
	Splits      []CreateSplit
}

type CreateSplit struct {
	UserID     int64
	Amount     decimal.Decimal
	Percentage *decimal.Decimal
}

// UpdateExpense заменяет все изменяемые колонки расхода и все его доли.
type UpdateExpense struct {
	ID          int64
	Description string
	Amount      decimal.Decimal
	PaidBy      int64
	SplitType   domain.SplitType
	Splits      []CreateSplit
}

// ExpenseRef указывает на расход, удаленный вместе с другой сущностью.
type ExpenseRef struct {
	ID      int64
	GroupID int64
}
