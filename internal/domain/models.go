package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	Email     string
}

type Group struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	MemberIDs []int64
}

// HasMember проверяет, есть ли userID среди участников группы.
func (g *Group) HasMember(userID int64) bool {
	return slices.Contains(g.MemberIDs, userID)
}

type Expense struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	GroupID     int64
	Description string
	Amount      decimal.Decimal
	PaidBy      int64
	SplitType   SplitType
	Splits      []ExpenseSplit
}

type ExpenseSplit struct {
	ID         int64
	ExpenseID  int64
	UserID     int64
	Amount     decimal.Decimal
	Percentage *decimal.Decimal
}

// Balance - вычисляемый итоговый долг: From должен To сумму Amount. Не хранится.
type Balance struct {
	From   int64
	To     int64
	Amount decimal.Decimal
}

// GroupBalances - балансы одного пользователя внутри одной группы.
type GroupBalances struct {
	GroupID   int64
	GroupName string
	Balances  []Balance
}
