package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/splitledger/internal/calculator"
	"github.com/fsdevblog/splitledger/internal/domain"
)

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type GroupResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UserIDs   []int64   `json:"user_ids"`
}

func newGroupResponse(g *domain.Group) GroupResponse {
	userIDs := g.MemberIDs
	if userIDs == nil {
		userIDs = []int64{}
	}
	return GroupResponse{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt, UserIDs: userIDs}
}

type SplitResponse struct {
	ID         int64    `json:"id"`
	UserID     int64    `json:"user_id"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage"`
}

type ExpenseResponse struct {
	ID          int64            `json:"id"`
	GroupID     int64            `json:"group_id"`
	Description string           `json:"description"`
	Amount      float64          `json:"amount"`
	PaidBy      int64            `json:"paid_by"`
	SplitType   domain.SplitType `json:"split_type"`
	CreatedAt   time.Time        `json:"created_at"`
	Splits      []SplitResponse  `json:"splits"`
}

func newExpenseResponse(e *domain.Expense) ExpenseResponse {
	splits := make([]SplitResponse, len(e.Splits))
	for i, split := range e.Splits {
		splits[i] = SplitResponse{
			ID:         split.ID,
			UserID:     split.UserID,
			Amount:     split.Amount.InexactFloat64(),
			Percentage: inexactPtr(split.Percentage),
		}
	}
	return ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount.InexactFloat64(),
		PaidBy:      e.PaidBy,
		SplitType:   e.SplitType,
		CreatedAt:   e.CreatedAt,
		Splits:      splits,
	}
}

type ShareResponse struct {
	UserID     int64    `json:"user_id"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage"`
}

func newShareResponses(shares []calculator.Share) []ShareResponse {
	res := make([]ShareResponse, len(shares))
	for i, share := range shares {
		res[i] = ShareResponse{
			UserID:     share.UserID,
			Amount:     share.Amount.InexactFloat64(),
			Percentage: inexactPtr(share.Percentage),
		}
	}
	return res
}

type BalanceResponse struct {
	FromUser int64   `json:"from_user"`
	ToUser   int64   `json:"to_user"`
	Amount   float64 `json:"amount"`
}

func newBalanceResponses(balances []domain.Balance) []BalanceResponse {
	res := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		res[i] = BalanceResponse{FromUser: b.From, ToUser: b.To, Amount: b.Amount.InexactFloat64()}
	}
	return res
}

type GroupBalancesResponse struct {
	GroupID   int64             `json:"group_id"`
	GroupName string            `json:"group_name"`
	Balances  []BalanceResponse `json:"balances"`
}

func inexactPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
