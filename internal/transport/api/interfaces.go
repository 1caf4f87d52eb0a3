package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/splitledger/internal/calculator"
	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Create(ctx context.Context, args service.CreateUserArgs) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, page repoargs.Page) ([]domain.User, error)
	Update(ctx context.Context, args service.UpdateUserArgs) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type GroupServicer interface {
	Create(ctx context.Context, args service.CreateGroupArgs) (*domain.Group, error)
	Get(ctx context.Context, id int64) (*domain.Group, error)
	List(ctx context.Context, page repoargs.Page) ([]domain.Group, error)
	Update(ctx context.Context, args service.UpdateGroupArgs) (*domain.Group, error)
	Delete(ctx context.Context, id int64) error
}

type ExpenseServicer interface {
	Create(ctx context.Context, args service.CreateExpenseArgs) (*domain.Expense, error)
	Preview(ctx context.Context, args service.CreateExpenseArgs) ([]calculator.Share, error)
	Get(ctx context.Context, id int64) (*domain.Expense, error)
	ListByGroup(ctx context.Context, groupID int64) ([]domain.Expense, error)
	Update(ctx context.Context, args service.UpdateExpenseArgs) (*domain.Expense, error)
	Delete(ctx context.Context, id int64) error
}

type BalanceServicer interface {
	GroupBalances(ctx context.Context, groupID int64) ([]domain.Balance, error)
	UserBalances(ctx context.Context, userID int64) ([]domain.GroupBalances, error)
}
