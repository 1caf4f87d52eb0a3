package service

import (
	"context"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	CreateUser(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context, page repoargs.Page) ([]domain.User, error)
	UpdateUser(ctx context.Context, args repoargs.UpdateUser) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type GroupRepository interface {
	CreateGroup(ctx context.Context, args repoargs.CreateGroup) (*domain.Group, error)
	GetGroup(ctx context.Context, id int64) (*domain.Group, error)
	LockGroup(ctx context.Context, id int64) (*domain.Group, error)
	ListGroups(ctx context.Context, page repoargs.Page) ([]domain.Group, error)
	ListUserGroups(ctx context.Context, userID int64) ([]domain.Group, error)
	UpdateGroup(ctx context.Context, args repoargs.UpdateGroup) (*domain.Group, error)
	ReplaceMembers(ctx context.Context, groupID int64, memberIDs []int64) error
	DeleteGroup(ctx context.Context, id int64) error
	DeleteEmptyGroups(ctx context.Context, groupIDs []int64) ([]int64, error)
}

type ExpenseRepository interface {
	CreateExpense(ctx context.Context, args repoargs.CreateExpense) (*domain.Expense, error)
	GetExpense(ctx context.Context, id int64) (*domain.Expense, error)
	ListGroupExpenses(ctx context.Context, groupID int64) ([]domain.Expense, error)
	UpdateExpense(ctx context.Context, args repoargs.UpdateExpense) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	DeleteUserExpenses(ctx context.Context, userID int64) ([]repoargs.ExpenseRef, error)
	GroupParticipants(ctx context.Context, groupID int64) ([]int64, error)
}

// EventNotifier получает события журнала после коммита транзакции, которая их породила.
// Notify не должен блокироваться.
type EventNotifier interface {
	Notify(events ...domain.LedgerEvent)
}
