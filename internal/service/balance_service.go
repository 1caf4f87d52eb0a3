package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/splitledger/internal/calculator"
	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/pkg/uow"
)

// BalanceService сводит сохраненные расходы в балансы. Каждый вызов читает один согласованный снимок.
type BalanceService struct {
	uow uow.UOW
}

func NewBalanceService(u uow.UOW) *BalanceService {
	return &BalanceService{uow: u}
}

// GroupBalances возвращает свернутые балансы между участниками группы.
func (s *BalanceService) GroupBalances(ctx context.Context, groupID int64) ([]domain.Balance, error) {
	var balances []domain.Balance
	txErr := s.uow.DoReadOnly(ctx, func(c context.Context, tx uow.TX) error {
		groupRepo, repoErr := uow.GetAs[GroupRepository](tx, uow.RepositoryName(repoargs.GroupRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		expenseRepo, repoErr := uow.GetAs[ExpenseRepository](tx, uow.RepositoryName(repoargs.ExpenseRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		if _, getErr := groupRepo.GetGroup(c, groupID); getErr != nil {
			return translateErr(getErr, entityGroup, groupID)
		}
		expenses, listErr := expenseRepo.ListGroupExpenses(c, groupID)
		if listErr != nil {
			return translateErr(listErr, entityGroup, groupID)
		}
		balances = calculator.GroupBalances(expenses)
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("computing group balances: %w", txErr)
	}
	return balances, nil
}

// UserBalances возвращает по каждой группе пользователя балансы, в которых он участвует.
// Группы, где у пользователя нет долгов, пропускаются.
func (s *BalanceService) UserBalances(ctx context.Context, userID int64) ([]domain.GroupBalances, error) {
	var res []domain.GroupBalances
	txErr := s.uow.DoReadOnly(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		groupRepo, repoErr := uow.GetAs[GroupRepository](tx, uow.RepositoryName(repoargs.GroupRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		expenseRepo, repoErr := uow.GetAs[ExpenseRepository](tx, uow.RepositoryName(repoargs.ExpenseRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		if _, getErr := userRepo.GetUser(c, userID); getErr != nil {
			return translateErr(getErr, entityUser, userID)
		}
		groups, groupsErr := groupRepo.ListUserGroups(c, userID)
		if groupsErr != nil {
			return translateErr(groupsErr, entityUser, userID)
		}

		snapshots := make([]calculator.GroupSnapshot, 0, len(groups))
		for _, group := range groups {
			expenses, listErr := expenseRepo.ListGroupExpenses(c, group.ID)
			if listErr != nil {
				return translateErr(listErr, entityGroup, group.ID)
			}
			snapshots = append(snapshots, calculator.GroupSnapshot{Group: group, Expenses: expenses})
		}
		res = calculator.UserBalances(userID, snapshots)
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("computing user balances: %w", txErr)
	}
	return res, nil
}
