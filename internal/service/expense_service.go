package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/splitledger/internal/calculator"
	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/pkg/uow"
)

type ExpenseService struct {
	uow         uow.UOW
	expenseRepo ExpenseRepository
	notifier    EventNotifier
}

func NewExpenseService(u uow.UOW, notifier EventNotifier) (*ExpenseService, error) {
	expenseRepo, err := uow.GetRepositoryAs[ExpenseRepository](u, uow.RepositoryName(repoargs.ExpenseRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ExpenseService{
		uow:         u,
		expenseRepo: expenseRepo,
		notifier:    notifier,
	}, nil
}

// SplitInput - один участник процентного деления из запроса.
type SplitInput struct {
	UserID     int64
	Percentage decimal.Decimal
}

type CreateExpenseArgs struct {
	GroupID     int64
	Description string
	Amount      decimal.Decimal
	PaidBy      int64
	SplitType   domain.SplitType
	// Splits - участники процентного деления. При делении поровну не используется.
	Splits []SplitInput
}

// UpdateExpenseArgs - поля для замены. Поля со значением nil сохраняют текущее значение.
type UpdateExpenseArgs struct {
	ID          int64
	Description *string
	Amount      *decimal.Decimal
	PaidBy      *int64
	SplitType   *domain.SplitType
	Splits      []SplitInput
}

func (a UpdateExpenseArgs) touchesShares() bool {
	return a.Amount != nil || a.PaidBy != nil || a.SplitType != nil || a.Splits != nil
}

// Create записывает расход в группу. Строка группы заблокирована, пока расход и его доли
// не будут сохранены.
func (s *ExpenseService) Create(ctx context.Context, args CreateExpenseArgs) (*domain.Expense, error) {
	description := strings.TrimSpace(args.Description)
	if description == "" {
		return nil, domain.NewValidationError("description", "must not be blank")
	}
	policy, err := newPolicy(args.SplitType, args.Splits)
	if err != nil {
		return nil, err
	}

	var expense *domain.Expense
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		groupRepo, repoErr := uow.GetAs[GroupRepository](tx, uow.RepositoryName(repoargs.GroupRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		expenseRepo, repoErr := uow.GetAs[ExpenseRepository](tx, uow.RepositoryName(repoargs.ExpenseRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		group, lockErr := groupRepo.LockGroup(c, args.GroupID)
		if lockErr != nil {
			return translateErr(lockErr, entityGroup, args.GroupID)
		}

		shares, splitErr := calculator.Split(calculator.SplitRequest{
			Amount:  args.Amount,
			PayerID: args.PaidBy,
			Members: group.MemberIDs,
			Policy:  policy,
		})
		if splitErr != nil {
			return splitErr //nolint:wrapcheck
		}

		var createErr error
		expense, createErr = expenseRepo.CreateExpense(c, repoargs.CreateExpense{
			GroupID:     group.ID,
			Description: description,
			Amount:      calculator.RoundCents(args.Amount),
			PaidBy:      args.PaidBy,
			SplitType:   policy.Type(),
			Splits:      toCreateSplits(shares),
		})
		if createErr != nil {
			return translateErr(createErr, entityGroup, args.GroupID)
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("creating expense: %w", txErr)
	}

	s.notifier.Notify(domain.NewLedgerEvent(domain.EventExpenseCreated, expense.ID, domain.WithGroup(expense.GroupID)))
	return expense, nil
}

// Preview считает доли, которые дал бы расход, ничего не сохраняя.
func (s *ExpenseService) Preview(ctx context.Context, args CreateExpenseArgs) ([]calculator.Share, error) {
	policy, err := newPolicy(args.SplitType, args.Splits)
	if err != nil {
		return nil, err
	}

	var shares []calculator.Share
	txErr := s.uow.DoReadOnly(ctx, func(c context.Context, tx uow.TX) error {
		groupRepo, repoErr := uow.GetAs[GroupRepository](tx, uow.RepositoryName(repoargs.GroupRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		group, getErr := groupRepo.GetGroup(c, args.GroupID)
		if getErr != nil {
			return translateErr(getErr, entityGroup, args.GroupID)
		}

		var splitErr error
		shares, splitErr = calculator.Split(calculator.SplitRequest{
			Amount:  args.Amount,
			PayerID: args.PaidBy,
			Members: group.MemberIDs,
			Policy:  policy,
		})
		return splitErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("previewing expense: %w", txErr)
	}
	return shares, nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (*domain.Expense, error) {
	expense, err := s.expenseRepo.GetExpense(ctx, id)
	if err != nil {
		return nil, translateErr(err, entityExpense, id)
	}
	return expense, nil
}

// ListByGroup возвращает расходы существующей группы, упорядоченные по id.
func (s *ExpenseService) ListByGroup(ctx context.Context, groupID int64) ([]domain.Expense, error) {
	var expenses []domain.Expense
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

		var listErr error
		expenses, listErr = expenseRepo.ListGroupExpenses(c, groupID)
		return listErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("listing expenses: %w", txErr)
	}
	return expenses, nil
}

// Update применяет частичное обновление. Доли пересчитываются, если переданы сумма, плательщик,
// тип деления или доли. При изменении одного описания доли остаются прежними.
func (s *ExpenseService) Update(ctx context.Context, args UpdateExpenseArgs) (*domain.Expense, error) {
	var updated *domain.Expense
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		groupRepo, repoErr := uow.GetAs[GroupRepository](tx, uow.RepositoryName(repoargs.GroupRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		expenseRepo, repoErr := uow.GetAs[ExpenseRepository](tx, uow.RepositoryName(repoargs.ExpenseRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		current, getErr := expenseRepo.GetExpense(c, args.ID)
		if getErr != nil {
			return translateErr(getErr, entityExpense, args.ID)
		}
		group, lockErr := groupRepo.LockGroup(c, current.GroupID)
		if lockErr != nil {
			return translateErr(lockErr, entityGroup, current.GroupID)
		}

		upd, buildErr := buildExpenseUpdate(current, group, args)
		if buildErr != nil {
			return buildErr
		}

		var updErr error
		updated, updErr = expenseRepo.UpdateExpense(c, *upd)
		if updErr != nil {
			return translateErr(updErr, entityExpense, args.ID)
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating expense: %w", txErr)
	}

	s.notifier.Notify(domain.NewLedgerEvent(domain.EventExpenseUpdated, updated.ID, domain.WithGroup(updated.GroupID)))
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	var groupID int64
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		groupRepo, repoErr := uow.GetAs[GroupRepository](tx, uow.RepositoryName(repoargs.GroupRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		expenseRepo, repoErr := uow.GetAs[ExpenseRepository](tx, uow.RepositoryName(repoargs.ExpenseRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		current, getErr := expenseRepo.GetExpense(c, id)
		if getErr != nil {
			return translateErr(getErr, entityExpense, id)
		}
		groupID = current.GroupID
		if _, lockErr := groupRepo.LockGroup(c, groupID); lockErr != nil {
			return translateErr(lockErr, entityGroup, groupID)
		}
		if delErr := expenseRepo.DeleteExpense(c, id); delErr != nil {
			return translateErr(delErr, entityExpense, id)
		}
		return nil
	})
	if txErr != nil {
		return fmt.Errorf("deleting expense: %w", txErr)
	}

	s.notifier.Notify(domain.NewLedgerEvent(domain.EventExpenseDeleted, id, domain.WithGroup(groupID)))
	return nil
}

// buildExpenseUpdate накладывает переданные поля на сохраненный расход и при необходимости пересчитывает доли.
func buildExpenseUpdate(current *domain.Expense, group *domain.Group, args UpdateExpenseArgs) (*repoargs.UpdateExpense, error) {
	upd := repoargs.UpdateExpense{
		ID:          current.ID,
		Description: current.Description,
		Amount:      current.Amount,
		PaidBy:      current.PaidBy,
		SplitType:   current.SplitType,
		Splits:      storedSplits(current.Splits),
	}
	if args.Description != nil {
		if upd.Description = strings.TrimSpace(*args.Description); upd.Description == "" {
			return nil, domain.NewValidationError("description", "must not be blank")
		}
	}
	if !args.touchesShares() {
		return &upd, nil
	}

	if args.Amount != nil {
		upd.Amount = *args.Amount
	}
	if args.PaidBy != nil {
		upd.PaidBy = *args.PaidBy
	}
	if args.SplitType != nil {
		upd.SplitType = *args.SplitType
	}

	splits := args.Splits
	if splits == nil && upd.SplitType == domain.SplitTypePercentage {
		splits = storedPercentages(current.Splits)
	}
	policy, err := newPolicy(upd.SplitType, splits)
	if err != nil {
		return nil, err
	}

	shares, err := calculator.Split(calculator.SplitRequest{
		Amount:  upd.Amount,
		PayerID: upd.PaidBy,
		Members: group.MemberIDs,
		Policy:  policy,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	upd.Amount = calculator.RoundCents(upd.Amount)
	upd.Splits = toCreateSplits(shares)
	return &upd, nil
}

func newPolicy(splitType domain.SplitType, splits []SplitInput) (calculator.Policy, error) {
	switch splitType {
	case domain.SplitTypeEqual:
		return calculator.EqualPolicy{}, nil
	case domain.SplitTypePercentage:
		percentages := make([]calculator.Percentage, len(splits))
		for i, split := range splits {
			percentages[i] = calculator.Percentage{UserID: split.UserID, Percent: split.Percentage}
		}
		return calculator.PercentagePolicy{Percentages: percentages}, nil
	default:
		return nil, domain.NewValidationError("split_type", fmt.Sprintf("unknown split type %q", splitType))
	}
}

// storedPercentages восстанавливает проценты из сохраненных долей. Строки без процента пропускаются.
func storedPercentages(splits []domain.ExpenseSplit) []SplitInput {
	res := make([]SplitInput, 0, len(splits))
	for _, split := range splits {
		if split.Percentage == nil {
			continue
		}
		res = append(res, SplitInput{UserID: split.UserID, Percentage: *split.Percentage})
	}
	return res
}

func storedSplits(splits []domain.ExpenseSplit) []repoargs.CreateSplit {
	res := make([]repoargs.CreateSplit, len(splits))
	for i, split := range splits {
		res[i] = repoargs.CreateSplit{UserID: split.UserID, Amount: split.Amount, Percentage: split.Percentage}
	}
	return res
}

func toCreateSplits(shares []calculator.Share) []repoargs.CreateSplit {
	res := make([]repoargs.CreateSplit, len(shares))
	for i, share := range shares {
		res[i] = repoargs.CreateSplit{UserID: share.UserID, Amount: share.Amount, Percentage: share.Percentage}
	}
	return res
}
