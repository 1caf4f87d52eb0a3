package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/pkg/uow"
)

type UserService struct {
	uow      uow.UOW
	userRepo UserRepository
	notifier EventNotifier
}

func NewUserService(u uow.UOW, notifier EventNotifier) (*UserService, error) {
	userRepo, err := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &UserService{
		uow:      u,
		userRepo: userRepo,
		notifier: notifier,
	}, nil
}

type CreateUserArgs struct {
	Name  string
	Email string
}

// UpdateUserArgs - поля для замены. Поля со значением nil сохраняют текущее значение.
type UpdateUserArgs struct {
	ID    int64
	Name  *string
	Email *string
}

// Create сохраняет нового юзера. Если email занят, возвращает *domain.ConflictError.
func (s *UserService) Create(ctx context.Context, args CreateUserArgs) (*domain.User, error) {
	name, email := strings.TrimSpace(args.Name), strings.TrimSpace(args.Email)
	if err := validateUserFields(name, email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.CreateUser(ctx, repoargs.CreateUser{Name: name, Email: email})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, emailTakenErr(email)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetUser(ctx, id)
	if err != nil {
		return nil, translateErr(err, entityUser, id)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, page repoargs.Page) ([]domain.User, error) {
	users, err := s.userRepo.ListUsers(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Update заменяет переданные поля юзера.
func (s *UserService) Update(ctx context.Context, args UpdateUserArgs) (*domain.User, error) {
	var updated *domain.User
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		repo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		current, getErr := repo.GetUser(c, args.ID)
		if getErr != nil {
			return translateErr(getErr, entityUser, args.ID)
		}

		name, email := current.Name, current.Email
		if args.Name != nil {
			name = strings.TrimSpace(*args.Name)
		}
		if args.Email != nil {
			email = strings.TrimSpace(*args.Email)
		}
		if err := validateUserFields(name, email); err != nil {
			return err
		}

		var updErr error
		updated, updErr = repo.UpdateUser(c, repoargs.UpdateUser{ID: args.ID, Name: name, Email: email})
		if updErr != nil {
			if errors.Is(updErr, domain.ErrDuplicateKey) {
				return emailTakenErr(email)
			}
			return translateErr(updErr, entityUser, args.ID)
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating user: %w", txErr)
	}
	return updated, nil
}

// Delete удаляет пользователя вместе с членством в группах, оплаченными им расходами и расходами,
// в которых у него есть доля. Группы, где он был последним участником, удаляются следом.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	var (
		removed       []repoargs.ExpenseRef
		removedGroups []int64
	)
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
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

		if _, getErr := userRepo.GetUser(c, id); getErr != nil {
			return translateErr(getErr, entityUser, id)
		}

		var delErr error
		if removed, delErr = expenseRepo.DeleteUserExpenses(c, id); delErr != nil {
			return translateErr(delErr, entityUser, id)
		}

		groups, listErr := groupRepo.ListUserGroups(c, id)
		if listErr != nil {
			return translateErr(listErr, entityUser, id)
		}

		if delErr = userRepo.DeleteUser(c, id); delErr != nil {
			return translateErr(delErr, entityUser, id)
		}

		if len(groups) == 0 {
			return nil
		}
		groupIDs := make([]int64, len(groups))
		for i := range groups {
			groupIDs[i] = groups[i].ID
		}
		if removedGroups, delErr = groupRepo.DeleteEmptyGroups(c, groupIDs); delErr != nil {
			return translateErr(delErr, entityUser, id)
		}
		return nil
	})
	if txErr != nil {
		return fmt.Errorf("deleting user: %w", txErr)
	}

	events := make([]domain.LedgerEvent, 0, len(removed)+len(removedGroups)+1)
	for _, ref := range removed {
		events = append(events, domain.NewLedgerEvent(domain.EventExpenseDeleted, ref.ID, domain.WithGroup(ref.GroupID)))
	}
	for _, groupID := range removedGroups {
		events = append(events, domain.NewLedgerEvent(domain.EventGroupDeleted, groupID, domain.WithGroup(groupID)))
	}
	events = append(events, domain.NewLedgerEvent(domain.EventUserDeleted, id))
	s.notifier.Notify(events...)
	return nil
}

func validateUserFields(name, email string) error {
	if name == "" {
		return domain.NewValidationError("name", "must not be blank")
	}
	if email == "" {
		return domain.NewValidationError("email", "must not be blank")
	}
	return nil
}

func emailTakenErr(email string) error {
	return domain.NewConflictError(fmt.Sprintf("email %s is already registered", email))
}
