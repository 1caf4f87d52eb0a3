package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/repository/repoargs"
	"github.com/fsdevblog/splitledger/pkg/uow"
)

type GroupService struct {
	uow       uow.UOW
	groupRepo GroupRepository
	notifier  EventNotifier
}

func NewGroupService(u uow.UOW, notifier EventNotifier) (*GroupService, error) {
	groupRepo, err := uow.GetRepositoryAs[GroupRepository](u, uow.RepositoryName(repoargs.GroupRepoName))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &GroupService{
		uow:       u,
		groupRepo: groupRepo,
		notifier:  notifier,
	}, nil
}

type CreateGroupArgs struct {
	Name      string
	MemberIDs []int64
}

// UpdateGroupArgs - поля для замены. MemberIDs, отличный от nil, заменяет весь список участников.
type UpdateGroupArgs struct {
	ID        int64
	Name      *string
	MemberIDs []int64
}

// Create сохраняет группу с переданными участниками. Все участники должны существовать.
func (s *GroupService) Create(ctx context.Context, args CreateGroupArgs) (*domain.Group, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "must not be blank")
	}
	memberIDs, err := normalizeMemberIDs(args.MemberIDs)
	if err != nil {
		return nil, err
	}

	var group *domain.Group
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		groupRepo, repoErr := uow.GetAs[GroupRepository](tx, uow.RepositoryName(repoargs.GroupRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}

		if existErr := ensureUsersExist(c, userRepo, memberIDs); existErr != nil {
			return existErr
		}

		var createErr error
		group, createErr = groupRepo.CreateGroup(c, repoargs.CreateGroup{Name: name, MemberIDs: memberIDs})
		return createErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("creating group: %w", txErr)
	}

	s.notifier.Notify(domain.NewLedgerEvent(domain.EventGroupCreated, group.ID, domain.WithGroup(group.ID)))
	return group, nil
}

func (s *GroupService) Get(ctx context.Context, id int64) (*domain.Group, error) {
	group, err := s.groupRepo.GetGroup(ctx, id)
	if err != nil {
		return nil, translateErr(err, entityGroup, id)
	}
	return group, nil
}

func (s *GroupService) List(ctx context.Context, page repoargs.Page) ([]domain.Group, error) {
	groups, err := s.groupRepo.ListGroups(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	return groups, nil
}

// Update переименовывает группу и/или заменяет участников. Участника, который оплатил расход группы
// или имеет в нем долю, удалить нельзя.
func (s *GroupService) Update(ctx context.Context, args UpdateGroupArgs) (*domain.Group, error) {
	var memberIDs []int64
	if args.MemberIDs != nil {
		var err error
		if memberIDs, err = normalizeMemberIDs(args.MemberIDs); err != nil {
			return nil, err
		}
	}

	var group *domain.Group
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

		current, lockErr := groupRepo.LockGroup(c, args.ID)
		if lockErr != nil {
			return translateErr(lockErr, entityGroup, args.ID)
		}

		name := current.Name
		if args.Name != nil {
			if name = strings.TrimSpace(*args.Name); name == "" {
				return domain.NewValidationError("name", "must not be blank")
			}
		}

		if memberIDs != nil {
			if existErr := ensureUsersExist(c, userRepo, memberIDs); existErr != nil {
				return existErr
			}
			participants, partErr := expenseRepo.GroupParticipants(c, args.ID)
			if partErr != nil {
				return translateErr(partErr, entityGroup, args.ID)
			}
			for _, userID := range participants {
				if _, ok := slices.BinarySearch(memberIDs, userID); !ok {
					return domain.NewValidationError("user_ids",
						fmt.Sprintf("user %d has expenses in the group and cannot be removed", userID))
				}
			}
			if replaceErr := groupRepo.ReplaceMembers(c, args.ID, memberIDs); replaceErr != nil {
				return translateErr(replaceErr, entityGroup, args.ID)
			}
		}

		var updErr error
		group, updErr = groupRepo.UpdateGroup(c, repoargs.UpdateGroup{ID: args.ID, Name: name})
		if updErr != nil {
			return translateErr(updErr, entityGroup, args.ID)
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating group: %w", txErr)
	}

	s.notifier.Notify(domain.NewLedgerEvent(domain.EventGroupUpdated, group.ID, domain.WithGroup(group.ID)))
	return group, nil
}

// Delete удаляет группу со всеми ее расходами.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		groupRepo, repoErr := uow.GetAs[GroupRepository](tx, uow.RepositoryName(repoargs.GroupRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		if _, lockErr := groupRepo.LockGroup(c, id); lockErr != nil {
			return translateErr(lockErr, entityGroup, id)
		}
		if delErr := groupRepo.DeleteGroup(c, id); delErr != nil {
			return translateErr(delErr, entityGroup, id)
		}
		return nil
	})
	if txErr != nil {
		return fmt.Errorf("deleting group: %w", txErr)
	}

	s.notifier.Notify(domain.NewLedgerEvent(domain.EventGroupDeleted, id, domain.WithGroup(id)))
	return nil
}

// normalizeMemberIDs возвращает отсортированные ids без дубликатов. Список не может быть пустым.
func normalizeMemberIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("user_ids", "a group needs at least one member")
	}
	res := slices.Clone(ids)
	slices.Sort(res)
	return slices.Compact(res), nil
}

// ensureUsersExist возвращает *domain.NotFoundError с первым неизвестным id пользователя.
func ensureUsersExist(ctx context.Context, repo UserRepository, ids []int64) error {
	existing, err := repo.ExistingIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("checking users: %w", err)
	}
	for _, id := range ids {
		if !slices.Contains(existing, id) {
			return domain.NewNotFoundError(entityUser, id)
		}
	}
	return nil
}
