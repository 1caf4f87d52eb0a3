package service

import (
	"fmt"

	"github.com/fsdevblog/splitledger/pkg/uow"
)

type AppServices struct {
	UserService    *UserService
	GroupService   *GroupService
	ExpenseService *ExpenseService
	BalanceService *BalanceService
}

// Factory собирает все сервисы поверх одного unit of work. notifier может быть nil.
func Factory(unitOfWork uow.UOW, notifier EventNotifier) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork, notifier)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	groupService, groupServiceErr := NewGroupService(unitOfWork, notifier)
	if groupServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", groupServiceErr.Error())
	}

	expenseService, expenseServiceErr := NewExpenseService(unitOfWork, notifier)
	if expenseServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", expenseServiceErr.Error())
	}

	return &AppServices{
		UserService:    userService,
		GroupService:   groupService,
		ExpenseService: expenseService,
		BalanceService: NewBalanceService(unitOfWork),
	}, nil
}
