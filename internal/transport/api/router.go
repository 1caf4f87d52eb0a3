package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/splitledger/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RootRoute           = "/"
	UsersRoute          = "/users/"
	UserRoute           = "/users/:id"
	UserBalancesRoute   = "/users/:id/balances"
	GroupsRoute         = "/groups/"
	GroupRoute          = "/groups/:id"
	GroupBalancesRoute  = "/groups/:id/balances"
	GroupExpensesRoute  = "/groups/:id/expenses/"
	ExpensePreviewRoute = "/groups/:id/expenses/preview"
	ExpenseRoute        = "/expenses/:id"
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

type RouterArgs struct {
	Logger         *logrus.Logger
	UserService    UserServicer
	GroupService   GroupServicer
	ExpenseService ExpenseServicer
	BalanceService BalanceServicer
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	usersHandler := NewUsersHandler(args.UserService)
	groupsHandler := NewGroupsHandler(args.GroupService)
	expensesHandler := NewExpensesHandler(args.ExpenseService)
	balancesHandler := NewBalancesHandler(args.BalanceService)

	r.GET(RootRoute, Root)

	r.GET(UsersRoute, usersHandler.Index)
	r.POST(UsersRoute, usersHandler.Create)
	r.GET(UserRoute, usersHandler.Show)
	r.PUT(UserRoute, usersHandler.Update)
	r.DELETE(UserRoute, usersHandler.Delete)
	r.GET(UserBalancesRoute, balancesHandler.User)

	r.GET(GroupsRoute, groupsHandler.Index)
	r.POST(GroupsRoute, groupsHandler.Create)
	r.GET(GroupRoute, groupsHandler.Show)
	r.PUT(GroupRoute, groupsHandler.Update)
	r.DELETE(GroupRoute, groupsHandler.Delete)
	r.GET(GroupBalancesRoute, balancesHandler.Group)

	r.GET(GroupExpensesRoute, expensesHandler.Index)
	r.POST(GroupExpensesRoute, expensesHandler.Create)
	r.POST(ExpensePreviewRoute, expensesHandler.Preview)
	r.GET(ExpenseRoute, expensesHandler.Show)
	r.PUT(ExpenseRoute, expensesHandler.Update)
	r.DELETE(ExpenseRoute, expensesHandler.Delete)
	return r, nil
}
