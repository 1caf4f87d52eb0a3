package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/splitledger/internal/calculator"
	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/service"
	"github.com/fsdevblog/splitledger/internal/transport/api"
	"github.com/fsdevblog/splitledger/internal/transport/api/mocks"
	"github.com/fsdevblog/splitledger/internal/transport/client"
)

type LedgerctlTestSuite struct {
	suite.Suite
	server             *httptest.Server
	mockUserService    *mocks.MockUserServicer
	mockGroupService   *mocks.MockGroupServicer
	mockExpenseService *mocks.MockExpenseServicer
	mockBalanceService *mocks.MockBalanceServicer
}

func TestLedgerctlSuite(t *testing.T) {
	suite.Run(t, new(LedgerctlTestSuite))
}

func (s *LedgerctlTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.mockUserService = mocks.NewMockUserServicer(ctrl)
	s.mockGroupService = mocks.NewMockGroupServicer(ctrl)
	s.mockExpenseService = mocks.NewMockExpenseServicer(ctrl)
	s.mockBalanceService = mocks.NewMockBalanceServicer(ctrl)

	router, err := api.New(api.RouterArgs{
		UserService:    s.mockUserService,
		GroupService:   s.mockGroupService,
		ExpenseService: s.mockExpenseService,
		BalanceService: s.mockBalanceService,
	})
	s.Require().NoError(err)
	s.server = httptest.NewServer(router)
}

func (s *LedgerctlTestSuite) TearDownTest() {
	s.server.Close()
}

// execute запускает команду против тестового сервера и возвращает stdout.
func (s *LedgerctlTestSuite) execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append([]string{"--server", s.server.URL + "/"}, args...))
	err := cmd.ExecuteContext(s.T().Context())
	return out.String(), err
}

func (s *LedgerctlTestSuite) TestUsersGet() {
	s.mockUserService.EXPECT().Get(gomock.Any(), int64(5)).
		Return(&domain.User{ID: 5, Name: "Alice", Email: "alice@example.com"}, nil)

	out, err := s.execute("users", "get", "5")
	s.Require().NoError(err)

	var user api.UserResponse
	s.Require().NoError(json.Unmarshal([]byte(out), &user))
	s.Equal("Alice", user.Name)
}

func (s *LedgerctlTestSuite) TestUsersUpdateSendsOnlyChangedFields() {
	s.mockUserService.EXPECT().Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.UpdateUserArgs) (*domain.User, error) {
			s.Equal(int64(5), args.ID)
			s.Require().NotNil(args.Email)
			s.Equal("new@example.com", *args.Email)
			s.Nil(args.Name)
			return &domain.User{ID: 5, Name: "Alice", Email: *args.Email}, nil
		})

	_, err := s.execute("users", "update", "5", "--email", "new@example.com")
	s.Require().NoError(err)
}

func (s *LedgerctlTestSuite) TestGroupsCreate() {
	s.mockGroupService.EXPECT().
		Create(gomock.Any(), service.CreateGroupArgs{Name: "Trip", MemberIDs: []int64{1, 2, 3}}).
		Return(&domain.Group{ID: 9, Name: "Trip", MemberIDs: []int64{1, 2, 3}}, nil)

	out, err := s.execute("groups", "create", "--name", "Trip", "--members", "1,2,3")
	s.Require().NoError(err)
	s.Contains(out, `"user_ids"`)
}

func (s *LedgerctlTestSuite) TestExpensesPreview() {
	s.mockExpenseService.EXPECT().Preview(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.CreateExpenseArgs) ([]calculator.Share, error) {
			s.Equal(domain.SplitTypePercentage, args.SplitType)
			s.Require().Len(args.Splits, 2)
			s.True(args.Splits[1].Percentage.Equal(decimal.RequireFromString("40.5")))
			return []calculator.Share{
				{UserID: 1, Amount: decimal.RequireFromString("59.50")},
				{UserID: 2, Amount: decimal.RequireFromString("40.50")},
			}, nil
		})

	out, err := s.execute("expenses", "preview", "3",
		"--description", "Dinner",
		"--amount", "100",
		"--paid-by", "1",
		"--split-type", "percentage",
		"--split", "1=59.5",
		"--split", "2=40.5",
	)
	s.Require().NoError(err)

	var shares []api.ShareResponse
	s.Require().NoError(json.Unmarshal([]byte(out), &shares))
	s.Len(shares, 2)
}

func (s *LedgerctlTestSuite) TestServerErrorIsReturned() {
	s.mockGroupService.EXPECT().Delete(gomock.Any(), int64(4)).Return(domain.NewNotFoundError("group", 4))

	_, err := s.execute("groups", "delete", "4")

	var statusErr *client.StatusCodeError
	s.Require().ErrorAs(err, &statusErr)
	s.Equal("group 4 not found", statusErr.Message)
}

func (s *LedgerctlTestSuite) TestInvalidArgs() {
	_, err := s.execute("expenses", "get", "abc")
	s.Require().Error(err)

	_, err = s.execute("expenses", "create", "1", "--description", "x", "--amount", "ten", "--paid-by", "1")
	s.Require().ErrorContains(err, "invalid amount")
}

func TestParseSplits(t *testing.T) {
	splits, err := parseSplits([]string{"1=50", "2=50.00"})
	require.NoError(t, err)
	require.Len(t, splits, 2)
	require.Equal(t, int64(2), splits[1].UserID)

	splits, err = parseSplits(nil)
	require.NoError(t, err)
	require.Nil(t, splits)

	for _, bad := range []string{"1", "x=10", "0=10", "1=abc"} {
		_, err = parseSplits([]string{bad})
		require.Error(t, err, bad)
	}
}
