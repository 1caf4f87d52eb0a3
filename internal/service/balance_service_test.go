package service

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/splitledger/internal/domain"
)

type BalanceServiceTestSuite struct {
	serviceSuite
	balanceService *BalanceService
}

func TestBalanceServiceSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}

func (s *BalanceServiceTestSuite) SetupTest() {
	s.serviceSuite.SetupTest()
	s.balanceService = NewBalanceService(s.mockUOW)
}

// equalExpense - расход, разделенный поровну между payer и остальными участниками.
func equalExpense(id, groupID, payer int64, shares map[int64]string) domain.Expense {
	expense := domain.Expense{ID: id, GroupID: groupID, PaidBy: payer, SplitType: domain.SplitTypeEqual}
	for userID, amount := range shares {
		expense.Splits = append(expense.Splits, domain.ExpenseSplit{UserID: userID, Amount: dec(amount)})
		expense.Amount = expense.Amount.Add(dec(amount))
	}
	return expense
}

func (s *BalanceServiceTestSuite) TestGroupBalances() {
	expenses := []domain.Expense{
		equalExpense(1, 1, 1, map[int64]string{1: "3.34", 2: "3.33", 3: "3.33"}),
		equalExpense(2, 1, 2, map[int64]string{1: "5.00", 2: "5.00"}),
	}
	s.mockGroupRepo.EXPECT().GetGroup(gomock.Any(), int64(1)).Return(&domain.Group{ID: 1}, nil)
	s.mockExpenseRepo.EXPECT().ListGroupExpenses(gomock.Any(), int64(1)).Return(expenses, nil)

	balances, err := s.balanceService.GroupBalances(s.T().Context(), 1)
	s.Require().NoError(err)
	s.Require().Len(balances, 2)

	// 1 должен 2: 5.00 - 3.33 = 1.67.
	s.Equal(int64(1), balances[0].From)
	s.Equal(int64(2), balances[0].To)
	s.Equal("1.67", balances[0].Amount.StringFixed(2))

	s.Equal(int64(3), balances[1].From)
	s.Equal(int64(1), balances[1].To)
	s.Equal("3.33", balances[1].Amount.StringFixed(2))
}

func (s *BalanceServiceTestSuite) TestGroupBalancesUnknownGroup() {
	s.mockGroupRepo.EXPECT().GetGroup(gomock.Any(), int64(8)).Return(nil, domain.ErrRecordNotFound)
	s.mockExpenseRepo.EXPECT().ListGroupExpenses(gomock.Any(), gomock.Any()).Times(0)

	_, err := s.balanceService.GroupBalances(s.T().Context(), 8)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *BalanceServiceTestSuite) TestUserBalances() {
	const userID int64 = 2
	groups := []domain.Group{
		{ID: 1, Name: "Flat", MemberIDs: []int64{1, 2}},
		{ID: 4, Name: "Trip", MemberIDs: []int64{2, 3}},
	}

	s.mockUserRepo.EXPECT().GetUser(gomock.Any(), userID).Return(&domain.User{ID: userID}, nil)
	s.mockGroupRepo.EXPECT().ListUserGroups(gomock.Any(), userID).Return(groups, nil)
	s.mockExpenseRepo.EXPECT().ListGroupExpenses(gomock.Any(), int64(1)).
		Return([]domain.Expense{equalExpense(1, 1, 1, map[int64]string{1: "25", 2: "25"})}, nil)
	// Во второй группе расходов нет, она не попадает в результат.
	s.mockExpenseRepo.EXPECT().ListGroupExpenses(gomock.Any(), int64(4)).Return([]domain.Expense{}, nil)

	res, err := s.balanceService.UserBalances(s.T().Context(), userID)
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.Equal(int64(1), res[0].GroupID)
	s.Equal("Flat", res[0].GroupName)
	s.Require().Len(res[0].Balances, 1)
	s.Equal(userID, res[0].Balances[0].From)
	s.Equal("25.00", res[0].Balances[0].Amount.StringFixed(2))
}

func (s *BalanceServiceTestSuite) TestUserBalancesUnknownUser() {
	s.mockUserRepo.EXPECT().GetUser(gomock.Any(), int64(5)).Return(nil, domain.ErrRecordNotFound)

	_, err := s.balanceService.UserBalances(s.T().Context(), 5)
	var notFound *domain.NotFoundError
	s.Require().ErrorAs(err, &notFound)
	s.Equal("user", notFound.Entity)
}
