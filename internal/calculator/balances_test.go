package calculator

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/splitledger/internal/domain"
)

const (
	alice int64 = 1
	bob   int64 = 2
	carol int64 = 3
)

type BalancesTestSuite struct {
	suite.Suite
}

func TestBalancesSuite(t *testing.T) {
	suite.Run(t, new(BalancesTestSuite))
}

// expense собирает сохраненный расход из результата калькулятора, как это делает сервис.
func (s *BalancesTestSuite) expense(id, groupID int64, amount string, payer int64, policy Policy) domain.Expense {
	shares, err := Split(SplitRequest{
		Amount:  dec(amount),
		PayerID: payer,
		Members: []int64{alice, bob, carol},
		Policy:  policy,
	})
	s.Require().NoError(err)

	splits := make([]domain.ExpenseSplit, len(shares))
	for i, share := range shares {
		splits[i] = domain.ExpenseSplit{
			ExpenseID:  id,
			UserID:     share.UserID,
			Amount:     share.Amount,
			Percentage: share.Percentage,
		}
	}
	return domain.Expense{
		ID:        id,
		GroupID:   groupID,
		Amount:    dec(amount),
		PaidBy:    payer,
		SplitType: policy.Type(),
		Splits:    splits,
	}
}

type balanceView struct {
	From, To int64
	Amount   string
}

func view(balances []domain.Balance) []balanceView {
	res := make([]balanceView, len(balances))
	for i, b := range balances {
		res[i] = balanceView{From: b.From, To: b.To, Amount: b.Amount.StringFixed(2)}
	}
	return res
}

func (s *BalancesTestSuite) TestGroupBalances() {
	cases := []struct {
		name     string
		expenses func() []domain.Expense
		want     []balanceView
	}{
		{
			name: "equal split of 10.00 paid by alice",
			expenses: func() []domain.Expense {
				return []domain.Expense{s.expense(1, 1, "10.00", alice, EqualPolicy{})}
			},
			want: []balanceView{
				{From: bob, To: alice, Amount: "3.33"},
				{From: carol, To: alice, Amount: "3.33"},
			},
		},
		{
			name: "percentage split 50/50",
			expenses: func() []domain.Expense {
				return []domain.Expense{s.expense(1, 1, "100.00", alice, PercentagePolicy{Percentages: []Percentage{
					{UserID: alice, Percent: dec("50")},
					{UserID: bob, Percent: dec("50")},
				}})}
			},
			want: []balanceView{{From: bob, To: alice, Amount: "50.00"}},
		},
		{
			name: "offsetting expenses net to nothing",
			expenses: func() []domain.Expense {
				half := func() []Percentage {
					return []Percentage{
						{UserID: alice, Percent: dec("50")},
						{UserID: bob, Percent: dec("50")},
					}
				}
				return []domain.Expense{
					s.expense(1, 1, "30", alice, PercentagePolicy{Percentages: half()}),
					s.expense(2, 1, "30", bob, PercentagePolicy{Percentages: half()}),
				}
			},
			want: []balanceView{},
		},
		{
			name: "mutual debts are netted into one direction",
			expenses: func() []domain.Expense {
				return []domain.Expense{
					s.expense(1, 1, "30", alice, EqualPolicy{}),
					s.expense(2, 1, "60", bob, EqualPolicy{}),
				}
			},
			want: []balanceView{
				{From: alice, To: bob, Amount: "10.00"},
				{From: carol, To: alice, Amount: "10.00"},
				{From: carol, To: bob, Amount: "20.00"},
			},
		},
		{
			name:     "no expenses",
			expenses: func() []domain.Expense { return nil },
			want:     []balanceView{},
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			got := GroupBalances(tc.expenses())
			s.Equal(tc.want, view(got))

			seen := make(map[[2]int64]struct{}, len(got))
			for _, b := range got {
				s.True(b.Amount.IsPositive())
				_, reverse := seen[[2]int64{b.To, b.From}]
				s.False(reverse, "both directions emitted for %d and %d", b.From, b.To)
				seen[[2]int64{b.From, b.To}] = struct{}{}
			}
		})
	}
}

func (s *BalancesTestSuite) TestGroupBalancesIsIdempotent() {
	expenses := []domain.Expense{
		s.expense(1, 1, "10.00", alice, EqualPolicy{}),
		s.expense(2, 1, "47.11", carol, EqualPolicy{}),
		s.expense(3, 1, "12.34", bob, PercentagePolicy{Percentages: []Percentage{
			{UserID: alice, Percent: dec("20")},
			{UserID: bob, Percent: dec("30")},
			{UserID: carol, Percent: dec("50")},
		}}),
	}

	first := GroupBalances(expenses)
	second := GroupBalances(expenses)
	s.Equal(view(first), view(second))

	reversed := []domain.Expense{expenses[2], expenses[1], expenses[0]}
	s.Equal(view(first), view(GroupBalances(reversed)))
}

func (s *BalancesTestSuite) TestUserBalances() {
	trip := domain.Group{ID: 2, Name: "Trip", MemberIDs: []int64{alice, bob, carol}}
	flat := domain.Group{ID: 1, Name: "Flat", MemberIDs: []int64{alice, bob, carol}}
	empty := domain.Group{ID: 3, Name: "Empty", MemberIDs: []int64{alice, bob, carol}}

	groups := []GroupSnapshot{
		{
			Group: trip,
			Expenses: []domain.Expense{
				s.expense(1, trip.ID, "100.00", alice, PercentagePolicy{Percentages: []Percentage{
					{UserID: alice, Percent: dec("50")},
					{UserID: bob, Percent: dec("50")},
				}}),
			},
		},
		{
			Group: flat,
			Expenses: []domain.Expense{
				s.expense(2, flat.ID, "10.00", carol, EqualPolicy{}),
			},
		},
		{Group: empty},
	}

	s.Run("groups are kept apart and ordered by id", func() {
		got := UserBalances(alice, groups)
		s.Require().Len(got, 2)

		s.Equal(flat.ID, got[0].GroupID)
		s.Equal("Flat", got[0].GroupName)
		s.Equal([]balanceView{{From: alice, To: carol, Amount: "3.34"}}, view(got[0].Balances))

		s.Equal(trip.ID, got[1].GroupID)
		s.Equal([]balanceView{{From: bob, To: alice, Amount: "50.00"}}, view(got[1].Balances))
	})

	s.Run("balances not involving the user are dropped", func() {
		got := UserBalances(carol, groups)
		s.Require().Len(got, 1)
		s.Equal(flat.ID, got[0].GroupID)
		s.Equal([]balanceView{
			{From: alice, To: carol, Amount: "3.34"},
			{From: bob, To: carol, Amount: "3.33"},
		}, view(got[0].Balances))
	})

	s.Run("user without balances", func() {
		s.Empty(UserBalances(42, groups))
	})
}
