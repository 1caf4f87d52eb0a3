package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/splitledger/internal/domain"
)

type SplitTestSuite struct {
	suite.Suite
}

func TestSplitSuite(t *testing.T) {
	suite.Run(t, new(SplitTestSuite))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sharesByUser(shares []Share) map[int64]string {
	res := make(map[int64]string, len(shares))
	for _, share := range shares {
		res[share.UserID] = share.Amount.StringFixed(2)
	}
	return res
}

func sumShares(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, share := range shares {
		total = total.Add(share.Amount)
	}
	return total
}

func (s *SplitTestSuite) TestEqual() {
	cases := []struct {
		name    string
		amount  string
		members []int64
		want    map[int64]string
	}{
		{
			name:    "remainder goes to lowest ids",
			amount:  "10.00",
			members: []int64{3, 1, 2},
			want:    map[int64]string{1: "3.34", 2: "3.33", 3: "3.33"},
		},
		{
			name:    "even division",
			amount:  "90",
			members: []int64{1, 2, 3},
			want:    map[int64]string{1: "30.00", 2: "30.00", 3: "30.00"},
		},
		{
			name:    "two cents over four members",
			amount:  "0.02",
			members: []int64{4, 5, 6, 7},
			want:    map[int64]string{4: "0.01", 5: "0.01", 6: "0.00", 7: "0.00"},
		},
		{
			name:    "single member",
			amount:  "12.345",
			members: []int64{9},
			want:    map[int64]string{9: "12.35"},
		},
		{
			name:    "duplicated member ids are collapsed",
			amount:  "1.00",
			members: []int64{2, 1, 2},
			want:    map[int64]string{1: "0.50", 2: "0.50"},
		},
		{
			name:    "largest accepted amount",
			amount:  "999999999999.99",
			members: []int64{1, 2, 3},
			want:    map[int64]string{1: "333333333333.33", 2: "333333333333.33", 3: "333333333333.33"},
		},
		{
			name:    "large amount with remainder",
			amount:  "999999999999.98",
			members: []int64{1, 2, 3},
			want:    map[int64]string{1: "333333333333.33", 2: "333333333333.33", 3: "333333333333.32"},
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			shares, err := Split(SplitRequest{
				Amount:  dec(tc.amount),
				PayerID: tc.members[0],
				Members: tc.members,
				Policy:  EqualPolicy{},
			})
			s.Require().NoError(err)
			s.Equal(tc.want, sharesByUser(shares))
			for _, share := range shares {
				s.Nil(share.Percentage)
			}
		})
	}
}

func (s *SplitTestSuite) TestEqualReconcilesExactly() {
	amounts := []string{"0.01", "0.99", "1.00", "10.00", "33.33", "100.01", "999.99", "12345.67"}
	for n := 1; n <= 9; n++ {
		members := make([]int64, n)
		for i := range members {
			members[i] = int64(i + 1)
		}
		for _, amount := range amounts {
			shares, err := Split(SplitRequest{
				Amount:  dec(amount),
				PayerID: 1,
				Members: members,
				Policy:  EqualPolicy{},
			})
			s.Require().NoError(err)
			s.Len(shares, n)
			s.True(sumShares(shares).Equal(dec(amount)), "n=%d amount=%s", n, amount)

			lowest, highest := shares[0].Amount, shares[0].Amount
			for _, share := range shares {
				lowest = decimal.Min(lowest, share.Amount)
				highest = decimal.Max(highest, share.Amount)
			}
			s.True(highest.Sub(lowest).LessThanOrEqual(dec("0.01")), "n=%d amount=%s", n, amount)
		}
	}
}

func (s *SplitTestSuite) TestPercentage() {
	cases := []struct {
		name        string
		amount      string
		payer       int64
		percentages []Percentage
		want        map[int64]string
	}{
		{
			name:   "half and half",
			amount: "100.00",
			payer:  1,
			percentages: []Percentage{
				{UserID: 1, Percent: dec("50")},
				{UserID: 2, Percent: dec("50")},
			},
			want: map[int64]string{1: "50.00", 2: "50.00"},
		},
		{
			name:   "residual cent goes to payer",
			amount: "10.00",
			payer:  2,
			percentages: []Percentage{
				{UserID: 1, Percent: dec("33.33")},
				{UserID: 2, Percent: dec("33.33")},
				{UserID: 3, Percent: dec("33.34")},
			},
			want: map[int64]string{1: "3.33", 2: "3.34", 3: "3.33"},
		},
		{
			name:   "payer not listed receives the residual row",
			amount: "10.00",
			payer:  1,
			percentages: []Percentage{
				{UserID: 2, Percent: dec("33.33")},
				{UserID: 3, Percent: dec("66.67")},
			},
			want: map[int64]string{1: "0.00", 2: "3.33", 3: "6.67"},
		},
		{
			name:   "sum within tolerance",
			amount: "200.00",
			payer:  3,
			percentages: []Percentage{
				{UserID: 1, Percent: dec("49.995")},
				{UserID: 3, Percent: dec("50")},
			},
			want: map[int64]string{1: "99.99", 3: "100.01"},
		},
		{
			name:   "zero percent participant",
			amount: "30",
			payer:  1,
			percentages: []Percentage{
				{UserID: 1, Percent: dec("100")},
				{UserID: 2, Percent: dec("0")},
			},
			want: map[int64]string{1: "30.00", 2: "0.00"},
		},
		{
			name:   "rounding overshoot is taken from the largest share when payer is not listed",
			amount: "0.03",
			payer:  1,
			percentages: []Percentage{
				{UserID: 2, Percent: dec("50")},
				{UserID: 3, Percent: dec("50")},
			},
			want: map[int64]string{1: "0.00", 2: "0.01", 3: "0.02"},
		},
		{
			name:   "rounding overshoot with zero percent payer",
			amount: "0.03",
			payer:  1,
			percentages: []Percentage{
				{UserID: 1, Percent: dec("0")},
				{UserID: 2, Percent: dec("50")},
				{UserID: 3, Percent: dec("50")},
			},
			want: map[int64]string{1: "0.00", 2: "0.01", 3: "0.02"},
		},
		{
			name:   "rounding overshoot is taken from the payer first",
			amount: "0.05",
			payer:  1,
			percentages: []Percentage{
				{UserID: 1, Percent: dec("50")},
				{UserID: 2, Percent: dec("50")},
			},
			want: map[int64]string{1: "0.02", 2: "0.03"},
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			shares, err := Split(SplitRequest{
				Amount:  dec(tc.amount),
				PayerID: tc.payer,
				Members: []int64{1, 2, 3},
				Policy:  PercentagePolicy{Percentages: tc.percentages},
			})
			s.Require().NoError(err)

			got := sharesByUser(shares)
			for userID, want := range tc.want {
				if want == "0.00" {
					if amount, ok := got[userID]; ok {
						s.Equal(want, amount)
					}
					continue
				}
				s.Equal(want, got[userID], "user %d", userID)
			}
			s.True(sumShares(shares).Equal(dec(tc.amount)))
			for _, share := range shares {
				s.NotNil(share.Percentage)
				s.False(share.Amount.IsNegative(), "user %d", share.UserID)
			}
		})
	}
}

func (s *SplitTestSuite) TestErrors() {
	members := []int64{1, 2, 3}
	cases := []struct {
		name  string
		req   SplitRequest
		check func(err error)
	}{
		{
			name: "percentages sum to 99",
			req: SplitRequest{
				Amount:  dec("100"),
				PayerID: 1,
				Members: members,
				Policy: PercentagePolicy{Percentages: []Percentage{
					{UserID: 1, Percent: dec("49")},
					{UserID: 2, Percent: dec("50")},
				}},
			},
			check: func(err error) {
				var valErr *domain.ValidationError
				s.ErrorAs(err, &valErr)
				s.ErrorIs(err, domain.ErrValidation)
			},
		},
		{
			name: "negative percentage",
			req: SplitRequest{
				Amount:  dec("100"),
				PayerID: 1,
				Members: members,
				Policy: PercentagePolicy{Percentages: []Percentage{
					{UserID: 1, Percent: dec("110")},
					{UserID: 2, Percent: dec("-10")},
				}},
			},
			check: func(err error) {
				var valErr *domain.ValidationError
				s.ErrorAs(err, &valErr)
			},
		},
		{
			name: "zero amount",
			req:  SplitRequest{Amount: dec("0"), PayerID: 1, Members: members, Policy: EqualPolicy{}},
			check: func(err error) {
				var amountErr *domain.InvalidAmountError
				s.ErrorAs(err, &amountErr)
				s.ErrorIs(err, domain.ErrValidation)
			},
		},
		{
			name: "amount rounds to zero",
			req:  SplitRequest{Amount: dec("0.004"), PayerID: 1, Members: members, Policy: EqualPolicy{}},
			check: func(err error) {
				var amountErr *domain.InvalidAmountError
				s.ErrorAs(err, &amountErr)
			},
		},
		{
			name: "amount at the upper bound",
			req:  SplitRequest{Amount: dec("1000000000000.00"), PayerID: 1, Members: members, Policy: EqualPolicy{}},
			check: func(err error) {
				var amountErr *domain.InvalidAmountError
				s.Require().ErrorAs(err, &amountErr)
				s.ErrorContains(err, "less than 1000000000000.00")
			},
		},
		{
			name: "amount past integer cents",
			req: SplitRequest{
				Amount:  dec("100000000000000000.00"),
				PayerID: 1,
				Members: members,
				Policy:  EqualPolicy{},
			},
			check: func(err error) {
				var amountErr *domain.InvalidAmountError
				s.ErrorAs(err, &amountErr)
			},
		},
		{
			name: "rounding up to the upper bound",
			req:  SplitRequest{Amount: dec("999999999999.995"), PayerID: 1, Members: members, Policy: EqualPolicy{}},
			check: func(err error) {
				var amountErr *domain.InvalidAmountError
				s.ErrorAs(err, &amountErr)
			},
		},
		{
			name: "negative amount",
			req:  SplitRequest{Amount: dec("-5"), PayerID: 1, Members: members, Policy: EqualPolicy{}},
			check: func(err error) {
				var amountErr *domain.InvalidAmountError
				s.ErrorAs(err, &amountErr)
			},
		},
		{
			name: "payer outside group",
			req:  SplitRequest{Amount: dec("10"), PayerID: 42, Members: members, Policy: EqualPolicy{}},
			check: func(err error) {
				var payerErr *domain.InvalidPayerError
				s.Require().ErrorAs(err, &payerErr)
				s.Equal(int64(42), payerErr.PayerID)
			},
		},
		{
			name: "empty group",
			req:  SplitRequest{Amount: dec("10"), PayerID: 1, Policy: EqualPolicy{}},
			check: func(err error) {
				var splitErr *domain.InvalidSplitError
				s.ErrorAs(err, &splitErr)
			},
		},
		{
			name: "empty percentage participants",
			req: SplitRequest{
				Amount:  dec("10"),
				PayerID: 1,
				Members: members,
				Policy:  PercentagePolicy{},
			},
			check: func(err error) {
				var splitErr *domain.InvalidSplitError
				s.ErrorAs(err, &splitErr)
			},
		},
		{
			name: "participant outside group",
			req: SplitRequest{
				Amount:  dec("10"),
				PayerID: 1,
				Members: members,
				Policy: PercentagePolicy{Percentages: []Percentage{
					{UserID: 1, Percent: dec("50")},
					{UserID: 7, Percent: dec("50")},
				}},
			},
			check: func(err error) {
				var splitErr *domain.InvalidSplitError
				s.Require().ErrorAs(err, &splitErr)
				s.Equal(int64(7), splitErr.UserID)
			},
		},
		{
			name: "participant listed twice",
			req: SplitRequest{
				Amount:  dec("10"),
				PayerID: 1,
				Members: members,
				Policy: PercentagePolicy{Percentages: []Percentage{
					{UserID: 2, Percent: dec("50")},
					{UserID: 2, Percent: dec("50")},
				}},
			},
			check: func(err error) {
				var splitErr *domain.InvalidSplitError
				s.ErrorAs(err, &splitErr)
			},
		},
		{
			name: "missing policy",
			req:  SplitRequest{Amount: dec("10"), PayerID: 1, Members: members},
			check: func(err error) {
				s.ErrorIs(err, domain.ErrValidation)
			},
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			shares, err := Split(tc.req)
			s.Require().Error(err)
			s.Nil(shares)
			tc.check(err)
		})
	}
}
