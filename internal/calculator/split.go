// Package calculator делит суммы расходов на доли участников и сворачивает получившиеся
// долги в попарные балансы. Все функции чистые: работают только с переданным снимком и не
// хранят состояния, поэтому безопасны для конкурентного использования.
package calculator

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/splitledger/internal/domain"
)

const centsExp = 2

var (
	hundred            = decimal.NewFromInt(100)
	oneCent            = decimal.New(1, -centsExp)
	percentTolerance   = oneCent
	maxPercentPerShare = hundred
)

// Policy - политика деления расхода. Реализуют ее только EqualPolicy и PercentagePolicy.
type Policy interface {
	Type() domain.SplitType
	isPolicy()
}

// EqualPolicy делит сумму поровну между всеми участниками группы.
type EqualPolicy struct{}

func (EqualPolicy) Type() domain.SplitType { return domain.SplitTypeEqual }
func (EqualPolicy) isPolicy()              {}

// PercentagePolicy назначает каждому перечисленному участнику процент от суммы.
type PercentagePolicy struct {
	Percentages []Percentage
}

func (PercentagePolicy) Type() domain.SplitType { return domain.SplitTypePercentage }
func (PercentagePolicy) isPolicy()              {}

type Percentage struct {
	UserID  int64
	Percent decimal.Decimal
}

type SplitRequest struct {
	Amount  decimal.Decimal
	PayerID int64
	// Members - id участников группы расхода в любом порядке.
	Members []int64
	Policy  Policy
}

// Share - доля участника в расходе. Для деления поровну Percentage равен nil.
type Share struct {
	UserID     int64
	Amount     decimal.Decimal
	Percentage *decimal.Decimal
}

// Split считает доли участников расхода. Доли упорядочены по id пользователя и в сумме всегда
// точно равны сумме, округленной до центов.
//
// Ошибки:
//   - *domain.InvalidAmountError, если сумма после округления до центов не положительна или достигает
//     domain.MaxExpenseAmount;
//   - *domain.InvalidSplitError, если делить не между кем, участник не состоит в группе
//     или указан дважды;
//   - *domain.InvalidPayerError, если плательщик не состоит в группе;
//   - *domain.ValidationError, если проценты вне диапазона или их сумма отличается от 100 больше чем на 0.01.
func Split(req SplitRequest) ([]Share, error) {
	amount := RoundCents(req.Amount)
	if !amount.IsPositive() || amount.GreaterThanOrEqual(domain.MaxExpenseAmount) {
		return nil, domain.NewInvalidAmountError(amount)
	}

	members := normalizeMembers(req.Members)
	if len(members) == 0 {
		return nil, domain.NewInvalidSplitError(0, "group has no members")
	}
	if _, ok := slices.BinarySearch(members, req.PayerID); !ok {
		return nil, domain.NewInvalidPayerError(req.PayerID)
	}

	switch p := req.Policy.(type) {
	case EqualPolicy:
		return splitEqual(amount, members), nil
	case PercentagePolicy:
		return splitPercentage(amount, req.PayerID, members, p.Percentages)
	case nil:
		return nil, domain.NewValidationError("split_type", "split policy is required")
	default:
		return nil, domain.NewValidationError("split_type", fmt.Sprintf("unsupported split policy %T", p))
	}
}

// RoundCents округляет сумму до центов, половину - от нуля.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(centsExp)
}

// splitEqual раздает остаток от деления в центах по одному центу первым участникам
// в порядке возрастания id. Деление идет в decimal, поэтому никакая сумма не переполняет
// целочисленный счетчик центов.
func splitEqual(amount decimal.Decimal, members []int64) []Share {
	base, remainder := amount.Shift(centsExp).QuoRem(decimal.NewFromInt(int64(len(members))), 0)
	extra := remainder.IntPart()
	baseAmount := base.Shift(-centsExp)

	shares := make([]Share, len(members))
	for i, userID := range members {
		share := baseAmount
		if int64(i) < extra {
			share = share.Add(oneCent)
		}
		shares[i] = Share{
			UserID: userID,
			Amount: share,
		}
	}
	return shares
}

// splitPercentage округляет каждую долю до центов и относит остаток от округления на плательщика.
// Положительный остаток прибавляется плательщику, при его отсутствии в списке - строкой с нулевым процентом.
// Отрицательный списывается с плательщика до нуля, затем с самых крупных долей. Отрицательных долей не бывает.
func splitPercentage(amount decimal.Decimal, payerID int64, members []int64, percentages []Percentage) ([]Share, error) {
	if len(percentages) == 0 {
		return nil, domain.NewInvalidSplitError(0, "no participants")
	}

	seen := make(map[int64]struct{}, len(percentages))
	total := decimal.Zero
	for _, p := range percentages {
		if _, ok := slices.BinarySearch(members, p.UserID); !ok {
			return nil, domain.NewInvalidSplitError(p.UserID, "not a member of the group")
		}
		if _, dup := seen[p.UserID]; dup {
			return nil, domain.NewInvalidSplitError(p.UserID, "listed more than once")
		}
		seen[p.UserID] = struct{}{}

		if p.Percent.IsNegative() || p.Percent.GreaterThan(maxPercentPerShare) {
			return nil, domain.NewValidationError(
				"splits",
				fmt.Sprintf("percentage for user %d must be between 0 and 100", p.UserID),
			)
		}
		total = total.Add(p.Percent)
	}

	if total.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return nil, domain.NewValidationError(
			"splits",
			fmt.Sprintf("percentages must sum to 100, got %s", total.String()),
		)
	}

	shares := make([]Share, 0, len(percentages)+1)
	allocated := decimal.Zero
	payerIdx := -1
	for _, p := range percentages {
		percent := p.Percent
		share := RoundCents(amount.Mul(percent).Div(hundred))
		allocated = allocated.Add(share)
		if p.UserID == payerID {
			payerIdx = len(shares)
		}
		shares = append(shares, Share{
			UserID:     p.UserID,
			Amount:     share,
			Percentage: &percent,
		})
	}

	residual := amount.Sub(allocated)
	switch {
	case residual.IsPositive() && payerIdx >= 0:
		shares[payerIdx].Amount = shares[payerIdx].Amount.Add(residual)
	case residual.IsPositive():
		zero := decimal.Zero
		shares = append(shares, Share{
			UserID:     payerID,
			Amount:     residual,
			Percentage: &zero,
		})
	case residual.IsNegative():
		takeDeficit(shares, payerIdx, residual.Neg())
	}

	slices.SortFunc(shares, func(a, b Share) int {
		return compareIDs(a.UserID, b.UserID)
	})
	return shares, nil
}

// takeDeficit уменьшает доли на deficit: сначала плательщика, затем самые крупные (при равенстве - с меньшим id).
// Сумма долей всегда больше deficit, поэтому после цикла все доли неотрицательны.
func takeDeficit(shares []Share, payerIdx int, deficit decimal.Decimal) {
	order := make([]int, 0, len(shares))
	for i := range shares {
		if i != payerIdx {
			order = append(order, i)
		}
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := shares[b].Amount.Cmp(shares[a].Amount); c != 0 {
			return c
		}
		return compareIDs(shares[a].UserID, shares[b].UserID)
	})
	if payerIdx >= 0 {
		order = append([]int{payerIdx}, order...)
	}

	for _, i := range order {
		if !deficit.IsPositive() {
			return
		}
		taken := decimal.Min(shares[i].Amount, deficit)
		shares[i].Amount = shares[i].Amount.Sub(taken)
		deficit = deficit.Sub(taken)
	}
}

// normalizeMembers возвращает отсортированную копию ids без дубликатов.
func normalizeMembers(ids []int64) []int64 {
	members := slices.Clone(ids)
	slices.Sort(members)
	return slices.Compact(members)
}

func compareIDs(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
