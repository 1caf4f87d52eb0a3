package calculator

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/splitledger/internal/domain"
)

type pairKey struct {
	lo, hi int64
}

// GroupSnapshot - группа вместе с ее расходами на один момент времени.
type GroupSnapshot struct {
	Group    domain.Group
	Expenses []domain.Expense
}

// GroupBalances сворачивает долги по набору расходов в попарные балансы.
//
// Алгоритм работы:
//  1. Каждая доля не плательщика становится долгом этого участника перед плательщиком.
//  2. Долги копятся по неупорядоченной паре в одно число со знаком (плюс: меньший id должен большему).
//  3. Пара с ненулевым итогом дает ровно один баланс от должника к кредитору.
//
// Результат отсортирован по (From, To), одни и те же расходы всегда дают одни и те же балансы.
func GroupBalances(expenses []domain.Expense) []domain.Balance {
	nets := make(map[pairKey]decimal.Decimal)

	for _, expense := range expenses {
		for _, split := range expense.Splits {
			if split.UserID == expense.PaidBy || split.Amount.IsZero() {
				continue
			}
			addDebt(nets, split.UserID, expense.PaidBy, split.Amount)
		}
	}

	balances := make([]domain.Balance, 0, len(nets))
	for key, net := range nets {
		switch net.Sign() {
		case 1:
			balances = append(balances, domain.Balance{From: key.lo, To: key.hi, Amount: net})
		case -1:
			balances = append(balances, domain.Balance{From: key.hi, To: key.lo, Amount: net.Neg()})
		}
	}

	slices.SortFunc(balances, func(a, b domain.Balance) int {
		if c := compareIDs(a.From, b.From); c != 0 {
			return c
		}
		return compareIDs(a.To, b.To)
	})
	return balances
}

// UserBalances считает GroupBalances по каждой группе отдельно и оставляет балансы, в которых
// участвует userID. Группы без таких балансов пропускаются, остальные упорядочены по id группы.
func UserBalances(userID int64, groups []GroupSnapshot) []domain.GroupBalances {
	sorted := slices.Clone(groups)
	slices.SortFunc(sorted, func(a, b GroupSnapshot) int {
		return compareIDs(a.Group.ID, b.Group.ID)
	})

	result := make([]domain.GroupBalances, 0, len(sorted))
	for _, snapshot := range sorted {
		var relevant []domain.Balance
		for _, balance := range GroupBalances(snapshot.Expenses) {
			if balance.From == userID || balance.To == userID {
				relevant = append(relevant, balance)
			}
		}
		if len(relevant) == 0 {
			continue
		}
		result = append(result, domain.GroupBalances{
			GroupID:   snapshot.Group.ID,
			GroupName: snapshot.Group.Name,
			Balances:  relevant,
		})
	}
	return result
}

// addDebt записывает, что debtor должен creditor сумму amount.
func addDebt(nets map[pairKey]decimal.Decimal, debtor, creditor int64, amount decimal.Decimal) {
	if debtor < creditor {
		key := pairKey{lo: debtor, hi: creditor}
		nets[key] = nets[key].Add(amount)
		return
	}
	key := pairKey{lo: creditor, hi: debtor}
	nets[key] = nets[key].Sub(amount)
}
