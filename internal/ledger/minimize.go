package ledger

import (
	"cmp"
	"slices"

	"github.com/RaphaelMitas/flatsby-sub001/internal/money"
)

type position struct {
	memberID  string
	remaining int64
}

// Minimize reduces one currency's balances to a short list of debts using
// greedy matching: the largest debtor pays the largest creditor as much as
// either side allows, and whichever side reaches zero is dropped.
//
// Creditors and debtors are each ordered by amount, largest first, ties by
// member id, so the result is reproducible. The emitted debts sum to the
// total owed to creditors and every amount is positive. This is a heuristic:
// it produces at most n-1 debts for n non-zero members but is not guaranteed
// to find the global minimum number of payments, which is NP-hard in general.
//
// Members with a zero balance are ignored. If balances do not sum to zero the
// unmatched surplus on one side is left without a counterparty.
func Minimize(currency money.Code, balances Balances) []Debt {
	var creditors, debtors []position
	for _, id := range sortedMemberIDs(balances) {
		switch b := balances[id]; {
		case b > 0:
			creditors = append(creditors, position{memberID: id, remaining: b})
		case b < 0:
			debtors = append(debtors, position{memberID: id, remaining: -b})
		}
	}
	byRemaining := func(a, b position) int {
		if c := cmp.Compare(b.remaining, a.remaining); c != 0 {
			return c
		}
		return cmp.Compare(a.memberID, b.memberID)
	}
	slices.SortFunc(creditors, byRemaining)
	slices.SortFunc(debtors, byRemaining)

	var debts []Debt
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		amount := min(debtor.remaining, creditor.remaining)
		if amount > 0 {
			debts = append(debts, Debt{
				FromMemberID: debtor.memberID,
				ToMemberID:   creditor.memberID,
				AmountCents:  amount,
				Currency:     currency,
			})
		}

		debtor.remaining -= amount
		creditor.remaining -= amount
		if debtor.remaining == 0 {
			i++
		}
		if creditor.remaining == 0 {
			j++
		}
	}
	return debts
}

func sortedMemberIDs(balances Balances) []string {
	ids := make([]string, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
