package ledger

import (
	"errors"
	"math"
	"slices"

	"github.com/RaphaelMitas/flatsby-sub001/internal/money"
)

// Aggregate folds expenses into a net balance per member, per currency.
// The payer of each expense is credited the full amount and every split member
// is debited their share. Settlements need no special case: the paying debtor
// is credited and the receiving creditor debited.
//
// Every member that appears in an expense of a currency is present in that
// currency's Balances, with 0 if they net out. The result does not depend on
// the order of expenses. Each expense's splits must sum to its amount exactly;
// a mismatch is returned as SplitSumMismatch rather than silently absorbed.
// A balance that would leave the int64 range fails with AmountOverflow.
func Aggregate(expenses []Expense) (map[money.Code]Balances, error) {
	out := make(map[money.Code]Balances)
	for _, e := range expenses {
		if err := checkStored(e); err != nil {
			return nil, err
		}
		balances, ok := out[e.Currency]
		if !ok {
			balances = make(Balances)
			out[e.Currency] = balances
		}
		if err := adjust(balances, e.PayerID, e.AmountCents); err != nil {
			return nil, err
		}
		for _, s := range e.Splits {
			if err := adjust(balances, s.MemberID, -s.AmountCents); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// adjust adds delta to one member's running total. math.MinInt64 is refused
// too, since Minimize negates debtor balances.
func adjust(totals map[string]int64, memberID string, delta int64) error {
	v, ok := money.AddCents(totals[memberID], delta)
	if !ok || v == math.MinInt64 {
		return newError(KindAmountOverflow, memberID, "running total out of range")
	}
	totals[memberID] = v
	return nil
}

func checkStored(e Expense) error {
	sum, err := splitTotal(e.Splits)
	if err != nil {
		return err
	}
	if sum != e.AmountCents {
		return newError(KindSplitSumMismatch, "", "expense %s: splits sum to %d, amount is %d", e.ID, sum, e.AmountCents)
	}
	return nil
}

// MemberBalance breaks a member's net balance down into what they paid and
// what they were charged, in one currency.
type MemberBalance struct {
	MemberID string
	Paid     int64
	Owed     int64
	// Net = Paid - Owed. Positive = owed money, negative = owes money.
	Net int64
}

// CurrencySummary is the complete settlement view for one currency.
type CurrencySummary struct {
	Currency money.Code
	// Members is sorted by member id.
	Members []MemberBalance
	Debts   []Debt
	// Spent is the total of regular expenses, settlements excluded.
	Spent int64
}

// Summarize aggregates expenses and minimizes the resulting balances, one
// summary per currency, ordered by currency code.
func Summarize(expenses []Expense) ([]CurrencySummary, error) {
	balances, err := Aggregate(expenses)
	if err != nil {
		return nil, err
	}

	paid := make(map[money.Code]map[string]int64)
	owed := make(map[money.Code]map[string]int64)
	spent := make(map[money.Code]money.Money)
	for _, e := range expenses {
		if paid[e.Currency] == nil {
			paid[e.Currency] = make(map[string]int64)
			owed[e.Currency] = make(map[string]int64)
			spent[e.Currency] = money.New(0, e.Currency)
		}
		if err := adjust(paid[e.Currency], e.PayerID, e.AmountCents); err != nil {
			return nil, err
		}
		for _, s := range e.Splits {
			if err := adjust(owed[e.Currency], s.MemberID, s.AmountCents); err != nil {
				return nil, err
			}
		}
		if e.Method != SplitSettlement {
			total, err := spent[e.Currency].Add(e.Total())
			if errors.Is(err, money.ErrOverflow) {
				return nil, newError(KindAmountOverflow, "", "%s spending: %v", e.Currency, err)
			}
			if err != nil {
				return nil, newError(KindCurrencyMismatch, "", "%v", err)
			}
			spent[e.Currency] = total
		}
	}

	currencies := make([]money.Code, 0, len(balances))
	for c := range balances {
		currencies = append(currencies, c)
	}
	slices.Sort(currencies)

	summaries := make([]CurrencySummary, 0, len(currencies))
	for _, c := range currencies {
		ids := sortedMemberIDs(balances[c])
		members := make([]MemberBalance, len(ids))
		for i, id := range ids {
			members[i] = MemberBalance{
				MemberID: id,
				Paid:     paid[c][id],
				Owed:     owed[c][id],
				Net:      balances[c][id],
			}
		}
		summaries = append(summaries, CurrencySummary{
			Currency: c,
			Members:  members,
			Debts:    Minimize(c, balances[c]),
			Spent:    spent[c].Cents,
		})
	}
	return summaries, nil
}
