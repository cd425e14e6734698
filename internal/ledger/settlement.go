package ledger

import (
	"time"

	"github.com/RaphaelMitas/flatsby-sub001/internal/money"
)

// RecordSettlement expresses a payment of amountCents from one member to
// another as a settlement expense: the payer is fromMemberID and the single
// split belongs to toMemberID. Aggregating it raises the payer's balance and
// lowers the receiver's by amountCents.
//
// Paying more than is owed is allowed; it reverses the direction of the debt.
// The returned expense has no ID; storage assigns one.
func RecordSettlement(groupID, fromMemberID, toMemberID string, amountCents int64, currency money.Code) (*Expense, error) {
	if amountCents <= 0 {
		return nil, newError(KindNonPositiveAmount, "", "settlement amount %d must be positive", amountCents)
	}
	if fromMemberID == toMemberID {
		return nil, newError(KindSelfSettlement, fromMemberID, "cannot settle with yourself")
	}

	e := &Expense{
		GroupID:     groupID,
		PayerID:     fromMemberID,
		AmountCents: amountCents,
		Currency:    currency,
		Method:      SplitSettlement,
		Splits:      []Split{{MemberID: toMemberID, AmountCents: amountCents}},
		CreatedAt:   time.Now().UTC(),
	}
	if err := Validate(e.Method, e.AmountCents, e.Splits); err != nil {
		return nil, err
	}
	return e, nil
}
