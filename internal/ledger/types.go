// Package ledger is the expense ledger and settlement engine.
//
// Every function here is pure: it takes immutable inputs, never caches, and
// never blocks, so callers may invoke it from any goroutine. Amounts are int64
// cents. Balances are derived from the expense log on demand and never stored.
//
// The pipeline for a new expense is Distribute -> Validate -> persist. For a
// group summary it is Aggregate -> Minimize, per currency. Settlements are
// ordinary expenses with SplitSettlement, built by RecordSettlement, so they
// flow through the same aggregation pass.
package ledger

import (
	"time"

	"github.com/RaphaelMitas/flatsby-sub001/internal/money"
)

// BasisPointsTotal is 100% in basis points.
const BasisPointsTotal = 10000

// SplitMethod is how an expense total is divided among its participants.
type SplitMethod string

const (
	SplitEqual      SplitMethod = "equal"
	SplitPercentage SplitMethod = "percentage"
	SplitCustom     SplitMethod = "custom"
	// SplitSettlement marks a payment between two members. It is aggregated
	// like any expense but excluded from spending totals.
	SplitSettlement SplitMethod = "settlement"
)

// ParseSplitMethod maps a wire string to a SplitMethod.
func ParseSplitMethod(s string) (SplitMethod, error) {
	switch m := SplitMethod(s); m {
	case SplitEqual, SplitPercentage, SplitCustom, SplitSettlement:
		return m, nil
	}
	return "", newError(KindUnknownSplitMethod, "", "%q", s)
}

// Split is one member's share of an expense.
type Split struct {
	MemberID    string
	AmountCents int64
	// BasisPoints is set only for SplitPercentage.
	BasisPoints *int
}

// Expense is a payment by one member shared among Splits. Its splits always
// sum to AmountCents exactly.
type Expense struct {
	ID          string
	GroupID     string
	PayerID     string
	AmountCents int64
	Currency    money.Code
	Method      SplitMethod
	Splits      []Split
	CreatedAt   time.Time
}

// Total returns the expense amount as Money.
func (e Expense) Total() money.Money {
	return money.New(e.AmountCents, e.Currency)
}

// Debt is a directed payment that clears part of the group's balances.
// AmountCents is always positive.
type Debt struct {
	FromMemberID string
	ToMemberID   string
	AmountCents  int64
	Currency     money.Code
}

// Balances maps member id to signed cents in one currency.
// Positive means the member is owed money, negative means they owe.
type Balances map[string]int64

// BPS returns a pointer to n, for building percentage splits.
func BPS(n int) *int {
	return &n
}
