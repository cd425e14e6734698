package models

import (
	"time"

	"github.com/RaphaelMitas/flatsby-sub001/internal/ledger"
	"github.com/RaphaelMitas/flatsby-sub001/internal/money"
)

// Expense is one payment made by a member on behalf of others.
// Its splits always sum exactly to AmountCents.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group the expense belongs to.
	GroupID string

	// Title is a short description (e.g., "Groceries"). Auto-generated if empty.
	Title string

	// PayerID is the member who paid.
	PayerID string

	// AmountCents is the total paid, in cents.
	AmountCents int64

	// Currency is the ISO-4217-like code of the amount.
	Currency money.Code

	// SplitMethod is how the amount is divided.
	SplitMethod ledger.SplitMethod

	// Splits are the per-member shares, in participant order.
	Splits []ExpenseSplit

	// CreatedBy is the user ID who recorded this expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last edit.
	UpdatedAt int64

	// Version increments on every edit. Updates must name the version they
	// were based on, so concurrent edits of one expense cannot interleave.
	Version int64
}

// ExpenseSplit is one member's share of an expense.
type ExpenseSplit struct {
	ExpenseID   string
	MemberID    string
	AmountCents int64
	// PercentageBPS is set only for percentage splits.
	PercentageBPS *int
}

// IsSettlement reports whether the expense records a payment between members.
func (e *Expense) IsSettlement() bool {
	return e.SplitMethod == ledger.SplitSettlement
}

// ToLedger converts the stored expense to the ledger's representation.
func (e *Expense) ToLedger() ledger.Expense {
	splits := make([]ledger.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = ledger.Split{MemberID: s.MemberID, AmountCents: s.AmountCents, BasisPoints: s.PercentageBPS}
	}
	return ledger.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		AmountCents: e.AmountCents,
		Currency:    e.Currency,
		Method:      e.SplitMethod,
		Splits:      splits,
		CreatedAt:   time.Unix(e.CreatedAt, 0).UTC(),
	}
}

// ExpenseFromLedger builds a storable expense from a ledger expense.
func ExpenseFromLedger(le *ledger.Expense, title, createdBy string) *Expense {
	splits := make([]ExpenseSplit, len(le.Splits))
	for i, s := range le.Splits {
		splits[i] = ExpenseSplit{ExpenseID: le.ID, MemberID: s.MemberID, AmountCents: s.AmountCents, PercentageBPS: s.BasisPoints}
	}
	var createdAt int64
	if !le.CreatedAt.IsZero() {
		createdAt = le.CreatedAt.Unix()
	}
	return &Expense{
		ID:          le.ID,
		GroupID:     le.GroupID,
		Title:       title,
		PayerID:     le.PayerID,
		AmountCents: le.AmountCents,
		Currency:    le.Currency,
		SplitMethod: le.Method,
		Splits:      splits,
		CreatedBy:   createdBy,
		CreatedAt:   createdAt,
	}
}
