package ledger

import "fmt"

// Kind classifies a ledger failure so callers can attach it to the right
// form field instead of showing a generic message.
type Kind int

const (
	KindEmptySplitSet Kind = iota + 1
	KindDuplicateParticipant
	KindSplitSumMismatch
	KindPercentageSumMismatch
	KindInvalidPercentageField
	KindCurrencyMismatch
	KindNonPositiveAmount
	KindSelfSettlement
	KindUnknownMember
	KindUnknownSplitMethod
	KindInvalidSettlement
	KindMissingAmount
	KindAmountOverflow
)

var kindNames = map[Kind]string{
	KindEmptySplitSet:          "EmptySplitSet",
	KindDuplicateParticipant:   "DuplicateParticipant",
	KindSplitSumMismatch:       "SplitSumMismatch",
	KindPercentageSumMismatch:  "PercentageSumMismatch",
	KindInvalidPercentageField: "InvalidPercentageField",
	KindCurrencyMismatch:       "CurrencyMismatch",
	KindNonPositiveAmount:      "NonPositiveAmount",
	KindSelfSettlement:         "SelfSettlement",
	KindUnknownMember:          "UnknownMember",
	KindUnknownSplitMethod:     "UnknownSplitMethod",
	KindInvalidSettlement:      "InvalidSettlement",
	KindMissingAmount:          "MissingAmount",
	KindAmountOverflow:         "AmountOverflow",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned by every ledger operation that can fail.
type Error struct {
	Kind Kind
	// MemberID names the offending split row, if any.
	MemberID string
	Detail   string
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.MemberID != "" {
		msg += " (member " + e.MemberID + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is a ledger error of the same kind, so that
// errors.Is(err, ledger.ErrDuplicateParticipant) works on any detailed error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrEmptySplitSet          = &Error{Kind: KindEmptySplitSet}
	ErrDuplicateParticipant   = &Error{Kind: KindDuplicateParticipant}
	ErrSplitSumMismatch       = &Error{Kind: KindSplitSumMismatch}
	ErrPercentageSumMismatch  = &Error{Kind: KindPercentageSumMismatch}
	ErrInvalidPercentageField = &Error{Kind: KindInvalidPercentageField}
	ErrCurrencyMismatch       = &Error{Kind: KindCurrencyMismatch}
	ErrNonPositiveAmount      = &Error{Kind: KindNonPositiveAmount}
	ErrSelfSettlement         = &Error{Kind: KindSelfSettlement}
	ErrUnknownMember          = &Error{Kind: KindUnknownMember}
	ErrUnknownSplitMethod     = &Error{Kind: KindUnknownSplitMethod}
	ErrInvalidSettlement      = &Error{Kind: KindInvalidSettlement}
	ErrMissingAmount          = &Error{Kind: KindMissingAmount}
	ErrAmountOverflow         = &Error{Kind: KindAmountOverflow}
)

func newError(kind Kind, memberID, format string, args ...any) *Error {
	return &Error{Kind: kind, MemberID: memberID, Detail: fmt.Sprintf(format, args...)}
}
