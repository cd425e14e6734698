package ledger

import "github.com/RaphaelMitas/flatsby-sub001/internal/money"

// Validate checks that splits are a consistent division of totalCents under
// method. The sum must match exactly; this is the check applied to anything
// about to be persisted or aggregated.
//
// Rules run in order and the first failure is returned:
//  1. at least one split
//  2. no member appears twice
//  3. no negative amounts, no int64 overflow, and amounts sum to totalCents
//  4. percentage: every split has basis points, summing to 10000
//  5. custom and equal: no split carries basis points
//  6. settlement: exactly one split and a positive total
func Validate(method SplitMethod, totalCents int64, splits []Split) error {
	return validate(method, totalCents, splits, 0)
}

// ValidateInput is Validate for raw user input. Custom and percentage
// amounts may miss the total by up to one cent per split, absorbing rounding
// from decimal form fields. Equal and settlement splits get no tolerance.
// Input accepted here must go through Reconcile before it is persisted.
func ValidateInput(method SplitMethod, totalCents int64, splits []Split) error {
	var tolerance int64
	if method == SplitCustom || method == SplitPercentage {
		tolerance = int64(len(splits))
	}
	return validate(method, totalCents, splits, tolerance)
}

func validate(method SplitMethod, totalCents int64, splits []Split, tolerance int64) error {
	if _, err := ParseSplitMethod(string(method)); err != nil {
		return err
	}
	if len(splits) == 0 {
		return newError(KindEmptySplitSet, "", "no splits")
	}

	seen := make(map[string]bool, len(splits))
	for _, s := range splits {
		if seen[s.MemberID] {
			return newError(KindDuplicateParticipant, s.MemberID, "member appears more than once")
		}
		seen[s.MemberID] = true
	}

	if totalCents < 0 {
		return newError(KindNonPositiveAmount, "", "total %d is negative", totalCents)
	}
	var sum int64
	for _, s := range splits {
		if s.AmountCents < 0 {
			return newError(KindNonPositiveAmount, s.MemberID, "amount %d is negative", s.AmountCents)
		}
		var ok bool
		if sum, ok = money.AddCents(sum, s.AmountCents); !ok {
			return newError(KindAmountOverflow, s.MemberID, "split amounts overflow")
		}
	}
	if diff := abs(sum - totalCents); diff > tolerance {
		return newError(KindSplitSumMismatch, "", "splits sum to %d, total is %d", sum, totalCents)
	}

	switch method {
	case SplitPercentage:
		var bps int
		for _, s := range splits {
			if s.BasisPoints == nil {
				return newError(KindInvalidPercentageField, s.MemberID, "percentage required")
			}
			if *s.BasisPoints < 0 || *s.BasisPoints > BasisPointsTotal {
				return newError(KindInvalidPercentageField, s.MemberID, "basis points %d out of range", *s.BasisPoints)
			}
			bps += *s.BasisPoints
		}
		if bps != BasisPointsTotal {
			return newError(KindPercentageSumMismatch, "", "basis points sum to %d, want %d", bps, BasisPointsTotal)
		}
	case SplitCustom, SplitEqual, SplitSettlement:
		for _, s := range splits {
			if s.BasisPoints != nil {
				return newError(KindInvalidPercentageField, s.MemberID, "percentage not allowed for %s split", method)
			}
		}
	}

	if method == SplitSettlement {
		if len(splits) != 1 {
			return newError(KindInvalidSettlement, "", "settlement needs exactly one receiver, got %d", len(splits))
		}
		if totalCents <= 0 {
			return newError(KindNonPositiveAmount, "", "settlement amount must be positive")
		}
	}
	return nil
}

// Reconcile returns a copy of splits adjusted so they sum to totalCents
// exactly. The difference, which ValidateInput has bounded, is applied one
// cent at a time in split order. Splits already at zero are never reduced.
func Reconcile(totalCents int64, splits []Split) ([]Split, error) {
	out := make([]Split, len(splits))
	copy(out, splits)
	if len(out) == 0 {
		return nil, newError(KindEmptySplitSet, "", "no splits")
	}
	if totalCents < 0 {
		return nil, newError(KindNonPositiveAmount, "", "total %d is negative", totalCents)
	}

	sum, err := splitTotal(out)
	if err != nil {
		return nil, err
	}
	// Both sides are non-negative, so the difference cannot overflow.
	diff := totalCents - sum
	if n := int64(len(out)); diff > n || diff < -n {
		return nil, newError(KindSplitSumMismatch, "", "splits sum to %d, total is %d", sum, totalCents)
	}

	for i := 0; diff > 0; i = (i + 1) % len(out) {
		out[i].AmountCents++
		diff--
	}
	for i := 0; diff < 0; i = (i + 1) % len(out) {
		if out[i].AmountCents > 0 {
			out[i].AmountCents--
			diff++
		}
	}
	return out, nil
}

// splitTotal sums non-negative split amounts.
func splitTotal(splits []Split) (int64, error) {
	var sum int64
	for _, s := range splits {
		if s.AmountCents < 0 {
			return 0, newError(KindNonPositiveAmount, s.MemberID, "amount %d is negative", s.AmountCents)
		}
		var ok bool
		if sum, ok = money.AddCents(sum, s.AmountCents); !ok {
			return 0, newError(KindAmountOverflow, s.MemberID, "split amounts overflow")
		}
	}
	return sum, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
