package ledger

// Participant is one member taking part in a split, in caller order.
type Participant struct {
	MemberID string
	// BasisPoints is required for SplitPercentage.
	BasisPoints *int
	// AmountCents is required for SplitCustom.
	AmountCents *int64
}

// Distribute divides totalCents among participants according to method.
// The returned splits follow participant order and sum to totalCents exactly
// for equal and percentage splits. Custom amounts are passed through untouched;
// their sum is checked by Validate.
//
// Remainder cents go one at a time to participants in the order given, so the
// same input always yields the same allocation.
//
// A single participant always receives the whole total. Whatever basis points
// or amount they supplied is replaced: a percentage split comes back with
// 10000 bps and a custom split with totalCents. Out-of-range basis points and
// negative amounts are still rejected first.
func Distribute(method SplitMethod, totalCents int64, participants []Participant) ([]Split, error) {
	if len(participants) == 0 {
		return nil, newError(KindEmptySplitSet, "", "no participants")
	}
	if totalCents < 0 {
		return nil, newError(KindNonPositiveAmount, "", "total %d is negative", totalCents)
	}
	for _, p := range participants {
		if p.BasisPoints != nil && (*p.BasisPoints < 0 || *p.BasisPoints > BasisPointsTotal) {
			return nil, newError(KindInvalidPercentageField, p.MemberID, "basis points %d out of range", *p.BasisPoints)
		}
		if p.AmountCents != nil && *p.AmountCents < 0 {
			return nil, newError(KindNonPositiveAmount, p.MemberID, "amount %d is negative", *p.AmountCents)
		}
	}

	switch method {
	case SplitEqual:
		return distributeEqual(totalCents, participants), nil
	case SplitPercentage:
		return distributePercentage(totalCents, participants)
	case SplitCustom:
		return distributeCustom(totalCents, participants)
	case SplitSettlement:
		return nil, newError(KindUnknownSplitMethod, "", "settlement splits are built by RecordSettlement")
	default:
		return nil, newError(KindUnknownSplitMethod, "", "%q", method)
	}
}

func distributeEqual(totalCents int64, participants []Participant) []Split {
	n := int64(len(participants))
	base := totalCents / n
	remainder := totalCents - base*n

	splits := make([]Split, len(participants))
	for i, p := range participants {
		share := base
		if int64(i) < remainder {
			share++
		}
		splits[i] = Split{MemberID: p.MemberID, AmountCents: share}
	}
	return splits
}

func distributePercentage(totalCents int64, participants []Participant) ([]Split, error) {
	if len(participants) == 1 {
		p := participants[0]
		return []Split{{MemberID: p.MemberID, AmountCents: totalCents, BasisPoints: BPS(BasisPointsTotal)}}, nil
	}

	var bpsSum int
	for _, p := range participants {
		if p.BasisPoints == nil {
			return nil, newError(KindInvalidPercentageField, p.MemberID, "percentage required")
		}
		bpsSum += *p.BasisPoints
	}
	if bpsSum != BasisPointsTotal {
		return nil, newError(KindPercentageSumMismatch, "", "basis points sum to %d, want %d", bpsSum, BasisPointsTotal)
	}

	splits := make([]Split, len(participants))
	var allocated int64
	for i, p := range participants {
		cents := mulDivBPS(totalCents, *p.BasisPoints)
		allocated += cents
		splits[i] = Split{MemberID: p.MemberID, AmountCents: cents, BasisPoints: BPS(*p.BasisPoints)}
	}

	// Each floor loses less than one cent, so leftover < len(participants).
	// Members with 0 bps never receive remainder cents.
	leftover := totalCents - allocated
	for i := 0; leftover > 0; i = (i + 1) % len(splits) {
		if *splits[i].BasisPoints == 0 {
			continue
		}
		splits[i].AmountCents++
		leftover--
	}
	return splits, nil
}

func distributeCustom(totalCents int64, participants []Participant) ([]Split, error) {
	if len(participants) == 1 {
		p := participants[0]
		return []Split{{MemberID: p.MemberID, AmountCents: totalCents, BasisPoints: p.BasisPoints}}, nil
	}

	splits := make([]Split, len(participants))
	for i, p := range participants {
		if p.AmountCents == nil {
			return nil, newError(KindMissingAmount, p.MemberID, "amount required for custom split")
		}
		splits[i] = Split{MemberID: p.MemberID, AmountCents: *p.AmountCents, BasisPoints: p.BasisPoints}
	}
	return splits, nil
}

// mulDivBPS returns floor(total * bps / 10000) without overflowing int64.
func mulDivBPS(total int64, bps int) int64 {
	q, r := total/BasisPointsTotal, total%BasisPointsTotal
	return q*int64(bps) + r*int64(bps)/BasisPointsTotal
}
