package ledger

import (
	"errors"
	"testing"
)

func TestRecordSettlement(t *testing.T) {
	e, err := RecordSettlement("g1", "B", "A", 1000, "EUR")
	if err != nil {
		t.Fatalf("RecordSettlement: %v", err)
	}
	if e.Method != SplitSettlement || e.PayerID != "B" || e.GroupID != "g1" {
		t.Errorf("unexpected expense %+v", e)
	}
	if len(e.Splits) != 1 || e.Splits[0].MemberID != "A" || e.Splits[0].AmountCents != 1000 {
		t.Errorf("unexpected splits %+v", e.Splits)
	}
	if e.Splits[0].BasisPoints != nil {
		t.Error("settlement split must not carry a percentage")
	}

	tests := []struct {
		name    string
		from    string
		to      string
		amount  int64
		wantErr error
	}{
		{"zero amount", "B", "A", 0, ErrNonPositiveAmount},
		{"negative amount", "B", "A", -5, ErrNonPositiveAmount},
		{"self", "A", "A", 100, ErrSelfSettlement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RecordSettlement("g1", tt.from, tt.to, tt.amount, "EUR"); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettlementRoundTrip(t *testing.T) {
	expenses := twoPersonGroup(t)

	debts := Minimize("EUR", mustAggregate(t, expenses)["EUR"])
	if len(debts) != 1 {
		t.Fatalf("expected one debt, got %+v", debts)
	}
	d := debts[0]
	if d.FromMemberID != "B" || d.ToMemberID != "A" || d.AmountCents != 1000 {
		t.Fatalf("unexpected debt %+v", d)
	}

	settlement, err := RecordSettlement("g1", d.FromMemberID, d.ToMemberID, d.AmountCents, d.Currency)
	if err != nil {
		t.Fatalf("RecordSettlement: %v", err)
	}
	after := mustAggregate(t, append(expenses, *settlement))["EUR"]
	if after["A"] != 0 || after["B"] != 0 {
		t.Errorf("balances after settling = %v, want both 0", after)
	}
	if debts := Minimize("EUR", after); len(debts) != 0 {
		t.Errorf("expected no debts after settling, got %+v", debts)
	}
}

func TestOverSettlementFlipsDebt(t *testing.T) {
	expenses := twoPersonGroup(t)
	settlement, err := RecordSettlement("g1", "B", "A", 1500, "EUR")
	if err != nil {
		t.Fatalf("RecordSettlement: %v", err)
	}
	debts := Minimize("EUR", mustAggregate(t, append(expenses, *settlement))["EUR"])
	if len(debts) != 1 || debts[0].FromMemberID != "A" || debts[0].AmountCents != 500 {
		t.Errorf("expected A to owe B 500, got %+v", debts)
	}
}

func mustAggregate(t *testing.T, expenses []Expense) map[string]Balances {
	t.Helper()
	got, err := Aggregate(expenses)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	out := make(map[string]Balances, len(got))
	for c, b := range got {
		out[string(c)] = b
	}
	return out
}
