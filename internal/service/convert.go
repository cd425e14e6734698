package service

import (
	"github.com/RaphaelMitas/flatsby-sub001/internal/ledger"
	"github.com/RaphaelMitas/flatsby-sub001/internal/models"
	"github.com/RaphaelMitas/flatsby-sub001/internal/money"
	"github.com/RaphaelMitas/flatsby-sub001/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIMember(m models.Member) *api.Member {
	return &api.Member{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		UserID:      m.UserID,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	members := make([]*api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = toAPIMember(m)
	}
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func toAPISplits(splits []ledger.Split, currency money.Code) []*api.Split {
	out := make([]*api.Split, len(splits))
	for i, s := range splits {
		out[i] = &api.Split{
			MemberID:    s.MemberID,
			AmountCents: s.AmountCents,
			Display:     money.Format(s.AmountCents, currency),
			BasisPoints: s.BasisPoints,
		}
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Title:       e.Title,
		PayerID:     e.PayerID,
		AmountCents: e.AmountCents,
		Display:     money.Format(e.AmountCents, e.Currency),
		Currency:    string(e.Currency),
		SplitMethod: string(e.SplitMethod),
		Splits:      toAPISplits(e.ToLedger().Splits, e.Currency),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Version:     e.Version,
	}
}

func toAPIBalances(s ledger.CurrencySummary, names map[string]string) *api.CurrencyBalances {
	members := make([]*api.MemberBalance, len(s.Members))
	for i, m := range s.Members {
		members[i] = &api.MemberBalance{
			MemberID:    m.MemberID,
			DisplayName: names[m.MemberID],
			PaidCents:   m.Paid,
			OwedCents:   m.Owed,
			NetCents:    m.Net,
			NetDisplay:  money.Format(m.Net, s.Currency),
		}
	}
	debts := make([]*api.Debt, len(s.Debts))
	for i, d := range s.Debts {
		debts[i] = &api.Debt{
			FromMemberID: d.FromMemberID,
			ToMemberID:   d.ToMemberID,
			AmountCents:  d.AmountCents,
			Display:      money.Format(d.AmountCents, d.Currency),
		}
	}
	return &api.CurrencyBalances{
		Currency:     string(s.Currency),
		Members:      members,
		Debts:        debts,
		SpentCents:   s.Spent,
		SpentDisplay: money.Format(s.Spent, s.Currency),
	}
}
