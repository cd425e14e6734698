package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/RaphaelMitas/flatsby-sub001/internal/ledger"
	"github.com/RaphaelMitas/flatsby-sub001/internal/middleware"
	"github.com/RaphaelMitas/flatsby-sub001/internal/models"
	"github.com/RaphaelMitas/flatsby-sub001/internal/money"
	"github.com/RaphaelMitas/flatsby-sub001/internal/storage"
	"github.com/RaphaelMitas/flatsby-sub001/pkg/api"
	"github.com/RaphaelMitas/flatsby-sub001/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService records expenses and settlements and derives balances.
type ExpenseService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{store: store, logger: logger}
}

// splitRequest is the part of create, update and preview requests that
// describes how an amount is shared.
type splitRequest struct {
	total        string
	currency     string
	method       string
	participants []*api.Participant
}

// split parses a request and runs it through the ledger: distribute, check
// the raw result with input tolerance, reconcile to the exact total, then
// check again with none. The returned splits are safe to persist.
func split(req splitRequest) (ledger.SplitMethod, int64, money.Code, []ledger.Split, error) {
	method, err := ledger.ParseSplitMethod(req.method)
	if err != nil {
		return "", 0, "", nil, err
	}
	if method == ledger.SplitSettlement {
		return "", 0, "", nil, ledgerError(ledger.KindUnknownSplitMethod, "", "settlements are recorded with SettleUp")
	}
	currency, err := money.ParseCurrency(req.currency)
	if err != nil {
		return "", 0, "", nil, err
	}
	total, err := money.ParseDecimal(req.total)
	if err != nil {
		return "", 0, "", nil, err
	}
	if total <= 0 {
		return "", 0, "", nil, ledgerError(ledger.KindNonPositiveAmount, "", fmt.Sprintf("total %s must be positive", req.total))
	}

	participants := make([]ledger.Participant, len(req.participants))
	for i, p := range req.participants {
		if p == nil {
			return "", 0, "", nil, ledgerError(ledger.KindUnknownMember, "", "empty participant")
		}
		participants[i] = ledger.Participant{MemberID: p.MemberID, BasisPoints: p.BasisPoints}
		if p.Amount != "" {
			amount, err := money.ParseDecimal(p.Amount)
			if err != nil {
				return "", 0, "", nil, fmt.Errorf("member %s: %w", p.MemberID, err)
			}
			participants[i].AmountCents = &amount
		}
	}

	splits, err := ledger.Distribute(method, total, participants)
	if err != nil {
		return "", 0, "", nil, err
	}
	if err := ledger.ValidateInput(method, total, splits); err != nil {
		return "", 0, "", nil, err
	}
	if splits, err = ledger.Reconcile(total, splits); err != nil {
		return "", 0, "", nil, err
	}
	if err := ledger.Validate(method, total, splits); err != nil {
		return "", 0, "", nil, err
	}
	return method, total, currency, splits, nil
}

// checkMembers verifies that every referenced member belongs to group.
func checkMembers(group *models.Group, memberIDs ...string) error {
	for _, id := range memberIDs {
		if !group.HasMember(id) {
			return ledgerError(ledger.KindUnknownMember, id, "not a member of group "+group.ID)
		}
	}
	return nil
}

// buildExpense produces a validated expense for group from a request.
func buildExpense(group *models.Group, payerID string, req splitRequest) (*ledger.Expense, error) {
	if err := checkMembers(group, payerID); err != nil {
		return nil, err
	}
	for _, p := range req.participants {
		if p == nil {
			continue
		}
		if err := checkMembers(group, p.MemberID); err != nil {
			return nil, err
		}
	}

	method, total, currency, splits, err := split(req)
	if err != nil {
		return nil, err
	}
	return &ledger.Expense{
		GroupID:     group.ID,
		PayerID:     payerID,
		AmountCents: total,
		Currency:    currency,
		Method:      method,
		Splits:      splits,
	}, nil
}

// PreviewSplit computes a split without storing anything.
func (s *ExpenseService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	_, _, currency, splits, err := split(splitRequest{
		total:        req.Msg.Total,
		currency:     req.Msg.Currency,
		method:       req.Msg.SplitMethod,
		participants: req.Msg.Participants,
	})
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}
	return connect.NewResponse(&api.PreviewSplitResponse{Splits: toAPISplits(splits, currency)}), nil
}

// CreateExpense records a new expense in a group the caller belongs to.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	group, _, err := callerGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	le, err := buildExpense(group, req.Msg.PayerID, splitRequest{
		total:        req.Msg.Total,
		currency:     req.Msg.Currency,
		method:       req.Msg.SplitMethod,
		participants: req.Msg.Participants,
	})
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	expense := models.ExpenseFromLedger(le, strings.TrimSpace(req.Msg.Title), middleware.GetUserID(ctx))
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	s.logger.InfoContext(ctx, "Expense created",
		"expense_id", expense.ID,
		"group_id", group.ID,
		"method", expense.SplitMethod,
		"amount_cents", expense.AmountCents,
		"currency", expense.Currency,
	)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// callerExpense loads an expense and checks the caller belongs to its group.
func (s *ExpenseService) callerExpense(ctx context.Context, expenseID string) (*models.Expense, *models.Group, error) {
	if expenseID == "" {
		return nil, nil, errMissingID
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, err
	}
	group, _, err := callerGroup(ctx, s.store, expense.GroupID)
	if err != nil {
		return nil, nil, err
	}
	return expense, group, nil
}

// UpdateExpense replaces an expense and all of its splits. Settlements
// cannot be edited; delete and record them again instead.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	existing, group, err := s.callerExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}
	if existing.IsSettlement() {
		return nil, connectError(ctx, s.logger,
			ledgerError(ledger.KindInvalidSettlement, "", "settlements cannot be edited"))
	}

	le, err := buildExpense(group, req.Msg.PayerID, splitRequest{
		total:        req.Msg.Total,
		currency:     req.Msg.Currency,
		method:       req.Msg.SplitMethod,
		participants: req.Msg.Participants,
	})
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	le.ID = existing.ID
	expense := models.ExpenseFromLedger(le, strings.TrimSpace(req.Msg.Title), existing.CreatedBy)
	expense.CreatedAt = existing.CreatedAt
	expense.Version = req.Msg.Version
	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	s.logger.InfoContext(ctx, "Expense updated", "expense_id", expense.ID, "version", expense.Version)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense or settlement.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	expense, _, err := s.callerExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}
	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	s.logger.InfoContext(ctx, "Expense deleted", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// GetExpense retrieves one expense.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	expense, _, err := s.callerExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses returns a group's expenses, oldest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	group, _, err := callerGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	out := make([]*api.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.IsSettlement() && !req.Msg.IncludeSettlements {
			continue
		}
		out = append(out, toAPIExpense(e))
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// GetBalances derives each member's balance and the payments that settle
// the group, per currency.
func (s *ExpenseService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	group, _, err := callerGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	var only money.Code
	if req.Msg.Currency != "" {
		if only, err = money.ParseCurrency(req.Msg.Currency); err != nil {
			return nil, connectError(ctx, s.logger, err)
		}
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	ledgerExpenses := make([]ledger.Expense, 0, len(expenses))
	for _, e := range expenses {
		if only != "" && e.Currency != only {
			continue
		}
		ledgerExpenses = append(ledgerExpenses, e.ToLedger())
	}

	summaries, err := ledger.Summarize(ledgerExpenses)
	if err != nil {
		// Stored expenses are exact, so this means the log was corrupted.
		s.logger.ErrorContext(ctx, "Inconsistent expense log", "group_id", group.ID, "error", err)
		return nil, connectError(ctx, s.logger, err)
	}

	names := make(map[string]string, len(group.Members))
	for _, m := range group.Members {
		names[m.ID] = m.DisplayName
	}
	out := make([]*api.CurrencyBalances, len(summaries))
	for i, summary := range summaries {
		out[i] = toAPIBalances(summary, names)
	}
	return connect.NewResponse(&api.GetBalancesResponse{Balances: out}), nil
}

// SettleUp records a payment from one member to another.
func (s *ExpenseService) SettleUp(ctx context.Context, req *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error) {
	group, _, err := callerGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	le, err := s.settlement(group, req.Msg)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	settlement := models.ExpenseFromLedger(le, "", middleware.GetUserID(ctx))
	if err := s.store.CreateExpense(ctx, settlement); err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	s.logger.InfoContext(ctx, "Settlement recorded",
		"expense_id", settlement.ID,
		"group_id", group.ID,
		"from", req.Msg.FromMemberID,
		"to", req.Msg.ToMemberID,
		"amount_cents", settlement.AmountCents,
	)
	return connect.NewResponse(&api.SettleUpResponse{Settlement: toAPIExpense(settlement)}), nil
}

func (s *ExpenseService) settlement(group *models.Group, msg *api.SettleUpRequest) (*ledger.Expense, error) {
	if err := checkMembers(group, msg.FromMemberID, msg.ToMemberID); err != nil {
		return nil, err
	}
	currency, err := money.ParseCurrency(msg.Currency)
	if err != nil {
		return nil, err
	}
	amount, err := money.ParseDecimal(msg.Amount)
	if err != nil {
		return nil, err
	}
	return ledger.RecordSettlement(group.ID, msg.FromMemberID, msg.ToMemberID, amount, currency)
}
