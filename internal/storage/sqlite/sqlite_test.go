package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RaphaelMitas/flatsby-sub001/internal/ledger"
	"github.com/RaphaelMitas/flatsby-sub001/internal/models"
	"github.com/RaphaelMitas/flatsby-sub001/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// createFlat stores a group of three members, the first linked to a user.
func createFlat(t *testing.T, store *SQLiteStore) *models.Group {
	t.Helper()
	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	group := &models.Group{
		Name: "Flat 3B",
		Members: []models.Member{
			{DisplayName: "Alice", UserID: user.ID},
			{DisplayName: "Bob"},
			{DisplayName: "Charlie"},
		},
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

func equalSplit(group *models.Group, payer int, cents ...int64) *models.Expense {
	e := &models.Expense{
		GroupID:     group.ID,
		PayerID:     group.Members[payer].ID,
		Currency:    "EUR",
		SplitMethod: ledger.SplitEqual,
		CreatedBy:   group.Members[0].UserID,
	}
	for i, c := range cents {
		e.AmountCents += c
		e.Splits = append(e.Splits, models.ExpenseSplit{MemberID: group.Members[i].ID, AmountCents: c})
	}
	return e
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("dana@example.com", "Dana", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("lookup by email and id", func(t *testing.T) {
		byEmail, err := store.GetUserByEmail(ctx, "dana@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byEmail.ID != user.ID || byID.Email != user.Email {
			t.Errorf("lookups disagree: %+v vs %+v", byEmail, byID)
		}
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		dup := models.NewUser("dana@example.com", "Other Dana", "hash")
		if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if _, err := store.GetUserByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetUserByEmail(ctx, "nope@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createFlat(t, store)

	t.Run("CreateGroup generates IDs", func(t *testing.T) {
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		for _, m := range group.Members {
			if m.ID == "" || m.GroupID != group.ID {
				t.Errorf("member not populated: %+v", m)
			}
		}
	})

	t.Run("GetGroup keeps join order", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 3 {
			t.Fatalf("Expected 3 members, got %d", len(got.Members))
		}
		for i, m := range got.Members {
			if m.ID != group.Members[i].ID {
				t.Errorf("member %d: got %s, want %s", i, m.ID, group.Members[i].ID)
			}
		}
		if got.Members[1].UserID != "" {
			t.Errorf("Expected Bob to have no account, got %q", got.Members[1].UserID)
		}
	})

	t.Run("AddGroupMembers", func(t *testing.T) {
		added, err := store.AddGroupMembers(ctx, group.ID, []models.Member{{DisplayName: "Dana"}})
		if err != nil {
			t.Fatalf("AddGroupMembers failed: %v", err)
		}
		if added[0].ID == "" {
			t.Error("Expected member ID to be generated")
		}
		got, _ := store.GetGroup(ctx, group.ID)
		if len(got.Members) != 4 || got.Members[3].DisplayName != "Dana" {
			t.Errorf("Expected Dana appended, got %+v", got.Members)
		}

		if _, err := store.AddGroupMembers(ctx, "nope", []models.Member{{DisplayName: "X"}}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsForUser", func(t *testing.T) {
		groups, err := store.ListGroupsForUser(ctx, group.Members[0].UserID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Fatalf("unexpected groups: %+v", groups)
		}
		if len(groups[0].Members) == 0 {
			t.Error("Expected members to be loaded")
		}

		none, err := store.ListGroupsForUser(ctx, "stranger")
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected no groups, got %d", len(none))
		}
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		if _, err := store.GetGroup(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createFlat(t, store)

	t.Run("CreateExpense generates ID and title", func(t *testing.T) {
		e := equalSplit(group, 0, 334, 333, 333)
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if e.ID == "" {
			t.Error("Expected expense ID to be generated")
		}
		if e.Title != "Split with Alice, Bob, Charlie" {
			t.Errorf("Unexpected title: %q", e.Title)
		}
		if e.Version != 1 {
			t.Errorf("Expected version 1, got %d", e.Version)
		}
	})

	t.Run("GetExpense retrieves complete expense", func(t *testing.T) {
		bps := 2500
		original := &models.Expense{
			GroupID:     group.ID,
			Title:       "Internet",
			PayerID:     group.Members[1].ID,
			AmountCents: 4000,
			Currency:    "EUR",
			SplitMethod: ledger.SplitPercentage,
			Splits: []models.ExpenseSplit{
				{MemberID: group.Members[2].ID, AmountCents: 3000, PercentageBPS: ledger.BPS(7500)},
				{MemberID: group.Members[0].ID, AmountCents: 1000, PercentageBPS: &bps},
			},
		}
		if err := store.CreateExpense(ctx, original); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Title != "Internet" || got.AmountCents != 4000 || got.Currency != "EUR" {
			t.Errorf("fields mismatch: %+v", got)
		}
		if got.SplitMethod != ledger.SplitPercentage {
			t.Errorf("SplitMethod mismatch: got %s", got.SplitMethod)
		}
		if len(got.Splits) != 2 {
			t.Fatalf("Expected 2 splits, got %d", len(got.Splits))
		}
		// Splits come back in the order they were given, not by member.
		if got.Splits[0].MemberID != group.Members[2].ID {
			t.Errorf("split order not preserved: %+v", got.Splits)
		}
		if got.Splits[1].PercentageBPS == nil || *got.Splits[1].PercentageBPS != 2500 {
			t.Errorf("basis points not preserved: %+v", got.Splits[1])
		}
	})

	t.Run("GetExpense returns ErrNotFound", func(t *testing.T) {
		if _, err := store.GetExpense(ctx, "nonexistent-id"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateExpense replaces splits", func(t *testing.T) {
		e := equalSplit(group, 0, 500, 500)
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		e.AmountCents = 900
		e.Splits = []models.ExpenseSplit{
			{MemberID: group.Members[0].ID, AmountCents: 300},
			{MemberID: group.Members[1].ID, AmountCents: 300},
			{MemberID: group.Members[2].ID, AmountCents: 300},
		}
		if err := store.UpdateExpense(ctx, e); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		if e.Version != 2 {
			t.Errorf("Expected version 2, got %d", e.Version)
		}

		got, err := store.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.AmountCents != 900 || len(got.Splits) != 3 || got.Version != 2 {
			t.Errorf("update not applied: %+v", got)
		}
	})

	t.Run("UpdateExpense rejects stale version", func(t *testing.T) {
		e := equalSplit(group, 1, 200, 200)
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		stale := *e
		if err := store.UpdateExpense(ctx, e); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		if err := store.UpdateExpense(ctx, &stale); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}

		missing := equalSplit(group, 0, 100)
		missing.ID = "nonexistent-id"
		missing.Version = 1
		if err := store.UpdateExpense(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateExpense is atomic", func(t *testing.T) {
		e := equalSplit(group, 0, 250, 250)
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		// The duplicate member violates the split primary key halfway through.
		e.AmountCents = 600
		e.Splits = []models.ExpenseSplit{
			{MemberID: group.Members[0].ID, AmountCents: 300},
			{MemberID: group.Members[0].ID, AmountCents: 300},
		}
		if err := store.UpdateExpense(ctx, e); err == nil {
			t.Fatal("Expected UpdateExpense to fail")
		}

		got, err := store.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.AmountCents != 500 || len(got.Splits) != 2 || got.Version != 1 {
			t.Errorf("partial update leaked: %+v", got)
		}
	})

	t.Run("settlement title", func(t *testing.T) {
		e := &models.Expense{
			GroupID:     group.ID,
			PayerID:     group.Members[1].ID,
			AmountCents: 1000,
			Currency:    "EUR",
			SplitMethod: ledger.SplitSettlement,
			Splits:      []models.ExpenseSplit{{MemberID: group.Members[0].ID, AmountCents: 1000}},
		}
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if e.Title != "Payment to Alice" {
			t.Errorf("Unexpected title: %q", e.Title)
		}
	})

	t.Run("ListExpensesByGroup attaches splits", func(t *testing.T) {
		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 6 {
			t.Fatalf("Expected 6 expenses, got %d", len(expenses))
		}
		for _, e := range expenses {
			var sum int64
			for _, s := range e.Splits {
				sum += s.AmountCents
			}
			if sum != e.AmountCents {
				t.Errorf("expense %s: splits sum to %d, amount %d", e.ID, sum, e.AmountCents)
			}
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		e := equalSplit(group, 2, 100)
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, e.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteExpense(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestDeleteGroupCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := createFlat(t, store)

	e := equalSplit(group, 0, 100, 100)
	if err := store.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if err := store.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := store.GetExpense(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected expense to be deleted with its group, got %v", err)
	}

	var splits int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM expense_splits").Scan(&splits); err != nil {
		t.Fatalf("count splits: %v", err)
	}
	if splits != 0 {
		t.Errorf("Expected splits to cascade, %d left", splits)
	}
	if err := store.DeleteGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerateTitle(t *testing.T) {
	tests := []struct {
		method       ledger.SplitMethod
		names        []string
		wantContains string
	}{
		{ledger.SplitEqual, []string{}, "Expense -"},
		{ledger.SplitEqual, []string{"Alice"}, "Split with Alice"},
		{ledger.SplitCustom, []string{"Alice", "Bob"}, "Split with Alice, Bob"},
		{ledger.SplitEqual, []string{"Alice", "Bob", "Charlie"}, "Split with Alice, Bob, Charlie"},
		{ledger.SplitPercentage, []string{"Alice", "Bob", "Charlie", "Diana"}, "and 2 others"},
		{ledger.SplitSettlement, []string{"Bob"}, "Payment to Bob"},
	}

	for _, tt := range tests {
		t.Run(tt.wantContains, func(t *testing.T) {
			got := generateTitle(tt.method, tt.names)
			if !strings.Contains(got, tt.wantContains) {
				t.Errorf("generateTitle(%v) = %q, want to contain %q", tt.names, got, tt.wantContains)
			}
		})
	}
}
