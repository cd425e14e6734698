package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RaphaelMitas/flatsby-sub001/internal/ledger"
	"github.com/RaphaelMitas/flatsby-sub001/internal/models"
	"github.com/RaphaelMitas/flatsby-sub001/internal/money"
	"github.com/RaphaelMitas/flatsby-sub001/internal/storage"
)

const expenseColumns = `id, group_id, title, payer_member_id, amount_cents, currency, split_method,
	created_by, created_at, updated_at, version`

// CreateExpense persists a new expense and its splits in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = expense.CreatedAt
	expense.Version = 1

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if expense.Title == "" {
		if expense.Title, err = titleFor(ctx, tx, expense); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Title, expense.PayerID, expense.AmountCents,
		string(expense.Currency), string(expense.SplitMethod), expense.CreatedBy,
		expense.CreatedAt, expense.UpdatedAt, expense.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateExpense replaces the expense row and all of its splits. The update
// only applies if expense.Version still matches the stored row.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if expense.Title == "" {
		if expense.Title, err = titleFor(ctx, tx, expense); err != nil {
			return err
		}
	}
	updatedAt := time.Now().Unix()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses
		 SET title = ?, payer_member_id = ?, amount_cents = ?, currency = ?, split_method = ?,
		     updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		expense.Title, expense.PayerID, expense.AmountCents, string(expense.Currency),
		string(expense.SplitMethod), updatedAt, expense.ID, expense.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n == 0 {
		var version int64
		err := tx.QueryRowContext(ctx, "SELECT version FROM expenses WHERE id = ?", expense.ID).Scan(&version)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check expense version: %w", err)
		}
		return fmt.Errorf("expense %s is at version %d, update based on %d: %w",
			expense.ID, version, expense.Version, storage.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}
	if err := insertSplits(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	expense.UpdatedAt = updatedAt
	expense.Version++
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i := range expense.Splits {
		split := &expense.Splits[i]
		split.ExpenseID = expense.ID

		var bps any
		if split.PercentageBPS != nil {
			bps = *split.PercentageBPS
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_splits (expense_id, member_id, position, amount_cents, percentage_bps)
			 VALUES (?, ?, ?, ?, ?)`,
			expense.ID, split.MemberID, i, split.AmountCents, bps,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// titleFor builds a title from the display names of the split members.
func titleFor(ctx context.Context, q queryer, expense *models.Expense) (string, error) {
	names := make([]string, 0, len(expense.Splits))
	for _, split := range expense.Splits {
		var name string
		err := q.QueryRowContext(ctx,
			"SELECT display_name FROM group_members WHERE id = ?", split.MemberID,
		).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to look up member name: %w", err)
		}
		names = append(names, name)
	}
	return generateTitle(expense.SplitMethod, names), nil
}

// DeleteExpense removes an expense; its splits cascade in the same statement.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, member_id, amount_cents, percentage_bps
		 FROM expense_splits WHERE expense_id = ? ORDER BY position`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, err
		}
		expense.Splits = append(expense.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses of a group, oldest first.
// Splits are loaded with a single query and attached afterwards.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx,
		`SELECT s.expense_id, s.member_id, s.amount_cents, s.percentage_bps
		 FROM expense_splits s JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ?
		 ORDER BY s.expense_id, s.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		split, err := scanSplit(splitRows)
		if err != nil {
			return nil, err
		}
		if expense, ok := byID[split.ExpenseID]; ok {
			expense.Splits = append(expense.Splits, split)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return expenses, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, error) {
	e := &models.Expense{}
	var currency, method string
	err := row.Scan(&e.ID, &e.GroupID, &e.Title, &e.PayerID, &e.AmountCents, &currency, &method,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt, &e.Version)
	if err != nil {
		return nil, err
	}
	e.Currency = money.Code(currency)
	e.SplitMethod = ledger.SplitMethod(method)
	return e, nil
}

func scanSplit(row scanner) (models.ExpenseSplit, error) {
	var split models.ExpenseSplit
	var bps sql.NullInt64
	if err := row.Scan(&split.ExpenseID, &split.MemberID, &split.AmountCents, &bps); err != nil {
		return split, fmt.Errorf("failed to scan split: %w", err)
	}
	if bps.Valid {
		v := int(bps.Int64)
		split.PercentageBPS = &v
	}
	return split, nil
}
