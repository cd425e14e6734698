// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/RaphaelMitas/flatsby-sub001/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an update was based on a stale version.
	ErrConflict = errors.New("version conflict")
)

// Store defines the persistence operations the services need.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore

	// CreateGroup persists a group and its initial members.
	// ID, CreatedAt and member IDs are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members in join order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns the groups in which userID has a member.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMembers appends members to a group, populating their IDs.
	AddGroupMembers(ctx context.Context, groupID string, members []models.Member) ([]models.Member, error)

	// DeleteGroup removes a group with its members and expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists an expense and all of its splits atomically.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits in participant order.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces an expense row and all of its split rows in one
	// transaction. expense.Version must match the stored version.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense and its splits atomically.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup returns every expense of a group, settlements
	// included, oldest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}

// UserStore covers account persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
