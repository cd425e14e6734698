// Package models defines the persisted entities of the household backend.
//
// # Entities
//
//   - User: a registered account (email + bcrypt password hash)
//   - Group: a household sharing expenses
//   - Member: a participant in one group, optionally linked to a User
//   - Expense / ExpenseSplit: one payment and how it is shared
//
// Members, not users, are what the ledger keys balances on. A member can exist
// without an account (a flatmate who never signed up); a user has at most one
// member per group.
//
// Settlements are stored as expenses with the settlement split method, so the
// expense table is the single log from which balances are derived. Balances
// and debts are never stored.
//
// Amounts are int64 cents. Percentages are basis points (10000 = 100%).
package models
