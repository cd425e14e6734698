// Package api defines the request and response messages of the flatsby RPC
// services. Messages travel as JSON; see Codec.
//
// Request amounts are decimal strings ("12.34") so clients never send floats.
// Response amounts are integer cents plus a formatted display string.
package api

// User is a registered account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type MeRequest struct{}

type MeResponse struct {
	User *User `json:"user"`
}

// Member is a participant in a group. UserID is empty for members without an account.
type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	UserID      string `json:"user_id,omitempty"`
}

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []*Member `json:"members"`
	CreatedAt int64     `json:"created_at"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
	// MemberNames adds members without accounts. The caller is always added.
	MemberNames []string `json:"member_names,omitempty"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMembersRequest struct {
	GroupID string   `json:"group_id"`
	Names   []string `json:"names"`
}

type AddMembersResponse struct {
	Members []*Member `json:"members"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"group_id"`
}

type DeleteGroupResponse struct{}

// Participant is one requested share of an expense.
type Participant struct {
	MemberID string `json:"member_id"`
	// BasisPoints is the share for percentage splits (10000 = 100%).
	BasisPoints *int `json:"basis_points,omitempty"`
	// Amount is the fixed share for custom splits, as a decimal string.
	Amount string `json:"amount,omitempty"`
}

// Split is one computed share of an expense.
type Split struct {
	MemberID    string `json:"member_id"`
	AmountCents int64  `json:"amount_cents"`
	Display     string `json:"display"`
	BasisPoints *int   `json:"basis_points,omitempty"`
}

type Expense struct {
	ID          string   `json:"id"`
	GroupID     string   `json:"group_id"`
	Title       string   `json:"title"`
	PayerID     string   `json:"payer_member_id"`
	AmountCents int64    `json:"amount_cents"`
	Display     string   `json:"display"`
	Currency    string   `json:"currency"`
	SplitMethod string   `json:"split_method"`
	Splits      []*Split `json:"splits"`
	CreatedBy   string   `json:"created_by"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
	Version     int64    `json:"version"`
}

type PreviewSplitRequest struct {
	Total        string         `json:"total"`
	Currency     string         `json:"currency"`
	SplitMethod  string         `json:"split_method"`
	Participants []*Participant `json:"participants"`
}

type PreviewSplitResponse struct {
	Splits []*Split `json:"splits"`
}

type CreateExpenseRequest struct {
	GroupID      string         `json:"group_id"`
	Title        string         `json:"title,omitempty"`
	PayerID      string         `json:"payer_member_id"`
	Total        string         `json:"total"`
	Currency     string         `json:"currency"`
	SplitMethod  string         `json:"split_method"`
	Participants []*Participant `json:"participants"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// UpdateExpenseRequest replaces an expense. Version must be the version the
// client last read.
type UpdateExpenseRequest struct {
	ExpenseID    string         `json:"expense_id"`
	Version      int64          `json:"version"`
	Title        string         `json:"title,omitempty"`
	PayerID      string         `json:"payer_member_id"`
	Total        string         `json:"total"`
	Currency     string         `json:"currency"`
	SplitMethod  string         `json:"split_method"`
	Participants []*Participant `json:"participants"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID            string `json:"group_id"`
	IncludeSettlements bool   `json:"include_settlements,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type MemberBalance struct {
	MemberID    string `json:"member_id"`
	DisplayName string `json:"display_name"`
	PaidCents   int64  `json:"paid_cents"`
	OwedCents   int64  `json:"owed_cents"`
	NetCents    int64  `json:"net_cents"`
	NetDisplay  string `json:"net_display"`
}

type Debt struct {
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
	AmountCents  int64  `json:"amount_cents"`
	Display      string `json:"display"`
}

// CurrencyBalances holds a group's position in one currency. Currencies are
// never converted into each other.
type CurrencyBalances struct {
	Currency     string           `json:"currency"`
	Members      []*MemberBalance `json:"members"`
	Debts        []*Debt          `json:"debts"`
	SpentCents   int64            `json:"spent_cents"`
	SpentDisplay string           `json:"spent_display"`
}

type GetBalancesRequest struct {
	GroupID string `json:"group_id"`
	// Currency restricts the result to one currency when set.
	Currency string `json:"currency,omitempty"`
}

type GetBalancesResponse struct {
	Balances []*CurrencyBalances `json:"balances"`
}

type SettleUpRequest struct {
	GroupID      string `json:"group_id"`
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
}

type SettleUpResponse struct {
	Settlement *Expense `json:"settlement"`
}
