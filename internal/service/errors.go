package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/RaphaelMitas/flatsby-sub001/internal/auth"
	"github.com/RaphaelMitas/flatsby-sub001/internal/ledger"
	"github.com/RaphaelMitas/flatsby-sub001/internal/middleware"
	"github.com/RaphaelMitas/flatsby-sub001/internal/money"
	"github.com/RaphaelMitas/flatsby-sub001/internal/storage"
)

// LedgerMemberHeader names the response metadata key carrying the member a
// ledger error refers to.
const LedgerMemberHeader = "X-Ledger-Member"

var (
	errNotMember    = errors.New("not a member of this group")
	errMissingGroup = errors.New("group_id is required")
	errMissingName  = errors.New("name is required")
	errMissingID    = errors.New("expense_id is required")
)

// connectError maps domain errors to Connect codes. Ledger errors keep their
// kind and member in the response metadata so clients can highlight the
// offending field. Unexpected errors are logged and hidden.
func connectError(ctx context.Context, logger *slog.Logger, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	var ledgerErr *ledger.Error
	if errors.As(err, &ledgerErr) {
		ce := connect.NewError(connect.CodeInvalidArgument, ledgerErr)
		ce.Meta().Set(middleware.LedgerErrorHeader, ledgerErr.Kind.String())
		if ledgerErr.MemberID != "" {
			ce.Meta().Set(LedgerMemberHeader, ledgerErr.MemberID)
		}
		return ce
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, errNotMember):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrMissingName),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrInvalidCurrency),
		errors.Is(err, errMissingGroup),
		errors.Is(err, errMissingName),
		errors.Is(err, errMissingID):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, money.ErrCurrencyMismatch):
		ce := connect.NewError(connect.CodeInvalidArgument, err)
		ce.Meta().Set(middleware.LedgerErrorHeader, ledger.KindCurrencyMismatch.String())
		return ce
	case errors.Is(err, money.ErrOverflow):
		ce := connect.NewError(connect.CodeInvalidArgument, err)
		ce.Meta().Set(middleware.LedgerErrorHeader, ledger.KindAmountOverflow.String())
		return ce
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}

	logger.ErrorContext(ctx, "Unexpected error", "error", err)
	return connect.NewError(connect.CodeInternal, errors.New("internal error"))
}

// ledgerError builds a ledger error for checks made outside the ledger package.
func ledgerError(kind ledger.Kind, memberID, detail string) error {
	return &ledger.Error{Kind: kind, MemberID: memberID, Detail: detail}
}
