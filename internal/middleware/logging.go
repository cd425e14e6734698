package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// Ledger validation failures carry their kind in the response metadata, which
// is logged alongside the code.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", procedure,
				"user_id", GetUserID(ctx),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if reqID := chimw.GetReqID(ctx); reqID != "" {
				attrs = append(attrs, "request_id", reqID)
			}

			if err == nil {
				logger.InfoContext(ctx, "RPC ok", attrs...)
				return resp, nil
			}

			var connectErr *connect.Error
			if errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal {
				attrs = append(attrs, "code", connectErr.Code(), "error", connectErr.Message())
				if kind := connectErr.Meta().Get(LedgerErrorHeader); kind != "" {
					attrs = append(attrs, "kind", kind)
				}
				logger.WarnContext(ctx, "RPC error", attrs...)
			} else {
				attrs = append(attrs, "error", err)
				logger.ErrorContext(ctx, "RPC error", attrs...)
			}
			return resp, err
		}
	}
}
