package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/RaphaelMitas/flatsby-sub001/internal/auth"
	"github.com/RaphaelMitas/flatsby-sub001/internal/middleware"
	"github.com/RaphaelMitas/flatsby-sub001/internal/storage/sqlite"
	"github.com/RaphaelMitas/flatsby-sub001/pkg/api"
	"github.com/RaphaelMitas/flatsby-sub001/pkg/api/apiconnect"
)

// testServer runs all three services over HTTP against a temp SQLite file,
// behind the real token interceptor.
type testServer struct {
	url   string
	store *sqlite.SQLiteStore
	auth  apiconnect.AuthServiceClient
}

// testUser is a registered account with clients that send its token.
type testUser struct {
	ID       string
	token    string
	groups   apiconnect.GroupServiceClient
	expenses apiconnect.ExpenseServiceClient
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	opts := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, apiconnect.PublicProcedures...),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, store, jwtManager, logger), opts))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, logger), opts))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store, logger), opts))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testServer{
		url:   server.URL,
		store: store,
		auth:  apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
	}
}

func bearer(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}

// register creates an account and returns clients authenticated as it.
func (s *testServer) register(t *testing.T, name string) *testUser {
	t.Helper()
	resp, err := s.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       name + "@example.com",
		DisplayName: name,
		Password:    "password-" + name,
	}))
	if err != nil {
		t.Fatalf("Register %s failed: %v", name, err)
	}
	opt := connect.WithInterceptors(bearer(resp.Msg.Token))
	return &testUser{
		ID:       resp.Msg.User.ID,
		token:    resp.Msg.Token,
		groups:   apiconnect.NewGroupServiceClient(http.DefaultClient, s.url, opt),
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, s.url, opt),
	}
}

// createGroup makes a group owned by u with extra members and returns it.
// Members are in order: owner first, then names.
func (u *testUser) createGroup(t *testing.T, names ...string) *api.Group {
	t.Helper()
	resp, err := u.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:        "Flat",
		MemberNames: names,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func expectCode(t *testing.T, err error, want connect.Code) *connect.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect.Error, got %T", err)
	}
	if connectErr.Code() != want {
		t.Fatalf("expected code %v, got %v: %v", want, connectErr.Code(), connectErr.Message())
	}
	return connectErr
}

// expectKind checks that err is a ledger validation failure of the given kind.
func expectKind(t *testing.T, err error, kind string) *connect.Error {
	t.Helper()
	connectErr := expectCode(t, err, connect.CodeInvalidArgument)
	if got := connectErr.Meta().Get(middleware.LedgerErrorHeader); got != kind {
		t.Fatalf("expected ledger error %s, got %q (%v)", kind, got, connectErr.Message())
	}
	return connectErr
}
