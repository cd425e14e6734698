package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/RaphaelMitas/flatsby-sub001/internal/auth"
	"github.com/RaphaelMitas/flatsby-sub001/internal/middleware"
	"github.com/RaphaelMitas/flatsby-sub001/internal/storage"
	"github.com/RaphaelMitas/flatsby-sub001/pkg/api"
	"github.com/RaphaelMitas/flatsby-sub001/pkg/api/apiconnect"
)

var _ apiconnect.AuthServiceHandler = (*AuthService)(nil)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	users         storage.UserStore
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, users storage.UserStore, jwtManager *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		users:         users,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

// Register creates a new user account and starts a session.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.DisplayName, req.Msg.Password)
	if err != nil {
		s.logger.WarnContext(ctx, "Registration failed", "error", err)
		return nil, connectError(ctx, s.logger, err)
	}

	token, expiresAt, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID)
	return connect.NewResponse(&api.RegisterResponse{
		User:      toAPIUser(user),
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}), nil
}

// Login authenticates a user and returns a session token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	if req.Msg.Email == "" || req.Msg.Password == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, auth.ErrInvalidCredentials)
	}

	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if err != nil {
		s.logger.WarnContext(ctx, "Login failed", "error", err)
		return nil, connectError(ctx, s.logger, err)
	}

	token, expiresAt, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	s.logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return connect.NewResponse(&api.LoginResponse{
		User:      toAPIUser(user),
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}), nil
}

// Me returns the authenticated user's account.
func (s *AuthService) Me(ctx context.Context, req *connect.Request[api.MeRequest]) (*connect.Response[api.MeResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}
	return connect.NewResponse(&api.MeResponse{User: toAPIUser(user)}), nil
}
