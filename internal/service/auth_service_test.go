package service

import (
	"context"
	"net/http"
	"testing"

	"connectrpc.com/connect"

	"github.com/RaphaelMitas/flatsby-sub001/pkg/api"
	"github.com/RaphaelMitas/flatsby-sub001/pkg/api/apiconnect"
)

func TestRegisterAndLogin(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()

	reg, err := s.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
		Password:    "long-password",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" || reg.Msg.User.Email != "alice@example.com" {
		t.Errorf("unexpected register response: %+v", reg.Msg)
	}

	login, err := s.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "long-password",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.ID != reg.Msg.User.ID {
		t.Errorf("login user %s, registered %s", login.Msg.User.ID, reg.Msg.User.ID)
	}

	t.Run("Me with token", func(t *testing.T) {
		client := apiconnect.NewAuthServiceClient(http.DefaultClient, s.url,
			connect.WithInterceptors(bearer(login.Msg.Token)))
		me, err := client.Me(ctx, connect.NewRequest(&api.MeRequest{}))
		if err != nil {
			t.Fatalf("Me failed: %v", err)
		}
		if me.Msg.User.DisplayName != "Alice" {
			t.Errorf("expected Alice, got %q", me.Msg.User.DisplayName)
		}
	})

	t.Run("Me without token", func(t *testing.T) {
		_, err := s.auth.Me(ctx, connect.NewRequest(&api.MeRequest{}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("Me with bad token", func(t *testing.T) {
		client := apiconnect.NewAuthServiceClient(http.DefaultClient, s.url,
			connect.WithInterceptors(bearer("not-a-token")))
		_, err := client.Me(ctx, connect.NewRequest(&api.MeRequest{}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := s.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       "alice@example.com",
			DisplayName: "Other",
			Password:    "long-password",
		}))
		expectCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := s.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email:       "bob@example.com",
			DisplayName: "Bob",
			Password:    "short",
		}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong-password",
		}))
		expectCode(t, err, connect.CodeUnauthenticated)
	})
}
