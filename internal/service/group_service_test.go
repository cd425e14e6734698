package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/RaphaelMitas/flatsby-sub001/pkg/api"
)

func TestCreateGroupAddsCaller(t *testing.T) {
	s := setupTestServer(t)
	alice := s.register(t, "alice")

	group := alice.createGroup(t, "Bob", " ", "Charlie")

	if group.ID == "" {
		t.Fatal("expected group ID")
	}
	if len(group.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(group.Members))
	}
	if group.Members[0].UserID != alice.ID || group.Members[0].DisplayName != "alice" {
		t.Errorf("caller not first member: %+v", group.Members[0])
	}
	if group.Members[1].DisplayName != "Bob" || group.Members[1].UserID != "" {
		t.Errorf("unexpected second member: %+v", group.Members[1])
	}
}

func TestCreateGroupRequiresName(t *testing.T) {
	s := setupTestServer(t)
	alice := s.register(t, "alice")

	_, err := alice.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{Name: "  "}))
	expectCode(t, err, connect.CodeInvalidArgument)
}

func TestGroupAccess(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()
	alice := s.register(t, "alice")
	mallory := s.register(t, "mallory")
	group := alice.createGroup(t, "Bob")

	t.Run("member can read", func(t *testing.T) {
		resp, err := alice.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if resp.Msg.Group.Name != "Flat" {
			t.Errorf("expected Flat, got %q", resp.Msg.Group.Name)
		}
	})

	t.Run("outsider is denied", func(t *testing.T) {
		_, err := mallory.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
		expectCode(t, err, connect.CodePermissionDenied)

		_, err = mallory.expenses.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupID: group.ID}))
		expectCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := alice.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "nonexistent-id"}))
		expectCode(t, err, connect.CodeNotFound)
	})

	t.Run("ListGroups shows only own groups", func(t *testing.T) {
		mallory.createGroup(t)

		resp, err := alice.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != 1 || resp.Msg.Groups[0].ID != group.ID {
			t.Errorf("unexpected groups: %+v", resp.Msg.Groups)
		}
	})
}

func TestAddMembersAndDeleteGroup(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()
	alice := s.register(t, "alice")
	group := alice.createGroup(t)

	added, err := alice.groups.AddMembers(ctx, connect.NewRequest(&api.AddMembersRequest{
		GroupID: group.ID,
		Names:   []string{"Bob", "Charlie"},
	}))
	if err != nil {
		t.Fatalf("AddMembers failed: %v", err)
	}
	if len(added.Msg.Members) != 2 || added.Msg.Members[0].ID == "" {
		t.Fatalf("unexpected members: %+v", added.Msg.Members)
	}

	_, err = alice.groups.AddMembers(ctx, connect.NewRequest(&api.AddMembersRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodeInvalidArgument)

	if _, err := alice.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: group.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	_, err = alice.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodeNotFound)
}
