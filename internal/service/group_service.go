package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/RaphaelMitas/flatsby-sub001/internal/auth"
	"github.com/RaphaelMitas/flatsby-sub001/internal/middleware"
	"github.com/RaphaelMitas/flatsby-sub001/internal/models"
	"github.com/RaphaelMitas/flatsby-sub001/internal/storage"
	"github.com/RaphaelMitas/flatsby-sub001/pkg/api"
	"github.com/RaphaelMitas/flatsby-sub001/pkg/api/apiconnect"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService manages households and their members.
type GroupService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, logger: logger}
}

// memberNames trims names and drops empty ones.
func memberNames(names []string) []models.Member {
	var members []models.Member
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			members = append(members, models.Member{DisplayName: n})
		}
	}
	return members
}

// CreateGroup creates a group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connectError(ctx, s.logger, errMissingName)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	group := &models.Group{
		Name:    name,
		Members: append([]models.Member{{DisplayName: user.DisplayName, UserID: user.ID}}, memberNames(req.Msg.MemberNames)...),
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	s.logger.InfoContext(ctx, "Group created", "group_id", group.ID, "members", len(group.Members))
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	group, _, err := callerGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups returns the groups the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	out := make([]*api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMembers adds members without accounts to a group.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	group, _, err := callerGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}
	members := memberNames(req.Msg.Names)
	if len(members) == 0 {
		return nil, connectError(ctx, s.logger, errMissingName)
	}

	added, err := s.store.AddGroupMembers(ctx, group.ID, members)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	out := make([]*api.Member, len(added))
	for i, m := range added {
		out[i] = toAPIMember(m)
	}
	s.logger.InfoContext(ctx, "Members added", "group_id", group.ID, "count", len(added))
	return connect.NewResponse(&api.AddMembersResponse{Members: out}), nil
}

// DeleteGroup removes a group together with all of its expenses.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	group, _, err := callerGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, connectError(ctx, s.logger, err)
	}
	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		return nil, connectError(ctx, s.logger, err)
	}

	s.logger.InfoContext(ctx, "Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}
