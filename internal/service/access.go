package service

import (
	"context"
	"fmt"

	"connectrpc.com/connect"

	"github.com/RaphaelMitas/flatsby-sub001/internal/auth"
	"github.com/RaphaelMitas/flatsby-sub001/internal/middleware"
	"github.com/RaphaelMitas/flatsby-sub001/internal/models"
	"github.com/RaphaelMitas/flatsby-sub001/internal/storage"
)

// callerGroup loads a group and checks that the authenticated user has a
// member in it. It returns the group and the caller's member.
func callerGroup(ctx context.Context, store storage.Store, groupID string) (*models.Group, *models.Member, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	if groupID == "" {
		return nil, nil, errMissingGroup
	}

	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	member := group.MemberForUser(userID)
	if member == nil {
		return nil, nil, fmt.Errorf("group %s: %w", groupID, errNotMember)
	}
	return group, member, nil
}
