package platform

import (
	"context"
	"slices"

	"github.com/goliatone/go-dispenser/pkg/domain"
)

// Directory answers existence questions about chat-platform entities. Admin
// settings commands validate ids through it before persisting them.
type Directory interface {
	ChannelExists(ctx context.Context, id int64) (bool, error)
	RoleExists(ctx context.Context, id int64) (bool, error)
}

// Authorizer decides who may run admin commands. adminRoleID is the
// configured admin role, zero when none is set.
type Authorizer interface {
	IsAdmin(ctx context.Context, actor domain.Actor, adminRoleID int64) (bool, error)
}

// AllowAll accepts every id and every actor. Useful when the host has no
// directory access or the surface is already trusted.
type AllowAll struct{}

var (
	_ Directory  = AllowAll{}
	_ Authorizer = AllowAll{}
)

func (AllowAll) ChannelExists(context.Context, int64) (bool, error)         { return true, nil }
func (AllowAll) RoleExists(context.Context, int64) (bool, error)            { return true, nil }
func (AllowAll) IsAdmin(context.Context, domain.Actor, int64) (bool, error) { return true, nil }

// Static answers from fixed id sets. Owners are always admins; Members maps a
// role id to the actor ids holding it.
type Static struct {
	Channels []int64
	Roles    []int64
	Owners   []string
	Members  map[int64][]string
}

var (
	_ Directory  = Static{}
	_ Authorizer = Static{}
)

func (s Static) IsAdmin(_ context.Context, actor domain.Actor, adminRoleID int64) (bool, error) {
	if slices.Contains(s.Owners, actor.ID) {
		return true, nil
	}
	if adminRoleID == 0 {
		return false, nil
	}
	return slices.Contains(s.Members[adminRoleID], actor.ID), nil
}

func (s Static) ChannelExists(_ context.Context, id int64) (bool, error) {
	return contains(s.Channels, id), nil
}

func (s Static) RoleExists(_ context.Context, id int64) (bool, error) {
	return contains(s.Roles, id), nil
}

func contains(ids []int64, id int64) bool {
	return slices.Contains(ids, id)
}
