package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-admin/meridian/internal/console"
	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/policy"
)

type roleGateway struct {
	roles  []directory.Role
	nextID int64
}

func (g *roleGateway) List(ctx context.Context) ([]directory.Role, error) {
	return append([]directory.Role(nil), g.roles...), nil
}

func (g *roleGateway) Create(ctx context.Context, draft directory.Role) (directory.Role, error) {
	g.nextID++
	draft.ID = g.nextID
	g.roles = append(g.roles, draft)
	return draft, nil
}

func (g *roleGateway) Update(ctx context.Context, id int64, draft directory.Role) (directory.Role, error) {
	for i, role := range g.roles {
		if role.ID == id {
			draft.ID = id
			g.roles[i] = draft
			return draft, nil
		}
	}
	return directory.Role{}, errors.New("missing")
}

func (g *roleGateway) Delete(ctx context.Context, id int64) error {
	for i, role := range g.roles {
		if role.ID == id {
			g.roles = append(g.roles[:i], g.roles[i+1:]...)
			return nil
		}
	}
	return errors.New("missing")
}

type noopAssoc struct{}

func (noopAssoc) Replace(ctx context.Context, ownerID int64, relatedIDs []int64) error { return nil }

func newRoleService(gw *roleGateway) *console.Service {
	return console.NewService(nil, console.Gateways{
		Roles:         gw,
		RoleResources: noopAssoc{},
	}, nil)
}

func TestRoleSaveUsesAssignedIDInSubjects(t *testing.T) {
	gw := &roleGateway{}
	svc := newRoleService(gw)

	err := runSave(context.Background(), svc, "roles", []string{"-name", "operator", "-permissions", "5,9"})
	require.NoError(t, err)

	require.Len(t, gw.roles, 1)
	saved := gw.roles[0]
	require.NotZero(t, saved.ID)
	require.Len(t, saved.Policies, 2)
	for _, tuple := range saved.Policies {
		require.Equal(t, "role::1", tuple.Subject, "subject carries the created id, never a placeholder")
	}
	require.Equal(t, policy.Encode(5), saved.Policies[0].Action)
	require.Equal(t, policy.Encode(9), saved.Policies[1].Action)
}

func TestRoleSaveUpdatePreservesOpaqueTuples(t *testing.T) {
	gw := &roleGateway{
		roles: []directory.Role{{
			ID:   3,
			Name: "operator",
			Policies: []policy.Tuple{
				{Subject: "legacy", Object: "*", Action: "feature-flag"},
				{Subject: "role::3", Object: "*", Action: policy.Encode(4)},
			},
		}},
		nextID: 3,
	}
	svc := newRoleService(gw)

	err := runSave(context.Background(), svc, "roles", []string{"-id", "3", "-name", "operator", "-permissions", "5"})
	require.NoError(t, err)

	saved := gw.roles[0]
	require.Len(t, saved.Policies, 2)
	require.Equal(t, "feature-flag", saved.Policies[0].Action, "opaque tuples survive the rewrite")
	require.Equal(t, policy.Encode(5), saved.Policies[1].Action, "permission tuples come from the submitted set")
	require.Equal(t, "role::3", saved.Policies[1].Subject)
}
