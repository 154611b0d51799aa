package sqlxrepos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/storage/database/dbtest"
)

func Test_authzRepository(t *testing.T) {
	db := dbtest.PrepareDB(t)
	repo := NewAuthzRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	for _, c := range []string{"read_job", "crud_job", "read_cohort"} {
		require.NoError(t, repo.UpsertCapability(ctx, authz.Capability{Slug: c}))
	}
	require.NoError(t, repo.UpsertCapability(ctx, authz.Capability{Slug: "read_job", Description: "Read jobs"}))

	academyID := dbtest.CreateAcademy(t, db, "downtown", authz.AcademyActive)
	otherID := dbtest.CreateAcademy(t, db, "uptown", authz.AcademyInactive)
	jane := dbtest.CreateUser(t, users, "Jane", "jane", "jane@doe.test", "", true, false)
	john := dbtest.CreateUser(t, users, "John", "john", "john@doe.test", "", true, false)

	t.Run("upsert role is idempotent", func(t *testing.T) {
		staff := authz.Role{Slug: "staff", Name: "Staff", Capabilities: []string{"read_job", "crud_job"}}
		require.NoError(t, repo.UpsertRole(ctx, staff))
		require.NoError(t, repo.UpsertRole(ctx, staff))

		role, err := repo.GetRole(ctx, "staff")
		require.NoError(t, err)
		assert.Equal(t, []string{"crud_job", "read_job"}, role.Capabilities)

		staff.Name = "Academy staff"
		staff.Capabilities = []string{"read_cohort"}
		require.NoError(t, repo.UpsertRole(ctx, staff))
		role, err = repo.GetRole(ctx, "staff")
		require.NoError(t, err)
		assert.Equal(t, "Academy staff", role.Name)
		assert.Equal(t, []string{"read_cohort"}, role.Capabilities)

		require.NoError(t, repo.UpsertRole(ctx, authz.Role{Slug: "student", Name: "Student"}))
		roles, err := repo.QueryRoles(ctx)
		require.NoError(t, err)
		if assert.Len(t, roles, 2) {
			assert.Equal(t, "staff", roles[0].Slug)
			assert.Empty(t, roles[1].Capabilities)
		}

		_, err = repo.GetRole(ctx, "lol")
		assert.Equal(t, errRoleNotFound, err)
	})

	t.Run("unknown capability aborts the upsert", func(t *testing.T) {
		err := repo.UpsertRole(ctx, authz.Role{Slug: "staff", Name: "Broken", Capabilities: []string{"read_cohort", "fly"}})
		assert.Error(t, err)

		role, err := repo.GetRole(ctx, "staff")
		require.NoError(t, err)
		assert.Equal(t, "Academy staff", role.Name)
		assert.Equal(t, []string{"read_cohort"}, role.Capabilities)
	})

	t.Run("academy status", func(t *testing.T) {
		st, err := repo.GetAcademyStatus(ctx, otherID)
		require.NoError(t, err)
		assert.Equal(t, authz.AcademyInactive, st.Status)

		_, err = repo.GetAcademyStatus(ctx, 404)
		assert.Equal(t, authz.ErrAcademyNotFound, err)
	})

	t.Run("members and capabilities", func(t *testing.T) {
		pa, err := repo.CreateMember(ctx, authz.ProfileAcademy{
			UserID: null.Int64From(jane.ID), AcademyID: academyID, Role: "staff", Status: authz.ProfileActive,
		})
		require.NoError(t, err)
		assert.NotZero(t, pa.ID)
		_, err = repo.CreateMember(ctx, authz.ProfileAcademy{
			UserID: null.Int64From(john.ID), AcademyID: academyID, Role: "student", Status: authz.ProfileInvited,
		})
		require.NoError(t, err)
		_, err = repo.CreateMember(ctx, authz.ProfileAcademy{
			Email: null.StringFrom("guest@doe.test"), AcademyID: academyID, Role: "staff", Status: authz.ProfileInvited,
		})
		require.NoError(t, err)

		tests := []struct {
			name       string
			userID     int64
			academyID  int64
			capability string
			want       bool
		}{
			{name: "granted by role", userID: jane.ID, academyID: academyID, capability: "read_cohort", want: true},
			{name: "dropped from role", userID: jane.ID, academyID: academyID, capability: "read_job"},
			{name: "role without capabilities", userID: john.ID, academyID: academyID, capability: "read_cohort"},
			{name: "other academy", userID: jane.ID, academyID: otherID, capability: "read_cohort"},
			{name: "unknown capability", userID: jane.ID, academyID: academyID, capability: "fly"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.HasCapability(ctx, tt.userID, tt.academyID, tt.capability)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			})
		}

		ids, err := repo.QueryUsersWithCapability(ctx, academyID, "read_cohort")
		require.NoError(t, err)
		assert.Equal(t, []int64{jane.ID}, ids)

		members, total, err := repo.QueryMembers(ctx, academyID, authz.MemberFilter{Roles: []string{"staff"}}, core.Pagination{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, members, 2)

		members, total, err = repo.QueryMembers(ctx, academyID, authz.MemberFilter{Status: authz.ProfileInvited}, core.Pagination{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, members, 2)
	})

	t.Run("update and delete member", func(t *testing.T) {
		pa, err := repo.GetMember(ctx, academyID, john.ID)
		require.NoError(t, err)
		pa.Role = "staff"
		pa.Status = authz.ProfileActive
		updated, err := repo.UpdateMember(ctx, pa)
		require.NoError(t, err)
		assert.Equal(t, "staff", updated.Role)

		ok, err := repo.HasCapability(ctx, john.ID, academyID, "read_cohort")
		require.NoError(t, err)
		assert.True(t, ok)

		profiles, err := repo.QueryUserProfiles(ctx, john.ID)
		require.NoError(t, err)
		assert.Len(t, profiles, 1)

		require.NoError(t, repo.DeleteMember(ctx, academyID, john.ID))
		assert.Equal(t, authz.ErrMemberNotFound, repo.DeleteMember(ctx, academyID, john.ID))
		_, err = repo.GetMember(ctx, academyID, john.ID)
		assert.Equal(t, authz.ErrMemberNotFound, err)
	})
}
