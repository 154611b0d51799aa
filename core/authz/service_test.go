package authz

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

type memRepo struct {
	mu        sync.Mutex
	pk        int64
	caps      map[string]Capability
	roles     map[string]Role
	academies map[int64]string
	members   []ProfileAcademy
}

func newMemRepo() *memRepo {
	return &memRepo{
		caps:      make(map[string]Capability),
		roles:     make(map[string]Role),
		academies: make(map[int64]string),
	}
}

func (r *memRepo) UpsertCapability(_ context.Context, c Capability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[c.Slug] = c
	return nil
}

func (r *memRepo) UpsertRole(_ context.Context, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[role.Slug] = role
	return nil
}

func (r *memRepo) QueryRoles(context.Context) ([]Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roles := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, role)
	}
	return roles, nil
}

func (r *memRepo) GetRole(_ context.Context, slug string) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[slug]; ok {
		return role, nil
	}
	return Role{}, core.NewNotFoundError("role-not-found")
}

func (r *memRepo) GetAcademyStatus(_ context.Context, academyID int64) (AcademyStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status, ok := r.academies[academyID]; ok {
		return AcademyStatus{ID: academyID, Status: status}, nil
	}
	return AcademyStatus{}, ErrAcademyNotFound
}

func (r *memRepo) HasCapability(_ context.Context, userID, academyID int64, capability string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.members {
		if p.UserID.Int64 == userID && p.AcademyID == academyID && r.roles[p.Role].HasCapability(capability) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) QueryMembers(_ context.Context, academyID int64, filter MemberFilter, _ core.Pagination) ([]ProfileAcademy, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []ProfileAcademy
	for _, p := range r.members {
		if p.AcademyID == academyID && (filter.Status == "" || filter.Status == p.Status) {
			res = append(res, p)
		}
	}
	return res, len(res), nil
}

func (r *memRepo) GetMember(_ context.Context, academyID, userID int64) (ProfileAcademy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.members {
		if p.AcademyID == academyID && p.UserID.Int64 == userID {
			return p, nil
		}
	}
	return ProfileAcademy{}, ErrMemberNotFound
}

func (r *memRepo) CreateMember(_ context.Context, p ProfileAcademy) (ProfileAcademy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pk++
	p.ID = r.pk
	r.members = append(r.members, p)
	return p, nil
}

func (r *memRepo) UpdateMember(_ context.Context, p ProfileAcademy) (ProfileAcademy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.members {
		if r.members[i].ID == p.ID {
			r.members[i] = p
			return p, nil
		}
	}
	return ProfileAcademy{}, ErrMemberNotFound
}

func (r *memRepo) DeleteMember(_ context.Context, academyID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.members {
		if p.AcademyID == academyID && p.UserID.Int64 == userID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return nil
		}
	}
	return ErrMemberNotFound
}

func (r *memRepo) QueryUserProfiles(_ context.Context, userID int64) ([]ProfileAcademy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []ProfileAcademy
	for _, p := range r.members {
		if p.UserID.Int64 == userID {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r *memRepo) QueryUsersWithCapability(_ context.Context, academyID int64, capability string) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for _, p := range r.members {
		if p.AcademyID == academyID && p.UserID.Valid && r.roles[p.Role].HasCapability(capability) {
			ids = append(ids, p.UserID.Int64)
		}
	}
	return ids, nil
}

// userFinder only implements GetByID; the other user.Service methods are not used here.
type userFinder struct {
	user.Service
	users map[int64]user.User
}

func (f userFinder) GetByID(_ context.Context, id int64) (user.User, error) {
	if usr, ok := f.users[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func newTestService(t *testing.T) (Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	users := userFinder{users: map[int64]user.User{
		1: {ID: 1, Email: "ada@test.cd", FirstName: "Ada", LastName: "Lovelace"},
		2: {ID: 2, Email: "bob@test.cd", FirstName: "Bob"},
	}}
	svc := NewService(repo, users)
	require.NoError(t, svc.SeedDefaults(context.Background()))
	return svc, repo
}

func TestDefaultRoles(t *testing.T) {
	roles := make(map[string]Role, len(DefaultRoles))
	for _, r := range DefaultRoles {
		roles[r.Slug] = r
	}

	assert.Len(t, roles[RoleAdmin].Capabilities, len(DefaultCapabilities))
	assert.True(t, roles[RoleStaff].HasCapability(ReadAllCohort))
	assert.False(t, roles[RoleStaff].HasCapability(CrudCohort))
	assert.ElementsMatch(t, []string{CrudAssignment, ReadSyllabus, ReadAssignment}, roles[RoleStudent].Capabilities)
	assert.True(t, roles[RoleAcademyCoordinator].HasCapability(CrudSyllabus))
	assert.False(t, roles[RoleTeacher].HasCapability(CrudSyllabus))
}

func Test_service_SeedDefaults(t *testing.T) {
	svc, repo := newTestService(t)
	// seeding twice is harmless
	require.NoError(t, svc.SeedDefaults(context.Background()))
	assert.Len(t, repo.caps, len(DefaultCapabilities))
	assert.Len(t, repo.roles, len(DefaultRoles))
}

func Test_service_CheckCapability(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	repo.academies[1] = AcademyActive
	repo.academies[2] = AcademyInactive
	repo.academies[3] = AcademyDeleted
	for _, aid := range []int64{1, 2, 3} {
		_, err := svc.AddMember(ctx, aid, NewMember{UserID: 1, Role: RoleStaff})
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		academy   string
		cap       string
		wantID    int64
		wantErr   error
		wantInErr string
	}{
		{name: "missing academy", academy: " ", cap: ReadMember, wantErr: ErrMissingAcademy},
		{name: "not an integer", academy: "abc", cap: ReadMember, wantInErr: "Academy ID needs to be an integer: abc"},
		{
			name:      "no capability",
			academy:   "1",
			cap:       CrudMember,
			wantInErr: "You (user: 1) don't have this capability: crud_member for academy 1",
		},
		{
			name:      "no profile in academy",
			academy:   "4",
			cap:       ReadMember,
			wantInErr: "You (user: 1) don't have this capability: read_member for academy 4",
		},
		{name: "inactive academy", academy: "2", cap: ReadMember, wantErr: ErrAcademyInactive},
		{name: "deleted academy", academy: "3", cap: ReadMember, wantErr: ErrAcademyDeleted},
		{name: "capable", academy: "1", cap: ReadMember, wantID: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := svc.CheckCapability(ctx, 1, tt.academy, tt.cap)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantInErr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantInErr, err.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func Test_service_CheckCapabilityErrorKinds(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CheckCapability(context.Background(), 1, "x1", ReadMember)
	_, ok := err.(*core.ValidationError)
	assert.True(t, ok, "expected a ValidationError, got %T", err)

	_, err = svc.CheckCapability(context.Background(), 1, "1", ReadMember)
	_, ok = err.(*core.PermissionError)
	assert.True(t, ok, "expected a PermissionError, got %T", err)
}

func Test_service_Members(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.AddMember(ctx, 1, NewMember{UserID: 1, Role: "nope"})
	assert.Equal(t, ErrRoleNotFound, err)

	_, err = svc.AddMember(ctx, 1, NewMember{UserID: 99, Role: RoleStudent})
	assert.True(t, core.IsNotFound(err))

	member, err := svc.AddMember(ctx, 1, NewMember{UserID: 1, Role: RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, ProfileActive, member.Status)
	assert.Equal(t, "ada@test.cd", member.Email.String)
	assert.Equal(t, "Lovelace", member.LastName.String)

	_, err = svc.AddMember(ctx, 1, NewMember{UserID: 1, Role: RoleTeacher})
	assert.Equal(t, ErrAlreadyMember, err)

	invited, err := svc.AddMember(ctx, 1, NewMember{Email: "new@test.cd", FirstName: "New", Role: RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, ProfileInvited, invited.Status)
	assert.False(t, invited.UserID.Valid)

	members, cnt, err := svc.Members(ctx, 1, MemberFilter{Status: ProfileActive}, core.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)
	assert.Equal(t, member.ID, members[0].ID)

	updated, err := svc.UpdateMember(ctx, 1, 1, UpdateMember{Role: RoleTeacher, FirstName: "Augusta"})
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, updated.Role)
	assert.Equal(t, "Augusta", updated.FirstName.String)

	_, err = svc.UpdateMember(ctx, 1, 2, UpdateMember{Role: RoleTeacher})
	assert.Equal(t, ErrMemberNotFound, err)

	require.NoError(t, svc.RemoveMember(ctx, 1, 1))
	profiles, err := svc.UserProfiles(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
