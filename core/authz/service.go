package authz

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

var (
	ErrMissingAcademy  = core.NewPermissionError("Missing academy_id parameter expected for the endpoint url or 'Academy' header")
	ErrAcademyInactive = core.NewPermissionError("This academy is not active")
	ErrAcademyDeleted  = core.NewPermissionError("This academy is deleted")
	ErrRoleNotFound    = core.NewSlugValidationError("role-not-found")
	ErrAlreadyMember   = core.NewSlugValidationError("already-member")
	ErrMemberNotFound  = core.NewNotFoundError("member-not-found")
	ErrAcademyNotFound = core.NewNotFoundError("academy-not-found")
)

type (
	Repository interface {
		UpsertCapability(ctx context.Context, c Capability) error
		// UpsertRole creates or renames the role and replaces its capabilities.
		UpsertRole(ctx context.Context, r Role) error
		QueryRoles(ctx context.Context) ([]Role, error)
		GetRole(ctx context.Context, slug string) (Role, error)
		GetAcademyStatus(ctx context.Context, academyID int64) (AcademyStatus, error)
		HasCapability(ctx context.Context, userID, academyID int64, capability string) (bool, error)
		QueryMembers(ctx context.Context, academyID int64, filter MemberFilter, page core.Pagination) ([]ProfileAcademy, int, error)
		GetMember(ctx context.Context, academyID, userID int64) (ProfileAcademy, error)
		CreateMember(ctx context.Context, p ProfileAcademy) (ProfileAcademy, error)
		UpdateMember(ctx context.Context, p ProfileAcademy) (ProfileAcademy, error)
		DeleteMember(ctx context.Context, academyID, userID int64) error
		QueryUserProfiles(ctx context.Context, userID int64) ([]ProfileAcademy, error)
		// QueryUsersWithCapability lists the users of the academy holding the capability.
		QueryUsersWithCapability(ctx context.Context, academyID int64, capability string) ([]int64, error)
	}

	Service interface {
		SeedDefaults(ctx context.Context) error
		Roles(ctx context.Context) ([]Role, error)
		// CheckCapability parses the academy ID (from the `Academy` header or the URL) and checks that
		// the user holds the capability in that academy. The parsed academy ID is returned.
		CheckCapability(ctx context.Context, userID int64, academy string, capability string) (int64, error)
		Members(ctx context.Context, academyID int64, filter MemberFilter, page core.Pagination) ([]ProfileAcademy, int, error)
		AddMember(ctx context.Context, academyID int64, nm NewMember) (ProfileAcademy, error)
		UpdateMember(ctx context.Context, academyID, userID int64, um UpdateMember) (ProfileAcademy, error)
		RemoveMember(ctx context.Context, academyID, userID int64) error
		UserProfiles(ctx context.Context, userID int64) ([]ProfileAcademy, error)
	}

	service struct {
		repo   Repository
		usrSvc user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service) Service {
	return &service{repo: repo, usrSvc: usrSvc}
}

// SeedDefaults creates or updates the default capabilities and roles.
func (svc *service) SeedDefaults(ctx context.Context) error {
	for _, c := range DefaultCapabilities {
		if err := svc.repo.UpsertCapability(ctx, c); err != nil {
			return errors.Wrapf(err, "upserting capability %s", c.Slug)
		}
	}
	for _, r := range DefaultRoles {
		if err := svc.repo.UpsertRole(ctx, r); err != nil {
			return errors.Wrapf(err, "upserting role %s", r.Slug)
		}
	}
	return nil
}

func (svc *service) Roles(ctx context.Context) ([]Role, error) {
	return svc.repo.QueryRoles(ctx)
}

func (svc *service) CheckCapability(ctx context.Context, userID int64, academy string, capability string) (int64, error) {
	academy = strings.TrimSpace(academy)
	if academy == "" {
		return 0, ErrMissingAcademy
	}
	academyID, err := strconv.ParseInt(academy, 10, 64)
	if err != nil {
		return 0, core.NewValidationError(errors.Errorf("Academy ID needs to be an integer: %s", academy))
	}

	capable, err := svc.repo.HasCapability(ctx, userID, academyID, capability)
	if err != nil {
		return 0, errors.Wrap(err, "checking capability")
	}
	if !capable {
		return 0, core.NewPermissionError(
			fmt.Sprintf("You (user: %d) don't have this capability: %s for academy %d", userID, capability, academyID))
	}

	status, err := svc.repo.GetAcademyStatus(ctx, academyID)
	if err != nil {
		return 0, errors.Wrap(err, "getting academy status")
	}
	switch status.Status {
	case AcademyDeleted:
		return 0, ErrAcademyDeleted
	case AcademyInactive:
		return 0, ErrAcademyInactive
	}
	return academyID, nil
}

func (svc *service) Members(ctx context.Context, academyID int64, filter MemberFilter, page core.Pagination) ([]ProfileAcademy, int, error) {
	return svc.repo.QueryMembers(ctx, academyID, filter, page)
}

func (svc *service) AddMember(ctx context.Context, academyID int64, nm NewMember) (ProfileAcademy, error) {
	if _, err := svc.repo.GetRole(ctx, nm.Role); err != nil {
		if core.IsNotFound(err) {
			return ProfileAcademy{}, ErrRoleNotFound
		}
		return ProfileAcademy{}, errors.Wrap(err, "getting role")
	}

	now := time.Now().UTC()
	p := ProfileAcademy{
		AcademyID: academyID,
		Role:      nm.Role,
		Email:     null.NewString(nm.Email, nm.Email != ""),
		FirstName: null.NewString(nm.FirstName, nm.FirstName != ""),
		LastName:  null.NewString(nm.LastName, nm.LastName != ""),
		Status:    ProfileInvited,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if nm.UserID != 0 {
		usr, err := svc.usrSvc.GetByID(ctx, nm.UserID)
		if err != nil {
			return ProfileAcademy{}, err
		}
		if _, err = svc.repo.GetMember(ctx, academyID, usr.ID); err == nil {
			return ProfileAcademy{}, ErrAlreadyMember
		} else if !core.IsNotFound(err) {
			return ProfileAcademy{}, errors.Wrap(err, "getting member")
		}
		p.UserID = null.Int64From(usr.ID)
		p.Email = null.StringFrom(usr.Email)
		if !p.FirstName.Valid {
			p.FirstName = null.NewString(usr.FirstName, usr.FirstName != "")
		}
		if !p.LastName.Valid {
			p.LastName = null.NewString(usr.LastName, usr.LastName != "")
		}
		p.Status = ProfileActive
	}

	return svc.repo.CreateMember(ctx, p)
}

func (svc *service) UpdateMember(ctx context.Context, academyID, userID int64, um UpdateMember) (ProfileAcademy, error) {
	p, err := svc.repo.GetMember(ctx, academyID, userID)
	if err != nil {
		return ProfileAcademy{}, err
	}
	if _, err = svc.repo.GetRole(ctx, um.Role); err != nil {
		if core.IsNotFound(err) {
			return ProfileAcademy{}, ErrRoleNotFound
		}
		return ProfileAcademy{}, errors.Wrap(err, "getting role")
	}
	p.Role = um.Role
	if um.FirstName != "" {
		p.FirstName = null.StringFrom(um.FirstName)
	}
	if um.LastName != "" {
		p.LastName = null.StringFrom(um.LastName)
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateMember(ctx, p)
}

func (svc *service) RemoveMember(ctx context.Context, academyID, userID int64) error {
	return svc.repo.DeleteMember(ctx, academyID, userID)
}

func (svc *service) UserProfiles(ctx context.Context, userID int64) ([]ProfileAcademy, error) {
	return svc.repo.QueryUserProfiles(ctx, userID)
}
