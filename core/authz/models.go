package authz

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

// ProfileAcademy statuses
const (
	ProfileInvited = "INVITED"
	ProfileActive  = "ACTIVE"
)

// Academy statuses, as seen by the capability check.
const (
	AcademyActive   = "ACTIVE"
	AcademyInactive = "INACTIVE"
	AcademyDeleted  = "DELETED"
)

type Capability struct {
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
}

type Role struct {
	Slug         string   `json:"slug" db:"slug"`
	Name         string   `json:"name" db:"name"`
	Capabilities []string `json:"capabilities" db:"-"`
}

// HasCapability reports whether the role grants cap.
func (r Role) HasCapability(cap string) bool {
	for _, c := range r.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// ProfileAcademy binds a user to an academy with a role.
type ProfileAcademy struct {
	ID        int64       `json:"id" db:"id"`
	UserID    null.Int64  `json:"user" db:"user_id"`
	AcademyID int64       `json:"academy" db:"academy_id"`
	Role      string      `json:"role" db:"role_slug"`
	Email     null.String `json:"email" db:"email"`
	FirstName null.String `json:"first_name" db:"first_name"`
	LastName  null.String `json:"last_name" db:"last_name"`
	Status    string      `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// AcademyStatus is the subset of an academy the capability check needs.
type AcademyStatus struct {
	ID     int64  `db:"id"`
	Status string `db:"status"`
}

// NewMember contains information needed to add a member to an academy.
type NewMember struct {
	UserID    int64  `json:"user" validate:"required_without=Email"`
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" validate:"required"`
}

func (nm *NewMember) Validate(validate *validator.Validate) error {
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.FirstName = core.CleanString(nm.FirstName)
	nm.LastName = core.CleanString(nm.LastName)
	nm.Role = core.CleanString(nm.Role, true /* lower */)
	return validate.Struct(nm)
}

// UpdateMember defines what may change on an academy member.
type UpdateMember struct {
	Role      string `json:"role" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (um *UpdateMember) Validate(validate *validator.Validate) error {
	um.Role = core.CleanString(um.Role, true /* lower */)
	return validate.Struct(um)
}

type MemberFilter struct {
	Roles  []string `query:"roles"`
	Status string   `query:"status"`
}
