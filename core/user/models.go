package user

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/academia/core"
)

type User struct {
	ID           int64       `json:"id" db:"id"`
	Email        string      `json:"email" db:"email"`
	Username     null.String `json:"username" db:"username"`
	FirstName    string      `json:"first_name" db:"first_name"`
	LastName     string      `json:"last_name" db:"last_name"`
	IsActive     bool        `json:"is_active" db:"is_active"`
	IsStaff      bool        `json:"is_staff" db:"is_staff"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
	LastLogin    null.Time   `json:"last_login" db:"last_login"` // UTC
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// FullName returns "first last", falling back to the email.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Person returns the identity attached to error reports.
func (u User) Person() core.Person {
	return core.Person{ID: strconv.FormatInt(u.ID, 10), Username: u.Username.String, Email: u.Email}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username" validate:"omitempty,min=4,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	IsStaff         bool   `json:"is_staff"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Username        *string `json:"username" validate:"omitempty,min=4,alphanum_"`
	Email           *string `json:"email" validate:"omitempty,email"`
	IsActive        *bool   `json:"is_active"`
	Password        string  `json:"password" validate:"omitempty"`
	PasswordConfirm string  `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	for _, s := range []*string{uu.FirstName, uu.LastName} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	for _, s := range []*string{uu.Username, uu.Email} {
		if s != nil {
			*s = core.CleanString(*s, true /* lower */)
		}
	}
	return validate.Struct(uu)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

// GetFilter selects a single User; the first non-empty field wins.
type GetFilter struct {
	ID              int64
	Username        string
	Email           string
	UsernameOrEmail []string
}

type QueryFilter struct {
	Search      string    `query:"search"`
	IsActive    *bool     `query:"is_active"`
	IsStaff     *bool     `query:"is_staff"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsActive == nil && qf.IsStaff == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
