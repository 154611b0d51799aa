package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrNotFound       = core.NewNotFoundError("user-not-found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
	ErrInvalidReset   = core.NewValidationError(errors.New("invalid or expired password reset token"))
)

type (
	Repository interface {
		// CheckUniqueness returns ErrUsernameExists or ErrEmailExists when another user (not in excludedIDs) owns them.
		CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...int64) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of the names, username or email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]User, int, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		GetUsersByID(ctx context.Context, ids ...int64) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...int64) (int, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, uname, email string, excludedIDs ...int64) error
		Create(ctx context.Context, nu NewUser) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]User, int, error)
		GetByID(ctx context.Context, id int64) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		GetByUsernameOrEmail(ctx context.Context, uname string) (User, error)
		GetManyByID(ctx context.Context, ids ...int64) ([]User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		Update(ctx context.Context, usr User, uu UpdateUser) (User, error)
		Delete(ctx context.Context, ids ...int64) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
		tokens  *tokenGenerator
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
		tokens:  newTokenGenerator(conf.SecretKey, conf.PasswordResetTimeoutDelta),
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, uname, email string, excludedIDs ...int64) error {
	if err := svc.repo.CheckUniqueness(ctx, uname, email, excludedIDs...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return errors.Wrap(err, "checking uniqueness")
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.CheckUniqueness(ctx, nu.Username, nu.Email); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Username:  null.NewString(nu.Username, nu.Username != ""),
		Email:     nu.Email,
		IsActive:  true,
		IsStaff:   nu.IsStaff,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, page core.Pagination) ([]User, int, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering, page)
}

func (svc *service) GetByID(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: []string{core.CleanString(uname, true /* lower */)}})
}

func (svc *service) GetManyByID(ctx context.Context, ids ...int64) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return svc.repo.GetUsersByID(ctx, ids...)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = null.TimeFrom(time.Now().UTC())
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	uname := usr.Username.String
	if uu.Username != nil {
		uname = *uu.Username
	}
	email := usr.Email
	if uu.Email != nil && *uu.Email != "" {
		email = *uu.Email
	}
	if err := svc.CheckUniqueness(ctx, uname, email, usr.ID); err != nil {
		return User{}, err
	}

	if uu.FirstName != nil {
		usr.FirstName = *uu.FirstName
	}
	if uu.LastName != nil {
		usr.LastName = *uu.LastName
	}
	usr.Username = null.NewString(uname, uname != "")
	usr.Email = email
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *service) Delete(ctx context.Context, ids ...int64) error {
	if _, err := svc.repo.DeleteUsersByID(ctx, ids...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]interface{}{
			"Name":  usr.FullName(),
			"UID":   EncodeUID(usr),
			"Token": svc.tokens.makeToken(usr),
		},
	})
}

func (svc *service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	id, err := decodeUID(data.UID)
	if err != nil {
		return ErrInvalidReset
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return ErrInvalidReset
		}
		return err
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return ErrInvalidReset
	}

	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}
