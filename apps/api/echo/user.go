package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/user"
)

type userApi struct {
	svc      user.Service
	authzSvc authz.Service
	conf     *core.Config
	logger   core.Logger
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{
		svc:      deps.UserSvc,
		authzSvc: deps.AuthzSvc,
		conf:     deps.Conf,
		logger:   deps.Logger,
		validate: deps.Validate,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	jg := ag.Group("", jwt)
	jg.POST("/token-refresh", api.refreshToken)
	jg.GET("/user/me", api.me)

	// staff only
	staff := staffMiddleware(api.svc)
	jg.GET("/user", api.query, staff)
	jg.POST("/user", api.create, staff)
	jg.DELETE("/user", api.destroyMultiple, staff)
	jg.GET("/user/:user_id", api.retrieve, staff)
	jg.PUT("/user/:user_id", api.update, staff)
	jg.DELETE("/user/:user_id", api.destroy, staff)

	registerAuthzAPI(jg, deps)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.identifier(), data.Password, api.svc, api.conf)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims, api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || core.IsNotFound(err)) {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	profiles, err := api.authzSvc.UserProfiles(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting user profiles")
	}
	if profiles == nil {
		profiles = []authz.ProfileAcademy{}
	}
	return ctx.JSON(http.StatusOK, MeResponse{User: usr, Roles: profiles})
}

func (api *userApi) query(ctx echo.Context) error {
	filter := &user.QueryFilter{
		Search:   ctx.QueryParam("search"),
		IsActive: queryBool(ctx, "is_active"),
		IsStaff:  queryBool(ctx, "is_staff"),
	}
	filter.CreatedFrom, _ = queryTime(ctx, "created_from")
	filter.CreatedTo, _ = queryTime(ctx, "created_to")
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPagination(ctx)

	users, count, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return respondList(ctx, page, count, users)
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.pathUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, err := api.pathUser(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if usr, err = api.svc.Update(ctx.Request().Context(), usr, data); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, err := api.pathUser(ctx)
	if err != nil {
		return err
	}

	// Say No to Suicide! ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if usr.ID == ctxUsr.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) destroyMultiple(ctx echo.Context) error {
	ids := queryIDs(ctx, "id")
	if len(ids) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}

	// Say No to Suicide! ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	for _, id := range ids {
		if id == ctxUsr.ID {
			return errHttpForbidden
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) pathUser(ctx echo.Context) (user.User, error) {
	id, err := pathID(ctx, "user_id")
	if err != nil {
		return user.User{}, errHttpNotFound
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if core.IsNotFound(err) {
			return user.User{}, errHttpNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, nil
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required_without=Email"`
		Email    string `json:"email" validate:"omitempty,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	MeResponse struct {
		user.User
		Roles []authz.ProfileAcademy `json:"roles"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

// identifier is the username, or the email when no username was given.
func (lr LoginRequest) identifier() string {
	if lr.Username != "" {
		return lr.Username
	}
	return strings.ToLower(lr.Email)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
