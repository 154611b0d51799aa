package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/authz"
)

type authzApi struct {
	svc      authz.Service
	validate *validator.Validate
}

func registerAuthzAPI(g *echo.Group, deps ServerDeps) {
	api := authzApi{svc: deps.AuthzSvc, validate: deps.Validate}
	can := func(capability string) echo.MiddlewareFunc { return capableOf(api.svc, capability) }

	g.GET("/role", api.roles)

	mg := g.Group("/academy/member")
	mg.GET("", api.members, can(authz.ReadMember))
	mg.POST("", api.addMember, can(authz.CrudMember))
	mg.PUT("/:user_id", api.updateMember, can(authz.CrudMember))
	mg.DELETE("/:user_id", api.removeMember, can(authz.CrudMember))
}

func (api *authzApi) roles(ctx echo.Context) error {
	roles, err := api.svc.Roles(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying roles")
	}
	if roles == nil {
		roles = []authz.Role{}
	}
	return ctx.JSON(http.StatusOK, roles)
}

func (api *authzApi) members(ctx echo.Context) error {
	filter := authz.MemberFilter{
		Roles:  queryStrings(ctx, "roles", false),
		Status: ctx.QueryParam("status"),
	}
	page := bindPagination(ctx)

	members, count, err := api.svc.Members(ctx.Request().Context(), getContextAcademy(ctx), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []authz.ProfileAcademy{}
	}
	return respondList(ctx, page, count, members)
}

func (api *authzApi) addMember(ctx echo.Context) error {
	var data authz.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	member, err := api.svc.AddMember(ctx.Request().Context(), getContextAcademy(ctx), data)
	if err != nil {
		return errors.Wrap(err, "adding member")
	}
	return ctx.JSON(http.StatusCreated, member)
}

func (api *authzApi) updateMember(ctx echo.Context) error {
	userID, err := pathID(ctx, "user_id")
	if err != nil {
		return err
	}
	var data authz.UpdateMember
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMember")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	member, err := api.svc.UpdateMember(ctx.Request().Context(), getContextAcademy(ctx), userID, data)
	if err != nil {
		return errors.Wrap(err, "updating member")
	}
	return ctx.JSON(http.StatusOK, member)
}

func (api *authzApi) removeMember(ctx echo.Context) error {
	userID, err := pathID(ctx, "user_id")
	if err != nil {
		return err
	}
	if err = api.svc.RemoveMember(ctx.Request().Context(), getContextAcademy(ctx), userID); err != nil {
		return errors.Wrap(err, "removing member")
	}
	return ctx.NoContent(http.StatusNoContent)
}
