package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/marketing"
	"github.com/trezcool/academia/core/user"
)

type marketingApi struct {
	svc      marketing.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerMarketingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := marketingApi{svc: deps.MarketingSvc, usrSvc: deps.UserSvc, validate: deps.Validate}
	can := func(capability string) echo.MiddlewareFunc { return capableOf(deps.AuthzSvc, capability) }

	mg := g.Group("/marketing")
	mg.POST("/lead", api.createLead)
	mg.GET("/downloadable", api.downloadables)
	mg.GET("/downloadable/:slug", api.retrieveDownloadable)

	jg := mg.Group("/academy", jwt)
	jg.GET("/lead", api.queryLeads, can(authz.ReadLead))
	jg.POST("/downloadable", api.saveDownloadable, can(authz.CrudDownloadable))
}

func (api *marketingApi) createLead(ctx echo.Context) error {
	var data marketing.NewLead
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLead")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	lead, err := api.svc.CreateLead(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating lead")
	}
	return ctx.JSON(http.StatusCreated, lead)
}

func (api *marketingApi) queryLeads(ctx echo.Context) error {
	filter := marketing.LeadFilter{
		AcademyID:       getContextAcademy(ctx),
		StorageStatuses: queryStrings(ctx, "storage_status", true),
		Location:        ctx.QueryParam("location"),
		Course:          ctx.QueryParam("course"),
	}
	page := bindPagination(ctx)

	leads, count, err := api.svc.QueryLeads(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying leads")
	}
	if leads == nil {
		leads = []marketing.FormEntry{}
	}
	return respondList(ctx, page, count, leads)
}

func (api *marketingApi) downloadables(ctx echo.Context) error {
	filter := marketing.DownloadableFilter{Active: queryBool(ctx, "active")}
	if ids := queryIDs(ctx, "academy"); len(ids) > 0 {
		filter.AcademyID = ids[0]
	}

	dls, err := api.svc.QueryDownloadables(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying downloadables")
	}
	if dls == nil {
		dls = []marketing.Downloadable{}
	}
	return ctx.JSON(http.StatusOK, dls)
}

func (api *marketingApi) retrieveDownloadable(ctx echo.Context) error {
	dl, err := api.svc.GetDownloadable(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "getting downloadable")
	}
	return ctx.JSON(http.StatusOK, dl)
}

func (api *marketingApi) saveDownloadable(ctx echo.Context) error {
	var data marketing.NewDownloadable
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDownloadable")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	dl, err := api.svc.SaveDownloadable(ctx.Request().Context(), getContextAcademy(ctx), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "saving downloadable")
	}
	return ctx.JSON(http.StatusOK, dl)
}
