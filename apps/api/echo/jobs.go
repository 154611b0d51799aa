package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/jobs"
)

type jobsApi struct {
	svc      jobs.Service
	validate *validator.Validate
}

func registerJobsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := jobsApi{svc: deps.JobsSvc, validate: deps.Validate}
	can := func(capability string) echo.MiddlewareFunc { return capableOf(deps.AuthzSvc, capability) }

	jg := g.Group("/jobs/academy/job", jwt)
	jg.GET("", api.query, can(authz.ReadJob))
	jg.POST("", api.create, can(authz.CrudJob))
	jg.GET("/:job_id", api.retrieve, can(authz.ReadJob))
	jg.PUT("/:job_id", api.update, can(authz.CrudJob))
}

func (api *jobsApi) query(ctx echo.Context) error {
	filter := jobs.JobFilter{
		AcademyID: getContextAcademy(ctx),
		Remote:    queryBool(ctx, "remote"),
		Statuses:  queryStrings(ctx, "status", true),
	}
	page := bindPagination(ctx)

	list, count, err := api.svc.QueryJobs(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying jobs")
	}
	if list == nil {
		list = []jobs.Job{}
	}
	return respondList(ctx, page, count, list)
}

func (api *jobsApi) create(ctx echo.Context) error {
	var data jobs.NewJob
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewJob")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	job, err := api.svc.CreateJob(ctx.Request().Context(), getContextAcademy(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating job")
	}
	return ctx.JSON(http.StatusCreated, job)
}

func (api *jobsApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "job_id")
	if err != nil {
		return err
	}
	job, err := api.svc.GetJob(ctx.Request().Context(), getContextAcademy(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting job")
	}
	return ctx.JSON(http.StatusOK, job)
}

func (api *jobsApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "job_id")
	if err != nil {
		return err
	}
	var data jobs.UpdateJob
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateJob")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	job, err := api.svc.UpdateJob(ctx.Request().Context(), getContextAcademy(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating job")
	}
	return ctx.JSON(http.StatusOK, job)
}
