package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/monitoring"
)

type monitoringApi struct {
	svc      monitoring.Service
	validate *validator.Validate
}

func registerMonitoringAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := monitoringApi{svc: deps.MonitoringSvc, validate: deps.Validate}
	can := func(capability string) echo.MiddlewareFunc { return capableOf(deps.AuthzSvc, capability) }

	mg := g.Group("/monitoring", jwt)
	mg.GET("/application", api.applications, can(authz.ReadMonitoring))
	mg.GET("/endpoint", api.endpoints, can(authz.ReadMonitoring))
	mg.POST("/endpoint/:endpoint_id/check", api.checkEndpoint, can(authz.CrudMonitoring))
	mg.GET("/download", api.downloads, can(authz.ReadMonitoring))
	mg.POST("/download", api.exportCSV, can(authz.CrudMonitoring))
	mg.GET("/download/:download_id", api.retrieveDownload, can(authz.ReadMonitoring))
}

func (api *monitoringApi) applications(ctx echo.Context) error {
	apps, err := api.svc.QueryApplications(ctx.Request().Context(), getContextAcademy(ctx))
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []monitoring.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *monitoringApi) endpoints(ctx echo.Context) error {
	filter := monitoring.EndpointFilter{AcademyID: getContextAcademy(ctx)}
	if ids := queryIDs(ctx, "application"); len(ids) > 0 {
		filter.ApplicationID = ids[0]
	}

	eps, err := api.svc.QueryEndpoints(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying endpoints")
	}
	if eps == nil {
		eps = []monitoring.Endpoint{}
	}
	return ctx.JSON(http.StatusOK, eps)
}

func (api *monitoringApi) checkEndpoint(ctx echo.Context) error {
	id, err := pathID(ctx, "endpoint_id")
	if err != nil {
		return err
	}

	// the endpoint must belong to one of the academy applications
	eps, err := api.svc.QueryEndpoints(ctx.Request().Context(), monitoring.EndpointFilter{AcademyID: getContextAcademy(ctx)})
	if err != nil {
		return errors.Wrap(err, "querying endpoints")
	}
	found := false
	for _, ep := range eps {
		if ep.ID == id {
			found = true
			break
		}
	}
	if !found {
		return monitoring.ErrEndpointNotFound
	}

	ep, err := api.svc.RunEndpointCheck(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "checking endpoint")
	}
	return ctx.JSON(http.StatusOK, ep)
}

func (api *monitoringApi) downloads(ctx echo.Context) error {
	page := bindPagination(ctx)
	dls, count, err := api.svc.QueryDownloads(ctx.Request().Context(), getContextAcademy(ctx), page)
	if err != nil {
		return errors.Wrap(err, "querying downloads")
	}
	if dls == nil {
		dls = []monitoring.CSVDownload{}
	}
	return respondList(ctx, page, count, dls)
}

func (api *monitoringApi) exportCSV(ctx echo.Context) error {
	var data monitoring.NewDownload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDownload")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	dl, err := api.svc.ExportCSV(ctx.Request().Context(), getContextAcademy(ctx), data)
	if err != nil {
		return errors.Wrap(err, "exporting csv")
	}
	return ctx.JSON(http.StatusCreated, dl)
}

// retrieveDownload redirects to a signed URL of the file when ?raw=true.
func (api *monitoringApi) retrieveDownload(ctx echo.Context) error {
	id, err := pathID(ctx, "download_id")
	if err != nil {
		return err
	}

	if raw := queryBool(ctx, "raw"); raw != nil && *raw {
		url, err := api.svc.DownloadURL(ctx.Request().Context(), getContextAcademy(ctx), id)
		if err != nil {
			return errors.Wrap(err, "getting download url")
		}
		return ctx.Redirect(http.StatusFound, url)
	}

	dl, err := api.svc.GetDownload(ctx.Request().Context(), getContextAcademy(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting download")
	}
	return ctx.JSON(http.StatusOK, dl)
}
