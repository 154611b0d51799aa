package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/notify"
)

type notifyApi struct {
	svc      notify.Service
	validate *validator.Validate
}

func registerNotifyAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := notifyApi{svc: deps.NotifySvc, validate: deps.Validate}
	can := func(capability string) echo.MiddlewareFunc { return capableOf(deps.AuthzSvc, capability) }

	ng := g.Group("/notify", jwt)
	ng.GET("/preview/:slug", api.preview, staffMiddleware(deps.UserSvc))
	ng.GET("/academy/mentorship/session/:session_id", api.retrieveSession, can(authz.ReadMentorship))
	ng.PUT("/academy/mentorship/session/:session_id", api.updateSession, can(authz.CrudMentorship))
}

// preview renders the html version unless ?format=text or ?format=json.
func (api *notifyApi) preview(ctx echo.Context) error {
	p, err := api.svc.Preview(ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "previewing template")
	}
	switch ctx.QueryParam("format") {
	case "json":
		return ctx.JSON(http.StatusOK, p)
	case "text":
		return ctx.String(http.StatusOK, p.Text)
	default:
		return ctx.HTML(http.StatusOK, p.HTML)
	}
}

func (api *notifyApi) retrieveSession(ctx echo.Context) error {
	id, err := pathID(ctx, "session_id")
	if err != nil {
		return err
	}
	s, err := api.svc.GetSession(ctx.Request().Context(), getContextAcademy(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting mentorship session")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *notifyApi) updateSession(ctx echo.Context) error {
	id, err := pathID(ctx, "session_id")
	if err != nil {
		return err
	}
	var data notify.UpdateSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.UpdateSessionStatus(ctx.Request().Context(), getContextAcademy(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating mentorship session")
	}
	return ctx.JSON(http.StatusOK, s)
}
