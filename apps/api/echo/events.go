package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/events"
	"github.com/trezcool/academia/core/user"
)

var errMissingWindow = core.NewValidationError(errors.New("Missing start or end in the querystring"))

type eventsApi struct {
	svc      events.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerEventsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := eventsApi{svc: deps.EventsSvc, usrSvc: deps.UserSvc, validate: deps.Validate}
	can := func(capability string) echo.MiddlewareFunc { return capableOf(deps.AuthzSvc, capability) }

	eg := g.Group("/events")
	eg.GET("/all", api.publicEvents)
	eg.POST("/eventbrite/webhook/:organization_id", api.eventbriteWebhook)

	jg := eg.Group("", jwt)
	jg.GET("/type", api.eventTypes)
	jg.GET("/academy/event", api.queryEvents, can(authz.ReadEvent))
	jg.POST("/academy/event", api.createEvent, can(authz.CrudEvent))
	jg.GET("/academy/event/:event_id", api.retrieveEvent, can(authz.ReadEvent))
	jg.PUT("/academy/event/:event_id", api.updateEvent, can(authz.CrudEvent))
	jg.GET("/academy/venues", api.venues, can(authz.ReadEvent))
	jg.GET("/academy/organization", api.organizations, can(authz.ReadOrganization))
	jg.GET("/academy/cohort/schedule", api.cohortSchedule, can(authz.ReadAllCohort))
}

func (api *eventsApi) publicEvents(ctx echo.Context) error {
	page := bindPagination(ctx)
	items, count, err := api.svc.PublicEvents(ctx.Request().Context(), page)
	if err != nil {
		return errors.Wrap(err, "querying public events")
	}
	if items == nil {
		items = []events.EventItem{}
	}
	return respondList(ctx, page, count, items)
}

func (api *eventsApi) eventTypes(ctx echo.Context) error {
	types, err := api.svc.EventTypes(ctx.Request().Context(), ctx.QueryParam("academy"))
	if err != nil {
		return errors.Wrap(err, "querying event types")
	}
	if types == nil {
		types = []events.EventType{}
	}
	return ctx.JSON(http.StatusOK, types)
}

func (api *eventsApi) queryEvents(ctx echo.Context) error {
	filter := events.EventFilter{
		AcademyID: getContextAcademy(ctx),
		City:      ctx.QueryParam("city"),
		Country:   ctx.QueryParam("country"),
		ZipCode:   ctx.QueryParam("zip_code"),
		Past:      ctx.QueryParam("past"),
		Statuses:  queryStrings(ctx, "status", true),
	}
	page := bindPagination(ctx)

	items, count, err := api.svc.QueryEvents(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if items == nil {
		items = []events.EventItem{}
	}
	return respondList(ctx, page, count, items)
}

func (api *eventsApi) createEvent(ctx echo.Context) error {
	var data events.EventPayload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EventPayload")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	event, err := api.svc.CreateEvent(ctx.Request().Context(), getContextAcademy(ctx), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, event)
}

func (api *eventsApi) retrieveEvent(ctx echo.Context) error {
	id, err := pathID(ctx, "event_id")
	if err != nil {
		return err
	}
	event, err := api.svc.GetEvent(ctx.Request().Context(), getContextAcademy(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting event")
	}
	return ctx.JSON(http.StatusOK, event)
}

func (api *eventsApi) updateEvent(ctx echo.Context) error {
	id, err := pathID(ctx, "event_id")
	if err != nil {
		return err
	}
	var data events.EventPayload
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EventPayload")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	event, err := api.svc.UpdateEvent(ctx.Request().Context(), getContextAcademy(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, event)
}

func (api *eventsApi) venues(ctx echo.Context) error {
	venues, err := api.svc.Venues(ctx.Request().Context(), getContextAcademy(ctx))
	if err != nil {
		return errors.Wrap(err, "querying venues")
	}
	if venues == nil {
		venues = []events.Venue{}
	}
	return ctx.JSON(http.StatusOK, venues)
}

func (api *eventsApi) organizations(ctx echo.Context) error {
	orgs, err := api.svc.Organizations(ctx.Request().Context(), getContextAcademy(ctx))
	if err != nil {
		return errors.Wrap(err, "querying organizations")
	}
	if orgs == nil {
		orgs = []events.Organization{}
	}
	return ctx.JSON(http.StatusOK, orgs)
}

func (api *eventsApi) cohortSchedule(ctx echo.Context) error {
	start, ok := queryTime(ctx, "start")
	if !ok {
		return errMissingWindow
	}
	end, ok := queryTime(ctx, "end")
	if !ok {
		return errMissingWindow
	}

	slots, err := api.svc.CohortSchedule(ctx.Request().Context(), getContextAcademy(ctx), start, end)
	if err != nil {
		return errors.Wrap(err, "getting cohort schedule")
	}
	if slots == nil {
		slots = []events.ScheduledTimeSlot{}
	}
	return ctx.JSON(http.StatusOK, slots)
}

// eventbriteWebhook acknowledges the call right away; the processing is queued.
func (api *eventsApi) eventbriteWebhook(ctx echo.Context) error {
	orgID, err := pathID(ctx, "organization_id")
	if err != nil {
		return err
	}
	var hook events.EBWebhook
	if err = ctx.Bind(&hook); err != nil {
		return errors.Wrap(err, "binding to EBWebhook")
	}

	if err = api.svc.QueueWebhook(ctx.Request().Context(), orgID, hook); err != nil {
		return errors.Wrap(err, "queueing eventbrite webhook")
	}
	return ctx.String(http.StatusOK, "ok")
}
