package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/admissions"
	"github.com/trezcool/academia/core/authz"
)

type admissionsApi struct {
	svc      admissions.Service
	validate *validator.Validate
}

func registerAdmissionsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := admissionsApi{svc: deps.AdmissionsSvc, validate: deps.Validate}
	can := func(capability string) echo.MiddlewareFunc { return capableOf(deps.AuthzSvc, capability) }

	ag := g.Group("/admissions")
	ag.GET("/academy", api.publicAcademies)

	jg := ag.Group("", jwt)
	jg.GET("/academy/me", api.myAcademy, can(authz.ReadMyAcademy))
	jg.PUT("/academy/me", api.updateMyAcademy, can(authz.CrudMyAcademy))

	jg.GET("/syllabus", api.querySyllabi, can(authz.ReadSyllabus))
	jg.POST("/syllabus", api.createSyllabus, can(authz.CrudSyllabus))
	jg.GET("/syllabus/:syllabus_id", api.retrieveSyllabus, can(authz.ReadSyllabus))
	jg.PUT("/syllabus/:syllabus_id", api.updateSyllabus, can(authz.CrudSyllabus))

	sg := jg.Group("/academy/schedule")
	sg.GET("", api.querySchedules, can(authz.ReadCertificate))
	sg.POST("", api.createSchedule, can(authz.CrudCertificate))
	sg.DELETE("", api.deleteSchedules, can(authz.CrudCertificate))
	sg.GET("/:certificate_id", api.retrieveSchedule, can(authz.ReadCertificate))
	sg.PUT("/:certificate_id", api.updateSchedule, can(authz.CrudCertificate))
	sg.GET("/:certificate_id/timeslot", api.scheduleTimeSlots, can(authz.ReadCertificate))
	sg.POST("/:certificate_id/timeslot", api.addScheduleTimeSlot, can(authz.CrudCertificate))
	sg.DELETE("/:certificate_id/timeslot/:timeslot_id", api.deleteScheduleTimeSlot, can(authz.CrudCertificate))

	cg := jg.Group("/academy/cohort")
	cg.GET("", api.queryCohorts, can(authz.ReadAllCohort))
	cg.POST("", api.createCohort, can(authz.CrudCohort))
	cg.GET("/user", api.queryCohortUsers, can(authz.ReadAllCohort))
	cg.GET("/timeslot", api.academyCohortTimeSlots, can(authz.ReadAllCohort))
	cg.POST("/sync/timeslot", api.syncCohortTimeSlots, can(authz.CrudCertificate))
	cg.GET("/:cohort_id", api.retrieveCohort, can(authz.ReadAllCohort))
	cg.PUT("/:cohort_id", api.updateCohort, can(authz.CrudCohort))
	cg.DELETE("/:cohort_id", api.deleteCohort, can(authz.CrudCohort))
	cg.GET("/:cohort_id/timeslot", api.cohortTimeSlots, can(authz.ReadAllCohort))
	cg.POST("/:cohort_id/timeslot", api.addCohortTimeSlot, can(authz.CrudCohort))
	cg.DELETE("/:cohort_id/timeslot/:timeslot_id", api.deleteCohortTimeSlot, can(authz.CrudCohort))
	cg.POST("/:cohort_id/user", api.addCohortUser, can(authz.CrudCohort))
	cg.DELETE("/:cohort_id/user/:user_id", api.removeCohortUser, can(authz.CrudCohort))
}

// Academies

func (api *admissionsApi) publicAcademies(ctx echo.Context) error {
	academies, err := api.svc.PublicAcademies(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying academies")
	}
	if academies == nil {
		academies = []admissions.Academy{}
	}
	return ctx.JSON(http.StatusOK, academies)
}

func (api *admissionsApi) myAcademy(ctx echo.Context) error {
	academy, err := api.svc.GetAcademy(ctx.Request().Context(), getContextAcademy(ctx))
	if err != nil {
		return errors.Wrap(err, "getting academy")
	}
	return ctx.JSON(http.StatusOK, academy)
}

func (api *admissionsApi) updateMyAcademy(ctx echo.Context) error {
	var data admissions.UpdateAcademy
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAcademy")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	academy, err := api.svc.UpdateAcademy(ctx.Request().Context(), getContextAcademy(ctx), data)
	if err != nil {
		return errors.Wrap(err, "updating academy")
	}
	return ctx.JSON(http.StatusOK, academy)
}

// Syllabi

func (api *admissionsApi) querySyllabi(ctx echo.Context) error {
	page := bindPagination(ctx)
	syllabi, count, err := api.svc.QuerySyllabi(ctx.Request().Context(), getContextAcademy(ctx), page)
	if err != nil {
		return errors.Wrap(err, "querying syllabi")
	}
	if syllabi == nil {
		syllabi = []admissions.Syllabus{}
	}
	return respondList(ctx, page, count, syllabi)
}

func (api *admissionsApi) createSyllabus(ctx echo.Context) error {
	var data admissions.NewSyllabus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSyllabus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	syllabus, err := api.svc.CreateSyllabus(ctx.Request().Context(), getContextAcademy(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating syllabus")
	}
	return ctx.JSON(http.StatusCreated, syllabus)
}

func (api *admissionsApi) retrieveSyllabus(ctx echo.Context) error {
	id, err := pathID(ctx, "syllabus_id")
	if err != nil {
		return err
	}
	syllabus, err := api.svc.GetSyllabus(ctx.Request().Context(), getContextAcademy(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting syllabus")
	}
	return ctx.JSON(http.StatusOK, syllabus)
}

func (api *admissionsApi) updateSyllabus(ctx echo.Context) error {
	id, err := pathID(ctx, "syllabus_id")
	if err != nil {
		return err
	}
	var data admissions.UpdateSyllabus
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSyllabus")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	syllabus, err := api.svc.UpdateSyllabus(ctx.Request().Context(), getContextAcademy(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating syllabus")
	}
	return ctx.JSON(http.StatusOK, syllabus)
}

// Schedules

// ScheduleItem is the list representation of a SyllabusSchedule.
type ScheduleItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Syllabus    int64  `json:"syllabus"`
}

func (api *admissionsApi) querySchedules(ctx echo.Context) error {
	filter := admissions.ScheduleFilter{
		AcademyID:    getContextAcademy(ctx),
		SyllabusSlug: ctx.QueryParam("syllabus_slug"),
	}
	if ids := queryIDs(ctx, "syllabus_id"); len(ids) > 0 {
		filter.SyllabusID = ids[0]
	}

	schedules, err := api.svc.QuerySchedules(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying schedules")
	}
	items := make([]ScheduleItem, 0, len(schedules))
	for _, s := range schedules {
		items = append(items, ScheduleItem{ID: s.ID, Name: s.Name, Description: s.Description, Syllabus: s.SyllabusID})
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *admissionsApi) createSchedule(ctx echo.Context) error {
	var data admissions.NewSchedule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchedule")
	}
	// unknown relations are reported before invalid fields
	if err := api.svc.CheckScheduleRelations(ctx.Request().Context(), data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	schedule, err := api.svc.CreateSchedule(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating schedule")
	}
	return ctx.JSON(http.StatusCreated, schedule)
}

func (api *admissionsApi) retrieveSchedule(ctx echo.Context) error {
	id, err := pathID(ctx, "certificate_id")
	if err != nil {
		return err
	}
	schedule, err := api.svc.GetSchedule(ctx.Request().Context(), getContextAcademy(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting schedule")
	}
	return ctx.JSON(http.StatusOK, schedule)
}

func (api *admissionsApi) updateSchedule(ctx echo.Context) error {
	id, err := pathID(ctx, "certificate_id")
	if err != nil {
		return err
	}
	var data admissions.UpdateSchedule
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchedule")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	schedule, err := api.svc.UpdateSchedule(ctx.Request().Context(), getContextAcademy(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating schedule")
	}
	return ctx.JSON(http.StatusOK, schedule)
}

func (api *admissionsApi) deleteSchedules(ctx echo.Context) error {
	ids := queryIDs(ctx, "id")
	if err := api.svc.DeleteSchedules(ctx.Request().Context(), getContextAcademy(ctx), ids...); err != nil {
		return errors.Wrap(err, "deleting schedules")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Timeslots

func (api *admissionsApi) bindTimeSlot(ctx echo.Context) (admissions.NewTimeSlot, error) {
	var data admissions.NewTimeSlot
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to NewTimeSlot")
	}
	return data, data.Validate(api.validate)
}

func (api *admissionsApi) scheduleTimeSlots(ctx echo.Context) error {
	scheduleID, err := pathID(ctx, "certificate_id")
	if err != nil {
		return err
	}
	slots, err := api.svc.ScheduleTimeSlots(ctx.Request().Context(), getContextAcademy(ctx), scheduleID)
	if err != nil {
		return errors.Wrap(err, "querying schedule timeslots")
	}
	if slots == nil {
		slots = []admissions.ScheduleTimeSlot{}
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (api *admissionsApi) addScheduleTimeSlot(ctx echo.Context) error {
	scheduleID, err := pathID(ctx, "certificate_id")
	if err != nil {
		return err
	}
	data, err := api.bindTimeSlot(ctx)
	if err != nil {
		return err
	}
	slot, err := api.svc.AddScheduleTimeSlot(ctx.Request().Context(), getContextAcademy(ctx), scheduleID, data)
	if err != nil {
		return errors.Wrap(err, "adding schedule timeslot")
	}
	return ctx.JSON(http.StatusCreated, slot)
}

func (api *admissionsApi) deleteScheduleTimeSlot(ctx echo.Context) error {
	scheduleID, err := pathID(ctx, "certificate_id")
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "timeslot_id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteScheduleTimeSlot(ctx.Request().Context(), getContextAcademy(ctx), scheduleID, id); err != nil {
		return errors.Wrap(err, "deleting schedule timeslot")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *admissionsApi) academyCohortTimeSlots(ctx echo.Context) error {
	slots, err := api.svc.AcademyCohortTimeSlots(ctx.Request().Context(), getContextAcademy(ctx))
	if err != nil {
		return errors.Wrap(err, "querying academy cohort timeslots")
	}
	if slots == nil {
		slots = []admissions.CohortTimeSlot{}
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (api *admissionsApi) cohortTimeSlots(ctx echo.Context) error {
	cohortID, err := pathID(ctx, "cohort_id")
	if err != nil {
		return err
	}
	slots, err := api.svc.CohortTimeSlots(ctx.Request().Context(), getContextAcademy(ctx), cohortID)
	if err != nil {
		return errors.Wrap(err, "querying cohort timeslots")
	}
	if slots == nil {
		slots = []admissions.CohortTimeSlot{}
	}
	return ctx.JSON(http.StatusOK, slots)
}

func (api *admissionsApi) addCohortTimeSlot(ctx echo.Context) error {
	cohortID, err := pathID(ctx, "cohort_id")
	if err != nil {
		return err
	}
	data, err := api.bindTimeSlot(ctx)
	if err != nil {
		return err
	}
	slot, err := api.svc.AddCohortTimeSlot(ctx.Request().Context(), getContextAcademy(ctx), cohortID, data)
	if err != nil {
		return errors.Wrap(err, "adding cohort timeslot")
	}
	return ctx.JSON(http.StatusCreated, slot)
}

func (api *admissionsApi) deleteCohortTimeSlot(ctx echo.Context) error {
	cohortID, err := pathID(ctx, "cohort_id")
	if err != nil {
		return err
	}
	id, err := pathID(ctx, "timeslot_id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteCohortTimeSlot(ctx.Request().Context(), getContextAcademy(ctx), cohortID, id); err != nil {
		return errors.Wrap(err, "deleting cohort timeslot")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *admissionsApi) syncCohortTimeSlots(ctx echo.Context) error {
	slots, err := api.svc.SyncCohortTimeSlots(ctx.Request().Context(), getContextAcademy(ctx), queryIDs(ctx, "cohort")...)
	if err != nil {
		return errors.Wrap(err, "syncing cohort timeslots")
	}
	if slots == nil {
		slots = []admissions.CohortTimeSlot{}
	}
	return ctx.JSON(http.StatusCreated, slots)
}

// Cohorts

func (api *admissionsApi) queryCohorts(ctx echo.Context) error {
	filter := admissions.CohortFilter{
		AcademyID: getContextAcademy(ctx),
		Stages:    queryStrings(ctx, "stage", true),
	}
	if upcoming := queryBool(ctx, "upcoming"); upcoming != nil {
		filter.Upcoming = *upcoming
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)
	page := bindPagination(ctx)

	cohorts, count, err := api.svc.QueryCohorts(ctx.Request().Context(), filter, ordering.Orderings, page)
	if err != nil {
		return errors.Wrap(err, "querying cohorts")
	}
	if cohorts == nil {
		cohorts = []admissions.Cohort{}
	}
	return respondList(ctx, page, count, cohorts)
}

func (api *admissionsApi) createCohort(ctx echo.Context) error {
	var data admissions.NewCohort
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCohort")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cohort, err := api.svc.CreateCohort(ctx.Request().Context(), getContextAcademy(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating cohort")
	}
	return ctx.JSON(http.StatusCreated, cohort)
}

func (api *admissionsApi) retrieveCohort(ctx echo.Context) error {
	id, err := pathID(ctx, "cohort_id")
	if err != nil {
		return err
	}
	cohort, err := api.svc.GetCohort(ctx.Request().Context(), getContextAcademy(ctx), id)
	if err != nil {
		return errors.Wrap(err, "getting cohort")
	}
	return ctx.JSON(http.StatusOK, cohort)
}

func (api *admissionsApi) updateCohort(ctx echo.Context) error {
	id, err := pathID(ctx, "cohort_id")
	if err != nil {
		return err
	}
	var data admissions.UpdateCohort
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCohort")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cohort, err := api.svc.UpdateCohort(ctx.Request().Context(), getContextAcademy(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating cohort")
	}
	return ctx.JSON(http.StatusOK, cohort)
}

func (api *admissionsApi) deleteCohort(ctx echo.Context) error {
	id, err := pathID(ctx, "cohort_id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteCohort(ctx.Request().Context(), getContextAcademy(ctx), id); err != nil {
		return errors.Wrap(err, "deleting cohort")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Cohort users

func (api *admissionsApi) queryCohortUsers(ctx echo.Context) error {
	filter := admissions.CohortUserFilter{
		AcademyID:          getContextAcademy(ctx),
		Users:              queryIDs(ctx, "users"),
		Cohorts:            queryIDs(ctx, "cohorts"),
		Roles:              queryStrings(ctx, "roles", true),
		EducationalStatus:  queryStrings(ctx, "educational_status", true),
		ExcludeCohortStage: ctx.QueryParam("exclude_cohort_stage"),
	}
	page := bindPagination(ctx)

	cohortUsers, count, err := api.svc.QueryCohortUsers(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying cohort users")
	}
	if cohortUsers == nil {
		cohortUsers = []admissions.CohortUser{}
	}
	return respondList(ctx, page, count, cohortUsers)
}

func (api *admissionsApi) addCohortUser(ctx echo.Context) error {
	cohortID, err := pathID(ctx, "cohort_id")
	if err != nil {
		return err
	}
	var data admissions.NewCohortUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCohortUser")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cu, err := api.svc.AddCohortUser(ctx.Request().Context(), getContextAcademy(ctx), cohortID, data)
	if err != nil {
		return errors.Wrap(err, "adding cohort user")
	}
	return ctx.JSON(http.StatusCreated, cu)
}

func (api *admissionsApi) removeCohortUser(ctx echo.Context) error {
	cohortID, err := pathID(ctx, "cohort_id")
	if err != nil {
		return err
	}
	userID, err := pathID(ctx, "user_id")
	if err != nil {
		return err
	}
	if err = api.svc.RemoveCohortUser(ctx.Request().Context(), getContextAcademy(ctx), cohortID, userID); err != nil {
		return errors.Wrap(err, "removing cohort user")
	}
	return ctx.NoContent(http.StatusNoContent)
}
