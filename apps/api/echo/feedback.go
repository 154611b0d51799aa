package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/authz"
	"github.com/trezcool/academia/core/feedback"
	"github.com/trezcool/academia/core/user"
)

type feedbackApi struct {
	svc      feedback.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerFeedbackAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := feedbackApi{svc: deps.FeedbackSvc, usrSvc: deps.UserSvc, validate: deps.Validate}
	can := func(capability string) echo.MiddlewareFunc { return capableOf(deps.AuthzSvc, capability) }

	fg := g.Group("/feedback", jwt)
	fg.GET("/user/me/answer/:answer_id", api.retrieveMyAnswer)
	fg.PUT("/user/me/answer/:answer_id", api.answerMySurvey)

	fg.GET("/academy/answer", api.queryAnswers, can(authz.ReadNPSAnswers))
	fg.GET("/academy/survey", api.querySurveys, can(authz.ReadSurvey))
	fg.POST("/academy/survey", api.createSurvey, can(authz.CrudSurvey))
	fg.PUT("/academy/survey/:survey_id", api.updateSurvey, can(authz.CrudSurvey))
}

// answerID is looked up for the context user only; an invalid ID is reported like a foreign answer.
func (api *feedbackApi) answerID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("answer_id"), 10, 64)
	if err != nil {
		return 0, feedback.ErrAnswerNotFound
	}
	return id, nil
}

func (api *feedbackApi) retrieveMyAnswer(ctx echo.Context) error {
	id, err := api.answerID(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	detail, err := api.svc.GetUserAnswer(ctx.Request().Context(), usr.ID, id)
	if err != nil {
		return errors.Wrap(err, "getting user answer")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *feedbackApi) answerMySurvey(ctx echo.Context) error {
	id, err := api.answerID(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	var data feedback.AnswerPayload
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnswerPayload")
	}

	answer, err := api.svc.AnswerUserSurvey(ctx.Request().Context(), usr.ID, id, data)
	if err != nil {
		return errors.Wrap(err, "answering survey")
	}
	return ctx.JSON(http.StatusOK, answer)
}

func (api *feedbackApi) queryAnswers(ctx echo.Context) error {
	filter := feedback.AnswerFilter{
		AcademyID: getContextAcademy(ctx),
		Users:     queryIDs(ctx, "user"),
		Cohorts:   queryIDs(ctx, "cohort"),
		Surveys:   queryIDs(ctx, "survey"),
		Statuses:  queryStrings(ctx, "status", true),
	}
	if score, err := strconv.Atoi(ctx.QueryParam("score")); err == nil {
		filter.Score = score
	}
	page := bindPagination(ctx)

	answers, count, err := api.svc.QueryAnswers(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying answers")
	}
	if answers == nil {
		answers = []feedback.Answer{}
	}
	return respondList(ctx, page, count, answers)
}

func (api *feedbackApi) querySurveys(ctx echo.Context) error {
	filter := feedback.SurveyFilter{
		AcademyID: getContextAcademy(ctx),
		Cohorts:   queryIDs(ctx, "cohort"),
		Statuses:  queryStrings(ctx, "status", true),
	}
	page := bindPagination(ctx)

	surveys, count, err := api.svc.QuerySurveys(ctx.Request().Context(), filter, page)
	if err != nil {
		return errors.Wrap(err, "querying surveys")
	}
	if surveys == nil {
		surveys = []feedback.Survey{}
	}
	return respondList(ctx, page, count, surveys)
}

func (api *feedbackApi) createSurvey(ctx echo.Context) error {
	var data feedback.NewSurvey
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSurvey")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	survey, err := api.svc.CreateSurvey(ctx.Request().Context(), getContextAcademy(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating survey")
	}
	return ctx.JSON(http.StatusCreated, survey)
}

func (api *feedbackApi) updateSurvey(ctx echo.Context) error {
	id, err := pathID(ctx, "survey_id")
	if err != nil {
		return err
	}
	var data feedback.UpdateSurvey
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSurvey")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	survey, err := api.svc.UpdateSurvey(ctx.Request().Context(), getContextAcademy(ctx), id, data)
	if err != nil {
		return errors.Wrap(err, "updating survey")
	}
	return ctx.JSON(http.StatusOK, survey)
}
