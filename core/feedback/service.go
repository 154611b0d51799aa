package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/admissions"
	"github.com/trezcool/academia/core/user"
)

var (
	// errors
	ErrAnswerNotFound    = core.NewNotFoundError("answer-of-other-user-or-not-exists")
	ErrSurveyNotFound    = core.NewNotFoundError("survey-not-found")
	ErrScoreOutOfRange   = nonFieldError("Score must be between 1 and 10")
	ErrScoreChanged      = nonFieldError("You cannot change the score of an answer that was already answered")
	ErrSurveyAlreadySent = core.NewSlugValidationError("survey-already-sent")
	ErrNoStudents        = errors.New("No students to send the survey")
)

func nonFieldError(msg string) error {
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "non_field_errors", Error: msg})
}

type (
	Repository interface {
		QueryAnswers(ctx context.Context, filter AnswerFilter, page core.Pagination) ([]Answer, int, error)
		GetAnswer(ctx context.Context, id int64) (Answer, error)
		CreateAnswer(ctx context.Context, a Answer) (Answer, error)
		UpdateAnswer(ctx context.Context, a Answer) (Answer, error)
		SurveyStats(ctx context.Context, surveyID int64) (AnswerStats, error)

		QuerySurveys(ctx context.Context, filter SurveyFilter, page core.Pagination) ([]Survey, int, error)
		// GetSurvey returns ErrSurveyNotFound if the survey cohort does not belong to academyID (unless academyID is 0).
		GetSurvey(ctx context.Context, academyID, id int64) (Survey, error)
		CreateSurvey(ctx context.Context, s Survey) (Survey, error)
		UpdateSurvey(ctx context.Context, s Survey) (Survey, error)
	}

	Service interface {
		GetUserAnswer(ctx context.Context, userID, id int64) (AnswerDetail, error)
		// AnswerUserSurvey records the score of the user and queues the processing of the answer.
		AnswerUserSurvey(ctx context.Context, userID, id int64, ap AnswerPayload) (Answer, error)
		ProcessAnswerReceived(ctx context.Context, answerID int64) error
		QueryAnswers(ctx context.Context, filter AnswerFilter, page core.Pagination) ([]Answer, int, error)

		QuerySurveys(ctx context.Context, filter SurveyFilter, page core.Pagination) ([]Survey, int, error)
		CreateSurvey(ctx context.Context, academyID int64, ns NewSurvey) (Survey, error)
		UpdateSurvey(ctx context.Context, academyID, id int64, us UpdateSurvey) (Survey, error)
		// SendSurvey creates one answer per active student of the survey cohort and emails them.
		SendSurvey(ctx context.Context, academyID, id int64) (Survey, error)
	}

	service struct {
		repo    Repository
		usrSvc  user.Service
		admSvc  admissions.Service
		mailSvc core.EmailService
		tasks   core.TaskQueue
		logger  core.Logger
		conf    *core.Config
		now     func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	usrSvc user.Service,
	admSvc admissions.Service,
	mailSvc core.EmailService,
	tasks core.TaskQueue,
	logger core.Logger,
	conf *core.Config,
) Service {
	return &service{
		repo:    repo,
		usrSvc:  usrSvc,
		admSvc:  admSvc,
		mailSvc: mailSvc,
		tasks:   tasks,
		logger:  logger,
		conf:    conf,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Answers

func (svc *service) userAnswer(ctx context.Context, userID, id int64) (Answer, error) {
	answer, err := svc.repo.GetAnswer(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return Answer{}, ErrAnswerNotFound
		}
		return Answer{}, errors.Wrap(err, "getting answer")
	}
	if !answer.UserID.Valid || answer.UserID.Int64 != userID {
		return Answer{}, ErrAnswerNotFound
	}
	return answer, nil
}

func (svc *service) GetUserAnswer(ctx context.Context, userID, id int64) (AnswerDetail, error) {
	answer, err := svc.userAnswer(ctx, userID, id)
	if err != nil {
		return AnswerDetail{}, err
	}

	ids := []int64{answer.UserID.Int64}
	if answer.MentorID.Valid {
		ids = append(ids, answer.MentorID.Int64)
	}
	users, err := svc.usrSvc.GetManyByID(ctx, ids...)
	if err != nil {
		return AnswerDetail{}, errors.Wrap(err, "getting answer users")
	}

	detail := AnswerDetail{Answer: answer}
	for _, usr := range users {
		small := &UserSmall{ID: usr.ID, FirstName: usr.FirstName, LastName: usr.LastName}
		if usr.ID == answer.UserID.Int64 {
			detail.User = small
		}
		if answer.MentorID.Valid && usr.ID == answer.MentorID.Int64 {
			detail.Mentor = small
		}
	}
	return detail, nil
}

func (svc *service) AnswerUserSurvey(ctx context.Context, userID, id int64, ap AnswerPayload) (Answer, error) {
	answer, err := svc.userAnswer(ctx, userID, id)
	if err != nil {
		return Answer{}, err
	}
	if err = ap.Validate(); err != nil {
		return Answer{}, err
	}

	answered := answer.Status == AnswerAnswered
	if answered && answer.Score.Valid && answer.Score.Int != *ap.Score {
		return Answer{}, ErrScoreChanged
	}

	answer.Score = null.IntFrom(*ap.Score)
	answer.Comment = null.NewString(ap.Comment, ap.Comment != "")
	answer.Status = AnswerAnswered
	answer.UpdatedAt = svc.now()
	if answer, err = svc.repo.UpdateAnswer(ctx, answer); err != nil {
		return Answer{}, errors.Wrap(err, "updating answer")
	}

	if !answered {
		answerID := answer.ID
		err = svc.tasks.Enqueue("process_answer_received", func(ctx context.Context) error {
			return svc.ProcessAnswerReceived(ctx, answerID)
		})
		if err != nil {
			svc.logger.Error("could not queue answer processing", err, map[string]interface{}{"answer": answerID})
		}
	}
	return answer, nil
}

// ProcessAnswerReceived refreshes the survey stats and reports negative scores to the academy.
func (svc *service) ProcessAnswerReceived(ctx context.Context, answerID int64) error {
	answer, err := svc.repo.GetAnswer(ctx, answerID)
	if err != nil {
		if core.IsNotFound(err) {
			svc.logger.Error("Answer not found")
			return nil
		}
		return errors.Wrap(err, "getting answer")
	}
	if !answer.SurveyID.Valid {
		svc.logger.Error("No survey connected to answer.")
		return nil
	}

	survey, err := svc.repo.GetSurvey(ctx, 0, answer.SurveyID.Int64)
	if err != nil {
		return errors.Wrap(err, "getting survey")
	}
	stats, err := svc.repo.SurveyStats(ctx, survey.ID)
	if err != nil {
		return errors.Wrap(err, "computing survey stats")
	}
	survey.AvgScore = stats.AvgScore
	survey.ResponseRate = null.Float64From(0)
	if stats.Total > 0 {
		survey.ResponseRate = null.Float64From(float64(stats.Answered) / float64(stats.Total) * 100)
	}
	survey.UpdatedAt = svc.now()
	if _, err = svc.repo.UpdateSurvey(ctx, survey); err != nil {
		return errors.Wrap(err, "updating survey")
	}

	if !answer.UserID.Valid || !answer.AcademyID.Valid || !answer.Score.Valid || answer.Score.Int >= negativeScore {
		return nil
	}
	return svc.notifyNegativeAnswer(ctx, answer, survey)
}

func (svc *service) notifyNegativeAnswer(ctx context.Context, answer Answer, survey Survey) error {
	academy, err := svc.admSvc.GetAcademy(ctx, answer.AcademyID.Int64)
	if err != nil {
		return errors.Wrap(err, "getting academy")
	}
	usr, err := svc.usrSvc.GetByID(ctx, answer.UserID.Int64)
	if err != nil {
		return errors.Wrap(err, "getting user")
	}

	var to []mail.Address
	if svc.conf.SystemEmail == "" {
		svc.logger.Error("system-email-not-found")
	} else {
		to = append(to, mail.Address{Address: svc.conf.SystemEmail})
	}
	if !academy.FeedbackEmail.Valid || academy.FeedbackEmail.String == "" {
		svc.logger.Error("academy-feedback-email-not-found")
	} else {
		to = append(to, mail.Address{Address: academy.FeedbackEmail.String})
	}
	if len(to) == 0 {
		return nil
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           to,
		Subject:      "A student answered with a bad NPS score at " + academy.Name,
		TemplateName: "negative_answer",
		TemplateData: map[string]interface{}{
			"SUBJECT":   "A student answered with a bad NPS score at " + academy.Name,
			"FULL_NAME": usr.FirstName + " " + usr.LastName,
			"QUESTION":  answer.Title,
			"SCORE":     answer.Score.Int,
			"COMMENTS":  answer.Comment.String,
			"ACADEMY":   academy.Name,
			"LINK":      fmt.Sprintf("%s/feedback/surveys/%s/%d", svc.conf.AdminURL, academy.Slug, survey.ID),
		},
	})
	return nil
}

func (svc *service) QueryAnswers(ctx context.Context, filter AnswerFilter, page core.Pagination) ([]Answer, int, error) {
	return svc.repo.QueryAnswers(ctx, filter, page)
}

// Surveys

func (svc *service) QuerySurveys(ctx context.Context, filter SurveyFilter, page core.Pagination) ([]Survey, int, error) {
	return svc.repo.QuerySurveys(ctx, filter, page)
}

func (svc *service) CreateSurvey(ctx context.Context, academyID int64, ns NewSurvey) (Survey, error) {
	if _, err := svc.admSvc.GetCohort(ctx, academyID, ns.Cohort); err != nil {
		return Survey{}, err
	}

	now := svc.now()
	survey := Survey{
		Lang:               "en",
		CohortID:           ns.Cohort,
		MaxAssistantsToAsk: 2,
		MaxTeachersToAsk:   1,
		Status:             SurveyPending,
		Duration:           int64((24 * time.Hour).Seconds()),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if ns.Lang != "" {
		survey.Lang = ns.Lang
	}
	if ns.MaxAssistantsToAsk != nil {
		survey.MaxAssistantsToAsk = *ns.MaxAssistantsToAsk
	}
	if ns.MaxTeachersToAsk != nil {
		survey.MaxTeachersToAsk = *ns.MaxTeachersToAsk
	}
	if ns.Duration > 0 {
		survey.Duration = ns.Duration
	}

	survey, err := svc.repo.CreateSurvey(ctx, survey)
	if err != nil {
		return Survey{}, errors.Wrap(err, "creating survey")
	}
	if ns.SendNow {
		return svc.SendSurvey(ctx, academyID, survey.ID)
	}
	return survey, nil
}

func (svc *service) UpdateSurvey(ctx context.Context, academyID, id int64, us UpdateSurvey) (Survey, error) {
	survey, err := svc.repo.GetSurvey(ctx, academyID, id)
	if err != nil {
		return Survey{}, err
	}
	if us.Lang != nil {
		survey.Lang = *us.Lang
	}
	if us.MaxAssistantsToAsk != nil {
		survey.MaxAssistantsToAsk = *us.MaxAssistantsToAsk
	}
	if us.MaxTeachersToAsk != nil {
		survey.MaxTeachersToAsk = *us.MaxTeachersToAsk
	}
	if us.Duration != nil {
		survey.Duration = *us.Duration
	}
	survey.UpdatedAt = svc.now()
	if survey, err = svc.repo.UpdateSurvey(ctx, survey); err != nil {
		return Survey{}, errors.Wrap(err, "updating survey")
	}
	if us.SendNow {
		return svc.SendSurvey(ctx, academyID, survey.ID)
	}
	return survey, nil
}

type surveyStatus struct {
	Success []string `json:"success"`
	Errors  []string `json:"errors"`
}

func (svc *service) SendSurvey(ctx context.Context, academyID, id int64) (Survey, error) {
	survey, err := svc.repo.GetSurvey(ctx, academyID, id)
	if err != nil {
		return Survey{}, err
	}
	if survey.SentAt.Valid {
		return Survey{}, ErrSurveyAlreadySent
	}
	cohort, err := svc.admSvc.GetCohort(ctx, academyID, survey.CohortID)
	if err != nil {
		return Survey{}, err
	}
	academy, err := svc.admSvc.GetAcademy(ctx, cohort.AcademyID)
	if err != nil {
		return Survey{}, err
	}

	members, _, err := svc.admSvc.QueryCohortUsers(ctx, admissions.CohortUserFilter{Cohorts: []int64{cohort.ID}}, core.AllRows)
	if err != nil {
		return Survey{}, errors.Wrap(err, "querying cohort users")
	}
	var studentIDs, teacherIDs, assistantIDs []int64
	for _, cu := range members {
		switch cu.Role {
		case admissions.RoleStudent:
			if !cu.EducationalStatus.Valid || cu.EducationalStatus.String == admissions.EduActive || cu.EducationalStatus.String == admissions.EduGraduated {
				studentIDs = append(studentIDs, cu.UserID)
			}
		case admissions.RoleTeacher:
			teacherIDs = append(teacherIDs, cu.UserID)
		case admissions.RoleAssistant:
			assistantIDs = append(assistantIDs, cu.UserID)
		}
	}
	var mentorIDs []int64
	mentorIDs = append(mentorIDs, firstN(teacherIDs, survey.MaxTeachersToAsk)...)
	mentorIDs = append(mentorIDs, firstN(assistantIDs, survey.MaxAssistantsToAsk)...)

	now := svc.now()
	status := surveyStatus{Success: []string{}, Errors: []string{}}
	if len(studentIDs) == 0 {
		status.Errors = append(status.Errors, ErrNoStudents.Error())
		return svc.saveSurveyStatus(ctx, survey, SurveyFatal, status)
	}

	students, err := svc.usrSvc.GetManyByID(ctx, studentIDs...)
	if err != nil {
		return Survey{}, errors.Wrap(err, "getting students")
	}
	var mentors []user.User
	if len(mentorIDs) > 0 {
		if mentors, err = svc.usrSvc.GetManyByID(ctx, mentorIDs...); err != nil {
			return Survey{}, errors.Wrap(err, "getting mentors")
		}
	}

	var messages []*core.EmailMessage
	for _, student := range students {
		base := Answer{
			Lang:      survey.Lang,
			Lowest:    "not likely",
			Highest:   "very likely",
			Status:    AnswerSent,
			SentAt:    null.TimeFrom(now),
			UserID:    null.Int64From(student.ID),
			AcademyID: null.Int64From(academy.ID),
			SurveyID:  null.Int64From(survey.ID),
			CreatedAt: now,
			UpdatedAt: now,
		}

		questions := make([]Answer, 0, 2+len(mentors))
		academyQ := base
		academyQ.Title = fmt.Sprintf("How likely are you to recommend %s to your friends and family?", academy.Name)
		cohortQ := base
		cohortQ.Title = fmt.Sprintf("Your experience in %s so far?", cohort.Name)
		cohortQ.CohortID = null.Int64From(cohort.ID)
		questions = append(questions, academyQ, cohortQ)
		for _, mentor := range mentors {
			mentorQ := base
			mentorQ.Title = fmt.Sprintf("How would you rate %s?", mentor.FullName())
			mentorQ.CohortID = null.Int64From(cohort.ID)
			mentorQ.MentorID = null.Int64From(mentor.ID)
			questions = append(questions, mentorQ)
		}

		failed := false
		for _, q := range questions {
			if _, err = svc.repo.CreateAnswer(ctx, q); err != nil {
				svc.logger.Error("could not create survey answer", err, map[string]interface{}{"survey": survey.ID})
				failed = true
				break
			}
		}
		if failed {
			status.Errors = append(status.Errors, student.Email)
			continue
		}

		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: student.FullName(), Address: student.Email}},
			Subject:      academyQ.Title,
			TemplateName: "nps_survey",
			TemplateData: map[string]interface{}{
				"SUBJECT":   academyQ.Title,
				"FULL_NAME": student.FullName(),
				"QUESTION":  academyQ.Title,
				"LINK":      fmt.Sprintf("%s/feedback/survey/%d", svc.conf.FrontendBaseURL, survey.ID),
			},
		})
		status.Success = append(status.Success, student.Email)
	}
	svc.mailSvc.SendMessages(messages...)

	newStatus := SurveySent
	if len(status.Errors) > 0 {
		newStatus = SurveyPartial
	}
	survey.SentAt = null.TimeFrom(now)
	return svc.saveSurveyStatus(ctx, survey, newStatus, status)
}

func (svc *service) saveSurveyStatus(ctx context.Context, survey Survey, status string, details surveyStatus) (Survey, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return Survey{}, errors.Wrap(err, "encoding survey status")
	}
	survey.Status = status
	survey.StatusJSON = null.StringFrom(string(raw))
	survey.UpdatedAt = svc.now()
	return svc.repo.UpdateSurvey(ctx, survey)
}

func firstN(ids []int64, n int) []int64 {
	if n < len(ids) {
		return ids[:n]
	}
	return ids
}
