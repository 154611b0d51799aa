package feedback

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

// Survey statuses
const (
	SurveyPending = "PENDING"
	SurveySent    = "SENT"
	SurveyPartial = "PARTIAL"
	SurveyFatal   = "FATAL"
)

// Answer statuses
const (
	AnswerPending  = "PENDING"
	AnswerSent     = "SENT"
	AnswerAnswered = "ANSWERED"
	AnswerOpened   = "OPENED"
	AnswerExpired  = "EXPIRED"
)

// Answer kinds, derived from the relations an answer is about
const (
	KindAcademy = "academy"
	KindCohort  = "cohort"
	KindMentor  = "mentor"
	KindEvent   = "event"
)

// scores below this one are reported to the academy
const negativeScore = 8

type Survey struct {
	ID                 int64        `json:"id" db:"id"`
	Lang               string       `json:"lang" db:"lang"`
	CohortID           int64        `json:"cohort" db:"cohort_id"`
	MaxAssistantsToAsk int          `json:"max_assistants_to_ask" db:"max_assistants_to_ask"`
	MaxTeachersToAsk   int          `json:"max_teachers_to_ask" db:"max_teachers_to_ask"`
	AvgScore           null.Float64 `json:"avg_score" db:"avg_score"`
	ResponseRate       null.Float64 `json:"response_rate" db:"response_rate"`
	Status             string       `json:"status" db:"status"`
	StatusJSON         null.String  `json:"status_json" db:"status_json"`
	Duration           int64        `json:"duration" db:"duration"` // seconds
	SentAt             null.Time    `json:"sent_at" db:"sent_at"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

type SurveyFilter struct {
	AcademyID int64    `query:"-"`
	Cohorts   []int64  `query:"-"`
	Statuses  []string `query:"-"`
}

type NewSurvey struct {
	Cohort             int64  `json:"cohort" validate:"required"`
	Lang               string `json:"lang" validate:"omitempty,oneof=en es"`
	MaxAssistantsToAsk *int   `json:"max_assistants_to_ask" validate:"omitempty,min=0"`
	MaxTeachersToAsk   *int   `json:"max_teachers_to_ask" validate:"omitempty,min=0"`
	Duration           int64  `json:"duration" validate:"min=0"`
	SendNow            bool   `json:"send_now"`
}

func (ns *NewSurvey) Validate(validate *validator.Validate) error {
	ns.Lang = core.CleanString(ns.Lang, true /* lower */)
	return validate.Struct(ns)
}

type UpdateSurvey struct {
	Lang               *string `json:"lang" validate:"omitempty,oneof=en es"`
	MaxAssistantsToAsk *int    `json:"max_assistants_to_ask" validate:"omitempty,min=0"`
	MaxTeachersToAsk   *int    `json:"max_teachers_to_ask" validate:"omitempty,min=0"`
	Duration           *int64  `json:"duration" validate:"omitempty,min=0"`
	SendNow            bool    `json:"send_now"`
}

type Answer struct {
	ID        int64       `json:"id" db:"id"`
	Title     string      `json:"title" db:"title"`
	Lowest    string      `json:"lowest" db:"lowest"`
	Highest   string      `json:"highest" db:"highest"`
	Lang      string      `json:"lang" db:"lang"`
	Comment   null.String `json:"comment" db:"comment"`
	Score     null.Int    `json:"score" db:"score"`
	Status    string      `json:"status" db:"status"`
	OpenedAt  null.Time   `json:"opened_at" db:"opened_at"`
	SentAt    null.Time   `json:"sent_at" db:"sent_at"`
	UserID    null.Int64  `json:"user" db:"user_id"`
	MentorID  null.Int64  `json:"mentor" db:"mentor_id"`
	AcademyID null.Int64  `json:"academy" db:"academy_id"`
	CohortID  null.Int64  `json:"cohort" db:"cohort_id"`
	EventID   null.Int64  `json:"event" db:"event_id"`
	SurveyID  null.Int64  `json:"survey" db:"survey_id"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// Kind tells what the answer rates, the most specific relation first.
func (a Answer) Kind() string {
	switch {
	case a.MentorID.Valid:
		return KindMentor
	case a.EventID.Valid:
		return KindEvent
	case a.CohortID.Valid:
		return KindCohort
	case a.AcademyID.Valid:
		return KindAcademy
	}
	return ""
}

type UserSmall struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Profile   interface{} `json:"profile"`
}

// AnswerDetail is an answer with its user and mentor expanded.
type AnswerDetail struct {
	Answer
	User   *UserSmall `json:"user"`
	Mentor *UserSmall `json:"mentor"`
}

type AnswerFilter struct {
	AcademyID int64    `query:"-"`
	Users     []int64  `query:"-"`
	Cohorts   []int64  `query:"-"`
	Surveys   []int64  `query:"-"`
	Score     int      `query:"score"`
	Statuses  []string `query:"-"`
}

// AnswerStats summarizes the answers of a survey.
type AnswerStats struct {
	Total    int          `db:"total"`
	Answered int          `db:"answered"`
	AvgScore null.Float64 `db:"avg_score"`
}

type AnswerPayload struct {
	Score   *int   `json:"score"`
	Comment string `json:"comment"`
}

func (ap *AnswerPayload) Validate() error {
	ap.Comment = core.CleanString(ap.Comment)
	if ap.Score == nil || *ap.Score < 1 || *ap.Score > 10 {
		return ErrScoreOutOfRange
	}
	return nil
}
