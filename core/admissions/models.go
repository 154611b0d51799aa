package admissions

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

// Academy statuses
const (
	AcademyActive   = "ACTIVE"
	AcademyInactive = "INACTIVE"
	AcademyDeleted  = "DELETED"
)

// Syllabus schedule types
const (
	PartTime = "PART-TIME"
	FullTime = "FULL-TIME"
)

// Cohort stages
const (
	StageInactive     = "INACTIVE"
	StagePrework      = "PREWORK"
	StageStarted      = "STARTED"
	StageFinalProject = "FINAL_PROJECT"
	StageEnded        = "ENDED"
	StageDeleted      = "DELETED"
)

// Cohort user roles and statuses
const (
	RoleStudent   = "STUDENT"
	RoleAssistant = "ASSISTANT"
	RoleTeacher   = "TEACHER"

	EduActive    = "ACTIVE"
	EduPostponed = "POSTPONED"
	EduGraduated = "GRADUATED"
	EduSuspended = "SUSPENDED"
	EduDropped   = "DROPPED"

	FinFullyPaid = "FULLY_PAID"
	FinUpToDate  = "UP_TO_DATE"
	FinLate      = "LATE"
)

type Academy struct {
	ID                int64       `json:"id" db:"id"`
	Slug              string      `json:"slug" db:"slug"`
	Name              string      `json:"name" db:"name"`
	LogoURL           string      `json:"logo_url" db:"logo_url"`
	StreetAddress     string      `json:"street_address" db:"street_address"`
	City              string      `json:"city" db:"city"`
	Country           string      `json:"country" db:"country"`
	Timezone          string      `json:"timezone" db:"timezone"`
	FeedbackEmail     null.String `json:"feedback_email" db:"feedback_email"`
	MarketingEmail    null.String `json:"marketing_email" db:"marketing_email"`
	ActiveCampaignURL null.String `json:"-" db:"active_campaign_url"`
	ActiveCampaignKey null.String `json:"-" db:"active_campaign_key"`
	Status            string      `json:"status" db:"status"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// HasActiveCampaign reports whether the academy is connected to an ActiveCampaign account.
func (a Academy) HasActiveCampaign() bool {
	return a.ActiveCampaignURL.String != "" && a.ActiveCampaignKey.String != ""
}

type UpdateAcademy struct {
	Name           *string `json:"name" validate:"omitempty,min=1"`
	LogoURL        *string `json:"logo_url" validate:"omitempty,url"`
	StreetAddress  *string `json:"street_address"`
	City           *string `json:"city"`
	Country        *string `json:"country"`
	Timezone       *string `json:"timezone" validate:"omitempty,timezone"`
	FeedbackEmail  *string `json:"feedback_email" validate:"omitempty,email"`
	MarketingEmail *string `json:"marketing_email" validate:"omitempty,email"`
}

func (ua *UpdateAcademy) Validate(validate *validator.Validate) error {
	return validate.Struct(ua)
}

type Syllabus struct {
	ID               int64       `json:"id" db:"id"`
	Slug             string      `json:"slug" db:"slug"`
	Name             string      `json:"name" db:"name"`
	AcademyOwner     null.Int64  `json:"academy_owner" db:"academy_owner_id"`
	DurationInDays   null.Int    `json:"duration_in_days" db:"duration_in_days"`
	DurationInHours  null.Int    `json:"duration_in_hours" db:"duration_in_hours"`
	WeekHours        null.Int    `json:"week_hours" db:"week_hours"`
	GithubURL        null.String `json:"github_url" db:"github_url"`
	Logo             null.String `json:"logo" db:"logo"`
	Private          bool        `json:"private" db:"private"`
	MainTechnologies null.String `json:"main_technologies" db:"main_technologies"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

type NewSyllabus struct {
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	DurationInDays   null.Int `json:"duration_in_days"`
	DurationInHours  null.Int `json:"duration_in_hours"`
	WeekHours        null.Int `json:"week_hours"`
	GithubURL        string   `json:"github_url" validate:"omitempty,url"`
	Logo             string   `json:"logo" validate:"omitempty,url"`
	Private          bool     `json:"private"`
	MainTechnologies string   `json:"main_technologies"`
}

func (ns *NewSyllabus) Validate(validate *validator.Validate) error {
	ns.Slug = core.CleanString(ns.Slug, true /* lower */)
	ns.Name = core.CleanString(ns.Name)
	if ns.Slug == "" {
		return ErrMissingSlug
	}
	if ns.Name == "" {
		return ErrMissingName
	}
	return validate.Struct(ns)
}

type UpdateSyllabus struct {
	Name             *string  `json:"name" validate:"omitempty,min=1"`
	DurationInDays   null.Int `json:"duration_in_days"`
	DurationInHours  null.Int `json:"duration_in_hours"`
	WeekHours        null.Int `json:"week_hours"`
	GithubURL        *string  `json:"github_url" validate:"omitempty,url"`
	Logo             *string  `json:"logo" validate:"omitempty,url"`
	Private          *bool    `json:"private"`
	MainTechnologies *string  `json:"main_technologies"`
}

func (us *UpdateSyllabus) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

// SyllabusSchedule is also known as "certificate" (or specialty mode) in the API.
type SyllabusSchedule struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	ScheduleType string    `json:"schedule_type" db:"schedule_type"`
	SyllabusID   int64     `json:"syllabus" db:"syllabus_id"`
	AcademyID    int64     `json:"academy" db:"academy_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type ScheduleFilter struct {
	AcademyID    int64  `query:"-"`
	SyllabusID   int64  `query:"syllabus_id"`
	SyllabusSlug string `query:"syllabus_slug"`
}

type NewSchedule struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description" validate:"required"`
	ScheduleType string `json:"schedule_type" validate:"omitempty,oneof=PART-TIME FULL-TIME"`
	Syllabus     int64  `json:"syllabus"`
	Academy      int64  `json:"academy"`
}

func (ns *NewSchedule) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	ns.ScheduleType = core.CleanString(ns.ScheduleType)
	return validate.Struct(ns)
}

type UpdateSchedule struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Description  *string `json:"description" validate:"omitempty,min=1"`
	ScheduleType *string `json:"schedule_type" validate:"omitempty,oneof=PART-TIME FULL-TIME"`
}

func (us *UpdateSchedule) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

type Cohort struct {
	ID              int64       `json:"id" db:"id"`
	Slug            string      `json:"slug" db:"slug"`
	Name            string      `json:"name" db:"name"`
	KickoffDate     time.Time   `json:"kickoff_date" db:"kickoff_date"`
	EndingDate      null.Time   `json:"ending_date" db:"ending_date"`
	CurrentDay      int         `json:"current_day" db:"current_day"`
	CurrentModule   null.Int    `json:"current_module" db:"current_module"`
	Stage           string      `json:"stage" db:"stage"`
	Private         bool        `json:"private" db:"private"`
	NeverEnds       bool        `json:"never_ends" db:"never_ends"`
	RemoteAvailable bool        `json:"remote_available" db:"remote_available"`
	Language        string      `json:"language" db:"language"`
	Timezone        null.String `json:"timezone" db:"timezone"`
	AcademyID       int64       `json:"academy" db:"academy_id"`
	SyllabusID      null.Int64  `json:"syllabus" db:"syllabus_id"`
	ScheduleID      null.Int64  `json:"schedule" db:"schedule_id"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

type CohortFilter struct {
	AcademyID int64    `query:"-"`
	Stages    []string `query:"stage"`
	Upcoming  bool     `query:"upcoming"`
}

type NewCohort struct {
	Slug            string     `json:"slug" validate:"required,slug"`
	Name            string     `json:"name" validate:"required"`
	KickoffDate     time.Time  `json:"kickoff_date" validate:"required"`
	EndingDate      *time.Time `json:"ending_date"`
	NeverEnds       bool       `json:"never_ends"`
	Private         bool       `json:"private"`
	RemoteAvailable *bool      `json:"remote_available"`
	Language        string     `json:"language" validate:"omitempty,len=2"`
	Timezone        string     `json:"timezone" validate:"omitempty,timezone"`
	Syllabus        int64      `json:"syllabus"`
	Schedule        int64      `json:"schedule"`
}

func (nc *NewCohort) Validate(validate *validator.Validate) error {
	nc.Slug = core.CleanString(nc.Slug, true /* lower */)
	nc.Name = core.CleanString(nc.Name)
	nc.Language = core.CleanString(nc.Language, true /* lower */)
	if err := validate.Struct(nc); err != nil {
		return err
	}
	return checkCohortEnding(nc.EndingDate != nil, nc.NeverEnds)
}

type UpdateCohort struct {
	Name            *string    `json:"name" validate:"omitempty,min=1"`
	KickoffDate     *time.Time `json:"kickoff_date"`
	EndingDate      *time.Time `json:"ending_date"`
	CurrentDay      *int       `json:"current_day" validate:"omitempty,min=0"`
	CurrentModule   *int       `json:"current_module" validate:"omitempty,min=1"`
	Stage           *string    `json:"stage" validate:"omitempty,oneof=INACTIVE PREWORK STARTED FINAL_PROJECT ENDED DELETED"`
	Private         *bool      `json:"private"`
	NeverEnds       *bool      `json:"never_ends"`
	RemoteAvailable *bool      `json:"remote_available"`
	Language        *string    `json:"language" validate:"omitempty,len=2"`
	Timezone        *string    `json:"timezone" validate:"omitempty,timezone"`
	Schedule        *int64     `json:"schedule"`
}

func (uc *UpdateCohort) Validate(validate *validator.Validate) error {
	return validate.Struct(uc)
}

func checkCohortEnding(hasEndingDate, neverEnds bool) error {
	if hasEndingDate && neverEnds {
		return ErrEndingDateAndNeverEnds
	}
	if !hasEndingDate && !neverEnds {
		return ErrNoEndingDate
	}
	return nil
}

type CohortUser struct {
	ID                int64       `json:"id" db:"id"`
	UserID            int64       `json:"user" db:"user_id"`
	CohortID          int64       `json:"cohort" db:"cohort_id"`
	Role              string      `json:"role" db:"role"`
	EducationalStatus null.String `json:"educational_status" db:"educational_status"`
	FinantialStatus   null.String `json:"finantial_status" db:"finantial_status"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

type CohortUserFilter struct {
	AcademyID          int64    `query:"-"`
	Users              []int64  `query:"-"`
	Cohorts            []int64  `query:"-"`
	Roles              []string `query:"-"`
	EducationalStatus  []string `query:"-"`
	ExcludeCohortStage string   `query:"-"`
}

type NewCohortUser struct {
	User              int64  `json:"user" validate:"required"`
	Role              string `json:"role" validate:"omitempty,oneof=STUDENT ASSISTANT TEACHER"`
	EducationalStatus string `json:"educational_status" validate:"omitempty,oneof=ACTIVE POSTPONED GRADUATED SUSPENDED DROPPED"`
	FinantialStatus   string `json:"finantial_status" validate:"omitempty,oneof=FULLY_PAID UP_TO_DATE LATE"`
}

func (ncu *NewCohortUser) Validate(validate *validator.Validate) error {
	ncu.Role = core.CleanString(ncu.Role)
	if ncu.Role == "" {
		ncu.Role = RoleStudent
	}
	return validate.Struct(ncu)
}
