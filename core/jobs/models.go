package jobs

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

// Job statuses
const (
	StatusOpened = "OPENED"
	StatusClosed = "CLOSED"
)

// Job types
const (
	FullTime   = "FULL-TIME"
	PartTime   = "PART-TIME"
	Internship = "INTERNSHIP"
)

type Job struct {
	ID                     int64        `json:"id" db:"id"`
	Title                  string       `json:"title" db:"title"`
	Employer               string       `json:"employer" db:"employer"`
	ApplyURL               string       `json:"apply_url" db:"apply_url"`
	Location               string       `json:"location" db:"location"`
	Remote                 bool         `json:"remote" db:"remote"`
	JobType                string       `json:"job_type" db:"job_type"`
	Salary                 null.String  `json:"salary" db:"salary"`
	MinSalary              null.Float64 `json:"min_salary" db:"min_salary"`
	MaxSalary              null.Float64 `json:"max_salary" db:"max_salary"`
	Currency               string       `json:"currency" db:"currency"`
	PublishedDateRaw       null.String  `json:"published_date_raw" db:"published_date_raw"`
	PublishedDateProcessed null.Time    `json:"published_date_processed" db:"published_date_processed"`
	Status                 string       `json:"status" db:"status"`
	AcademyID              null.Int64   `json:"academy" db:"academy_id"`
	CreatedAt              time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at" db:"updated_at"`
}

type JobFilter struct {
	AcademyID int64    `query:"-"`
	Remote    *bool    `query:"remote"`
	Statuses  []string `query:"-"`
}

type NewJob struct {
	Title     string `json:"title" validate:"required,max=150"`
	Employer  string `json:"employer" validate:"max=150"`
	ApplyURL  string `json:"apply_url" validate:"omitempty,url"`
	Location  string `json:"location" validate:"max=150"`
	Remote    bool   `json:"remote"`
	JobType   string `json:"job_type" validate:"omitempty,oneof=FULL-TIME PART-TIME INTERNSHIP"`
	Salary    string `json:"salary" validate:"max=253"`
	Currency  string `json:"currency" validate:"omitempty,len=3"`
	Published string `json:"published_date_raw" validate:"max=50"`
}

func (nj *NewJob) Validate(validate *validator.Validate) error {
	nj.Title = core.CleanString(nj.Title)
	nj.Employer = core.CleanString(nj.Employer)
	nj.Location = core.CleanString(nj.Location)
	nj.Salary = core.CleanString(nj.Salary)
	nj.Published = core.CleanString(nj.Published)
	return validate.Struct(nj)
}

type UpdateJob struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=150"`
	Employer  *string `json:"employer" validate:"omitempty,max=150"`
	ApplyURL  *string `json:"apply_url" validate:"omitempty,url"`
	Location  *string `json:"location" validate:"omitempty,max=150"`
	Remote    *bool   `json:"remote"`
	JobType   *string `json:"job_type" validate:"omitempty,oneof=FULL-TIME PART-TIME INTERNSHIP"`
	Salary    *string `json:"salary" validate:"omitempty,max=253"`
	Currency  *string `json:"currency" validate:"omitempty,len=3"`
	Published *string `json:"published_date_raw" validate:"omitempty,max=50"`
	Status    *string `json:"status" validate:"omitempty,oneof=OPENED CLOSED"`
}

func (uj *UpdateJob) Validate(validate *validator.Validate) error {
	return validate.Struct(uj)
}
