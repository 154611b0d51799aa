package monitoring

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Application and endpoint statuses, from best to worst
const (
	StatusOperational = "OPERATIONAL"
	StatusMinor       = "MINOR"
	StatusCritical    = "CRITICAL"
)

// Download statuses
const (
	DownloadLoading = "LOADING"
	DownloadDone    = "DONE"
	DownloadError   = "ERROR"
)

var statusRank = map[string]int{
	StatusOperational: 0,
	StatusMinor:       1,
	StatusCritical:    2,
}

type Application struct {
	ID          int64       `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	AcademyID   int64       `json:"academy" db:"academy_id"`
	Status      string      `json:"status" db:"status"`
	NotifyEmail null.String `json:"notify_email" db:"notify_email"`
	PausedUntil null.Time   `json:"paused_until" db:"paused_until"`
	CreatedAt   time.Time   `json:"-" db:"created_at"`
	UpdatedAt   time.Time   `json:"-" db:"updated_at"`
}

func (app Application) Paused(now time.Time) bool {
	return app.PausedUntil.Valid && app.PausedUntil.Time.After(now)
}

type Endpoint struct {
	ID                 int64       `json:"id" db:"id"`
	URL                string      `json:"url" db:"url"`
	TestPattern        null.String `json:"test_pattern" db:"test_pattern"`
	ExpectedStatus     int         `json:"expected_status" db:"expected_status"`
	StatusCode         int         `json:"status_code" db:"status_code"`
	SeverityLevel      int         `json:"severity_level" db:"severity_level"`
	Status             string      `json:"status" db:"status"`
	ResponseText       null.String `json:"response_text" db:"response_text"`
	LastCheck          null.Time   `json:"last_check" db:"last_check"`
	FrequencyInMinutes float64     `json:"frequency_in_minutes" db:"frequency_in_minutes"`
	ApplicationID      int64       `json:"application" db:"application_id"`
	PausedUntil        null.Time   `json:"paused_until" db:"paused_until"`
	CreatedAt          time.Time   `json:"-" db:"created_at"`
	UpdatedAt          time.Time   `json:"-" db:"updated_at"`
}

func (ep Endpoint) Paused(now time.Time) bool {
	return ep.PausedUntil.Valid && ep.PausedUntil.Time.After(now)
}

// Due reports whether the endpoint has not been checked for at least its frequency.
func (ep Endpoint) Due(now time.Time) bool {
	if !ep.LastCheck.Valid {
		return true
	}
	freq := time.Duration(ep.FrequencyInMinutes * float64(time.Minute))
	return !now.Before(ep.LastCheck.Time.Add(freq))
}

type EndpointFilter struct {
	AcademyID     int64 `query:"-"`
	ApplicationID int64 `query:"application"`
}

type CSVDownload struct {
	ID            int64       `json:"id" db:"id"`
	Name          string      `json:"name" db:"name"`
	URL           null.String `json:"url" db:"url"`
	Status        string      `json:"status" db:"status"`
	StatusMessage null.String `json:"status_message" db:"status_message"`
	AcademyID     null.Int64  `json:"academy" db:"academy_id"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	FinishedAt    null.Time   `json:"finished_at" db:"finished_at"`
}

type NewDownload struct {
	Source string `json:"source" validate:"required,oneof=events answers"`
}

// CheckResult is what an endpoint answered.
type CheckResult struct {
	StatusCode int
	Body       string
}
