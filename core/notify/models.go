package notify

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// Mentorship session statuses
const (
	SessionPending   = "PENDING"
	SessionStarted   = "STARTED"
	SessionCompleted = "COMPLETED"
	SessionFailed    = "FAILED"
	SessionIgnored   = "IGNORED"
)

type MentorshipSession struct {
	ID               int64       `json:"id" db:"id"`
	Name             string      `json:"name" db:"name"`
	Status           string      `json:"status" db:"status"`
	OnlineMeetingURL null.String `json:"online_meeting_url" db:"online_meeting_url"`
	MentorID         int64       `json:"mentor" db:"mentor_id"`
	MenteeID         null.Int64  `json:"mentee" db:"mentee_id"`
	AcademyID        int64       `json:"academy" db:"academy_id"`
	StartedAt        null.Time   `json:"started_at" db:"started_at"`
	EndedAt          null.Time   `json:"ended_at" db:"ended_at"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

type UpdateSession struct {
	Status string `json:"status" validate:"required,oneof=PENDING STARTED COMPLETED FAILED IGNORED"`
}

func (us *UpdateSession) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}

// Preview is an email template rendered with sample data.
type Preview struct {
	Slug    string `json:"slug"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}
