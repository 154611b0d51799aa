package events

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

// Event statuses
const (
	StatusDraft     = "DRAFT"
	StatusActive    = "ACTIVE"
	StatusDeleted   = "DELETED"
	StatusCompleted = "COMPLETED"
)

// Sync statuses, for organizations and events
const (
	SyncPending   = "PENDING"
	SyncPersisted = "PERSISTED"
	SyncSynched   = "SYNCHED"
	SyncError     = "ERROR"
)

// statusMap translates eventbrite event statuses.
var statusMap = map[string]string{
	"draft":     StatusDraft,
	"live":      StatusActive,
	"completed": StatusCompleted,
	"started":   StatusActive,
	"ended":     StatusActive,
	"canceled":  StatusDeleted,
}

type Organization struct {
	ID            int64       `json:"id" db:"id"`
	EventbriteID  string      `json:"eventbrite_id" db:"eventbrite_id"`
	EventbriteKey string      `json:"-" db:"eventbrite_key"`
	Name          string      `json:"name" db:"name"`
	AcademyID     null.Int64  `json:"academy" db:"academy_id"`
	SyncStatus    string      `json:"sync_status" db:"sync_status"`
	SyncDesc      null.String `json:"sync_desc" db:"sync_desc"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

type Organizer struct {
	ID             int64       `json:"id" db:"id"`
	EventbriteID   string      `json:"eventbrite_id" db:"eventbrite_id"`
	Name           null.String `json:"name" db:"name"`
	Description    null.String `json:"description" db:"description"`
	OrganizationID int64       `json:"organization" db:"organization_id"`
	AcademyID      null.Int64  `json:"academy" db:"academy_id"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

type Venue struct {
	ID             int64       `json:"id" db:"id"`
	Title          null.String `json:"title" db:"title"`
	StreetAddress  null.String `json:"street_address" db:"street_address"`
	Country        null.String `json:"country" db:"country"`
	City           null.String `json:"city" db:"city"`
	State          null.String `json:"state" db:"state"`
	ZipCode        null.String `json:"zip_code" db:"zip_code"`
	Latitude       float64     `json:"latitude" db:"latitude"`
	Longitude      float64     `json:"longitude" db:"longitude"`
	Status         string      `json:"status" db:"status"`
	EventbriteID   null.String `json:"eventbrite_id" db:"eventbrite_id"`
	EventbriteURL  null.String `json:"eventbrite_url" db:"eventbrite_url"`
	AcademyID      null.Int64  `json:"academy" db:"academy_id"`
	OrganizationID null.Int64  `json:"organization" db:"organization_id"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

type EventType struct {
	ID        int64      `json:"id" db:"id"`
	Slug      string     `json:"slug" db:"slug"`
	Name      string     `json:"name" db:"name"`
	AcademyID null.Int64 `json:"academy" db:"academy_id"`
	CreatedAt time.Time  `json:"-" db:"created_at"`
	UpdatedAt time.Time  `json:"-" db:"updated_at"`
}

type Event struct {
	ID                        int64       `json:"id" db:"id"`
	Title                     null.String `json:"title" db:"title"`
	Description               null.String `json:"description" db:"description"`
	Excerpt                   null.String `json:"excerpt" db:"excerpt"`
	Lang                      null.String `json:"lang" db:"lang"`
	URL                       null.String `json:"url" db:"url"`
	Banner                    null.String `json:"banner" db:"banner"`
	Capacity                  int         `json:"capacity" db:"capacity"`
	StartingAt                time.Time   `json:"starting_at" db:"starting_at"`
	EndingAt                  time.Time   `json:"ending_at" db:"ending_at"`
	Status                    string      `json:"status" db:"status"`
	OnlineEvent               bool        `json:"online_event" db:"online_event"`
	Host                      null.String `json:"host" db:"host"`
	Currency                  string      `json:"currency" db:"currency"`
	SyncWithEventbrite        bool        `json:"sync_with_eventbrite" db:"sync_with_eventbrite"`
	EventbriteID              null.String `json:"eventbrite_id" db:"eventbrite_id"`
	EventbriteURL             null.String `json:"eventbrite_url" db:"eventbrite_url"`
	EventbriteOrganizerID     null.String `json:"eventbrite_organizer_id" db:"eventbrite_organizer_id"`
	EventbriteStatus          null.String `json:"eventbrite_status" db:"eventbrite_status"`
	EventbriteSyncStatus      string      `json:"eventbrite_sync_status" db:"eventbrite_sync_status"`
	EventbriteSyncDescription null.String `json:"eventbrite_sync_description" db:"eventbrite_sync_description"`
	PublishedAt               null.Time   `json:"published_at" db:"published_at"`
	EventTypeID               null.Int64  `json:"event_type" db:"event_type_id"`
	AcademyID                 null.Int64  `json:"academy" db:"academy_id"`
	OrganizationID            null.Int64  `json:"organization" db:"organization_id"`
	VenueID                   null.Int64  `json:"venue" db:"venue_id"`
	AuthorID                  null.Int64  `json:"author" db:"author_id"`
	CreatedAt                 time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt                 time.Time   `json:"updated_at" db:"updated_at"`
}

// EventItem is the list representation of an event.
type EventItem struct {
	ID          int64          `json:"id" db:"id"`
	Excerpt     null.String    `json:"excerpt" db:"excerpt"`
	Title       null.String    `json:"title" db:"title"`
	Lang        null.String    `json:"lang" db:"lang"`
	URL         null.String    `json:"url" db:"url"`
	Banner      null.String    `json:"banner" db:"banner"`
	StartingAt  time.Time      `json:"starting_at" db:"starting_at"`
	EndingAt    time.Time      `json:"ending_at" db:"ending_at"`
	Status      string         `json:"status" db:"status"`
	EventType   *EventTypeItem `json:"event_type" db:"-"`
	OnlineEvent bool           `json:"online_event" db:"online_event"`
	Venue       *VenueItem     `json:"venue" db:"-"`
}

type EventTypeItem struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type VenueItem struct {
	ID            int64       `json:"id"`
	Title         null.String `json:"title"`
	StreetAddress null.String `json:"street_address"`
	City          null.String `json:"city"`
	State         null.String `json:"state"`
	ZipCode       null.String `json:"zip_code"`
}

type EventFilter struct {
	AcademyID int64    `query:"-"`
	City      string   `query:"city"`
	Country   string   `query:"country"`
	ZipCode   string   `query:"zip_code"`
	Past      string   `query:"past"` // "true": only past events, "false": only upcoming ones
	Statuses  []string `query:"-"`
}

// EventPayload is used to create and update events.
type EventPayload struct {
	Title              string    `json:"title" validate:"required"`
	Description        string    `json:"description"`
	Excerpt            string    `json:"excerpt"`
	Lang               string    `json:"lang" validate:"omitempty,len=2"`
	URL                string    `json:"url" validate:"omitempty,url"`
	Banner             string    `json:"banner" validate:"omitempty,url"`
	Capacity           int       `json:"capacity" validate:"min=0"`
	StartingAt         time.Time `json:"starting_at" validate:"required"`
	EndingAt           time.Time `json:"ending_at" validate:"required"`
	Status             string    `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE DELETED COMPLETED"`
	OnlineEvent        bool      `json:"online_event"`
	Host               string    `json:"host"`
	Currency           string    `json:"currency" validate:"omitempty,len=3"`
	SyncWithEventbrite bool      `json:"sync_with_eventbrite"`
	EventType          int64     `json:"event_type"`
	Venue              int64     `json:"venue"`
	Organization       int64     `json:"organization"`
}

func (ep *EventPayload) Validate(validate *validator.Validate) error {
	ep.Title = core.CleanString(ep.Title)
	ep.Lang = core.CleanString(ep.Lang, true /* lower */)
	ep.URL = core.CleanString(ep.URL)
	ep.Currency = core.CleanString(ep.Currency)
	if err := validate.Struct(ep); err != nil {
		return err
	}
	if !ep.EndingAt.After(ep.StartingAt) {
		return ErrEndsBeforeStart
	}
	// the url is filled by the eventbrite sync otherwise
	if ep.URL == "" && !ep.SyncWithEventbrite {
		return core.NewValidationError(nil, core.FieldError{Field: "url", Error: "This field is required."})
	}
	return nil
}
