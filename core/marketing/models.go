package marketing

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

// Lead storage statuses
const (
	StoragePending   = "PENDING"
	StoragePersisted = "PERSISTED"
	StorageError     = "ERROR"
)

// FormEntry is a lead captured by a marketing form.
type FormEntry struct {
	ID             int64       `json:"id" db:"id"`
	FirstName      string      `json:"first_name" db:"first_name"`
	LastName       string      `json:"last_name" db:"last_name"`
	Email          null.String `json:"email" db:"email"`
	Phone          null.String `json:"phone" db:"phone"`
	Course         null.String `json:"course" db:"course"`
	Location       null.String `json:"location" db:"location"`
	Language       string      `json:"language" db:"language"`
	UTMURL         null.String `json:"utm_url" db:"utm_url"`
	UTMMedium      null.String `json:"utm_medium" db:"utm_medium"`
	UTMCampaign    null.String `json:"utm_campaign" db:"utm_campaign"`
	UTMSource      null.String `json:"utm_source" db:"utm_source"`
	ReferralKey    null.String `json:"referral_key" db:"referral_key"`
	Tags           string      `json:"tags" db:"tags"`
	ClientComments null.String `json:"client_comments" db:"client_comments"`
	StorageStatus  string      `json:"storage_status" db:"storage_status"`
	AcademyID      null.Int64  `json:"academy" db:"academy_id"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

type LeadFilter struct {
	AcademyID       int64    `query:"-"`
	StorageStatuses []string `query:"-"`
	Location        string   `query:"location"`
	Course          string   `query:"course"`
}

type NewLead struct {
	FirstName      string `json:"first_name" validate:"required,max=150"`
	LastName       string `json:"last_name" validate:"max=150"`
	Email          string `json:"email" validate:"required,email,max=150"`
	Phone          string `json:"phone" validate:"max=17"`
	Course         string `json:"course" validate:"max=70"`
	Location       string `json:"location" validate:"max=70"`
	Language       string `json:"language" validate:"omitempty,len=2"`
	UTMURL         string `json:"utm_url" validate:"max=2000"`
	UTMMedium      string `json:"utm_medium" validate:"max=50"`
	UTMCampaign    string `json:"utm_campaign" validate:"max=50"`
	UTMSource      string `json:"utm_source" validate:"max=50"`
	ReferralKey    string `json:"referral_key" validate:"max=50"`
	Tags           string `json:"tags" validate:"max=100"`
	ClientComments string `json:"client_comments" validate:"max=250"`
	Academy        int64  `json:"academy"`
}

func (nl *NewLead) Validate(validate *validator.Validate) error {
	nl.FirstName = core.CleanString(nl.FirstName)
	nl.LastName = core.CleanString(nl.LastName)
	nl.Email = core.CleanString(nl.Email, true /* lower */)
	nl.Phone = core.CleanString(nl.Phone)
	nl.Language = core.CleanString(nl.Language, true /* lower */)
	nl.Tags = core.CleanString(nl.Tags)
	return validate.Struct(nl)
}

// TagList splits the comma separated tags of the lead.
func (fe FormEntry) TagList() []string {
	var tags []string
	for _, tag := range strings.Split(fe.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

type Downloadable struct {
	ID             int64      `json:"id" db:"id"`
	Slug           string     `json:"slug" db:"slug"`
	Name           string     `json:"name" db:"name"`
	DestinationURL string     `json:"destination_url" db:"destination_url"`
	PreviewURL     string     `json:"preview_url" db:"preview_url"`
	Active         bool       `json:"active" db:"active"`
	AcademyID      null.Int64 `json:"academy" db:"academy_id"`
	AuthorID       null.Int64 `json:"author" db:"author_id"`
	CreatedAt      time.Time  `json:"-" db:"created_at"`
	UpdatedAt      time.Time  `json:"-" db:"updated_at"`
}

type DownloadableFilter struct {
	AcademyID int64 `query:"-"`
	Active    *bool `query:"active"`
}

type NewDownloadable struct {
	Slug           string `json:"slug" validate:"required,max=150"`
	Name           string `json:"name" validate:"required,max=150"`
	DestinationURL string `json:"destination_url" validate:"required,url,max=255"`
	PreviewURL     string `json:"preview_url" validate:"omitempty,url,max=255"`
	Active         *bool  `json:"active"`
}

func (nd *NewDownloadable) Validate(validate *validator.Validate) error {
	nd.Slug = core.Slugify(nd.Slug)
	nd.Name = core.CleanString(nd.Name)
	return validate.Struct(nd)
}

// ACAccount is the ActiveCampaign account of an academy.
type ACAccount struct {
	URL string
	Key string
}

type ACContact struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

type ACTag struct {
	ID          string
	Tag         string
	TagType     string
	Description string
}
