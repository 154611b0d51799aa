package events

import (
	"context"
	"time"
)

// Eventbrite is implemented by services/eventbrite.
// token is the private key of the organization the call is made for.
type Eventbrite interface {
	GetOrganizationVenues(ctx context.Context, token, orgID string) ([]EBVenue, error)
	GetOrganizationEvents(ctx context.Context, token, orgID string) ([]EBEvent, error)
	// GetEvent fetches the event behind a webhook api_url (organizer and venue expanded).
	GetEvent(ctx context.Context, token, apiURL string) (*EBEvent, error)
	CreateOrganizationEvent(ctx context.Context, token, orgID string, payload map[string]interface{}) (EBEvent, error)
	UpdateOrganizationEvent(ctx context.Context, token, eventID string, payload map[string]interface{}) (EBEvent, error)
	GetEventDescription(ctx context.Context, token, eventID string) (EBStructuredContent, error)
	CreateOrUpdateEventDescription(ctx context.Context, token, eventID, version string, payload map[string]interface{}) (EBStructuredContent, error)
}

type EBText struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

type EBAddress struct {
	Address1   string `json:"address_1"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type EBVenue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     EBAddress `json:"address"`
	Latitude    string    `json:"latitude"`
	Longitude   string    `json:"longitude"`
	ResourceURI string    `json:"resource_uri"`
}

type EBOrganizer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description EBText `json:"description"`
}

type EBDateTime struct {
	UTC      time.Time `json:"utc"`
	Timezone string    `json:"timezone"`
}

type EBLogo struct {
	URL string `json:"url"`
}

type EBEvent struct {
	ID          string       `json:"id"`
	Name        EBText       `json:"name"`
	Description EBText       `json:"description"`
	Start       EBDateTime   `json:"start"`
	End         EBDateTime   `json:"end"`
	Capacity    int          `json:"capacity"`
	OnlineEvent bool         `json:"online_event"`
	URL         string       `json:"url"`
	Status      string       `json:"status"`
	Currency    string       `json:"currency"`
	Published   *time.Time   `json:"published"`
	Logo        *EBLogo      `json:"logo"`
	Venue       *EBVenue     `json:"venue"`
	Organizer   *EBOrganizer `json:"organizer"`
}

type EBModuleBody struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Alignment string `json:"alignment"`
}

type EBModuleData struct {
	Body EBModuleBody `json:"body"`
}

type EBModule struct {
	Type string       `json:"type"`
	Data EBModuleData `json:"data"`
}

type EBStructuredContent struct {
	PageVersionNumber string     `json:"page_version_number"`
	Modules           []EBModule `json:"modules"`
}

// EBWebhook is the payload eventbrite posts to the webhook endpoint.
type EBWebhook struct {
	APIURL string `json:"api_url"`
	Config struct {
		Action      string `json:"action"`
		UserID      string `json:"user_id"`
		EndpointURL string `json:"endpoint_url"`
		WebhookID   string `json:"webhook_id"`
	} `json:"config"`
}

// Webhook actions
const (
	WebhookEventCreated   = "event.created"
	WebhookEventUpdated   = "event.updated"
	WebhookEventPublished = "event.published"
)
