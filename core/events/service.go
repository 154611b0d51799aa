package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/admissions"
)

var (
	// errors
	ErrOrganizationNotFound = core.NewNotFoundError("organization-not-found")
	ErrOrganizerNotFound    = core.NewNotFoundError("organizer-not-found")
	ErrVenueNotFound        = core.NewNotFoundError("venue-not-found")
	ErrEventTypeNotFound    = core.NewNotFoundError("event-type-not-found")
	ErrEventNotFound        = core.NewNotFoundError("event-not-found")
	ErrEndsBeforeStart      = core.NewSlugValidationError("event-ends-before-start")
	ErrInvalidWindow        = core.NewSlugValidationError("schedule-window-ends-before-start")
	ErrOrgWithoutAcademy    = errors.New("First you must specify to which academy this organization belongs")
	ErrOrgWithoutKey        = errors.New("The organization does not have an eventbrite key")
	errEmptyData            = errors.New("data is empty")
)

type (
	Repository interface {
		QueryOrganizations(ctx context.Context, academyID int64) ([]Organization, error)
		GetOrganization(ctx context.Context, id int64) (Organization, error)
		UpdateOrganization(ctx context.Context, org Organization) (Organization, error)

		GetOrganizerByEventbriteID(ctx context.Context, eventbriteID string) (Organizer, error)
		CreateOrganizer(ctx context.Context, o Organizer) (Organizer, error)
		UpdateOrganizer(ctx context.Context, o Organizer) (Organizer, error)

		QueryVenues(ctx context.Context, academyID int64) ([]Venue, error)
		GetVenue(ctx context.Context, academyID, id int64) (Venue, error)
		GetVenueByEventbriteID(ctx context.Context, academyID int64, eventbriteID string) (Venue, error)
		CreateVenue(ctx context.Context, v Venue) (Venue, error)
		UpdateVenue(ctx context.Context, v Venue) (Venue, error)

		// QueryEventTypes returns every event type, or the ones of the academy with the given slug.
		QueryEventTypes(ctx context.Context, academySlug string) ([]EventType, error)
		GetEventType(ctx context.Context, id int64) (EventType, error)

		// QueryEvents returns the events ordered by starting date, most recent first.
		QueryEvents(ctx context.Context, filter EventFilter, now time.Time, page core.Pagination) ([]EventItem, int, error)
		// GetEvent returns ErrEventNotFound if the event does not belong to academyID (unless academyID is 0).
		GetEvent(ctx context.Context, academyID, id int64) (Event, error)
		GetEventByEventbriteID(ctx context.Context, eventbriteID string) (Event, error)
		// QueryEventsToExport returns the events of the organization waiting to be exported to eventbrite.
		QueryEventsToExport(ctx context.Context, organizationID int64) ([]Event, error)
		CreateEvent(ctx context.Context, event Event) (Event, error)
		UpdateEvent(ctx context.Context, event Event) (Event, error)
	}

	Service interface {
		Organizations(ctx context.Context, academyID int64) ([]Organization, error)
		Venues(ctx context.Context, academyID int64) ([]Venue, error)
		EventTypes(ctx context.Context, academySlug string) ([]EventType, error)

		QueryEvents(ctx context.Context, filter EventFilter, page core.Pagination) ([]EventItem, int, error)
		// PublicEvents returns the upcoming active events of every academy.
		PublicEvents(ctx context.Context, page core.Pagination) ([]EventItem, int, error)
		GetEvent(ctx context.Context, academyID, id int64) (Event, error)
		CreateEvent(ctx context.Context, academyID, authorID int64, ep EventPayload) (Event, error)
		UpdateEvent(ctx context.Context, academyID, id int64, ep EventPayload) (Event, error)

		// CohortSchedule returns the timeslots of the academy's running cohorts placed in the [start, end] window.
		CohortSchedule(ctx context.Context, academyID int64, start, end time.Time) ([]ScheduledTimeSlot, error)

		// SyncOrganization pulls the venues then the events of the organization from eventbrite.
		SyncOrganization(ctx context.Context, orgID int64) error
		SyncOrgVenues(ctx context.Context, org Organization) error
		SyncOrgEvents(ctx context.Context, org Organization) error
		CreateOrUpdateOrganizer(ctx context.Context, data EBOrganizer, org Organization, force bool) (Organizer, error)
		CreateOrUpdateVenue(ctx context.Context, data EBVenue, org Organization, force bool) (Venue, error)
		UpdateOrCreateEvent(ctx context.Context, data *EBEvent, org Organization) (*Event, error)
		UpdateEventDescriptionFromEventbrite(ctx context.Context, event Event) (Event, error)
		PublishEventFromEventbrite(ctx context.Context, data *EBEvent, org Organization) (Event, error)
		ExportEventToEventbrite(ctx context.Context, event Event, org Organization) (Event, error)
		ExportEventDescriptionToEventbrite(ctx context.Context, event Event) (Event, error)

		// QueueWebhook schedules the processing of an eventbrite webhook call.
		QueueWebhook(ctx context.Context, orgID int64, hook EBWebhook) error
		ProcessWebhook(ctx context.Context, orgID int64, hook EBWebhook) error
	}

	service struct {
		repo       Repository
		admSvc     admissions.Service
		eventbrite Eventbrite
		tasks      core.TaskQueue
		logger     core.Logger
		now        func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	admSvc admissions.Service,
	eventbrite Eventbrite,
	tasks core.TaskQueue,
	logger core.Logger,
) Service {
	return &service{
		repo:       repo,
		admSvc:     admSvc,
		eventbrite: eventbrite,
		tasks:      tasks,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (svc *service) Organizations(ctx context.Context, academyID int64) ([]Organization, error) {
	return svc.repo.QueryOrganizations(ctx, academyID)
}

func (svc *service) Venues(ctx context.Context, academyID int64) ([]Venue, error) {
	return svc.repo.QueryVenues(ctx, academyID)
}

func (svc *service) EventTypes(ctx context.Context, academySlug string) ([]EventType, error) {
	return svc.repo.QueryEventTypes(ctx, academySlug)
}

// Events

func (svc *service) QueryEvents(ctx context.Context, filter EventFilter, page core.Pagination) ([]EventItem, int, error) {
	return svc.repo.QueryEvents(ctx, filter, svc.now(), page)
}

func (svc *service) PublicEvents(ctx context.Context, page core.Pagination) ([]EventItem, int, error) {
	filter := EventFilter{Past: "false", Statuses: []string{StatusActive}}
	return svc.repo.QueryEvents(ctx, filter, svc.now(), page)
}

func (svc *service) GetEvent(ctx context.Context, academyID, id int64) (Event, error) {
	return svc.repo.GetEvent(ctx, academyID, id)
}

func (svc *service) CreateEvent(ctx context.Context, academyID, authorID int64, ep EventPayload) (Event, error) {
	now := svc.now()
	event := Event{
		Status:               StatusDraft,
		Lang:                 null.StringFrom("en"),
		Currency:             "USD",
		EventbriteSyncStatus: SyncPending,
		AcademyID:            null.Int64From(academyID),
		AuthorID:             null.NewInt64(authorID, authorID != 0),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := svc.applyPayload(ctx, academyID, &event, ep); err != nil {
		return Event{}, err
	}

	event, err := svc.repo.CreateEvent(ctx, event)
	if err != nil {
		return Event{}, errors.Wrap(err, "creating event")
	}
	svc.queueExport(event)
	return event, nil
}

func (svc *service) UpdateEvent(ctx context.Context, academyID, id int64, ep EventPayload) (Event, error) {
	event, err := svc.repo.GetEvent(ctx, academyID, id)
	if err != nil {
		return Event{}, err
	}
	if err = svc.applyPayload(ctx, academyID, &event, ep); err != nil {
		return Event{}, err
	}
	if event.SyncWithEventbrite {
		event.EventbriteSyncStatus = SyncPending
	}
	event.UpdatedAt = svc.now()

	if event, err = svc.repo.UpdateEvent(ctx, event); err != nil {
		return Event{}, errors.Wrap(err, "updating event")
	}
	svc.queueExport(event)
	return event, nil
}

func (svc *service) applyPayload(ctx context.Context, academyID int64, event *Event, ep EventPayload) error {
	if ep.EventType != 0 {
		et, err := svc.repo.GetEventType(ctx, ep.EventType)
		if err != nil {
			return err
		}
		if et.AcademyID.Valid && et.AcademyID.Int64 != academyID {
			return ErrEventTypeNotFound
		}
		event.EventTypeID = null.Int64From(et.ID)
	}
	if ep.Venue != 0 {
		if _, err := svc.repo.GetVenue(ctx, academyID, ep.Venue); err != nil {
			return err
		}
		event.VenueID = null.Int64From(ep.Venue)
	}
	if ep.Organization != 0 {
		org, err := svc.repo.GetOrganization(ctx, ep.Organization)
		if err != nil {
			return err
		}
		if org.AcademyID.Int64 != academyID {
			return ErrOrganizationNotFound
		}
		event.OrganizationID = null.Int64From(org.ID)
	}

	event.Title = null.StringFrom(ep.Title)
	event.Description = null.NewString(ep.Description, ep.Description != "")
	event.Excerpt = null.NewString(ep.Excerpt, ep.Excerpt != "")
	if ep.Lang != "" {
		event.Lang = null.StringFrom(ep.Lang)
	}
	event.URL = null.NewString(ep.URL, ep.URL != "")
	event.Banner = null.NewString(ep.Banner, ep.Banner != "")
	event.Capacity = ep.Capacity
	event.StartingAt = ep.StartingAt.UTC()
	event.EndingAt = ep.EndingAt.UTC()
	if ep.Status != "" {
		event.Status = ep.Status
	}
	event.OnlineEvent = ep.OnlineEvent
	event.Host = null.NewString(ep.Host, ep.Host != "")
	if ep.Currency != "" {
		event.Currency = ep.Currency
	}
	event.SyncWithEventbrite = ep.SyncWithEventbrite
	return nil
}

// queueExport schedules the export of the event when it is synced with eventbrite.
func (svc *service) queueExport(event Event) {
	if !event.SyncWithEventbrite || !event.OrganizationID.Valid {
		return
	}
	eventID, orgID := event.ID, event.OrganizationID.Int64
	err := svc.tasks.Enqueue("export_event_to_eventbrite", func(ctx context.Context) error {
		event, err := svc.repo.GetEvent(ctx, 0, eventID)
		if err != nil {
			return err
		}
		org, err := svc.repo.GetOrganization(ctx, orgID)
		if err != nil {
			return err
		}
		_, err = svc.ExportEventToEventbrite(ctx, event, org)
		return err
	})
	if err != nil {
		svc.logger.Error("could not queue event export", err, map[string]interface{}{"event": eventID})
	}
}

func (svc *service) CohortSchedule(ctx context.Context, academyID int64, start, end time.Time) ([]ScheduledTimeSlot, error) {
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}
	academy, err := svc.admSvc.GetAcademy(ctx, academyID)
	if err != nil {
		return nil, err
	}
	slots, err := svc.admSvc.AcademyCohortTimeSlots(ctx, academyID)
	if err != nil {
		return nil, errors.Wrap(err, "querying cohort timeslots")
	}

	scheduled, err := UpdateTimeslotsOutOfRange(start, end, slots)
	if err != nil {
		return nil, err
	}
	for i := range scheduled {
		if scheduled[i].Description, err = TimeSlotDescription(scheduled[i], academy.Timezone); err != nil {
			return nil, err
		}
	}
	return scheduled, nil
}

// Eventbrite sync

func (svc *service) SyncOrganization(ctx context.Context, orgID int64) error {
	org, err := svc.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return err
	}
	if err = svc.SyncOrgVenues(ctx, org); err != nil {
		return err
	}
	return svc.SyncOrgEvents(ctx, org)
}

func (svc *service) SyncOrgVenues(ctx context.Context, org Organization) error {
	if !org.AcademyID.Valid {
		return ErrOrgWithoutAcademy
	}
	venues, err := svc.eventbrite.GetOrganizationVenues(ctx, org.EventbriteKey, org.EventbriteID)
	if err != nil {
		return errors.Wrap(err, "getting organization venues")
	}
	for _, data := range venues {
		if _, err = svc.CreateOrUpdateVenue(ctx, data, org, true); err != nil {
			return err
		}
	}
	return nil
}

func (svc *service) CreateOrUpdateOrganizer(ctx context.Context, data EBOrganizer, org Organization, force bool) (Organizer, error) {
	if !org.AcademyID.Valid {
		return Organizer{}, ErrOrgWithoutAcademy
	}
	organizer, err := svc.repo.GetOrganizerByEventbriteID(ctx, data.ID)
	found := err == nil
	if err != nil && !core.IsNotFound(err) {
		return Organizer{}, errors.Wrap(err, "getting organizer")
	}
	if found && !force {
		return organizer, nil
	}

	now := svc.now()
	organizer.EventbriteID = data.ID
	organizer.Name = null.NewString(data.Name, data.Name != "")
	organizer.Description = null.NewString(data.Description.Text, data.Description.Text != "")
	organizer.OrganizationID = org.ID
	organizer.AcademyID = org.AcademyID
	organizer.UpdatedAt = now
	if found {
		return svc.repo.UpdateOrganizer(ctx, organizer)
	}
	organizer.CreatedAt = now
	return svc.repo.CreateOrganizer(ctx, organizer)
}

func (svc *service) CreateOrUpdateVenue(ctx context.Context, data EBVenue, org Organization, force bool) (Venue, error) {
	if !org.AcademyID.Valid {
		return Venue{}, ErrOrgWithoutAcademy
	}
	venue, err := svc.repo.GetVenueByEventbriteID(ctx, org.AcademyID.Int64, data.ID)
	found := err == nil
	if err != nil && !core.IsNotFound(err) {
		return Venue{}, errors.Wrap(err, "getting venue")
	}
	if found && !force {
		return venue, nil
	}

	now := svc.now()
	venue.Title = null.NewString(data.Name, data.Name != "")
	venue.StreetAddress = null.NewString(data.Address.Address1, data.Address.Address1 != "")
	venue.Country = null.NewString(data.Address.Country, data.Address.Country != "")
	venue.City = null.NewString(data.Address.City, data.Address.City != "")
	venue.State = null.NewString(data.Address.Region, data.Address.Region != "")
	venue.ZipCode = null.NewString(data.Address.PostalCode, data.Address.PostalCode != "")
	venue.Latitude, _ = strconv.ParseFloat(data.Latitude, 64)
	venue.Longitude, _ = strconv.ParseFloat(data.Longitude, 64)
	venue.EventbriteID = null.StringFrom(data.ID)
	venue.EventbriteURL = null.NewString(data.ResourceURI, data.ResourceURI != "")
	venue.AcademyID = org.AcademyID
	venue.OrganizationID = null.Int64From(org.ID)
	venue.UpdatedAt = now
	if found {
		return svc.repo.UpdateVenue(ctx, venue)
	}
	venue.Status = StatusDraft
	venue.CreatedAt = now
	return svc.repo.CreateVenue(ctx, venue)
}

func (svc *service) SyncOrgEvents(ctx context.Context, org Organization) error {
	fail := func(err error) error {
		org.SyncStatus = SyncError
		org.SyncDesc = null.StringFrom("Error: " + err.Error())
		org.UpdatedAt = svc.now()
		if _, uerr := svc.repo.UpdateOrganization(ctx, org); uerr != nil {
			svc.logger.Error("could not save organization sync status", uerr)
		}
		return err
	}

	data, err := svc.eventbrite.GetOrganizationEvents(ctx, org.EventbriteKey, org.EventbriteID)
	if err != nil {
		return fail(errors.Wrap(err, "getting organization events"))
	}
	for i := range data {
		if _, err = svc.UpdateOrCreateEvent(ctx, &data[i], org); err != nil {
			return fail(err)
		}
	}

	org.SyncStatus = SyncPersisted
	org.SyncDesc = null.StringFrom(fmt.Sprintf("Success with %d events", len(data)))
	org.UpdatedAt = svc.now()
	if org, err = svc.repo.UpdateOrganization(ctx, org); err != nil {
		return errors.Wrap(err, "updating organization")
	}

	pending, err := svc.repo.QueryEventsToExport(ctx, org.ID)
	if err != nil {
		return errors.Wrap(err, "querying events to export")
	}
	for _, event := range pending {
		if _, err = svc.ExportEventToEventbrite(ctx, event, org); err != nil {
			svc.logger.Error("could not export event to eventbrite", err, map[string]interface{}{"event": event.ID})
		}
	}
	return nil
}

// UpdateOrCreateEvent upserts the event received from eventbrite. It returns nil when there is no data.
func (svc *service) UpdateOrCreateEvent(ctx context.Context, data *EBEvent, org Organization) (*Event, error) {
	if data == nil {
		return nil, nil
	}
	status, ok := statusMap[data.Status]
	if !ok {
		return nil, errors.Errorf("Unknown eventbrite status %s", data.Status)
	}

	event, err := svc.repo.GetEventByEventbriteID(ctx, data.ID)
	found := err == nil
	if err != nil && !core.IsNotFound(err) {
		return nil, errors.Wrap(err, "getting event")
	}
	now := svc.now()
	if !found {
		event = Event{
			SyncWithEventbrite: true,
			Lang:               null.StringFrom("en"),
			CreatedAt:          now,
		}
	}

	if data.Venue != nil {
		venue, err := svc.CreateOrUpdateVenue(ctx, *data.Venue, org, false)
		if err != nil {
			return nil, err
		}
		event.VenueID = null.Int64From(venue.ID)
	}
	event.AcademyID = org.AcademyID
	if data.Organizer != nil {
		organizer, err := svc.CreateOrUpdateOrganizer(ctx, *data.Organizer, org, true)
		if err != nil {
			return nil, err
		}
		event.EventbriteOrganizerID = null.StringFrom(organizer.EventbriteID)
		if organizer.AcademyID.Valid {
			event.AcademyID = organizer.AcademyID
		}
	}

	event.Title = null.NewString(data.Name.Text, data.Name.Text != "")
	event.Excerpt = null.NewString(data.Description.Text, data.Description.Text != "")
	event.StartingAt = data.Start.UTC
	event.EndingAt = data.End.UTC
	event.Capacity = data.Capacity
	event.OnlineEvent = data.OnlineEvent
	event.Status = status
	event.Currency = data.Currency
	event.EventbriteID = null.StringFrom(data.ID)
	event.EventbriteURL = null.NewString(data.URL, data.URL != "")
	event.EventbriteStatus = null.StringFrom(data.Status)
	event.OrganizationID = null.Int64From(org.ID)
	if data.Published != nil {
		event.PublishedAt = null.TimeFrom(*data.Published)
	}
	if data.Logo != nil && data.Logo.URL != "" {
		event.Banner = null.StringFrom(data.Logo.URL)
	}
	if !event.URL.Valid {
		event.URL = event.EventbriteURL
	}
	event.EventbriteSyncStatus = SyncPersisted
	event.EventbriteSyncDescription = null.StringFrom(now.Format(time.RFC3339))
	event.UpdatedAt = now

	if found {
		event, err = svc.repo.UpdateEvent(ctx, event)
	} else {
		event, err = svc.repo.CreateEvent(ctx, event)
	}
	if err != nil {
		return nil, errors.Wrap(err, "saving event")
	}

	if event, err = svc.UpdateEventDescriptionFromEventbrite(ctx, event); err != nil {
		svc.logger.Error("could not update event description", err, map[string]interface{}{"event": event.ID})
	}
	return &event, nil
}

func (svc *service) organizationOf(ctx context.Context, event Event) (Organization, error) {
	if !event.OrganizationID.Valid {
		return Organization{}, ErrOrganizationNotFound
	}
	return svc.repo.GetOrganization(ctx, event.OrganizationID.Int64)
}

// syncFailed records err as the eventbrite sync status of the event.
func (svc *service) syncFailed(ctx context.Context, event Event, err error) (Event, error) {
	now := svc.now()
	event.EventbriteSyncStatus = SyncError
	event.EventbriteSyncDescription = null.StringFrom(fmt.Sprintf("%s => %s", now.Format(time.RFC3339), err))
	event.UpdatedAt = now
	if updated, uerr := svc.repo.UpdateEvent(ctx, event); uerr == nil {
		event = updated
	} else {
		svc.logger.Error("could not save event sync status", uerr)
	}
	return event, err
}

func (svc *service) UpdateEventDescriptionFromEventbrite(ctx context.Context, event Event) (Event, error) {
	if !event.EventbriteID.Valid {
		svc.logger.Warn(fmt.Sprintf("The event %d does not come from eventbrite", event.ID))
		return event, nil
	}
	org, err := svc.organizationOf(ctx, event)
	if err != nil {
		return event, err
	}

	data, err := svc.eventbrite.GetEventDescription(ctx, org.EventbriteKey, event.EventbriteID.String)
	if err != nil {
		return svc.syncFailed(ctx, event, err)
	}
	if len(data.Modules) == 0 {
		return svc.syncFailed(ctx, event, errors.New("Could not find the event description"))
	}

	now := svc.now()
	event.Description = null.StringFrom(data.Modules[0].Data.Body.Text)
	event.EventbriteSyncStatus = SyncPersisted
	event.EventbriteSyncDescription = null.StringFrom(now.Format(time.RFC3339))
	event.UpdatedAt = now
	return svc.repo.UpdateEvent(ctx, event)
}

func (svc *service) PublishEventFromEventbrite(ctx context.Context, data *EBEvent, org Organization) (Event, error) {
	if data == nil || data.ID == "" {
		return Event{}, errEmptyData
	}
	event, err := svc.repo.GetEventByEventbriteID(ctx, data.ID)
	if core.IsNotFound(err) {
		return Event{}, errors.Errorf("The event with the eventbrite id `%s` doesn't exist", data.ID)
	} else if err != nil {
		return Event{}, errors.Wrap(err, "getting event")
	}

	now := svc.now()
	event.Status = StatusActive
	event.EventbriteStatus = null.StringFrom(data.Status)
	event.EventbriteSyncStatus = SyncPersisted
	event.EventbriteSyncDescription = null.StringFrom(now.Format(time.RFC3339))
	event.OrganizationID = null.Int64From(org.ID)
	event.UpdatedAt = now
	return svc.repo.UpdateEvent(ctx, event)
}

func (svc *service) ExportEventToEventbrite(ctx context.Context, event Event, org Organization) (Event, error) {
	if org.EventbriteKey == "" {
		return svc.syncFailed(ctx, event, ErrOrgWithoutKey)
	}
	tz := "UTC"
	if event.AcademyID.Valid {
		academy, err := svc.admSvc.GetAcademy(ctx, event.AcademyID.Int64)
		if err != nil {
			return event, err
		}
		if academy.Timezone != "" {
			tz = academy.Timezone
		}
	}

	const utcLayout = "2006-01-02T15:04:05Z"
	payload := map[string]interface{}{
		"event.name.html":        event.Title.String,
		"event.description.html": event.Description.String,
		"event.start.utc":        event.StartingAt.UTC().Format(utcLayout),
		"event.start.timezone":   tz,
		"event.end.utc":          event.EndingAt.UTC().Format(utcLayout),
		"event.end.timezone":     tz,
		"event.capacity":         event.Capacity,
		"event.online_event":     event.OnlineEvent,
		"event.url":              event.URL.String,
		"event.currency":         event.Currency,
	}
	if event.EventbriteOrganizerID.Valid {
		payload["event.organizer_id"] = event.EventbriteOrganizerID.String
	}

	var (
		res EBEvent
		err error
	)
	if event.EventbriteID.Valid {
		res, err = svc.eventbrite.UpdateOrganizationEvent(ctx, org.EventbriteKey, event.EventbriteID.String, payload)
	} else {
		res, err = svc.eventbrite.CreateOrganizationEvent(ctx, org.EventbriteKey, org.EventbriteID, payload)
	}
	if err != nil {
		return svc.syncFailed(ctx, event, err)
	}

	now := svc.now()
	if !event.EventbriteID.Valid {
		event.EventbriteID = null.StringFrom(res.ID)
		event.EventbriteURL = null.NewString(res.URL, res.URL != "")
	}
	event.EventbriteSyncStatus = SyncSynched
	event.EventbriteSyncDescription = null.StringFrom(now.Format(time.RFC3339))
	event.UpdatedAt = now
	if event, err = svc.repo.UpdateEvent(ctx, event); err != nil {
		return event, errors.Wrap(err, "updating event")
	}
	return svc.ExportEventDescriptionToEventbrite(ctx, event)
}

func (svc *service) ExportEventDescriptionToEventbrite(ctx context.Context, event Event) (Event, error) {
	switch {
	case !event.EventbriteID.Valid:
		svc.logger.Warn(fmt.Sprintf("Event %d is not linked to eventbrite", event.ID))
		return event, nil
	case !event.OrganizationID.Valid:
		svc.logger.Warn(fmt.Sprintf("Event %d has no organization", event.ID))
		return event, nil
	case !event.Description.Valid || event.Description.String == "":
		svc.logger.Warn(fmt.Sprintf("Event %d has no description yet", event.ID))
		return event, nil
	}
	org, err := svc.organizationOf(ctx, event)
	if err != nil {
		return event, err
	}

	current, err := svc.eventbrite.GetEventDescription(ctx, org.EventbriteKey, event.EventbriteID.String)
	if err != nil {
		return svc.syncFailed(ctx, event, err)
	}
	payload := map[string]interface{}{
		"modules": []EBModule{{
			Type: "text",
			Data: EBModuleData{Body: EBModuleBody{Type: "text", Text: event.Description.String, Alignment: "left"}},
		}},
		"publish": true,
		"purpose": "listing",
	}
	res, err := svc.eventbrite.CreateOrUpdateEventDescription(ctx, org.EventbriteKey, event.EventbriteID.String, current.PageVersionNumber, payload)
	if err != nil {
		return svc.syncFailed(ctx, event, err)
	}
	if len(res.Modules) == 0 {
		return svc.syncFailed(ctx, event, errors.New("Could not export the event description"))
	}

	now := svc.now()
	event.EventbriteSyncStatus = SyncSynched
	event.EventbriteSyncDescription = null.StringFrom(now.Format(time.RFC3339))
	event.UpdatedAt = now
	return svc.repo.UpdateEvent(ctx, event)
}

// Webhooks

func (svc *service) QueueWebhook(ctx context.Context, orgID int64, hook EBWebhook) error {
	if _, err := svc.repo.GetOrganization(ctx, orgID); err != nil {
		return err
	}
	return svc.tasks.Enqueue("eventbrite_webhook", func(ctx context.Context) error {
		return svc.ProcessWebhook(ctx, orgID, hook)
	})
}

func (svc *service) ProcessWebhook(ctx context.Context, orgID int64, hook EBWebhook) error {
	org, err := svc.repo.GetOrganization(ctx, orgID)
	if err != nil {
		return err
	}

	switch hook.Config.Action {
	case WebhookEventCreated, WebhookEventUpdated:
		data, err := svc.eventbrite.GetEvent(ctx, org.EventbriteKey, hook.APIURL)
		if err != nil {
			return errors.Wrap(err, "getting webhook event")
		}
		_, err = svc.UpdateOrCreateEvent(ctx, data, org)
		return err
	case WebhookEventPublished:
		data, err := svc.eventbrite.GetEvent(ctx, org.EventbriteKey, hook.APIURL)
		if err != nil {
			return errors.Wrap(err, "getting webhook event")
		}
		_, err = svc.PublishEventFromEventbrite(ctx, data, org)
		return err
	default:
		svc.logger.Info("ignoring eventbrite webhook", map[string]interface{}{"action": hook.Config.Action, "organization": orgID})
		return nil
	}
}
