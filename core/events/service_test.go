package events

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/admissions"
)

type memRepo struct {
	mu            sync.Mutex
	pk            int64
	organizations map[int64]Organization
	organizers    map[int64]Organizer
	venues        map[int64]Venue
	eventTypes    map[int64]EventType
	events        map[int64]Event
}

func newMemRepo() *memRepo {
	return &memRepo{
		organizations: make(map[int64]Organization),
		organizers:    make(map[int64]Organizer),
		venues:        make(map[int64]Venue),
		eventTypes:    make(map[int64]EventType),
		events:        make(map[int64]Event),
	}
}

func (r *memRepo) nextID() int64 {
	r.pk++
	return r.pk
}

func (r *memRepo) QueryOrganizations(_ context.Context, academyID int64) ([]Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []Organization
	for _, o := range r.organizations {
		if o.AcademyID.Int64 == academyID {
			res = append(res, o)
		}
	}
	return res, nil
}

func (r *memRepo) GetOrganization(_ context.Context, id int64) (Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.organizations[id]; ok {
		return o, nil
	}
	return Organization{}, ErrOrganizationNotFound
}

func (r *memRepo) UpdateOrganization(_ context.Context, org Organization) (Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.organizations[org.ID] = org
	return org, nil
}

func (r *memRepo) GetOrganizerByEventbriteID(_ context.Context, eventbriteID string) (Organizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.organizers {
		if o.EventbriteID == eventbriteID {
			return o, nil
		}
	}
	return Organizer{}, ErrOrganizerNotFound
}

func (r *memRepo) CreateOrganizer(_ context.Context, o Organizer) (Organizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextID()
	r.organizers[o.ID] = o
	return o, nil
}

func (r *memRepo) UpdateOrganizer(_ context.Context, o Organizer) (Organizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.organizers[o.ID] = o
	return o, nil
}

func (r *memRepo) QueryVenues(_ context.Context, academyID int64) ([]Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []Venue
	for _, v := range r.venues {
		if v.AcademyID.Int64 == academyID {
			res = append(res, v)
		}
	}
	return res, nil
}

func (r *memRepo) GetVenue(_ context.Context, academyID, id int64) (Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.venues[id]; ok && v.AcademyID.Int64 == academyID {
		return v, nil
	}
	return Venue{}, ErrVenueNotFound
}

func (r *memRepo) GetVenueByEventbriteID(_ context.Context, academyID int64, eventbriteID string) (Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.venues {
		if v.AcademyID.Int64 == academyID && v.EventbriteID.String == eventbriteID {
			return v, nil
		}
	}
	return Venue{}, ErrVenueNotFound
}

func (r *memRepo) CreateVenue(_ context.Context, v Venue) (Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v.ID = r.nextID()
	r.venues[v.ID] = v
	return v, nil
}

func (r *memRepo) UpdateVenue(_ context.Context, v Venue) (Venue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.venues[v.ID] = v
	return v, nil
}

func (r *memRepo) QueryEventTypes(_ context.Context, academySlug string) ([]EventType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []EventType
	for _, et := range r.eventTypes {
		res = append(res, et)
	}
	return res, nil
}

func (r *memRepo) GetEventType(_ context.Context, id int64) (EventType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if et, ok := r.eventTypes[id]; ok {
		return et, nil
	}
	return EventType{}, ErrEventTypeNotFound
}

func (r *memRepo) QueryEvents(_ context.Context, filter EventFilter, now time.Time, _ core.Pagination) ([]EventItem, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []EventItem
	for _, e := range r.events {
		if filter.AcademyID != 0 && e.AcademyID.Int64 != filter.AcademyID {
			continue
		}
		if len(filter.Statuses) > 0 && e.Status != filter.Statuses[0] {
			continue
		}
		if (filter.Past == "true" && !e.StartingAt.Before(now)) || (filter.Past == "false" && e.StartingAt.Before(now)) {
			continue
		}
		res = append(res, EventItem{ID: e.ID, Title: e.Title, StartingAt: e.StartingAt, Status: e.Status})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].StartingAt.After(res[j].StartingAt) })
	return res, len(res), nil
}

func (r *memRepo) GetEvent(_ context.Context, academyID, id int64) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok && (academyID == 0 || e.AcademyID.Int64 == academyID) {
		return e, nil
	}
	return Event{}, ErrEventNotFound
}

func (r *memRepo) GetEventByEventbriteID(_ context.Context, eventbriteID string) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.EventbriteID.String == eventbriteID {
			return e, nil
		}
	}
	return Event{}, ErrEventNotFound
}

func (r *memRepo) QueryEventsToExport(_ context.Context, organizationID int64) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []Event
	for _, e := range r.events {
		if e.OrganizationID.Int64 == organizationID && e.SyncWithEventbrite && e.EventbriteSyncStatus == SyncPending {
			res = append(res, e)
		}
	}
	return res, nil
}

func (r *memRepo) CreateEvent(_ context.Context, e Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID()
	r.events[e.ID] = e
	return e, nil
}

func (r *memRepo) UpdateEvent(_ context.Context, e Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.ID] = e
	return e, nil
}

// fakeEventbrite serves canned data and records the payloads it receives.
type fakeEventbrite struct {
	venues      []EBVenue
	events      []EBEvent
	eventsErr   error
	description EBStructuredContent
	created     []map[string]interface{}
	updated     []map[string]interface{}
	described   []map[string]interface{}
}

func (f *fakeEventbrite) GetOrganizationVenues(context.Context, string, string) ([]EBVenue, error) {
	return f.venues, nil
}

func (f *fakeEventbrite) GetOrganizationEvents(context.Context, string, string) ([]EBEvent, error) {
	return f.events, f.eventsErr
}

func (f *fakeEventbrite) GetEvent(_ context.Context, _, apiURL string) (*EBEvent, error) {
	for i := range f.events {
		if apiURL == "https://www.eventbriteapi.com/v3/events/"+f.events[i].ID+"/" {
			return &f.events[i], nil
		}
	}
	return nil, errors.New("404 not found")
}

func (f *fakeEventbrite) CreateOrganizationEvent(_ context.Context, _, _ string, payload map[string]interface{}) (EBEvent, error) {
	f.created = append(f.created, payload)
	return EBEvent{ID: "eb-new", URL: "https://www.eventbrite.com/e/eb-new"}, nil
}

func (f *fakeEventbrite) UpdateOrganizationEvent(_ context.Context, _, eventID string, payload map[string]interface{}) (EBEvent, error) {
	f.updated = append(f.updated, payload)
	return EBEvent{ID: eventID}, nil
}

func (f *fakeEventbrite) GetEventDescription(context.Context, string, string) (EBStructuredContent, error) {
	return f.description, nil
}

func (f *fakeEventbrite) CreateOrUpdateEventDescription(_ context.Context, _, _, _ string, payload map[string]interface{}) (EBStructuredContent, error) {
	f.described = append(f.described, payload)
	return EBStructuredContent{PageVersionNumber: "2", Modules: payload["modules"].([]EBModule)}, nil
}

// inlineQueue runs the tasks as soon as they are queued.
type inlineQueue struct {
	names []string
	errs  []error
}

func (q *inlineQueue) Enqueue(name string, task core.Task) error {
	q.names = append(q.names, name)
	if err := task(context.Background()); err != nil {
		q.errs = append(q.errs, err)
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type academyFinder struct {
	admissions.Service
	slots []admissions.CohortTimeSlot
}

func (academyFinder) GetAcademy(_ context.Context, id int64) (admissions.Academy, error) {
	if id != 1 {
		return admissions.Academy{}, admissions.ErrAcademyNotFound
	}
	return admissions.Academy{ID: 1, Slug: "bogota", Name: "Bogota", Timezone: "America/Bogota"}, nil
}

func (f academyFinder) AcademyCohortTimeSlots(context.Context, int64) ([]admissions.CohortTimeSlot, error) {
	return f.slots, nil
}

func newValidator() *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	return validate
}

var testNow = time.Date(2021, 8, 20, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*service, *memRepo, *fakeEventbrite, *inlineQueue) {
	t.Helper()
	repo := newMemRepo()
	repo.organizations[1] = Organization{
		ID:            1,
		EventbriteID:  "org-1",
		EventbriteKey: "secret",
		Name:          "Bogota events",
		AcademyID:     null.Int64From(1),
		SyncStatus:    SyncPending,
	}
	repo.organizations[2] = Organization{ID: 2, EventbriteID: "org-2", EventbriteKey: "secret"}
	repo.eventTypes[1] = EventType{ID: 1, Slug: "workshop", Name: "Workshop", AcademyID: null.Int64From(1)}
	repo.eventTypes[2] = EventType{ID: 2, Slug: "other", Name: "Other", AcademyID: null.Int64From(2)}
	repo.pk = 100

	eb := &fakeEventbrite{
		description: EBStructuredContent{
			PageVersionNumber: "1",
			Modules:           []EBModule{{Type: "text", Data: EBModuleData{Body: EBModuleBody{Text: "<p>Learn Go</p>"}}}},
		},
	}
	queue := new(inlineQueue)
	svc := NewService(repo, academyFinder{}, eb, queue, nopLogger{}).(*service)
	svc.now = func() time.Time { return testNow }
	return svc, repo, eb, queue
}

func ebEvent(id, status string) EBEvent {
	return EBEvent{
		ID:          id,
		Name:        EBText{Text: "Intro to Go"},
		Description: EBText{Text: "A Go workshop"},
		Start:       EBDateTime{UTC: utc(2021, 9, 1, 23, 0), Timezone: "America/Bogota"},
		End:         EBDateTime{UTC: utc(2021, 9, 2, 1, 0), Timezone: "America/Bogota"},
		Capacity:    50,
		URL:         "https://www.eventbrite.com/e/" + id,
		Status:      status,
		Currency:    "USD",
		Logo:        &EBLogo{URL: "https://img.evbuc.com/" + id + ".png"},
		Venue: &EBVenue{
			ID:        "venue-1",
			Name:      "Campus",
			Address:   EBAddress{Address1: "Calle 1", City: "Bogota", Region: "DC", PostalCode: "110111", Country: "CO"},
			Latitude:  "4.6097",
			Longitude: "-74.0817",
		},
		Organizer: &EBOrganizer{ID: "organizer-1", Name: "Academy", Description: EBText{Text: "We teach"}},
	}
}

func Test_service_UpdateOrCreateEvent(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	org := repo.organizations[1]

	got, err := svc.UpdateOrCreateEvent(ctx, nil, org)
	require.NoError(t, err)
	assert.Nil(t, got)

	data := ebEvent("eb-1", "unknown")
	_, err = svc.UpdateOrCreateEvent(ctx, &data, org)
	assert.EqualError(t, err, "Unknown eventbrite status unknown")

	data = ebEvent("eb-1", "live")
	got, err = svc.UpdateOrCreateEvent(ctx, &data, org)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, "Intro to Go", got.Title.String)
	assert.Equal(t, "<p>Learn Go</p>", got.Description.String)
	assert.Equal(t, "https://img.evbuc.com/eb-1.png", got.Banner.String)
	assert.Equal(t, "https://www.eventbrite.com/e/eb-1", got.URL.String)
	assert.Equal(t, "organizer-1", got.EventbriteOrganizerID.String)
	assert.Equal(t, int64(1), got.AcademyID.Int64)
	assert.Equal(t, SyncPersisted, got.EventbriteSyncStatus)
	assert.True(t, got.SyncWithEventbrite)

	venue, err := repo.GetVenue(ctx, 1, got.VenueID.Int64)
	require.NoError(t, err)
	assert.Equal(t, "Campus", venue.Title.String)
	assert.Equal(t, 4.6097, venue.Latitude)

	// updating keeps the same row
	data.Status = "canceled"
	again, err := svc.UpdateOrCreateEvent(ctx, &data, org)
	require.NoError(t, err)
	assert.Equal(t, got.ID, again.ID)
	assert.Equal(t, StatusDeleted, again.Status)
	assert.Len(t, repo.events, 1)
	assert.Len(t, repo.venues, 1)
	assert.Len(t, repo.organizers, 1)
}

func Test_service_CreateOrUpdateVenue(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	data := EBVenue{ID: "venue-9", Name: "Old name"}
	venue, err := svc.CreateOrUpdateVenue(ctx, data, repo.organizations[1], false)
	require.NoError(t, err)

	data.Name = "New name"
	same, err := svc.CreateOrUpdateVenue(ctx, data, repo.organizations[1], false)
	require.NoError(t, err)
	assert.Equal(t, "Old name", same.Title.String)

	forced, err := svc.CreateOrUpdateVenue(ctx, data, repo.organizations[1], true)
	require.NoError(t, err)
	assert.Equal(t, venue.ID, forced.ID)
	assert.Equal(t, "New name", forced.Title.String)

	_, err = svc.CreateOrUpdateVenue(ctx, data, repo.organizations[2], true)
	assert.Equal(t, ErrOrgWithoutAcademy, err)
}

func Test_service_SyncOrganization(t *testing.T) {
	svc, repo, eb, _ := newTestService(t)
	ctx := context.Background()

	eb.venues = []EBVenue{{ID: "venue-2", Name: "Rooftop"}}
	eb.events = []EBEvent{ebEvent("eb-1", "live"), ebEvent("eb-2", "draft")}
	require.NoError(t, svc.SyncOrganization(ctx, 1))

	org := repo.organizations[1]
	assert.Equal(t, SyncPersisted, org.SyncStatus)
	assert.Equal(t, "Success with 2 events", org.SyncDesc.String)
	assert.Len(t, repo.events, 2)
	assert.Len(t, repo.venues, 2)

	assert.Equal(t, ErrOrgWithoutAcademy, svc.SyncOrganization(ctx, 2))
	assert.True(t, core.IsNotFound(svc.SyncOrganization(ctx, 3)))

	eb.eventsErr = errors.New("eventbrite is down")
	assert.Error(t, svc.SyncOrgEvents(ctx, repo.organizations[1]))
	org = repo.organizations[1]
	assert.Equal(t, SyncError, org.SyncStatus)
	assert.Contains(t, org.SyncDesc.String, "Error: ")
}

func Test_service_ExportEventToEventbrite(t *testing.T) {
	svc, repo, eb, _ := newTestService(t)
	ctx := context.Background()

	event, err := repo.CreateEvent(ctx, Event{
		Title:                null.StringFrom("Go meetup"),
		Description:          null.StringFrom("<p>Talks</p>"),
		StartingAt:           utc(2021, 9, 1, 23, 0),
		EndingAt:             utc(2021, 9, 2, 1, 0),
		Currency:             "USD",
		SyncWithEventbrite:   true,
		EventbriteSyncStatus: SyncPending,
		AcademyID:            null.Int64From(1),
		OrganizationID:       null.Int64From(1),
	})
	require.NoError(t, err)

	got, err := svc.ExportEventToEventbrite(ctx, event, repo.organizations[1])
	require.NoError(t, err)
	assert.Equal(t, "eb-new", got.EventbriteID.String)
	assert.Equal(t, SyncSynched, got.EventbriteSyncStatus)

	require.Len(t, eb.created, 1)
	payload := eb.created[0]
	assert.Equal(t, "Go meetup", payload["event.name.html"])
	assert.Equal(t, "2021-09-01T23:00:00Z", payload["event.start.utc"])
	assert.Equal(t, "America/Bogota", payload["event.start.timezone"])
	require.Len(t, eb.described, 1)
	assert.Equal(t, "listing", eb.described[0]["purpose"])

	// already exported: updated in place
	_, err = svc.ExportEventToEventbrite(ctx, got, repo.organizations[1])
	require.NoError(t, err)
	assert.Len(t, eb.created, 1)
	assert.Len(t, eb.updated, 1)

	noKey := repo.organizations[1]
	noKey.EventbriteKey = ""
	failed, err := svc.ExportEventToEventbrite(ctx, got, noKey)
	assert.Equal(t, ErrOrgWithoutKey, err)
	assert.Equal(t, SyncError, failed.EventbriteSyncStatus)
	assert.Contains(t, failed.EventbriteSyncDescription.String, "The organization does not have an eventbrite key")
}

func Test_service_PublishEventFromEventbrite(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	org := repo.organizations[1]

	_, err := svc.PublishEventFromEventbrite(ctx, nil, org)
	assert.EqualError(t, err, "data is empty")

	data := ebEvent("eb-1", "live")
	_, err = svc.PublishEventFromEventbrite(ctx, &data, org)
	assert.EqualError(t, err, "The event with the eventbrite id `eb-1` doesn't exist")

	_, err = repo.CreateEvent(ctx, Event{EventbriteID: null.StringFrom("eb-1"), Status: StatusDraft})
	require.NoError(t, err)
	event, err := svc.PublishEventFromEventbrite(ctx, &data, org)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, event.Status)
	assert.Equal(t, "live", event.EventbriteStatus.String)
}

func Test_service_Webhook(t *testing.T) {
	svc, repo, eb, queue := newTestService(t)
	ctx := context.Background()
	eb.events = []EBEvent{ebEvent("eb-7", "live")}

	var hook EBWebhook
	hook.APIURL = "https://www.eventbriteapi.com/v3/events/eb-7/"
	hook.Config.Action = WebhookEventCreated
	require.NoError(t, svc.QueueWebhook(ctx, 1, hook))
	assert.Equal(t, []string{"eventbrite_webhook"}, queue.names)
	assert.Empty(t, queue.errs)
	_, err := repo.GetEventByEventbriteID(ctx, "eb-7")
	assert.NoError(t, err)

	hook.Config.Action = "order.placed"
	assert.NoError(t, svc.ProcessWebhook(ctx, 1, hook))

	assert.True(t, core.IsNotFound(svc.QueueWebhook(ctx, 99, hook)))
}

func Test_service_CreateEvent(t *testing.T) {
	svc, repo, eb, queue := newTestService(t)
	ctx := context.Background()

	ep := EventPayload{
		Title:      "Go meetup",
		URL:        "https://academy.test/events/go",
		StartingAt: utc(2021, 9, 1, 23, 0),
		EndingAt:   utc(2021, 9, 2, 1, 0),
		EventType:  2,
	}
	_, err := svc.CreateEvent(ctx, 1, 7, ep)
	assert.Equal(t, ErrEventTypeNotFound, err)

	ep.EventType = 1
	ep.Venue = 55
	_, err = svc.CreateEvent(ctx, 1, 7, ep)
	assert.Equal(t, ErrVenueNotFound, err)

	ep.Venue = 0
	event, err := svc.CreateEvent(ctx, 1, 7, ep)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, event.Status)
	assert.Equal(t, "en", event.Lang.String)
	assert.Equal(t, int64(7), event.AuthorID.Int64)
	assert.Empty(t, queue.names)

	ep.SyncWithEventbrite = true
	ep.Organization = 1
	event, err = svc.UpdateEvent(ctx, 1, event.ID, ep)
	require.NoError(t, err)
	assert.Equal(t, []string{"export_event_to_eventbrite"}, queue.names)
	assert.Len(t, eb.created, 1)
	assert.Equal(t, "eb-new", repo.events[event.ID].EventbriteID.String)

	_, err = svc.UpdateEvent(ctx, 2, event.ID, ep)
	assert.Equal(t, ErrEventNotFound, err)
}

func TestEventPayload_Validate(t *testing.T) {
	validate := newValidator()
	start := utc(2021, 9, 1, 23, 0)

	ep := EventPayload{Title: " Meetup ", StartingAt: start, EndingAt: start, URL: "https://academy.test"}
	assert.Equal(t, ErrEndsBeforeStart, ep.Validate(validate))
	assert.Equal(t, "Meetup", ep.Title)

	ep.EndingAt = start.Add(time.Hour)
	ep.URL = ""
	err := ep.Validate(validate)
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "url", verr.Fields[0].Field)

	ep.SyncWithEventbrite = true
	assert.NoError(t, ep.Validate(validate))
}

func Test_service_QueryEvents(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	for i, start := range []time.Time{testNow.AddDate(0, 0, -3), testNow.AddDate(0, 0, 3), testNow.AddDate(0, 0, 5)} {
		status := StatusActive
		if i == 2 {
			status = StatusDraft
		}
		_, err := repo.CreateEvent(ctx, Event{StartingAt: start, EndingAt: start.Add(time.Hour), Status: status, AcademyID: null.Int64From(1)})
		require.NoError(t, err)
	}

	items, cnt, err := svc.QueryEvents(ctx, EventFilter{AcademyID: 1}, core.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 3, cnt)
	assert.True(t, items[0].StartingAt.After(items[1].StartingAt))

	_, cnt, err = svc.QueryEvents(ctx, EventFilter{AcademyID: 1, Past: "true"}, core.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, 1, cnt)

	items, cnt, err = svc.PublicEvents(ctx, core.Pagination{})
	require.NoError(t, err)
	require.Equal(t, 1, cnt)
	assert.True(t, items[0].StartingAt.Equal(testNow.AddDate(0, 0, 3)))
}

func Test_service_CohortSchedule(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	svc.admSvc = academyFinder{slots: []admissions.CohortTimeSlot{
		cohortSlot(1, 202108021400, 202108021600, true),
	}}

	start, end := utc(2021, 8, 25, 0, 0), utc(2021, 9, 10, 0, 0)
	_, err := svc.CohortSchedule(ctx, 1, end, start)
	assert.Equal(t, ErrInvalidWindow, err)

	slots, err := svc.CohortSchedule(ctx, 1, start, end)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.True(t, slots[0].StartingAt.Equal(utc(2021, 8, 30, 14, 0)))
	assert.Equal(t, "Every week, monday from 09:00 am to 11:00 am", slots[0].Description)

	_, err = svc.CohortSchedule(ctx, 2, start, end)
	assert.Equal(t, admissions.ErrAcademyNotFound, err)
}
