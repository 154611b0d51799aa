package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/events"
)

type eventsRepository struct {
	db *sqlx.DB
}

var _ events.Repository = (*eventsRepository)(nil) // interface compliance check

func NewEventsRepository(db *sqlx.DB) *eventsRepository {
	return &eventsRepository{db: db}
}

// Organizations

// QueryOrganizations returns every organization when academyID is 0.
func (repo eventsRepository) QueryOrganizations(ctx context.Context, academyID int64) ([]events.Organization, error) {
	orgs := make([]events.Organization, 0)
	q := `SELECT * FROM organization WHERE $1::BIGINT = 0 OR academy_id = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &orgs, q, academyID); err != nil {
		return nil, errors.Wrap(err, "querying organizations")
	}
	return orgs, nil
}

func (repo eventsRepository) GetOrganization(ctx context.Context, id int64) (events.Organization, error) {
	var org events.Organization
	if err := repo.db.GetContext(ctx, &org, `SELECT * FROM organization WHERE id = $1`, id); err != nil {
		return events.Organization{}, trapNoRows(err, events.ErrOrganizationNotFound, "getting organization")
	}
	return org, nil
}

func (repo eventsRepository) UpdateOrganization(ctx context.Context, org events.Organization) (events.Organization, error) {
	q := `UPDATE organization SET
		eventbrite_id = :eventbrite_id, eventbrite_key = :eventbrite_key, name = :name, academy_id = :academy_id,
		sync_status = :sync_status, sync_desc = :sync_desc, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated events.Organization
	if err := namedGet(ctx, repo.db, &updated, q, org); err != nil {
		return events.Organization{}, trapNoRows(err, events.ErrOrganizationNotFound, "updating organization")
	}
	return updated, nil
}

// Organizers

func (repo eventsRepository) GetOrganizerByEventbriteID(ctx context.Context, eventbriteID string) (events.Organizer, error) {
	var o events.Organizer
	if err := repo.db.GetContext(ctx, &o, `SELECT * FROM organizer WHERE eventbrite_id = $1`, eventbriteID); err != nil {
		return events.Organizer{}, trapNoRows(err, events.ErrOrganizerNotFound, "getting organizer")
	}
	return o, nil
}

func (repo eventsRepository) CreateOrganizer(ctx context.Context, o events.Organizer) (events.Organizer, error) {
	q := `INSERT INTO organizer (eventbrite_id, name, description, organization_id, academy_id)
	VALUES (:eventbrite_id, :name, :description, :organization_id, :academy_id)
	RETURNING *`
	var created events.Organizer
	if err := namedGet(ctx, repo.db, &created, q, o); err != nil {
		return events.Organizer{}, errors.Wrap(err, "inserting organizer")
	}
	return created, nil
}

func (repo eventsRepository) UpdateOrganizer(ctx context.Context, o events.Organizer) (events.Organizer, error) {
	q := `UPDATE organizer SET
		name = :name, description = :description, organization_id = :organization_id,
		academy_id = :academy_id, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated events.Organizer
	if err := namedGet(ctx, repo.db, &updated, q, o); err != nil {
		return events.Organizer{}, trapNoRows(err, events.ErrOrganizerNotFound, "updating organizer")
	}
	return updated, nil
}

// Venues

func (repo eventsRepository) QueryVenues(ctx context.Context, academyID int64) ([]events.Venue, error) {
	venues := make([]events.Venue, 0)
	if err := repo.db.SelectContext(ctx, &venues, `SELECT * FROM venue WHERE academy_id = $1 ORDER BY id`, academyID); err != nil {
		return nil, errors.Wrap(err, "querying venues")
	}
	return venues, nil
}

func (repo eventsRepository) GetVenue(ctx context.Context, academyID, id int64) (events.Venue, error) {
	var v events.Venue
	if err := repo.db.GetContext(ctx, &v, `SELECT * FROM venue WHERE academy_id = $1 AND id = $2`, academyID, id); err != nil {
		return events.Venue{}, trapNoRows(err, events.ErrVenueNotFound, "getting venue")
	}
	return v, nil
}

func (repo eventsRepository) GetVenueByEventbriteID(ctx context.Context, academyID int64, eventbriteID string) (events.Venue, error) {
	var v events.Venue
	q := `SELECT * FROM venue WHERE academy_id = $1 AND eventbrite_id = $2 ORDER BY id LIMIT 1`
	if err := repo.db.GetContext(ctx, &v, q, academyID, eventbriteID); err != nil {
		return events.Venue{}, trapNoRows(err, events.ErrVenueNotFound, "getting venue by eventbrite ID")
	}
	return v, nil
}

func (repo eventsRepository) CreateVenue(ctx context.Context, v events.Venue) (events.Venue, error) {
	q := `INSERT INTO venue (
		title, street_address, country, city, state, zip_code, latitude, longitude, status,
		eventbrite_id, eventbrite_url, academy_id, organization_id
	) VALUES (
		:title, :street_address, :country, :city, :state, :zip_code, :latitude, :longitude, :status,
		:eventbrite_id, :eventbrite_url, :academy_id, :organization_id
	) RETURNING *`
	var created events.Venue
	if err := namedGet(ctx, repo.db, &created, q, v); err != nil {
		return events.Venue{}, errors.Wrap(err, "inserting venue")
	}
	return created, nil
}

func (repo eventsRepository) UpdateVenue(ctx context.Context, v events.Venue) (events.Venue, error) {
	q := `UPDATE venue SET
		title = :title, street_address = :street_address, country = :country, city = :city, state = :state,
		zip_code = :zip_code, latitude = :latitude, longitude = :longitude, status = :status,
		eventbrite_id = :eventbrite_id, eventbrite_url = :eventbrite_url, academy_id = :academy_id,
		organization_id = :organization_id, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated events.Venue
	if err := namedGet(ctx, repo.db, &updated, q, v); err != nil {
		return events.Venue{}, trapNoRows(err, events.ErrVenueNotFound, "updating venue")
	}
	return updated, nil
}

// Event types

func (repo eventsRepository) QueryEventTypes(ctx context.Context, academySlug string) ([]events.EventType, error) {
	types := make([]events.EventType, 0)
	q := `SELECT et.* FROM event_type et LEFT JOIN academy a ON a.id = et.academy_id
	WHERE $1 = '' OR a.slug = $1 ORDER BY et.id`
	if err := repo.db.SelectContext(ctx, &types, q, academySlug); err != nil {
		return nil, errors.Wrap(err, "querying event types")
	}
	return types, nil
}

func (repo eventsRepository) GetEventType(ctx context.Context, id int64) (events.EventType, error) {
	var et events.EventType
	if err := repo.db.GetContext(ctx, &et, `SELECT * FROM event_type WHERE id = $1`, id); err != nil {
		return events.EventType{}, trapNoRows(err, events.ErrEventTypeNotFound, "getting event type")
	}
	return et, nil
}

// Events

type eventItemRow struct {
	events.EventItem
	EventTypeID   null.Int64  `db:"et_id"`
	EventTypeSlug null.String `db:"et_slug"`
	EventTypeName null.String `db:"et_name"`
	VenueID       null.Int64  `db:"v_id"`
	VenueTitle    null.String `db:"v_title"`
	VenueStreet   null.String `db:"v_street_address"`
	VenueCity     null.String `db:"v_city"`
	VenueState    null.String `db:"v_state"`
	VenueZipCode  null.String `db:"v_zip_code"`
}

func (row eventItemRow) item() events.EventItem {
	item := row.EventItem
	if row.EventTypeID.Valid {
		item.EventType = &events.EventTypeItem{
			ID:   row.EventTypeID.Int64,
			Slug: row.EventTypeSlug.String,
			Name: row.EventTypeName.String,
		}
	}
	if row.VenueID.Valid {
		item.Venue = &events.VenueItem{
			ID:            row.VenueID.Int64,
			Title:         row.VenueTitle,
			StreetAddress: row.VenueStreet,
			City:          row.VenueCity,
			State:         row.VenueState,
			ZipCode:       row.VenueZipCode,
		}
	}
	return item
}

func (repo eventsRepository) QueryEvents(
	ctx context.Context,
	filter events.EventFilter,
	now time.Time,
	p core.Pagination,
) ([]events.EventItem, int, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("e.academy_id = ?", filter.AcademyID)
	}
	if filter.City != "" {
		w.add("v.city = ?", filter.City)
	}
	if filter.Country != "" {
		w.add("v.country = ?", filter.Country)
	}
	if filter.ZipCode != "" {
		w.add("v.zip_code = ?", filter.ZipCode)
	}
	switch filter.Past {
	case "true":
		w.add("e.starting_at < ?", now.UTC())
	case "false":
		w.add("e.starting_at >= ?", now.UTC())
	}
	if len(filter.Statuses) > 0 {
		w.add("e.status = ANY(?)", pq.Array(filter.Statuses))
	}

	const from = ` FROM event e
	LEFT JOIN event_type et ON et.id = e.event_type_id
	LEFT JOIN venue v ON v.id = e.venue_id`
	const cols = `SELECT e.id, e.excerpt, e.title, e.lang, e.url, e.banner, e.starting_at, e.ending_at, e.status, e.online_event,
	et.id AS et_id, et.slug AS et_slug, et.name AS et_name,
	v.id AS v_id, v.title AS v_title, v.street_address AS v_street_address, v.city AS v_city,
	v.state AS v_state, v.zip_code AS v_zip_code`

	var rows []eventItemRow
	total, err := page(ctx, repo.db, &rows, `SELECT COUNT(*)`+from, cols+from, w, " ORDER BY e.starting_at DESC, e.id DESC", p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying events")
	}
	items := make([]events.EventItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.item())
	}
	return items, total, nil
}

func (repo eventsRepository) GetEvent(ctx context.Context, academyID, id int64) (events.Event, error) {
	var ev events.Event
	q := `SELECT * FROM event WHERE id = $1 AND ($2::BIGINT = 0 OR academy_id = $2)`
	if err := repo.db.GetContext(ctx, &ev, q, id, academyID); err != nil {
		return events.Event{}, trapNoRows(err, events.ErrEventNotFound, "getting event")
	}
	return ev, nil
}

func (repo eventsRepository) GetEventByEventbriteID(ctx context.Context, eventbriteID string) (events.Event, error) {
	var ev events.Event
	q := `SELECT * FROM event WHERE eventbrite_id = $1 ORDER BY id LIMIT 1`
	if err := repo.db.GetContext(ctx, &ev, q, eventbriteID); err != nil {
		return events.Event{}, trapNoRows(err, events.ErrEventNotFound, "getting event by eventbrite ID")
	}
	return ev, nil
}

func (repo eventsRepository) QueryEventsToExport(ctx context.Context, organizationID int64) ([]events.Event, error) {
	evts := make([]events.Event, 0)
	q := `SELECT * FROM event
	WHERE organization_id = $1 AND sync_with_eventbrite AND eventbrite_sync_status = $2
	ORDER BY id`
	if err := repo.db.SelectContext(ctx, &evts, q, organizationID, events.SyncPending); err != nil {
		return nil, errors.Wrap(err, "querying events to export")
	}
	return evts, nil
}

const eventColumns = `title = :title, description = :description, excerpt = :excerpt, lang = :lang, url = :url,
	banner = :banner, capacity = :capacity, starting_at = :starting_at, ending_at = :ending_at, status = :status,
	online_event = :online_event, host = :host, currency = :currency, sync_with_eventbrite = :sync_with_eventbrite,
	eventbrite_id = :eventbrite_id, eventbrite_url = :eventbrite_url, eventbrite_organizer_id = :eventbrite_organizer_id,
	eventbrite_status = :eventbrite_status, eventbrite_sync_status = :eventbrite_sync_status,
	eventbrite_sync_description = :eventbrite_sync_description, published_at = :published_at,
	event_type_id = :event_type_id, academy_id = :academy_id, organization_id = :organization_id,
	venue_id = :venue_id, author_id = :author_id`

func (repo eventsRepository) CreateEvent(ctx context.Context, ev events.Event) (events.Event, error) {
	q := `INSERT INTO event (
		title, description, excerpt, lang, url, banner, capacity, starting_at, ending_at, status,
		online_event, host, currency, sync_with_eventbrite, eventbrite_id, eventbrite_url, eventbrite_organizer_id,
		eventbrite_status, eventbrite_sync_status, eventbrite_sync_description, published_at,
		event_type_id, academy_id, organization_id, venue_id, author_id
	) VALUES (
		:title, :description, :excerpt, :lang, :url, :banner, :capacity, :starting_at, :ending_at, :status,
		:online_event, :host, :currency, :sync_with_eventbrite, :eventbrite_id, :eventbrite_url, :eventbrite_organizer_id,
		:eventbrite_status, :eventbrite_sync_status, :eventbrite_sync_description, :published_at,
		:event_type_id, :academy_id, :organization_id, :venue_id, :author_id
	) RETURNING *`
	var created events.Event
	if err := namedGet(ctx, repo.db, &created, q, ev); err != nil {
		return events.Event{}, errors.Wrap(err, "inserting event")
	}
	return created, nil
}

func (repo eventsRepository) UpdateEvent(ctx context.Context, ev events.Event) (events.Event, error) {
	q := `UPDATE event SET ` + eventColumns + `, updated_at = NOW() WHERE id = :id RETURNING *`
	var updated events.Event
	if err := namedGet(ctx, repo.db, &updated, q, ev); err != nil {
		return events.Event{}, trapNoRows(err, events.ErrEventNotFound, "updating event")
	}
	return updated, nil
}
