package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/marketing"
)

type marketingRepository struct {
	db *sqlx.DB
}

var _ marketing.Repository = (*marketingRepository)(nil) // interface compliance check

func NewMarketingRepository(db *sqlx.DB) *marketingRepository {
	return &marketingRepository{db: db}
}

// Leads

func (repo marketingRepository) QueryLeads(ctx context.Context, filter marketing.LeadFilter, p core.Pagination) ([]marketing.FormEntry, int, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("academy_id = ?", filter.AcademyID)
	}
	if len(filter.StorageStatuses) > 0 {
		w.add("storage_status = ANY(?)", pq.Array(filter.StorageStatuses))
	}
	if filter.Location != "" {
		w.add("location = ?", filter.Location)
	}
	if filter.Course != "" {
		w.add("course = ?", filter.Course)
	}

	leads := make([]marketing.FormEntry, 0)
	total, err := page(ctx, repo.db, &leads,
		`SELECT COUNT(*) FROM form_entry`, `SELECT * FROM form_entry`,
		w, " ORDER BY created_at DESC, id DESC", p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying leads")
	}
	return leads, total, nil
}

func (repo marketingRepository) GetLead(ctx context.Context, id int64) (marketing.FormEntry, error) {
	var lead marketing.FormEntry
	if err := repo.db.GetContext(ctx, &lead, `SELECT * FROM form_entry WHERE id = $1`, id); err != nil {
		return marketing.FormEntry{}, trapNoRows(err, marketing.ErrLeadNotFound, "getting lead")
	}
	return lead, nil
}

func (repo marketingRepository) CreateLead(ctx context.Context, lead marketing.FormEntry) (marketing.FormEntry, error) {
	q := `INSERT INTO form_entry (
		first_name, last_name, email, phone, course, location, language, utm_url, utm_medium, utm_campaign,
		utm_source, referral_key, tags, client_comments, storage_status, academy_id
	) VALUES (
		:first_name, :last_name, :email, :phone, :course, :location, :language, :utm_url, :utm_medium, :utm_campaign,
		:utm_source, :referral_key, :tags, :client_comments, :storage_status, :academy_id
	) RETURNING *`
	var created marketing.FormEntry
	if err := namedGet(ctx, repo.db, &created, q, lead); err != nil {
		return marketing.FormEntry{}, errors.Wrap(err, "inserting lead")
	}
	return created, nil
}

func (repo marketingRepository) UpdateLead(ctx context.Context, lead marketing.FormEntry) (marketing.FormEntry, error) {
	q := `UPDATE form_entry SET
		first_name = :first_name, last_name = :last_name, email = :email, phone = :phone, course = :course,
		location = :location, language = :language, utm_url = :utm_url, utm_medium = :utm_medium,
		utm_campaign = :utm_campaign, utm_source = :utm_source, referral_key = :referral_key, tags = :tags,
		client_comments = :client_comments, storage_status = :storage_status, academy_id = :academy_id,
		updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated marketing.FormEntry
	if err := namedGet(ctx, repo.db, &updated, q, lead); err != nil {
		return marketing.FormEntry{}, trapNoRows(err, marketing.ErrLeadNotFound, "updating lead")
	}
	return updated, nil
}

// Downloadables

func (repo marketingRepository) QueryDownloadables(ctx context.Context, filter marketing.DownloadableFilter) ([]marketing.Downloadable, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("academy_id = ?", filter.AcademyID)
	}
	if filter.Active != nil {
		w.add("active = ?", *filter.Active)
	}

	dls := make([]marketing.Downloadable, 0)
	q := rebind(`SELECT * FROM downloadable` + w.String() + ` ORDER BY id`)
	if err := repo.db.SelectContext(ctx, &dls, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying downloadables")
	}
	return dls, nil
}

func (repo marketingRepository) GetDownloadable(ctx context.Context, id int64) (marketing.Downloadable, error) {
	var dl marketing.Downloadable
	if err := repo.db.GetContext(ctx, &dl, `SELECT * FROM downloadable WHERE id = $1`, id); err != nil {
		return marketing.Downloadable{}, trapNoRows(err, marketing.ErrDownloadableNotFound, "getting downloadable")
	}
	return dl, nil
}

func (repo marketingRepository) GetDownloadableBySlug(ctx context.Context, slug string) (marketing.Downloadable, error) {
	var dl marketing.Downloadable
	if err := repo.db.GetContext(ctx, &dl, `SELECT * FROM downloadable WHERE slug = $1`, slug); err != nil {
		return marketing.Downloadable{}, trapNoRows(err, marketing.ErrDownloadableNotFound, "getting downloadable by slug")
	}
	return dl, nil
}

func (repo marketingRepository) CreateDownloadable(ctx context.Context, dl marketing.Downloadable) (marketing.Downloadable, error) {
	q := `INSERT INTO downloadable (slug, name, destination_url, preview_url, active, academy_id, author_id)
	VALUES (:slug, :name, :destination_url, :preview_url, :active, :academy_id, :author_id)
	RETURNING *`
	var created marketing.Downloadable
	if err := namedGet(ctx, repo.db, &created, q, dl); err != nil {
		return marketing.Downloadable{}, errors.Wrap(err, "inserting downloadable")
	}
	return created, nil
}

func (repo marketingRepository) UpdateDownloadable(ctx context.Context, dl marketing.Downloadable) (marketing.Downloadable, error) {
	q := `UPDATE downloadable SET
		slug = :slug, name = :name, destination_url = :destination_url, preview_url = :preview_url,
		active = :active, academy_id = :academy_id, author_id = :author_id, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated marketing.Downloadable
	if err := namedGet(ctx, repo.db, &updated, q, dl); err != nil {
		return marketing.Downloadable{}, trapNoRows(err, marketing.ErrDownloadableNotFound, "updating downloadable")
	}
	return updated, nil
}
