package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/monitoring"
)

type monitoringRepository struct {
	db *sqlx.DB
}

var _ monitoring.Repository = (*monitoringRepository)(nil) // interface compliance check

func NewMonitoringRepository(db *sqlx.DB) *monitoringRepository {
	return &monitoringRepository{db: db}
}

// Applications

func (repo monitoringRepository) QueryApplications(ctx context.Context, academyID int64) ([]monitoring.Application, error) {
	apps := make([]monitoring.Application, 0)
	q := `SELECT * FROM application WHERE $1::BIGINT = 0 OR academy_id = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &apps, q, academyID); err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	return apps, nil
}

func (repo monitoringRepository) GetApplication(ctx context.Context, id int64) (monitoring.Application, error) {
	var app monitoring.Application
	if err := repo.db.GetContext(ctx, &app, `SELECT * FROM application WHERE id = $1`, id); err != nil {
		return monitoring.Application{}, trapNoRows(err, monitoring.ErrApplicationNotFound, "getting application")
	}
	return app, nil
}

func (repo monitoringRepository) UpdateApplication(ctx context.Context, app monitoring.Application) (monitoring.Application, error) {
	q := `UPDATE application SET
		title = :title, status = :status, notify_email = :notify_email, paused_until = :paused_until, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated monitoring.Application
	if err := namedGet(ctx, repo.db, &updated, q, app); err != nil {
		return monitoring.Application{}, trapNoRows(err, monitoring.ErrApplicationNotFound, "updating application")
	}
	return updated, nil
}

// Endpoints

func (repo monitoringRepository) QueryEndpoints(ctx context.Context, filter monitoring.EndpointFilter) ([]monitoring.Endpoint, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("a.academy_id = ?", filter.AcademyID)
	}
	if filter.ApplicationID != 0 {
		w.add("e.application_id = ?", filter.ApplicationID)
	}

	endpoints := make([]monitoring.Endpoint, 0)
	q := rebind(`SELECT e.* FROM endpoint e JOIN application a ON a.id = e.application_id` + w.String() + ` ORDER BY e.id`)
	if err := repo.db.SelectContext(ctx, &endpoints, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying endpoints")
	}
	return endpoints, nil
}

func (repo monitoringRepository) GetEndpoint(ctx context.Context, id int64) (monitoring.Endpoint, error) {
	var ep monitoring.Endpoint
	if err := repo.db.GetContext(ctx, &ep, `SELECT * FROM endpoint WHERE id = $1`, id); err != nil {
		return monitoring.Endpoint{}, trapNoRows(err, monitoring.ErrEndpointNotFound, "getting endpoint")
	}
	return ep, nil
}

func (repo monitoringRepository) UpdateEndpoint(ctx context.Context, ep monitoring.Endpoint) (monitoring.Endpoint, error) {
	q := `UPDATE endpoint SET
		url = :url, test_pattern = :test_pattern, expected_status = :expected_status, status_code = :status_code,
		severity_level = :severity_level, status = :status, response_text = :response_text,
		last_check = :last_check, frequency_in_minutes = :frequency_in_minutes, paused_until = :paused_until,
		updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated monitoring.Endpoint
	if err := namedGet(ctx, repo.db, &updated, q, ep); err != nil {
		return monitoring.Endpoint{}, trapNoRows(err, monitoring.ErrEndpointNotFound, "updating endpoint")
	}
	return updated, nil
}

// Downloads

func (repo monitoringRepository) QueryDownloads(ctx context.Context, academyID int64, p core.Pagination) ([]monitoring.CSVDownload, int, error) {
	w := new(where)
	w.add("academy_id = ?", academyID)

	downloads := make([]monitoring.CSVDownload, 0)
	total, err := page(ctx, repo.db, &downloads,
		`SELECT COUNT(*) FROM csv_download`, `SELECT * FROM csv_download`,
		w, " ORDER BY created_at DESC, id DESC", p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying downloads")
	}
	return downloads, total, nil
}

func (repo monitoringRepository) GetDownload(ctx context.Context, academyID, id int64) (monitoring.CSVDownload, error) {
	var dl monitoring.CSVDownload
	q := `SELECT * FROM csv_download WHERE id = $1 AND ($2::BIGINT = 0 OR academy_id = $2)`
	if err := repo.db.GetContext(ctx, &dl, q, id, academyID); err != nil {
		return monitoring.CSVDownload{}, trapNoRows(err, monitoring.ErrDownloadNotFound, "getting download")
	}
	return dl, nil
}

func (repo monitoringRepository) CreateDownload(ctx context.Context, dl monitoring.CSVDownload) (monitoring.CSVDownload, error) {
	q := `INSERT INTO csv_download (name, url, status, status_message, academy_id, finished_at)
	VALUES (:name, :url, :status, :status_message, :academy_id, :finished_at)
	RETURNING *`
	var created monitoring.CSVDownload
	if err := namedGet(ctx, repo.db, &created, q, dl); err != nil {
		return monitoring.CSVDownload{}, errors.Wrap(err, "inserting download")
	}
	return created, nil
}

func (repo monitoringRepository) UpdateDownload(ctx context.Context, dl monitoring.CSVDownload) (monitoring.CSVDownload, error) {
	q := `UPDATE csv_download SET
		name = :name, url = :url, status = :status, status_message = :status_message, finished_at = :finished_at
	WHERE id = :id RETURNING *`
	var updated monitoring.CSVDownload
	if err := namedGet(ctx, repo.db, &updated, q, dl); err != nil {
		return monitoring.CSVDownload{}, trapNoRows(err, monitoring.ErrDownloadNotFound, "updating download")
	}
	return updated, nil
}
