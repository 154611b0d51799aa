package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/jobs"
)

type jobsRepository struct {
	db *sqlx.DB
}

var _ jobs.Repository = (*jobsRepository)(nil) // interface compliance check

func NewJobsRepository(db *sqlx.DB) *jobsRepository {
	return &jobsRepository{db: db}
}

func (repo jobsRepository) QueryJobs(ctx context.Context, filter jobs.JobFilter, p core.Pagination) ([]jobs.Job, int, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("academy_id = ?", filter.AcademyID)
	}
	if filter.Remote != nil {
		w.add("remote = ?", *filter.Remote)
	}
	if len(filter.Statuses) > 0 {
		w.add("status = ANY(?)", pq.Array(filter.Statuses))
	}

	list := make([]jobs.Job, 0)
	total, err := page(ctx, repo.db, &list,
		`SELECT COUNT(*) FROM job`, `SELECT * FROM job`,
		w, " ORDER BY published_date_processed DESC NULLS LAST, id DESC", p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying jobs")
	}
	return list, total, nil
}

func (repo jobsRepository) GetJob(ctx context.Context, academyID, id int64) (jobs.Job, error) {
	var job jobs.Job
	if err := repo.db.GetContext(ctx, &job, `SELECT * FROM job WHERE academy_id = $1 AND id = $2`, academyID, id); err != nil {
		return jobs.Job{}, trapNoRows(err, jobs.ErrJobNotFound, "getting job")
	}
	return job, nil
}

func (repo jobsRepository) CreateJob(ctx context.Context, job jobs.Job) (jobs.Job, error) {
	q := `INSERT INTO job (
		title, employer, apply_url, location, remote, job_type, salary, min_salary, max_salary,
		currency, published_date_raw, published_date_processed, status, academy_id
	) VALUES (
		:title, :employer, :apply_url, :location, :remote, :job_type, :salary, :min_salary, :max_salary,
		:currency, :published_date_raw, :published_date_processed, :status, :academy_id
	) RETURNING *`
	var created jobs.Job
	if err := namedGet(ctx, repo.db, &created, q, job); err != nil {
		return jobs.Job{}, errors.Wrap(err, "inserting job")
	}
	return created, nil
}

func (repo jobsRepository) UpdateJob(ctx context.Context, job jobs.Job) (jobs.Job, error) {
	q := `UPDATE job SET
		title = :title, employer = :employer, apply_url = :apply_url, location = :location, remote = :remote,
		job_type = :job_type, salary = :salary, min_salary = :min_salary, max_salary = :max_salary,
		currency = :currency, published_date_raw = :published_date_raw,
		published_date_processed = :published_date_processed, status = :status, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated jobs.Job
	if err := namedGet(ctx, repo.db, &updated, q, job); err != nil {
		return jobs.Job{}, trapNoRows(err, jobs.ErrJobNotFound, "updating job")
	}
	return updated, nil
}
