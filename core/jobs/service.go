package jobs

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrJobNotFound = core.NewNotFoundError("job-not-found")
)

type (
	Repository interface {
		QueryJobs(ctx context.Context, filter JobFilter, page core.Pagination) ([]Job, int, error)
		// GetJob returns ErrJobNotFound if the job does not belong to academyID.
		GetJob(ctx context.Context, academyID, id int64) (Job, error)
		CreateJob(ctx context.Context, job Job) (Job, error)
		UpdateJob(ctx context.Context, job Job) (Job, error)
	}

	Service interface {
		QueryJobs(ctx context.Context, filter JobFilter, page core.Pagination) ([]Job, int, error)
		GetJob(ctx context.Context, academyID, id int64) (Job, error)
		CreateJob(ctx context.Context, academyID int64, nj NewJob) (Job, error)
		UpdateJob(ctx context.Context, academyID, id int64, uj UpdateJob) (Job, error)
	}

	service struct {
		repo Repository
		now  func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (svc *service) QueryJobs(ctx context.Context, filter JobFilter, page core.Pagination) ([]Job, int, error) {
	return svc.repo.QueryJobs(ctx, filter, page)
}

func (svc *service) GetJob(ctx context.Context, academyID, id int64) (Job, error) {
	return svc.repo.GetJob(ctx, academyID, id)
}

func (svc *service) CreateJob(ctx context.Context, academyID int64, nj NewJob) (Job, error) {
	now := svc.now()
	job := Job{
		Title:            nj.Title,
		Employer:         nj.Employer,
		ApplyURL:         nj.ApplyURL,
		Location:         nj.Location,
		Remote:           nj.Remote,
		JobType:          FullTime,
		Salary:           null.NewString(nj.Salary, nj.Salary != ""),
		Currency:         "USD",
		PublishedDateRaw: null.NewString(nj.Published, nj.Published != ""),
		Status:           StatusOpened,
		AcademyID:        null.Int64From(academyID),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if nj.JobType != "" {
		job.JobType = nj.JobType
	}
	if nj.Currency != "" {
		job.Currency = nj.Currency
	}
	svc.process(&job)
	return svc.repo.CreateJob(ctx, job)
}

func (svc *service) UpdateJob(ctx context.Context, academyID, id int64, uj UpdateJob) (Job, error) {
	job, err := svc.repo.GetJob(ctx, academyID, id)
	if err != nil {
		return Job{}, err
	}
	if uj.Title != nil {
		job.Title = core.CleanString(*uj.Title)
	}
	if uj.Employer != nil {
		job.Employer = core.CleanString(*uj.Employer)
	}
	if uj.ApplyURL != nil {
		job.ApplyURL = *uj.ApplyURL
	}
	if uj.Location != nil {
		job.Location = core.CleanString(*uj.Location)
	}
	if uj.Remote != nil {
		job.Remote = *uj.Remote
	}
	if uj.JobType != nil {
		job.JobType = *uj.JobType
	}
	if uj.Salary != nil {
		s := core.CleanString(*uj.Salary)
		job.Salary = null.NewString(s, s != "")
	}
	if uj.Currency != nil {
		job.Currency = *uj.Currency
	}
	if uj.Published != nil {
		p := core.CleanString(*uj.Published)
		job.PublishedDateRaw = null.NewString(p, p != "")
	}
	if uj.Status != nil {
		job.Status = *uj.Status
	}
	job.UpdatedAt = svc.now()
	svc.process(&job)
	return svc.repo.UpdateJob(ctx, job)
}

// process derives the salary range and the publication date from their raw texts.
func (svc *service) process(job *Job) {
	job.MinSalary, job.MaxSalary = ParseSalary(job.Salary.String)
	job.PublishedDateProcessed = ParsePublishedDate(job.PublishedDateRaw.String, svc.now())
}
