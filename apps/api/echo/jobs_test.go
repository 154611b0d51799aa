package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/jobs"
)

type fakeJobsSvc struct {
	jobs.Service
	jobs    []jobs.Job
	fail    bool
	created []jobs.NewJob
}

func (f *fakeJobsSvc) QueryJobs(_ context.Context, filter jobs.JobFilter, page core.Pagination) ([]jobs.Job, int, error) {
	if f.fail {
		return nil, 0, errors.New("db is down")
	}
	var list []jobs.Job
	for _, j := range f.jobs {
		if j.AcademyID.Int64 == filter.AcademyID && (filter.Remote == nil || *filter.Remote == j.Remote) {
			list = append(list, j)
		}
	}

	count := len(list)
	limit, offset := page.Window()
	if offset > count {
		offset = count
	}
	if end := offset + limit; end < count {
		list = list[offset:end]
	} else {
		list = list[offset:]
	}
	return list, count, nil
}

func (f *fakeJobsSvc) GetJob(_ context.Context, academyID, id int64) (jobs.Job, error) {
	for _, j := range f.jobs {
		if j.ID == id && j.AcademyID.Int64 == academyID {
			return j, nil
		}
	}
	return jobs.Job{}, jobs.ErrJobNotFound
}

func (f *fakeJobsSvc) CreateJob(_ context.Context, academyID int64, nj jobs.NewJob) (jobs.Job, error) {
	f.created = append(f.created, nj)
	return jobs.Job{ID: 99, Title: nj.Title, Status: "OPENED", AcademyID: null.Int64From(academyID)}, nil
}

func newFakeJobs(n int) *fakeJobsSvc {
	svc := new(fakeJobsSvc)
	for i := 1; i <= n; i++ {
		svc.jobs = append(svc.jobs, jobs.Job{
			ID:        int64(i),
			Title:     fmt.Sprintf("Job %d", i),
			Remote:    i%2 == 0,
			Status:    "OPENED",
			AcademyID: null.Int64From(academyID),
		})
	}
	return svc
}

func TestJobsApi_pagination(t *testing.T) {
	jobSvc := newFakeJobs(12)
	env := setup(t, func(deps *ServerDeps) { deps.JobsSvc = jobSvc })
	token := getToken(t, admin)
	base := "http://example.com/v1/jobs/academy/job"
	link := func(q string) *string {
		s := base + "?" + q
		return &s
	}
	page := func(count int, first, last, next, previous *string, results ...jobs.Job) PageResponse {
		return PageResponse{Count: count, First: first, Last: last, Next: next, Previous: previous, Results: results}
	}
	all := jobSvc.jobs

	tests := []httpTest{
		{
			name: "no limit: plain list", path: "/v1/jobs/academy/job", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, all),
		},
		{
			name: "first page", path: "/v1/jobs/academy/job?limit=5", token: token, wantCode: http.StatusOK,
			wantData: marchallObj(t, page(12, nil, link("limit=5&offset=7"), link("limit=5&offset=5"), nil, all[:5]...)),
		},
		{
			name: "second page", path: "/v1/jobs/academy/job?limit=5&offset=5", token: token, wantCode: http.StatusOK,
			wantData: marchallObj(t, page(12, link("limit=5"), link("limit=5&offset=7"), link("limit=5&offset=10"), link("limit=5"), all[5:10]...)),
		},
		{
			name: "last page", path: "/v1/jobs/academy/job?limit=5&offset=10", token: token, wantCode: http.StatusOK,
			wantData: marchallObj(t, page(12, link("limit=5"), nil, nil, link("limit=5&offset=5"), all[10:]...)),
		},
		{
			name: "filter remote", path: "/v1/jobs/academy/job?remote=true&limit=2&offset=4", token: token, wantCode: http.StatusOK,
			wantData: marchallObj(t, PageResponse{
				Count:    6,
				First:    link("limit=2&remote=true"),
				Previous: link("limit=2&offset=2&remote=true"),
				Results:  []jobs.Job{all[9], all[11]},
			}),
		},
	}
	env.run(t, tests, "1")
}

func TestJobsApi_crud(t *testing.T) {
	jobSvc := newFakeJobs(2)
	env := setup(t, func(deps *ServerDeps) { deps.JobsSvc = jobSvc })
	token := getToken(t, admin)

	tests := []httpTest{
		{
			name: "retrieve", path: "/v1/jobs/academy/job/2", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, jobSvc.jobs[1]),
		},
		{
			name: "retrieve unknown", path: "/v1/jobs/academy/job/5", token: token,
			wantCode: http.StatusNotFound, wantData: errData(t, 404, "job-not-found"),
		},
		{
			name: "retrieve invalid id", path: "/v1/jobs/academy/job/lol", token: token,
			wantCode: http.StatusBadRequest, wantData: errData(t, 400, "invalid-id"),
		},
		{
			name: "create requires a title", method: http.MethodPost, path: "/v1/jobs/academy/job", token: token,
			body:     []byte(`{"employer": "Acme"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"title": ["This field is required."]}`),
		},
		{
			name: "create", method: http.MethodPost, path: "/v1/jobs/academy/job", token: token,
			body:     []byte(`{"title": "  Go developer ", "remote": true}`),
			wantCode: http.StatusCreated,
			wantData: marchallObj(t, jobs.Job{ID: 99, Title: "Go developer", Status: "OPENED", AcademyID: null.Int64From(academyID)}),
		},
		{
			name: "create needs crud_job", method: http.MethodPost, path: "/v1/jobs/academy/job", token: getToken(t, student),
			body:     []byte(`{"title": "Go developer"}`),
			wantCode: http.StatusForbidden,
			wantData: errData(t, 403, "You (user: 2) don't have this capability: crud_job for academy 1"),
		},
	}
	env.run(t, tests, "1")

	if assert.Len(t, jobSvc.created, 1) {
		assert.True(t, jobSvc.created[0].Remote)
	}
}
