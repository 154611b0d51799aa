package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/jobs"
	"github.com/trezcool/academia/storage/database/dbtest"
)

func Test_jobsRepository(t *testing.T) {
	db := dbtest.PrepareDB(t)
	repo := NewJobsRepository(db)
	ctx := context.Background()

	academyID := dbtest.CreateAcademy(t, db, "downtown", "ACTIVE")
	otherID := dbtest.CreateAcademy(t, db, "uptown", "ACTIVE")

	newJob := func(title string, academy int64, remote bool, published null.Time) jobs.Job {
		job, err := repo.CreateJob(ctx, jobs.Job{
			Title: title, Employer: "ACME", Remote: remote, JobType: "FULL-TIME", Currency: "USD",
			MinSalary: null.Float64From(1000), MaxSalary: null.Float64From(2000),
			PublishedDateProcessed: published, Status: jobs.StatusOpened, AcademyID: null.Int64From(academy),
		})
		require.NoError(t, err)
		return job
	}
	older := newJob("Backend", academyID, false, null.TimeFrom(time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC)))
	newer := newJob("Frontend", academyID, true, null.TimeFrom(time.Date(2021, 2, 10, 0, 0, 0, 0, time.UTC)))
	undated := newJob("Data", academyID, true, null.Time{})
	newJob("Elsewhere", otherID, true, null.Time{})

	remote := true
	tests := []struct {
		name    string
		filter  jobs.JobFilter
		wantIDs []int64
	}{
		{name: "latest published first, undated last", filter: jobs.JobFilter{AcademyID: academyID}, wantIDs: []int64{newer.ID, older.ID, undated.ID}},
		{name: "remote only", filter: jobs.JobFilter{AcademyID: academyID, Remote: &remote}, wantIDs: []int64{newer.ID, undated.ID}},
		{name: "closed", filter: jobs.JobFilter{AcademyID: academyID, Statuses: []string{jobs.StatusClosed}}, wantIDs: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := repo.QueryJobs(ctx, tt.filter, core.Pagination{Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, len(tt.wantIDs), total)
			ids := make([]int64, 0, len(list))
			for _, j := range list {
				ids = append(ids, j.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("get and update", func(t *testing.T) {
		_, err := repo.GetJob(ctx, otherID, older.ID)
		assert.Equal(t, jobs.ErrJobNotFound, err)

		older.Status = jobs.StatusClosed
		updated, err := repo.UpdateJob(ctx, older)
		require.NoError(t, err)
		assert.Equal(t, jobs.StatusClosed, updated.Status)
		assert.Equal(t, null.Float64From(2000), updated.MaxSalary)

		older.ID = 404
		_, err = repo.UpdateJob(ctx, older)
		assert.Equal(t, jobs.ErrJobNotFound, err)
	})
}
