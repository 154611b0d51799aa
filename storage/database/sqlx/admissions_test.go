package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/admissions"
	"github.com/trezcool/academia/storage/database/dbtest"
)

func newCohort(t *testing.T, repo *admissionsRepository, academyID int64, slug, stage string, kickoff time.Time) admissions.Cohort {
	t.Helper()
	c, err := repo.CreateCohort(context.Background(), admissions.Cohort{
		Slug: slug, Name: slug, KickoffDate: kickoff, NeverEnds: true, Stage: stage,
		RemoteAvailable: true, Language: "en", AcademyID: academyID,
	})
	require.NoError(t, err)
	return c
}

func slot(start, end admissions.DatetimeInteger) admissions.TimeSlot {
	return admissions.TimeSlot{StartingAt: start, EndingAt: end, Recurrent: true, RecurrencyType: admissions.Weekly, Timezone: "UTC"}
}

func Test_admissionsRepository(t *testing.T) {
	db := dbtest.PrepareDB(t)
	repo := NewAdmissionsRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	academyID := dbtest.CreateAcademy(t, db, "downtown", admissions.AcademyActive)
	otherID := dbtest.CreateAcademy(t, db, "uptown", admissions.AcademyActive)
	now := time.Now().UTC()

	t.Run("academies", func(t *testing.T) {
		academies, err := repo.QueryAcademies(ctx, admissions.AcademyActive)
		require.NoError(t, err)
		assert.Len(t, academies, 2)

		academy, err := repo.GetAcademy(ctx, academyID)
		require.NoError(t, err)
		academy.Status = admissions.AcademyInactive
		academy.Timezone = "Africa/Kinshasa"
		updated, err := repo.UpdateAcademy(ctx, academy)
		require.NoError(t, err)
		assert.Equal(t, "Africa/Kinshasa", updated.Timezone)

		academies, err = repo.QueryAcademies(ctx, admissions.AcademyActive)
		require.NoError(t, err)
		if assert.Len(t, academies, 1) {
			assert.Equal(t, otherID, academies[0].ID)
		}

		_, err = repo.GetAcademy(ctx, 404)
		assert.Equal(t, admissions.ErrAcademyNotFound, err)
	})

	syl, err := repo.CreateSyllabus(ctx, admissions.Syllabus{Slug: "full-stack", Name: "Full Stack", AcademyOwner: null.Int64From(academyID)})
	require.NoError(t, err)
	_, err = repo.CreateSyllabus(ctx, admissions.Syllabus{Slug: "secret", Name: "Secret", AcademyOwner: null.Int64From(otherID), Private: true})
	require.NoError(t, err)

	t.Run("syllabi visibility", func(t *testing.T) {
		list, total, err := repo.QuerySyllabi(ctx, academyID, core.Pagination{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		if assert.Len(t, list, 1) {
			assert.Equal(t, syl.ID, list[0].ID)
		}

		list, total, err = repo.QuerySyllabi(ctx, otherID, core.Pagination{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, list, 2)

		got, err := repo.GetSyllabusBySlug(ctx, "full-stack")
		require.NoError(t, err)
		assert.Equal(t, syl.ID, got.ID)
	})

	t.Run("schedule timeslots", func(t *testing.T) {
		sch, err := repo.CreateSchedule(ctx, admissions.SyllabusSchedule{
			Name: "Mornings", Description: "9 to 12", ScheduleType: admissions.PartTime, SyllabusID: syl.ID, AcademyID: academyID,
		})
		require.NoError(t, err)

		schedules, err := repo.QuerySchedules(ctx, admissions.ScheduleFilter{AcademyID: academyID, SyllabusSlug: "full-stack"})
		require.NoError(t, err)
		assert.Len(t, schedules, 1)

		_, err = repo.GetSchedule(ctx, otherID, sch.ID)
		assert.Equal(t, admissions.ErrScheduleNotFound, err)

		ts, err := repo.CreateScheduleTimeSlot(ctx, admissions.ScheduleTimeSlot{
			TimeSlot: slot(202101040900, 202101041200), ScheduleID: sch.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, admissions.DatetimeInteger(202101040900), ts.StartingAt)

		slots, err := repo.QueryScheduleTimeSlots(ctx, sch.ID)
		require.NoError(t, err)
		assert.Len(t, slots, 1)

		require.NoError(t, repo.DeleteScheduleTimeSlot(ctx, sch.ID, ts.ID))
		assert.Equal(t, admissions.ErrTimeSlotNotFound, repo.DeleteScheduleTimeSlot(ctx, sch.ID, ts.ID))

		n, err := repo.DeleteSchedules(ctx, otherID, sch.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
		n, err = repo.DeleteSchedules(ctx, academyID, sch.ID, 404)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	started := newCohort(t, repo, academyID, "downtown-1", admissions.StageStarted, now.AddDate(0, -1, 0))
	upcoming := newCohort(t, repo, academyID, "downtown-2", admissions.StageInactive, now.AddDate(0, 1, 0))
	ended := newCohort(t, repo, academyID, "downtown-0", admissions.StageEnded, now.AddDate(-1, 0, 0))
	elsewhere := newCohort(t, repo, otherID, "uptown-1", admissions.StageStarted, now)

	t.Run("cohorts", func(t *testing.T) {
		list, total, err := repo.QueryCohorts(ctx, admissions.CohortFilter{AcademyID: academyID}, nil, core.Pagination{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		if assert.Len(t, list, 3) {
			assert.Equal(t, []int64{upcoming.ID, started.ID, ended.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})
		}

		list, _, err = repo.QueryCohorts(ctx, admissions.CohortFilter{Upcoming: true}, nil, core.Pagination{Limit: 10})
		require.NoError(t, err)
		if assert.Len(t, list, 1) {
			assert.Equal(t, upcoming.ID, list[0].ID)
		}

		list, _, err = repo.QueryCohorts(ctx, admissions.CohortFilter{Stages: []string{admissions.StageStarted}},
			[]core.DBOrdering{{Field: "slug", Ascending: true}}, core.Pagination{Limit: 10})
		require.NoError(t, err)
		if assert.Len(t, list, 2) {
			assert.Equal(t, started.ID, list[0].ID)
			assert.Equal(t, elsewhere.ID, list[1].ID)
		}

		_, err = repo.GetCohort(ctx, otherID, started.ID)
		assert.Equal(t, admissions.ErrCohortNotFound, err)

		started.CurrentModule = null.IntFrom(3)
		updated, err := repo.UpdateCohort(ctx, started)
		require.NoError(t, err)
		assert.Equal(t, null.IntFrom(3), updated.CurrentModule)
	})

	t.Run("cohort users", func(t *testing.T) {
		jane := dbtest.CreateUser(t, users, "Jane", "jane", "jane@doe.test", "", true, false)
		john := dbtest.CreateUser(t, users, "John", "john", "john@doe.test", "", true, false)
		for _, cu := range []admissions.CohortUser{
			{UserID: jane.ID, CohortID: started.ID, Role: admissions.RoleStudent, EducationalStatus: null.StringFrom(admissions.EduActive)},
			{UserID: john.ID, CohortID: started.ID, Role: admissions.RoleTeacher},
			{UserID: jane.ID, CohortID: ended.ID, Role: admissions.RoleStudent, EducationalStatus: null.StringFrom(admissions.EduGraduated)},
		} {
			_, err := repo.CreateCohortUser(ctx, cu)
			require.NoError(t, err)
		}

		list, total, err := repo.QueryCohortUsers(ctx, admissions.CohortUserFilter{Users: []int64{jane.ID}}, core.Pagination{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, list, 2)

		list, total, err = repo.QueryCohortUsers(ctx, admissions.CohortUserFilter{
			AcademyID: academyID, ExcludeCohortStage: admissions.StageEnded, Roles: []string{admissions.RoleStudent},
		}, core.Pagination{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		if assert.Len(t, list, 1) {
			assert.Equal(t, started.ID, list[0].CohortID)
		}

		require.NoError(t, repo.DeleteCohortUser(ctx, started.ID, john.ID))
		assert.Equal(t, admissions.ErrCohortUserNotFound, repo.DeleteCohortUser(ctx, started.ID, john.ID))
		_, err = repo.GetCohortUser(ctx, started.ID, john.ID)
		assert.Equal(t, admissions.ErrCohortUserNotFound, err)
	})

	t.Run("cohort timeslots", func(t *testing.T) {
		first, err := repo.CreateCohortTimeSlot(ctx, admissions.CohortTimeSlot{TimeSlot: slot(202101040900, 202101041200), CohortID: started.ID})
		require.NoError(t, err)
		_, err = repo.CreateCohortTimeSlot(ctx, admissions.CohortTimeSlot{TimeSlot: slot(202101050900, 202101051200), CohortID: started.ID})
		require.NoError(t, err)
		_, err = repo.CreateCohortTimeSlot(ctx, admissions.CohortTimeSlot{TimeSlot: slot(202101060900, 202101061200), CohortID: ended.ID})
		require.NoError(t, err)
		kept, err := repo.CreateCohortTimeSlot(ctx, admissions.CohortTimeSlot{TimeSlot: slot(202101070900, 202101071200), CohortID: elsewhere.ID})
		require.NoError(t, err)

		slots, err := repo.QueryCohortTimeSlots(ctx, admissions.CohortTimeSlotFilter{
			AcademyID: academyID, ExcludeStages: []string{admissions.StageEnded, admissions.StageDeleted},
		})
		require.NoError(t, err)
		assert.Len(t, slots, 2)

		require.NoError(t, repo.DeleteCohortTimeSlot(ctx, started.ID, first.ID))
		assert.Equal(t, admissions.ErrTimeSlotNotFound, repo.DeleteCohortTimeSlot(ctx, started.ID, first.ID))
		assert.Equal(t, admissions.ErrTimeSlotNotFound, repo.DeleteCohortTimeSlot(ctx, started.ID, kept.ID))

		// sync replaces every slot of the cohort and nothing else
		synced, err := repo.ReplaceCohortTimeSlots(ctx, started.ID, []admissions.CohortTimeSlot{
			{TimeSlot: slot(202102010800, 202102011000)},
			{TimeSlot: slot(202102020800, 202102021000), CohortID: elsewhere.ID},
		})
		require.NoError(t, err)
		if assert.Len(t, synced, 2) {
			assert.Equal(t, started.ID, synced[0].CohortID)
			assert.Equal(t, started.ID, synced[1].CohortID)
		}

		slots, err = repo.QueryCohortTimeSlots(ctx, admissions.CohortTimeSlotFilter{Cohorts: []int64{started.ID}})
		require.NoError(t, err)
		if assert.Len(t, slots, 2) {
			assert.Equal(t, admissions.DatetimeInteger(202102010800), slots[0].StartingAt)
		}

		synced, err = repo.ReplaceCohortTimeSlots(ctx, started.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, synced)

		slots, err = repo.QueryCohortTimeSlots(ctx, admissions.CohortTimeSlotFilter{Cohorts: []int64{started.ID, elsewhere.ID}})
		require.NoError(t, err)
		if assert.Len(t, slots, 1) {
			assert.Equal(t, kept.ID, slots[0].ID)
		}
	})
}
