package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/admissions"
)

var cohortOrdering = map[string]string{
	"id":           "id",
	"slug":         "slug",
	"name":         "name",
	"kickoff_date": "kickoff_date",
	"ending_date":  "ending_date",
	"created_at":   "created_at",
}

type admissionsRepository struct {
	db *sqlx.DB
}

var _ admissions.Repository = (*admissionsRepository)(nil) // interface compliance check

func NewAdmissionsRepository(db *sqlx.DB) *admissionsRepository {
	return &admissionsRepository{db: db}
}

// Academies

func (repo admissionsRepository) QueryAcademies(ctx context.Context, statuses ...string) ([]admissions.Academy, error) {
	academies := make([]admissions.Academy, 0)
	q := `SELECT * FROM academy WHERE status = ANY($1) ORDER BY id`
	if err := repo.db.SelectContext(ctx, &academies, q, pq.Array(statuses)); err != nil {
		return nil, errors.Wrap(err, "querying academies")
	}
	return academies, nil
}

func (repo admissionsRepository) GetAcademy(ctx context.Context, id int64) (admissions.Academy, error) {
	var academy admissions.Academy
	if err := repo.db.GetContext(ctx, &academy, `SELECT * FROM academy WHERE id = $1`, id); err != nil {
		return admissions.Academy{}, trapNoRows(err, admissions.ErrAcademyNotFound, "getting academy")
	}
	return academy, nil
}

func (repo admissionsRepository) UpdateAcademy(ctx context.Context, academy admissions.Academy) (admissions.Academy, error) {
	q := `UPDATE academy SET
		name = :name, logo_url = :logo_url, street_address = :street_address, city = :city, country = :country,
		timezone = :timezone, feedback_email = :feedback_email, marketing_email = :marketing_email,
		active_campaign_url = :active_campaign_url, active_campaign_key = :active_campaign_key,
		status = :status, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated admissions.Academy
	if err := namedGet(ctx, repo.db, &updated, q, academy); err != nil {
		return admissions.Academy{}, trapNoRows(err, admissions.ErrAcademyNotFound, "updating academy")
	}
	return updated, nil
}

// Syllabi

func (repo admissionsRepository) QuerySyllabi(ctx context.Context, academyID int64, p core.Pagination) ([]admissions.Syllabus, int, error) {
	w := new(where)
	w.add("(academy_owner_id = ? OR NOT private)", academyID)

	syllabi := make([]admissions.Syllabus, 0)
	total, err := page(ctx, repo.db, &syllabi,
		`SELECT COUNT(*) FROM syllabus`, `SELECT * FROM syllabus`,
		w, " ORDER BY id", p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying syllabi")
	}
	return syllabi, total, nil
}

func (repo admissionsRepository) GetSyllabus(ctx context.Context, id int64) (admissions.Syllabus, error) {
	var syl admissions.Syllabus
	if err := repo.db.GetContext(ctx, &syl, `SELECT * FROM syllabus WHERE id = $1`, id); err != nil {
		return admissions.Syllabus{}, trapNoRows(err, admissions.ErrSyllabusNotFound, "getting syllabus")
	}
	return syl, nil
}

func (repo admissionsRepository) GetSyllabusBySlug(ctx context.Context, slug string) (admissions.Syllabus, error) {
	var syl admissions.Syllabus
	if err := repo.db.GetContext(ctx, &syl, `SELECT * FROM syllabus WHERE slug = $1`, slug); err != nil {
		return admissions.Syllabus{}, trapNoRows(err, admissions.ErrSyllabusNotFound, "getting syllabus by slug")
	}
	return syl, nil
}

func (repo admissionsRepository) CreateSyllabus(ctx context.Context, syl admissions.Syllabus) (admissions.Syllabus, error) {
	q := `INSERT INTO syllabus (
		slug, name, academy_owner_id, duration_in_days, duration_in_hours, week_hours,
		github_url, logo, private, main_technologies
	) VALUES (
		:slug, :name, :academy_owner_id, :duration_in_days, :duration_in_hours, :week_hours,
		:github_url, :logo, :private, :main_technologies
	) RETURNING *`
	var created admissions.Syllabus
	if err := namedGet(ctx, repo.db, &created, q, syl); err != nil {
		return admissions.Syllabus{}, errors.Wrap(err, "inserting syllabus")
	}
	return created, nil
}

func (repo admissionsRepository) UpdateSyllabus(ctx context.Context, syl admissions.Syllabus) (admissions.Syllabus, error) {
	q := `UPDATE syllabus SET
		slug = :slug, name = :name, academy_owner_id = :academy_owner_id, duration_in_days = :duration_in_days,
		duration_in_hours = :duration_in_hours, week_hours = :week_hours, github_url = :github_url,
		logo = :logo, private = :private, main_technologies = :main_technologies, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated admissions.Syllabus
	if err := namedGet(ctx, repo.db, &updated, q, syl); err != nil {
		return admissions.Syllabus{}, trapNoRows(err, admissions.ErrSyllabusNotFound, "updating syllabus")
	}
	return updated, nil
}

// Schedules

func (repo admissionsRepository) QuerySchedules(ctx context.Context, filter admissions.ScheduleFilter) ([]admissions.SyllabusSchedule, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("sch.academy_id = ?", filter.AcademyID)
	}
	if filter.SyllabusID != 0 {
		w.add("sch.syllabus_id = ?", filter.SyllabusID)
	}
	if filter.SyllabusSlug != "" {
		w.add("syl.slug = ?", filter.SyllabusSlug)
	}

	schedules := make([]admissions.SyllabusSchedule, 0)
	q := `SELECT sch.* FROM syllabus_schedule sch JOIN syllabus syl ON syl.id = sch.syllabus_id` + w.String() + ` ORDER BY sch.id`
	if err := repo.db.SelectContext(ctx, &schedules, rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying schedules")
	}
	return schedules, nil
}

func (repo admissionsRepository) GetSchedule(ctx context.Context, academyID, id int64) (admissions.SyllabusSchedule, error) {
	var sch admissions.SyllabusSchedule
	q := `SELECT * FROM syllabus_schedule WHERE id = $1 AND ($2::BIGINT = 0 OR academy_id = $2)`
	if err := repo.db.GetContext(ctx, &sch, q, id, academyID); err != nil {
		return admissions.SyllabusSchedule{}, trapNoRows(err, admissions.ErrScheduleNotFound, "getting schedule")
	}
	return sch, nil
}

func (repo admissionsRepository) CreateSchedule(ctx context.Context, sch admissions.SyllabusSchedule) (admissions.SyllabusSchedule, error) {
	q := `INSERT INTO syllabus_schedule (name, description, schedule_type, syllabus_id, academy_id)
	VALUES (:name, :description, :schedule_type, :syllabus_id, :academy_id)
	RETURNING *`
	var created admissions.SyllabusSchedule
	if err := namedGet(ctx, repo.db, &created, q, sch); err != nil {
		return admissions.SyllabusSchedule{}, errors.Wrap(err, "inserting schedule")
	}
	return created, nil
}

func (repo admissionsRepository) UpdateSchedule(ctx context.Context, sch admissions.SyllabusSchedule) (admissions.SyllabusSchedule, error) {
	q := `UPDATE syllabus_schedule SET
		name = :name, description = :description, schedule_type = :schedule_type, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated admissions.SyllabusSchedule
	if err := namedGet(ctx, repo.db, &updated, q, sch); err != nil {
		return admissions.SyllabusSchedule{}, trapNoRows(err, admissions.ErrScheduleNotFound, "updating schedule")
	}
	return updated, nil
}

func (repo admissionsRepository) DeleteSchedules(ctx context.Context, academyID int64, ids ...int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := `DELETE FROM syllabus_schedule WHERE academy_id = $1 AND id = ANY($2)`
	res, err := repo.db.ExecContext(ctx, q, academyID, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting schedules")
	}
	return affected(res)
}

// TimeSlots

func (repo admissionsRepository) QueryScheduleTimeSlots(ctx context.Context, scheduleID int64) ([]admissions.ScheduleTimeSlot, error) {
	slots := make([]admissions.ScheduleTimeSlot, 0)
	q := `SELECT * FROM syllabus_schedule_timeslot WHERE schedule_id = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &slots, q, scheduleID); err != nil {
		return nil, errors.Wrap(err, "querying schedule timeslots")
	}
	return slots, nil
}

func (repo admissionsRepository) CreateScheduleTimeSlot(ctx context.Context, ts admissions.ScheduleTimeSlot) (admissions.ScheduleTimeSlot, error) {
	q := `INSERT INTO syllabus_schedule_timeslot (schedule_id, starting_at, ending_at, recurrent, recurrency_type, timezone)
	VALUES (:schedule_id, :starting_at, :ending_at, :recurrent, :recurrency_type, :timezone)
	RETURNING *`
	var created admissions.ScheduleTimeSlot
	if err := namedGet(ctx, repo.db, &created, q, ts); err != nil {
		return admissions.ScheduleTimeSlot{}, errors.Wrap(err, "inserting schedule timeslot")
	}
	return created, nil
}

func (repo admissionsRepository) DeleteScheduleTimeSlot(ctx context.Context, scheduleID, id int64) error {
	q := `DELETE FROM syllabus_schedule_timeslot WHERE schedule_id = $1 AND id = $2`
	return deleteOne(ctx, repo.db, q, admissions.ErrTimeSlotNotFound, "deleting schedule timeslot", scheduleID, id)
}

func (repo admissionsRepository) QueryCohortTimeSlots(ctx context.Context, filter admissions.CohortTimeSlotFilter) ([]admissions.CohortTimeSlot, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("c.academy_id = ?", filter.AcademyID)
	}
	if len(filter.Cohorts) > 0 {
		w.add("ts.cohort_id = ANY(?)", pq.Array(filter.Cohorts))
	}
	if len(filter.ExcludeStages) > 0 {
		w.add("NOT (c.stage = ANY(?))", pq.Array(filter.ExcludeStages))
	}

	slots := make([]admissions.CohortTimeSlot, 0)
	q := `SELECT ts.* FROM cohort_timeslot ts JOIN cohort c ON c.id = ts.cohort_id` + w.String() + ` ORDER BY ts.id`
	if err := repo.db.SelectContext(ctx, &slots, rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying cohort timeslots")
	}
	return slots, nil
}

const insertCohortTimeSlot = `INSERT INTO cohort_timeslot (cohort_id, starting_at, ending_at, recurrent, recurrency_type, timezone)
VALUES (:cohort_id, :starting_at, :ending_at, :recurrent, :recurrency_type, :timezone)
RETURNING *`

func (repo admissionsRepository) CreateCohortTimeSlot(ctx context.Context, ts admissions.CohortTimeSlot) (admissions.CohortTimeSlot, error) {
	var created admissions.CohortTimeSlot
	if err := namedGet(ctx, repo.db, &created, insertCohortTimeSlot, ts); err != nil {
		return admissions.CohortTimeSlot{}, errors.Wrap(err, "inserting cohort timeslot")
	}
	return created, nil
}

func (repo admissionsRepository) DeleteCohortTimeSlot(ctx context.Context, cohortID, id int64) error {
	q := `DELETE FROM cohort_timeslot WHERE cohort_id = $1 AND id = $2`
	return deleteOne(ctx, repo.db, q, admissions.ErrTimeSlotNotFound, "deleting cohort timeslot", cohortID, id)
}

func (repo admissionsRepository) ReplaceCohortTimeSlots(
	ctx context.Context,
	cohortID int64,
	slots []admissions.CohortTimeSlot,
) ([]admissions.CohortTimeSlot, error) {
	created := make([]admissions.CohortTimeSlot, 0, len(slots))
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cohort_timeslot WHERE cohort_id = $1`, cohortID); err != nil {
			return errors.Wrap(err, "deleting cohort timeslots")
		}
		for _, ts := range slots {
			ts.CohortID = cohortID
			var c admissions.CohortTimeSlot
			if err := namedGet(ctx, tx, &c, insertCohortTimeSlot, ts); err != nil {
				return errors.Wrap(err, "inserting cohort timeslot")
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Cohorts

func (repo admissionsRepository) QueryCohorts(
	ctx context.Context,
	filter admissions.CohortFilter,
	ordering []core.DBOrdering,
	p core.Pagination,
) ([]admissions.Cohort, int, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("academy_id = ?", filter.AcademyID)
	}
	if len(filter.Stages) > 0 {
		w.add("stage = ANY(?)", pq.Array(filter.Stages))
	}
	if filter.Upcoming {
		w.add("kickoff_date > NOW()")
	}

	cohorts := make([]admissions.Cohort, 0)
	total, err := page(ctx, repo.db, &cohorts,
		`SELECT COUNT(*) FROM cohort`, `SELECT * FROM cohort`,
		w, core.OrderBy(ordering, cohortOrdering, "kickoff_date DESC, id DESC"), p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying cohorts")
	}
	return cohorts, total, nil
}

func (repo admissionsRepository) GetCohort(ctx context.Context, academyID, id int64) (admissions.Cohort, error) {
	var cohort admissions.Cohort
	q := `SELECT * FROM cohort WHERE id = $1 AND ($2::BIGINT = 0 OR academy_id = $2)`
	if err := repo.db.GetContext(ctx, &cohort, q, id, academyID); err != nil {
		return admissions.Cohort{}, trapNoRows(err, admissions.ErrCohortNotFound, "getting cohort")
	}
	return cohort, nil
}

func (repo admissionsRepository) GetCohortBySlug(ctx context.Context, slug string) (admissions.Cohort, error) {
	var cohort admissions.Cohort
	if err := repo.db.GetContext(ctx, &cohort, `SELECT * FROM cohort WHERE slug = $1`, slug); err != nil {
		return admissions.Cohort{}, trapNoRows(err, admissions.ErrCohortNotFound, "getting cohort by slug")
	}
	return cohort, nil
}

func (repo admissionsRepository) CreateCohort(ctx context.Context, cohort admissions.Cohort) (admissions.Cohort, error) {
	q := `INSERT INTO cohort (
		slug, name, kickoff_date, ending_date, current_day, current_module, stage, private, never_ends,
		remote_available, language, timezone, academy_id, syllabus_id, schedule_id
	) VALUES (
		:slug, :name, :kickoff_date, :ending_date, :current_day, :current_module, :stage, :private, :never_ends,
		:remote_available, :language, :timezone, :academy_id, :syllabus_id, :schedule_id
	) RETURNING *`
	var created admissions.Cohort
	if err := namedGet(ctx, repo.db, &created, q, cohort); err != nil {
		return admissions.Cohort{}, errors.Wrap(err, "inserting cohort")
	}
	return created, nil
}

func (repo admissionsRepository) UpdateCohort(ctx context.Context, cohort admissions.Cohort) (admissions.Cohort, error) {
	q := `UPDATE cohort SET
		slug = :slug, name = :name, kickoff_date = :kickoff_date, ending_date = :ending_date,
		current_day = :current_day, current_module = :current_module, stage = :stage, private = :private,
		never_ends = :never_ends, remote_available = :remote_available, language = :language,
		timezone = :timezone, syllabus_id = :syllabus_id, schedule_id = :schedule_id, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated admissions.Cohort
	if err := namedGet(ctx, repo.db, &updated, q, cohort); err != nil {
		return admissions.Cohort{}, trapNoRows(err, admissions.ErrCohortNotFound, "updating cohort")
	}
	return updated, nil
}

// Cohort users

func (repo admissionsRepository) QueryCohortUsers(
	ctx context.Context,
	filter admissions.CohortUserFilter,
	p core.Pagination,
) ([]admissions.CohortUser, int, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("c.academy_id = ?", filter.AcademyID)
	}
	if len(filter.Users) > 0 {
		w.add("cu.user_id = ANY(?)", pq.Array(filter.Users))
	}
	if len(filter.Cohorts) > 0 {
		w.add("cu.cohort_id = ANY(?)", pq.Array(filter.Cohorts))
	}
	if len(filter.Roles) > 0 {
		w.add("cu.role = ANY(?)", pq.Array(filter.Roles))
	}
	if len(filter.EducationalStatus) > 0 {
		w.add("cu.educational_status = ANY(?)", pq.Array(filter.EducationalStatus))
	}
	if filter.ExcludeCohortStage != "" {
		w.add("c.stage <> ?", filter.ExcludeCohortStage)
	}

	const from = ` FROM cohort_user cu JOIN cohort c ON c.id = cu.cohort_id`
	users := make([]admissions.CohortUser, 0)
	total, err := page(ctx, repo.db, &users,
		`SELECT COUNT(*)`+from, `SELECT cu.*`+from,
		w, " ORDER BY cu.id", p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying cohort users")
	}
	return users, total, nil
}

func (repo admissionsRepository) GetCohortUser(ctx context.Context, cohortID, userID int64) (admissions.CohortUser, error) {
	var cu admissions.CohortUser
	q := `SELECT * FROM cohort_user WHERE cohort_id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &cu, q, cohortID, userID); err != nil {
		return admissions.CohortUser{}, trapNoRows(err, admissions.ErrCohortUserNotFound, "getting cohort user")
	}
	return cu, nil
}

func (repo admissionsRepository) CreateCohortUser(ctx context.Context, cu admissions.CohortUser) (admissions.CohortUser, error) {
	q := `INSERT INTO cohort_user (user_id, cohort_id, role, educational_status, finantial_status)
	VALUES (:user_id, :cohort_id, :role, :educational_status, :finantial_status)
	RETURNING *`
	var created admissions.CohortUser
	if err := namedGet(ctx, repo.db, &created, q, cu); err != nil {
		return admissions.CohortUser{}, errors.Wrap(err, "inserting cohort user")
	}
	return created, nil
}

func (repo admissionsRepository) DeleteCohortUser(ctx context.Context, cohortID, userID int64) error {
	q := `DELETE FROM cohort_user WHERE cohort_id = $1 AND user_id = $2`
	return deleteOne(ctx, repo.db, q, admissions.ErrCohortUserNotFound, "deleting cohort user", cohortID, userID)
}
