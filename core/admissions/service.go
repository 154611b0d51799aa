package admissions

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

var (
	// errors
	ErrAcademyNotFound         = core.NewNotFoundError("academy-not-found")
	ErrSyllabusNotFound        = core.NewNotFoundError("syllabus-not-found")
	ErrScheduleNotFound        = core.NewNotFoundError("schedule-not-found")
	ErrCohortNotFound          = core.NewNotFoundError("cohort-not-found")
	ErrCohortUserNotFound      = core.NewNotFoundError("cohort-user-not-found")
	ErrTimeSlotNotFound        = core.NewNotFoundError("timeslot-not-found")
	ErrMissingSlug             = core.NewSlugValidationError("missing-slug")
	ErrMissingName             = core.NewSlugValidationError("missing-name")
	ErrSyllabusSlugExists      = core.NewSlugValidationError("syllabus-slug-already-exists")
	ErrCohortSlugExists        = core.NewSlugValidationError("cohort-slug-already-exists")
	ErrMissingSyllabus         = core.NewSlugValidationError("missing-syllabus-in-request")
	ErrMissingAcademy          = core.NewSlugValidationError("missing-academy-in-request")
	ErrMissingQueryParams      = core.NewValidationError(errors.New("Missing parameters in the querystring"))
	ErrMissingCohortIDs        = core.NewSlugValidationError("missing-cohort-in-querystring")
	ErrCohortWithoutSchedule   = core.NewSlugValidationError("cohort-without-schedule")
	ErrScheduleOfOtherSyllabus = core.NewSlugValidationError("schedule-of-other-syllabus")
	ErrEndingDateAndNeverEnds  = core.NewSlugValidationError("cohort-with-ending-date-and-never-ends")
	ErrNoEndingDate            = core.NewSlugValidationError("cohort-without-ending-date-and-never-ends")
	ErrUserAlreadyInCohort     = core.NewSlugValidationError("user-already-in-cohort")
	ErrCohortHasTeacher        = core.NewValidationError(errors.New("There can only be one main instructor in a cohort"))
	ErrTimeSlotEndsBeforeStart = core.NewSlugValidationError("timeslot-ends-before-start")
)

type (
	Repository interface {
		QueryAcademies(ctx context.Context, statuses ...string) ([]Academy, error)
		GetAcademy(ctx context.Context, id int64) (Academy, error)
		UpdateAcademy(ctx context.Context, academy Academy) (Academy, error)

		// QuerySyllabi returns the syllabi owned by the academy, plus the public ones.
		QuerySyllabi(ctx context.Context, academyID int64, page core.Pagination) ([]Syllabus, int, error)
		GetSyllabus(ctx context.Context, id int64) (Syllabus, error)
		GetSyllabusBySlug(ctx context.Context, slug string) (Syllabus, error)
		CreateSyllabus(ctx context.Context, syl Syllabus) (Syllabus, error)
		UpdateSyllabus(ctx context.Context, syl Syllabus) (Syllabus, error)

		QuerySchedules(ctx context.Context, filter ScheduleFilter) ([]SyllabusSchedule, error)
		GetSchedule(ctx context.Context, academyID, id int64) (SyllabusSchedule, error)
		CreateSchedule(ctx context.Context, sch SyllabusSchedule) (SyllabusSchedule, error)
		UpdateSchedule(ctx context.Context, sch SyllabusSchedule) (SyllabusSchedule, error)
		DeleteSchedules(ctx context.Context, academyID int64, ids ...int64) (int, error)

		QueryScheduleTimeSlots(ctx context.Context, scheduleID int64) ([]ScheduleTimeSlot, error)
		CreateScheduleTimeSlot(ctx context.Context, ts ScheduleTimeSlot) (ScheduleTimeSlot, error)
		DeleteScheduleTimeSlot(ctx context.Context, scheduleID, id int64) error

		QueryCohortTimeSlots(ctx context.Context, filter CohortTimeSlotFilter) ([]CohortTimeSlot, error)
		CreateCohortTimeSlot(ctx context.Context, ts CohortTimeSlot) (CohortTimeSlot, error)
		DeleteCohortTimeSlot(ctx context.Context, cohortID, id int64) error
		// ReplaceCohortTimeSlots deletes all the cohort timeslots and creates slots instead, atomically.
		ReplaceCohortTimeSlots(ctx context.Context, cohortID int64, slots []CohortTimeSlot) ([]CohortTimeSlot, error)

		QueryCohorts(ctx context.Context, filter CohortFilter, ordering []core.DBOrdering, page core.Pagination) ([]Cohort, int, error)
		// GetCohort returns ErrCohortNotFound if the cohort does not belong to academyID (unless academyID is 0).
		GetCohort(ctx context.Context, academyID, id int64) (Cohort, error)
		GetCohortBySlug(ctx context.Context, slug string) (Cohort, error)
		CreateCohort(ctx context.Context, cohort Cohort) (Cohort, error)
		UpdateCohort(ctx context.Context, cohort Cohort) (Cohort, error)

		QueryCohortUsers(ctx context.Context, filter CohortUserFilter, page core.Pagination) ([]CohortUser, int, error)
		GetCohortUser(ctx context.Context, cohortID, userID int64) (CohortUser, error)
		CreateCohortUser(ctx context.Context, cu CohortUser) (CohortUser, error)
		DeleteCohortUser(ctx context.Context, cohortID, userID int64) error
	}

	Service interface {
		PublicAcademies(ctx context.Context) ([]Academy, error)
		GetAcademy(ctx context.Context, id int64) (Academy, error)
		UpdateAcademy(ctx context.Context, id int64, ua UpdateAcademy) (Academy, error)

		QuerySyllabi(ctx context.Context, academyID int64, page core.Pagination) ([]Syllabus, int, error)
		CreateSyllabus(ctx context.Context, academyID int64, ns NewSyllabus) (Syllabus, error)
		GetSyllabus(ctx context.Context, academyID, id int64) (Syllabus, error)
		UpdateSyllabus(ctx context.Context, academyID, id int64, us UpdateSyllabus) (Syllabus, error)

		QuerySchedules(ctx context.Context, filter ScheduleFilter) ([]SyllabusSchedule, error)
		// CheckScheduleRelations reports a missing or unknown syllabus or academy.
		CheckScheduleRelations(ctx context.Context, ns NewSchedule) error
		CreateSchedule(ctx context.Context, ns NewSchedule) (SyllabusSchedule, error)
		GetSchedule(ctx context.Context, academyID, id int64) (SyllabusSchedule, error)
		UpdateSchedule(ctx context.Context, academyID, id int64, us UpdateSchedule) (SyllabusSchedule, error)
		DeleteSchedules(ctx context.Context, academyID int64, ids ...int64) error

		ScheduleTimeSlots(ctx context.Context, academyID, scheduleID int64) ([]ScheduleTimeSlot, error)
		AddScheduleTimeSlot(ctx context.Context, academyID, scheduleID int64, nts NewTimeSlot) (ScheduleTimeSlot, error)
		DeleteScheduleTimeSlot(ctx context.Context, academyID, scheduleID, id int64) error

		CohortTimeSlots(ctx context.Context, academyID, cohortID int64) ([]CohortTimeSlot, error)
		AcademyCohortTimeSlots(ctx context.Context, academyID int64) ([]CohortTimeSlot, error)
		AddCohortTimeSlot(ctx context.Context, academyID, cohortID int64, nts NewTimeSlot) (CohortTimeSlot, error)
		DeleteCohortTimeSlot(ctx context.Context, academyID, cohortID, id int64) error
		// SyncCohortTimeSlots replaces the timeslots of each cohort with the ones of its schedule.
		SyncCohortTimeSlots(ctx context.Context, academyID int64, cohortIDs ...int64) ([]CohortTimeSlot, error)

		QueryCohorts(ctx context.Context, filter CohortFilter, ordering []core.DBOrdering, page core.Pagination) ([]Cohort, int, error)
		CreateCohort(ctx context.Context, academyID int64, nc NewCohort) (Cohort, error)
		GetCohort(ctx context.Context, academyID, id int64) (Cohort, error)
		UpdateCohort(ctx context.Context, academyID, id int64, uc UpdateCohort) (Cohort, error)
		// DeleteCohort moves the cohort to the DELETED stage.
		DeleteCohort(ctx context.Context, academyID, id int64) error

		QueryCohortUsers(ctx context.Context, filter CohortUserFilter, page core.Pagination) ([]CohortUser, int, error)
		AddCohortUser(ctx context.Context, academyID, cohortID int64, ncu NewCohortUser) (CohortUser, error)
		RemoveCohortUser(ctx context.Context, academyID, cohortID, userID int64) error
	}

	service struct {
		repo   Repository
		usrSvc user.Service
		now    func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service) Service {
	return &service{repo: repo, usrSvc: usrSvc, now: func() time.Time { return time.Now().UTC() }}
}

// Academies

func (svc *service) PublicAcademies(ctx context.Context) ([]Academy, error) {
	return svc.repo.QueryAcademies(ctx, AcademyActive)
}

func (svc *service) GetAcademy(ctx context.Context, id int64) (Academy, error) {
	return svc.repo.GetAcademy(ctx, id)
}

func (svc *service) UpdateAcademy(ctx context.Context, id int64, ua UpdateAcademy) (Academy, error) {
	academy, err := svc.repo.GetAcademy(ctx, id)
	if err != nil {
		return Academy{}, err
	}
	if ua.Name != nil {
		academy.Name = core.CleanString(*ua.Name)
	}
	if ua.LogoURL != nil {
		academy.LogoURL = *ua.LogoURL
	}
	if ua.StreetAddress != nil {
		academy.StreetAddress = *ua.StreetAddress
	}
	if ua.City != nil {
		academy.City = *ua.City
	}
	if ua.Country != nil {
		academy.Country = *ua.Country
	}
	if ua.Timezone != nil {
		academy.Timezone = *ua.Timezone
	}
	if ua.FeedbackEmail != nil {
		academy.FeedbackEmail = null.NewString(*ua.FeedbackEmail, *ua.FeedbackEmail != "")
	}
	if ua.MarketingEmail != nil {
		academy.MarketingEmail = null.NewString(*ua.MarketingEmail, *ua.MarketingEmail != "")
	}
	academy.UpdatedAt = svc.now()
	return svc.repo.UpdateAcademy(ctx, academy)
}

// Syllabi

func (svc *service) QuerySyllabi(ctx context.Context, academyID int64, page core.Pagination) ([]Syllabus, int, error) {
	return svc.repo.QuerySyllabi(ctx, academyID, page)
}

func (svc *service) CreateSyllabus(ctx context.Context, academyID int64, ns NewSyllabus) (Syllabus, error) {
	if _, err := svc.repo.GetSyllabusBySlug(ctx, ns.Slug); err == nil {
		return Syllabus{}, ErrSyllabusSlugExists
	} else if !core.IsNotFound(err) {
		return Syllabus{}, errors.Wrap(err, "getting syllabus by slug")
	}

	now := svc.now()
	return svc.repo.CreateSyllabus(ctx, Syllabus{
		Slug:             ns.Slug,
		Name:             ns.Name,
		AcademyOwner:     null.Int64From(academyID),
		DurationInDays:   ns.DurationInDays,
		DurationInHours:  ns.DurationInHours,
		WeekHours:        ns.WeekHours,
		GithubURL:        null.NewString(ns.GithubURL, ns.GithubURL != ""),
		Logo:             null.NewString(ns.Logo, ns.Logo != ""),
		Private:          ns.Private,
		MainTechnologies: null.NewString(ns.MainTechnologies, ns.MainTechnologies != ""),
		CreatedAt:        now,
		UpdatedAt:        now,
	})
}

// GetSyllabus returns the syllabus if it is public or owned by the academy.
func (svc *service) GetSyllabus(ctx context.Context, academyID, id int64) (Syllabus, error) {
	syl, err := svc.repo.GetSyllabus(ctx, id)
	if err != nil {
		return Syllabus{}, err
	}
	if syl.Private && syl.AcademyOwner.Int64 != academyID {
		return Syllabus{}, ErrSyllabusNotFound
	}
	return syl, nil
}

func (svc *service) UpdateSyllabus(ctx context.Context, academyID, id int64, us UpdateSyllabus) (Syllabus, error) {
	syl, err := svc.repo.GetSyllabus(ctx, id)
	if err != nil {
		return Syllabus{}, err
	}
	// only the owner can change a syllabus
	if syl.AcademyOwner.Int64 != academyID {
		return Syllabus{}, ErrSyllabusNotFound
	}

	if us.Name != nil {
		syl.Name = core.CleanString(*us.Name)
	}
	if us.DurationInDays.Valid {
		syl.DurationInDays = us.DurationInDays
	}
	if us.DurationInHours.Valid {
		syl.DurationInHours = us.DurationInHours
	}
	if us.WeekHours.Valid {
		syl.WeekHours = us.WeekHours
	}
	if us.GithubURL != nil {
		syl.GithubURL = null.NewString(*us.GithubURL, *us.GithubURL != "")
	}
	if us.Logo != nil {
		syl.Logo = null.NewString(*us.Logo, *us.Logo != "")
	}
	if us.Private != nil {
		syl.Private = *us.Private
	}
	if us.MainTechnologies != nil {
		syl.MainTechnologies = null.NewString(*us.MainTechnologies, *us.MainTechnologies != "")
	}
	syl.UpdatedAt = svc.now()
	return svc.repo.UpdateSyllabus(ctx, syl)
}

// Schedules

func (svc *service) QuerySchedules(ctx context.Context, filter ScheduleFilter) ([]SyllabusSchedule, error) {
	return svc.repo.QuerySchedules(ctx, filter)
}

// CheckScheduleRelations checks the relations in the order the API reports them: syllabus first, then academy.
func (svc *service) CheckScheduleRelations(ctx context.Context, ns NewSchedule) error {
	if ns.Syllabus == 0 {
		return ErrMissingSyllabus
	}
	if _, err := svc.repo.GetSyllabus(ctx, ns.Syllabus); err != nil {
		return err
	}
	if ns.Academy == 0 {
		return ErrMissingAcademy
	}
	if _, err := svc.repo.GetAcademy(ctx, ns.Academy); err != nil {
		return err
	}
	return nil
}

func (svc *service) CreateSchedule(ctx context.Context, ns NewSchedule) (SyllabusSchedule, error) {
	if err := svc.CheckScheduleRelations(ctx, ns); err != nil {
		return SyllabusSchedule{}, err
	}

	scheduleType := ns.ScheduleType
	if scheduleType == "" {
		scheduleType = PartTime
	}
	now := svc.now()
	return svc.repo.CreateSchedule(ctx, SyllabusSchedule{
		Name:         ns.Name,
		Description:  ns.Description,
		ScheduleType: scheduleType,
		SyllabusID:   ns.Syllabus,
		AcademyID:    ns.Academy,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *service) GetSchedule(ctx context.Context, academyID, id int64) (SyllabusSchedule, error) {
	return svc.repo.GetSchedule(ctx, academyID, id)
}

func (svc *service) UpdateSchedule(ctx context.Context, academyID, id int64, us UpdateSchedule) (SyllabusSchedule, error) {
	sch, err := svc.repo.GetSchedule(ctx, academyID, id)
	if err != nil {
		return SyllabusSchedule{}, err
	}
	if us.Name != nil {
		sch.Name = core.CleanString(*us.Name)
	}
	if us.Description != nil {
		sch.Description = core.CleanString(*us.Description)
	}
	if us.ScheduleType != nil {
		sch.ScheduleType = *us.ScheduleType
	}
	sch.UpdatedAt = svc.now()
	return svc.repo.UpdateSchedule(ctx, sch)
}

func (svc *service) DeleteSchedules(ctx context.Context, academyID int64, ids ...int64) error {
	if len(ids) == 0 {
		return ErrMissingQueryParams
	}
	if _, err := svc.repo.DeleteSchedules(ctx, academyID, ids...); err != nil {
		return errors.Wrap(err, "deleting schedules")
	}
	return nil
}

// Timeslots

func (svc *service) ScheduleTimeSlots(ctx context.Context, academyID, scheduleID int64) ([]ScheduleTimeSlot, error) {
	if _, err := svc.repo.GetSchedule(ctx, academyID, scheduleID); err != nil {
		return nil, err
	}
	return svc.repo.QueryScheduleTimeSlots(ctx, scheduleID)
}

func (svc *service) AddScheduleTimeSlot(ctx context.Context, academyID, scheduleID int64, nts NewTimeSlot) (ScheduleTimeSlot, error) {
	if _, err := svc.repo.GetSchedule(ctx, academyID, scheduleID); err != nil {
		return ScheduleTimeSlot{}, err
	}
	academy, err := svc.repo.GetAcademy(ctx, academyID)
	if err != nil {
		return ScheduleTimeSlot{}, err
	}
	ts, err := nts.build(academy.Timezone, svc.now())
	if err != nil {
		return ScheduleTimeSlot{}, core.NewValidationError(err)
	}
	return svc.repo.CreateScheduleTimeSlot(ctx, ScheduleTimeSlot{TimeSlot: ts, ScheduleID: scheduleID})
}

func (svc *service) DeleteScheduleTimeSlot(ctx context.Context, academyID, scheduleID, id int64) error {
	if _, err := svc.repo.GetSchedule(ctx, academyID, scheduleID); err != nil {
		return err
	}
	return svc.repo.DeleteScheduleTimeSlot(ctx, scheduleID, id)
}

func (svc *service) CohortTimeSlots(ctx context.Context, academyID, cohortID int64) ([]CohortTimeSlot, error) {
	if _, err := svc.repo.GetCohort(ctx, academyID, cohortID); err != nil {
		return nil, err
	}
	return svc.repo.QueryCohortTimeSlots(ctx, CohortTimeSlotFilter{Cohorts: []int64{cohortID}})
}

// AcademyCohortTimeSlots returns the timeslots of every cohort of the academy that is not over.
func (svc *service) AcademyCohortTimeSlots(ctx context.Context, academyID int64) ([]CohortTimeSlot, error) {
	return svc.repo.QueryCohortTimeSlots(ctx, CohortTimeSlotFilter{
		AcademyID:     academyID,
		ExcludeStages: []string{StageEnded, StageDeleted},
	})
}

func (svc *service) AddCohortTimeSlot(ctx context.Context, academyID, cohortID int64, nts NewTimeSlot) (CohortTimeSlot, error) {
	cohort, err := svc.repo.GetCohort(ctx, academyID, cohortID)
	if err != nil {
		return CohortTimeSlot{}, err
	}
	tz := cohort.Timezone.String
	if tz == "" {
		academy, err := svc.repo.GetAcademy(ctx, academyID)
		if err != nil {
			return CohortTimeSlot{}, err
		}
		tz = academy.Timezone
	}
	ts, err := nts.build(tz, svc.now())
	if err != nil {
		return CohortTimeSlot{}, core.NewValidationError(err)
	}
	return svc.repo.CreateCohortTimeSlot(ctx, CohortTimeSlot{TimeSlot: ts, CohortID: cohortID})
}

func (svc *service) DeleteCohortTimeSlot(ctx context.Context, academyID, cohortID, id int64) error {
	if _, err := svc.repo.GetCohort(ctx, academyID, cohortID); err != nil {
		return err
	}
	return svc.repo.DeleteCohortTimeSlot(ctx, cohortID, id)
}

func (svc *service) SyncCohortTimeSlots(ctx context.Context, academyID int64, cohortIDs ...int64) ([]CohortTimeSlot, error) {
	if len(cohortIDs) == 0 {
		return nil, ErrMissingCohortIDs
	}

	cohorts := make([]Cohort, 0, len(cohortIDs))
	for _, id := range cohortIDs {
		cohort, err := svc.repo.GetCohort(ctx, academyID, id)
		if err != nil {
			return nil, err
		}
		if !cohort.ScheduleID.Valid {
			return nil, ErrCohortWithoutSchedule
		}
		cohorts = append(cohorts, cohort)
	}

	now := svc.now()
	var synced []CohortTimeSlot
	for _, cohort := range cohorts {
		schSlots, err := svc.repo.QueryScheduleTimeSlots(ctx, cohort.ScheduleID.Int64)
		if err != nil {
			return nil, errors.Wrap(err, "querying schedule timeslots")
		}
		slots := make([]CohortTimeSlot, 0, len(schSlots))
		for _, s := range schSlots {
			ts := s.TimeSlot
			ts.ID = 0
			ts.CreatedAt, ts.UpdatedAt = now, now
			slots = append(slots, CohortTimeSlot{TimeSlot: ts, CohortID: cohort.ID})
		}
		created, err := svc.repo.ReplaceCohortTimeSlots(ctx, cohort.ID, slots)
		if err != nil {
			return nil, errors.Wrapf(err, "replacing timeslots of cohort %d", cohort.ID)
		}
		synced = append(synced, created...)
	}
	return synced, nil
}

// Cohorts

func (svc *service) QueryCohorts(ctx context.Context, filter CohortFilter, ordering []core.DBOrdering, page core.Pagination) ([]Cohort, int, error) {
	return svc.repo.QueryCohorts(ctx, filter, ordering, page)
}

func (svc *service) CreateCohort(ctx context.Context, academyID int64, nc NewCohort) (Cohort, error) {
	if _, err := svc.repo.GetCohortBySlug(ctx, nc.Slug); err == nil {
		return Cohort{}, ErrCohortSlugExists
	} else if !core.IsNotFound(err) {
		return Cohort{}, errors.Wrap(err, "getting cohort by slug")
	}

	cohort := Cohort{
		Slug:            nc.Slug,
		Name:            nc.Name,
		KickoffDate:     nc.KickoffDate,
		Stage:           StageInactive,
		Private:         nc.Private,
		NeverEnds:       nc.NeverEnds,
		RemoteAvailable: true,
		Language:        "en",
		Timezone:        null.NewString(nc.Timezone, nc.Timezone != ""),
		AcademyID:       academyID,
	}
	if nc.EndingDate != nil {
		cohort.EndingDate = null.TimeFrom(*nc.EndingDate)
	}
	if nc.RemoteAvailable != nil {
		cohort.RemoteAvailable = *nc.RemoteAvailable
	}
	if nc.Language != "" {
		cohort.Language = nc.Language
	}
	if nc.Syllabus != 0 {
		if _, err := svc.GetSyllabus(ctx, academyID, nc.Syllabus); err != nil {
			return Cohort{}, err
		}
		cohort.SyllabusID = null.Int64From(nc.Syllabus)
	}
	if nc.Schedule != 0 {
		if err := svc.checkSchedule(ctx, academyID, nc.Schedule, cohort.SyllabusID); err != nil {
			return Cohort{}, err
		}
		cohort.ScheduleID = null.Int64From(nc.Schedule)
	}

	now := svc.now()
	cohort.CreatedAt, cohort.UpdatedAt = now, now
	return svc.repo.CreateCohort(ctx, cohort)
}

func (svc *service) checkSchedule(ctx context.Context, academyID, scheduleID int64, syllabusID null.Int64) error {
	sch, err := svc.repo.GetSchedule(ctx, academyID, scheduleID)
	if err != nil {
		return err
	}
	if syllabusID.Valid && sch.SyllabusID != syllabusID.Int64 {
		return ErrScheduleOfOtherSyllabus
	}
	return nil
}

func (svc *service) GetCohort(ctx context.Context, academyID, id int64) (Cohort, error) {
	return svc.repo.GetCohort(ctx, academyID, id)
}

func (svc *service) UpdateCohort(ctx context.Context, academyID, id int64, uc UpdateCohort) (Cohort, error) {
	cohort, err := svc.repo.GetCohort(ctx, academyID, id)
	if err != nil {
		return Cohort{}, err
	}

	if uc.Name != nil {
		cohort.Name = core.CleanString(*uc.Name)
	}
	if uc.KickoffDate != nil {
		cohort.KickoffDate = *uc.KickoffDate
	}
	if uc.EndingDate != nil {
		cohort.EndingDate = null.TimeFrom(*uc.EndingDate)
	}
	if uc.NeverEnds != nil {
		cohort.NeverEnds = *uc.NeverEnds
		if cohort.NeverEnds && uc.EndingDate == nil {
			cohort.EndingDate = null.Time{}
		}
	}
	if uc.EndingDate != nil || uc.NeverEnds != nil {
		if err = checkCohortEnding(cohort.EndingDate.Valid, cohort.NeverEnds); err != nil {
			return Cohort{}, err
		}
	}
	if uc.CurrentDay != nil {
		cohort.CurrentDay = *uc.CurrentDay
	}
	if uc.CurrentModule != nil {
		cohort.CurrentModule = null.IntFrom(*uc.CurrentModule)
	}
	if uc.Stage != nil {
		cohort.Stage = *uc.Stage
	}
	if uc.Private != nil {
		cohort.Private = *uc.Private
	}
	if uc.RemoteAvailable != nil {
		cohort.RemoteAvailable = *uc.RemoteAvailable
	}
	if uc.Language != nil {
		cohort.Language = core.CleanString(*uc.Language, true /* lower */)
	}
	if uc.Timezone != nil {
		cohort.Timezone = null.NewString(*uc.Timezone, *uc.Timezone != "")
	}
	if uc.Schedule != nil {
		if err = svc.checkSchedule(ctx, academyID, *uc.Schedule, cohort.SyllabusID); err != nil {
			return Cohort{}, err
		}
		cohort.ScheduleID = null.Int64From(*uc.Schedule)
	}

	cohort.UpdatedAt = svc.now()
	return svc.repo.UpdateCohort(ctx, cohort)
}

func (svc *service) DeleteCohort(ctx context.Context, academyID, id int64) error {
	cohort, err := svc.repo.GetCohort(ctx, academyID, id)
	if err != nil {
		return err
	}
	cohort.Stage = StageDeleted
	cohort.UpdatedAt = svc.now()
	if _, err = svc.repo.UpdateCohort(ctx, cohort); err != nil {
		return errors.Wrap(err, "updating cohort")
	}
	return nil
}

// Cohort users

func (svc *service) QueryCohortUsers(ctx context.Context, filter CohortUserFilter, page core.Pagination) ([]CohortUser, int, error) {
	return svc.repo.QueryCohortUsers(ctx, filter, page)
}

func (svc *service) AddCohortUser(ctx context.Context, academyID, cohortID int64, ncu NewCohortUser) (CohortUser, error) {
	if _, err := svc.repo.GetCohort(ctx, academyID, cohortID); err != nil {
		return CohortUser{}, err
	}
	if _, err := svc.usrSvc.GetByID(ctx, ncu.User); err != nil {
		return CohortUser{}, err
	}

	if _, err := svc.repo.GetCohortUser(ctx, cohortID, ncu.User); err == nil {
		return CohortUser{}, ErrUserAlreadyInCohort
	} else if !core.IsNotFound(err) {
		return CohortUser{}, errors.Wrap(err, "getting cohort user")
	}

	if ncu.Role == RoleTeacher {
		_, cnt, err := svc.repo.QueryCohortUsers(ctx, CohortUserFilter{
			Cohorts: []int64{cohortID},
			Roles:   []string{RoleTeacher},
		}, core.Pagination{})
		if err != nil {
			return CohortUser{}, errors.Wrap(err, "querying cohort teachers")
		}
		if cnt > 0 {
			return CohortUser{}, ErrCohortHasTeacher
		}
	}

	now := svc.now()
	return svc.repo.CreateCohortUser(ctx, CohortUser{
		UserID:            ncu.User,
		CohortID:          cohortID,
		Role:              ncu.Role,
		EducationalStatus: null.NewString(ncu.EducationalStatus, ncu.EducationalStatus != ""),
		FinantialStatus:   null.NewString(ncu.FinantialStatus, ncu.FinantialStatus != ""),
		CreatedAt:         now,
		UpdatedAt:         now,
	})
}

func (svc *service) RemoveCohortUser(ctx context.Context, academyID, cohortID, userID int64) error {
	if _, err := svc.repo.GetCohort(ctx, academyID, cohortID); err != nil {
		return err
	}
	return svc.repo.DeleteCohortUser(ctx, cohortID, userID)
}
