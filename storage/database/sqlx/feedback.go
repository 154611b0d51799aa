package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/feedback"
)

type feedbackRepository struct {
	db *sqlx.DB
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *sqlx.DB) *feedbackRepository {
	return &feedbackRepository{db: db}
}

// Answers

func (repo feedbackRepository) QueryAnswers(ctx context.Context, filter feedback.AnswerFilter, p core.Pagination) ([]feedback.Answer, int, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("academy_id = ?", filter.AcademyID)
	}
	if len(filter.Users) > 0 {
		w.add("user_id = ANY(?)", pq.Array(filter.Users))
	}
	if len(filter.Cohorts) > 0 {
		w.add("cohort_id = ANY(?)", pq.Array(filter.Cohorts))
	}
	if len(filter.Surveys) > 0 {
		w.add("survey_id = ANY(?)", pq.Array(filter.Surveys))
	}
	if filter.Score != 0 {
		w.add("score = ?", filter.Score)
	}
	if len(filter.Statuses) > 0 {
		w.add("status = ANY(?)", pq.Array(filter.Statuses))
	}

	answers := make([]feedback.Answer, 0)
	total, err := page(ctx, repo.db, &answers,
		`SELECT COUNT(*) FROM answer`, `SELECT * FROM answer`,
		w, " ORDER BY created_at DESC, id DESC", p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying answers")
	}
	return answers, total, nil
}

func (repo feedbackRepository) GetAnswer(ctx context.Context, id int64) (feedback.Answer, error) {
	var a feedback.Answer
	if err := repo.db.GetContext(ctx, &a, `SELECT * FROM answer WHERE id = $1`, id); err != nil {
		return feedback.Answer{}, trapNoRows(err, feedback.ErrAnswerNotFound, "getting answer")
	}
	return a, nil
}

func (repo feedbackRepository) CreateAnswer(ctx context.Context, a feedback.Answer) (feedback.Answer, error) {
	q := `INSERT INTO answer (
		title, lowest, highest, lang, comment, score, status, opened_at, sent_at,
		user_id, mentor_id, academy_id, cohort_id, event_id, survey_id
	) VALUES (
		:title, :lowest, :highest, :lang, :comment, :score, :status, :opened_at, :sent_at,
		:user_id, :mentor_id, :academy_id, :cohort_id, :event_id, :survey_id
	) RETURNING *`
	var created feedback.Answer
	if err := namedGet(ctx, repo.db, &created, q, a); err != nil {
		return feedback.Answer{}, errors.Wrap(err, "inserting answer")
	}
	return created, nil
}

func (repo feedbackRepository) UpdateAnswer(ctx context.Context, a feedback.Answer) (feedback.Answer, error) {
	q := `UPDATE answer SET
		title = :title, lowest = :lowest, highest = :highest, lang = :lang, comment = :comment, score = :score,
		status = :status, opened_at = :opened_at, sent_at = :sent_at, user_id = :user_id, mentor_id = :mentor_id,
		academy_id = :academy_id, cohort_id = :cohort_id, event_id = :event_id, survey_id = :survey_id,
		updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated feedback.Answer
	if err := namedGet(ctx, repo.db, &updated, q, a); err != nil {
		return feedback.Answer{}, trapNoRows(err, feedback.ErrAnswerNotFound, "updating answer")
	}
	return updated, nil
}

func (repo feedbackRepository) SurveyStats(ctx context.Context, surveyID int64) (feedback.AnswerStats, error) {
	var stats feedback.AnswerStats
	q := `SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = $2) AS answered,
		AVG(score)::DOUBLE PRECISION AS avg_score
	FROM answer WHERE survey_id = $1`
	if err := repo.db.GetContext(ctx, &stats, q, surveyID, feedback.AnswerAnswered); err != nil {
		return feedback.AnswerStats{}, errors.Wrap(err, "computing survey stats")
	}
	return stats, nil
}

// Surveys

func (repo feedbackRepository) QuerySurveys(ctx context.Context, filter feedback.SurveyFilter, p core.Pagination) ([]feedback.Survey, int, error) {
	w := new(where)
	if filter.AcademyID != 0 {
		w.add("c.academy_id = ?", filter.AcademyID)
	}
	if len(filter.Cohorts) > 0 {
		w.add("s.cohort_id = ANY(?)", pq.Array(filter.Cohorts))
	}
	if len(filter.Statuses) > 0 {
		w.add("s.status = ANY(?)", pq.Array(filter.Statuses))
	}

	const from = ` FROM survey s JOIN cohort c ON c.id = s.cohort_id`
	surveys := make([]feedback.Survey, 0)
	total, err := page(ctx, repo.db, &surveys,
		`SELECT COUNT(*)`+from, `SELECT s.*`+from,
		w, " ORDER BY s.created_at DESC, s.id DESC", p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying surveys")
	}
	return surveys, total, nil
}

func (repo feedbackRepository) GetSurvey(ctx context.Context, academyID, id int64) (feedback.Survey, error) {
	var s feedback.Survey
	q := `SELECT s.* FROM survey s JOIN cohort c ON c.id = s.cohort_id
	WHERE s.id = $1 AND ($2::BIGINT = 0 OR c.academy_id = $2)`
	if err := repo.db.GetContext(ctx, &s, q, id, academyID); err != nil {
		return feedback.Survey{}, trapNoRows(err, feedback.ErrSurveyNotFound, "getting survey")
	}
	return s, nil
}

func (repo feedbackRepository) CreateSurvey(ctx context.Context, s feedback.Survey) (feedback.Survey, error) {
	q := `INSERT INTO survey (
		lang, cohort_id, max_assistants_to_ask, max_teachers_to_ask, avg_score, response_rate,
		status, status_json, duration, sent_at
	) VALUES (
		:lang, :cohort_id, :max_assistants_to_ask, :max_teachers_to_ask, :avg_score, :response_rate,
		:status, :status_json, :duration, :sent_at
	) RETURNING *`
	var created feedback.Survey
	if err := namedGet(ctx, repo.db, &created, q, s); err != nil {
		return feedback.Survey{}, errors.Wrap(err, "inserting survey")
	}
	return created, nil
}

func (repo feedbackRepository) UpdateSurvey(ctx context.Context, s feedback.Survey) (feedback.Survey, error) {
	q := `UPDATE survey SET
		lang = :lang, max_assistants_to_ask = :max_assistants_to_ask, max_teachers_to_ask = :max_teachers_to_ask,
		avg_score = :avg_score, response_rate = :response_rate, status = :status, status_json = :status_json,
		duration = :duration, sent_at = :sent_at, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated feedback.Survey
	if err := namedGet(ctx, repo.db, &updated, q, s); err != nil {
		return feedback.Survey{}, trapNoRows(err, feedback.ErrSurveyNotFound, "updating survey")
	}
	return updated, nil
}
