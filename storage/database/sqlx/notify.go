package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/academia/core/notify"
)

type notifyRepository struct {
	db *sqlx.DB
}

var _ notify.Repository = (*notifyRepository)(nil) // interface compliance check

func NewNotifyRepository(db *sqlx.DB) *notifyRepository {
	return &notifyRepository{db: db}
}

func (repo notifyRepository) GetSession(ctx context.Context, academyID, id int64) (notify.MentorshipSession, error) {
	var s notify.MentorshipSession
	q := `SELECT * FROM mentorship_session WHERE id = $1 AND ($2::BIGINT = 0 OR academy_id = $2)`
	if err := repo.db.GetContext(ctx, &s, q, id, academyID); err != nil {
		return notify.MentorshipSession{}, trapNoRows(err, notify.ErrSessionNotFound, "getting mentorship session")
	}
	return s, nil
}

func (repo notifyRepository) UpdateSession(ctx context.Context, s notify.MentorshipSession) (notify.MentorshipSession, error) {
	q := `UPDATE mentorship_session SET
		name = :name, status = :status, online_meeting_url = :online_meeting_url, mentee_id = :mentee_id,
		started_at = :started_at, ended_at = :ended_at, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated notify.MentorshipSession
	if err := namedGet(ctx, repo.db, &updated, q, s); err != nil {
		return notify.MentorshipSession{}, trapNoRows(err, notify.ErrSessionNotFound, "updating mentorship session")
	}
	return updated, nil
}
