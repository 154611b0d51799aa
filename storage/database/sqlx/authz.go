package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/authz"
)

var errRoleNotFound = core.NewNotFoundError("role-not-found")

type authzRepository struct {
	db *sqlx.DB
}

var _ authz.Repository = (*authzRepository)(nil) // interface compliance check

func NewAuthzRepository(db *sqlx.DB) *authzRepository {
	return &authzRepository{db: db}
}

func (repo authzRepository) UpsertCapability(ctx context.Context, c authz.Capability) error {
	q := `INSERT INTO capability (slug, description) VALUES (:slug, :description)
	ON CONFLICT (slug) DO UPDATE SET description = EXCLUDED.description`
	_, err := sqlx.NamedExecContext(ctx, repo.db, q, c)
	return errors.Wrapf(err, "upserting capability %s", c.Slug)
}

func (repo authzRepository) UpsertRole(ctx context.Context, r authz.Role) error {
	return inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := `INSERT INTO role (slug, name) VALUES ($1, $2) ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name`
		if _, err := tx.ExecContext(ctx, q, r.Slug, r.Name); err != nil {
			return errors.Wrapf(err, "upserting role %s", r.Slug)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_capability WHERE role_slug = $1`, r.Slug); err != nil {
			return errors.Wrapf(err, "clearing capabilities of role %s", r.Slug)
		}
		for _, c := range r.Capabilities {
			q = `INSERT INTO role_capability (role_slug, capability_slug) VALUES ($1, $2)`
			if _, err := tx.ExecContext(ctx, q, r.Slug, c); err != nil {
				return errors.Wrapf(err, "adding capability %s to role %s", c, r.Slug)
			}
		}
		return nil
	})
}

type roleRow struct {
	Slug         string         `db:"slug"`
	Name         string         `db:"name"`
	Capabilities pq.StringArray `db:"capabilities"`
}

const roleSelect = `SELECT r.slug, r.name,
	COALESCE(ARRAY_AGG(rc.capability_slug ORDER BY rc.capability_slug) FILTER (WHERE rc.capability_slug IS NOT NULL), '{}') AS capabilities
FROM role r LEFT JOIN role_capability rc ON rc.role_slug = r.slug`

func (row roleRow) role() authz.Role {
	return authz.Role{Slug: row.Slug, Name: row.Name, Capabilities: []string(row.Capabilities)}
}

func (repo authzRepository) QueryRoles(ctx context.Context) ([]authz.Role, error) {
	var rows []roleRow
	if err := repo.db.SelectContext(ctx, &rows, roleSelect+` GROUP BY r.slug ORDER BY r.slug`); err != nil {
		return nil, errors.Wrap(err, "querying roles")
	}
	roles := make([]authz.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.role())
	}
	return roles, nil
}

func (repo authzRepository) GetRole(ctx context.Context, slug string) (authz.Role, error) {
	var row roleRow
	if err := repo.db.GetContext(ctx, &row, roleSelect+` WHERE r.slug = $1 GROUP BY r.slug`, slug); err != nil {
		return authz.Role{}, trapNoRows(err, errRoleNotFound, "getting role")
	}
	return row.role(), nil
}

func (repo authzRepository) GetAcademyStatus(ctx context.Context, academyID int64) (authz.AcademyStatus, error) {
	var status authz.AcademyStatus
	if err := repo.db.GetContext(ctx, &status, `SELECT id, status FROM academy WHERE id = $1`, academyID); err != nil {
		return authz.AcademyStatus{}, trapNoRows(err, authz.ErrAcademyNotFound, "getting academy status")
	}
	return status, nil
}

func (repo authzRepository) HasCapability(ctx context.Context, userID, academyID int64, capability string) (bool, error) {
	q := `SELECT EXISTS (
		SELECT 1 FROM profile_academy pa
		JOIN role_capability rc ON rc.role_slug = pa.role_slug
		WHERE pa.user_id = $1 AND pa.academy_id = $2 AND rc.capability_slug = $3
	)`
	var ok bool
	if err := repo.db.GetContext(ctx, &ok, q, userID, academyID, capability); err != nil {
		return false, errors.Wrap(err, "checking capability")
	}
	return ok, nil
}

func (repo authzRepository) QueryMembers(
	ctx context.Context,
	academyID int64,
	filter authz.MemberFilter,
	p core.Pagination,
) ([]authz.ProfileAcademy, int, error) {
	w := new(where)
	w.add("academy_id = ?", academyID)
	if len(filter.Roles) > 0 {
		w.add("role_slug = ANY(?)", pq.Array(filter.Roles))
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}

	members := make([]authz.ProfileAcademy, 0)
	total, err := page(ctx, repo.db, &members,
		`SELECT COUNT(*) FROM profile_academy`, `SELECT * FROM profile_academy`,
		w, " ORDER BY created_at DESC, id DESC", p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying members")
	}
	return members, total, nil
}

func (repo authzRepository) GetMember(ctx context.Context, academyID, userID int64) (authz.ProfileAcademy, error) {
	var pa authz.ProfileAcademy
	q := `SELECT * FROM profile_academy WHERE academy_id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &pa, q, academyID, userID); err != nil {
		return authz.ProfileAcademy{}, trapNoRows(err, authz.ErrMemberNotFound, "getting member")
	}
	return pa, nil
}

func (repo authzRepository) CreateMember(ctx context.Context, pa authz.ProfileAcademy) (authz.ProfileAcademy, error) {
	q := `INSERT INTO profile_academy (user_id, academy_id, role_slug, email, first_name, last_name, status)
	VALUES (:user_id, :academy_id, :role_slug, :email, :first_name, :last_name, :status)
	RETURNING *`
	var created authz.ProfileAcademy
	if err := namedGet(ctx, repo.db, &created, q, pa); err != nil {
		return authz.ProfileAcademy{}, errors.Wrap(err, "inserting member")
	}
	return created, nil
}

func (repo authzRepository) UpdateMember(ctx context.Context, pa authz.ProfileAcademy) (authz.ProfileAcademy, error) {
	q := `UPDATE profile_academy SET
		role_slug = :role_slug, email = :email, first_name = :first_name, last_name = :last_name,
		status = :status, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated authz.ProfileAcademy
	if err := namedGet(ctx, repo.db, &updated, q, pa); err != nil {
		return authz.ProfileAcademy{}, trapNoRows(err, authz.ErrMemberNotFound, "updating member")
	}
	return updated, nil
}

func (repo authzRepository) DeleteMember(ctx context.Context, academyID, userID int64) error {
	q := `DELETE FROM profile_academy WHERE academy_id = $1 AND user_id = $2`
	return deleteOne(ctx, repo.db, q, authz.ErrMemberNotFound, "deleting member", academyID, userID)
}

func (repo authzRepository) QueryUserProfiles(ctx context.Context, userID int64) ([]authz.ProfileAcademy, error) {
	profiles := make([]authz.ProfileAcademy, 0)
	q := `SELECT * FROM profile_academy WHERE user_id = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &profiles, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying user profiles")
	}
	return profiles, nil
}

func (repo authzRepository) QueryUsersWithCapability(ctx context.Context, academyID int64, capability string) ([]int64, error) {
	q := `SELECT DISTINCT pa.user_id FROM profile_academy pa
	JOIN role_capability rc ON rc.role_slug = pa.role_slug
	WHERE pa.academy_id = $1 AND rc.capability_slug = $2 AND pa.user_id IS NOT NULL
	ORDER BY pa.user_id`
	var ids []int64
	if err := repo.db.SelectContext(ctx, &ids, q, academyID, capability); err != nil {
		return nil, errors.Wrap(err, "querying users with capability")
	}
	return ids, nil
}
