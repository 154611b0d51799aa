package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

var userOrdering = map[string]string{
	"id":         "id",
	"email":      "email",
	"username":   "username",
	"first_name": "first_name",
	"last_name":  "last_name",
	"created_at": "created_at",
	"last_login": "last_login",
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedIDs ...int64) error {
	if excludedIDs == nil {
		excludedIDs = []int64{}
	}
	var taken struct {
		Username bool `db:"username"`
		Email    bool `db:"email"`
	}
	q := `SELECT
		COALESCE(BOOL_OR($1 <> '' AND username = $1), FALSE) AS username,
		COALESCE(BOOL_OR(email = $2), FALSE) AS email
	FROM "user" WHERE NOT (id = ANY($3))`
	if err := repo.db.GetContext(ctx, &taken, q, username, email, pq.Array(excludedIDs)); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if taken.Username {
		return user.ErrUsernameExists
	}
	if taken.Email {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO "user" (email, username, first_name, last_name, password_hash, is_active, is_staff, last_login)
	VALUES (:email, :username, :first_name, :last_name, :password_hash, :is_active, :is_staff, :last_login)
	RETURNING *`
	var created user.User
	if err := namedGet(ctx, repo.db, &created, q, usr); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return created, nil
}

func (repo userRepository) QueryUsers(
	ctx context.Context,
	filter *user.QueryFilter,
	ordering []core.DBOrdering,
	p core.Pagination,
) ([]user.User, int, error) {
	w := new(where)
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(first_name ILIKE ? OR last_name ILIKE ? OR username ILIKE ? OR email ILIKE ?)", val, val, val, val)
		}
		if filter.IsActive != nil {
			w.add("is_active = ?", *filter.IsActive)
		}
		if filter.IsStaff != nil {
			w.add("is_staff = ?", *filter.IsStaff)
		}
		if !filter.CreatedFrom.IsZero() {
			w.add("created_at >= ?", filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			w.add("created_at <= ?", filter.CreatedTo.UTC())
		}
	}

	users := make([]user.User, 0)
	total, err := page(ctx, repo.db, &users,
		`SELECT COUNT(*) FROM "user"`, `SELECT * FROM "user"`,
		w, core.OrderBy(ordering, userOrdering, "id"), p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying users")
	}
	return users, total, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		q   string
		arg []interface{}
	)
	switch {
	case filter.ID != 0:
		q, arg = `SELECT * FROM "user" WHERE id = $1`, []interface{}{filter.ID}
	case filter.Username != "":
		q, arg = `SELECT * FROM "user" WHERE username = $1`, []interface{}{filter.Username}
	case filter.Email != "":
		q, arg = `SELECT * FROM "user" WHERE email = $1`, []interface{}{filter.Email}
	case len(filter.UsernameOrEmail) > 0:
		vals := make([]string, 0, len(filter.UsernameOrEmail))
		for _, v := range filter.UsernameOrEmail {
			if v != "" {
				vals = append(vals, v)
			}
		}
		q = `SELECT * FROM "user" WHERE username = ANY($1) OR email = ANY($1) ORDER BY id LIMIT 1`
		arg = []interface{}{pq.Array(vals)}
	default:
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, q, arg...); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "getting user")
	}
	return usr, nil
}

func (repo userRepository) GetUsersByID(ctx context.Context, ids ...int64) ([]user.User, error) {
	users := make([]user.User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	if err := repo.db.SelectContext(ctx, &users, `SELECT * FROM "user" WHERE id = ANY($1) ORDER BY id`, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "getting users by ID")
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE "user" SET
		email = :email, username = :username, first_name = :first_name, last_name = :last_name,
		password_hash = :password_hash, is_active = :is_active, is_staff = :is_staff,
		last_login = :last_login, updated_at = NOW()
	WHERE id = :id RETURNING *`
	var updated user.User
	if err := namedGet(ctx, repo.db, &updated, q, usr); err != nil {
		return user.User{}, trapNoRows(err, user.ErrNotFound, "updating user")
	}
	return updated, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var (
		res sql.Result
		err error
	)
	if res, err = repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return affected(res)
}
