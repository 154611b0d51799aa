// Package sqlxrepos implements the core repositories on postgres with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

// where collects "AND"ed conditions written with "?" bindvars.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

// trapNoRows maps the "no rows" error to notFound.
func trapNoRows(err, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// namedGet runs a query with :named bindvars and scans the single resulting row into dst.
func namedGet(ctx context.Context, ext sqlx.ExtContext, dst interface{}, query string, arg interface{}) error {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, ext, dst, rebind(q), args...)
}

// page runs the count query then the select, limited by the pagination window.
// Both queries share the conditions of w.
func page(
	ctx context.Context,
	db sqlx.QueryerContext,
	dst interface{},
	count, query string,
	w *where,
	orderBy string,
	p core.Pagination,
) (int, error) {
	var total int
	if err := sqlx.GetContext(ctx, db, &total, rebind(count+w.String()), w.args...); err != nil {
		return 0, errors.Wrap(err, "counting rows")
	}
	q := query + w.String() + orderBy
	args := append([]interface{}{}, w.args...)
	if limit, offset := p.Window(); limit > 0 {
		q += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}
	if err := sqlx.SelectContext(ctx, db, dst, rebind(q), args...); err != nil {
		return 0, errors.Wrap(err, "selecting rows")
	}
	return total, nil
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	return int(n), err
}

// deleteOne runs a delete statement and returns notFound when it removed nothing.
func deleteOne(ctx context.Context, db sqlx.ExecerContext, q string, notFound error, msg string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, msg)
	}
	n, err := affected(res)
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// inTx runs fn in a transaction, rolled back when fn fails.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
