// Package dbtest prepares a migrated postgres database for repository tests.
package dbtest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
	"github.com/trezcool/academia/storage/database"
)

// EnvVar enables the database tests when set to a non-empty value.
const EnvVar = "ACADEMIA_DB_TESTS"

var tables = []string{
	"mentorship_session", "downloadable", "form_entry", "job", "csv_download", "endpoint", "application",
	"answer", "survey", "event", "event_type", "venue", "organizer", "organization",
	"cohort_timeslot", "cohort_user", "cohort", "syllabus_schedule_timeslot", "syllabus_schedule", "syllabus",
	"profile_academy", "role_capability", "role", "capability", "academy", `"user"`,
}

// PrepareDB opens the <dbName>_test database, migrates it and empties every table.
// The test is skipped unless EnvVar is set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv(EnvVar) == "" {
		t.Skipf("%s not set", EnvVar)
	}

	conf := core.NewConfig()
	conf.Database.Name += "_test"
	if err := database.CreateIfNotExist(conf); err != nil {
		t.Fatalf("CreateIfNotExist() failed: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, "up"); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if _, err = db.Exec("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("truncating tables failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	firstName, uname, email, pwd string,
	isActive, isStaff bool,
) user.User {
	t.Helper()
	usr := user.User{
		FirstName: firstName,
		Email:     email,
		IsActive:  isActive,
		IsStaff:   isStaff,
	}
	if uname != "" {
		usr.Username.SetValid(uname)
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// Insert runs an INSERT ... RETURNING id statement and returns the new id.
// It seeds rows no repository creates.
func Insert(t *testing.T, db *sqlx.DB, query string, args ...interface{}) int64 {
	t.Helper()
	var id int64
	if err := db.Get(&id, query+" RETURNING id", args...); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	return id
}

func CreateAcademy(t *testing.T, db *sqlx.DB, slug, status string) int64 {
	t.Helper()
	return Insert(t, db, `INSERT INTO academy (slug, name, status) VALUES ($1, $2, $3)`, slug, strings.Title(slug), status)
}
