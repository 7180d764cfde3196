package testhelpers

import (
	"context"
	"testing"

	"github.com/survey-reachability/internal/domain/repository"
	"github.com/survey-reachability/internal/repository/postgres"
)

// NewDBForTest creates a migrated postgres.DB over the test connection
func NewDBForTest(t *testing.T, tdb *TestDB) *postgres.DB {
	t.Helper()

	db := postgres.NewDBForTest(tdb.DB, tdb.Logger)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

// NewSubmissionRepositoryForTest creates a submission archive over the test database
func NewSubmissionRepositoryForTest(t *testing.T, tdb *TestDB) repository.SubmissionArchive {
	return postgres.NewSubmissionRepository(NewDBForTest(t, tdb))
}
