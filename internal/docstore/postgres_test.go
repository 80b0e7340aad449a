package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/yigit/studentrecords/internal/app/migrations"
	"github.com/yigit/studentrecords/internal/config"
	"github.com/yigit/studentrecords/internal/db"
)

// startPostgres runs a throwaway postgres container with the schema migrated.
// The test is skipped when docker is not reachable.
func startPostgres(t *testing.T) *db.PostgresDB {
	t.Helper()
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Docker daemon not available, skipping postgres tests: %v", r)
		}
	}()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("studentrecords"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("Failed to start postgres container (Docker not available?): %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	database, err := db.NewPostgresDB(ctx, config.DatabaseConfig{
		URL:             dsn,
		MaxOpenConns:    5,
		MaxIdleConns:    1,
		ConnMaxLifetime: "5m",
	})
	if err != nil {
		t.Fatalf("NewPostgresDB: %v", err)
	}
	t.Cleanup(database.Close)

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := migrations.NewMigrator(database.Pool).Migrate(migrateCtx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return database
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping postgres integration test in short mode")
	}

	database := startPostgres(t)

	runContractTests(t, func(t *testing.T) Store {
		if _, err := database.Pool.Exec(context.Background(),
			`TRUNCATE documents, unique_keys RESTART IDENTITY`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		// Close is left to startPostgres; the pool outlives each subtest.
		return &PostgresStore{db: database, constraints: newConstraints(testConstraints)}
	})
}
