package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateURLRewritesScheme(t *testing.T) {
	require.Equal(t, "pgx5://u:p@localhost:5432/app?sslmode=disable", migrateURL("postgres://u:p@localhost:5432/app?sslmode=disable"))
	require.Equal(t, "pgx5://localhost/app", migrateURL("postgresql://localhost/app"))
	require.Equal(t, "pgx5://localhost/app", migrateURL("pgx5://localhost/app"))
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}

func TestMigrateDownRejectsNonPositiveSteps(t *testing.T) {
	require.ErrorContains(t, MigrateDown("postgres://localhost/app", 0), "steps must be positive")
}
