package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyOptions(t *testing.T, opts PostgresOptions) *pgxpool.Config {
	t.Helper()
	cfg, err := pgxpool.ParseConfig(connString(&PoolConfig{
		Host: "localhost", Port: 5432, User: "postgres", Password: "postgres",
		Database: "profiles", PoolMaxConns: 5,
	}))
	require.NoError(t, err)
	for _, opt := range opts.WriterOptions {
		opt(cfg)
	}
	return cfg
}

func Test_WithPgBouncerSimpleProtocol(t *testing.T) {
	cfg := applyOptions(t, PostgresOptions{
		WriterOptions: []PgxConfigOption{WithPgBouncerSimpleProtocol()},
	})
	assert.Equal(t, pgx.QueryExecModeSimpleProtocol, cfg.ConnConfig.DefaultQueryExecMode)
}

func Test_WithApplicationName(t *testing.T) {
	cfg := applyOptions(t, PostgresOptions{
		WriterOptions: []PgxConfigOption{WithApplicationName("profile-api")},
	})
	assert.Equal(t, "profile-api", cfg.ConnConfig.RuntimeParams["application_name"])
}
