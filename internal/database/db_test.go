package database

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	dsn := DSN("planner", "s3cr:t", "db.local", "3306", "visits")
	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "planner", cfg.User)
	assert.Equal(t, "s3cr:t", cfg.Passwd)
	assert.Equal(t, "db.local:3306", cfg.Addr)
	assert.Equal(t, "visits", cfg.DBName)
	assert.True(t, cfg.ParseTime)
}

func TestDSNWithoutPassword(t *testing.T) {
	cfg, err := mysql.ParseDSN(DSN("root", "", "localhost", "3306", "visits"))
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.User)
	assert.Empty(t, cfg.Passwd)
}
