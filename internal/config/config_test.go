package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, ":50051", cfg.Server.GRPCAddr)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseJournal(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  grpc_addr: ":9000"
  shutdown_timeout: 3s
storage:
  backend: journal
`))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.GRPCAddr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "wal.log", cfg.Storage.WALPath)
}

func TestParseMySQL(t *testing.T) {
	cfg, err := Parse([]byte(`
storage:
  backend: mysql
mysql:
  host: db
  user: root
  dbname: accounting
  conn_max_lifetime: 5m
`))
	require.NoError(t, err)
	assert.Equal(t, 3306, cfg.MySQL.Port)
	assert.Equal(t, 5*time.Minute, cfg.MySQL.ConnMaxLifetime)
	assert.Equal(t, 100, cfg.MySQL.MaxOpenConns)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("storage:\n  backend: redis\n"))
	assert.ErrorContains(t, err, `unknown storage backend "redis"`)

	_, err = Parse([]byte("storage:\n  backend: mysql\n"))
	assert.ErrorContains(t, err, "mysql.host is required")
	assert.ErrorContains(t, err, "mysql.dbname is required")

	_, err = Parse([]byte("server: [1, 2]"))
	assert.Error(t, err)
}

func TestLoadAndPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: memory\n"), 0o644))

	t.Setenv(PathEnv, path)
	assert.Equal(t, path, Path())

	cfg, err := Load(Path())
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv(PathEnv, "")
	assert.Equal(t, DefaultPath, Path())
}
