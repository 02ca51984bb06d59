package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NOTES_SESSION_SECRET", "s3cret")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, ":9090", cfg.Server.HealthAddr)
	require.Equal(t, "release", cfg.Server.Mode)
	require.Equal(t, 24*time.Hour, cfg.Session.TTL)
	require.Equal(t, 10*time.Minute, cfg.Session.SweepInterval)
	require.Equal(t, "notes_session", cfg.Session.CookieName)
	require.Equal(t, 10, cfg.Auth.BcryptCost)
	require.False(t, cfg.Session.Secure)
	require.Equal(t, "s3cret", cfg.Session.Secret)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("NOTES_SESSION_SECRET", "")

	_, err := LoadFrom(t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "session.secret")
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
server:
  addr: ":7000"
  mode: debug
session:
  ttl: 2h
  secret: from-file
`), 0o600))
	t.Setenv("NOTES_SERVER_ADDR", ":7100")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	require.Equal(t, ":7100", cfg.Server.Addr)
	require.Equal(t, "debug", cfg.Server.Mode)
	require.Equal(t, 2*time.Hour, cfg.Session.TTL)
	require.Equal(t, "from-file", cfg.Session.Secret)
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(`
# comment
NOTES_SESSION_SECRET="dotenv-secret"
export NOTES_SESSION_COOKIENAME=sid
NOTES_DATABASE_DSN=postgres://from-real-env
NOTES_SERVER_ADDR=":7200" # inline comment
`), 0o600))
	t.Setenv("NOTES_DATABASE_DSN", "postgres://real")
	t.Cleanup(func() {
		_ = os.Unsetenv("NOTES_SESSION_SECRET")
		_ = os.Unsetenv("NOTES_SESSION_COOKIENAME")
		_ = os.Unsetenv("NOTES_SERVER_ADDR")
	})

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	require.Equal(t, "dotenv-secret", cfg.Session.Secret)
	require.Equal(t, "sid", cfg.Session.CookieName)
	require.Equal(t, ":7200", cfg.Server.Addr)
	require.Equal(t, "postgres://real", cfg.Database.DSN)
}

func TestValidate_Mode(t *testing.T) {
	t.Setenv("NOTES_SESSION_SECRET", "x")
	t.Setenv("NOTES_SERVER_MODE", "turbo")

	_, err := LoadFrom(t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "server.mode")
}
