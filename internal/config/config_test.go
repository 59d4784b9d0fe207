package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_ENV", "GH_HOST", "GITHUB_TOKEN", "GH_TOKEN", "GITHUB_OWNER", "GITHUB_REPO", "GH_REPO",
	"ISSUE_LIMIT", "INCLUDE_PRS", "FETCH_ATTEMPTS", "FETCH_TIMEOUT", "HTTP_ADDR", "REFRESH_CRON",
	"APP_TZ", "LOGS_FOLDER", "ISSUEDASH_CONFIG",
}

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, v) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 100, cfg.IssueLimit)
	assert.Equal(t, 1, cfg.FetchAttempts)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Empty(t, cfg.Repo)
	assert.Empty(t, cfg.Token)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_OWNER", "octo")
	t.Setenv("GITHUB_REPO", "hello")
	t.Setenv("GH_TOKEN", "tok")
	t.Setenv("ISSUE_LIMIT", "250")
	t.Setenv("INCLUDE_PRS", "true")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("REFRESH_CRON", "")
	t.Setenv("APP_TZ", "UTC")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "octo/hello", cfg.Repo)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, 250, cfg.IssueLimit)
	assert.True(t, cfg.IncludePRs)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Empty(t, cfg.RefreshCron)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.True(t, cfg.IsProduction())
}

func TestLoad_RepoSources(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"full name in GITHUB_REPO", map[string]string{"GITHUB_REPO": "a/b"}, "a/b"},
		{"GH_REPO", map[string]string{"GH_REPO": "c/d"}, "c/d"},
		{"owner without repo", map[string]string{"GITHUB_OWNER": "a"}, ""},
		{"GITHUB_* wins over GH_REPO", map[string]string{"GITHUB_OWNER": "a", "GITHUB_REPO": "b", "GH_REPO": "c/d"}, "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Repo)
		})
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("ISSUE_LIMIT", "lots")
	t.Setenv("FETCH_TIMEOUT", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.IssueLimit)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
}

func TestLoad_NonPositiveLimitResets(t *testing.T) {
	clearEnv(t)
	t.Setenv("ISSUE_LIMIT", "0")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.IssueLimit)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_TZ", "Mars/Olympus")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "issuedash.yaml")
	content := `repo: file/repo
issue_limit: 40
fetch_timeout: 10s
refresh_cron: "@hourly"
timezone: UTC
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file/repo", cfg.Repo)
	assert.Equal(t, 40, cfg.IssueLimit)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "@hourly", cfg.RefreshCron)
	assert.Equal(t, "UTC", cfg.Location.String())
	// untouched keys keep their defaults
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "issuedash.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repo: file/repo\n"), 0o644))
	t.Setenv("ISSUEDASH_CONFIG", path)
	t.Setenv("GH_REPO", "env/repo")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env/repo", cfg.Repo)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
