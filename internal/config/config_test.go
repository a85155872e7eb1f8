package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ARES_DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ares")
	for _, key := range []string{
		"API_PORT", "PORT", "ROLE_VOCABULARY", "ROLE_VOCABULARY_FILE",
		"FETCH_DATA_SINCE", "STALE_TEAM_AUTHORITY",
		"LIQUIPEDIA_REQUESTS_PER_MINUTE", "LIQUIPEDIA_PAGE_LIMIT", "LIQUIPEDIA_MAX_RETRIES",
	} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.APIRequestsPerMin)
	assert.Equal(t, 1000, cfg.APIPageLimit)
	assert.Equal(t, 3, cfg.APIMaxRetries)
	assert.Equal(t, "2023-01-01", cfg.FetchSince)
	assert.Equal(t, AuthorityRoster, cfg.StaleAuthority)
	assert.Equal(t, DefaultRoleVocabulary, cfg.RoleVocabulary)
	assert.Equal(t, 8000, cfg.APIPort)
}

func TestLoadRoleVocabularyFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ares")
	t.Setenv("ROLE_VOCABULARY_FILE", "")
	t.Setenv("ROLE_VOCABULARY", "igl, awper , rifler")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"igl", "awper", "rifler"}, cfg.RoleVocabulary)
}

func TestLoadRoleVocabularyFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  - igl\n  - duelist\n"), 0o644))

	t.Setenv("DATABASE_URL", "postgres://localhost/ares")
	t.Setenv("ROLE_VOCABULARY_FILE", path)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"igl", "duelist"}, cfg.RoleVocabulary)
}

func TestLoadRoleVocabularyFileEmptyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles: []\n"), 0o644))

	t.Setenv("DATABASE_URL", "postgres://localhost/ares")
	t.Setenv("ROLE_VOCABULARY_FILE", path)
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadAuthority(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ares")
	t.Setenv("STALE_TEAM_AUTHORITY", "vibes")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("STALE_TEAM_AUTHORITY", "source")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, AuthoritySource, cfg.StaleAuthority)
}

func TestUserAgentIncludesContact(t *testing.T) {
	cfg := &Config{ContactEmail: "ops@example.com"}
	assert.Contains(t, cfg.UserAgent(), "ops@example.com")
	assert.Contains(t, cfg.UserAgent(), "GoPgxAPIV3")
}

func TestGameRegistryWikis(t *testing.T) {
	require.Contains(t, GameRegistry, "cs2")
	require.Contains(t, GameRegistry, "valorant")
	assert.Equal(t, "counterstrike", GameRegistry["cs2"].Wiki)
	assert.False(t, GameRegistry["cs2"].EpochStart.IsZero())
}
