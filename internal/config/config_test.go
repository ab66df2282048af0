package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/journal-session/internal/config"
	"github.com/stretchr/testify/require"
)

func TestClientDefaults(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("TOKEN_MAX_AGE", "")
	t.Setenv("TOKEN_STORE", "")

	c := config.New()
	require.Equal(t, 10*time.Second, c.GetRequestTimeout())
	require.Equal(t, 30*24*time.Hour, c.GetMaxTokenAge())
	require.Equal(t, config.TokenStoreBolt, c.GetTokenStoreBackend())
}

func TestDurationOverrides(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "3s")
		require.Equal(t, 3*time.Second, config.New().GetRequestTimeout())
	})

	t.Run("malformed falls back", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "soon")
		require.Equal(t, 10*time.Second, config.New().GetRequestTimeout())
	})
}

func TestGetPort(t *testing.T) {
	t.Setenv("PORT", "9090")
	require.Equal(t, ":9090", config.New().GetPort())

	t.Setenv("PORT", ":7070")
	require.Equal(t, ":7070", config.New().GetPort())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	origins := config.New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example"))
	require.True(t, origins.IsAllowedOrigin("https://b.example"))
	require.False(t, origins.IsAllowedOrigin("https://c.example"))
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		require.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
	})

	t.Run("loads values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("JOURNAL_TEST_DOTENV=loaded\n"), 0600))
		t.Cleanup(func() { os.Unsetenv("JOURNAL_TEST_DOTENV") })

		require.NoError(t, config.LoadDotEnv(path))
		require.Equal(t, "loaded", os.Getenv("JOURNAL_TEST_DOTENV"))
	})
}
