package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Username string            `json:"username"`
	LoginUrl string            `json:"login_url"`
	Headers  map[string]string `json:"headers"`
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "ticketleap.json5"), []byte(`{
		// shared defaults
		username: "box-office",
		login_url: "https://www.ticketleap.com",
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "ticketleap.local.json5"), []byte(`{
		login_url: "http://localhost:8080",
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "ticketleap.json5"))
	require.NoError(t, err)
	require.Equal(t, "box-office", cfg.Username)
	require.Equal(t, "http://localhost:8080", cfg.LoginUrl)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "ticketleap.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(path, []byte("TICKETLEAP_CONFIGUTIL_TEST=from-file\n"), 0600)
	require.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("TICKETLEAP_CONFIGUTIL_TEST") })

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "missing.env")))

	value := "from-config"
	OverrideFromEnv(&value, "TICKETLEAP_CONFIGUTIL_TEST")
	require.Equal(t, "from-file", value)

	OverrideFromEnv(&value, "TICKETLEAP_CONFIGUTIL_UNSET")
	require.Equal(t, "from-file", value)
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "ticketleap.local.json5"), []byte(`{
		username: "local",
		headers: {"x-env": "dev"},
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "ticketleap.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Username)
	require.Equal(t, map[string]string{"x-env": "dev"}, cfg.Headers)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "ticketleap.json5"), []byte(`{username: `), 0600)
	require.NoError(t, err)

	_, err = ReadConfig[testConfig](filepath.Join(dir, "ticketleap.json5"))
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0700))
	err := os.WriteFile(filepath.Join(root, "ticketleap.json5"), []byte(`{username: "root"}`), 0600)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := ReadRecursively[testConfig]("ticketleap.json5")
	require.NoError(t, err)
	require.Equal(t, "root", cfg.Username)

	_, err = ReadRecursively[testConfig]("missing-ticketleap.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}
