package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fetchConfig struct {
	BaseUrl      string `json:"base_url"`
	RequestDelay int    `json:"request_delay"`
}

func TestReadConfigMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "config.json5"),
		[]byte(`{base_url: "https://example.com", request_delay: 1}`),
		0600,
	)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "config.local.json5"),
		[]byte(`{request_delay: 0}`),
		0600,
	)
	require.NoError(t, err)

	cfg, err := ReadConfig[fetchConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://example.com", cfg.BaseUrl)
	// mergo does not overwrite with zero values, so the base delay wins
	require.Equal(t, 1, cfg.RequestDelay)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[fetchConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
