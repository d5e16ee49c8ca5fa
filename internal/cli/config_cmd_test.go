package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/gpumon/internal/config"
	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit_NonInteractive(t *testing.T) {
	home := isolateCLI(t)

	var buf bytes.Buffer
	err := ConfigInit(&buf, ConfigInitOptions{
		APIURL:         "http://monitor:9000/api",
		NonInteractive: true,
	})
	require.NoError(t, err)

	path := filepath.Join(home, config.GlobalConfigDir, config.GlobalConfigFile)
	assert.Contains(t, buf.String(), path)

	cfg, loaded, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, path, loaded)
	assert.Equal(t, "http://monitor:9000/api", cfg.APIURL)
	assert.Equal(t, config.DefaultConfig().PageSize, cfg.PageSize)
}

func TestConfigInit_ExistingFile(t *testing.T) {
	isolateCLI(t)
	path := filepath.Join(t.TempDir(), "gpumon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: /old\n"), 0o644))

	err := ConfigInit(&bytes.Buffer{}, ConfigInitOptions{Path: path, NonInteractive: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "--force")

	err = ConfigInit(&bytes.Buffer{}, ConfigInitOptions{Path: path, APIURL: "/new", Overwrite: true, NonInteractive: true})
	require.NoError(t, err)

	cfg, _, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/new", cfg.APIURL)
}

func TestConfigInit_InvalidValues(t *testing.T) {
	isolateCLI(t)
	path := filepath.Join(t.TempDir(), "gpumon.yaml")

	err := ConfigInit(&bytes.Buffer{}, ConfigInitOptions{
		Path:           path,
		Origin:         "monitor.internal",
		NonInteractive: true,
	})
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestConfigShow(t *testing.T) {
	isolateCLI(t)

	var buf bytes.Buffer
	require.NoError(t, ConfigShow(&buf))
	assert.Contains(t, buf.String(), "no config file found")
	assert.Contains(t, buf.String(), "api_url: /api")

	path := filepath.Join(t.TempDir(), "gpumon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 25\n"), 0o644))
	configPath = path

	buf.Reset()
	require.NoError(t, ConfigShow(&buf))
	assert.Contains(t, buf.String(), "loaded from "+path)
	assert.Contains(t, buf.String(), "page_size: 25")
	assert.Contains(t, buf.String(), "timeout: 30s")
}
