package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplication(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TP_PATHS_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("TP_PATHS_UPLOAD_DIR", filepath.Join(dir, "data", "uploads"))
	t.Setenv("TP_PATHS_EXPORT_DIR", filepath.Join(dir, "data", "exports"))
	t.Setenv("TP_PATHS_LOGS_DIR", filepath.Join(dir, "logs"))
	t.Setenv("TP_DATABASE_PATH", filepath.Join(dir, "data", "tradepulse.db"))
	t.Setenv("TP_LOGGING_OUTPUT", "stdout")
	t.Setenv("TP_PIPELINE_MAPPING_FILE", filepath.Join(dir, "missing.yaml"))

	app, err := NewApplication()
	require.NoError(t, err)
	defer app.Store.Close()

	require.NotNil(t, app.Server)
	assert.Equal(t, fmt.Sprintf(":%d", app.Config.Server.Port), app.Server.Addr)
	assert.NotNil(t, app.Router)
	assert.NoError(t, app.Store.Ping(context.Background()))

	// Missing mapping file falls back to the embedded default.
	code, _, ok := app.Mapper.Resolve("United States")
	require.True(t, ok)
	assert.Equal(t, "US", code)
}

func TestApplication_StopDrainsWorkers(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TP_PATHS_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("TP_PATHS_UPLOAD_DIR", filepath.Join(dir, "data", "uploads"))
	t.Setenv("TP_PATHS_EXPORT_DIR", filepath.Join(dir, "data", "exports"))
	t.Setenv("TP_PATHS_LOGS_DIR", filepath.Join(dir, "logs"))
	t.Setenv("TP_DATABASE_PATH", filepath.Join(dir, "data", "tradepulse.db"))
	t.Setenv("TP_LOGGING_OUTPUT", "stdout")
	t.Setenv("TP_SERVER_PORT", "18974")

	app, err := NewApplication()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx, cancel))
	require.NoError(t, app.Stop(context.Background()))
}
