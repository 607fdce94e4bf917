package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data/tradepulse.db", cfg.Database.Path)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "default config valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = -time.Second },
			wantErr: "read timeout must be positive",
		},
		{
			name:    "no allowed origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Pipeline.Workers = 0 },
			wantErr: "workers must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeConfigs(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 9090
	fileCfg.Database.Path = "custom/db.sqlite"
	fileCfg.Pipeline.Workers = 8

	var envCfg Config // nothing set via env
	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, 9090, merged.Server.Port)
	assert.Equal(t, "custom/db.sqlite", merged.Database.Path)
	assert.Equal(t, 8, merged.Pipeline.Workers)

	envCfg.Server.Port = 7070
	merged = mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 7070, merged.Server.Port, "env should take precedence")
}

func TestEnsureDirectories(t *testing.T) {
	tempDir := t.TempDir()

	cfg := Default()
	cfg.Paths.DataDir = filepath.Join(tempDir, "data")
	cfg.Paths.UploadDir = filepath.Join(tempDir, "data", "uploads")
	cfg.Paths.ExportDir = filepath.Join(tempDir, "data", "exports")
	cfg.Paths.LogsDir = filepath.Join(tempDir, "logs")
	cfg.Database.Path = filepath.Join(tempDir, "data", "tradepulse.db")

	require.NoError(t, cfg.EnsureDirectories())

	for _, dir := range []string{cfg.Paths.UploadDir, cfg.Paths.ExportDir, cfg.Paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestUploadPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("data", "uploads", "report.xlsx"), cfg.UploadPath("report.xlsx"))
	assert.Equal(t, filepath.Join("data", "exports", "out.csv"), cfg.ExportPath("out.csv"))
}

func TestExtensionAllowed(t *testing.T) {
	assert.True(t, ExtensionAllowed(".xlsx"))
	assert.True(t, ExtensionAllowed(".XLSX"))
	assert.True(t, ExtensionAllowed(".csv"))
	assert.False(t, ExtensionAllowed(".xls"))
	assert.False(t, ExtensionAllowed(""))
}
