package app

import (
	"runtime"
	"testing"

	"github.com/specialistvlad/cbuild/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := NewConfig(Config{Action: config.ActionBuild, InputPath: "build.hcl"})
		require.NoError(t, err)
		assert.Equal(t, runtime.NumCPU(), cfg.Jobs)
		assert.Equal(t, DefaultCacheDir, cfg.CacheDir)
		assert.Equal(t, "compile_commands.json", cfg.DatabasePath)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("verbose raises the log level", func(t *testing.T) {
		cfg, err := NewConfig(Config{Action: config.ActionRun, InputPath: "build.hcl", Verbose: true, LogLevel: "warn"})
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)

		cfg, err = NewConfig(Config{Action: config.ActionRun, InputPath: "build.hcl", Verbose: true, LogLevel: "trace"})
		require.NoError(t, err)
		assert.Equal(t, "trace", cfg.LogLevel)
	})

	t.Run("tool chain override", func(t *testing.T) {
		cfg, err := NewConfig(Config{Action: config.ActionBuild, InputPath: "build.hcl", ToolChain: "zig"})
		require.NoError(t, err)
		assert.Equal(t, "zig", cfg.defaultToolChain().String())
	})

	errorCases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"missing input", Config{Action: config.ActionBuild}, "InputPath"},
		{"unknown action", Config{Action: "install", InputPath: "b.hcl"}, "unknown action"},
		{"negative jobs", Config{Action: config.ActionBuild, InputPath: "b.hcl", Jobs: -2}, "jobs must not be negative"},
		{"bad format", Config{Action: config.ActionBuild, InputPath: "b.hcl", LogFormat: "xml"}, "invalid log format"},
		{"bad level", Config{Action: config.ActionBuild, InputPath: "b.hcl", LogLevel: "loud"}, "invalid log level"},
		{"bad tool chain", Config{Action: config.ActionBuild, InputPath: "b.hcl", ToolChain: "tcc"}, "unknown tool chain"},
		{"database with targets", Config{Action: config.ActionGenDatabase, InputPath: "b.hcl", Targets: []string{"x"}}, "does not take targets"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestMessageLevel(t *testing.T) {
	assert.Equal(t, "DEBUG-4", messageLevel(0).String())
	assert.Equal(t, "DEBUG", messageLevel(1).String())
	assert.Equal(t, "INFO", messageLevel(2).String())
	assert.Equal(t, "WARN", messageLevel(3).String())
	assert.Equal(t, "ERROR", messageLevel(9).String())
}
