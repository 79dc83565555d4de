package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default keeps debug for the file", 0, zerolog.DebugLevel},
		{"info", 1, zerolog.DebugLevel},
		{"debug", 2, zerolog.DebugLevel},
		{"trace", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 7, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)
			t.Setenv(LogFileEnv, "")

			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
			assert.FileExists(t, filepath.Join(tempDir, "remix", "remix.log"))
		})
	}
}

func TestConsoleAndFileLevels(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	t.Setenv(LogFileEnv, logFile)

	var console bytes.Buffer
	setup(0, &console)
	log.Debug().Msg("walk details")
	log.Warn().Msg("branch missing")

	assert.NotContains(t, console.String(), "walk details")
	assert.Contains(t, console.String(), "branch missing")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"walk details"`)
	assert.Contains(t, string(data), `"message":"branch missing"`)
}

func TestCallerOnlyAtTrace(t *testing.T) {
	t.Setenv(LogFileEnv, "off")

	var console bytes.Buffer
	setup(2, &console)
	log.Debug().Msg("no caller")
	assert.Contains(t, console.String(), "no caller")
	assert.NotContains(t, console.String(), "logging_test.go")

	console.Reset()
	setup(3, &console)
	log.Debug().Msg("with caller")
	assert.Contains(t, console.String(), "logging_test.go")
}

func TestLogFilePath(t *testing.T) {
	t.Setenv(LogFileEnv, "")
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	assert.Equal(t, filepath.Join("/custom/state", "remix", "remix.log"), LogFilePath())

	t.Setenv(LogFileEnv, "/tmp/remix-debug.log")
	assert.Equal(t, "/tmp/remix-debug.log", LogFilePath())

	t.Setenv(LogFileEnv, "off")
	assert.Empty(t, LogFilePath())
}

func TestSetupWithoutFile(t *testing.T) {
	stateHome := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateHome)
	t.Setenv(LogFileEnv, "off")

	var console bytes.Buffer
	setup(1, &console)
	log.Info().Msg("console only")

	assert.Contains(t, console.String(), "console only")
	assert.NoFileExists(t, filepath.Join(stateHome, "remix", "remix.log"))
}
