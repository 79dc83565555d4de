package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFileEnv overrides the log file location. The value "off" disables
// the file.
const LogFileEnv = "REMIX_LOG_FILE"

// SetupLogger configures the global logger. The console on stderr shows
// warnings, one level more per -v. The log file records debug and up on
// every run so a failed pack can be inspected afterwards.
func SetupLogger(verbosity int) {
	setup(verbosity, os.Stderr)
}

func setup(verbosity int, console io.Writer) {
	consoleLevel := levelFor(verbosity)
	fileLevel := min(consoleLevel, zerolog.DebugLevel)
	zerolog.SetGlobalLevel(fileLevel)

	writers := []io.Writer{
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
				Out:        console,
				TimeFormat: time.Kitchen,
				NoColor:    color.NoColor,
			}},
			Level: consoleLevel,
		},
	}

	logFile := LogFilePath()
	var fileErr error
	if logFile != "" {
		f, err := openLogFile(logFile)
		if err == nil {
			writers = append(writers, &zerolog.FilteredLevelWriter{
				Writer: zerolog.LevelWriterAdapter{Writer: f},
				Level:  fileLevel,
			})
		}
		fileErr = err
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp()
	if verbosity >= 3 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", logFile).Msg("Failed to create log file, logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Int("pid", os.Getpid()).Str("logFile", logFile).Msg("Logger initialized")
}

func levelFor(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// LogDuration logs the duration of an operation
func LogDuration(logger zerolog.Logger, start time.Time, operation string) {
	logger.Debug().
		Str("operation", operation).
		Dur("duration", time.Since(start)).
		Msg("Operation completed")
}

// LogFilePath returns where the log file goes, or "" when file logging is
// off. REMIX_LOG_FILE wins, then $XDG_STATE_HOME/remix/remix.log.
func LogFilePath() string {
	switch p := os.Getenv(LogFileEnv); p {
	case "":
	case "off":
		return ""
	default:
		return p
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = xdg.StateHome
	}
	if stateHome == "" {
		return "remix.log"
	}
	return filepath.Join(stateHome, "remix", "remix.log")
}

func openLogFile(logPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
