// Package logging builds the zap logger onair writes to its log file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/five82/onair/internal/config"
)

// Setup builds a zap.Logger from the log settings, sets it as the global
// logger and redirects the stdlib log package into it. The terminal belongs
// to the UI, so output always goes to the rotating log file. The returned
// func flushes the logger, undoes the redirection and closes the file.
func Setup(c config.LogConfig) (*zap.Logger, func(), error) {
	path := strings.TrimSpace(c.File)
	if path == "" {
		return nil, nil, fmt.Errorf("log file is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    max(c.MaxSizeMB, 1),
		MaxBackups: max(c.MaxBackups, 0),
		MaxAge:     max(c.MaxAgeDays, 0),
		Compress:   c.Compress,
	}
	ws := zapcore.AddSync(rotator)

	logger := zap.New(
		zapcore.NewCore(newEncoder(c.Format), ws, ParseLevel(c.Level)),
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)

	restoreGlobals := zap.ReplaceGlobals(logger)
	restoreStdLog, err := zap.RedirectStdLogAt(logger, zap.InfoLevel)
	if err != nil {
		restoreGlobals()
		return nil, nil, fmt.Errorf("redirect std log: %w", err)
	}

	cleanup := func() {
		_ = logger.Sync()
		restoreStdLog()
		restoreGlobals()
		_ = rotator.Close()
	}
	return logger, cleanup, nil
}

// ParseLevel maps a config level name to a zap level, defaulting to info.
func ParseLevel(level string) zap.AtomicLevel {
	atomic := zap.NewAtomicLevel()
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		atomic.SetLevel(zap.DebugLevel)
	case "warn", "warning":
		atomic.SetLevel(zap.WarnLevel)
	case "error":
		atomic.SetLevel(zap.ErrorLevel)
	default:
		atomic.SetLevel(zap.InfoLevel)
	}
	return atomic
}

func newEncoder(format string) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}
