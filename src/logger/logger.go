package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"biometric-insights/src/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name   string
	logger *zap.SugaredLogger
	exit   func(int)
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. config may be nil, a
// *models.MConfig or anything embedding one; nil falls back to info/console.
func NewLogger(config interface{}, name string) *Logger {
	cfg := resolveConfig(config)

	level := parseLevel(cfg.LogLevel)
	encoder := newEncoder(cfg.LogFormat)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}
	if cfg.LogFile.Enabled {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogFile.Path, cfg.Name+".log"),
			MaxSize:    cfg.LogFile.MaxSizeMB,
			MaxAge:     cfg.LogFile.MaxAgeDays,
			MaxBackups: cfg.LogFile.MaxBackups,
			Compress:   true,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), level))
	}

	base := zap.New(zapcore.NewTee(cores...)).Named(name)
	return &Logger{
		name:   name,
		logger: base.Sugar(),
		exit:   os.Exit,
	}
}

// NewNopLogger discards everything. Critical does not exit.
func NewNopLogger() *Logger {
	return &Logger{
		name:   "nop",
		logger: zap.NewNop().Sugar(),
		exit:   func(int) {},
	}
}

// -----------------------------------------------------------------------------

func resolveConfig(config interface{}) models.MConfig {
	switch c := config.(type) {
	case *models.MConfig:
		if c != nil {
			return *c
		}
	case interface{ GetModel() *models.MConfig }:
		if m := c.GetModel(); m != nil {
			return *m
		}
	}
	return models.MConfig{LogLevel: "info", LogFormat: "console", Name: "biometric-insights"}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(format string) zapcore.Encoder {
	if format == "json" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	return zapcore.NewConsoleEncoder(cfg)
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.logger.Errorf("CRITICAL: %s", fmt.Sprintf(format, args...))
	_ = l.logger.Sync()
	l.exit(1)
}

// -----------------------------------------------------------------------------

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.logger.Sync()
}
