package common

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger                *zap.Logger
	logConfig             LogConfig
	sensitiveDataPatterns []string
	loggerMutex           sync.RWMutex
)

// LogConfig configures the global zap logger, grounded on the teacher's
// pkg/common/logging.go LogConfig, trimmed to what this batch/watch CLI
// actually needs (no tracing/monitoring-prefix knobs — there is no APM
// backend wired in this system).
type LogConfig struct {
	Level                 string
	Environment           string
	OutputPath            string
	MaxSizeMB             int
	MaxBackups            int
	MaxAgeDays            int
	Compress              bool
	SensitiveDataPatterns []string
	ConsoleOutput         bool
}

// NewLogConfig returns sane defaults for the CLI's default logging setup.
func NewLogConfig() LogConfig {
	return LogConfig{
		Level:         "info",
		Environment:   "production",
		OutputPath:    "logs/analyzer.log",
		MaxSizeMB:     50,
		MaxBackups:    5,
		MaxAgeDays:    14,
		Compress:      true,
		ConsoleOutput: true,
		SensitiveDataPatterns: []string{
			`password=\S+`,
			`token=\S+`,
			`secret=\S+`,
		},
	}
}

func (c *LogConfig) validate() error {
	if c.Level == "" {
		return NewError("E1002", "log level must be specified", nil)
	}
	if dir := filepath.Dir(c.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WrapError(err, "failed to create log directory", map[string]interface{}{"dir": dir})
		}
	}
	if c.MaxSizeMB <= 0 {
		return NewError("E1002", "invalid MaxSizeMB value", nil)
	}
	if c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return NewError("E1002", "invalid log rotation value", nil)
	}
	for _, pattern := range c.SensitiveDataPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return WrapError(err, "invalid sensitive data pattern", map[string]interface{}{"pattern": pattern})
		}
	}
	return nil
}

// InitLogger builds the process-wide zap logger: JSON lines to a rotated
// file via lumberjack, plus an optional human-readable console tee.
// Grounded on the teacher's InitLogger.
func InitLogger(config LogConfig) error {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if err := config.validate(); err != nil {
		return err
	}

	rotator := &lumberjack.Logger{
		Filename:   config.OutputPath,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   config.Compress,
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		return WrapError(err, "invalid log level", map[string]interface{}{"level": config.Level})
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level),
	}
	if config.ConsoleOutput {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level))
	}

	logger = zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(
			zap.String("environment", config.Environment),
			zap.Time("startup_time", time.Now().UTC()),
		),
	)

	logConfig = config
	sensitiveDataPatterns = config.SensitiveDataPatterns
	return nil
}

// Logger returns the process-wide logger, or a no-op logger if InitLogger
// has not been called (tests commonly skip initialization).
func Logger() *zap.Logger {
	loggerMutex.RLock()
	defer loggerMutex.RUnlock()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Sync flushes any buffered log entries; call before process exit.
func Sync() {
	loggerMutex.RLock()
	defer loggerMutex.RUnlock()
	if logger != nil {
		_ = logger.Sync()
	}
}

// Debug, Info, Warn, Error log through the global logger, sanitizing any
// string fields against the configured sensitive-data patterns first.
func Debug(message string, fields ...zap.Field) { Logger().Debug(sanitizeMessage(message), sanitizeFields(fields)...) }
func Info(message string, fields ...zap.Field)  { Logger().Info(sanitizeMessage(message), sanitizeFields(fields)...) }
func Warn(message string, fields ...zap.Field)  { Logger().Warn(sanitizeMessage(message), sanitizeFields(fields)...) }

// Error logs at error level and, if err is an AnalyzerError, attaches its
// code as a field for easy grepping/alerting.
func Error(message string, err error, fields ...zap.Field) {
	code := "E9999"
	var ae *AnalyzerError
	if errors.As(err, &ae) {
		code = ae.Code
	}
	fields = append(fields, zap.String("error_code", code), zap.Error(err))
	Logger().Error(sanitizeMessage(message), sanitizeFields(fields)...)
}

func sanitizeMessage(message string) string {
	for _, pattern := range sensitiveDataPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		message = re.ReplaceAllString(message, "[REDACTED]")
	}
	return redact(message)
}

func sanitizeFields(fields []zap.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		if f.Type == zapcore.StringType {
			f.String = sanitizeMessage(f.String)
		}
		out[i] = f
	}
	return out
}
