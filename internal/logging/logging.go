package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	Field = zapcore.Field
	Level = zapcore.Level
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
)

type LoggerCtxKey struct{}

type zapLogger interface {
	Debug(msg string, fields ...zapcore.Field)
	Error(msg string, fields ...zapcore.Field)
	Fatal(msg string, fields ...zapcore.Field)
	Info(msg string, fields ...zapcore.Field)
	Sync() error
	Warn(msg string, fields ...zapcore.Field)
	With(fields ...zapcore.Field) *zap.Logger
}

// Logger is a thin wrapper over zap shared by the binaries and the trace
// interpreter.
type Logger struct {
	log   zapLogger
	level zap.AtomicLevel
}

var (
	logOnce      sync.Once
	cachedLogger *Logger
)

func inProduction() bool {
	return os.Getenv("QTEST_ENVIRONMENT") == "production"
}

func defaultLogger() (*zap.Logger, zap.AtomicLevel) {
	var logCfg zap.Config
	if inProduction() {
		logCfg = zap.NewProductionConfig()
	} else {
		logCfg = zap.NewDevelopmentConfig()
		logCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logCfg.Level.SetLevel(zapcore.InfoLevel)
	}

	logCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)

	logger, err := logCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		log.Panicf("could not create logger: %v", err)
	}

	return logger, logCfg.Level
}

// New returns the process-wide logger, building it on first use.
func New() *Logger {
	logOnce.Do(func() {
		logger, level := defaultLogger()
		cachedLogger = &Logger{
			log:   logger,
			level: level,
		}
	})

	return cachedLogger
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{
		log:   zap.NewNop(),
		level: zap.NewAtomicLevel(),
	}
}

// FromContext returns the logger stored by GetContext, or the global one.
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return New()
	}

	if l, ok := ctx.Value(LoggerCtxKey{}).(*Logger); ok {
		return l
	}

	return New()
}

// SetLevel changes the minimum enabled level of l and every logger derived
// from it with With.
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level)
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.log.Debug(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.log.Error(msg, fields...)
}

func (l *Logger) Fatal(msg string, fields ...Field) {
	l.log.Fatal(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.log.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.log.Warn(msg, fields...)
}

func (l *Logger) Sync() error {
	return l.log.Sync()
}

func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{
		log:   l.log.With(fields...),
		level: l.level,
	}
}

func (l *Logger) GetContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, LoggerCtxKey{}, l)
}
