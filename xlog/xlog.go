package xlog

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// XLogger wraps a zap logger whose level can be changed at runtime.
// The tree, kv and observability packages take the *zap.Logger from Zap().
type XLogger struct {
	logger              *zap.Logger
	dynamicLevelEnabler zap.AtomicLevel
	encoder             logEncoderType
}

func (l *XLogger) Zap() *zap.Logger {
	return l.logger
}

// IncreaseLogLevel we can increase or decrease the log level concurrently.
func (l *XLogger) IncreaseLogLevel(level zapcore.Level) {
	l.dynamicLevelEnabler.SetLevel(level)
}

func (l *XLogger) Level() string {
	return l.dynamicLevelEnabler.Level().String()
}

// Named returns a child logger, e.g. xl.Named("rbtree") for a tree's logger option.
func (l *XLogger) Named(name string) *zap.Logger {
	return l.logger.Named(name)
}

func (l *XLogger) Sync() error {
	return l.logger.Sync()
}

type loggerCfg struct {
	encoderType logEncoderType
	level       *zapcore.Level
	lvlEncoder  zapcore.LevelEncoder
	tsEncoder   zapcore.TimeEncoder
	writer      zapcore.WriteSyncer
	name        string
}

func (cfg *loggerCfg) apply(l *XLogger) {
	l.encoder = cfg.encoderType
	if cfg.level != nil {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(*cfg.level)
	} else {
		l.dynamicLevelEnabler = zap.NewAtomicLevelAt(getLogLevelOrDefault(os.Getenv(levelEnvKey)))
	}
	if cfg.lvlEncoder == nil {
		cfg.lvlEncoder = zapcore.CapitalLevelEncoder
	}
	if cfg.tsEncoder == nil {
		cfg.tsEncoder = zapcore.ISO8601TimeEncoder
	}
	if cfg.writer == nil {
		cfg.writer = zapcore.Lock(os.Stdout)
	}
}

type XLoggerOption func(*loggerCfg) error

func NewXLogger(opts ...XLoggerOption) (*XLogger, error) {
	cfg := &loggerCfg{encoderType: JSON}
	for _, o := range opts {
		if o == nil {
			continue
		}
		if err := o(cfg); err != nil {
			return nil, err
		}
	}
	xl := &XLogger{}
	cfg.apply(xl)

	xl.logger = zap.New(
		newConsoleCore(xl.dynamicLevelEnabler, cfg.encoderType, cfg.writer, cfg.lvlEncoder, cfg.tsEncoder),
		zap.AddCaller(),
	)
	if cfg.name != "" {
		xl.logger = xl.logger.Named(cfg.name)
	}
	return xl, nil
}

func WithXLoggerEncoder(logEnc logEncoderType) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if logEnc >= _encMax {
			return ErrXLoggerUnknownEncoder
		}
		cfg.encoderType = logEnc
		return nil
	}
}

func WithXLoggerLevel(lvl logLevel) XLoggerOption {
	return func(cfg *loggerCfg) error {
		_lvl := lvl.zapLevel()
		cfg.level = &_lvl
		return nil
	}
}

func WithXLoggerLevelEncoder(lvlEnc zapcore.LevelEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if lvlEnc == nil {
			lvlEnc = zapcore.CapitalColorLevelEncoder
		}
		cfg.lvlEncoder = lvlEnc
		return nil
	}
}

func WithXLoggerTimeEncoder(tsEnc zapcore.TimeEncoder) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if tsEnc == nil {
			tsEnc = zapcore.ISO8601TimeEncoder
		}
		cfg.tsEncoder = tsEnc
		return nil
	}
}

// WithXLoggerWriter redirects the output, stdout by default.
func WithXLoggerWriter(w io.Writer) XLoggerOption {
	return func(cfg *loggerCfg) error {
		if w == nil {
			return ErrXLoggerNilWriter
		}
		cfg.writer = zapcore.Lock(zapcore.AddSync(w))
		return nil
	}
}

func WithXLoggerName(name string) XLoggerOption {
	return func(cfg *loggerCfg) error {
		cfg.name = name
		return nil
	}
}
