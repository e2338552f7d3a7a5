package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Encodings accepted by Config.Encoding
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// Config holds logger configuration
type Config struct {
	Level       string
	Development bool
	Encoding    string

	// Service and Version are attached to every entry when set
	Service string
	Version string
}

// New builds a logger from cfg
func New(cfg Config) (*zap.Logger, error) {
	log, _, err := NewWithLevel(cfg)
	return log, err
}

// NewWithLevel builds a logger and returns the level handle backing it, so
// the level can be changed on a running process.
// An unknown level falls back to info.
func NewWithLevel(cfg Config) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	zapConfig := zap.NewProductionConfig()
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch cfg.Encoding {
	case "":
	case EncodingJSON, EncodingConsole:
		zapConfig.Encoding = cfg.Encoding
	default:
		return nil, level, fmt.Errorf("unknown log encoding %q", cfg.Encoding)
	}

	zapConfig.Level = level
	zapConfig.OutputPaths = []string{"stdout"}
	zapConfig.ErrorOutputPaths = []string{"stderr"}
	zapConfig.InitialFields = initialFields(cfg)

	log, err := zapConfig.Build()
	if err != nil {
		return nil, level, err
	}
	return log, level, nil
}

// SetLevel parses text and applies it to level
func SetLevel(level zap.AtomicLevel, text string) error {
	parsed, err := zapcore.ParseLevel(text)
	if err != nil {
		return err
	}
	level.SetLevel(parsed)
	return nil
}

func initialFields(cfg Config) map[string]interface{} {
	fields := map[string]interface{}{}
	if cfg.Service != "" {
		fields["service"] = cfg.Service
	}
	if cfg.Version != "" {
		fields["version"] = cfg.Version
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func parseLevel(text string) zapcore.Level {
	level, err := zapcore.ParseLevel(text)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
