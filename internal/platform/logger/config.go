package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config selects the log level and encoding.
type Config struct {
	Level  string
	Format string
}

func (c Config) normalized() Config {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	return c
}

// ZapLevel converts the configured level to zapcore.Level, falling back to info.
func (c Config) ZapLevel() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Console reports whether entries should be human readable rather than JSON.
func (c Config) Console() bool {
	f := strings.ToLower(c.Format)
	return f == "console" || f == "text"
}
