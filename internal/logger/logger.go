// Package logger builds the application logger: human-readable console
// output in development, JSON with file rotation in production.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a logger for the given environment. logFile is only used
// outside development; empty means console only.
func New(environment, logLevel, logFile string) (*zap.Logger, error) {
	level := parseLogLevel(logLevel)

	if environment == "development" {
		consoleCore := zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.AddSync(os.Stdout),
			level,
		)
		return zap.New(consoleCore, zap.AddCaller()), nil
	}

	jsonEncoderConfig := zap.NewProductionEncoderConfig()
	jsonEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonEncoder := zapcore.NewJSONEncoder(jsonEncoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(jsonEncoder, zapcore.AddSync(os.Stdout), level),
	}

	if logFile != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     7, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(jsonEncoder, fileWriter, level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func parseLogLevel(logLevel string) zapcore.Level {
	switch logLevel {
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
