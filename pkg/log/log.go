package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMegabytes = 5
	logFileMaxBackups       = 3
)

var logger *zap.Logger

func Init(prod bool) error {
	if logger != nil {
		return nil
	}
	var err error
	if prod {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	return err
}

// InitFile is Init plus a rotating JSON log file at filePath.
func InitFile(prod bool, filePath string) error {
	if logger != nil {
		return nil
	}
	if filePath == "" {
		return Init(prod)
	}

	consoleConfig := zap.NewDevelopmentEncoderConfig()
	consoleLevel := zapcore.DebugLevel
	if prod {
		consoleConfig = zap.NewProductionEncoderConfig()
		consoleLevel = zapcore.InfoLevel
	}

	rotatingFile := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    logFileMaxSizeMegabytes,
		MaxBackups: logFileMaxBackups,
		Compress:   true,
	}

	combinedCore := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stderr), consoleLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotatingFile), zapcore.DebugLevel),
	)
	logger = zap.New(combinedCore, zap.AddCaller())
	return nil
}

// Replace swaps the package logger and returns a func restoring the previous one.
func Replace(replacement *zap.Logger) func() {
	previous := logger
	logger = replacement
	return func() { logger = previous }
}

func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func L() *zap.Logger {
	if logger == nil {
		panic("logger not initialized")
	}
	return logger
}
