package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Asgar77/goodminds-app/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init initializes and returns a new zap logger writing one rotating file per level
// under the configured directory, plus a colored console stream.
func Init(projectRoot string, conf config.LoggingConfig) (*zap.Logger, error) {
	// Base encoder configuration for file logs (JSON format)
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:   "message",
		LevelKey:     "level",
		TimeKey:      "time",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	logDir := conf.Directory
	if !filepath.IsAbs(logDir) {
		logDir = filepath.Join(projectRoot, logDir)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}

	cores := make([]zapcore.Core, 0, 5)
	for _, level := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel} {
		cores = append(cores, newFileCore(logDir, level, conf, encoderConfig))
	}

	// Combine all cores. A log entry will be sent to all of them,
	// and each will decide whether to write it based on its LevelEnabler.
	cores = append(cores, newConsoleCore())
	core := zapcore.NewTee(cores...)

	return zap.New(core, zap.AddCaller()), nil
}

// newFileCore creates a core that writes a specific log level to a rotating file.
func newFileCore(logDir string, level zapcore.Level, conf config.LoggingConfig, encoderConfig zapcore.EncoderConfig) zapcore.Core {
	// One file per level, named like '2025-07-30-info.log'
	fileName := filepath.Join(logDir, fmt.Sprintf("%s-%s.log", time.Now().Format("2006-01-02"), level.String()))

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    conf.MaxSize, // megabytes
		MaxBackups: conf.MaxBackups,
		MaxAge:     conf.MaxAge, // days
		Compress:   conf.Compress,
	})

	// Only the exact level goes to this file.
	levelEnabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l == level
	})

	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		writer,
		levelEnabler,
	)
}

// newConsoleCore creates a core that writes to the console.
func newConsoleCore() zapcore.Core {
	levelEnabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.DebugLevel
	})

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig),
		zapcore.AddSync(os.Stdout),
		levelEnabler,
	)
}
