package common

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

const defaultLogTimeFormat = "15:04:05"

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// GetLogger returns the global logger, creating a console-only logger
// when InitLogger has not run yet (early startup, tests).
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithConsoleWriter(consoleWriterConfig(nil))
	}
	return globalLogger
}

// InitLogger builds the arbor logger from the [logging] config section:
// console and/or rolling file writers, text or JSON output, level from
// the config string. The file writer logs to logs/mendel.log next to
// the executable.
func InitLogger(config *Config) arbor.ILogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	logCfg := &config.Logging
	logger := arbor.NewLogger()

	for _, output := range logCfg.Output {
		switch output {
		case "file":
			logFile, err := logFilePath()
			if err != nil {
				fmt.Printf("Warning: file logging disabled: %v\n", err)
				continue
			}
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   logFile,
				TimeFormat: logTimeFormat(logCfg),
				MaxSize:    100 * 1024 * 1024,
				MaxBackups: 3,
				OutputType: logOutputFormat(logCfg),
			})
		case "stdout", "console":
			logger = logger.WithConsoleWriter(consoleWriterConfig(logCfg))
		}
	}

	logger = logger.WithLevelFromString(logCfg.Level)

	globalLogger = logger
	return logger
}

func consoleWriterConfig(logCfg *LoggingConfig) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: logTimeFormat(logCfg),
		OutputType: logOutputFormat(logCfg),
	}
}

func logOutputFormat(logCfg *LoggingConfig) models.OutputFormat {
	if logCfg != nil && logCfg.Format == "json" {
		return models.OutputFormatJSON
	}
	return models.OutputFormatLogfmt
}

func logTimeFormat(logCfg *LoggingConfig) string {
	if logCfg != nil && logCfg.TimeFormat != "" {
		return logCfg.TimeFormat
	}
	return defaultLogTimeFormat
}

// logFilePath puts the log file in a logs directory next to the binary.
func logFilePath() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable path: %w", err)
	}

	logsDir := filepath.Join(filepath.Dir(execPath), "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create logs directory: %w", err)
	}
	return filepath.Join(logsDir, "mendel.log"), nil
}
