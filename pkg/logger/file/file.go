package file

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileLogger implements LoggerInstance using logrus with lumberjack rotation.
// It writes structured JSON lines suitable for log shipping.
type FileLogger struct {
	logger *logrus.Logger
}

// FileLoggerParams contains configuration for creating a FileLogger.
type FileLoggerParams struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Debug      bool
}

// NewFileLogger creates a rotating file logger. Zero values for the rotation
// parameters fall back to 10 MB, 3 backups and 28 days.
func NewFileLogger(params FileLoggerParams) *FileLogger {
	if params.MaxSizeMB == 0 {
		params.MaxSizeMB = 10
	}
	if params.MaxBackups == 0 {
		params.MaxBackups = 3
	}
	if params.MaxAgeDays == 0 {
		params.MaxAgeDays = 28
	}

	l := logrus.New()
	l.SetOutput(&lumberjack.Logger{
		Filename:   params.Path,
		MaxSize:    params.MaxSizeMB,
		MaxBackups: params.MaxBackups,
		MaxAge:     params.MaxAgeDays,
		Compress:   true,
	})
	l.SetFormatter(&logrus.JSONFormatter{})
	if params.Debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}

	return &FileLogger{logger: l}
}

func (f *FileLogger) fields(keyvals []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		fields[key] = keyvals[i+1]
	}
	return fields
}

// Log writes a message at the default level.
func (f *FileLogger) Log(message string, keyvals ...any) {
	f.logger.WithFields(f.fields(keyvals)).Print(message)
}

// Info writes a message at INFO level.
func (f *FileLogger) Info(message string, keyvals ...any) {
	f.logger.WithFields(f.fields(keyvals)).Info(message)
}

// Warn writes a message at WARN level.
func (f *FileLogger) Warn(message string, keyvals ...any) {
	f.logger.WithFields(f.fields(keyvals)).Warn(message)
}

// Error writes a message at ERROR level.
func (f *FileLogger) Error(message string, keyvals ...any) {
	f.logger.WithFields(f.fields(keyvals)).Error(message)
}

// Debug writes a message at DEBUG level.
func (f *FileLogger) Debug(message string, keyvals ...any) {
	f.logger.WithFields(f.fields(keyvals)).Debug(message)
}

// Fatal writes a message at FATAL level and terminates the program.
func (f *FileLogger) Fatal(message string, keyvals ...any) {
	f.logger.WithFields(f.fields(keyvals)).Fatal(message)
}
