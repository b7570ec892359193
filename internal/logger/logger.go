package logger

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/hoshichaam/account_backend_go/internal/config"
)

// New builds the process logger from LOG_LEVEL / LOG_FORMAT.
func New(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if cfg.IsDev() && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	switch cfg.LogFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:          true,
			TimestampFormat:        "2006-01-02T15:04:05.000Z07:00",
			DisableLevelTruncation: true,
		})
	}
	return log
}
