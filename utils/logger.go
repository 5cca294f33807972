package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process-wide logger from the log settings
func NewLogger(cfg LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	log.Out = os.Stdout

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	log.Level = level

	if cfg.Format == "json" {
		log.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
		}
	} else {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}
	return log, nil
}
