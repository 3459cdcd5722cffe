package logger

import (
	"fmt"
	"github.com/maxaizer/club-portal/internal/config"
	"github.com/maxaizer/club-portal/pkg/loki"
	log "github.com/sirupsen/logrus"
	"path/filepath"
	"strconv"
)

const sourceField = "source"

type logrusAdapter struct{}

func (l *logrusAdapter) Error(msg string, args ...any) {
	log.WithFields(log.Fields{"args": args, sourceField: "loki"}).Error(msg)
}

type lokiHook struct {
	shipper  *loki.Shipper
	minLevel log.Level
}

func (h *lokiHook) Fire(entry *log.Entry) error {
	if entry.Data[sourceField] == "loki" {
		return nil
	}

	caller := ""
	if entry.Caller != nil {
		caller = filepath.Base(entry.Caller.Function) + ":" + strconv.Itoa(entry.Caller.Line)
	}

	fields := make(map[string]string, len(entry.Data))
	for key, value := range entry.Data {
		fields[key] = fmt.Sprint(value)
	}

	h.shipper.Push(loki.Entry{
		Time:    entry.Time,
		Level:   entry.Level.String(),
		Message: entry.Message,
		Caller:  caller,
		Fields:  fields,
	})
	return nil
}

func (h *lokiHook) Levels() []log.Level {
	var levels []log.Level
	for _, level := range log.AllLevels {
		if level <= h.minLevel {
			levels = append(levels, level)
		}
	}
	return levels
}

func addLokiHook(cfg config.LoggerConfig, minLevel log.Level) (*loki.Shipper, error) {
	shipper, err := loki.New(loki.Config{
		Url:      cfg.LokiURL,
		Labels:   map[string]string{"app": cfg.AppName},
		Username: cfg.LokiUser,
		Password: cfg.LokiPassword,
	}, &logrusAdapter{})
	if err != nil {
		return nil, err
	}
	log.AddHook(&lokiHook{shipper: shipper, minLevel: minLevel})
	log.Info("Loki logging enabled")
	return shipper, nil
}
