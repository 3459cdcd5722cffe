package logger

import (
	"github.com/maxaizer/club-portal/internal/config"
	"github.com/maxaizer/club-portal/pkg/loki"
	log "github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
)

const ErrorTypeField = "error_type"

const (
	ErrorTypeDb        = "db"
	ErrorTypeHttp      = "http"
	ErrorTypeAuth      = "auth"
	ErrorTypeScheduler = "scheduler"
	ErrorTypeStorage   = "storage"
)

var (
	logFile *os.File
	shipper *loki.Shipper
)

func Setup(cfg config.LoggerConfig) {

	output := cfg.OutputFile
	if output == "" {
		output = "./logs/portal.log"
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	logFile = file

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	log.SetOutput(multiWriter)

	customFormatter := &log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000 -0700",
	}
	log.SetFormatter(customFormatter)
	addPrometheusHook()

	level := levelOf(cfg.LogLevel)
	log.SetLevel(level)

	if cfg.LokiURL != "" {
		if shipper, err = addLokiHook(cfg, level); err != nil {
			log.WithField(ErrorTypeField, ErrorTypeHttp).Errorf("failed to enable loki logging: %v", err)
		}
	}
}

func levelOf(level config.LogLevel) log.Level {
	switch level {
	case config.LevelInfo:
		return log.InfoLevel
	case config.LevelDebug:
		return log.DebugLevel
	case config.LevelWarning:
		return log.WarnLevel
	case config.LevelError:
		return log.ErrorLevel
	case config.LevelFatal:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func Cleanup() {
	if shipper != nil {
		shipper.Stop()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
}
