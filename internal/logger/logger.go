// Package logger is the process-wide leveled logger.
package logger

import (
	"os"
	"strings"

	"github.com/op/go-logging"
)

const module = "reservation"

var log = logging.MustGetLogger(module)

func init() {
	InitLogger(logging.INFO)
}

// ParseLevel maps a textual level to a go-logging level, defaulting to INFO.
func ParseLevel(raw string) logging.Level {
	level, err := logging.LogLevel(strings.ToUpper(strings.TrimSpace(raw)))
	if err != nil {
		return logging.INFO
	}
	return level
}

// InitLogger installs a stderr backend at the given level.
func InitLogger(level logging.Level) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend,
		logging.MustStringFormatter(`%{time:2006/01/02 15:04:05} %{level} - %{message}`))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level, module)
	log.SetBackend(leveled)
}

func Debug(args ...any) {
	log.Debug(args...)
}

func Debugf(format string, args ...any) {
	log.Debugf(format, args...)
}

func Info(args ...any) {
	log.Info(args...)
}

func Infof(format string, args ...any) {
	log.Infof(format, args...)
}

func Notice(args ...any) {
	log.Notice(args...)
}

func Noticef(format string, args ...any) {
	log.Noticef(format, args...)
}

func Warning(args ...any) {
	log.Warning(args...)
}

func Warningf(format string, args ...any) {
	log.Warningf(format, args...)
}

func Error(args ...any) {
	log.Error(args...)
}

func Errorf(format string, args ...any) {
	log.Errorf(format, args...)
}
