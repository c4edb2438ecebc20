// Package logger provides a colored, name-prefixed logger.
package logger

import (
	"errors"
	"io"
	"log"

	"github.com/beka-birhanu/vinom-evolve/config"
)

var ErrNilWriter = errors.New("logger writer is nil")

// Logger writes leveled lines tagged with a colored component name.
type Logger struct {
	name  string
	color string
	out   *log.Logger
}

// New creates a logger for the named component writing to w.
func New(name, color string, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	return &Logger{
		name:  name,
		color: color,
		out:   log.New(w, "", log.LstdFlags),
	}, nil
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.write(config.LogInfoColor, "INFO", msg)
}

// Warning logs a recoverable problem.
func (l *Logger) Warning(msg string) {
	l.write(config.LogWarnColor, "WARN", msg)
}

// Error logs a failure.
func (l *Logger) Error(msg string) {
	l.write(config.LogErrorColor, "ERROR", msg)
}

func (l *Logger) write(levelColor, level, msg string) {
	l.out.Printf("%s[%s]%s %s[%s]%s %s", l.color, l.name, config.ColorReset, levelColor, level, config.LogColorReset, msg)
}
