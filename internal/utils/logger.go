package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger writes leveled lines to stdout and, optionally, a log file.
// A nil *Logger discards everything.
type Logger struct {
	file   *os.File
	logger *log.Logger
	debug  bool
}

// NewLogger writes to stdout and to <dir>/<name>/<name>_<timestamp>.log.
func NewLogger(name, dir string) (*Logger, error) {
	return NewTeeLogger(os.Stdout, name, dir)
}

// NewTeeLogger is NewLogger with console output sent to w.
func NewTeeLogger(w io.Writer, name, dir string) (*Logger, error) {
	// Sanitize name for file system
	sanitized := strings.ReplaceAll(strings.ToLower(name), " ", "_")

	nameDir := filepath.Join(dir, sanitized)
	if err := os.MkdirAll(nameDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(nameDir, fmt.Sprintf("%s_%s.log", sanitized, timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	l := NewWriterLogger(io.MultiWriter(w, file))
	l.file = file
	return l, nil
}

// NewWriterLogger writes to w only.
func NewWriterLogger(w io.Writer) *Logger {
	return &Logger{
		logger: log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
}

// SetDebug toggles DEBUG output.
func (l *Logger) SetDebug(enabled bool) {
	if l != nil {
		l.debug = enabled
	}
}

func (l *Logger) LogInfo(format string, v ...interface{}) {
	l.log("INFO", format, v...)
}

func (l *Logger) LogError(format string, v ...interface{}) {
	l.log("ERROR", format, v...)
}

func (l *Logger) LogDebug(format string, v ...interface{}) {
	if l != nil && l.debug {
		l.log("DEBUG", format, v...)
	}
}

func (l *Logger) log(level string, format string, v ...interface{}) {
	if l == nil {
		return
	}
	message := fmt.Sprintf(format, v...)
	l.logger.Printf("[%s] %s", level, message)
}

func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
