package applog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	logName     = "ticketdeck.log"
	maxFileSize = 5 << 20 // 5 MB
	maxValueLen = 200
	truncSuffix = "…"
	redacted    = "[redacted]"
)

// secretKeys are kv keys whose values never reach the log.
var secretKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"authorization": true,
}

var (
	mu   sync.Mutex
	file *os.File
)

// Init opens the log file in dir for appending. Call once at startup.
// A file over 5 MB is rotated to .log.1 first.
// Logging is a no-op until Init succeeds.
func Init(dir string) error {
	path := filepath.Join(dir, logName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxFileSize {
		os.Rename(path, path+".1")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	mu.Lock()
	if file != nil {
		file.Close()
	}
	file = f
	mu.Unlock()
	return nil
}

// DefaultDir returns ~/.local/share/ticketdeck.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "ticketdeck"), nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
}

// Info logs a structured event line.
//
//	applog.Info("jira.search.probe", "total", 250)
//	applog.Info("deck.delete", "key", "ABC-12")
func Info(event string, kv ...any) {
	write("INFO", event, nil, kv)
}

// Warn logs a recoverable condition, optionally with the error that caused it.
func Warn(event string, err error, kv ...any) {
	write("WARN", event, err, kv)
}

// Error logs an event with an error.
//
//	applog.Error("jira.search.page", err, "startAt", 100)
func Error(event string, err error, kv ...any) {
	write("ERROR", event, err, kv)
}

func write(level, event string, err error, kv []any) {
	mu.Lock()
	f := file
	mu.Unlock()
	if f == nil {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(event)

	if err != nil {
		b.WriteString(" err=")
		b.WriteString(quote(err.Error()))
	}

	for i := 0; i < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		switch {
		case i+1 == len(kv):
			b.WriteString("(missing)")
		case secretKeys[strings.ToLower(k)]:
			b.WriteString(redacted)
		default:
			b.WriteString(quote(fmt.Sprint(kv[i+1])))
		}
	}
	b.WriteByte('\n')

	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.WriteString(b.String())
	}
}

func quote(s string) string {
	if len(s) > maxValueLen {
		s = s[:maxValueLen] + truncSuffix
	}
	if strings.ContainsAny(s, " \t\n\"") {
		return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
	}
	return s
}
