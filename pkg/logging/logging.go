// Package logging provides leveled structured logging for recall.
// Output is JSON by default; the CLI switches to text for terminals.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level names a severity threshold.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func rank(l Level) int {
	switch l {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	default:
		return 3
	}
}

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Logger writes structured entries at or above its level.
type Logger struct {
	mu     sync.Mutex
	level  Level
	format Format
	output io.Writer
	fields map[string]any
}

// LogEntry is the wire shape of one emitted line.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// NewLogger returns a logger writing JSON to stderr at the given level.
func NewLogger(level Level) *Logger {
	return &Logger{
		level:  level,
		format: FormatJSON,
		output: os.Stderr,
		fields: map[string]any{},
	}
}

// WithFields derives a logger whose entries always carry fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{level: l.level, format: l.format, output: l.output, fields: merged}
}

func (l *Logger) Debug(msg string, fields ...map[string]any) { l.emit(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]any)  { l.emit(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]any)  { l.emit(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]any) { l.emit(LevelError, msg, fields) }

// ErrorErr logs msg at error level with err attached as a field.
func (l *Logger) ErrorErr(msg string, err error, fields ...map[string]any) {
	l.emit(LevelError, msg, append([]map[string]any{{"error": err.Error()}}, fields...))
}

func (l *Logger) emit(level Level, msg string, extra []map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rank(level) < rank(l.level) {
		return
	}

	merged := make(map[string]any, len(l.fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for _, f := range extra {
		for k, v := range f {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		merged = nil
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Message:   msg,
		Fields:    merged,
	}
	l.output.Write(render(&entry, l.format))
}

func render(entry *LogEntry, format Format) []byte {
	if format == FormatText {
		var sb strings.Builder
		sb.WriteString(entry.Timestamp)
		sb.WriteString(" [")
		sb.WriteString(strings.ToUpper(string(entry.Level)))
		sb.WriteString("] ")
		sb.WriteString(entry.Message)

		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, entry.Fields[k])
		}
		sb.WriteByte('\n')
		return []byte(sb.String())
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return []byte(`{"level":"error","message":"failed to marshal log entry"}` + "\n")
	}
	return append(data, '\n')
}

// SetOutput redirects the logger's output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetLevel changes the minimum emitted level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetFormat changes the output encoding.
func (l *Logger) SetFormat(f Format) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.format = f
}

var global = NewLogger(LevelInfo)

// SetGlobal replaces the process-wide logger.
func SetGlobal(l *Logger) {
	global = l
}

func Debug(msg string, fields ...map[string]any) { global.Debug(msg, fields...) }
func Info(msg string, fields ...map[string]any)  { global.Info(msg, fields...) }
func Warn(msg string, fields ...map[string]any)  { global.Warn(msg, fields...) }
func Error(msg string, fields ...map[string]any) { global.Error(msg, fields...) }

// ErrorErr logs to the global logger with an error attached.
func ErrorErr(msg string, err error, fields ...map[string]any) {
	global.ErrorErr(msg, err, fields...)
}

// WithFields derives a logger from the global one.
func WithFields(fields map[string]any) *Logger {
	return global.WithFields(fields)
}
