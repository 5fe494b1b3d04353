// Package color renders terminal escape sequences for the recall CLI.
// It honors the NO_COLOR convention (https://no-color.org/).
package color

import (
	"fmt"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	inited  bool
	enabled bool
)

// Init decides once whether escape sequences are emitted. Color is off
// when NO_COLOR is set, TERM is dumb, or the flag asks for it.
func Init(noColorFlag bool) {
	mu.Lock()
	defer mu.Unlock()
	if inited {
		return
	}
	inited = true

	_, noColorEnv := os.LookupEnv("NO_COLOR")
	enabled = !noColorEnv && os.Getenv("TERM") != "dumb" && !noColorFlag
}

// Enabled reports whether escape sequences are being emitted.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	if !inited {
		inited = true
		_, noColorEnv := os.LookupEnv("NO_COLOR")
		enabled = !noColorEnv && os.Getenv("TERM") != "dumb"
	}
	return enabled
}

// Disable turns escape sequences off, overriding Init.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	inited = true
	enabled = false
}

// Enable turns escape sequences on, overriding Init.
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	inited = true
	enabled = true
}

const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	faint   = "\033[2m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
	gray    = "\033[90m"
)

func paint(code, s string) string {
	if !Enabled() {
		return s
	}
	return code + s + reset
}

// Success renders a success message in green.
func Success(s string) string { return paint(green, s) }

// Successf is Success with printf formatting.
func Successf(format string, args ...any) string {
	return paint(green, fmt.Sprintf(format, args...))
}

// Error renders an error message in red.
func Error(s string) string { return paint(red, s) }

// Errorf is Error with printf formatting.
func Errorf(format string, args ...any) string {
	return paint(red, fmt.Sprintf(format, args...))
}

// Warning renders a warning in yellow.
func Warning(s string) string { return paint(yellow, s) }

// Info renders informational text in cyan.
func Info(s string) string { return paint(cyan, s) }

// EventID renders a timeline event ID in cyan.
func EventID(s string) string { return paint(cyan, s) }

// Kind renders an action kind label in blue.
func Kind(s string) string { return paint(blue, s) }

// Entity renders an entity-type label in magenta.
func Entity(s string) string { return paint(magenta, s) }

// Undone renders the marker and text for undone timeline entries.
func Undone(s string) string { return paint(gray, s) }

// Header renders a section header in bold.
func Header(s string) string { return paint(bold, s) }

// Dim renders secondary text faintly.
func Dim(s string) string { return paint(faint, s) }

// Code renders an inline command name.
func Code(s string) string { return paint(bold+faint, s) }
