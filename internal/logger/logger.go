package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// LogFilePath is the default log file, relative to the working directory.
const LogFilePath = "logs/envgen.txt"

// Logger stores lines of text (commands, results, errors) in memory and appends them
// to a file on disk. An optional echo writer receives every line as well.
type Logger struct {
	mu    sync.Mutex
	lines []string
	path  string
	echo  *termenv.Output
}

// New returns a Logger writing to path and ensures its directory exists. An empty
// path keeps lines in memory only.
func New(path string) *Logger {
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
	}
	return &Logger{lines: make([]string, 0), path: path}
}

// SetEcho mirrors every logged line to w. Error lines are shown in red when w is a
// colour terminal. A nil w turns echo off.
func (l *Logger) SetEcho(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w == nil {
		l.echo = nil
		return
	}
	l.echo = termenv.NewOutput(w)
}

// Log appends a line prefixed with [timestamp] using computer time.
func (l *Logger) Log(line string) {
	l.write(line, false)
}

// Logf formats and logs a line.
func (l *Logger) Logf(format string, args ...any) {
	l.write(fmt.Sprintf(format, args...), false)
}

// Error logs err as an "error: ..." line.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}
	l.write("error: "+err.Error(), true)
}

func (l *Logger) write(line string, isErr bool) {
	ts := time.Now().Format("2006-01-02 15:04:05")
	stamped := "[" + ts + "] " + line

	l.mu.Lock()
	l.lines = append(l.lines, stamped)
	echo := l.echo
	l.mu.Unlock()

	if echo != nil {
		out := line
		if isErr {
			out = echo.String(line).Foreground(termenv.ANSIRed).String()
		} else if strings.HasPrefix(line, "> ") {
			out = echo.String(line).Bold().String()
		}
		_, _ = fmt.Fprintln(echo, out)
	}

	if l.path == "" {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(stamped + "\n")
	_ = f.Close()
}

// Lines returns a copy of all stored lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Tail returns up to the last n stored lines.
func (l *Logger) Tail(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.lines) {
		n = len(l.lines)
	}
	out := make([]string, n)
	copy(out, l.lines[len(l.lines)-n:])
	return out
}
