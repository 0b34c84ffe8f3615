package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/On-Jun9/MediaSort/pkg/types"
)

const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger writes text and/or JSON lines to a log file and run summaries to
// the console. A Logger without a file only prints summaries.
type Logger struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
	logJSON bool
	logText bool
}

// New opens logFilePath for appending. An empty path disables the file sink.
func New(logFilePath string, logJSON, logText bool) (*Logger, error) {
	l := &Logger{
		console: os.Stdout,
		logJSON: logJSON,
		logText: logText,
	}
	if logFilePath == "" {
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l.file = file
	return l, nil
}

// Discard returns a Logger that writes nowhere.
func Discard() *Logger {
	return &Logger{console: io.Discard}
}

// SetConsole redirects summary output.
func (l *Logger) SetConsole(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = w
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

type LogEntry struct {
	Timestamp time.Time        `json:"timestamp"`
	Level     string           `json:"level"`
	Message   string           `json:"message"`
	Source    string           `json:"source,omitempty"`
	Dest      string           `json:"dest,omitempty"`
	Action    types.CopyAction `json:"action,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// LogTask records the outcome of one placement.
func (l *Logger) LogTask(task types.CopyTask) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     LevelInfo,
		Message:   fmt.Sprintf("%s: %s -> %s", task.Action, task.Source.Path, task.DestPath),
		Source:    task.Source.Path,
		Dest:      task.DestPath,
		Action:    task.Action,
	}

	if task.Error != "" {
		entry.Level = LevelError
		entry.Error = task.Error
	}

	l.write(entry)
}

// LogPath records an action on a single path, e.g. a duplicate removal.
func (l *Logger) LogPath(action types.CopyAction, source, dest string, err error) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     LevelInfo,
		Message:   fmt.Sprintf("%s: %s", action, source),
		Source:    source,
		Dest:      dest,
		Action:    action,
	}
	if dest != "" {
		entry.Message += " -> " + dest
	}
	if err != nil {
		entry.Level = LevelError
		entry.Error = err.Error()
	}
	l.write(entry)
}

func (l *Logger) Info(msg string) {
	l.write(LogEntry{Timestamp: time.Now(), Level: LevelInfo, Message: msg})
}

func (l *Logger) Warn(msg string) {
	l.write(LogEntry{Timestamp: time.Now(), Level: LevelWarn, Message: msg})
}

func (l *Logger) Error(msg string, err error) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     LevelError,
		Message:   msg,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// write is a no-op on a nil Logger.
func (l *Logger) write(entry LogEntry) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	if l.logJSON {
		data, _ := json.Marshal(entry)
		l.file.Write(append(data, '\n'))
	}

	if l.logText {
		l.file.WriteString(FormatText(entry))
	}
}

// FormatText renders an entry as a single text log line.
func FormatText(entry LogEntry) string {
	line := fmt.Sprintf("[%s] %s %s",
		entry.Timestamp.Format("2006-01-02 15:04:05"),
		entry.Level,
		entry.Message,
	)
	if entry.Error != "" {
		line += " - Error: " + entry.Error
	}
	return line + "\n"
}

func (l *Logger) Summary(stats types.RunStatistics) {
	l.mu.Lock()
	defer l.mu.Unlock()

	title := "=== MediaSort Summary ==="
	if stats.DryRun {
		title = "=== MediaSort Summary (dry run) ==="
	}
	fmt.Fprintln(l.console, "\n"+title)
	fmt.Fprintf(l.console, "Total files:    %d\n", stats.Total)
	fmt.Fprintf(l.console, "Copied:         %d\n", stats.Copied)
	if stats.DryRun {
		fmt.Fprintf(l.console, "Would copy:     %d\n", stats.Planned)
	}
	fmt.Fprintf(l.console, "Skipped:        %d\n", stats.Skipped)
	fmt.Fprintf(l.console, "Errors:         %d\n", stats.Errors)
	fmt.Fprintf(l.console, "Uncategorized:  %d\n", stats.Uncategorized)
	fmt.Fprintf(l.console, "Duration:       %s\n", stats.Duration.Round(time.Millisecond))
	if stats.BytesCopied > 0 {
		fmt.Fprintf(l.console, "Bytes copied:   %.2f MB\n", float64(stats.BytesCopied)/1024/1024)
	}
	fmt.Fprintln(l.console, "==========================")
}

func (l *Logger) ResolveSummary(summary types.ResolveSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch summary.Operation {
	case "move":
		fmt.Fprintf(l.console, "Move complete. Moved: %d, Skipped: %d (marked as not duplicate), Collisions: %d, Errors: %d\n",
			summary.Moved, summary.Skipped, summary.Collisions, summary.Errors)
	default:
		fmt.Fprintf(l.console, "Clean complete. Deleted: %d, Skipped: %d (marked as not duplicate), Errors: %d\n",
			summary.Deleted, summary.Skipped, summary.Errors)
	}
}
