package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rivo/tview"
)

// LogLevel is shown in brackets before each panel line.
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// LogMessage is one panel line.
type LogMessage struct {
	Time    time.Time
	Level   LogLevel
	Message string
}

// LogManager keeps recent messages and mirrors them into a text view. It is
// also an io.Writer so the standard logger can be pointed at it.
type LogManager struct {
	textView    *tview.TextView
	messages    []LogMessage
	maxMessages int
	mu          sync.Mutex

	// now is replaced in tests.
	now func() time.Time
}

// NewLogManager returns a panel holding at most maxMessages lines.
func NewLogManager(maxMessages int) *LogManager {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetMaxLines(maxMessages)
	textView.SetBorder(true).SetTitle(" Log ")

	return &LogManager{
		textView:    textView,
		messages:    make([]LogMessage, 0, maxMessages),
		maxMessages: maxMessages,
		now:         time.Now,
	}
}

func (lm *LogManager) View() tview.Primitive { return lm.textView }

// AddLog formats and appends a message, dropping the oldest past the limit.
func (lm *LogManager) AddLog(level LogLevel, format string, args ...interface{}) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.messages = append(lm.messages, LogMessage{
		Time:    lm.now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
	if len(lm.messages) > lm.maxMessages {
		lm.messages = lm.messages[len(lm.messages)-lm.maxMessages:]
	}
	lm.refresh()
}

func (lm *LogManager) Debug(format string, args ...interface{}) { lm.AddLog(LogLevelDebug, format, args...) }
func (lm *LogManager) Info(format string, args ...interface{})  { lm.AddLog(LogLevelInfo, format, args...) }
func (lm *LogManager) Warn(format string, args ...interface{})  { lm.AddLog(LogLevelWarn, format, args...) }
func (lm *LogManager) Error(format string, args ...interface{}) { lm.AddLog(LogLevelError, format, args...) }

// Write implements io.Writer for log.SetOutput. Lines mentioning a failure
// are recorded as errors, everything else as info.
func (lm *LogManager) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		level := LogLevelInfo
		lower := strings.ToLower(line)
		if strings.Contains(lower, "failed") || strings.Contains(lower, "error") {
			level = LogLevelError
		} else if strings.HasPrefix(lower, "skipping") || strings.HasPrefix(lower, "skipped") {
			level = LogLevelWarn
		}
		lm.AddLog(level, "%s", line)
	}
	return len(p), nil
}

// Messages returns a copy of the retained messages.
func (lm *LogManager) Messages() []LogMessage {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return append([]LogMessage(nil), lm.messages...)
}

func (lm *LogManager) refresh() {
	var b strings.Builder
	for _, msg := range lm.messages {
		fmt.Fprintf(&b, "[gray]%s[-] [%s]%-5s[-] %s\n",
			msg.Time.Format("15:04:05"), colorForLevel(msg.Level), msg.Level, tview.Escape(msg.Message))
	}
	lm.textView.SetText(b.String())
	lm.textView.ScrollToEnd()
}

func colorForLevel(level LogLevel) string {
	switch level {
	case LogLevelDebug:
		return "gray"
	case LogLevelWarn:
		return "yellow"
	case LogLevelError:
		return "red"
	default:
		return "white"
	}
}
