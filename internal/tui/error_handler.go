package tui

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/maildash/internal/services"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// LogLevel represents the severity of a message
type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarning
	LogLevelError
	LogLevelSuccess
)

// statusClearDelay is how long a transient message stays in the status bar.
const statusClearDelay = 5 * time.Second

// ErrorHandler is the dashboard's notification sink. It logs every message
// and shows it in the status bar until it expires or a newer one arrives.
type ErrorHandler struct {
	mu         sync.Mutex
	app        *tview.Application
	statusView *tview.TextView
	logger     *log.Logger

	colors   map[LogLevel]tcell.Color
	baseline func() string

	currentStatus string
	statusTimer   *time.Timer
}

// NewErrorHandler creates a new error handler. app and statusView may be nil
// (headless use); messages are then only logged.
func NewErrorHandler(app *tview.Application, statusView *tview.TextView, logger *log.Logger) *ErrorHandler {
	return &ErrorHandler{
		app:        app,
		statusView: statusView,
		logger:     logger,
		colors: map[LogLevel]tcell.Color{
			LogLevelInfo:    tcell.ColorLightCyan,
			LogLevelSuccess: tcell.ColorGreen,
			LogLevelWarning: tcell.ColorOrange,
			LogLevelError:   tcell.ColorRed,
		},
	}
}

// SetBaseline sets the text shown when no message is displayed.
func (eh *ErrorHandler) SetBaseline(fn func() string) {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	eh.baseline = fn
}

// SetLevelColor overrides the status color of a level (themes).
func (eh *ErrorHandler) SetLevelColor(level LogLevel, color tcell.Color) {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	eh.colors[level] = color
}

// Notify implements services.Notifier.
func (eh *ErrorHandler) Notify(kind services.NotifyKind, text string) {
	eh.ShowMessage(text, levelForKind(kind))
}

// HandleError logs err and shows userMsg.
func (eh *ErrorHandler) HandleError(err error, userMsg string) {
	if err == nil {
		return
	}
	if eh.logger != nil {
		eh.logger.Printf("ERROR: %v", err)
	}
	if userMsg == "" {
		userMsg = "An error occurred"
	}
	eh.show(userMsg, LogLevelError)
}

// ShowMessage displays a message to the user
func (eh *ErrorHandler) ShowMessage(msg string, level LogLevel) {
	if strings.TrimSpace(msg) == "" {
		return
	}
	if eh.logger != nil {
		eh.logger.Printf("%s: %s", levelToString(level), msg)
	}
	eh.show(msg, level)
}

// ShowInfo shows an info message
func (eh *ErrorHandler) ShowInfo(msg string) { eh.ShowMessage(msg, LogLevelInfo) }

// ShowWarning shows a warning message
func (eh *ErrorHandler) ShowWarning(msg string) { eh.ShowMessage(msg, LogLevelWarning) }

// ShowError shows an error message
func (eh *ErrorHandler) ShowError(msg string) { eh.ShowMessage(msg, LogLevelError) }

// ShowSuccess shows a success message
func (eh *ErrorHandler) ShowSuccess(msg string) { eh.ShowMessage(msg, LogLevelSuccess) }

// Refresh redraws the baseline when no message is showing. Must run on the
// UI goroutine.
func (eh *ErrorHandler) Refresh() {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	eh.refreshStatusDisplay(LogLevelInfo)
}

func (eh *ErrorHandler) show(msg string, level LogLevel) {
	formatted := formatMessage(msg, level)
	if eh.app == nil || eh.statusView == nil {
		return
	}
	eh.app.QueueUpdateDraw(func() {
		eh.updateStatusMessage(formatted, level)
	})
}

// updateStatusMessage sets the message and arms the auto-clear timer
func (eh *ErrorHandler) updateStatusMessage(msg string, level LogLevel) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	if eh.statusTimer != nil {
		eh.statusTimer.Stop()
	}
	eh.currentStatus = msg
	eh.refreshStatusDisplay(level)

	eh.statusTimer = time.AfterFunc(statusClearDelay, func() {
		eh.app.QueueUpdateDraw(func() {
			eh.mu.Lock()
			defer eh.mu.Unlock()
			// a newer message owns the bar
			if eh.currentStatus == msg {
				eh.currentStatus = ""
				eh.refreshStatusDisplay(LogLevelInfo)
			}
		})
	})
}

func (eh *ErrorHandler) refreshStatusDisplay(level LogLevel) {
	if eh.statusView == nil {
		return
	}
	text := eh.currentStatus
	if text == "" && eh.baseline != nil {
		text = eh.baseline()
		level = LogLevelInfo
	}
	if eh.currentStatus == "" {
		eh.statusView.SetTextColor(tcell.ColorDefault)
	} else {
		eh.statusView.SetTextColor(eh.colors[level])
	}
	eh.statusView.SetText(text)
}

// Stop cancels the pending auto-clear.
func (eh *ErrorHandler) Stop() {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	if eh.statusTimer != nil {
		eh.statusTimer.Stop()
		eh.statusTimer = nil
	}
}

func levelForKind(kind services.NotifyKind) LogLevel {
	switch kind {
	case services.NotifySuccess:
		return LogLevelSuccess
	case services.NotifyWarning:
		return LogLevelWarning
	case services.NotifyError:
		return LogLevelError
	}
	return LogLevelInfo
}

func formatMessage(msg string, level LogLevel) string {
	var icon string
	switch level {
	case LogLevelInfo:
		icon = "i"
	case LogLevelWarning:
		icon = "!"
	case LogLevelError:
		icon = "x"
	case LogLevelSuccess:
		icon = "+"
	default:
		icon = "*"
	}
	return fmt.Sprintf("[%s] %s", icon, msg)
}

func levelToString(level LogLevel) string {
	switch level {
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarning:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelSuccess:
		return "SUCCESS"
	default:
		return "UNKNOWN"
	}
}
