package tui

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/ajramos/maildash/internal/services"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorHandler(t *testing.T) {
	app := tview.NewApplication()
	statusView := tview.NewTextView()
	logger := log.New(&bytes.Buffer{}, "", 0)

	eh := NewErrorHandler(app, statusView, logger)

	require.NotNil(t, eh)
	assert.Equal(t, app, eh.app)
	assert.Equal(t, statusView, eh.statusView)
	assert.Equal(t, logger, eh.logger)
	assert.Empty(t, eh.currentStatus)
	assert.Len(t, eh.colors, 4)
}

func TestNewErrorHandler_NilInputs(t *testing.T) {
	eh := NewErrorHandler(nil, nil, nil)

	require.NotNil(t, eh)
	assert.NotPanics(t, func() {
		eh.ShowInfo("hello")
		eh.HandleError(errors.New("boom"), "")
		eh.Notify(services.NotifyError, "remote failed")
		eh.Refresh()
		eh.Stop()
	})
}

func TestErrorHandler_HandleError(t *testing.T) {
	var buf bytes.Buffer
	eh := NewErrorHandler(nil, nil, log.New(&buf, "", 0))

	eh.HandleError(nil, "ignored")
	assert.Empty(t, buf.String())

	eh.HandleError(errors.New("dial tcp: refused"), "Server unreachable")
	assert.Contains(t, buf.String(), "ERROR: dial tcp: refused")
}

func TestErrorHandler_NotifyLogsWithLevel(t *testing.T) {
	tests := []struct {
		kind services.NotifyKind
		want string
	}{
		{services.NotifyInfo, "INFO: loaded"},
		{services.NotifySuccess, "SUCCESS: loaded"},
		{services.NotifyWarning, "WARN: loaded"},
		{services.NotifyError, "ERROR: loaded"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			var buf bytes.Buffer
			eh := NewErrorHandler(nil, nil, log.New(&buf, "", 0))
			eh.Notify(tt.kind, "loaded")
			assert.Equal(t, tt.want+"\n", buf.String())
		})
	}
}

func TestErrorHandler_ShowMessage_EmptyMessage(t *testing.T) {
	var buf bytes.Buffer
	eh := NewErrorHandler(nil, nil, log.New(&buf, "", 0))

	eh.ShowMessage("   ", LogLevelWarning)
	assert.Empty(t, buf.String())
}

func TestLevelForKind(t *testing.T) {
	assert.Equal(t, LogLevelInfo, levelForKind(services.NotifyInfo))
	assert.Equal(t, LogLevelSuccess, levelForKind(services.NotifySuccess))
	assert.Equal(t, LogLevelWarning, levelForKind(services.NotifyWarning))
	assert.Equal(t, LogLevelError, levelForKind(services.NotifyError))
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogLevelInfo, "[i] msg"},
		{LogLevelWarning, "[!] msg"},
		{LogLevelError, "[x] msg"},
		{LogLevelSuccess, "[+] msg"},
		{LogLevel(99), "[*] msg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMessage("msg", tt.level))
	}
}

func TestLevelToString(t *testing.T) {
	assert.Equal(t, "INFO", levelToString(LogLevelInfo))
	assert.Equal(t, "WARN", levelToString(LogLevelWarning))
	assert.Equal(t, "ERROR", levelToString(LogLevelError))
	assert.Equal(t, "SUCCESS", levelToString(LogLevelSuccess))
	assert.Equal(t, "UNKNOWN", levelToString(LogLevel(42)))
}

func TestErrorHandler_RefreshShowsBaseline(t *testing.T) {
	statusView := tview.NewTextView()
	eh := NewErrorHandler(nil, statusView, nil)
	eh.SetBaseline(func() string { return "maildash | a@x.com" })

	eh.Refresh()
	assert.Equal(t, "maildash | a@x.com", strings.TrimSpace(statusView.GetText(false)))

	// no dynamic colors on the status bar, so brackets are kept verbatim
	eh.currentStatus = "[x] failed"
	eh.Refresh()
	assert.Equal(t, "[x] failed", strings.TrimSpace(statusView.GetText(false)))
}

func TestErrorHandler_SetLevelColor(t *testing.T) {
	eh := NewErrorHandler(nil, nil, nil)
	eh.SetLevelColor(LogLevelError, tcell.ColorPurple)
	assert.Equal(t, tcell.ColorPurple, eh.colors[LogLevelError])
}

func TestErrorHandler_ConcurrentNotify(t *testing.T) {
	var buf bytes.Buffer
	eh := NewErrorHandler(nil, nil, log.New(&buf, "", 0))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			eh.Notify(services.NotifyInfo, "tick")
			eh.SetLevelColor(LogLevelInfo, tcell.ColorBlue)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, bytes.Count(buf.Bytes(), []byte("INFO: tick")))
}
