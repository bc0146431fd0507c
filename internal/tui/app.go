package tui

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ajramos/maildash/internal/config"
	"github.com/ajramos/maildash/internal/dashboard"
	"github.com/ajramos/maildash/internal/mailbox"
	"github.com/ajramos/maildash/internal/render"
	"github.com/ajramos/maildash/internal/services"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// Page names.
const (
	pageMain    = "main"
	pageCompose = "compose"
	pageModal   = "modal"
	pageConfirm = "confirm"
)

// App is the terminal dashboard. It renders controller snapshots and turns
// key presses into controller calls; it holds no mail state of its own.
type App struct {
	*tview.Application
	Pages  *tview.Pages
	Config *config.Config
	Keys   config.KeyBindings

	ctl    *dashboard.Controller
	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time

	mu       sync.RWMutex
	snapshot dashboard.Snapshot
	views    map[string]tview.Primitive
	// rows maps table rows to the messages (or templates) they show.
	rows        []mailbox.Message
	templates   []mailbox.Template
	showHelp    bool
	modalOpen   bool
	confirmID   string
	composeOpen bool
	inflight    sync.WaitGroup

	emailRenderer *render.EmailRenderer
	theme         *config.ColorsConfig
	themes        *services.ThemeServiceImpl
	compose       *composeView
	errorHandler  *ErrorHandler
	logger        *log.Logger
}

// NewApp creates the application and its views. Call SetController before Run.
func NewApp(cfg *config.Config, logger *log.Logger) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		Application:   tview.NewApplication(),
		Pages:         tview.NewPages(),
		Config:        cfg,
		Keys:          cfg.Keys,
		ctx:           ctx,
		cancel:        cancel,
		now:           time.Now,
		views:         make(map[string]tview.Primitive),
		emailRenderer: render.NewEmailRenderer(),
		logger:        logger,
	}
	a.emailRenderer.SetPreview(cfg.UI.ShowPreview, cfg.UI.PreviewLength)

	a.initViews()
	a.errorHandler = NewErrorHandler(a.Application, a.statusView(), logger)
	a.errorHandler.SetBaseline(a.statusBaseline)
	a.applyTheme()
	a.themes = services.NewThemeService(cfg.ThemesDir(), cfg.Layout.CurrentTheme)
	a.themes.SetLogger(logger)
	_ = a.themes.RegisterComponent("app", func(theme *config.ColorsConfig) error {
		a.applyThemeConfig(theme)
		return nil
	})
	a.bindKeys()

	return a
}

// ErrorHandler returns the notification sink handed to the controller.
func (a *App) ErrorHandler() *ErrorHandler {
	return a.errorHandler
}

// SetController attaches the dashboard controller and subscribes to its
// snapshots.
func (a *App) SetController(ctl *dashboard.Controller) {
	a.ctl = ctl
	ctl.OnChange(func(s dashboard.Snapshot) {
		a.QueueUpdateDraw(func() { a.applySnapshot(s) })
	})
}

// Run loads the dashboard in the background and blocks until the user quits.
func (a *App) Run() error {
	if a.ctl == nil {
		return fmt.Errorf("tui: no controller attached")
	}
	a.SetRoot(a.Pages, true)
	a.SetFocus(a.views["list"])
	if text, ok := a.views["text"].(*tview.TextView); ok {
		text.SetText(welcomeText(a.ctl.Account(), stateLoading, a.Keys))
	}
	a.errorHandler.ShowInfo(fmt.Sprintf("Loading mailbox for %s...", a.ctl.Account()))
	a.dispatch("start", func(ctx context.Context) error {
		a.ctl.Start(ctx)
		return nil
	})

	err := a.Application.Run()
	a.cancel()
	a.inflight.Wait()
	a.errorHandler.Stop()
	return err
}

// Quit stops the application.
func (a *App) Quit() {
	a.cancel()
	a.Stop()
}

// dispatch runs a controller call off the UI goroutine. Errors were already
// notified by the controller; they are only logged here.
func (a *App) dispatch(op string, fn func(ctx context.Context) error) {
	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()
		if err := fn(a.ctx); err != nil && a.logger != nil {
			a.logger.Printf("TUI: %s: %v", op, err)
		}
	}()
}

// current returns the last snapshot applied to the views.
func (a *App) current() dashboard.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// selectedMessage is the message under the list cursor.
func (a *App) selectedMessage() (mailbox.Message, bool) {
	table, ok := a.views["list"].(*tview.Table)
	if !ok {
		return mailbox.Message{}, false
	}
	row, _ := table.GetSelection()
	a.mu.RLock()
	defer a.mu.RUnlock()
	if row < 0 || row >= len(a.rows) {
		return mailbox.Message{}, false
	}
	return a.rows[row], true
}

// selectedTemplate is the template under the cursor in the templates folder.
func (a *App) selectedTemplate() (mailbox.Template, bool) {
	table, ok := a.views["list"].(*tview.Table)
	if !ok {
		return mailbox.Template{}, false
	}
	row, _ := table.GetSelection()
	a.mu.RLock()
	defer a.mu.RUnlock()
	if row < 0 || row >= len(a.templates) {
		return mailbox.Template{}, false
	}
	return a.templates[row], true
}

func (a *App) applyTheme() {
	theme, err := config.NewThemeLoader(a.Config.ThemesDir()).LoadTheme(a.Config.Layout.CurrentTheme)
	if err != nil {
		if a.logger != nil {
			a.logger.Printf("TUI: theme %q not loaded: %v", a.Config.Layout.CurrentTheme, err)
		}
		theme = config.DefaultColors()
	}
	a.applyThemeConfig(theme)
}

func (a *App) applyThemeConfig(theme *config.ColorsConfig) {
	a.theme = theme
	a.emailRenderer.Colorer().UpdateFromStyles(theme)

	a.errorHandler.SetLevelColor(LogLevelInfo, theme.Status.InfoColor.Color())
	a.errorHandler.SetLevelColor(LogLevelSuccess, theme.Status.SuccessColor.Color())
	a.errorHandler.SetLevelColor(LogLevelWarning, theme.Status.WarningColor.Color())
	a.errorHandler.SetLevelColor(LogLevelError, theme.Status.ErrorColor.Color())

	tview.Styles.PrimitiveBackgroundColor = theme.Body.BgColor.Color()
	tview.Styles.PrimaryTextColor = theme.Body.FgColor.Color()
	tview.Styles.BorderColor = theme.Frame.Border.FgColor.Color()
	tview.Styles.TitleColor = theme.Frame.Title.FgColor.Color()

	for _, name := range []string{"folders", "list", "header", "text", "status"} {
		if box, ok := a.views[name].(interface {
			SetBackgroundColor(tcell.Color) *tview.Box
		}); ok {
			box.SetBackgroundColor(tview.Styles.PrimitiveBackgroundColor)
		}
	}
	if list, ok := a.views["list"].(*tview.Table); ok {
		list.SetBorderColor(tview.Styles.BorderColor)
		list.SetSelectedStyle(tcell.StyleDefault.
			Background(theme.Frame.Border.FocusColor.Color()).
			Foreground(theme.Body.FgColor.Color()))
	}
}

// notify is a shortcut for UI-originated messages.
func (a *App) notify(kind services.NotifyKind, text string) {
	a.errorHandler.Notify(kind, text)
}
