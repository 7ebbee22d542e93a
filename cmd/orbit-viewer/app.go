package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/time/rate"

	"github.com/unklstewy/orbit-globe/internal/observability"
	"github.com/unklstewy/orbit-globe/internal/render"
	"github.com/unklstewy/orbit-globe/pkg/camera"
	"github.com/unklstewy/orbit-globe/pkg/catalog"
	"github.com/unklstewy/orbit-globe/pkg/config"
	"github.com/unklstewy/orbit-globe/pkg/gfx/soft"
	"github.com/unklstewy/orbit-globe/pkg/orbit"
)

// AppConfig holds what the viewer needs at startup
type AppConfig struct {
	Config     *config.Config
	ConfigPath string
	Catalog    *orbit.Catalog
	Engine     *render.Engine
	Backend    *soft.Backend
	Metrics    *observability.RenderCollector
	Logs       *LogManager
}

// App represents the main application
type App struct {
	config     *config.Config
	configPath string
	catalog    *orbit.Catalog
	controller *camera.Controller

	tviewApp   *tview.Application
	globe      *GlobeView
	filters    *FilterPanel
	telemetry  *tview.TextView
	controls   *tview.TextView
	logs       *LogManager
	sidebar    *tview.Flex
	rootLayout *tview.Flex

	showSidebar bool
	limiter     *rate.Limiter
	cancel      context.CancelFunc
}

// NewApp creates a new application instance
func NewApp(cfg *AppConfig) *App {
	a := &App{
		config:      cfg.Config,
		configPath:  cfg.ConfigPath,
		catalog:     cfg.Catalog,
		controller:  camera.NewController(cfg.Config.Camera.State(), cfg.Config.Camera.Limits()),
		logs:        cfg.Logs,
		showSidebar: cfg.Config.Viewer.ShowSidebar,
		limiter:     rate.NewLimiter(rate.Every(time.Second/time.Duration(max(cfg.Config.Viewer.FPS, 1))), 1),
	}
	if a.logs == nil {
		a.logs = NewLogManager(200)
	}

	a.tviewApp = tview.NewApplication().EnableMouse(true)
	a.globe = NewGlobeView(cfg.Engine, cfg.Backend, a.controller, cfg.Metrics)
	a.filters = NewFilterPanel(catalog.CatalogFilters(cfg.Catalog), a.controller)
	a.filters.onChange = func(sel camera.Selection) {
		a.logs.Debug("Selection: %s %s", sel.Mode(), strings.Join(sel.Sets(), ","))
	}
	a.createTelemetryPanel()
	a.createControlsPanel()
	a.createLayout()

	a.tviewApp.SetInputCapture(a.handleKeyboard)
	return a
}

func (a *App) createTelemetryPanel() {
	a.telemetry = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.telemetry.SetBorder(true).SetTitle(" Telemetry ")
}

func (a *App) createControlsPanel() {
	a.controls = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	a.controls.SetBorder(true).SetTitle(" Controls ")

	a.controls.SetText(`[yellow]CAMERA[-]
  [white]drag, ←↑↓→[-] Rotate
  [white]wheel, +/-[-] Zoom
  [white]r[-]          Reset

[yellow]CATEGORIES[-]
  [white]ENTER[-]      Toggle
  [white]a[-]          Show all
  [white]n[-]          Dim all
  [white]w[-]          Save highlight

[yellow]VIEW[-]
  [white]TAB[-]        Switch focus
  [white]s[-]          Sidebar
  [white]q[-]          Quit`)
}

func (a *App) createLayout() {
	a.sidebar = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.filters.View(), 0, 4, false).
		AddItem(a.telemetry, 9, 0, false).
		AddItem(a.controls, 0, 3, false).
		AddItem(a.logs.View(), 0, 3, false)

	a.rootLayout = tview.NewFlex().SetDirection(tview.FlexColumn)
	a.layout()
	a.tviewApp.SetRoot(a.rootLayout, true).SetFocus(a.globe)
}

func (a *App) layout() {
	a.rootLayout.Clear()
	a.rootLayout.AddItem(a.globe, 0, 7, true)
	if a.showSidebar {
		a.rootLayout.AddItem(a.sidebar, 0, 3, false)
	}
}

// TelemetryText formats the telemetry panel.
func TelemetryText(state camera.State, frame render.FrameStats, c *orbit.Catalog, fps float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]CAMERA[-]\n")
	fmt.Fprintf(&b, "[gray]Dist:[-]  [white]%.0f km[-]\n", state.Distance)
	fmt.Fprintf(&b, "[gray]Pitch:[-] [white]%.1f°[-] [gray]Yaw:[-] [white]%.1f°[-]\n", state.Pitch, state.Yaw)
	fmt.Fprintf(&b, "[gray]Show:[-]  [white]%s[-]\n", state.Selection.Mode())
	fmt.Fprintf(&b, "[yellow]FRAME[-] [white]%dx%d[-] [gray]≤%.0f fps[-]\n", frame.Width, frame.Height, fps)
	fmt.Fprintf(&b, "[gray]Draw:[-]  [white]%s[-]\n", frame.Duration.Round(time.Microsecond))
	fmt.Fprintf(&b, "[gray]Sats:[-]  [white]%d[-] [gray]epoch %s[-]", c.Len(), c.Epoch().UTC().Format("2006-01-02 15:04"))
	return b.String()
}

func (a *App) updateTelemetry() {
	a.telemetry.SetText(TelemetryText(a.controller.Snapshot(), a.globe.LastFrame(), a.catalog, float64(a.limiter.Limit())))
}

// handleKeyboard handles keys that work regardless of focus
func (a *App) handleKeyboard(event *tcell.EventKey) *tcell.EventKey {
	key := event.Key()
	r := event.Rune()

	switch {
	case key == tcell.KeyEscape || r == 'q':
		a.Stop()
		return nil
	case key == tcell.KeyTab:
		if a.tviewApp.GetFocus() == a.globe && a.showSidebar {
			a.tviewApp.SetFocus(a.filters.View())
		} else {
			a.tviewApp.SetFocus(a.globe)
		}
		return nil
	case r == '+' || r == '=':
		a.controller.Scroll(ScrollStep)
		return nil
	case r == '-':
		a.controller.Scroll(-ScrollStep)
		return nil
	case r == 'r':
		a.controller.Reset()
		a.logs.Info("Camera reset")
		return nil
	case r == 'a':
		a.controller.ShowAll()
		a.filters.Refresh()
		return nil
	case r == 'n':
		a.controller.HideAll()
		a.filters.Refresh()
		return nil
	case r == 'w':
		a.saveHighlight()
		return nil
	case r == 's':
		a.showSidebar = !a.showSidebar
		a.layout()
		if !a.showSidebar {
			a.tviewApp.SetFocus(a.globe)
		}
		return nil
	}

	return event
}

// saveHighlight writes the current selection back into the config file.
func (a *App) saveHighlight() {
	sel := a.controller.Snapshot().Selection
	a.config.Camera.SetSelection(sel)
	if err := a.config.Save(a.configPath); err != nil {
		a.logs.Error("Failed to save config: %v", err)
		return
	}
	a.logs.Info("Saved selection %s (%d highlighted) to %s", sel.Mode(), len(sel.Sets()), a.configPath)
}

// Run starts the frame pacing loop and the UI
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	defer cancel()

	go a.paceFrames(ctx)

	a.logs.Info("Showing %d satellites in %d categories", a.catalog.Len(), len(a.catalog.Sets()))
	return a.tviewApp.Run()
}

// paceFrames requests a redraw at the configured frame rate. Rendering
// itself happens in the tview goroutine.
func (a *App) paceFrames(ctx context.Context) {
	for {
		if err := a.limiter.Wait(ctx); err != nil {
			return
		}
		a.tviewApp.QueueUpdateDraw(a.updateTelemetry)
	}
}

// Stop stops the application
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.tviewApp.Stop()
}
