package window

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/oshokin/alert-monitor/internal/viewmodel"
)

// Config defines main window visuals.
type Config struct {
	Title  string
	Width  float32
	Height float32
}

// Window is the main window bound to a MainWindow view-model.
type Window struct {
	window      fyne.Window
	viewModel   *viewmodel.MainWindow
	indicator   *canvas.Rectangle
	greeting    *widget.Label
	status      *widget.Label
	unsubscribe func()
}

// New creates the main window. Bindings are refreshed from property
// notifications, which arrive on the fyne main goroutine.
func New(app fyne.App, viewModel *viewmodel.MainWindow, config Config) *Window {
	window := app.NewWindow(config.Title)
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	indicator := canvas.NewRectangle(viewModel.AlertColor())
	indicator.CornerRadius = 8

	greeting := widget.NewLabelWithStyle(viewModel.Greeting(), fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	status := widget.NewLabelWithStyle("Waiting for the first sample...", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	content := container.NewBorder(nil, status, nil, nil,
		container.NewStack(indicator, container.NewCenter(greeting)),
	)
	window.SetContent(content)
	window.Resize(fyne.NewSize(config.Width, config.Height))

	mainWindow := &Window{
		window:    window,
		viewModel: viewModel,
		indicator: indicator,
		greeting:  greeting,
		status:    status,
	}
	mainWindow.unsubscribe = viewModel.OnPropertyChanged(mainWindow.handlePropertyChanged)

	return mainWindow
}

// Show displays the window.
func (mainWindow *Window) Show() {
	mainWindow.window.Show()
}

// ShowAndRun displays the window and runs the fyne event loop.
func (mainWindow *Window) ShowAndRun() {
	mainWindow.window.ShowAndRun()
}

// SetOnClose replaces the default close behaviour. The window stays open
// until fn closes it.
func (mainWindow *Window) SetOnClose(fn func()) {
	mainWindow.window.SetCloseIntercept(fn)
}

// Close detaches the bindings and closes the window.
func (mainWindow *Window) Close() {
	mainWindow.unsubscribe()
	mainWindow.window.Close()
}

// IndicatorColor returns the brush currently painted.
func (mainWindow *Window) IndicatorColor() color.Color {
	return mainWindow.indicator.FillColor
}

func (mainWindow *Window) handlePropertyChanged(property viewmodel.Property) {
	switch property {
	case viewmodel.PropertyAlertColor:
		mainWindow.indicator.FillColor = mainWindow.viewModel.AlertColor()
		mainWindow.indicator.Refresh()
	case viewmodel.PropertyGreeting:
		mainWindow.greeting.SetText(mainWindow.viewModel.Greeting())
	case viewmodel.PropertyReading:
		reading := mainWindow.viewModel.Reading()
		mainWindow.status.SetText(fmt.Sprintf("#%d  %.3f  %s  at %s",
			reading.Sequence, reading.Value, reading.Level, reading.Timestamp.Format(time.TimeOnly)))
	case viewmodel.PropertyAlertLevel:
	}
}
