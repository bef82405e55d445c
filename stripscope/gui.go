package main

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/itohio/stripscope/pkg/config"
	"github.com/itohio/stripscope/pkg/device"
	"github.com/itohio/stripscope/pkg/filter"
	"github.com/itohio/stripscope/pkg/pipeline"
	"github.com/itohio/stripscope/pkg/rtos"
	"github.com/itohio/stripscope/pkg/scope"
)

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	device     device.Device
	pipeline   *pipeline.Pipeline
	chart      *scope.StripChart
	buttons    *rtos.ByteRing

	window      fyne.Window
	connectBtn  *widget.Button
	windowLabel *widget.Label

	// Window length as requested through the toolbar. Bytes arriving over
	// the serial port are not reflected here.
	requested *filter.Window
}

// runGUI shows the strip chart and runs the pipeline until the window is
// closed, ctx is cancelled or the pipeline halts.
func runGUI(ctx context.Context, state *appState) error {
	application := app.NewWithID("com.itohio.stripscope")

	window := application.NewWindow("Strip Scope")
	window.Resize(fyne.NewSize(800, 260))
	window.CenterOnScreen()
	state.window = window
	state.requested = filter.NewWindow(state.cfg.Filter.MaxWindow, state.cfg.Filter.InitialWindow)

	toolbar := createToolbar(state)
	window.SetContent(container.NewBorder(toolbar, nil, nil, nil, state.chart))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		err := state.pipeline.Run(ctx)
		result <- err
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, window)
				return
			}
			application.Quit()
		})
	}()

	window.SetOnClosed(cancel)
	window.ShowAndRun()

	cancel()
	return <-result
}

// createToolbar creates the toolbar with Connect, Settings and window length buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LogoutIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	decreaseBtn := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), func() {
		sendCommand(state, filter.CmdDecrease)
	})
	increaseBtn := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		sendCommand(state, filter.CmdIncrease)
	})
	state.windowLabel = widget.NewLabel("")
	updateWindowLabel(state)

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn),                     // left
		container.NewHBox(decreaseBtn, state.windowLabel, increaseBtn), // right
		nil, // center (spacer)
	)
}

// handleConnect toggles the device connection. The pipeline keeps running
// while disconnected; reports are dropped.
func handleConnect(state *appState) {
	if state.device.IsConnected() {
		if err := state.device.Close(); err != nil {
			dialog.ShowError(fmt.Errorf("failed to disconnect: %w", err), state.window)
			return
		}
		state.connectBtn.SetIcon(theme.LoginIcon())
		return
	}

	if err := state.device.Connect(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		return
	}
	state.connectBtn.SetIcon(theme.LogoutIcon())
}

// sendCommand queues a window command for the filter task.
func sendCommand(state *appState, cmd byte) {
	if !state.buttons.Push(cmd) {
		log.WithFields(log.Fields{
			"Method": "sendCommand",
			"Action": "Drop",
		}).Warn("Command ring full")
		return
	}
	state.requested.Apply(cmd)
	updateWindowLabel(state)
}

func updateWindowLabel(state *appState) {
	state.windowLabel.SetText(fmt.Sprintf("N=%d", state.requested.Len()))
}
