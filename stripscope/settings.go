package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/stripscope/pkg/config"
	"github.com/itohio/stripscope/pkg/device"
)

// showSettingsDialog displays a settings dialog with tabs for the configuration.
// Tasks are created once at startup, so saved settings apply on the next run.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createGeneratorTab(state),
		createFilterTab(state),
		createMonitorTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(500, 360))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(500, 360))
	d.Show()
}

// saveSettings validates cfg and writes it to the configuration file. On
// failure the previous configuration is restored.
func saveSettings(state *appState, previous config.Config) {
	if err := state.cfg.Validate(); err != nil {
		*state.cfg = previous
		dialog.ShowError(err, state.window)
		return
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	dialog.ShowInformation("Settings", "Saved. Restart to apply.", state.window)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := device.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			previous := *state.cfg
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected
				}
				state.cfg.Serial.Port = selectedPort
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil {
				state.cfg.Serial.BaudRate = baud
			}
			saveSettings(state, previous)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createGeneratorTab creates the signal generator configuration tab.
func createGeneratorTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Generator.Period.String())

	stepEntry := widget.NewEntry()
	stepEntry.SetText(strconv.Itoa(state.cfg.Generator.Step))

	minEntry := widget.NewEntry()
	minEntry.SetText(strconv.Itoa(state.cfg.Generator.Min))

	maxEntry := widget.NewEntry()
	maxEntry.SetText(strconv.Itoa(state.cfg.Generator.Max))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Period", Widget: periodEntry},
			{Text: "Step", Widget: stepEntry},
			{Text: "Min", Widget: minEntry},
			{Text: "Max", Widget: maxEntry},
		},
		OnSubmit: func() {
			previous := *state.cfg
			if period, err := time.ParseDuration(periodEntry.Text); err == nil {
				state.cfg.Generator.Period = period
			}
			if step, err := strconv.Atoi(stepEntry.Text); err == nil {
				state.cfg.Generator.Step = step
			}
			if lo, err := strconv.Atoi(minEntry.Text); err == nil {
				state.cfg.Generator.Min = lo
			}
			if hi, err := strconv.Atoi(maxEntry.Text); err == nil {
				state.cfg.Generator.Max = hi
			}
			saveSettings(state, previous)
		},
	}

	return container.NewTabItem("Generator", form)
}

// createFilterTab creates the filter configuration tab.
func createFilterTab(state *appState) *container.TabItem {
	maxEntry := widget.NewEntry()
	maxEntry.SetText(strconv.Itoa(state.cfg.Filter.MaxWindow))

	initialEntry := widget.NewEntry()
	initialEntry.SetText(strconv.Itoa(state.cfg.Filter.InitialWindow))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Max Window", Widget: maxEntry},
			{Text: "Initial Window", Widget: initialEntry},
		},
		OnSubmit: func() {
			previous := *state.cfg
			if n, err := strconv.Atoi(maxEntry.Text); err == nil {
				state.cfg.Filter.MaxWindow = n
			}
			if n, err := strconv.Atoi(initialEntry.Text); err == nil {
				state.cfg.Filter.InitialWindow = n
			}
			saveSettings(state, previous)
		},
	}

	return container.NewTabItem("Filter", form)
}

// createMonitorTab creates the utilization monitor configuration tab.
func createMonitorTab(state *appState) *container.TabItem {
	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Monitor.Period.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Report Period", Widget: periodEntry},
		},
		OnSubmit: func() {
			previous := *state.cfg
			if period, err := time.ParseDuration(periodEntry.Text); err == nil {
				state.cfg.Monitor.Period = period
			}
			saveSettings(state, previous)
		},
	}

	return container.NewTabItem("Monitor", form)
}
