// Package tray provides the system tray menu for mudra.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle       func(enabled bool)
	onMirror       func(mirrored bool)
	onResetQuality func()
	onSettings     func()
	onQuit         func()
	enabled        bool
	mirrored       bool
	lastGesture    string
	quality        string
	mu             sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuMirror      *systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuQuality     *systray.MenuItem
}

// New creates a new Tray with recognition enabled and the given mirror
// state.
func New(mirrored bool) *Tray {
	return &Tray{
		enabled:  true,
		mirrored: mirrored,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnMirror sets the callback for the mirror checkbox.
func (t *Tray) OnMirror(fn func(mirrored bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMirror = fn
}

// OnResetQuality sets the callback for the reset quality item.
func (t *Tray) OnResetQuality(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResetQuality = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray loop started by Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("mudra")
	systray.SetTooltip("mudra hand gesture input")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture recognition")
	t.menuMirror = systray.AddMenuItemCheckbox("Mirror camera", "Flip the horizontal axis", t.mirrored)
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem(gestureTitle(t.lastGesture), "Last detected gesture")
	t.menuLastGesture.Disable()
	t.menuQuality = systray.AddMenuItem(qualityTitle(t.quality), "Current capture quality")
	t.menuQuality.Disable()
	t.mu.Unlock()

	menuReset := systray.AddMenuItem("Reset quality", "Restore default quality settings")
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuMirror.ClickedCh:
				t.handleMirror()
			case <-menuReset.ClickedCh:
				t.handleResetQuality()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle flips the enabled state and notifies the toggle callback.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleMirror() {
	t.mu.Lock()
	t.mirrored = !t.mirrored
	mirrored := t.mirrored
	if t.menuMirror != nil {
		if mirrored {
			t.menuMirror.Check()
		} else {
			t.menuMirror.Uncheck()
		}
	}
	callback := t.onMirror
	t.mu.Unlock()

	if callback != nil {
		callback(mirrored)
	}
}

func (t *Tray) handleResetQuality() {
	t.mu.RLock()
	callback := t.onResetQuality
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetLastGesture updates the last gesture display in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastGesture = name
	if t.menuLastGesture != nil {
		t.menuLastGesture.SetTitle(gestureTitle(name))
	}
}

// SetQuality updates the quality line, e.g. "960x720 hands=2".
func (t *Tray) SetQuality(summary string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.quality = summary
	if t.menuQuality != nil {
		t.menuQuality.SetTitle(qualityTitle(summary))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// IsMirrored returns the current mirror state.
func (t *Tray) IsMirrored() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mirrored
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func gestureTitle(name string) string {
	if name == "" {
		return "Last: none"
	}
	return "Last: " + name
}

func qualityTitle(summary string) string {
	if summary == "" {
		return "Quality: default"
	}
	return "Quality: " + summary
}
