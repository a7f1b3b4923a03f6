// Package modes holds the closed sets of presentation modes, window states,
// sticky action states and inbound action names understood by the catalog.
//
// Every set has a total Parse function: recognized wire strings map to a
// variant, anything else reports ok=false so the caller can fall back to a
// safe default.
package modes

import "strings"

// Mode is a presentation mode requested by the hosting portal.
type Mode string

const (
	ModeView  Mode = "view"
	ModeEdit  Mode = "edit"
	ModeHelp  Mode = "help"
	ModePrint Mode = "print"
)

// Modes lists every mode implemented here, in display order.
var Modes = []Mode{ModeView, ModeEdit, ModeHelp, ModePrint}

// ParseMode maps a wire value to a Mode. Unrecognized values return ModeView
// and false.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view":
		return ModeView, true
	case "edit":
		return ModeEdit, true
	case "help":
		return ModeHelp, true
	case "print":
		return ModePrint, true
	default:
		return ModeView, false
	}
}

func (m Mode) String() string { return string(m) }

// WindowState is the display state the portal renders the catalog window in.
type WindowState string

const (
	WindowNormal    WindowState = "normal"
	WindowMaximized WindowState = "maximized"
	WindowMinimized WindowState = "minimized"
	WindowPopUp     WindowState = "pop_up"
)

// WindowStates lists every window state known here.
var WindowStates = []WindowState{WindowNormal, WindowMaximized, WindowMinimized, WindowPopUp}

// ParseWindowState maps a wire value to a WindowState. Unrecognized values
// return WindowNormal and false.
func ParseWindowState(s string) (WindowState, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return WindowNormal, true
	case "maximized":
		return WindowMaximized, true
	case "minimized":
		return WindowMinimized, true
	case "pop_up", "popup":
		return WindowPopUp, true
	default:
		return WindowNormal, false
	}
}

func (w WindowState) String() string { return string(w) }
