// Package navigation builds the link descriptors the catalog view renders.
//
// A Descriptor names a target mode or action, an optional window state and a
// parameter set. Mode and window-state changes the host does not support are
// dropped silently, leaving the descriptor unset for that field.
package navigation

import (
	"net/url"
	"slices"

	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
)

// Parameter names shared with the request handlers.
const (
	ParamMode        = "mode"
	ParamWindowState = "window"
	ParamMyAction    = "myaction"
	ParamActionName  = "action"
	ParamISBN        = "isbnNumber"
)

// Kind distinguishes render links from action submit targets.
type Kind int

const (
	KindRender Kind = iota
	KindAction
)

// Host reports which modes and window states the hosting portal supports.
type Host interface {
	ModeAllowed(m modes.Mode) bool
	WindowStateAllowed(w modes.WindowState) bool
}

// Capabilities is a Host backed by fixed lists, usually taken from config.
type Capabilities struct {
	Modes        []modes.Mode
	WindowStates []modes.WindowState
}

func (c Capabilities) ModeAllowed(m modes.Mode) bool {
	return slices.Contains(c.Modes, m)
}

func (c Capabilities) WindowStateAllowed(w modes.WindowState) bool {
	return slices.Contains(c.WindowStates, w)
}

// Target is what a caller asks the factory for.
type Target struct {
	Kind        Kind
	Mode        modes.Mode
	WindowState modes.WindowState
	Action      modes.ActionName
	Params      url.Values
}

// Descriptor is an immutable navigation descriptor. Build it through Factory.
type Descriptor struct {
	kind        Kind
	mode        modes.Mode
	windowState modes.WindowState
	action      modes.ActionName
	params      url.Values
}

func (d Descriptor) Kind() Kind                     { return d.kind }
func (d Descriptor) Mode() modes.Mode               { return d.mode }
func (d Descriptor) WindowState() modes.WindowState { return d.windowState }
func (d Descriptor) Action() modes.ActionName       { return d.action }

// Params returns a copy of the descriptor parameters.
func (d Descriptor) Params() url.Values {
	return cloneValues(d.params)
}

// Factory builds descriptors rooted at BasePath.
type Factory struct {
	BasePath string
	Host     Host
}

func NewFactory(basePath string, host Host) *Factory {
	return &Factory{BasePath: basePath, Host: host}
}

// Build turns a target into a descriptor, omitting unsupported mode and
// window-state changes.
func (f *Factory) Build(t Target) Descriptor {
	d := Descriptor{
		kind:   t.Kind,
		action: t.Action,
		params: cloneValues(t.Params),
	}
	if t.Mode != "" && f.Host != nil && f.Host.ModeAllowed(t.Mode) {
		d.mode = t.Mode
	}
	if t.WindowState != "" && f.Host != nil && f.Host.WindowStateAllowed(t.WindowState) {
		d.windowState = t.WindowState
	}
	return d
}

// URL renders the descriptor relative to the factory base path. Render links
// go to BasePath, action targets to BasePath/action.
func (f *Factory) URL(d Descriptor) string {
	q := url.Values{}
	for k, vs := range d.params {
		q[k] = append([]string(nil), vs...)
	}
	if d.mode != "" {
		q.Set(ParamMode, d.mode.String())
	}
	if d.windowState != "" {
		q.Set(ParamWindowState, d.windowState.String())
	}

	path := f.BasePath
	if d.kind == KindAction {
		path += "/action"
		if d.action != "" {
			q.Set(ParamActionName, d.action.String())
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
