// Package actionstate tracks the sticky "current action" of a catalog session.
//
// The state is a re-enterable value rather than a pipeline: every render
// request either supplies a recognized action, which replaces the stored one,
// or keeps whatever the session already holds. The machine performs no
// locking; concurrent requests on one session are last-writer-wins.
package actionstate

import (
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
	"github.com/lehigh-university-libraries/bookcatalog/internal/modes"
)

// Inbound carries the request values the machine looks at.
type Inbound struct {
	// Action is the raw "myaction" parameter; empty when absent.
	Action string
	// ISBN identifies the book a TOC upload is being declared for.
	ISBN string
}

// Machine applies transitions to a session.
type Machine struct{}

func New() *Machine {
	return &Machine{}
}

// Current returns the stored state, defaulting to ShowCatalog.
func (m *Machine) Current(s *models.Session) modes.ActionState {
	if s == nil || s.Action == "" {
		return modes.DefaultActionState
	}
	return s.Action
}

// Transition resolves the action state for a render request and stores it.
// Unrecognized inbound values are treated as absent. A nil session resolves
// the state without storing anything.
func (m *Machine) Transition(s *models.Session, in Inbound) modes.ActionState {
	state := m.Current(s)
	next, ok := modes.ParseActionState(in.Action)
	if ok {
		state = next
	} else if in.Action != "" {
		slog.Debug("Ignoring unrecognized action", "myaction", in.Action, "sticky", state)
	}
	if s == nil {
		return state
	}

	s.Action = state

	// An explicit uploadTocForm declares the target that the following
	// uploadTocAction writes against. A sticky one keeps the declared target.
	if ok && state == modes.UploadTocForm {
		s.PendingISBN = strings.TrimSpace(in.ISBN)
	}
	return state
}

// Apply stores the state produced by an action request. A nil session is
// left alone.
func (m *Machine) Apply(s *models.Session, state modes.ActionState) modes.ActionState {
	if state == "" {
		state = modes.DefaultActionState
	}
	if s != nil {
		s.Action = state
	}
	return state
}
