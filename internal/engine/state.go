package engine

import (
	"github.com/roach88/livestyle/internal/event"
	"github.com/roach88/livestyle/internal/model"
	"github.com/roach88/livestyle/internal/remoteview"
	"github.com/roach88/livestyle/internal/session"
)

// State is the top-level state tree.
type State struct {
	Sessions *session.Set
	Model    *model.Model
	UI       *remoteview.UI
}

// NewState returns the empty tree the engine starts from.
func NewState() *State {
	return &State{
		Sessions: session.Empty(),
		Model:    &model.Model{},
		UI:       &remoteview.UI{},
	}
}

func (s *State) withSessions(next *session.Set) *State {
	if next == s.Sessions {
		return s
	}
	c := *s
	c.Sessions = next
	return &c
}

func (s *State) withModel(next *model.Model) *State {
	if next == s.Model {
		return s
	}
	c := *s
	c.Model = next
	return &c
}

func (s *State) withUI(next *remoteview.UI) *State {
	if next == s.UI {
		return s
	}
	c := *s
	c.UI = next
	return &c
}

// Reduce applies ev to s and returns the resulting tree, or s itself when
// the event changed nothing.
//
// A model update also derives the remote-view message for the new model and
// pushes it onto the message queue. Nothing flows the other way.
func Reduce(s *State, ev event.Event) *State {
	if s == nil {
		s = NewState()
	}
	sessions := s.Sessions
	switch e := ev.(type) {
	case event.UpdateList:
		return s.withSessions(sessions.ReplaceAll(sessions.FromSeeds(e.Sessions)))
	case event.SetCSSOMStylesheets:
		return s.withSessions(sessions.SetCSSOMStylesheets(e.Tab, e.Items))
	case event.SetDevtoolsStylesheets:
		return s.withSessions(sessions.SetDevtoolsStylesheets(e.Tab, e.Items))
	case event.UpdateDevtoolsStylesheet:
		return s.withSessions(sessions.UpdateDevtoolsStylesheet(e.Tab, e.URL, e.Content))
	case event.UpdateAutoMapping:
		return s.withSessions(sessions.SetAutoMapping(e.Tab, e.Mapping))
	case event.UpdateUserMapping:
		return s.withSessions(sessions.SetUserMapping(e.Tab, e.Mapping))
	case event.SaveResourcePatches:
		return s.withSessions(sessions.SavePatches(e.Tab, e.URI, e.Patches))
	case event.ResetResourcePatches:
		return s.withSessions(sessions.ResetPatches(e.Tab, e.URI))

	case event.ModelUpdate:
		m := e.Model.Clone()
		next := s.withModel(m)
		return next.withUI(next.UI.PushMessage(remoteview.DeriveMessage(m)))
	case event.ToggleEnabled:
		enabled := !s.Model.Enabled
		if e.Enabled != nil {
			enabled = *e.Enabled
		}
		return s.withModel(s.Model.SetEnabled(enabled))
	case event.UpdateFileMapping:
		return s.withModel(s.Model.SetFileMapping(e.Browser, e.Editor))
	case event.UpdateDirection:
		return s.withModel(s.Model.SetDirection(e.Direction))

	case event.ToggleActivePicker:
		return s.withUI(s.UI.ToggleActivePicker(e.Picker))
	case event.ResetActivePicker:
		return s.withUI(s.UI.ResetActivePicker())
	case event.ExpandDescription:
		return s.withUI(s.UI.ExpandDescription())
	case event.CollapseDescription:
		return s.withUI(s.UI.CollapseDescription())
	case event.DescriptionTransitionComplete:
		return s.withUI(s.UI.CompleteDescriptionTransition())
	case event.PushMessage:
		return s.withUI(s.UI.PushMessage(e.Message))
	case event.ShiftMessage:
		return s.withUI(s.UI.ShiftMessage())
	case event.SwapMessageComplete:
		return s.withUI(s.UI.CompleteSwap())
	}
	return s
}
