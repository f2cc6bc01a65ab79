// Package event defines the events applied to the sync engine and the
// YAML/JSON document format they are written in.
//
// Each event kind has a typed struct implementing Event. Record is the flat
// document shape shared by every kind; Record.Event converts it to the typed
// form and FromEvent converts back.
package event

import (
	"github.com/roach88/livestyle/internal/model"
	"github.com/roach88/livestyle/internal/patch"
	"github.com/roach88/livestyle/internal/remoteview"
	"github.com/roach88/livestyle/internal/session"
)

// Kind is the tag of an event.
type Kind string

// Session events.
const (
	KindUpdateList               Kind = "session/update-list"
	KindSetCSSOMStylesheets      Kind = "session/set-cssom-stylesheets"
	KindSetDevtoolsStylesheets   Kind = "session/set-devtools-stylesheets"
	KindUpdateDevtoolsStylesheet Kind = "session/update-devtools-stylesheet"
	KindUpdateAutoMapping        Kind = "session/update-auto-mapping"
	KindUpdateUserMapping        Kind = "session/update-user-mapping"
	KindSaveResourcePatches      Kind = "session/save-resource-patches"
	KindResetResourcePatches     Kind = "session/reset-resource-patches"
)

// Model and page events.
const (
	KindModelUpdate       Kind = "model/update"
	KindToggleEnabled     Kind = "page/toggle-enabled"
	KindUpdateFileMapping Kind = "page/update-file-mapping"
	KindUpdateDirection   Kind = "page/update-direction"
)

// Remote-view UI events.
const (
	KindToggleActivePicker            Kind = "ui/toggle-active-picker"
	KindResetActivePicker             Kind = "ui/reset-active-picker"
	KindExpandDescription             Kind = "ui/rv-expand-description"
	KindCollapseDescription           Kind = "ui/rv-collapse-description"
	KindDescriptionTransitionComplete Kind = "ui/rv-description-transition-complete"
	KindPushMessage                   Kind = "ui/rv-push-message"
	KindShiftMessage                  Kind = "ui/rv-shift-message"
	KindSwapMessageComplete           Kind = "ui/rv-swap-message-complete"
)

// Kinds lists every event kind in declaration order.
var Kinds = []Kind{
	KindUpdateList,
	KindSetCSSOMStylesheets,
	KindSetDevtoolsStylesheets,
	KindUpdateDevtoolsStylesheet,
	KindUpdateAutoMapping,
	KindUpdateUserMapping,
	KindSaveResourcePatches,
	KindResetResourcePatches,
	KindModelUpdate,
	KindToggleEnabled,
	KindUpdateFileMapping,
	KindUpdateDirection,
	KindToggleActivePicker,
	KindResetActivePicker,
	KindExpandDescription,
	KindCollapseDescription,
	KindDescriptionTransitionComplete,
	KindPushMessage,
	KindShiftMessage,
	KindSwapMessageComplete,
}

// Event is a typed engine input.
type Event interface {
	Kind() Kind
}

// UpdateList replaces the tab list. Seeds that only name a tab keep its
// current session.
type UpdateList struct {
	Sessions []session.Seed
}

// SetCSSOMStylesheets reports the stylesheets enumerated from the DOM.
type SetCSSOMStylesheets struct {
	Tab   session.TabID
	Items []string
}

// SetDevtoolsStylesheets reports the stylesheets known to devtools.
type SetDevtoolsStylesheets struct {
	Tab   session.TabID
	Items map[string]string
}

// UpdateDevtoolsStylesheet reports the source of one devtools stylesheet.
type UpdateDevtoolsStylesheet struct {
	Tab     session.TabID
	URL     string
	Content string
}

// UpdateAutoMapping carries a freshly inferred resource mapping.
type UpdateAutoMapping struct {
	Tab     session.TabID
	Mapping map[string]string
}

// UpdateUserMapping carries the user's mapping overrides.
type UpdateUserMapping struct {
	Tab     session.TabID
	Mapping map[string]string
}

// SaveResourcePatches appends edits for a resource.
type SaveResourcePatches struct {
	Tab     session.TabID
	URI     string
	Patches []patch.Patch
}

// ResetResourcePatches drops the pending edits of a reloaded resource.
type ResetResourcePatches struct {
	Tab session.TabID
	URI string
}

// ModelUpdate replaces the host model.
type ModelUpdate struct {
	Model *model.Model
}

// ToggleEnabled sets the enabled flag, or flips it when Enabled is nil.
type ToggleEnabled struct {
	Enabled *bool
}

// UpdateFileMapping maps one browser resource to an editor file.
type UpdateFileMapping struct {
	Browser string
	Editor  string
}

// UpdateDirection sets the sync direction.
type UpdateDirection struct {
	Direction string
}

// ToggleActivePicker opens the named picker; an empty name closes it.
type ToggleActivePicker struct {
	Picker string
}

// ResetActivePicker closes the open picker.
type ResetActivePicker struct{}

// ExpandDescription starts expanding the remote-view description.
type ExpandDescription struct{}

// CollapseDescription starts collapsing the remote-view description.
type CollapseDescription struct{}

// DescriptionTransitionComplete ends the description animation.
type DescriptionTransitionComplete struct{}

// PushMessage queues a remote-view message.
type PushMessage struct {
	Message remoteview.Message
}

// ShiftMessage drops the oldest remote-view message.
type ShiftMessage struct{}

// SwapMessageComplete settles a message swap.
type SwapMessageComplete struct{}

func (UpdateList) Kind() Kind                    { return KindUpdateList }
func (SetCSSOMStylesheets) Kind() Kind           { return KindSetCSSOMStylesheets }
func (SetDevtoolsStylesheets) Kind() Kind        { return KindSetDevtoolsStylesheets }
func (UpdateDevtoolsStylesheet) Kind() Kind      { return KindUpdateDevtoolsStylesheet }
func (UpdateAutoMapping) Kind() Kind             { return KindUpdateAutoMapping }
func (UpdateUserMapping) Kind() Kind             { return KindUpdateUserMapping }
func (SaveResourcePatches) Kind() Kind           { return KindSaveResourcePatches }
func (ResetResourcePatches) Kind() Kind          { return KindResetResourcePatches }
func (ModelUpdate) Kind() Kind                   { return KindModelUpdate }
func (ToggleEnabled) Kind() Kind                 { return KindToggleEnabled }
func (UpdateFileMapping) Kind() Kind             { return KindUpdateFileMapping }
func (UpdateDirection) Kind() Kind               { return KindUpdateDirection }
func (ToggleActivePicker) Kind() Kind            { return KindToggleActivePicker }
func (ResetActivePicker) Kind() Kind             { return KindResetActivePicker }
func (ExpandDescription) Kind() Kind             { return KindExpandDescription }
func (CollapseDescription) Kind() Kind           { return KindCollapseDescription }
func (DescriptionTransitionComplete) Kind() Kind { return KindDescriptionTransitionComplete }
func (PushMessage) Kind() Kind                   { return KindPushMessage }
func (ShiftMessage) Kind() Kind                  { return KindShiftMessage }
func (SwapMessageComplete) Kind() Kind           { return KindSwapMessageComplete }

// TabOf returns the tab an event is addressed to, if any.
func TabOf(ev Event) (session.TabID, bool) {
	switch e := ev.(type) {
	case SetCSSOMStylesheets:
		return e.Tab, true
	case SetDevtoolsStylesheets:
		return e.Tab, true
	case UpdateDevtoolsStylesheet:
		return e.Tab, true
	case UpdateAutoMapping:
		return e.Tab, true
	case UpdateUserMapping:
		return e.Tab, true
	case SaveResourcePatches:
		return e.Tab, true
	case ResetResourcePatches:
		return e.Tab, true
	}
	return 0, false
}
