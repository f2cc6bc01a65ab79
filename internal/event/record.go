package event

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/livestyle/internal/canon"
	"github.com/roach88/livestyle/internal/model"
	"github.com/roach88/livestyle/internal/patch"
	"github.com/roach88/livestyle/internal/remoteview"
	"github.com/roach88/livestyle/internal/session"
)

// Record is the flat document form of an event. Which fields apply depends
// on Type.
type Record struct {
	Type        Kind              `json:"type" yaml:"type"`
	Tab         *int              `json:"tab,omitempty" yaml:"tab,omitempty"`
	Items       []string          `json:"items,omitempty" yaml:"items,omitempty"`
	Stylesheets map[string]string `json:"stylesheets,omitempty" yaml:"stylesheets,omitempty"`
	URL         string            `json:"url,omitempty" yaml:"url,omitempty"`
	Content     string            `json:"content,omitempty" yaml:"content,omitempty"`
	Mapping     map[string]string `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	URI         string            `json:"uri,omitempty" yaml:"uri,omitempty"`
	Patches     []patch.Patch     `json:"patches,omitempty" yaml:"patches,omitempty"`
	Sessions    []SessionRecord   `json:"sessions,omitempty" yaml:"sessions,omitempty"`
	Model       *model.Model      `json:"model,omitempty" yaml:"model,omitempty"`
	Picker      string            `json:"picker,omitempty" yaml:"picker,omitempty"`
	Message     any               `json:"message,omitempty" yaml:"message,omitempty"`
	Enabled     *bool             `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Browser     string            `json:"browser,omitempty" yaml:"browser,omitempty"`
	Editor      string            `json:"editor,omitempty" yaml:"editor,omitempty"`
	Direction   string            `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// SessionRecord is one entry of a tab list. A record with only a tab keeps
// the tab's current session.
type SessionRecord struct {
	Tab                 int                      `json:"tab" yaml:"tab"`
	CSSOMStylesheets    []string                 `json:"cssomStylesheets,omitempty" yaml:"cssomStylesheets,omitempty"`
	DevtoolsStylesheets map[string]string        `json:"devtoolsStylesheets,omitempty" yaml:"devtoolsStylesheets,omitempty"`
	AutoMapping         map[string]string        `json:"autoMapping,omitempty" yaml:"autoMapping,omitempty"`
	UserMapping         map[string]string        `json:"userMapping,omitempty" yaml:"userMapping,omitempty"`
	Patches             map[string][]patch.Patch `json:"patches,omitempty" yaml:"patches,omitempty"`
}

// DecodeError reports a record that cannot be turned into an event.
type DecodeError struct {
	Index int // position in the document, -1 when unknown
	Type  Kind
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	prefix := "event"
	if e.Index >= 0 {
		prefix = fmt.Sprintf("events[%d]", e.Index)
	}
	if e.Type != "" {
		prefix += " (" + string(e.Type) + ")"
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (r Record) fail(field string, err error) *DecodeError {
	return &DecodeError{Index: -1, Type: r.Type, Field: field, Err: err}
}

func (r Record) tab() (session.TabID, error) {
	if r.Tab == nil {
		return 0, r.fail("tab", fmt.Errorf("required"))
	}
	return session.TabID(*r.Tab), nil
}

func (r Record) patches(field string, ps []patch.Patch) error {
	if err := patch.ValidateAll(ps); err != nil {
		return r.fail(field, err)
	}
	return nil
}

// Event converts r to its typed event. Unknown types, missing tabs and
// malformed patches are rejected with a *DecodeError.
func (r Record) Event() (Event, error) {
	switch r.Type {
	case KindUpdateList:
		seeds := make([]session.Seed, len(r.Sessions))
		for i, s := range r.Sessions {
			for uri, ps := range s.Patches {
				if err := r.patches(fmt.Sprintf("sessions[%d].patches[%q]", i, uri), ps); err != nil {
					return nil, err
				}
			}
			seeds[i] = s.Seed()
		}
		return UpdateList{Sessions: seeds}, nil

	case KindSetCSSOMStylesheets:
		tab, err := r.tab()
		if err != nil {
			return nil, err
		}
		return SetCSSOMStylesheets{Tab: tab, Items: r.Items}, nil

	case KindSetDevtoolsStylesheets:
		tab, err := r.tab()
		if err != nil {
			return nil, err
		}
		return SetDevtoolsStylesheets{Tab: tab, Items: r.Stylesheets}, nil

	case KindUpdateDevtoolsStylesheet:
		tab, err := r.tab()
		if err != nil {
			return nil, err
		}
		if r.URL == "" {
			return nil, r.fail("url", fmt.Errorf("required"))
		}
		return UpdateDevtoolsStylesheet{Tab: tab, URL: r.URL, Content: r.Content}, nil

	case KindUpdateAutoMapping:
		tab, err := r.tab()
		if err != nil {
			return nil, err
		}
		return UpdateAutoMapping{Tab: tab, Mapping: r.Mapping}, nil

	case KindUpdateUserMapping:
		tab, err := r.tab()
		if err != nil {
			return nil, err
		}
		return UpdateUserMapping{Tab: tab, Mapping: r.Mapping}, nil

	case KindSaveResourcePatches:
		tab, err := r.tab()
		if err != nil {
			return nil, err
		}
		if err := r.patches("patches", r.Patches); err != nil {
			return nil, err
		}
		return SaveResourcePatches{Tab: tab, URI: r.URI, Patches: r.Patches}, nil

	case KindResetResourcePatches:
		tab, err := r.tab()
		if err != nil {
			return nil, err
		}
		return ResetResourcePatches{Tab: tab, URI: r.URI}, nil

	case KindModelUpdate:
		m := r.Model
		if m == nil {
			m = &model.Model{}
		}
		return ModelUpdate{Model: m}, nil

	case KindToggleEnabled:
		return ToggleEnabled{Enabled: r.Enabled}, nil

	case KindUpdateFileMapping:
		if r.Browser == "" {
			return nil, r.fail("browser", fmt.Errorf("required"))
		}
		return UpdateFileMapping{Browser: r.Browser, Editor: r.Editor}, nil

	case KindUpdateDirection:
		if err := model.CheckDirection(r.Direction); err != nil {
			return nil, r.fail("direction", err)
		}
		return UpdateDirection{Direction: r.Direction}, nil

	case KindToggleActivePicker:
		return ToggleActivePicker{Picker: r.Picker}, nil
	case KindResetActivePicker:
		return ResetActivePicker{}, nil
	case KindExpandDescription:
		return ExpandDescription{}, nil
	case KindCollapseDescription:
		return CollapseDescription{}, nil
	case KindDescriptionTransitionComplete:
		return DescriptionTransitionComplete{}, nil

	case KindPushMessage:
		msg, err := remoteview.Decode(r.Message)
		if err != nil {
			return nil, r.fail("message", err)
		}
		return PushMessage{Message: msg}, nil

	case KindShiftMessage:
		return ShiftMessage{}, nil
	case KindSwapMessageComplete:
		return SwapMessageComplete{}, nil
	}
	return nil, r.fail("type", fmt.Errorf("unknown event type %q", r.Type))
}

// Seed converts a tab list entry to a session seed.
func (s SessionRecord) Seed() session.Seed {
	return session.Seed{
		Tab:                 session.TabID(s.Tab),
		CSSOMStylesheets:    s.CSSOMStylesheets,
		DevtoolsStylesheets: s.DevtoolsStylesheets,
		AutoMapping:         s.AutoMapping,
		UserMapping:         s.UserMapping,
		Patches:             s.Patches,
	}
}

func tabPtr(tab session.TabID) *int {
	n := int(tab)
	return &n
}

// FromEvent converts a typed event to its record.
func FromEvent(ev Event) Record {
	r := Record{Type: ev.Kind()}
	switch e := ev.(type) {
	case UpdateList:
		r.Sessions = make([]SessionRecord, len(e.Sessions))
		for i, sd := range e.Sessions {
			r.Sessions[i] = SessionRecord{
				Tab:                 int(sd.Tab),
				CSSOMStylesheets:    sd.CSSOMStylesheets,
				DevtoolsStylesheets: sd.DevtoolsStylesheets,
				AutoMapping:         sd.AutoMapping,
				UserMapping:         sd.UserMapping,
				Patches:             sd.Patches,
			}
		}
	case SetCSSOMStylesheets:
		r.Tab, r.Items = tabPtr(e.Tab), e.Items
	case SetDevtoolsStylesheets:
		r.Tab, r.Stylesheets = tabPtr(e.Tab), e.Items
	case UpdateDevtoolsStylesheet:
		r.Tab, r.URL, r.Content = tabPtr(e.Tab), e.URL, e.Content
	case UpdateAutoMapping:
		r.Tab, r.Mapping = tabPtr(e.Tab), e.Mapping
	case UpdateUserMapping:
		r.Tab, r.Mapping = tabPtr(e.Tab), e.Mapping
	case SaveResourcePatches:
		r.Tab, r.URI, r.Patches = tabPtr(e.Tab), e.URI, e.Patches
	case ResetResourcePatches:
		r.Tab, r.URI = tabPtr(e.Tab), e.URI
	case ModelUpdate:
		r.Model = e.Model
	case ToggleEnabled:
		r.Enabled = e.Enabled
	case UpdateFileMapping:
		r.Browser, r.Editor = e.Browser, e.Editor
	case UpdateDirection:
		r.Direction = e.Direction
	case ToggleActivePicker:
		r.Picker = e.Picker
	case PushMessage:
		r.Message = remoteview.Encode(e.Message)
	}
	return r
}

// Canonical returns r as a canonical JSON object; fields left at their zero
// value are omitted. The keys match the JSON tags so DecodeRecord reads the
// encoding back.
func (r Record) Canonical() map[string]any {
	obj := map[string]any{"type": string(r.Type)}
	if r.Tab != nil {
		obj["tab"] = *r.Tab
	}
	if r.Items != nil {
		obj["items"] = r.Items
	}
	if r.Stylesheets != nil {
		obj["stylesheets"] = r.Stylesheets
	}
	setString(obj, "url", r.URL)
	setString(obj, "content", r.Content)
	if r.Mapping != nil {
		obj["mapping"] = r.Mapping
	}
	setString(obj, "uri", r.URI)
	if r.Patches != nil {
		obj["patches"] = patch.CanonicalSeq(r.Patches)
	}
	if r.Sessions != nil {
		sessions := make([]any, len(r.Sessions))
		for i, s := range r.Sessions {
			sessions[i] = s.canonical()
		}
		obj["sessions"] = sessions
	}
	if r.Model != nil {
		obj["model"] = r.Model.Canonical()
	}
	setString(obj, "picker", r.Picker)
	if r.Message != nil {
		if msg, err := remoteview.Decode(r.Message); err == nil {
			obj["message"] = remoteview.Encode(msg)
		}
	}
	if r.Enabled != nil {
		obj["enabled"] = *r.Enabled
	}
	setString(obj, "browser", r.Browser)
	setString(obj, "editor", r.Editor)
	setString(obj, "direction", r.Direction)
	return obj
}

func (s SessionRecord) canonical() map[string]any {
	obj := map[string]any{"tab": s.Tab}
	if len(s.CSSOMStylesheets) > 0 {
		obj["cssomStylesheets"] = s.CSSOMStylesheets
	}
	if len(s.DevtoolsStylesheets) > 0 {
		obj["devtoolsStylesheets"] = s.DevtoolsStylesheets
	}
	if len(s.AutoMapping) > 0 {
		obj["autoMapping"] = s.AutoMapping
	}
	if len(s.UserMapping) > 0 {
		obj["userMapping"] = s.UserMapping
	}
	if len(s.Patches) > 0 {
		patches := make(map[string]any, len(s.Patches))
		for uri, ps := range s.Patches {
			patches[uri] = patch.CanonicalSeq(ps)
		}
		obj["patches"] = patches
	}
	return obj
}

func setString(obj map[string]any, key, value string) {
	if value != "" {
		obj[key] = value
	}
}

// MarshalCanonical returns the canonical JSON bytes of r.
func (r Record) MarshalCanonical() ([]byte, error) {
	return canon.Marshal(r.Canonical())
}

// DecodeRecord decodes a JSON record strictly.
func DecodeRecord(data []byte) (Record, error) {
	var r Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}
