// Package model holds the host model mirrored into the popup: the page's
// enabled flag, sync direction, file mapping and remote-view session.
package model

import (
	"fmt"
	"maps"
	"slices"
)

// Sync directions.
const (
	DirectionBoth      = "both"
	DirectionToBrowser = "to-browser"
	DirectionToEditor  = "to-editor"
)

// Directions lists the accepted direction values.
var Directions = []string{DirectionBoth, DirectionToBrowser, DirectionToEditor}

// Remote-view session states.
const (
	StatePending   = "pending"
	StateConnected = "connected"
	StateError     = "error"
)

// RemoteViewError describes an upstream remote-view connection failure.
type RemoteViewError struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// RemoteViewSession is the remote-view session descriptor of the page.
type RemoteViewSession struct {
	State    string           `json:"state,omitempty" yaml:"state,omitempty"`
	PublicID string           `json:"publicId,omitempty" yaml:"publicId,omitempty"`
	Error    *RemoteViewError `json:"error,omitempty" yaml:"error,omitempty"`
}

// Model is the host model. A Model reachable from engine state must not be
// modified; the setters return a new value.
type Model struct {
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	Direction   string            `json:"direction,omitempty" yaml:"direction,omitempty"`
	FileMapping map[string]string `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	Origin      string            `json:"origin,omitempty" yaml:"origin,omitempty"`
	URL         string            `json:"url,omitempty" yaml:"url,omitempty"`
	RemoteView  RemoteViewSession `json:"remoteView" yaml:"remoteView"`
}

// ValidDirection reports whether d is an accepted sync direction.
func ValidDirection(d string) bool {
	return slices.Contains(Directions, d)
}

// CheckDirection returns an error naming the accepted values when d is not
// one of them.
func CheckDirection(d string) error {
	if ValidDirection(d) {
		return nil
	}
	return fmt.Errorf("unknown direction %q (want one of %v)", d, Directions)
}

// Clone returns a copy of m that shares no maps or pointers with it.
func (m *Model) Clone() *Model {
	if m == nil {
		return &Model{}
	}
	next := *m
	next.FileMapping = maps.Clone(m.FileMapping)
	if m.RemoteView.Error != nil {
		e := *m.RemoteView.Error
		next.RemoteView.Error = &e
	}
	return &next
}

// SetEnabled sets the enabled flag.
func (m *Model) SetEnabled(enabled bool) *Model {
	if m.Enabled == enabled {
		return m
	}
	next := *m
	next.Enabled = enabled
	return &next
}

// SetFileMapping maps the browser resource to an editor file.
func (m *Model) SetFileMapping(browser, editor string) *Model {
	if cur, ok := m.FileMapping[browser]; ok && cur == editor {
		return m
	}
	mapping := maps.Clone(m.FileMapping)
	if mapping == nil {
		mapping = make(map[string]string, 1)
	}
	mapping[browser] = editor

	next := *m
	next.FileMapping = mapping
	return &next
}

// SetDirection sets the sync direction. Unknown directions are ignored.
func (m *Model) SetDirection(d string) *Model {
	if m.Direction == d || !ValidDirection(d) {
		return m
	}
	next := *m
	next.Direction = d
	return &next
}

// Canonical returns m as a canonical JSON object. Unset fields are omitted.
func (m *Model) Canonical() map[string]any {
	obj := map[string]any{"enabled": m.Enabled}
	if m.Direction != "" {
		obj["direction"] = m.Direction
	}
	if len(m.FileMapping) > 0 {
		obj["mapping"] = maps.Clone(m.FileMapping)
	}
	if m.Origin != "" {
		obj["origin"] = m.Origin
	}
	if m.URL != "" {
		obj["url"] = m.URL
	}
	if rv := m.RemoteView.canonical(); len(rv) > 0 {
		obj["remoteView"] = rv
	}
	return obj
}

func (s RemoteViewSession) canonical() map[string]any {
	obj := map[string]any{}
	if s.State != "" {
		obj["state"] = s.State
	}
	if s.PublicID != "" {
		obj["publicId"] = s.PublicID
	}
	if s.Error != nil {
		e := map[string]any{"code": s.Error.Code}
		if s.Error.Message != "" {
			e["message"] = s.Error.Message
		}
		obj["error"] = e
	}
	return obj
}
