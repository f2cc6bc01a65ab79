package session

import (
	"maps"
	"slices"

	"github.com/roach88/livestyle/internal/patch"
)

// TabID identifies a browser tab.
type TabID int

// Session is the synchronization state of one tab.
//
// Stylesheets and Mapping are derived: Stylesheets from CSSOMStylesheets and
// the DevtoolsStylesheets keys, Mapping from AutoMapping overridden by
// UserMapping. They are recomputed whenever an input changes.
//
// A Session reachable from a Set must not be modified.
type Session struct {
	CSSOMStylesheets    []string
	DevtoolsStylesheets map[string]string // url -> source
	Stylesheets         []string
	AutoMapping         map[string]string // browser url -> editor file
	UserMapping         map[string]string
	Mapping             map[string]string
	Patches             map[string][]patch.Patch // resource uri -> condensed patches
}

// Seed is the initial content of a session as supplied by the tab list.
type Seed struct {
	Tab                 TabID
	CSSOMStylesheets    []string
	DevtoolsStylesheets map[string]string
	AutoMapping         map[string]string
	UserMapping         map[string]string
	Patches             map[string][]patch.Patch
}

// carriesData reports whether the seed describes session content rather
// than only naming the tab.
func (sd Seed) carriesData() bool {
	return len(sd.CSSOMStylesheets) > 0 ||
		len(sd.DevtoolsStylesheets) > 0 ||
		len(sd.AutoMapping) > 0 ||
		len(sd.UserMapping) > 0 ||
		len(sd.Patches) > 0
}

// NewSession builds a session from a seed and computes its derived fields.
// Patch entries with no patches are dropped.
func NewSession(sd Seed) *Session {
	s := &Session{
		CSSOMStylesheets:    slices.Clone(sd.CSSOMStylesheets),
		DevtoolsStylesheets: maps.Clone(sd.DevtoolsStylesheets),
		AutoMapping:         maps.Clone(sd.AutoMapping),
		UserMapping:         maps.Clone(sd.UserMapping),
		Patches:             make(map[string][]patch.Patch, len(sd.Patches)),
	}
	for uri, patches := range sd.Patches {
		if condensed := patch.Condense(patches); len(condensed) > 0 {
			s.Patches[uri] = condensed
		}
	}
	s.Stylesheets = Reconcile(s.CSSOMStylesheets, s.DevtoolsStylesheets)
	s.Mapping = Resolve(s.AutoMapping, s.UserMapping)
	return s
}

// clone returns a shallow copy; maps and slices are shared until replaced.
func (s *Session) clone() *Session {
	c := *s
	return &c
}

// refreshStylesheets recomputes Stylesheets, keeping the previous slice when
// the result is equal to it.
func (s *Session) refreshStylesheets() {
	all := Reconcile(s.CSSOMStylesheets, s.DevtoolsStylesheets)
	if !slices.Equal(all, s.Stylesheets) {
		s.Stylesheets = all
	}
}

// refreshMapping recomputes Mapping, keeping the previous map when the
// result is equal to it. It reports whether Mapping changed.
func (s *Session) refreshMapping() bool {
	resolved := Resolve(s.AutoMapping, s.UserMapping)
	if maps.Equal(resolved, s.Mapping) {
		return false
	}
	s.Mapping = resolved
	return true
}

// Set is an immutable collection of sessions keyed by tab.
type Set struct {
	tabs map[TabID]*Session
}

var empty = &Set{tabs: map[TabID]*Session{}}

// Empty returns the shared empty set.
func Empty() *Set {
	return empty
}

// NewSet builds a set from the given sessions. The map is copied.
func NewSet(sessions map[TabID]*Session) *Set {
	return &Set{tabs: maps.Clone(sessions)}
}

// Get returns the session of tab.
func (s *Set) Get(tab TabID) (*Session, bool) {
	sess, ok := s.tabs[tab]
	return sess, ok
}

// Len returns the number of sessions.
func (s *Set) Len() int {
	return len(s.tabs)
}

// Tabs returns the tab ids in ascending order.
func (s *Set) Tabs() []TabID {
	return slices.Sorted(maps.Keys(s.tabs))
}

// with returns a copy of s where tab maps to sess.
func (s *Set) with(tab TabID, sess *Session) *Set {
	tabs := maps.Clone(s.tabs)
	if tabs == nil {
		tabs = make(map[TabID]*Session, 1)
	}
	tabs[tab] = sess
	return &Set{tabs: tabs}
}
