package session

import (
	"maps"
	"slices"

	"github.com/roach88/livestyle/internal/patch"
)

// ReplaceAll returns next unless it is the receiver itself. It is the
// wholesale replacement used on bootstrap and tab list changes.
func (s *Set) ReplaceAll(next *Set) *Set {
	if next == s || next == nil {
		return s
	}
	return next
}

// FromSeeds builds the set for a new tab list. A seed that only names a tab
// keeps that tab's current session; a seed carrying data starts a fresh
// session. Tabs absent from seeds are dropped. When the result holds exactly
// the current sessions, the receiver is returned.
func (s *Set) FromSeeds(seeds []Seed) *Set {
	tabs := make(map[TabID]*Session, len(seeds))
	for _, sd := range seeds {
		if cur, ok := s.tabs[sd.Tab]; ok && !sd.carriesData() {
			tabs[sd.Tab] = cur
			continue
		}
		tabs[sd.Tab] = NewSession(sd)
	}
	if maps.EqualFunc(tabs, s.tabs, func(a, b *Session) bool { return a == b }) {
		return s
	}
	return &Set{tabs: tabs}
}

// SetCSSOMStylesheets replaces the stylesheet list enumerated from the DOM
// when it differs from the current one.
func (s *Set) SetCSSOMStylesheets(tab TabID, items []string) *Set {
	sess, ok := s.tabs[tab]
	if !ok || slices.Equal(items, sess.CSSOMStylesheets) {
		return s
	}
	next := sess.clone()
	next.CSSOMStylesheets = slices.Clone(items)
	next.refreshStylesheets()
	return s.with(tab, next)
}

// SetDevtoolsStylesheets replaces the devtools stylesheet map. Unlike the
// CSSOM list it is not compared first: devtools only reports when something
// was enumerated.
func (s *Set) SetDevtoolsStylesheets(tab TabID, items map[string]string) *Set {
	sess, ok := s.tabs[tab]
	if !ok {
		return s
	}
	next := sess.clone()
	next.DevtoolsStylesheets = maps.Clone(items)
	next.refreshStylesheets()
	return s.with(tab, next)
}

// UpdateDevtoolsStylesheet sets the source of a single devtools stylesheet.
func (s *Set) UpdateDevtoolsStylesheet(tab TabID, url, content string) *Set {
	sess, ok := s.tabs[tab]
	if !ok {
		return s
	}
	items := maps.Clone(sess.DevtoolsStylesheets)
	if items == nil {
		items = make(map[string]string, 1)
	}
	items[url] = content

	next := sess.clone()
	next.DevtoolsStylesheets = items
	next.refreshStylesheets()
	return s.with(tab, next)
}

// SetAutoMapping replaces the inferred mapping and re-resolves the final
// mapping against the current user overrides.
func (s *Set) SetAutoMapping(tab TabID, mapping map[string]string) *Set {
	sess, ok := s.tabs[tab]
	if !ok || maps.Equal(mapping, sess.AutoMapping) {
		return s
	}
	next := sess.clone()
	next.AutoMapping = maps.Clone(mapping)
	next.refreshMapping()
	return s.with(tab, next)
}

// SetUserMapping replaces the user overrides and re-resolves the final
// mapping against the current inferred mapping.
func (s *Set) SetUserMapping(tab TabID, mapping map[string]string) *Set {
	sess, ok := s.tabs[tab]
	if !ok || maps.Equal(mapping, sess.UserMapping) {
		return s
	}
	next := sess.clone()
	next.UserMapping = maps.Clone(mapping)
	next.refreshMapping()
	return s.with(tab, next)
}

// SavePatches appends patches to the pending edits of uri and condenses them.
// When the edits cancel out the uri entry is removed.
func (s *Set) SavePatches(tab TabID, uri string, patches []patch.Patch) *Set {
	sess, ok := s.tabs[tab]
	if !ok || uri == "" || len(patches) == 0 {
		return s
	}
	prev, had := sess.Patches[uri]
	all := make([]patch.Patch, 0, len(prev)+len(patches))
	all = append(all, prev...)
	all = append(all, patches...)
	condensed := patch.Condense(all)

	switch {
	case len(condensed) == 0 && !had:
		return s
	case had && patch.EqualSeq(condensed, prev):
		return s
	}

	stored := clonePatches(sess.Patches)
	if len(condensed) == 0 {
		delete(stored, uri)
	} else {
		stored[uri] = condensed
	}
	next := sess.clone()
	next.Patches = stored
	return s.with(tab, next)
}

// ResetPatches drops all pending edits of uri, used when the resource was
// reloaded and earlier patches no longer apply.
func (s *Set) ResetPatches(tab TabID, uri string) *Set {
	sess, ok := s.tabs[tab]
	if !ok {
		return s
	}
	if _, had := sess.Patches[uri]; !had {
		return s
	}
	stored := clonePatches(sess.Patches)
	delete(stored, uri)
	next := sess.clone()
	next.Patches = stored
	return s.with(tab, next)
}

func clonePatches(m map[string][]patch.Patch) map[string][]patch.Patch {
	out := make(map[string][]patch.Patch, len(m)+1)
	maps.Copy(out, m)
	return out
}
