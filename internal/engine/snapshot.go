package engine

import (
	"strconv"

	"github.com/roach88/livestyle/internal/canon"
	"github.com/roach88/livestyle/internal/patch"
	"github.com/roach88/livestyle/internal/remoteview"
	"github.com/roach88/livestyle/internal/session"
)

// Snapshot returns the canonical map form of s. Tab ids become decimal
// string keys. The result only holds types canon.Marshal accepts.
func Snapshot(s *State) map[string]any {
	if s == nil {
		s = NewState()
	}
	sessions := make(map[string]any, s.Sessions.Len())
	for _, tab := range s.Sessions.Tabs() {
		sess, _ := s.Sessions.Get(tab)
		sessions[strconv.Itoa(int(tab))] = sessionSnapshot(sess)
	}
	return map[string]any{
		"sessions": sessions,
		"model":    s.Model.Canonical(),
		"ui":       uiSnapshot(s.UI),
	}
}

func sessionSnapshot(sess *session.Session) map[string]any {
	patches := make(map[string]any, len(sess.Patches))
	for uri, ps := range sess.Patches {
		patches[uri] = patch.CanonicalSeq(ps)
	}
	return map[string]any{
		"cssomStylesheets":    nonNil(sess.CSSOMStylesheets),
		"devtoolsStylesheets": nonNilMap(sess.DevtoolsStylesheets),
		"stylesheets":         nonNil(sess.Stylesheets),
		"autoMapping":         nonNilMap(sess.AutoMapping),
		"userMapping":         nonNilMap(sess.UserMapping),
		"mapping":             nonNilMap(sess.Mapping),
		"patches":             patches,
	}
}

func uiSnapshot(u *remoteview.UI) map[string]any {
	messages := make([]any, len(u.Messages))
	for i, m := range u.Messages {
		messages[i] = remoteview.Encode(m)
	}
	obj := map[string]any{
		"messages":    messages,
		"transition":  u.Transition.String(),
		"description": u.Description.String(),
	}
	if u.ActivePicker != "" {
		obj["activePicker"] = u.ActivePicker
	}
	return obj
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// Digest returns the content hash of the canonical snapshot of s.
func Digest(s *State) string {
	// Snapshot only produces encodable values.
	digest, err := canon.Digest(canon.DomainState, Snapshot(s))
	if err != nil {
		panic(err)
	}
	return digest
}

// SnapshotJSON returns the canonical JSON encoding of the snapshot of s.
func SnapshotJSON(s *State) []byte {
	return canon.MustMarshal(Snapshot(s))
}
