// Package session holds the per-tab synchronization state of a LiveStyle
// session: the stylesheets known for the page, the browser-to-editor resource
// mapping and the pending edit patches of each resource.
//
// A Set is immutable. Every operation returns a *Set, and returns the
// receiver itself when the operation does not change anything. Consumers
// rely on that pointer identity to skip work, so operations compare the
// relevant substructure by value before producing a new tree. Changed trees
// share every untouched *Session with their predecessor.
//
// Operations addressing a tab without a session are no-ops. Sessions come
// into existence only through the tab list (FromSeeds / ReplaceAll), which
// absorbs events racing a tab teardown.
package session
