package session

import (
	"maps"
	"slices"
)

// Reconcile returns the canonical stylesheet list of a page: the union of
// the stylesheets enumerated through the CSSOM and the URLs reported by
// devtools, deduplicated and sorted. Reconcile is idempotent.
func Reconcile(cssom []string, devtools map[string]string) []string {
	all := make([]string, 0, len(cssom)+len(devtools))
	all = append(all, cssom...)
	all = slices.AppendSeq(all, maps.Keys(devtools))
	slices.Sort(all)
	return slices.Compact(all)
}

// Resolve merges the automatically inferred mapping with the user's
// overrides. User entries win on collision; values are not merged.
func Resolve(auto, user map[string]string) map[string]string {
	out := make(map[string]string, len(auto)+len(user))
	maps.Copy(out, auto)
	maps.Copy(out, user)
	return out
}
