// Package patch models structural CSS edit patches and condenses a sequence
// of them into its minimal net effect.
//
// A patch addresses one CSS node by its path (the chain of selectors and
// at-rules leading to it) and either adds the node, updates properties on it,
// or removes it. Patches for the same resource apply in arrival order.
package patch

import (
	"errors"
	"fmt"
	"slices"
)

// Action is the kind of edit a patch performs on its node.
type Action string

const (
	// ActionAdd creates the node with the given properties.
	ActionAdd Action = "add"
	// ActionUpdate sets and removes properties on an existing node.
	ActionUpdate Action = "update"
	// ActionRemove deletes the node and everything below it.
	ActionRemove Action = "remove"
)

// ValidActions lists the actions a patch may carry.
var ValidActions = map[Action]bool{
	ActionAdd:    true,
	ActionUpdate: true,
	ActionRemove: true,
}

// Property is a single CSS declaration. Value is ignored in removals.
type Property struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Patch is one edit against a stylesheet node.
type Patch struct {
	Path   []string   `json:"path" yaml:"path"`
	Action Action     `json:"action" yaml:"action"`
	Update []Property `json:"update,omitempty" yaml:"update,omitempty"`
	Remove []Property `json:"remove,omitempty" yaml:"remove,omitempty"`
}

// ErrMalformed is returned by Validate for patches Condense cannot accept.
var ErrMalformed = errors.New("malformed patch")

// Validate reports whether p is well formed. Condense does not validate its
// input, so callers decoding patches from the outside run this first.
func Validate(p Patch) error {
	if len(p.Path) == 0 {
		return fmt.Errorf("%w: empty path", ErrMalformed)
	}
	for i, seg := range p.Path {
		if seg == "" {
			return fmt.Errorf("%w: path[%d] is empty", ErrMalformed, i)
		}
	}
	if !ValidActions[p.Action] {
		return fmt.Errorf("%w: unknown action %q", ErrMalformed, p.Action)
	}
	for i, prop := range p.Update {
		if prop.Name == "" {
			return fmt.Errorf("%w: update[%d] has no name", ErrMalformed, i)
		}
	}
	for i, prop := range p.Remove {
		if prop.Name == "" {
			return fmt.Errorf("%w: remove[%d] has no name", ErrMalformed, i)
		}
	}
	return nil
}

// ValidateAll validates every patch, reporting the first failure with its index.
func ValidateAll(patches []Patch) error {
	for i, p := range patches {
		if err := Validate(p); err != nil {
			return fmt.Errorf("patches[%d]: %w", i, err)
		}
	}
	return nil
}

// Equal reports whether a and b describe the same edit.
func Equal(a, b Patch) bool {
	return a.Action == b.Action &&
		slices.Equal(a.Path, b.Path) &&
		slices.Equal(a.Update, b.Update) &&
		slices.Equal(a.Remove, b.Remove)
}

// EqualSeq reports whether two patch sequences are element-wise equal.
func EqualSeq(a, b []Patch) bool {
	return slices.EqualFunc(a, b, Equal)
}

// Canonical returns p as a canonical JSON object. Empty property lists and
// empty values are omitted.
func (p Patch) Canonical() map[string]any {
	obj := map[string]any{
		"path":   slices.Clone(p.Path),
		"action": string(p.Action),
	}
	if len(p.Update) > 0 {
		obj["update"] = canonicalProperties(p.Update)
	}
	if len(p.Remove) > 0 {
		obj["remove"] = canonicalProperties(p.Remove)
	}
	return obj
}

// CanonicalSeq returns the canonical form of a patch sequence.
func CanonicalSeq(patches []Patch) []any {
	out := make([]any, len(patches))
	for i, p := range patches {
		out[i] = p.Canonical()
	}
	return out
}

func canonicalProperties(props []Property) []any {
	out := make([]any, len(props))
	for i, prop := range props {
		obj := map[string]any{"name": prop.Name}
		if prop.Value != "" {
			obj["value"] = prop.Value
		}
		out[i] = obj
	}
	return out
}
