package patch

import (
	"slices"
	"strings"
)

// node accumulates the net edit of one path while condensing.
type node struct {
	path   []string
	action Action
	update []Property
	remove []Property
	// replaced marks an add of a node that existed before the sequence and
	// was removed within it.
	replaced bool
}

// Condense folds an ordered patch sequence into the minimal sequence with the
// same net effect. It returns nil when the edits cancel out entirely, which
// callers treat as "no pending patches for this resource".
//
// Patches on the same path merge: later property values win, a property
// removal cancels a pending update of it and vice versa, removing a node
// discards every pending edit of the node and its descendants, and a node
// both added and removed in the sequence disappears. Re-adding a node removed
// in the sequence yields a remove followed by an add with the merged
// properties, since the node's old properties and children are gone. The
// result lists nodes in order of first appearance.
//
// Condense is pure and does not validate its input; see Validate.
func Condense(patches []Patch) []Patch {
	var order []string
	nodes := make(map[string]*node)

	for _, p := range patches {
		key := pathKey(p.Path)
		n := nodes[key]

		switch p.Action {
		case ActionRemove:
			order = dropDescendants(order, nodes, p.Path)
			switch {
			case n == nil:
				nodes[key] = &node{path: slices.Clone(p.Path), action: ActionRemove}
				order = append(order, key)
			case n.replaced:
				n.action = ActionRemove
				n.replaced = false
				n.update = nil
				n.remove = nil
			case n.action == ActionAdd:
				delete(nodes, key)
				order = slices.DeleteFunc(order, func(k string) bool { return k == key })
			default:
				n.action = ActionRemove
				n.update = nil
				n.remove = nil
			}

		case ActionAdd:
			switch {
			case n == nil:
				n = &node{path: slices.Clone(p.Path), action: ActionAdd}
				nodes[key] = n
				order = append(order, key)
			case n.action == ActionRemove:
				n.action = ActionAdd
				n.replaced = true
			}
			n.apply(p)

		case ActionUpdate:
			if n == nil {
				n = &node{path: slices.Clone(p.Path), action: ActionUpdate}
				nodes[key] = n
				order = append(order, key)
			}
			if n.action == ActionRemove {
				// Updates to a removed node have nothing to apply to.
				continue
			}
			n.apply(p)
		}
	}

	var out []Patch
	for _, key := range order {
		n := nodes[key]
		if n.action == ActionUpdate && len(n.update) == 0 && len(n.remove) == 0 {
			continue
		}
		if n.replaced {
			out = append(out, Patch{Path: slices.Clone(n.path), Action: ActionRemove})
		}
		out = append(out, Patch{
			Path:   n.path,
			Action: n.action,
			Update: nilIfEmpty(n.update),
			Remove: nilIfEmpty(n.remove),
		})
	}
	return out
}

// apply merges the properties of p into n.
func (n *node) apply(p Patch) {
	for _, prop := range p.Update {
		n.remove = withoutProperty(n.remove, prop.Name)
		if i := indexProperty(n.update, prop.Name); i >= 0 {
			n.update[i].Value = prop.Value
			continue
		}
		n.update = append(n.update, prop)
	}
	for _, prop := range p.Remove {
		n.update = withoutProperty(n.update, prop.Name)
		if n.action == ActionAdd {
			// A node created in this sequence never had the property.
			continue
		}
		if indexProperty(n.remove, prop.Name) < 0 {
			n.remove = append(n.remove, Property{Name: prop.Name})
		}
	}
}

func dropDescendants(order []string, nodes map[string]*node, parent []string) []string {
	return slices.DeleteFunc(order, func(key string) bool {
		n := nodes[key]
		if len(n.path) > len(parent) && slices.Equal(n.path[:len(parent)], parent) {
			delete(nodes, key)
			return true
		}
		return false
	})
}

func indexProperty(props []Property, name string) int {
	return slices.IndexFunc(props, func(p Property) bool { return p.Name == name })
}

func withoutProperty(props []Property, name string) []Property {
	i := indexProperty(props, name)
	if i < 0 {
		return props
	}
	return slices.Delete(slices.Clone(props), i, i+1)
}

func nilIfEmpty(props []Property) []Property {
	if len(props) == 0 {
		return nil
	}
	return props
}

// pathKey joins path segments with a separator that cannot appear in a selector.
func pathKey(path []string) string {
	return strings.Join(path, "\x00")
}
