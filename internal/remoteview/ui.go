package remoteview

import "slices"

// Transition is the animation currently in flight.
type Transition string

// Transitions. The zero value is TransitionNone.
const (
	TransitionNone                Transition = ""
	TransitionExpandDescription   Transition = "expand-description"
	TransitionCollapseDescription Transition = "collapse-description"
	TransitionSwapMessage         Transition = "swap-message"
	TransitionSwapMessageComplete Transition = "swap-message-complete"
)

func (t Transition) String() string {
	if t == TransitionNone {
		return "none"
	}
	return string(t)
}

// DescriptionState is the state of the description panel.
type DescriptionState int

const (
	DescriptionCollapsed DescriptionState = iota
	DescriptionExpanded
)

func (d DescriptionState) String() string {
	if d == DescriptionExpanded {
		return "expanded"
	}
	return "collapsed"
}

// UI is the remote-view popup state. A UI reachable from engine state must
// not be modified.
type UI struct {
	ActivePicker string
	Messages     []Message
	Transition   Transition
	Description  DescriptionState
}

func (u *UI) clone() *UI {
	c := *u
	return &c
}

// Last returns the newest queued message, or nil.
func (u *UI) Last() Message {
	if len(u.Messages) == 0 {
		return nil
	}
	return u.Messages[len(u.Messages)-1]
}

// MessageNames returns the names of the queued messages, oldest first.
func (u *UI) MessageNames() []string {
	names := make([]string, len(u.Messages))
	for i, m := range u.Messages {
		names[i] = m.Name()
	}
	return names
}

// ToggleActivePicker sets the active picker. An empty picker clears it. The
// toggle always produces a new state.
func (u *UI) ToggleActivePicker(picker string) *UI {
	next := u.clone()
	next.ActivePicker = picker
	return next
}

// ResetActivePicker clears the active picker if one is set.
func (u *UI) ResetActivePicker() *UI {
	if u.ActivePicker == "" {
		return u
	}
	next := u.clone()
	next.ActivePicker = ""
	return next
}

// ExpandDescription starts the expand animation when nothing else is
// in flight.
func (u *UI) ExpandDescription() *UI {
	return u.beginDescription(TransitionExpandDescription)
}

// CollapseDescription starts the collapse animation when nothing else is
// in flight.
func (u *UI) CollapseDescription() *UI {
	return u.beginDescription(TransitionCollapseDescription)
}

func (u *UI) beginDescription(t Transition) *UI {
	if u.Transition != TransitionNone {
		return u
	}
	next := u.clone()
	next.Transition = t
	return next
}

// CompleteDescriptionTransition flips the description panel and ends the
// transition.
func (u *UI) CompleteDescriptionTransition() *UI {
	next := u.clone()
	if u.Description == DescriptionExpanded {
		next.Description = DescriptionCollapsed
	} else {
		next.Description = DescriptionExpanded
	}
	next.Transition = TransitionNone
	return next
}

// PushMessage queues m unless the newest message has the same name. A second
// queued message starts a swap when no transition is in flight.
func (u *UI) PushMessage(m Message) *UI {
	if m == nil {
		return u
	}
	if last := u.Last(); last != nil && last.Name() == m.Name() {
		return u
	}
	next := u.clone()
	next.Messages = append(slices.Clip(u.Messages), m)
	if next.Transition == TransitionNone && len(next.Messages) > 1 {
		next.Transition = TransitionSwapMessage
	}
	return next
}

// ShiftMessage drops the oldest message once the fade finished. The last
// remaining message is never dropped.
func (u *UI) ShiftMessage() *UI {
	if len(u.Messages) <= 1 {
		return u
	}
	next := u.clone()
	next.Messages = slices.Clone(u.Messages[1:])
	if u.Transition == TransitionSwapMessage {
		next.Transition = TransitionSwapMessageComplete
	}
	return next
}

// CompleteSwap settles the queue: another swap starts while more than one
// message is waiting.
func (u *UI) CompleteSwap() *UI {
	t := TransitionNone
	if len(u.Messages) > 1 {
		t = TransitionSwapMessage
	}
	if t == u.Transition {
		return u
	}
	next := u.clone()
	next.Transition = t
	return next
}
