// Package remoteview implements the remote-view popup state: the active
// picker, the description panel and the message queue that crossfades
// between connection status messages.
//
// The queue never holds two consecutive messages with the same name. A
// second message starts a swap transition; the view shifts the oldest
// message out once the fade finishes and then completes the swap, which
// starts another swap if more messages are waiting.
//
// Every UI method returns the receiver when the state did not change.
package remoteview
