// Package canon provides the canonical JSON encoding and content hashing used
// to fingerprint engine state and journaled events.
//
// Canonical JSON follows RFC 8785: object keys are ordered by UTF-16 code
// units, strings are NFC normalized, HTML characters are not escaped and
// floats are rejected. Two structurally equal values always produce the same
// bytes, so a digest of the encoding is a stable identity across runs,
// processes and replays.
//
// canon imports nothing internal.
package canon
