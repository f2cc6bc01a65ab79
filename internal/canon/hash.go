package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the algorithm to change without ambiguity.
const (
	DomainState = "livestyle/state/v1"
	DomainEvent = "livestyle/event/v1"
)

// HashWithDomain computes SHA256(domain || 0x00 || data) as lowercase hex.
// The null separator prevents domain/data boundary ambiguity.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest hashes the canonical encoding of v under domain.
func Digest(domain string, v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return HashWithDomain(domain, data), nil
}

// EventID computes the content address of a journaled event. The same run,
// sequence number and payload always yield the same id, which makes journal
// writes idempotent.
func EventID(runID string, seq int64, payload []byte) string {
	obj := map[string]any{
		"run_id":  runID,
		"seq":     seq,
		"payload": string(payload),
	}
	return HashWithDomain(DomainEvent, MustMarshal(obj))
}
