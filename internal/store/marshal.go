package store

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/roach88/livestyle/internal/engine"
	"github.com/roach88/livestyle/internal/event"
)

var (
	checkpointEnc cbor.EncMode
	checkpointDec cbor.DecMode
)

func init() {
	var err error
	checkpointEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("store: cbor encode mode: %v", err))
	}
	checkpointDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("store: cbor decode mode: %v", err))
	}
}

// encodeCheckpoint returns the deterministic CBOR encoding of the snapshot
// of s. Equal trees always encode to identical bytes.
func encodeCheckpoint(s *engine.State) ([]byte, error) {
	data, err := checkpointEnc.Marshal(engine.Snapshot(s))
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint: %w", err)
	}
	return data, nil
}

// decodeCheckpoint parses a stored checkpoint back into snapshot form.
// Lists decode as []any and objects as map[string]any.
func decodeCheckpoint(data []byte) (map[string]any, error) {
	var snap map[string]any
	if err := checkpointDec.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return snap, nil
}

// marshalPayload returns the canonical JSON TEXT of a record.
func marshalPayload(r event.Record) (string, error) {
	data, err := r.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

func unmarshalPayload(payload string) (event.Record, error) {
	r, err := event.DecodeRecord([]byte(payload))
	if err != nil {
		return event.Record{}, fmt.Errorf("unmarshal payload: %w", err)
	}
	return r, nil
}
