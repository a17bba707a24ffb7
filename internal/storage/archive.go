package storage

import (
	"context"
	"strings"
)

// PayloadArchive stores raw inbound webhook payloads in object storage, keyed
// by the event's idempotency key. It exists for audit and replay; the pipeline
// treats archival as best-effort.
type PayloadArchive struct {
	store ObjectStorage
}

// NewPayloadArchive creates a PayloadArchive over the given storage backend.
func NewPayloadArchive(store ObjectStorage) *PayloadArchive {
	return &PayloadArchive{store: store}
}

// Archive writes one payload under events/<key>.txt.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - key: event idempotency key.
//   - payload: raw message text.
//
// Returns:
//   - error: non-nil if the upload fails.
func (a *PayloadArchive) Archive(ctx context.Context, key, payload string) error {
	objectKey := "events/" + key + ".txt"
	return a.store.Upload(ctx, objectKey, strings.NewReader(payload), int64(len(payload)), "text/plain; charset=utf-8")
}
