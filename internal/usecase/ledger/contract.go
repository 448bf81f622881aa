package ledger

import "context"

// UsageRecorder mirrors accepted ledger mutations to an external store.
// The ledger never reads back from it.
type UsageRecorder interface {
	RecordIssue(ctx context.Context, tokenID string, createdAtUnix int64) error
	RecordConsume(ctx context.Context, tokenID string, words int64) error
}
