package health

import "context"

// StorePinger checks usage store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// TokenCounter reports how many tokens the ledger holds.
type TokenCounter interface {
	Count() int
}
