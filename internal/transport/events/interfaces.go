package events

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/splitledger/internal/domain"
)

// Broker доставляет одно событие во внешний приемник.
type Broker interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
	Close() error
}
