package application

import (
	"context"
	"time"
)

// Account event types published after a successful commit.
const (
	EventAccountCreated     = "account.created"
	EventAccountUpdated     = "account.updated"
	EventAccountDeactivated = "account.deactivated"
)

// AccountEvent is the JSON message put on the account queue.
type AccountEvent struct {
	Type       string      `json:"type"`
	Account    AccountView `json:"account"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventPublisher delivers account events. helpers.RabbitPublisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ViewCache stores account views by id. Writers Set the committed view;
// readers only Fill, which never replaces an existing entry.
type ViewCache interface {
	Get(ctx context.Context, id int64) (AccountView, bool, error)
	Set(ctx context.Context, v AccountView) error
	Fill(ctx context.Context, v AccountView) (bool, error)
	Delete(ctx context.Context, id int64) error
}
