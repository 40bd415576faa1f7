package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-accounts/internal/application"
	"github.com/oksasatya/user-accounts/pkg/helpers"
	"github.com/oksasatya/user-accounts/pkg/mailer/templates"
)

// ErrMalformed marks a message that can never be processed and must not be requeued.
var ErrMalformed = errors.New("malformed account event")

// Indexer stores account views for search. search.AccountIndex satisfies it.
type Indexer interface {
	Put(ctx context.Context, v application.AccountView) error
}

// Mailer sends a rendered template. mailer.Mailgun satisfies it.
type Mailer interface {
	SendTemplate(ctx context.Context, name string, data templates.EmailData) error
}

// Branding is copied into every email.
type Branding struct {
	CompanyName string
	AppName     string
	SupportURL  string
}

// AccountEventProcessor indexes every account event and emails the account
// holder on creation and deactivation. Index and Mail are optional.
//
// A failed delivery is requeued after RetryDelay. When the broker reports a
// delivery count (quorum queues set x-delivery-count) and it reaches
// MaxDeliveries, the message is dropped instead.
type AccountEventProcessor struct {
	Index         Indexer
	Mail          Mailer
	Branding      Branding
	Logger        *logrus.Logger
	Timeout       time.Duration
	RetryDelay    time.Duration
	MaxDeliveries int64
}

// templateFor returns the email template for an event type, or "" for none.
func templateFor(eventType string) string {
	switch eventType {
	case application.EventAccountCreated:
		return templates.AccountCreated
	case application.EventAccountDeactivated:
		return templates.AccountDeactivated
	default:
		return ""
	}
}

// Decode parses a queue message body into an AccountEvent.
func Decode(body []byte) (application.AccountEvent, error) {
	var ev application.AccountEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch ev.Type {
	case application.EventAccountCreated, application.EventAccountUpdated, application.EventAccountDeactivated:
	default:
		return ev, fmt.Errorf("%w: unknown type %q", ErrMalformed, ev.Type)
	}
	if ev.Account.ID <= 0 {
		return ev, fmt.Errorf("%w: missing account id", ErrMalformed)
	}
	return ev, nil
}

// Handle processes one message body.
func (p *AccountEventProcessor) Handle(ctx context.Context, body []byte) error {
	ev, err := Decode(body)
	if err != nil {
		return err
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	if p.Index != nil {
		if err := p.Index.Put(ctx, ev.Account); err != nil {
			return fmt.Errorf("index account %d: %w", ev.Account.ID, err)
		}
	}

	name := templateFor(ev.Type)
	if p.Mail == nil || name == "" {
		return nil
	}
	data := templates.NewEmailData(ev.Type, ev.Account.Name, ev.Account.Email,
		templates.WithTime(ev.OccurredAt),
		templates.WithCompany(p.Branding.CompanyName, p.Branding.AppName, p.Branding.SupportURL),
	)
	if err := p.Mail.SendTemplate(ctx, name, data); err != nil {
		return fmt.Errorf("send %s to account %d: %w", name, ev.Account.ID, err)
	}
	return nil
}

// Run consumes deliveries until ctx is done or the channel closes.
// Malformed messages are dropped; other failures are requeued.
func (p *AccountEventProcessor) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			p.settle(ctx, msg)
		}
	}
}

func (p *AccountEventProcessor) settle(ctx context.Context, msg amqp.Delivery) {
	err := p.Handle(ctx, msg.Body)
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.Is(err, ErrMalformed):
		p.logError("dropping account event", err, msg)
		_ = msg.Nack(false, false)
	case p.exhausted(msg):
		p.logError("account event failed too many times; dropping", err, msg)
		_ = msg.Nack(false, false)
	default:
		p.logError("account event failed; requeueing", err, msg)
		p.backoff(ctx)
		_ = msg.Nack(false, true)
	}
}

// backoff waits RetryDelay before a requeue so a lasting outage does not
// spin the same message through the queue.
func (p *AccountEventProcessor) backoff(ctx context.Context) {
	if p.RetryDelay <= 0 {
		return
	}
	t := time.NewTimer(p.RetryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (p *AccountEventProcessor) exhausted(msg amqp.Delivery) bool {
	if p.MaxDeliveries <= 0 {
		return false
	}
	return deliveryCount(msg) >= p.MaxDeliveries
}

// deliveryCount returns the broker's x-delivery-count, or 0 when absent.
func deliveryCount(msg amqp.Delivery) int64 {
	switch n := msg.Headers["x-delivery-count"].(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

func (p *AccountEventProcessor) logError(text string, err error, msg amqp.Delivery) {
	if p.Logger == nil {
		return
	}
	helpers.LogError(p.Logger, text, err, logrus.Fields{"delivery_tag": msg.DeliveryTag})
}
