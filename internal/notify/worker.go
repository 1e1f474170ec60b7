package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Sender is the mail delivery contract the worker drives.
type Sender interface {
	SendLeadCreated(to, leadName string) error
	SendAgentInvitation(to, firstName string) error
	SendPasswordReset(to, token string) error
}

// OwnerResolver maps a tenant to its organizer's email address.
type OwnerResolver interface {
	OwnerEmail(ctx context.Context, tenantID uint) (string, error)
}

// Worker drains the notification queue into the SMTP sender.
type Worker struct {
	ch       *amqp.Channel
	sender   Sender
	resolver OwnerResolver
	log      *zap.Logger
}

// NewWorker wires the worker with its collaborators.
func NewWorker(ch *amqp.Channel, sender Sender, resolver OwnerResolver, log *zap.Logger) *Worker {
	return &Worker{ch: ch, sender: sender, resolver: resolver, log: log}
}

// Start consumes the queue until the channel closes. Malformed messages are
// rejected without requeue; delivery failures are dead-lettered.
func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.ch.Consume(
		QueueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("registering notification consumer: %w", err)
	}

	w.log.Info("Notification worker started", zap.String("queue", QueueName))

	for d := range msgs {
		var msg Message
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			w.log.Error("Malformed notification message", zap.Error(err))
			d.Nack(false, false)
			continue
		}

		if err := w.deliver(ctx, msg); err != nil {
			w.log.Error("Notification delivery failed",
				zap.String("kind", msg.Kind),
				zap.Error(err))
			d.Nack(false, false)
			continue
		}

		w.log.Info("Notification delivered", zap.String("kind", msg.Kind))
		d.Ack(false)
	}

	return nil
}

func (w *Worker) deliver(ctx context.Context, msg Message) error {
	switch msg.Kind {
	case KindLeadCreated:
		to, err := w.resolver.OwnerEmail(ctx, msg.TenantID)
		if err != nil {
			return fmt.Errorf("resolving organizer for tenant %d: %w", msg.TenantID, err)
		}
		return w.sender.SendLeadCreated(to, msg.LeadName)
	case KindAgentInvitation:
		return w.sender.SendAgentInvitation(msg.To, msg.FirstName)
	case KindPasswordReset:
		return w.sender.SendPasswordReset(msg.To, msg.Token)
	default:
		return fmt.Errorf("unknown notification kind %q", msg.Kind)
	}
}
