package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"crm-service/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Producer publishes notifications onto the outbound queue. It implements
// usecase.Notifier for lead creation and is used directly by the handlers
// for invitations and password resets.
type Producer struct {
	ch *amqp.Channel
}

// NewProducer wraps an open channel.
func NewProducer(ch *amqp.Channel) *Producer {
	return &Producer{ch: ch}
}

// LeadCreated queues a lead-created notification for the lead's tenant.
func (p *Producer) LeadCreated(ctx context.Context, lead *model.Lead) error {
	return p.publish(ctx, Message{
		Kind:     KindLeadCreated,
		TenantID: lead.ProfileID,
		LeadID:   lead.ID,
		LeadName: lead.FirstName + " " + lead.LastName,
	})
}

// AgentInvited queues an invitation for a newly provisioned agent.
func (p *Producer) AgentInvited(ctx context.Context, to, firstName string) error {
	return p.publish(ctx, Message{
		Kind:      KindAgentInvitation,
		To:        to,
		FirstName: firstName,
	})
}

// PasswordReset queues a password reset token delivery.
func (p *Producer) PasswordReset(ctx context.Context, to, token string) error {
	return p.publish(ctx, Message{
		Kind:  KindPasswordReset,
		To:    to,
		Token: token,
	})
}

func (p *Producer) publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing notification: %w", err)
	}
	return nil
}
