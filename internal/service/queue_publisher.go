// Package queue_publisher provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/visit-planner/internal/queue"
)

// Publisher sends events to the broker at URL, dialing once per publish.
type Publisher struct {
	URL string
}

func New(url string) *Publisher { return &Publisher{URL: url} }

// PublishPlanGenerated publishes ev to the "plan.generated" queue. Messages
// are marked as persistent. Any error is logged and returned so the caller
// can choose to ignore it.
func (p *Publisher) PublishPlanGenerated(ctx context.Context, ev q.PlanGeneratedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}
	return p.publish(ctx, q.PlanGeneratedQueue, body)
}

func (p *Publisher) publish(ctx context.Context, queue string, body []byte) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
