package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PlanLogFile is the file the consumer appends to inside its log directory.
const PlanLogFile = "plans.log"

// Consumer reads the plan.generated queue and appends one line per event to
// LogDir/plans.log.
type Consumer struct {
	URL    string
	LogDir string
}

// Start connects to RabbitMQ, declares the plan.generated queue (durable),
// and consumes until ctx is cancelled. Broker failures are retried with
// exponential backoff capped at 30s. A message that cannot be handled is
// rejected without requeue so the loop keeps running.
func (c Consumer) Start(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Printf("plan-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("plan-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("plan-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(PlanGeneratedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, PlanGeneratedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handleMessage(d.Body); err != nil {
			log.Printf("plan-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c Consumer) handleMessage(body []byte) error {
	var ev PlanGeneratedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.PlanID == "" {
		return errors.New("event without plan_id")
	}
	dir := c.LogDir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, PlanLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev PlanGeneratedEvent) string {
	user := "anon"
	if ev.UserID > 0 {
		user = fmt.Sprint(ev.UserID)
	}
	return fmt.Sprintf("[%s] Plan generated | plan_id=%s | user_id=%s | mode=%s | dates=%s..%s | venues=%d/%d | total=%d cents | savings=%d cents\n",
		ev.GeneratedAt, ev.PlanID, user, ev.Mode, ev.StartDate, ev.EndDate,
		ev.ScheduledCount, ev.VenueCount, ev.TotalCents, ev.SavingsCents)
}
