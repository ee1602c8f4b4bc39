package analytics

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"career-arcade-backend/internal/engine"

	amqp "github.com/rabbitmq/amqp091-go"
)

const queueName = "game_events"

// AMQPSink publishes engine events to a durable RabbitMQ queue for offline
// analytics. Durability of the authoritative record is the store's job; a
// publish failure here is logged and dropped, never surfaced to gameplay.
type AMQPSink struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
	url  string
}

func NewAMQPSink(url string) (*AMQPSink, error) {
	s := &AMQPSink{url: url}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AMQPSink) connect() error {
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return err
	}
	s.conn = conn
	s.ch = ch
	return nil
}

func (s *AMQPSink) Publish(ev engine.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("analytics: marshal event %s: %v", ev.Key, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = s.ch.PublishWithContext(ctx,
		"",
		queueName,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    ev.Key,
			Timestamp:    ev.At,
			Body:         body,
		})
	if err != nil {
		log.Printf("analytics: publish %s: %v, reconnecting", ev.Kind, err)
		s.reconnect()
	}
}

func (s *AMQPSink) reconnect() {
	if s.ch != nil {
		s.ch.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
	if err := s.connect(); err != nil {
		log.Printf("analytics: reconnect: %v", err)
	}
}

func (s *AMQPSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		s.ch.Close()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}
