package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/ampplex/influencerflow/internal/logging"
)

const retryHeader = "x-retry-count"

// AMQPQueue publishes to and consumes from durable RabbitMQ queues named after the topic.
type AMQPQueue struct {
	conn       *amqp.Connection
	mu         sync.Mutex
	ch         *amqp.Channel
	declared   map[string]bool
	MaxRetries int
	Log        logrus.FieldLogger
}

func DialAMQP(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &AMQPQueue{
		conn:       conn,
		ch:         ch,
		declared:   map[string]bool{},
		MaxRetries: 3,
		Log:        logging.Get(),
	}, nil
}

func (q *AMQPQueue) declare(topic string) error {
	if q.declared[topic] {
		return nil
	}
	_, err := q.ch.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	q.declared[topic] = true
	return nil
}

// Publish sends payload as JSON. json.RawMessage and []byte are sent verbatim.
func (q *AMQPQueue) Publish(topic string, payload any) error {
	return q.publish(topic, payload, 0)
}

func (q *AMQPQueue) publish(topic string, payload any, retries int32) error {
	body, err := encode(payload)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.declare(topic); err != nil {
		return err
	}
	return q.ch.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{retryHeader: retries},
		Body:         body,
	})
}

// Subscribe starts a consumer goroutine; the handler receives a json.RawMessage.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	return q.Consume(context.Background(), topic, handler)
}

// Consume delivers messages with manual ack. A failed message is republished
// with an incremented retry header until MaxRetries, then dropped.
func (q *AMQPQueue) Consume(ctx context.Context, topic string, handler func(payload any) error) error {
	q.mu.Lock()
	if err := q.declare(topic); err != nil {
		q.mu.Unlock()
		return err
	}
	msgs, err := q.ch.Consume(
		topic,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	q.mu.Unlock()
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				q.handle(topic, d, handler)
			}
		}
	}()
	return nil
}

func (q *AMQPQueue) handle(topic string, d amqp.Delivery, handler func(payload any) error) {
	retries := retryCount(d.Headers)
	log := q.Log.WithFields(logrus.Fields{"topic": topic, "retry": retries})

	err := handler(json.RawMessage(d.Body))
	if err == nil {
		d.Ack(false)
		return
	}

	if int(retries) < q.MaxRetries {
		log.WithError(err).Warn("⚠️ handler failed, requeueing")
		if pubErr := q.publish(topic, json.RawMessage(d.Body), retries+1); pubErr != nil {
			log.WithError(pubErr).Error("requeue failed, returning message to broker")
			d.Nack(false, true)
			return
		}
	} else {
		log.WithError(err).Error("handler failed permanently, dropping message")
	}
	d.Ack(false)
}

func retryCount(h amqp.Table) int32 {
	switch v := h[retryHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	}
	return 0
}

func encode(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case json.RawMessage:
		return p, nil
	case []byte:
		return p, nil
	}
	return json.Marshal(payload)
}

func (q *AMQPQueue) Close() error {
	q.ch.Close()
	return q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
