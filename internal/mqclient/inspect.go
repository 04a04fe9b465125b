// Package mqclient inspects the RabbitMQ queues that local hosts consume
// their work from.
package mqclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Config struct {
	Timeout time.Duration
	// Retries is the number of extra dial attempts.
	Retries uint64
}

// QueueState is what a passive declare reports about a queue.
type QueueState struct {
	Messages  int
	Consumers int
}

// Inspect connects to uri and, when queue is set, passively declares it.
// A missing queue is an error. Rejected credentials or vhost are not retried.
func Inspect(ctx context.Context, uri, queue string, cfg Config) (QueueState, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if _, err := amqp.ParseURI(uri); err != nil {
		return QueueState{}, fmt.Errorf("rabbitmq uri: %w", err)
	}

	var conn *amqp.Connection
	dial := func() error {
		c, err := amqp.DialConfig(uri, amqp.Config{
			Dial:      dialer(ctx, cfg.Timeout),
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
		})
		if errors.Is(err, amqp.ErrCredentials) || errors.Is(err, amqp.ErrVhost) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.Retries), ctx)
	if err := backoff.Retry(dial, b); err != nil {
		return QueueState{}, fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	if queue == "" {
		return QueueState{}, nil
	}

	ch, err := conn.Channel()
	if err != nil {
		return QueueState{}, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclarePassive(queue, false, false, false, false, nil)
	if err != nil {
		return QueueState{}, fmt.Errorf("queue %s: %w", queue, err)
	}
	return QueueState{Messages: q.Messages, Consumers: q.Consumers}, nil
}

// dialer bounds the TCP connect by ctx and the AMQP handshake by timeout;
// the library clears the deadline once the connection is open.
func dialer(ctx context.Context, timeout time.Duration) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}
}
