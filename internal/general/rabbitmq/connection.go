package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ride-share/internal/general/config"
	"ride-share/internal/general/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dialTimeout    = 30 * time.Second
	heartbeat      = 10 * time.Second
	maxRedialDelay = 30 * time.Second
)

// Client wraps an AMQP connection with automatic redial and a dedicated
// confirm-mode channel for publishing. Consumers open their own channels.
type Client struct {
	url    string
	logger *logger.Logger
	logCtx context.Context // survives caller cancellation; redials outlive requests

	mu     sync.RWMutex
	conn   *amqp.Connection
	sendCh *amqp.Channel

	sendMu   sync.Mutex
	confirms chan amqp.Confirmation

	done   chan struct{}
	redial chan struct{}
}

// ConnectRabbitMQ dials the broker, declares the topology, and starts the
// redial watcher. The first dial is a single attempt so misconfiguration
// fails startup instead of spinning silently.
func ConnectRabbitMQ(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Client, error) {
	client := &Client{
		url: fmt.Sprintf("amqp://%s:%s@%s:%d/",
			cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port),
		logger: log,
		logCtx: context.WithoutCancel(ctx),
		done:   make(chan struct{}),
		redial: make(chan struct{}, 1),
	}

	if err := client.dial(); err != nil {
		return nil, err
	}
	go client.redialLoop()

	return client, nil
}

// Close stops the redial watcher and tears down the connection.
func (client *Client) Close() {
	select {
	case <-client.done:
	default:
		close(client.done)
	}

	client.mu.Lock()
	if client.sendCh != nil {
		_ = client.sendCh.Close()
		client.sendCh = nil
	}
	if client.conn != nil {
		_ = client.conn.Close()
		client.conn = nil
	}
	client.mu.Unlock()

	// unblock anyone waiting on a confirm
	client.sendMu.Lock()
	if client.confirms != nil {
		close(client.confirms)
		client.confirms = nil
	}
	client.sendMu.Unlock()
}

// dial connects once: connection, publish channel in confirm mode, topology.
func (client *Client) dial() (err error) {
	conn, err := amqp.DialConfig(client.url, amqp.Config{
		Heartbeat: heartbeat,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		client.logger.Error(client.logCtx, "broker_dial_failed", "Failed to dial RabbitMQ", err, nil)
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	defer func() {
		if err != nil {
			_ = conn.Close()
		}
	}()

	ch, err := conn.Channel()
	if err != nil {
		client.logger.Error(client.logCtx, "broker_channel_failed", "Failed to open publish channel", err, nil)
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	defer func() {
		if err != nil {
			_ = ch.Close()
		}
	}()

	if err = declareTopology(ch); err != nil {
		client.logger.Error(client.logCtx, "broker_topology_failed", "Failed to declare exchanges and queues", err, nil)
		return fmt.Errorf("rabbitmq: declare topology: %w", err)
	}

	if err = ch.Confirm(false); err != nil {
		client.logger.Error(client.logCtx, "broker_confirm_mode_failed", "Failed to enable publisher confirms", err, nil)
		return fmt.Errorf("rabbitmq: confirm mode: %w", err)
	}

	client.sendMu.Lock()
	stale := client.confirms
	client.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	client.sendMu.Unlock()
	if stale != nil {
		close(stale)
	}

	// mandatory publishes that no queue wants come back here
	returns := ch.NotifyReturn(make(chan amqp.Return, 1))
	go func() {
		for r := range returns {
			client.logger.Error(client.logCtx, "broker_message_returned", "Unroutable message returned by broker",
				fmt.Errorf("code=%d text=%s", r.ReplyCode, r.ReplyText),
				map[string]any{"exchange": r.Exchange, "routingKey": r.RoutingKey, "size": len(r.Body)})
		}
	}()

	client.mu.Lock()
	if client.sendCh != nil && !client.sendCh.IsClosed() {
		_ = client.sendCh.Close()
	}
	client.conn = conn
	client.sendCh = ch
	client.mu.Unlock()

	go client.watchClose(conn, ch)

	client.logger.Info(client.logCtx, "broker_connected", "RabbitMQ connection established", nil)
	return nil
}

// watchClose signals a redial when either the connection or the publish
// channel drops.
func (client *Client) watchClose(conn *amqp.Connection, ch *amqp.Channel) {
	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case <-client.done:
		return
	case <-connClosed:
	case <-chClosed:
	}

	select {
	case client.redial <- struct{}{}:
	default:
		// a redial is already pending
	}
}

// redialLoop re-establishes the connection with capped exponential backoff.
func (client *Client) redialLoop() {
	delay := time.Second
	for {
		select {
		case <-client.done:
			return
		case <-client.redial:
		}

		for {
			select {
			case <-client.done:
				return
			default:
			}

			if err := client.dial(); err == nil {
				delay = time.Second
				client.logger.Info(client.logCtx, "broker_reconnected", "Reconnected to RabbitMQ", nil)
				break
			} else {
				client.logger.Error(client.logCtx, "broker_redial_failed", "Reconnect attempt failed", err, nil)
			}

			time.Sleep(delay)
			if delay < maxRedialDelay {
				delay *= 2
				if delay > maxRedialDelay {
					delay = maxRedialDelay
				}
			}
		}
	}
}
