// Package rabbitmq publishes domain events to a RabbitMQ topic exchange.
package rabbitmq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const (
	defaultRetryCount = 5
	defaultRetryDelay = 2 * time.Second
)

// Config captures the settings for the broker connection.
type Config struct {
	URL        string
	Exchange   string
	RetryCount int
	RetryDelay time.Duration
}

// Client owns one connection and channel and re-dials when the broker drops
// the connection.
type Client struct {
	cfg     Config
	log     zerolog.Logger
	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closing bool
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = defaultRetryCount
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &Client{cfg: cfg, log: log}
}

// Connect dials the broker and declares the durable topic exchange.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	for i := 0; i < c.cfg.RetryCount; i++ {
		if err = c.dial(); err == nil {
			c.log.Info().Str("exchange", c.cfg.Exchange).Msg("connected to rabbitmq")
			go c.watch(c.conn)
			return nil
		}
		c.log.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", c.cfg.RetryCount).Msg("rabbitmq connection failed")
		if i < c.cfg.RetryCount-1 {
			time.Sleep(c.cfg.RetryDelay)
		}
	}
	return fmt.Errorf("rabbitmq connect: %w", err)
}

func (c *Client) dial() error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		c.cfg.Exchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	c.conn, c.channel = conn, ch
	return nil
}

func (c *Client) watch(conn *amqp.Connection) {
	notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	amqpErr, ok := <-notifyClose
	if !ok {
		return
	}

	c.mu.RLock()
	closing := c.closing
	c.mu.RUnlock()
	if closing {
		return
	}

	c.log.Warn().Err(amqpErr).Msg("rabbitmq connection lost, reconnecting")
	time.Sleep(c.cfg.RetryDelay)
	if err := c.Connect(); err != nil {
		c.log.Error().Err(err).Msg("rabbitmq reconnect failed")
	}
}

func (c *Client) publishChannel() (channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil || c.conn.IsClosed() || c.channel == nil {
		return nil, errors.New("rabbitmq: not connected")
	}
	return c.channel, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closing {
		return nil
	}
	c.closing = true

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("channel close: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("connection close: %w", err))
		}
	}
	return errors.Join(errs...)
}
