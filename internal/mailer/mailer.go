package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

const emailQueue = "outbound_email"

// Message is one outbound email handed to the delivery worker.
type Message struct {
	To       string            `json:"to"`
	Kind     string            `json:"kind"` // activation, password_reset, invitation
	Context  map[string]string `json:"context"`
	QueuedAt time.Time         `json:"queued_at"`
}

// Mailer enqueues outbound email. Delivery itself happens out of process.
type Mailer interface {
	SendActivation(ctx context.Context, to, uid, token, url string) error
	SendPasswordReset(ctx context.Context, to, uid, token string) error
	SendInvitation(ctx context.Context, to, fromEmail, cardName, shopName string) error
	Close() error
}

// Client publishes email messages to a RabbitMQ queue.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

var _ Mailer = (*Client)(nil)

// New connects to RabbitMQ and declares the outbound email queue.
func New(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		emailQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare %s: %w", emailQueue, err)
	}

	return &Client{conn: conn, channel: ch}, nil
}

// Close closes the channel and connection.
func (c *Client) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			return fmt.Errorf("close channel: %w", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("close connection: %w", err)
		}
	}
	return nil
}

// SendActivation enqueues an email-confirmation message.
func (c *Client) SendActivation(ctx context.Context, to, uid, token, url string) error {
	return c.publish(Message{
		To:   to,
		Kind: "activation",
		Context: map[string]string{
			"uid":   uid,
			"token": token,
			"url":   url,
		},
	})
}

// SendPasswordReset enqueues a password-reset message.
func (c *Client) SendPasswordReset(ctx context.Context, to, uid, token string) error {
	return c.publish(Message{
		To:   to,
		Kind: "password_reset",
		Context: map[string]string{
			"uid":   uid,
			"token": token,
		},
	})
}

// SendInvitation enqueues an app-invite message carrying the shared card context.
func (c *Client) SendInvitation(ctx context.Context, to, fromEmail, cardName, shopName string) error {
	return c.publish(Message{
		To:   to,
		Kind: "invitation",
		Context: map[string]string{
			"from":      fromEmail,
			"card_name": cardName,
			"shop_name": shopName,
		},
	})
}

func (c *Client) publish(msg Message) error {
	msg.QueuedAt = time.Now()
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal email message: %w", err)
	}

	err = c.channel.Publish(
		"",         // default exchange
		emailQueue, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    msg.QueuedAt,
		})
	if err != nil {
		return fmt.Errorf("publish email message: %w", err)
	}
	return nil
}

// LogMailer logs instead of publishing. Used when no broker is configured,
// and in tests.
type LogMailer struct{}

var _ Mailer = (*LogMailer)(nil)

// SendActivation logs an activation message.
func (LogMailer) SendActivation(ctx context.Context, to, uid, token, url string) error {
	log.Printf("mailer: activation email for %s (url: %s)", to, url)
	return nil
}

// SendPasswordReset logs a password-reset message.
func (LogMailer) SendPasswordReset(ctx context.Context, to, uid, token string) error {
	log.Printf("mailer: password reset email for %s", to)
	return nil
}

// SendInvitation logs an invitation message.
func (LogMailer) SendInvitation(ctx context.Context, to, fromEmail, cardName, shopName string) error {
	log.Printf("mailer: invitation email for %s (card %q)", to, cardName)
	return nil
}

// Close is a no-op.
func (LogMailer) Close() error { return nil }
