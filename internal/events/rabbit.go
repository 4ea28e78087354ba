package events

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Dial connects to RabbitMQ. The caller owns the connection.
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}
