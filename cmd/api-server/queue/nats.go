package queue

import (
	nats "github.com/nats-io/go-nats"
	"github.com/sirupsen/logrus"
)

var logger *logrus.Entry

func init() {
	logger = logrus.WithField("package", "queue")
}

// NATS is a message bus backed by a NATS connection.
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to the NATS server at url.
func NewNATS(url string) (*NATS, error) {
	logger := logger.WithField("url", url)
	logger.Debug("connecting to NATS")

	conn, err := nats.Connect(url)
	if err != nil {
		logger.WithError(err).Debug("unable to connect to NATS")
		return nil, err
	}

	return &NATS{conn: conn}, nil
}

// SenderOn returns a channel whose messages get published on subj. The
// channel is unbuffered, so a send blocks until the message is handed
// to the connection.
func (bus *NATS) SenderOn(subj string) chan<- []byte {
	logger := logger.WithField("subject", subj)

	send := make(chan []byte)
	go func() {
		for msg := range send {
			logger.Debug("publishing message")

			if err := bus.conn.Publish(subj, msg); err != nil {
				logger.WithError(err).Error("unable to publish message")
			}
		}
	}()

	return send
}

// Close flushes anything pending and closes the connection. Closing a nil
// bus does nothing.
func (bus *NATS) Close() {
	if bus == nil {
		return
	}

	if err := bus.conn.Flush(); err != nil {
		logger.WithError(err).Warn("unable to flush NATS connection")
	}

	bus.conn.Close()
}

// Discard returns a channel that accepts messages and drops them. It
// stands in for a bus when NATS can't be reached.
func Discard(subj string) chan<- []byte {
	logger := logger.WithField("subject", subj)

	send := make(chan []byte)
	go func() {
		for range send {
			logger.Warn("no message bus, dropping message")
		}
	}()

	return send
}
