package http

import (
	"time"

	"github.com/sirupsen/logrus"
)

var (
	backoffBase     = 250 * time.Millisecond
	backoffAttempts = 5
)

// sendWithBackoff tries to hand msg to ch, doubling the wait after each
// attempt that times out. It gives up after backoffAttempts and reports
// whether the message was sent.
func sendWithBackoff(logger *logrus.Entry, ch chan<- []byte, msg []byte) bool {
	wait := backoffBase

	for attempt := 1; attempt <= backoffAttempts; attempt++ {
		select {
		case ch <- msg:
			logger.WithField("attempt", attempt).Debug("sent message")
			return true

		case <-time.After(wait):
			logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"wait":    wait,
			}).Warn("timed out sending message, backing off")

			wait *= 2
		}
	}

	logger.Error("giving up sending message")
	return false
}
