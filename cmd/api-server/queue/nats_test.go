package queue

import (
	"testing"
	"time"
)

func TestDiscardAcceptsMessages(t *testing.T) {
	send := Discard("test")

	for i := 0; i < 3; i++ {
		select {
		case send <- []byte("msg"):
		case <-time.After(time.Second):
			t.Fatalf("timed out sending message %v", i)
		}
	}

	close(send)
}

func TestCloseWithoutConnection(t *testing.T) {
	var bus *NATS

	// main closes the bus on shutdown even when NATS was never reached.
	bus.Close()
}
