package http

import (
	"testing"
	"time"
)

func TestSendWithBackoffDelivers(t *testing.T) {
	ch := make(chan []byte)

	done := make(chan bool)
	go func() {
		done <- sendWithBackoff(logger, ch, []byte("hello"))
	}()

	// Let at least one attempt time out before receiving.
	time.Sleep(2 * backoffBase)

	if msg := string(<-ch); msg != "hello" {
		t.Fatalf("expected hello, got %v", msg)
	}

	if !<-done {
		t.Fatal("expected send to be reported as delivered")
	}
}

func TestSendWithBackoffGivesUp(t *testing.T) {
	base, attempts := backoffBase, backoffAttempts
	backoffBase, backoffAttempts = time.Millisecond, 3
	defer func() {
		backoffBase, backoffAttempts = base, attempts
	}()

	if sendWithBackoff(logger, make(chan []byte), []byte("lost")) {
		t.Fatal("expected send with no receiver to fail")
	}
}
