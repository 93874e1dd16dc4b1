package events

import (
	"context"
	"testing"
	"time"
)

func TestNewRedisPublisherRejectsBadURL(t *testing.T) {
	if _, err := NewRedisPublisher(context.Background(), "not a url", "", nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewRedisPublisherFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := NewRedisPublisher(ctx, "redis://127.0.0.1:1/0", "", nil); err == nil {
		t.Fatal("expected connection error")
	}
}
