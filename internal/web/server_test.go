package web

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestServer_StartStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	s := NewServer(Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, h.deps)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_DefaultShutdownTimeout(t *testing.T) {
	s := NewServer(Config{}, newHarness(t).deps)
	if s.cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s default, got %s", s.cfg.ShutdownTimeout)
	}
}
