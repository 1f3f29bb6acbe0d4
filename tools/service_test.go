package tools

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew_RequiresSession(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestService_CallTimeout(t *testing.T) {
	sess := newFakeSession()
	sess.blockEval = make(chan struct{})
	svc, err := New(Config{Session: sess, CallTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(svc.Close)
	t.Cleanup(func() { close(sess.blockEval) })

	_, err = svc.Dispatch(context.Background(), Call{
		Name: "eval_r",
		Args: map[string]any{"code": "Sys.sleep(60)"},
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestService_Ping(t *testing.T) {
	svc, sess := newTestService(t, Config{})

	if err := svc.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if sess.pingCalls != 1 {
		t.Errorf("expected one ping, got %d", sess.pingCalls)
	}

	sess.pingErr = errors.New("session gone")
	if err := svc.Ping(context.Background()); err == nil {
		t.Error("Ping should surface session failure")
	}
}

func TestService_CloseRejectsFurtherCalls(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	svc.Close()

	_, err := svc.Dispatch(context.Background(), Call{
		Name: "eval_r",
		Args: map[string]any{"code": "1"},
	})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
