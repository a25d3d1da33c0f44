package supervisor

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

type fakeServer struct {
	listenErr error
	stop      chan struct{}
	shutdowns atomic.Int32
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.shutdowns.Add(1) == 1 {
		close(f.stop)
	}
	return nil
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	srv := newFakeServer(nil)
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if got := srv.shutdowns.Load(); got != 1 {
		t.Errorf("Shutdown called %d times, want 1", got)
	}
}

func TestHTTPServerService_ListenError(t *testing.T) {
	listenErr := errors.New("address already in use")
	svc := NewHTTPServerService(newFakeServer(listenErr), 0)

	err := svc.Serve(context.Background())
	if !errors.Is(err, listenErr) {
		t.Errorf("Serve() = %v, want wrapped %v", err, listenErr)
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("shutdownTimeout = %v, want default 10s", svc.shutdownTimeout)
	}
}

type blockingService struct {
	started chan struct{}
	stopped atomic.Bool
}

func (b *blockingService) Serve(ctx context.Context) error {
	close(b.started)
	<-ctx.Done()
	b.stopped.Store(true)
	return ctx.Err()
}

func (b *blockingService) String() string { return "blocking" }

func TestTree_RunsAndStopsServices(t *testing.T) {
	tree := NewTree(TreeConfig{ShutdownTimeout: time.Second})
	msg := &blockingService{started: make(chan struct{})}
	api := &blockingService{started: make(chan struct{})}
	tree.AddMessagingService(msg)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, s := range []*blockingService{msg, api} {
		select {
		case <-s.started:
		case <-time.After(2 * time.Second):
			t.Fatal("service not started")
		}
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
	if !msg.stopped.Load() || !api.stopped.Load() {
		t.Error("services were not stopped")
	}
	if report, err := tree.UnstoppedServiceReport(); err != nil || len(report) != 0 {
		t.Errorf("UnstoppedServiceReport() = %v, %v", report, err)
	}
}

type panicOnce struct {
	calls atomic.Int32
	ok    chan struct{}
}

func (p *panicOnce) Serve(ctx context.Context) error {
	if p.calls.Add(1) == 1 {
		panic("boom")
	}
	close(p.ok)
	<-ctx.Done()
	return ctx.Err()
}

func (p *panicOnce) String() string { return "panic-once" }

func TestTree_RestartsPanickingService(t *testing.T) {
	tree := NewTree(TreeConfig{ShutdownTimeout: time.Second})
	svc := &panicOnce{ok: make(chan struct{})}
	tree.AddMessagingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	select {
	case <-svc.ok:
	case <-time.After(3 * time.Second):
		t.Fatal("service was not restarted after panic")
	}
}

func TestEventHook_Levels(t *testing.T) {
	tests := []struct {
		name      string
		event     suture.Event
		wantLevel string
	}{
		{
			name:      "panic",
			event:     suture.EventServicePanic{SupervisorName: "messaging-layer", ServiceName: "websocket-hub", PanicMsg: "boom"},
			wantLevel: `"level":"error"`,
		},
		{
			name:      "backoff",
			event:     suture.EventBackoff{SupervisorName: "api-layer"},
			wantLevel: `"level":"warn"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			EventHook(zerolog.New(&buf))(tt.event)

			got := buf.String()
			if !strings.Contains(got, tt.wantLevel) || !strings.Contains(got, `"component":"supervisor"`) {
				t.Errorf("logged %s", got)
			}
		})
	}
}
