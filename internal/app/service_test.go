package app

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	stopErr  error
	stopped  atomic.Bool
	order    *stopOrder
}

type stopOrder struct {
	mu    sync.Mutex
	names []string
}

func (o *stopOrder) add(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.stopped.Store(true)
	if s.order != nil {
		s.order.add(s.name)
	}
	return s.stopErr
}

func TestRunnerStopsAllServicesOnCancel(t *testing.T) {
	a, b := &fakeService{name: "a"}, &fakeService{name: "b"}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := NewRunner(a, b).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
	if !a.stopped.Load() || !b.stopped.Load() {
		t.Fatalf("every service should be stopped")
	}
}

func TestRunnerReturnsStartError(t *testing.T) {
	boom := errors.New("boom")
	failing := &fakeService{name: "failing", startErr: boom}
	healthy := &fakeService{name: "healthy"}
	err := NewRunner(failing, healthy).Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("start error should propagate, got %v", err)
	}
	if !healthy.stopped.Load() {
		t.Fatalf("remaining services should be stopped after a failure")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{Mode: " Worker "})
	if opts.Mode != ModeWorker {
		t.Fatalf("mode want worker got %q", opts.Mode)
	}
	if opts.Logger == nil || opts.ShutdownTimeout != 10*time.Second {
		t.Fatalf("defaults not applied: %+v", opts)
	}
	if normalizeOptions(Options{Mode: "bogus"}).Mode != ModeAll {
		t.Fatalf("unknown mode should fall back to all")
	}
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("nil config should fail")
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker, "all": ModeAll}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestServicePlan(t *testing.T) {
	cases := []struct {
		mode         string
		queue        bool
		http, worker bool
	}{
		{ModeAll, true, true, true},
		{ModeAll, false, true, false},
		{ModeAPI, true, true, false},
		{ModeWorker, true, false, true},
	}
	for _, tc := range cases {
		withHTTP, withWorker, err := servicePlan(tc.mode, tc.queue)
		if err != nil {
			t.Fatalf("servicePlan(%s, %v) err: %v", tc.mode, tc.queue, err)
		}
		if withHTTP != tc.http || withWorker != tc.worker {
			t.Fatalf("servicePlan(%s, %v) = %v, %v", tc.mode, tc.queue, withHTTP, withWorker)
		}
	}
	if _, _, err := servicePlan(ModeWorker, false); !errors.Is(err, ErrWorkerNeedsQueue) {
		t.Fatalf("expected ErrWorkerNeedsQueue, got %v", err)
	}
}

func TestRunnerStopsInReverseOrderAndReportsStopErrors(t *testing.T) {
	order := &stopOrder{}
	stuck := errors.New("drain timeout")
	httpSvc := &fakeService{name: "http", order: order}
	workerSvc := &fakeService{name: "worker", order: order, stopErr: stuck}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewRunner(httpSvc, workerSvc).Run(ctx, time.Second, nil)
	if !errors.Is(err, stuck) {
		t.Fatalf("stop error should be reported, got %v", err)
	}
	if len(order.names) != 2 || order.names[0] != "worker" || order.names[1] != "http" {
		t.Fatalf("stop order want [worker http] got %v", order.names)
	}
}

func TestRunnerRejectsNilService(t *testing.T) {
	if err := NewRunner(&fakeService{name: "a"}, nil).Run(context.Background(), time.Second, nil); !errors.Is(err, ErrNilService) {
		t.Fatalf("nil service want ErrNilService got %v", err)
	}
	if err := NewRunner().Run(context.Background(), time.Second, nil); !errors.Is(err, ErrNoServices) {
		t.Fatalf("empty runner want ErrNoServices got %v", err)
	}
}

func TestHTTPServiceServesUntilCancelled(t *testing.T) {
	svc := NewHTTPService("127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRunner(svc).Run(ctx, time.Second, nil) }()

	deadline := time.Now().Add(2 * time.Second)
	var resp *http.Response
	var err error
	for time.Now().Before(deadline) {
		if addr := svc.Addr(); addr != "127.0.0.1:0" {
			if resp, err = http.Get("http://" + addr + "/"); err == nil {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	if resp == nil {
		t.Fatalf("http service never answered: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("unexpected body %q", string(body))
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
}

func TestHTTPServiceReportsBindError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer busy.Close()
	svc := NewHTTPService(busy.Addr().String(), http.NotFoundHandler())
	if err := svc.Start(context.Background()); err == nil {
		t.Fatalf("binding a used port should fail")
	}
}
