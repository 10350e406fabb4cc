package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"studytracker/internal/service"
	"studytracker/internal/tracking"
)

type stubReconciler struct {
	mu     sync.Mutex
	calls  []bool
	report *service.ReconcileReport
	err    error
	ran    chan struct{}
}

func (r *stubReconciler) Reconcile(_ context.Context, apply bool) (*service.ReconcileReport, error) {
	r.mu.Lock()
	r.calls = append(r.calls, apply)
	r.mu.Unlock()
	if r.ran != nil {
		select {
		case r.ran <- struct{}{}:
		default:
		}
	}
	return r.report, r.err
}

func TestRunOnceLogsDrift(t *testing.T) {
	var buf bytes.Buffer
	reconciler := &stubReconciler{report: &service.ReconcileReport{
		UsersChecked: 3,
		Drifts:       []*tracking.DriftError{{UserID: "u1"}},
		Repaired:     1,
	}}

	New(reconciler, time.Hour, true, log.New(&buf, "", 0)).RunOnce()

	if len(reconciler.calls) != 1 || !reconciler.calls[0] {
		t.Fatalf("expected one applying pass, got %v", reconciler.calls)
	}
	if !strings.Contains(buf.String(), "1 of 3 users drifted, 1 repaired") {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}

func TestRunOnceLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	reconciler := &stubReconciler{err: errors.New("db down")}

	New(reconciler, time.Hour, false, log.New(&buf, "", 0)).RunOnce()

	if !strings.Contains(buf.String(), "reconcile failed: db down") {
		t.Fatalf("unexpected log output: %q", buf.String())
	}
}

func TestStartRunsImmediately(t *testing.T) {
	reconciler := &stubReconciler{
		report: &service.ReconcileReport{},
		ran:    make(chan struct{}, 1),
	}
	s := New(reconciler, time.Hour, false, log.New(&bytes.Buffer{}, "", 0))
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	select {
	case <-reconciler.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("reconciliation did not run after start")
	}
}
