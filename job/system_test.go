package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestSystemSchedulesAndRunsJobs(t *testing.T) {
	s := New(Config{Workers: 2, NormalFibers: 4, ExtendedFibers: 1})
	s.Start()
	defer s.Stop()

	var ran atomic.Int32
	wg := NewWaitGroup(10)
	for i := 0; i < 10; i++ {
		s.Schedule(&Job{
			Name:     "inc",
			Priority: PriorityNormal,
			Group:    wg,
			Execute: func(ctx context.Context) {
				ran.Add(1)
			},
		})
	}

	done := make(chan struct{})
	go func() {
		ctx := WithFiberContext(context.Background())
		_ = wg.Wait(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs did not complete in time")
	}
	if ran.Load() != 10 {
		t.Fatalf("want 10 executions, got %d", ran.Load())
	}
}

func TestSystemHighPriorityRunsBeforeBackground(t *testing.T) {
	s := New(Config{Workers: 1, NormalFibers: 1, ExtendedFibers: 1})

	var order []string
	recorded := make(chan struct{}, 2)
	wg := NewWaitGroup(2)

	// Schedule background first, both before the single worker starts; it
	// must still pick the high-priority job, and with one normal fiber the
	// second job cannot start until the first has finished.
	s.Schedule(&Job{
		Name:     "bg",
		Priority: PriorityBackground,
		Group:    wg,
		Execute: func(ctx context.Context) {
			order = append(order, "bg")
			recorded <- struct{}{}
		},
	})
	s.Schedule(&Job{
		Name:     "hi",
		Priority: PriorityHigh,
		Group:    wg,
		Execute: func(ctx context.Context) {
			order = append(order, "hi")
			recorded <- struct{}{}
		},
	})
	s.Start()
	defer s.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-recorded:
		case <-time.After(2 * time.Second):
			t.Fatal("jobs did not complete in time")
		}
	}
	if len(order) != 2 || order[0] != "hi" {
		t.Fatalf("want high priority job first, got %v", order)
	}
}

func TestSystemMainAffinityOnlyRunsOnWorkerZero(t *testing.T) {
	s := New(Config{Workers: 4, NormalFibers: 4, ExtendedFibers: 1})
	s.Start()
	defer s.Stop()

	done := make(chan struct{})
	s.Schedule(&Job{
		Name:     "main-only",
		Priority: PriorityHigh,
		Affinity: AffinityMain,
		Execute: func(ctx context.Context) {
			close(done)
		},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main-affinity job never ran")
	}
}

func TestSystemMainAffinityJobDoesNotBlockNormalAffinityBehindIt(t *testing.T) {
	// Regression for popJob requeuing an affinity mismatch at the front:
	// a worker that can never run a main-only job must not spin forever
	// re-popping it ahead of a same-priority job it *can* run.
	s := New(Config{Workers: 2, NormalFibers: 4, ExtendedFibers: 1})
	s.Start()
	defer s.Stop()

	mainRan := make(chan struct{})
	normalRan := make(chan struct{})

	s.Schedule(&Job{
		Name:     "main-only",
		Priority: PriorityHigh,
		Affinity: AffinityMain,
		Execute: func(ctx context.Context) {
			close(mainRan)
		},
	})
	s.Schedule(&Job{
		Name:     "normal",
		Priority: PriorityHigh,
		Affinity: AffinityAny,
		Execute: func(ctx context.Context) {
			close(normalRan)
		},
	})

	for _, done := range []chan struct{}{mainRan, normalRan} {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("a job never ran; affinity-mismatch requeue is shadowing its queue")
		}
	}
}

func TestSystemStopIsIdempotentAndDrainsWorkers(t *testing.T) {
	s := New(Config{Workers: 2, NormalFibers: 2, ExtendedFibers: 1})
	s.Start()
	s.Stop()
	s.Stop() // must not panic or double-close channels
}
