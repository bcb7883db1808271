package worker

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestStartProcessesJobsInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := make(chan int, 8)
	sem := make(chan struct{}, 1)

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	Start(StartOptions[int]{
		Ctx:  ctx,
		Sem:  sem,
		Jobs: jobs,
		Handle: func(_ context.Context, j int) {
			mu.Lock()
			got = append(got, j)
			if len(got) == 3 {
				close(done)
			}
			mu.Unlock()
		},
	})

	for i := 1; i <= 3; i++ {
		if err := Enqueue(ctx, jobs, i); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for jobs")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, j := range got {
		if j != i+1 {
			t.Errorf("job %d out of order: got %d", i, j)
		}
	}
}

func TestIdleWorkerRetires(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := make(chan int, 1)
	retired := make(chan struct{})

	Start(StartOptions[int]{
		Ctx:         ctx,
		Sem:         make(chan struct{}, 1),
		Jobs:        jobs,
		Handle:      func(context.Context, int) {},
		IdleTimeout: 10 * time.Millisecond,
		OnIdle: func() bool {
			close(retired)
			return true
		},
	})

	select {
	case <-retired:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never retired")
	}
}

func TestIdleWorkerStaysWhenDeclined(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobs := make(chan int, 1)
	handled := make(chan int, 1)
	asked := make(chan struct{}, 1)

	Start(StartOptions[int]{
		Ctx:         ctx,
		Sem:         make(chan struct{}, 1),
		Jobs:        jobs,
		Handle:      func(_ context.Context, j int) { handled <- j },
		IdleTimeout: 10 * time.Millisecond,
		OnIdle: func() bool {
			select {
			case asked <- struct{}{}:
			default:
			}
			return false
		},
	})

	select {
	case <-asked:
	case <-time.After(2 * time.Second):
		t.Fatal("idle check never ran")
	}

	// Declining retirement keeps the worker draining its channel.
	jobs <- 42
	select {
	case j := <-handled:
		if j != 42 {
			t.Errorf("handled %d, want 42", j)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job after declined retirement was dropped")
	}
}

func TestEnqueueAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := make(chan int) // unbuffered, nothing draining
	if err := Enqueue(ctx, jobs, 1); err == nil {
		t.Error("expected error after cancel")
	}
}
