package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingProcessor struct {
	mu   sync.Mutex
	seen []Job
	done chan struct{}
}

func (p *recordingProcessor) Process(_ context.Context, job Job) error {
	p.mu.Lock()
	p.seen = append(p.seen, job)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func TestDispatcher_ProcessesInOrderPerUser(t *testing.T) {
	proc := &recordingProcessor{done: make(chan struct{}, 8)}
	d := NewDispatcher(3, proc, zerolog.Nop())
	if d.Running() {
		t.Fatalf("dispatcher must not report running before Start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	if !d.Running() {
		t.Fatalf("dispatcher must report running after Start")
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := d.Enqueue(Job{TaskID: id, UserID: 7}); err != nil {
			t.Fatalf("Enqueue returned error: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		select {
		case <-proc.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("job %d not processed", i)
		}
	}

	proc.mu.Lock()
	defer proc.mu.Unlock()
	for i, want := range []string{"a", "b", "c"} {
		if proc.seen[i].TaskID != want {
			t.Fatalf("expected %s at %d, got %+v", want, i, proc.seen)
		}
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	d := NewDispatcher(1, &recordingProcessor{done: make(chan struct{}, 1)}, zerolog.Nop())

	// Not started: nothing drains the buffer.
	for i := 0; i < channelBuffer; i++ {
		if err := d.Enqueue(Job{UserID: 1}); err != nil {
			t.Fatalf("Enqueue %d returned error: %v", i, err)
		}
	}
	if err := d.Enqueue(Job{UserID: 1}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(4, nil, zerolog.Nop())
	for id := 1; id < 50; id++ {
		first := d.shardIndex(id)
		if first < 0 || first >= 4 || d.shardIndex(id) != first {
			t.Fatalf("unstable shard for %d", id)
		}
	}
}
