package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/vehicle-parking/vpa-client/internal/api/metrics"
)

const (
	defaultWorkers = 2
	channelBuffer  = 64
)

var ErrQueueFull = errors.New("export queue is full")

// Job is a queued export of one user's bookings.
type Job struct {
	TaskID string
	UserID int
}

// Processor runs a single job.
type Processor interface {
	Process(ctx context.Context, job Job) error
}

// Dispatcher routes export jobs to a fixed set of workers, sharding on the
// user id so that one user's exports run in submission order.
type Dispatcher struct {
	workers   []chan Job
	processor Processor
	log       zerolog.Logger
	started   chan struct{}
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor Processor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan Job, numWorkers),
		processor: processor,
		log:       log,
		started:   make(chan struct{}),
	}
	for i := range d.workers {
		d.workers[i] = make(chan Job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	close(d.started)
}

// Running reports whether Start has been called.
func (d *Dispatcher) Running() bool {
	select {
	case <-d.started:
		return true
	default:
		return false
	}
}

// Enqueue hands a job to the worker responsible for its user. It fails
// instead of blocking when that worker's buffer is full.
func (d *Dispatcher) Enqueue(job Job) error {
	idx := d.shardIndex(job.UserID)
	select {
	case d.workers[idx] <- job:
		metrics.ExportQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		return ErrQueueFull
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.Itoa(userID)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan Job) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.ExportQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.processor.Process(ctx, job); err != nil {
				d.log.Error().Err(err).
					Str("task_id", job.TaskID).
					Int("user_id", job.UserID).
					Int("worker_id", id).
					Msg("export failed")
			}
		}
	}
}
