package devapi

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vehicle-parking/vpa-client/internal/api/metrics"
	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/infrastructure/queue"
)

var exportHeader = []string{
	"reservation_id", "spot_id", "lot_id",
	"parking_timestamp", "leaving_timestamp",
	"parking_cost", "vehicle_number", "remarks",
}

// Task is the state of one export.
type Task struct {
	State   string
	Message string
	Path    string
}

// ExportService writes per-user booking CSVs on a worker pool. Callers
// start a task and poll it until the file is ready.
type ExportService struct {
	state      *State
	dir        string
	dispatcher *queue.Dispatcher
	logger     zerolog.Logger

	mu    sync.RWMutex
	tasks map[string]Task
}

func NewExportService(state *State, dir string, workers int, logger zerolog.Logger) *ExportService {
	s := &ExportService{
		state:  state,
		dir:    dir,
		logger: logger,
		tasks:  make(map[string]Task),
	}
	s.dispatcher = queue.NewDispatcher(workers, s, logger)
	return s
}

// Start launches the workers; they stop with ctx.
func (s *ExportService) Start(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("export dir: %w", err)
	}
	s.dispatcher.Start(ctx)
	return nil
}

// Ready reports whether workers are running and the export directory exists.
func (s *ExportService) Ready() error {
	if !s.dispatcher.Running() {
		return fmt.Errorf("export workers not started")
	}
	if _, err := os.Stat(s.dir); err != nil {
		return err
	}
	return nil
}

// Enqueue queues an export of userID's bookings and returns its task id.
func (s *ExportService) Enqueue(_ context.Context, userID int) (string, error) {
	id := uuid.NewString()
	s.setTask(id, Task{State: domain.ExportPending})

	if err := s.dispatcher.Enqueue(queue.Job{TaskID: id, UserID: userID}); err != nil {
		s.mu.Lock()
		delete(s.tasks, id)
		s.mu.Unlock()
		return "", err
	}
	return id, nil
}

func (s *ExportService) Status(_ context.Context, taskID string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return Task{}, domain.ErrTaskNotFound
	}
	return t, nil
}

func (s *ExportService) setTask(id string, t Task) {
	s.mu.Lock()
	s.tasks[id] = t
	s.mu.Unlock()
}

// Process satisfies queue.Processor.
func (s *ExportService) Process(_ context.Context, job queue.Job) error {
	start := time.Now()
	defer func() { metrics.ExportDuration.Observe(time.Since(start).Seconds()) }()

	path, err := s.write(job.UserID)
	if err != nil {
		s.setTask(job.TaskID, Task{State: domain.ExportFailed, Message: err.Error()})
		metrics.ExportsTotal.WithLabelValues(domain.ExportFailed).Inc()
		return err
	}

	s.setTask(job.TaskID, Task{State: domain.ExportReady, Path: path})
	metrics.ExportsTotal.WithLabelValues(domain.ExportReady).Inc()
	s.logger.Info().Str("task_id", job.TaskID).Str("path", path).Msg("export ready")
	return nil
}

func (s *ExportService) write(userID int) (string, error) {
	rows, err := s.rows(userID)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("user_%d_parking_%s.csv", userID, time.Now().UTC().Format("20060102150405.000000000"))
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(append([][]string{exportHeader}, rows...)); err != nil {
		return "", err
	}
	return path, f.Close()
}

func (s *ExportService) rows(userID int) ([][]string, error) {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	if _, ok := st.accounts[userID]; !ok {
		return nil, domain.ErrUserNotFound
	}

	var rows [][]string
	for _, r := range sortedReservations(st.reservations, func(r *reservation) bool { return r.userID == userID }) {
		lotID, left, cost, remarks := "", "", "", ""
		if sp, ok := st.spots[r.spotID]; ok {
			lotID = strconv.Itoa(sp.lotID)
		}
		if r.leftAt != nil {
			left = formatTime(*r.leftAt)
		}
		if r.cost.Valid {
			cost = r.cost.Decimal.StringFixed(2)
		}
		if r.remarks != nil {
			remarks = *r.remarks
		}
		rows = append(rows, []string{
			strconv.Itoa(r.id), strconv.Itoa(r.spotID), lotID,
			formatTime(r.parkedAt), left, cost, r.vehicle, remarks,
		})
	}
	return rows, nil
}
