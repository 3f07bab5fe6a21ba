package devapi

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

func waitForTask(t *testing.T, svc *ExportService, id string) Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, err := svc.Status(context.Background(), id)
		if err != nil {
			t.Fatalf("Status returned error: %v", err)
		}
		if task.State != domain.ExportPending {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("export %s did not finish", id)
	return Task{}
}

func TestExportService_WritesCSV(t *testing.T) {
	f := newFixture(t)
	uid := f.user(t, "a@x.io")
	l := f.lot(t, 1, "10")
	res, _ := f.parking.Reserve(context.Background(), domain.ReserveInput{UserID: uid, LotID: l.ID, VehicleNumber: "KA01"})
	f.clock = f.clock.Add(time.Hour)
	f.parking.Release(context.Background(), res.ReservationID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := NewExportService(f.state, t.TempDir(), 1, zerolog.Nop())
	if err := svc.Ready(); err == nil {
		t.Fatalf("expected not ready before Start")
	}
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := svc.Ready(); err != nil {
		t.Fatalf("expected ready, got %v", err)
	}

	id, err := svc.Enqueue(ctx, uid)
	if err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}
	task := waitForTask(t, svc, id)
	if task.State != domain.ExportReady {
		t.Fatalf("expected ready, got %+v", task)
	}

	file, err := os.Open(task.Path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 || records[0][0] != "reservation_id" {
		t.Fatalf("unexpected csv %v", records)
	}
	if records[1][5] != "10.00" || records[1][6] != "KA01" {
		t.Fatalf("unexpected row %v", records[1])
	}
}

func TestExportService_UnknownUserFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := NewExportService(NewState(), t.TempDir(), 1, zerolog.Nop())
	svc.Start(ctx)

	id, err := svc.Enqueue(ctx, 42)
	if err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}
	task := waitForTask(t, svc, id)
	if task.State != domain.ExportFailed || task.Message == "" {
		t.Fatalf("expected failed task, got %+v", task)
	}
}

func TestExportService_UnknownTask(t *testing.T) {
	svc := NewExportService(NewState(), t.TempDir(), 1, zerolog.Nop())
	if _, err := svc.Status(context.Background(), "nope"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
