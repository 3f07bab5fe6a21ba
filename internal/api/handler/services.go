package handler

import (
	"context"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/devapi"
)

// AuthService is the account backend the auth handler drives.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (domain.User, error)
	Login(ctx context.Context, email, password string) (devapi.LoginResult, error)
	EmailExists(ctx context.Context, email string) bool
}

// ParkingService is the lots, spots and bookings backend.
type ParkingService interface {
	Lots(ctx context.Context) []domain.Lot
	Lot(ctx context.Context, id int) (domain.Lot, error)
	CreateLot(ctx context.Context, in domain.LotInput) (domain.Lot, error)
	UpdateLot(ctx context.Context, id int, in domain.LotUpdate) (domain.Lot, error)
	DeleteLot(ctx context.Context, id int) error
	LotSpots(ctx context.Context, lotID int) (domain.LotSpots, error)
	SpotInfo(ctx context.Context, spotID int) (domain.SpotInfo, error)
	SpotOccupant(ctx context.Context, spotID int) (domain.SpotOccupant, error)
	Reserve(ctx context.Context, in domain.ReserveInput) (domain.Reservation, error)
	Release(ctx context.Context, id int) (domain.Booking, error)
	UserBookings(ctx context.Context, userID int) ([]domain.Booking, error)
	AllBookings(ctx context.Context) []domain.Booking
	Users(ctx context.Context) []domain.User
	Summary(ctx context.Context) domain.DashboardSummary
	Charts(ctx context.Context) domain.ChartData
	UserCharts(ctx context.Context, userID int) (domain.ChartData, error)
}

// ExportService queues and tracks CSV exports.
type ExportService interface {
	Enqueue(ctx context.Context, userID int) (string, error)
	Status(ctx context.Context, taskID string) (devapi.Task, error)
}
