package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/core/envelope"
	"github.com/vehicle-parking/vpa-client/internal/core/ports"
	"github.com/vehicle-parking/vpa-client/internal/pkg/validate"
)

const adminStore = "admin"

// AdminStore holds the collections behind the administrative views. Fetches
// replace a collection wholesale and empty it on failure; mutations return
// the raw response and never touch the collections.
type AdminStore struct {
	fetchState

	api      ports.APIClient
	validate *validate.Validator
	log      zerolog.Logger

	lots     []domain.Lot
	users    []domain.User
	bookings []domain.Booking
	charts   domain.ChartData
}

func NewAdminStore(api ports.APIClient, log zerolog.Logger) *AdminStore {
	return &AdminStore{
		api:      api,
		validate: validate.New(),
		log:      log,
		lots:     []domain.Lot{},
		users:    []domain.User{},
		bookings: []domain.Booking{},
	}
}

// Reset empties every collection and clears the error.
func (s *AdminStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lots, s.users, s.bookings = []domain.Lot{}, []domain.User{}, []domain.Booking{}
	s.charts = domain.ChartData{}
	s.err = nil
}

func (s *AdminStore) Lots() []domain.Lot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Lot{}, s.lots...)
}

func (s *AdminStore) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.User{}, s.users...)
}

func (s *AdminStore) Bookings() []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Booking{}, s.bookings...)
}

func (s *AdminStore) Charts() domain.ChartData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.charts
}

func (s *AdminStore) FetchLots(ctx context.Context) error {
	s.begin()
	lots, err := fetchList[domain.Lot](ctx, s.api, "/lots", nil, "lots")
	return s.finish(adminStore, "lots", s.logFailure("lots", err), func() { s.lots = lots })
}

func (s *AdminStore) FetchUsers(ctx context.Context) error {
	s.begin()
	users, err := fetchList[domain.User](ctx, s.api, "/users", nil, "users")
	return s.finish(adminStore, "users", s.logFailure("users", err), func() { s.users = users })
}

func (s *AdminStore) FetchBookings(ctx context.Context) error {
	s.begin()
	bookings, err := fetchList[domain.Booking](ctx, s.api, "/admin/bookings", nil, "bookings")
	return s.finish(adminStore, "bookings", s.logFailure("bookings", err), func() { s.bookings = bookings })
}

func (s *AdminStore) logFailure(collection string, err error) error {
	if err != nil {
		s.log.Warn().Err(err).Str("collection", collection).Msg("fetch failed")
	}
	return err
}

// FetchCharts loads the occupancy charts. Unlike the collection fetches,
// a failure is returned without touching the stored charts.
func (s *AdminStore) FetchCharts(ctx context.Context) (domain.ChartData, error) {
	env, err := s.api.Get(ctx, "/charts", nil)
	if err != nil {
		return domain.ChartData{}, fmt.Errorf("fetch charts: %w", err)
	}
	charts, err := envelope.Object[domain.ChartData](env, "")
	if err != nil {
		return domain.ChartData{}, fmt.Errorf("fetch charts: %w", err)
	}

	s.mu.Lock()
	s.charts = charts
	s.mu.Unlock()
	return charts, nil
}

func (s *AdminStore) CreateLot(ctx context.Context, in domain.LotInput) (*envelope.Envelope, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.PricePerHour.IsNegative() {
		return nil, &domain.ValidationError{Fields: []string{"price_per_hour must not be negative"}}
	}
	return s.api.Post(ctx, "/lots", in)
}

func (s *AdminStore) UpdateLot(ctx context.Context, id int, in domain.LotUpdate) (*envelope.Envelope, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if in.PricePerHour != nil && in.PricePerHour.IsNegative() {
		return nil, &domain.ValidationError{Fields: []string{"price_per_hour must not be negative"}}
	}
	return s.api.Put(ctx, fmt.Sprintf("/lots/%d", id), in)
}

func (s *AdminStore) DeleteLot(ctx context.Context, id int) (*envelope.Envelope, error) {
	return s.api.Delete(ctx, fmt.Sprintf("/lots/%d", id))
}

// FinalizeBooking releases a booking's spot and settles its cost.
func (s *AdminStore) FinalizeBooking(ctx context.Context, id int) (*envelope.Envelope, error) {
	return s.api.Post(ctx, fmt.Sprintf("/bookings/release/%d", id), nil)
}

// FetchDashboard loads the admin landing counters.
func (s *AdminStore) FetchDashboard(ctx context.Context) (domain.DashboardSummary, error) {
	env, err := s.api.Get(ctx, "/admin", nil)
	if err != nil {
		return domain.DashboardSummary{}, fmt.Errorf("fetch dashboard: %w", err)
	}
	return envelope.Object[domain.DashboardSummary](env, "")
}

// FetchLotSpots lists a lot's spots as the admin grid shows them.
func (s *AdminStore) FetchLotSpots(ctx context.Context, lotID int) ([]domain.Spot, error) {
	spots, err := fetchList[domain.Spot](ctx, s.api, fmt.Sprintf("/admin/lots/%d/spots", lotID), nil, "spots")
	if err != nil {
		return spots, fmt.Errorf("fetch lot %d spots: %w", lotID, err)
	}
	return spots, nil
}

// SpotDetails describes who occupies a spot, if anyone.
func (s *AdminStore) SpotDetails(ctx context.Context, spotID int) (domain.SpotOccupant, error) {
	env, err := s.api.Get(ctx, fmt.Sprintf("/admin/spot-details/%d", spotID), nil)
	if err != nil {
		return domain.SpotOccupant{}, fmt.Errorf("spot %d details: %w", spotID, err)
	}
	return envelope.Object[domain.SpotOccupant](env, "")
}
