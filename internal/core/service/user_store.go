package service

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
	"github.com/vehicle-parking/vpa-client/internal/core/envelope"
	"github.com/vehicle-parking/vpa-client/internal/core/ports"
	"github.com/vehicle-parking/vpa-client/internal/pkg/validate"
)

const userStore = "user"

// UserStore backs the views of a signed-in user. Operations that act on
// behalf of the user read its id from the session.
type UserStore struct {
	fetchState

	api      ports.APIClient
	session  ports.SessionReader
	validate *validate.Validator
	log      zerolog.Logger

	lots     []domain.Lot
	spots    domain.LotSpots
	bookings []domain.Booking
	charts   domain.ChartData
}

func NewUserStore(api ports.APIClient, session ports.SessionReader, log zerolog.Logger) *UserStore {
	return &UserStore{
		api:      api,
		session:  session,
		validate: validate.New(),
		log:      log,
		lots:     []domain.Lot{},
		spots:    domain.LotSpots{Spots: []domain.Spot{}},
		bookings: []domain.Booking{},
	}
}

func (s *UserStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lots, s.bookings = []domain.Lot{}, []domain.Booking{}
	s.spots = domain.LotSpots{Spots: []domain.Spot{}}
	s.charts = domain.ChartData{}
	s.err = nil
}

func (s *UserStore) Lots() []domain.Lot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Lot{}, s.lots...)
}

// Spots returns the spot listing of the lot fetched last.
func (s *UserStore) Spots() domain.LotSpots {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.spots
	out.Spots = append([]domain.Spot{}, s.spots.Spots...)
	return out
}

func (s *UserStore) Bookings() []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Booking{}, s.bookings...)
}

func (s *UserStore) Charts() domain.ChartData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.charts
}

func (s *UserStore) userID() (int, error) {
	sess := s.session.Snapshot()
	if !sess.Authenticated() {
		return 0, domain.ErrNotAuthenticated
	}
	return sess.User.ID, nil
}

func userQuery(id int) url.Values {
	return url.Values{"user_id": {strconv.Itoa(id)}}
}

func (s *UserStore) FetchLots(ctx context.Context) error {
	s.begin()
	lots, err := fetchList[domain.Lot](ctx, s.api, "/lots", nil, "lots")
	return s.finish(userStore, "lots", s.logFailure("lots", err), func() { s.lots = lots })
}

// FetchSpots loads the spots of one lot together with the lot name.
func (s *UserStore) FetchSpots(ctx context.Context, lotID int) error {
	s.begin()
	spots := domain.LotSpots{Spots: []domain.Spot{}}
	env, err := s.api.Get(ctx, fmt.Sprintf("/lots/%d/spots", lotID), nil)
	if err == nil {
		spots.LotName = envelope.String(env, "lot_name")
		spots.Spots, err = envelope.List[domain.Spot](env, "spots")
	}
	return s.finish(userStore, "spots", s.logFailure("spots", err), func() { s.spots = spots })
}

func (s *UserStore) FetchBookings(ctx context.Context) error {
	s.begin()
	bookings := []domain.Booking{}
	id, err := s.userID()
	if err == nil {
		bookings, err = fetchList[domain.Booking](ctx, s.api, "/bookings/user", userQuery(id), "bookings")
	}
	return s.finish(userStore, "bookings", s.logFailure("bookings", err), func() { s.bookings = bookings })
}

func (s *UserStore) logFailure(collection string, err error) error {
	if err != nil {
		s.log.Warn().Err(err).Str("collection", collection).Msg("fetch failed")
	}
	return err
}

// FetchCharts loads the per-user occupancy chart.
func (s *UserStore) FetchCharts(ctx context.Context) (domain.ChartData, error) {
	id, err := s.userID()
	if err != nil {
		return domain.ChartData{}, err
	}
	env, err := s.api.Get(ctx, "/chart/user-dashboard", userQuery(id))
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

// SpotInfo describes a single spot.
func (s *UserStore) SpotInfo(ctx context.Context, spotID int) (domain.SpotInfo, error) {
	env, err := s.api.Get(ctx, fmt.Sprintf("/spots/%d", spotID), nil)
	if err != nil {
		return domain.SpotInfo{}, fmt.Errorf("spot %d: %w", spotID, err)
	}
	return envelope.Object[domain.SpotInfo](env, "")
}

// Reserve takes the first available spot of a lot for the signed-in user.
func (s *UserStore) Reserve(ctx context.Context, lotID int, vehicle string) (domain.Reservation, error) {
	id, err := s.userID()
	if err != nil {
		return domain.Reservation{}, err
	}
	in := domain.ReserveInput{UserID: id, LotID: lotID, VehicleNumber: vehicle}
	if err := s.validate.Struct(in); err != nil {
		return domain.Reservation{}, err
	}

	env, err := s.api.Post(ctx, "/reserve", in)
	if err != nil {
		return domain.Reservation{}, err
	}
	res, err := envelope.Object[domain.Reservation](env, "")
	if err != nil {
		return domain.Reservation{}, err
	}
	s.log.Info().Int("lot_id", lotID).Int("spot_id", res.SpotID).Msg("spot reserved")
	return res, nil
}

// StartExport queues a CSV export of the user's bookings and returns its task id.
func (s *UserStore) StartExport(ctx context.Context) (string, error) {
	id, err := s.userID()
	if err != nil {
		return "", err
	}
	env, err := s.api.Get(ctx, "/export-csv", userQuery(id))
	if err != nil {
		return "", fmt.Errorf("start export: %w", err)
	}
	task := envelope.String(env, "task_id")
	if task == "" {
		return "", fmt.Errorf("start export: response carries no task id")
	}
	return task, nil
}

// ExportStatus polls an export task. The CSV is returned once it is ready.
func (s *UserStore) ExportStatus(ctx context.Context, taskID string) (domain.ExportStatus, error) {
	body, contentType, err := s.api.GetRaw(ctx, "/download-csv", url.Values{"task_id": {taskID}})
	if err != nil {
		return domain.ExportStatus{}, fmt.Errorf("export status: %w", err)
	}

	if mt, _, _ := mime.ParseMediaType(contentType); mt != "application/json" || !gjson.ValidBytes(body) {
		return domain.ExportStatus{State: domain.ExportReady, CSV: body}, nil
	}

	switch status := gjson.GetBytes(body, "status").String(); status {
	case domain.ExportPending:
		return domain.ExportStatus{State: domain.ExportPending}, nil
	case domain.ExportFailed:
		return domain.ExportStatus{State: domain.ExportFailed, Message: gjson.GetBytes(body, "message").String()}, nil
	default:
		msg := envelope.ErrorMessage(body)
		if msg == "" {
			msg = "unexpected export status " + strconv.Quote(status)
		}
		return domain.ExportStatus{}, fmt.Errorf("export status: %s", msg)
	}
}
