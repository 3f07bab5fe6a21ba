package devapi

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vehicle-parking/vpa-client/internal/api/metrics"
	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

var secondsPerHour = decimal.NewFromInt(3600)

// ParkingService implements lots, spots, reservations and the admin reports.
type ParkingService struct {
	state  *State
	logger zerolog.Logger
}

func NewParkingService(state *State, logger zerolog.Logger) *ParkingService {
	return &ParkingService{state: state, logger: logger}
}

func (s *ParkingService) Lots(_ context.Context) []domain.Lot {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]domain.Lot, 0, len(st.lots))
	for _, l := range st.lots {
		out = append(out, st.lotView(l, false))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *ParkingService) Lot(_ context.Context, id int) (domain.Lot, error) {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	l, ok := st.lots[id]
	if !ok {
		return domain.Lot{}, domain.ErrLotNotFound
	}
	return st.lotView(l, true), nil
}

// CreateLot stores a lot and numbers its spots S1..Sn.
func (s *ParkingService) CreateLot(_ context.Context, in domain.LotInput) (domain.Lot, error) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	st.seqLot++
	l := &lot{
		id:            st.seqLot,
		name:          in.PrimeLocationName,
		address:       in.Address,
		pinCode:       in.PinCode,
		pricePerHour:  in.PricePerHour,
		numberOfSpots: in.NumberOfSpots,
		createdAt:     st.now(),
	}
	st.lots[l.id] = l
	st.addSpots(l)

	s.logger.Info().Int("lot_id", l.id).Int("spots", l.numberOfSpots).Msg("lot created")
	return st.lotView(l, true), nil
}

// addSpots tops a lot up to its spot count, numbering new spots with the
// lowest free S<n> labels.
func (st *State) addSpots(l *lot) {
	existing := st.spotsOf(l.id)
	used := make(map[string]struct{}, len(existing))
	for _, sp := range existing {
		used[sp.number] = struct{}{}
	}
	for n, have := 1, len(existing); have < l.numberOfSpots; n++ {
		number := fmt.Sprintf("S%d", n)
		if _, taken := used[number]; taken {
			continue
		}
		st.seqSpot++
		st.spots[st.seqSpot] = &spot{id: st.seqSpot, lotID: l.id, number: number, status: domain.SpotAvailable}
		have++
	}
}

// UpdateLot applies a partial update. Shrinking a lot removes the highest
// available spots and fails when too few are available.
func (s *ParkingService) UpdateLot(_ context.Context, id int, in domain.LotUpdate) (domain.Lot, error) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	l, ok := st.lots[id]
	if !ok {
		return domain.Lot{}, domain.ErrLotNotFound
	}

	if in.NumberOfSpots != nil {
		want := *in.NumberOfSpots
		if want < 0 {
			return domain.Lot{}, fmt.Errorf("number_of_spots must be >= 0: %w", domain.ErrInvalidInput)
		}
		spots := st.spotsOf(l.id)
		switch {
		case want < len(spots):
			var deletable []*spot
			for i := len(spots) - 1; i >= 0; i-- {
				if spots[i].status == domain.SpotAvailable {
					deletable = append(deletable, spots[i])
				}
			}
			drop := len(spots) - want
			if len(deletable) < drop {
				return domain.Lot{}, fmt.Errorf("cannot reduce spots: %w", domain.ErrLotOccupied)
			}
			for _, sp := range deletable[:drop] {
				delete(st.spots, sp.id)
			}
			l.numberOfSpots = want
		case want > len(spots):
			l.numberOfSpots = want
			st.addSpots(l)
		}
	}
	if in.PrimeLocationName != nil {
		l.name = *in.PrimeLocationName
	}
	if in.Address != nil {
		l.address = *in.Address
	}
	if in.PinCode != nil {
		l.pinCode = *in.PinCode
	}
	if in.PricePerHour != nil {
		l.pricePerHour = *in.PricePerHour
	}

	s.logger.Info().Int("lot_id", l.id).Msg("lot updated")
	return st.lotView(l, true), nil
}

// DeleteLot removes a lot whose spots are all available.
func (s *ParkingService) DeleteLot(_ context.Context, id int) error {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.lots[id]; !ok {
		return domain.ErrLotNotFound
	}
	spots := st.spotsOf(id)
	for _, sp := range spots {
		if sp.status == domain.SpotOccupied {
			return fmt.Errorf("cannot delete lot: %w", domain.ErrLotOccupied)
		}
	}
	for _, sp := range spots {
		delete(st.spots, sp.id)
		for rid, r := range st.reservations {
			if r.spotID == sp.id {
				delete(st.reservations, rid)
			}
		}
	}
	delete(st.lots, id)

	s.logger.Info().Int("lot_id", id).Msg("lot deleted")
	return nil
}

func (s *ParkingService) LotSpots(_ context.Context, lotID int) (domain.LotSpots, error) {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	l, ok := st.lots[lotID]
	if !ok {
		return domain.LotSpots{}, domain.ErrLotNotFound
	}
	out := domain.LotSpots{LotName: l.name, Spots: []domain.Spot{}}
	for _, sp := range st.spotsOf(lotID) {
		out.Spots = append(out.Spots, sp.view())
	}
	return out, nil
}

func (st *State) activeReservation(spotID int) *reservation {
	for _, r := range st.reservations {
		if r.spotID == spotID && r.leftAt == nil {
			return r
		}
	}
	return nil
}

// SpotInfo describes a spot and, when occupied, its current occupant.
func (s *ParkingService) SpotInfo(_ context.Context, spotID int) (domain.SpotInfo, error) {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	sp, ok := st.spots[spotID]
	if !ok {
		return domain.SpotInfo{}, domain.ErrSpotNotFound
	}
	info := domain.SpotInfo{SpotID: sp.id, SpotNumber: sp.number, Status: sp.status}
	if l, ok := st.lots[sp.lotID]; ok {
		name := l.name
		info.LotName = &name
	}
	if sp.status != domain.SpotOccupied {
		return info, nil
	}
	if r := st.activeReservation(sp.id); r != nil {
		vehicle := r.vehicle
		info.VehicleNumber = &vehicle
		info.ReservedAt = formatTimePtr(&r.parkedAt)
		if a, ok := st.accounts[r.userID]; ok {
			name, email := a.username, a.email
			info.UserName, info.UserEmail = &name, &email
		}
	}
	return info, nil
}

// SpotOccupant is the admin view of a spot, with the cost accrued so far.
func (s *ParkingService) SpotOccupant(_ context.Context, spotID int) (domain.SpotOccupant, error) {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	sp, ok := st.spots[spotID]
	if !ok {
		return domain.SpotOccupant{}, domain.ErrSpotNotFound
	}
	var out domain.SpotOccupant
	r := st.activeReservation(sp.id)
	if r == nil {
		return out, nil
	}
	if a, ok := st.accounts[r.userID]; ok {
		name, email := a.username, a.email
		out.User.Name, out.User.Email = &name, &email
	}
	vehicle := r.vehicle
	out.VehicleNumber = &vehicle
	out.StartTime = formatTimePtr(&r.parkedAt)
	if l, ok := st.lots[sp.lotID]; ok {
		out.CostTillNow = cost(r.parkedAt, st.now(), l.pricePerHour)
	}
	return out, nil
}

// Reserve occupies the lowest-numbered available spot of a lot.
func (s *ParkingService) Reserve(_ context.Context, in domain.ReserveInput) (domain.Reservation, error) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.accounts[in.UserID]; !ok {
		return domain.Reservation{}, domain.ErrUserNotFound
	}
	if _, ok := st.lots[in.LotID]; !ok {
		return domain.Reservation{}, domain.ErrLotNotFound
	}

	var free *spot
	for _, sp := range st.spotsOf(in.LotID) {
		if sp.status == domain.SpotAvailable {
			free = sp
			break
		}
	}
	if free == nil {
		return domain.Reservation{}, domain.ErrNoAvailableSpots
	}

	now := st.now()
	st.seqReservation++
	r := &reservation{
		id:       st.seqReservation,
		userID:   in.UserID,
		spotID:   free.id,
		parkedAt: now,
		vehicle:  in.VehicleNumber,
	}
	st.reservations[r.id] = r

	vehicle := in.VehicleNumber
	free.status = domain.SpotOccupied
	free.vehicle = &vehicle
	free.reservedAt = &now

	metrics.ReservationsTotal.Inc()
	s.logger.Info().Int("reservation_id", r.id).Int("spot_id", free.id).Msg("spot reserved")
	return domain.Reservation{ReservationID: r.id, SpotID: free.id}, nil
}

// Release finalizes a reservation: it frees the spot and charges the hours
// parked at the lot's price, rounded to cents.
func (s *ParkingService) Release(_ context.Context, id int) (domain.Booking, error) {
	st := s.state
	st.mu.Lock()
	defer st.mu.Unlock()

	r, ok := st.reservations[id]
	if !ok {
		return domain.Booking{}, domain.ErrReservationNotFound
	}
	if r.leftAt != nil {
		return domain.Booking{}, domain.ErrAlreadyReleased
	}

	now := st.now()
	r.leftAt = &now
	if sp, ok := st.spots[r.spotID]; ok {
		if l, ok := st.lots[sp.lotID]; ok {
			r.cost = decimal.NewNullDecimal(cost(r.parkedAt, now, l.pricePerHour))
		}
		sp.status = domain.SpotAvailable
		sp.vehicle = nil
		sp.reservedAt = nil
	}

	metrics.ReleasesTotal.Inc()
	s.logger.Info().Int("reservation_id", r.id).Str("cost", r.cost.Decimal.String()).Msg("reservation released")
	return st.bookingView(r), nil
}

func cost(from, to time.Time, pricePerHour decimal.Decimal) decimal.Decimal {
	seconds := decimal.NewFromInt(to.Unix() - from.Unix())
	if seconds.IsNegative() {
		return decimal.Zero
	}
	return seconds.Div(secondsPerHour).Mul(pricePerHour).Round(2)
}

func (s *ParkingService) UserBookings(_ context.Context, userID int) ([]domain.Booking, error) {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	if _, ok := st.accounts[userID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	out := []domain.Booking{}
	for _, r := range sortedReservations(st.reservations, func(r *reservation) bool { return r.userID == userID }) {
		out = append(out, st.bookingView(r))
	}
	return out, nil
}

// AllBookings lists every reservation, newest first, with its user.
func (s *ParkingService) AllBookings(_ context.Context) []domain.Booking {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	all := sortedReservations(st.reservations, func(*reservation) bool { return true })
	out := make([]domain.Booking, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		b := st.bookingView(all[i])
		if a, ok := st.accounts[all[i].userID]; ok {
			b.User = &domain.BookingUser{ID: a.id, Username: a.username, Email: a.email}
		}
		out = append(out, b)
	}
	return out
}

func (s *ParkingService) Users(_ context.Context) []domain.User {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]domain.User, 0, len(st.accounts))
	for _, a := range st.accounts {
		out = append(out, a.user())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Summary counts the admin dashboard figures.
func (s *ParkingService) Summary(_ context.Context) domain.DashboardSummary {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	active := len(sortedReservations(st.reservations, func(r *reservation) bool { return r.leftAt == nil }))
	return domain.DashboardSummary{
		Lots:               len(st.lots),
		Spots:              len(st.spots),
		OccupiedSpots:      active,
		Users:              len(st.accounts),
		ActiveReservations: active,
	}
}

// Charts reports occupancy per lot and reservations per month.
func (s *ParkingService) Charts(_ context.Context) domain.ChartData {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := domain.ChartData{SpotsByLot: []domain.LotOccupancy{}, MonthlyReservations: []domain.MonthlyCount{}}
	for _, l := range s.sortedLots() {
		spots := st.spotsOf(l.id)
		occ := domain.LotOccupancy{LotID: l.id, LotName: l.name, TotalSpots: len(spots)}
		for _, sp := range spots {
			if sp.status == domain.SpotAvailable {
				occ.Available++
			}
		}
		occ.Occupied = occ.TotalSpots - occ.Available
		out.SpotsByLot = append(out.SpotsByLot, occ)
	}

	months := map[string]int{}
	for _, r := range st.reservations {
		months[r.parkedAt.UTC().Format("2006-01")]++
	}
	for m, c := range months {
		out.MonthlyReservations = append(out.MonthlyReservations, domain.MonthlyCount{Month: m, Count: c})
	}
	sort.Slice(out.MonthlyReservations, func(i, j int) bool {
		return out.MonthlyReservations[i].Month < out.MonthlyReservations[j].Month
	})
	return out
}

// UserCharts counts, per lot, how many reservations userID made there.
func (s *ParkingService) UserCharts(_ context.Context, userID int) (domain.ChartData, error) {
	st := s.state
	st.mu.RLock()
	defer st.mu.RUnlock()

	if _, ok := st.accounts[userID]; !ok {
		return domain.ChartData{}, domain.ErrUserNotFound
	}
	out := domain.ChartData{SpotsByLot: []domain.LotOccupancy{}}
	for _, l := range s.sortedLots() {
		spots := st.spotsOf(l.id)
		inLot := make(map[int]struct{}, len(spots))
		for _, sp := range spots {
			inLot[sp.id] = struct{}{}
		}
		booked := 0
		for _, r := range st.reservations {
			if _, ok := inLot[r.spotID]; ok && r.userID == userID {
				booked++
			}
		}
		out.SpotsByLot = append(out.SpotsByLot, domain.LotOccupancy{
			LotID: l.id, LotName: l.name, TotalSpots: len(spots), UserBooked: booked,
		})
	}
	return out, nil
}

// sortedLots must be called with the state lock held.
func (s *ParkingService) sortedLots() []*lot {
	out := make([]*lot, 0, len(s.state.lots))
	for _, l := range s.state.lots {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
