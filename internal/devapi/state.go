// Package devapi is an in-memory implementation of the parking backend the
// client talks to. It serves local runs and end-to-end tests.
package devapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vehicle-parking/vpa-client/internal/core/domain"
)

const timeLayout = "2006-01-02T15:04:05"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

type account struct {
	id           int
	username     string
	email        string
	passwordHash []byte
	role         string
	active       bool
	createdAt    time.Time
}

func (a *account) user() domain.User {
	return domain.User{
		ID:        a.id,
		Username:  a.username,
		Email:     a.email,
		Active:    a.active,
		CreatedAt: formatTime(a.createdAt),
	}
}

type lot struct {
	id            int
	name          string
	address       string
	pinCode       string
	pricePerHour  decimal.Decimal
	numberOfSpots int
	createdAt     time.Time
}

type spot struct {
	id         int
	lotID      int
	number     string
	status     string
	vehicle    *string
	reservedAt *time.Time
}

func (s *spot) view() domain.Spot {
	return domain.Spot{
		ID:            s.id,
		LotID:         s.lotID,
		SpotNumber:    s.number,
		Status:        s.status,
		VehicleNumber: s.vehicle,
		ReservedAt:    formatTimePtr(s.reservedAt),
	}
}

type reservation struct {
	id       int
	userID   int
	spotID   int
	parkedAt time.Time
	leftAt   *time.Time
	cost     decimal.NullDecimal
	vehicle  string
	remarks  *string
}

// State is the backend's data set. All access goes through its mutex.
type State struct {
	mu sync.RWMutex

	accounts     map[int]*account
	lots         map[int]*lot
	spots        map[int]*spot
	reservations map[int]*reservation

	seqAccount, seqLot, seqSpot, seqReservation int

	now func() time.Time
}

// NewState returns an empty data set.
func NewState() *State {
	return &State{
		accounts:     make(map[int]*account),
		lots:         make(map[int]*lot),
		spots:        make(map[int]*spot),
		reservations: make(map[int]*reservation),
		now:          time.Now,
	}
}

// SetClock replaces the time source.
func (st *State) SetClock(now func() time.Time) {
	st.mu.Lock()
	st.now = now
	st.mu.Unlock()
}

func (st *State) accountByEmail(email string) *account {
	for _, a := range st.accounts {
		if strings.EqualFold(a.email, email) {
			return a
		}
	}
	return nil
}

func (st *State) spotsOf(lotID int) []*spot {
	var out []*spot
	for _, s := range st.spots {
		if s.lotID == lotID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (st *State) lotView(l *lot, withSpots bool) domain.Lot {
	v := domain.Lot{
		ID:                l.id,
		PrimeLocationName: l.name,
		Address:           l.address,
		PinCode:           l.pinCode,
		PricePerHour:      l.pricePerHour,
		NumberOfSpots:     l.numberOfSpots,
		CreatedAt:         formatTime(l.createdAt),
	}
	if withSpots {
		v.Spots = []domain.Spot{}
		for _, s := range st.spotsOf(l.id) {
			v.Spots = append(v.Spots, s.view())
		}
	}
	return v
}

func (st *State) bookingView(r *reservation) domain.Booking {
	b := domain.Booking{
		ID:               r.id,
		UserID:           r.userID,
		SpotID:           r.spotID,
		Status:           domain.BookingActive,
		Cost:             r.cost,
		ParkingTimestamp: formatTimePtr(&r.parkedAt),
		LeavingTimestamp: formatTimePtr(r.leftAt),
		VehicleNumber:    r.vehicle,
		Remarks:          r.remarks,
	}
	if r.leftAt != nil {
		b.Status = domain.BookingReleased
	}
	if s, ok := st.spots[r.spotID]; ok {
		number := s.number
		b.SpotNumber = &number
		if l, ok := st.lots[s.lotID]; ok {
			name := l.name
			b.LotName = &name
		}
	}
	return b
}

func sortedReservations(m map[int]*reservation, keep func(*reservation) bool) []*reservation {
	var out []*reservation
	for _, r := range m {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
