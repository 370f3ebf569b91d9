package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hotel-frontdesk/clock"
	"hotel-frontdesk/models"
	"hotel-frontdesk/queue"
	"hotel-frontdesk/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type memCache struct {
	mu            sync.Mutex
	gen           int64
	payloadGen    int64
	payload       []byte
	hits          int
	invalidations int
	// afterGet runs once, after the next Get has read the generation.
	afterGet func()
}

func (c *memCache) Get(context.Context) ([]byte, int64, bool) {
	c.mu.Lock()
	gen := c.gen
	var (
		payload []byte
		ok      bool
	)
	if c.payload != nil && c.payloadGen == gen {
		payload, ok = c.payload, true
		c.hits++
	}
	hook := c.afterGet
	c.afterGet = nil
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	return payload, gen, ok
}

func (c *memCache) Set(_ context.Context, gen int64, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = payload
	c.payloadGen = gen
}

func (c *memCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidations++
}

type fixture struct {
	db           *gorm.DB
	clock        clock.Clock
	events       *recordingPublisher
	cache        *memCache
	rooms        *RoomService
	stays        *StayService
	reservations *ReservationService
	availability *AvailabilityService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		db:     testutil.NewDB(t),
		clock:  clock.NewFixed(now),
		events: &recordingPublisher{},
		cache:  &memCache{},
	}
	opts := []Option{WithClock(f.clock), WithPublisher(f.events), WithBoardCache(f.cache)}
	f.rooms = NewRoomService(f.db, opts...)
	f.stays = NewStayService(f.db, opts...)
	f.reservations = NewReservationService(f.db, opts...)
	f.availability = NewAvailabilityService(f.db, f.clock)
	return f
}

// at returns the fixture's services reading time from another clock.
func (f *fixture) at(now time.Time) *fixture {
	g := *f
	g.clock = clock.NewFixed(now)
	opts := []Option{WithClock(g.clock), WithPublisher(f.events), WithBoardCache(f.cache)}
	g.rooms = NewRoomService(f.db, opts...)
	g.stays = NewStayService(f.db, opts...)
	g.reservations = NewReservationService(f.db, opts...)
	g.availability = NewAvailabilityService(f.db, g.clock)
	return &g
}

func (f *fixture) createRoom(t *testing.T, roomNo string) models.Room {
	t.Helper()
	room, err := f.rooms.CreateRoom(context.Background(), CreateRoomInput{
		RoomNo:   roomNo,
		RoomType: "Standard Queen",
		Floor:    "1",
	})
	if err != nil {
		t.Fatalf("create room %s: %v", roomNo, err)
	}
	return room
}

func (f *fixture) reloadRoom(t *testing.T, id uint) models.Room {
	t.Helper()
	room, err := f.rooms.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("reload room: %v", err)
	}
	return room
}

// checkInInput is a tax-free stay so subtotals are easy to follow.
func checkInInput(roomID uint, arrival, departure, price string) CheckInInput {
	zero := decimal.Zero
	return CheckInInput{
		RoomID:             roomID,
		Guest:              GuestInput{Name: "Aisyah Rahman", Phone: "+60123456789", Email: "aisyah@example.com"},
		Arrival:            day(arrival),
		Departure:          day(departure),
		Adults:             1,
		RoomPrice:          dec(price),
		SSTPercent:         &zero,
		TourismTaxPerNight: &zero,
		PaymentMethod:      models.PaymentCash,
	}
}

func (f *fixture) checkIn(t *testing.T, roomID uint, arrival, departure, price string) models.Stay {
	t.Helper()
	stay, err := f.stays.CheckIn(context.Background(), checkInInput(roomID, arrival, departure, price))
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	return stay
}

func reserveInput(roomNo, arrival, departure string) ReserveInput {
	return ReserveInput{
		RoomNo:     roomNo,
		Guest:      ReservationGuestInput{Name: "Tan Wei Ming", Phone: "+60198765432"},
		Arrival:    day(arrival),
		Departure:  day(departure),
		NumOfGuest: 2,
		BookingFee: dec("200"),
	}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, field, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("expected %s %s, got %s", field, want, got.String())
	}
}
