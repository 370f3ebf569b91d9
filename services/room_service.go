package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"hotel-frontdesk/clock"
	"hotel-frontdesk/models"
	"hotel-frontdesk/queue"
)

var roomNoPattern = regexp.MustCompile(`^[0-9A-Za-z-]{1,16}$`)

// RoomService is the room registry: onboarding, status transitions and the
// room board.
type RoomService struct {
	DB *gorm.DB
	hooks
}

func NewRoomService(db *gorm.DB, opts ...Option) *RoomService {
	return &RoomService{DB: db, hooks: newHooks(opts)}
}

type CreateRoomInput struct {
	RoomNo   string `json:"roomNo"`
	RoomType string `json:"roomType"`
	Floor    string `json:"roomFloor"`
}

// RoomView is one line of the room board.
type RoomView struct {
	ID            uint              `json:"id"`
	RoomNo        string            `json:"roomNo"`
	RoomType      string            `json:"roomType"`
	Floor         string            `json:"roomFloor"`
	Status        models.RoomStatus `json:"roomStatus"`
	DisplayStatus models.RoomStatus `json:"displayStatus"`
	GuestID       *uint             `json:"guestId,omitempty"`
	GuestName     string            `json:"guestName,omitempty"`
	Arrival       *time.Time        `json:"arrival,omitempty"`
	Departure     *time.Time        `json:"departure,omitempty"`
}

type RoomStats struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	Occupied  int `json:"occupied"`
	DueOut    int `json:"dueOut"`
}

type DueOutResult struct {
	Updated int      `json:"updatedCount"`
	RoomNos []string `json:"rooms"`
}

type cachedBoard struct {
	Date  string     `json:"date"`
	Rooms []RoomView `json:"rooms"`
}

func (s *RoomService) CreateRoom(ctx context.Context, in CreateRoomInput) (room models.Room, err error) {
	defer func() { observe("create_room", err) }()

	in.RoomNo = strings.TrimSpace(in.RoomNo)
	in.RoomType = strings.TrimSpace(in.RoomType)
	in.Floor = strings.TrimSpace(in.Floor)

	switch {
	case in.RoomNo == "":
		return models.Room{}, invalid("room number is required")
	case !roomNoPattern.MatchString(in.RoomNo):
		return models.Room{}, invalid("room number %q is not a valid identifier", in.RoomNo)
	case in.RoomType == "":
		return models.Room{}, invalid("room type is required")
	case in.Floor == "":
		return models.Room{}, invalid("floor is required")
	}

	db := s.DB.WithContext(ctx)

	var rt models.RoomType
	if err := db.Where("LOWER(type_name) = ?", strings.ToLower(in.RoomType)).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Room{}, invalid("unknown room type %q", in.RoomType)
		}
		return models.Room{}, persistence("load room type", err)
	}

	var existing int64
	if err := db.Model(&models.Room{}).Where("room_no = ?", in.RoomNo).Count(&existing).Error; err != nil {
		return models.Room{}, persistence("check room number", err)
	}
	if existing > 0 {
		return models.Room{}, fmt.Errorf("room %s: %w", in.RoomNo, ErrDuplicateRoom)
	}

	room = models.Room{
		RoomNo:   in.RoomNo,
		RoomType: rt.TypeName,
		Floor:    in.Floor,
		Status:   models.RoomAvailable,
	}
	if err := db.Create(&room).Error; err != nil {
		if isDuplicateKey(err) {
			return models.Room{}, fmt.Errorf("room %s: %w", in.RoomNo, ErrDuplicateRoom)
		}
		return models.Room{}, persistence("create room", err)
	}

	log.Printf("room %s created (%s, floor %s)", room.RoomNo, room.RoomType, room.Floor)
	s.committed(ctx, queue.Event{
		Type:     queue.RoomCreated,
		RoomID:   room.ID,
		RoomNo:   room.RoomNo,
		ToStatus: string(room.Status),
	})
	return room, nil
}

func (s *RoomService) Get(ctx context.Context, id uint) (models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Room{}, ErrRoomNotFound
		}
		return models.Room{}, persistence("load room", err)
	}
	return room, nil
}

// List returns the room board sorted by room number. An empty search is
// served from the cache when possible.
func (s *RoomService) List(ctx context.Context, search string) ([]RoomView, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	today := clock.Today(s.clock)
	day := today.Format("2006-01-02")

	gen := int64(-1)
	if search == "" {
		bs, g, ok := s.cache.Get(ctx)
		gen = g
		if ok {
			var cached cachedBoard
			if err := json.Unmarshal(bs, &cached); err == nil && cached.Date == day {
				return cached.Rooms, nil
			}
		}
	}

	board, err := s.loadBoard(ctx, today)
	if err != nil {
		return nil, err
	}

	if search == "" {
		if bs, err := json.Marshal(cachedBoard{Date: day, Rooms: board}); err == nil {
			s.cache.Set(ctx, gen, bs)
		}
		return board, nil
	}

	filtered := make([]RoomView, 0, len(board))
	for _, v := range board {
		if strings.Contains(strings.ToLower(v.RoomNo), search) {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

func (s *RoomService) loadBoard(ctx context.Context, today time.Time) ([]RoomView, error) {
	db := s.DB.WithContext(ctx)

	var rooms []models.Room
	if err := db.Order("room_no ASC").Find(&rooms).Error; err != nil {
		return nil, persistence("list rooms", err)
	}

	stayIDs := make([]uint, 0, len(rooms))
	for _, r := range rooms {
		if r.ActiveStayID != nil {
			stayIDs = append(stayIDs, *r.ActiveStayID)
		}
	}
	stays := map[uint]*models.Stay{}
	if len(stayIDs) > 0 {
		var active []models.Stay
		if err := db.Where("id IN ?", stayIDs).Find(&active).Error; err != nil {
			return nil, persistence("load active stays", err)
		}
		for i := range active {
			stays[active[i].ID] = &active[i]
		}
	}

	board := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		v := RoomView{
			ID:       r.ID,
			RoomNo:   r.RoomNo,
			RoomType: r.RoomType,
			Floor:    r.Floor,
			Status:   r.Status,
			GuestID:  r.ActiveStayID,
		}
		var st *models.Stay
		if r.ActiveStayID != nil {
			st = stays[*r.ActiveStayID]
		}
		if st != nil {
			arrival, departure := st.Stay.Arrival, st.Stay.Departure
			v.GuestName = st.Guest.Name
			v.Arrival = &arrival
			v.Departure = &departure
		}
		v.DisplayStatus = RoomDisplayStatus(r, st, today)
		board = append(board, v)
	}
	sort.SliceStable(board, func(i, j int) bool { return board[i].RoomNo < board[j].RoomNo })
	return board, nil
}

func (s *RoomService) Stats(ctx context.Context) (RoomStats, error) {
	board, err := s.List(ctx, "")
	if err != nil {
		return RoomStats{}, err
	}
	stats := RoomStats{Total: len(board)}
	for _, v := range board {
		switch v.DisplayStatus {
		case models.RoomAvailable:
			stats.Available++
		case models.RoomReserved:
			stats.Reserved++
		case models.RoomOccupied:
			stats.Occupied++
		case models.RoomDueOut:
			stats.DueOut++
		}
	}
	return stats, nil
}

// SetStatus is the manual status change of the front desk. Occupancy is
// only entered through check-in and only left through checkout or clean, so
// the manual path covers AVAILABLE<->RESERVED and OCCUPIED->DUE_OUT. Setting
// the current status again is a no-op.
func (s *RoomService) SetStatus(ctx context.Context, id uint, to models.RoomStatus) (room models.Room, err error) {
	defer func() { observe("set_status", err) }()

	if !to.Valid() {
		return models.Room{}, invalid("unknown room status %q", to)
	}

	var from models.RoomStatus
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = lockRoom(tx, id)
		if err != nil {
			return err
		}
		from = room.Status
		if room.Status == to {
			return nil
		}

		manual := (room.Status == models.RoomAvailable && to == models.RoomReserved) ||
			(room.Status == models.RoomReserved && to == models.RoomAvailable) ||
			(room.Status == models.RoomOccupied && to == models.RoomDueOut)
		if !manual {
			return fmt.Errorf("room %s %s -> %s needs check-in, checkout or clean: %w",
				room.RoomNo, room.Status, to, ErrInvalidTransition)
		}
		return applyTransition(tx, &room, to, room.ActiveStayID)
	})
	if err != nil {
		return models.Room{}, passThrough("set room status", err)
	}

	if from != to {
		s.committed(ctx, queue.Event{
			Type:       queue.RoomStatusChanged,
			RoomID:     room.ID,
			RoomNo:     room.RoomNo,
			FromStatus: string(from),
			ToStatus:   string(to),
		})
	}
	return room, nil
}

// MarkDueOut moves every occupied room whose guest's departure has passed to
// DUE_OUT. Each room is its own transaction; a failing room does not stop the
// sweep and its error is returned joined with the others.
func (s *RoomService) MarkDueOut(ctx context.Context) (DueOutResult, error) {
	today := clock.Today(s.clock)
	result := DueOutResult{RoomNos: []string{}}

	var occupied []models.Room
	if err := s.DB.WithContext(ctx).Where("room_status = ?", models.RoomOccupied).
		Order("room_no ASC").Find(&occupied).Error; err != nil {
		observe("mark_due_out", err)
		return result, persistence("list occupied rooms", err)
	}

	var errs []error
	for _, candidate := range occupied {
		if candidate.ActiveStayID == nil {
			continue
		}
		var room models.Room
		moved := false
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			room, err = lockRoom(tx, candidate.ID)
			if err != nil {
				return err
			}
			if room.Status != models.RoomOccupied || room.ActiveStayID == nil {
				return nil
			}
			var stay models.Stay
			if err := tx.First(&stay, *room.ActiveStayID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return persistence("load active stay", err)
			}
			if !clock.DateOf(stay.Stay.Departure).Before(today) {
				return nil
			}
			moved = true
			return applyTransition(tx, &room, models.RoomDueOut, room.ActiveStayID)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("room %s: %w", candidate.RoomNo, passThrough("mark due out", err)))
			continue
		}
		if moved {
			result.Updated++
			result.RoomNos = append(result.RoomNos, room.RoomNo)
			s.committed(ctx, queue.Event{
				Type:       queue.RoomStatusChanged,
				RoomID:     room.ID,
				RoomNo:     room.RoomNo,
				StayID:     *room.ActiveStayID,
				FromStatus: string(models.RoomOccupied),
				ToStatus:   string(models.RoomDueOut),
			})
		}
	}

	err := errors.Join(errs...)
	observe("mark_due_out", err)
	if result.Updated > 0 {
		log.Printf("due-out sweep: %d room(s) marked DUE_OUT %v", result.Updated, result.RoomNos)
	}
	return result, err
}

// Clean returns a due-out room to service. A guest still attached to the room
// is checked out, but only once their departure has passed; a guest due to
// leave today or later keeps the room. Cleaning an available room is a no-op.
func (s *RoomService) Clean(ctx context.Context, id uint) (room models.Room, err error) {
	defer func() { observe("clean", err) }()

	today := clock.Today(s.clock)
	var events []queue.Event
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		room, err = lockRoom(tx, id)
		if err != nil {
			return err
		}
		switch room.Status {
		case models.RoomAvailable:
			return nil
		case models.RoomDueOut:
		default:
			return fmt.Errorf("room %s is %s, only DUE_OUT rooms can be cleaned: %w",
				room.RoomNo, room.Status, ErrInvalidTransition)
		}

		if room.ActiveStayID != nil {
			var active models.Stay
			if err := tx.First(&active, *room.ActiveStayID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return persistence("load active stay", err)
			}
			if active.Guest.Status == models.GuestCheckedIn && !clock.DateOf(active.Stay.Departure).Before(today) {
				return fmt.Errorf("room %s guest departs %s: %w", room.RoomNo,
					active.Stay.Departure.Format("2006-01-02"), ErrInvalidTransition)
			}

			now := s.clock.Now()
			res := tx.Model(&models.Stay{}).
				Where("id = ? AND guest_status = ?", *room.ActiveStayID, models.GuestCheckedIn).
				Updates(map[string]interface{}{
					"guest_status":         string(models.GuestCheckedOut),
					"guest_checked_out_at": now,
				})
			if res.Error != nil {
				return persistence("close stay", res.Error)
			}
			if res.RowsAffected > 0 {
				events = append(events, queue.Event{
					Type:   queue.GuestCheckedOut,
					RoomID: room.ID,
					RoomNo: room.RoomNo,
					StayID: *room.ActiveStayID,
				})
			}
		}

		if err := applyTransition(tx, &room, models.RoomAvailable, nil); err != nil {
			return err
		}
		events = append(events, queue.Event{
			Type:       queue.RoomStatusChanged,
			RoomID:     room.ID,
			RoomNo:     room.RoomNo,
			FromStatus: string(models.RoomDueOut),
			ToStatus:   string(models.RoomAvailable),
		})
		return nil
	})
	if err != nil {
		return models.Room{}, passThrough("clean room", err)
	}

	if len(events) > 0 {
		s.committed(ctx, events...)
	}
	return room, nil
}

// RunDueOutSweeper calls MarkDueOut every interval until ctx is done.
func RunDueOutSweeper(ctx context.Context, svc *RoomService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.MarkDueOut(ctx); err != nil {
				log.Printf("[WARN] due-out sweep: %v", err)
			}
		}
	}
}
