package services

import (
	"errors"
	"fmt"
	"strings"

	mysqlerr "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Error kinds. Every error returned by a service wraps exactly one of them.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence failure")
)

var (
	ErrRoomNotFound        = fmt.Errorf("room not found: %w", ErrNotFound)
	ErrStayNotFound        = fmt.Errorf("stay not found: %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation not found: %w", ErrNotFound)
	ErrDuplicateRoom       = fmt.Errorf("room number already exists: %w", ErrConflict)
	ErrRoomUnavailable     = fmt.Errorf("room already booked for the requested dates: %w", ErrConflict)
	ErrInvalidTransition   = fmt.Errorf("room status transition not allowed: %w", ErrConflict)
	ErrConcurrentUpdate    = fmt.Errorf("room was modified concurrently: %w", ErrConflict)
	ErrNoActiveStay        = fmt.Errorf("room has no active stay: %w", ErrConflict)
	ErrReservationClosed   = fmt.Errorf("reservation is no longer active: %w", ErrConflict)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

// passThrough keeps already-classified errors and wraps driver errors as
// persistence failures.
func passThrough(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrPersistence} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return persistence(op, err)
}

func isKind(err, kind error) bool {
	return errors.Is(err, kind)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqlerr.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return true
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique constraint")
}
