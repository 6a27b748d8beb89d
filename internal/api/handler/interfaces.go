package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-parking-slot-booking/internal/application"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/booking"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/location"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/user"
)

// AuthServiceInterface は認証サービスのインターフェース
type AuthServiceInterface interface {
	Register(ctx context.Context, input application.RegisterInput) (string, *user.User, error)
	Login(ctx context.Context, email, password string) (string, *user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
}

// LocationServiceInterface はロケーションサービスのインターフェース
type LocationServiceInterface interface {
	CreateLocation(ctx context.Context, input application.CreateLocationInput) (*location.Location, error)
	GetLocation(ctx context.Context, id string) (*location.Location, error)
	ListLocations(ctx context.Context, area string, limit, offset int) ([]*location.Location, error)
	ListMyLocations(ctx context.Context, ownerID string) ([]*location.Location, error)
	UpdateLocation(ctx context.Context, input application.UpdateLocationInput) (*location.Location, error)
	DeleteLocation(ctx context.Context, id, ownerID string) error
	CountAvailableSlots(ctx context.Context, id string) (int, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	GetTicket(ctx context.Context, id, userID string) (*booking.Booking, error)
	ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
	CancelBooking(ctx context.Context, id, userID string) (*booking.Booking, error)
	FinishDueBookings(ctx context.Context, now time.Time) (int, error)
}

// StatsServiceInterface は統計サービスのインターフェース
type StatsServiceInterface interface {
	GetOwnerStats(ctx context.Context, ownerID string) (*application.OwnerStats, error)
}
