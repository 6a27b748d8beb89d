package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/booking"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/transaction"
)

type bookingRow struct {
	ID            string     `db:"id"`
	BookingNumber string     `db:"booking_number"`
	UserID        string     `db:"user_id"`
	UserName      string     `db:"user_name"`
	LocationID    string     `db:"location_id"`
	LocationName  string     `db:"location_name"`
	Area          string     `db:"area"`
	Address       string     `db:"address"`
	Image         *string    `db:"image"`
	BookingDate   string     `db:"booking_date"`
	StartTime     string     `db:"start_time"`
	EndTime       string     `db:"end_time"`
	Duration      int        `db:"duration"`
	HourlyRate    int        `db:"hourly_rate"`
	TotalAmount   int        `db:"total_amount"`
	Status        string     `db:"status"`
	FinishedAt    *time.Time `db:"finished_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	var image string
	if r.Image != nil {
		image = *r.Image
	}
	return &booking.Booking{
		ID: r.ID, BookingNumber: r.BookingNumber,
		UserID: r.UserID, UserName: r.UserName,
		LocationID: r.LocationID, LocationName: r.LocationName,
		Area: r.Area, Address: r.Address, Image: image,
		BookingDate: r.BookingDate, StartTime: r.StartTime, EndTime: r.EndTime,
		Duration: r.Duration, HourlyRate: r.HourlyRate, TotalAmount: r.TotalAmount,
		Status: booking.Status(r.Status), FinishedAt: r.FinishedAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const bookingColumns = `id, booking_number, user_id, user_name, location_id, location_name, area, address, image, booking_date, start_time, end_time, duration, hourly_rate, total_amount, status, finished_at, created_at, updated_at`

// BookingRepository は予約リポジトリのPostgreSQL実装
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository はBookingRepositoryを作成する
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create は新しい予約を作成する
// 予約番号の一意制約違反は ErrDuplicateBookingNumber として返す
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (booking_number, user_id, user_name, location_id, location_name, area, address, image,
		                      booking_date, start_time, end_time, duration, hourly_rate, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`
	var image *string
	if b.Image != "" {
		image = &b.Image
	}
	err := r.db.QueryRowContext(ctx, query,
		b.BookingNumber, b.UserID, b.UserName, b.LocationID, b.LocationName, b.Area, b.Address, image,
		b.BookingDate, b.StartTime, b.EndTime, b.Duration, b.HourlyRate, b.TotalAmount, string(b.Status), b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return booking.ErrDuplicateBookingNumber
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

// GetByID はIDから予約を取得する
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDForUser はIDから予約を取得する（所有者のみ）
func (r *BookingRepository) GetByIDForUser(ctx context.Context, id, userID string) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND user_id = $2`
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// ListByUser はユーザーの予約一覧を新しい順に取得する
func (r *BookingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

// UpdateStatus は Booked 状態の予約を指定の状態へ遷移させる（トランザクション必須）
// 現在の状態を条件に含めた比較更新のため、同一予約への並行する遷移
// （キャンセル同士、キャンセルと完了処理）のうち成功するのは常に1件のみとなる
func (r *BookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return fmt.Errorf("トランザクションが必要です")
	}
	query := `UPDATE bookings SET status = $1, finished_at = $2, updated_at = $3 WHERE id = $4 AND status = 'Booked'`
	result, err := sqlxTx.ExecContext(ctx, query, string(b.Status), b.FinishedAt, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// 更新対象なし: 不在か、既に別の遷移が確定しているかを区別する
		var current string
		if err := sqlxTx.GetContext(ctx, &current, `SELECT status FROM bookings WHERE id = $1`, b.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return booking.ErrBookingNotFound
			}
			return fmt.Errorf("予約状態の確認に失敗: %w", err)
		}
		switch booking.Status(current) {
		case booking.StatusCancelled:
			return booking.ErrBookingAlreadyCancelled
		case booking.StatusFinished:
			return booking.ErrBookingAlreadyFinished
		}
		return booking.ErrBookingNotActive
	}
	return nil
}

// ListActiveOnOrBefore は指定日以前の Booked 状態の予約一覧を取得する
func (r *BookingRepository) ListActiveOnOrBefore(ctx context.Context, date string) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'Booked' AND booking_date <= $1 ORDER BY booking_date`
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("有効予約の取得に失敗: %w", err)
	}
	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

// EarningsByOwner は所有者のロケーション別売上と総売上を集計する
func (r *BookingRepository) EarningsByOwner(ctx context.Context, ownerID string) ([]booking.LocationEarnings, int, error) {
	query := `
		SELECT b.location_name AS name, SUM(b.total_amount) AS amount
		FROM bookings b
		JOIN locations l ON l.id = b.location_id
		WHERE l.owner_id = $1 AND b.status IN ('Booked', 'Finished')
		GROUP BY b.location_name
		ORDER BY amount DESC
	`
	var rows []struct {
		Name   string `db:"name"`
		Amount int    `db:"amount"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, 0, fmt.Errorf("売上集計に失敗: %w", err)
	}
	earnings := make([]booking.LocationEarnings, len(rows))
	total := 0
	for i, row := range rows {
		earnings[i] = booking.LocationEarnings{Name: row.Name, Amount: row.Amount}
		total += row.Amount
	}
	return earnings, total, nil
}

// インターフェースを満たしているか確認
var _ booking.Repository = (*BookingRepository)(nil)
