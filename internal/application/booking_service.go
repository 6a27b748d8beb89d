package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/booking"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/location"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-parking-slot-booking/internal/infrastructure/rabbitmq"
	"github.com/sanosuguru/go-parking-slot-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-parking-slot-booking/internal/pkg/metrics"
)

const (
	// 予約番号の衝突時に再生成を試みる回数
	maxBookingNumberAttempts = 3
)

// EventPublisher は予約イベント発行のインターフェース
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event rabbitmq.BookingEvent) error
}

type BookingService struct {
	txManager    transaction.Manager
	bookingRepo  booking.Repository
	locationRepo location.Repository
	cache        SlotCache
	publisher    EventPublisher
}

func NewBookingService(txManager transaction.Manager, br booking.Repository, lr location.Repository, cache SlotCache, publisher EventPublisher) *BookingService {
	return &BookingService{
		txManager:    txManager,
		bookingRepo:  br,
		locationRepo: lr,
		cache:        cache,
		publisher:    publisher,
	}
}

type CreateBookingInput struct {
	LocationID  string
	UserID      string
	UserName    string
	BookingDate string
	StartTime   string
	EndTime     string // Duration との排他指定
	Duration    int
}

// CreateBooking は予約を作成する
// 検証 → アトミックなスロットクレーム → 料金計算 → 永続化の順に実行し、
// 永続化に失敗した場合はクレーム済みのスロットを解放する（補償処理）
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	// スケジュール検証（スロットを確保する前に行う）
	var sched booking.Schedule
	var err error
	if input.EndTime != "" {
		sched, err = booking.NewScheduleFromEndTime(input.BookingDate, input.StartTime, input.EndTime, time.Now())
	} else {
		sched, err = booking.NewScheduleFromDuration(input.BookingDate, input.StartTime, input.Duration, time.Now())
	}
	if err != nil {
		countBooking("validation_error")
		return nil, err
	}

	// 空き台数カウンターを条件付きUPDATEで1減らす
	// 同時リクエストがあっても確保できるのは空き台数分だけとなる
	claimStart := time.Now()
	loc, err := s.locationRepo.ClaimSlot(ctx, input.LocationID)
	if err != nil {
		if errors.Is(err, location.ErrNoSlotsAvailable) {
			observeClaim(claimStart, "no_capacity")
			countBooking("no_capacity")
		} else {
			countBooking("error")
		}
		return nil, err
	}
	observeClaim(claimStart, "success")

	// 料金はクレーム時点のロケーション料金から導出する
	snapshot := booking.LocationSnapshot{
		ID:         loc.ID,
		Name:       loc.Name,
		Area:       loc.Area,
		Address:    loc.Address,
		Image:      loc.Image,
		HourlyRate: loc.HourlyRate,
	}
	b := booking.NewBooking(input.UserID, input.UserName, snapshot, sched)
	if err := b.Validate(); err != nil {
		s.compensateClaim(ctx, input.LocationID)
		countBooking("validation_error")
		return nil, err
	}

	// 予約番号が衝突した場合は再生成してリトライする
	for attempt := 0; ; attempt++ {
		err = s.bookingRepo.Create(ctx, b)
		if err == nil {
			break
		}
		if errors.Is(err, booking.ErrDuplicateBookingNumber) && attempt < maxBookingNumberAttempts-1 {
			b.BookingNumber = booking.GenerateBookingNumber()
			continue
		}
		// 永続化失敗: クレーム済みのスロットを解放する
		s.compensateClaim(ctx, input.LocationID)
		countBooking("error")
		return nil, err
	}

	s.invalidateCache(ctx, input.LocationID)
	s.publishEvent(ctx, rabbitmq.RoutingKeyBookingCreated, b)
	countBooking("success")
	gaugeActiveBookings(1)
	return b, nil
}

// GetTicket はチケット表示用の予約を取得する（所有者のみ）
func (s *BookingService) GetTicket(ctx context.Context, id, userID string) (*booking.Booking, error) {
	return s.bookingRepo.GetByIDForUser(ctx, id, userID)
}

// ListUserBookings はユーザーの予約一覧を新しい順に取得する
func (s *BookingService) ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookingRepo.ListByUser(ctx, userID, limit, offset)
}

// CancelBooking は予約をキャンセルする（所有者のみ）
// 状態更新とスロット解放は同一トランザクションで実行される
func (s *BookingService) CancelBooking(ctx context.Context, id, userID string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		countCancellation("error")
		return nil, err
	}
	if err := b.Cancel(); err != nil {
		if errors.Is(err, booking.ErrBookingAlreadyCancelled) {
			countCancellation("already_cancelled")
		} else {
			countCancellation("error")
		}
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		countCancellation("error")
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 遷移の確定はDB側の比較更新に委ねる
	// 並行キャンセルや完了処理に先を越された場合はここで止まり、二重解放は起きない
	if err := s.bookingRepo.UpdateStatus(ctx, tx, b); err != nil {
		if errors.Is(err, booking.ErrBookingAlreadyCancelled) {
			countCancellation("already_cancelled")
		} else {
			countCancellation("error")
		}
		return nil, err
	}
	if err := s.locationRepo.ReleaseSlot(ctx, tx, b.LocationID); err != nil {
		countCancellation("error")
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		countCancellation("error")
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, b.LocationID)
	s.publishEvent(ctx, rabbitmq.RoutingKeyBookingCancelled, b)
	countCancellation("success")
	gaugeActiveBookings(-1)
	return b, nil
}

// FinishDueBookings は終了時刻を過ぎた Booked 予約を Finished に遷移させ、
// スロットを解放する。ワーカーから定期的に呼び出される
func (s *BookingService) FinishDueBookings(ctx context.Context, now time.Time) (int, error) {
	today := now.Format("2006-01-02")
	candidates, err := s.bookingRepo.ListActiveOnOrBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("有効予約の取得に失敗: %w", err)
	}

	currentTime := now.Format("15:04")
	finished := 0
	for _, b := range candidates {
		// 当日の予約は終了時刻を過ぎたものだけを対象とする
		if b.BookingDate == today && b.EndTime > currentTime {
			continue
		}
		if err := b.Finish(); err != nil {
			continue
		}

		tx, err := s.txManager.Begin(ctx)
		if err != nil {
			logger.Error("トランザクション開始に失敗", zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		if err := s.bookingRepo.UpdateStatus(ctx, tx, b); err != nil {
			// 確認後にキャンセルが確定した予約はスキップする
			if !errors.Is(err, booking.ErrBookingAlreadyCancelled) {
				logger.Error("予約完了処理に失敗", zap.String("booking_id", b.ID), zap.Error(err))
			}
			tx.Rollback()
			continue
		}
		if err := s.locationRepo.ReleaseSlot(ctx, tx, b.LocationID); err != nil {
			logger.Error("スロット解放に失敗", zap.String("booking_id", b.ID), zap.Error(err))
			tx.Rollback()
			continue
		}
		if err := tx.Commit(); err != nil {
			logger.Error("コミットに失敗", zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}

		s.invalidateCache(ctx, b.LocationID)
		gaugeActiveBookings(-1)
		finished++
	}
	return finished, nil
}

// compensateClaim は永続化に失敗したクレームを取り消す
func (s *BookingService) compensateClaim(ctx context.Context, locationID string) {
	if err := s.locationRepo.ReleaseSlot(ctx, nil, locationID); err != nil {
		// 解放に失敗した場合はカウンターに不整合が残るためログに残す
		logger.Error("補償処理のスロット解放に失敗", zap.String("location_id", locationID), zap.Error(err))
	}
}

func (s *BookingService) invalidateCache(ctx context.Context, locationID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, locationID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
}

// publishEvent は予約イベントを発行する
// 発行失敗は予約処理の成否に影響させない
func (s *BookingService) publishEvent(ctx context.Context, routingKey string, b *booking.Booking) {
	if s.publisher == nil {
		return
	}
	event := rabbitmq.BookingEvent{
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		UserID:        b.UserID,
		LocationID:    b.LocationID,
		LocationName:  b.LocationName,
		BookingDate:   b.BookingDate,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		TotalAmount:   b.TotalAmount,
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		logger.Warn("イベント発行エラー", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func observeClaim(start time.Time, status string) {
	if m := metrics.Get(); m != nil {
		m.SlotClaimDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
}

func countBooking(status string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(status).Inc()
	}
}

func countCancellation(status string) {
	if m := metrics.Get(); m != nil {
		m.CancellationsTotal.WithLabelValues(status).Inc()
	}
}

func gaugeActiveBookings(delta float64) {
	if m := metrics.Get(); m != nil {
		m.ActiveBookings.WithLabelValues("booked").Add(delta)
	}
}
