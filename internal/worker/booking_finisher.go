package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-parking-slot-booking/internal/pkg/logger"
)

// BookingFinisherService は終了時刻を過ぎた予約を完了させるインターフェース
type BookingFinisherService interface {
	FinishDueBookings(ctx context.Context, now time.Time) (int, error)
}

// BookingFinisher は終了済み予約を Finished に遷移させるワーカー
// 完了した予約のスロットは解放され、次の予約に利用できるようになる
type BookingFinisher struct {
	bookingService BookingFinisherService
	interval       time.Duration
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// NewBookingFinisher は新しいワーカーを作成
func NewBookingFinisher(bs BookingFinisherService, interval time.Duration) *BookingFinisher {
	return &BookingFinisher{
		bookingService: bs,
		interval:       interval,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start はワーカーを開始
func (f *BookingFinisher) Start(ctx context.Context) {
	logger.Info("予約完了ワーカー開始", zap.Duration("interval", f.interval))

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	defer close(f.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("予約完了ワーカー停止（コンテキストキャンセル）")
			return
		case <-f.stopCh:
			logger.Info("予約完了ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			f.finish(ctx)
		}
	}
}

// Stop はワーカーを停止
func (f *BookingFinisher) Stop() {
	close(f.stopCh)
	<-f.doneCh
}

// finish は終了時刻を過ぎた予約を完了させる
func (f *BookingFinisher) finish(ctx context.Context) {
	log := logger.Get()
	log.Debug("終了済み予約の完了処理開始")

	count, err := f.bookingService.FinishDueBookings(ctx, time.Now())
	if err != nil {
		log.Error("終了済み予約の完了処理失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("予約を完了状態に遷移", zap.Int("count", count))
	} else {
		log.Debug("完了対象の予約なし")
	}
}
