package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingFinisherService はBookingFinisherServiceのモック
type MockBookingFinisherService struct {
	mock.Mock
}

func (m *MockBookingFinisherService) FinishDueBookings(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func TestNewBookingFinisher(t *testing.T) {
	mockService := new(MockBookingFinisherService)
	interval := 5 * time.Minute

	finisher := NewBookingFinisher(mockService, interval)

	assert.NotNil(t, finisher)
	assert.Equal(t, interval, finisher.interval)
	assert.NotNil(t, finisher.stopCh)
	assert.NotNil(t, finisher.doneCh)
}

func TestBookingFinisher_Finish(t *testing.T) {
	t.Run("正常に完了処理が実行される", func(t *testing.T) {
		mockService := new(MockBookingFinisherService)
		mockService.On("FinishDueBookings", mock.Anything, mock.AnythingOfType("time.Time")).Return(3, nil)

		finisher := NewBookingFinisher(mockService, 1*time.Minute)

		finisher.finish(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("完了対象がない場合も正常に動作する", func(t *testing.T) {
		mockService := new(MockBookingFinisherService)
		mockService.On("FinishDueBookings", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil)

		finisher := NewBookingFinisher(mockService, 1*time.Minute)

		finisher.finish(context.Background())

		mockService.AssertExpectations(t)
	})

	t.Run("エラーが発生しても継続する", func(t *testing.T) {
		mockService := new(MockBookingFinisherService)
		mockService.On("FinishDueBookings", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, assert.AnError)

		finisher := NewBookingFinisher(mockService, 1*time.Minute)

		// パニックしないことを確認
		finisher.finish(context.Background())

		mockService.AssertExpectations(t)
	})
}

func TestBookingFinisher_StartStop(t *testing.T) {
	t.Run("開始と停止が正常に動作する", func(t *testing.T) {
		mockService := new(MockBookingFinisherService)
		mockService.On("FinishDueBookings", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil).Maybe()

		finisher := NewBookingFinisher(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// バックグラウンドで開始
		go finisher.Start(ctx)

		// 少し待機
		time.Sleep(120 * time.Millisecond)

		// 停止
		finisher.Stop()

		// Stop後はdoneChがcloseされている
		select {
		case <-finisher.doneCh:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("finisher did not stop in time")
		}
	})

	t.Run("コンテキストキャンセルで停止する", func(t *testing.T) {
		mockService := new(MockBookingFinisherService)
		mockService.On("FinishDueBookings", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, nil).Maybe()

		finisher := NewBookingFinisher(mockService, 50*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			finisher.Start(ctx)
			close(done)
		}()

		// 少し待機してからコンテキストをキャンセル
		time.Sleep(80 * time.Millisecond)
		cancel()

		// 終了を待機
		select {
		case <-done:
			// 正常に終了
		case <-time.After(1 * time.Second):
			t.Error("finisher did not stop after context cancel")
		}
	})
}
