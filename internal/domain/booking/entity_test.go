package booking

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() LocationSnapshot {
	return LocationSnapshot{
		ID:         "loc-1",
		Name:       "中央駐車場",
		Area:       "渋谷",
		Address:    "東京都渋谷区1-2-3",
		Image:      "img-001",
		HourlyRate: 500,
	}
}

func testSchedule() Schedule {
	return Schedule{Date: "2025-06-02", StartTime: "09:00", EndTime: "12:00", Duration: 3}
}

func TestNewBooking(t *testing.T) {
	b := NewBooking("user-1", "山田太郎", testSnapshot(), testSchedule())

	require.NoError(t, b.Validate())
	assert.Equal(t, StatusBooked, b.Status)
	assert.Equal(t, "中央駐車場", b.LocationName)
	assert.Equal(t, 500, b.HourlyRate)
	assert.Equal(t, 1500, b.TotalAmount)
	assert.NotEmpty(t, b.BookingNumber)
	assert.Nil(t, b.FinishedAt)
}

func TestNewBooking_SnapshotIndependence(t *testing.T) {
	snap := testSnapshot()
	b := NewBooking("user-1", "山田太郎", snap, testSchedule())

	// 予約後にロケーション側の料金が変わっても合計金額は変わらない
	snap.HourlyRate = 9999
	assert.Equal(t, 1500, b.TotalAmount)
	assert.Equal(t, b.Duration*b.HourlyRate, b.TotalAmount)
}

func TestBooking_Cancel(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		wantErr error
	}{
		{"Booked状態からキャンセル", StatusBooked, nil},
		{"Cancelled状態からキャンセル", StatusCancelled, ErrBookingAlreadyCancelled},
		{"Finished状態からキャンセル", StatusFinished, ErrBookingAlreadyFinished},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBooking("user-1", "山田太郎", testSnapshot(), testSchedule())
			b.Status = tt.status
			err := b.Cancel()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, b.Status)
			} else {
				require.NoError(t, err)
				assert.Equal(t, StatusCancelled, b.Status)
			}
		})
	}
}

func TestBooking_Finish(t *testing.T) {
	b := NewBooking("user-1", "山田太郎", testSnapshot(), testSchedule())

	err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, b.Status)
	assert.NotNil(t, b.FinishedAt)

	// 完了済みを再度完了することはできない
	assert.ErrorIs(t, b.Finish(), ErrBookingNotActive)
}

func TestBooking_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Booking)
		wantErr error
	}{
		{"正常な予約", func(b *Booking) {}, nil},
		{"予約番号未指定", func(b *Booking) { b.BookingNumber = "" }, ErrBookingNumberRequired},
		{"ユーザーID未指定", func(b *Booking) { b.UserID = "" }, ErrUserIDRequired},
		{"ロケーションID未指定", func(b *Booking) { b.LocationID = "" }, ErrLocationIDRequired},
		{"利用時間が0", func(b *Booking) { b.Duration = 0 }, ErrInvalidDuration},
		{"料金が0", func(b *Booking) { b.HourlyRate = 0 }, ErrInvalidHourlyRate},
		{"合計金額の不整合", func(b *Booking) { b.TotalAmount = 1 }, ErrInvalidTotalAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBooking("user-1", "山田太郎", testSnapshot(), testSchedule())
			tt.modify(b)
			err := b.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGenerateBookingNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^PK-\d+-[A-Z0-9]{6}$`)

	n1 := GenerateBookingNumber()
	n2 := GenerateBookingNumber()
	assert.Regexp(t, pattern, n1)
	assert.Regexp(t, pattern, n2)
	assert.NotEqual(t, n1, n2)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, 1500, Quote(3, 500))
	assert.Equal(t, 500, Quote(1, 500))
}
