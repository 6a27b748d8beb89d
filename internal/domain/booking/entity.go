package booking

import "time"

// Status は予約の状態を表す
// 大文字小文字の揺れを避けるため、正準な値のみを使用する
type Status string

const (
	StatusBooked    Status = "Booked"
	StatusFinished  Status = "Finished"
	StatusCancelled Status = "Cancelled"
)

// Booking は予約エンティティを表す
// ロケーション情報は作成時点のスナップショットとして非正規化され、
// 後からロケーションが編集・削除されてもチケットの内容は変わらない
type Booking struct {
	ID            string
	BookingNumber string
	UserID        string
	UserName      string
	LocationID    string
	LocationName  string
	Area          string
	Address       string
	Image         string
	BookingDate   string // yyyy-mm-dd
	StartTime     string // HH:mm
	EndTime       string // HH:mm
	Duration      int    // 時間単位
	HourlyRate    int    // 予約時点の時間料金
	TotalAmount   int    // Duration * HourlyRate
	Status        Status
	FinishedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LocationSnapshot は予約に取り込むロケーション情報
type LocationSnapshot struct {
	ID         string
	Name       string
	Area       string
	Address    string
	Image      string
	HourlyRate int
}

// NewBooking は新しい予約を作成する
// 合計金額はロケーションの現在の料金から導出され、呼び出し側からは指定できない
func NewBooking(userID, userName string, loc LocationSnapshot, sched Schedule) *Booking {
	now := time.Now()
	return &Booking{
		BookingNumber: GenerateBookingNumber(),
		UserID:        userID,
		UserName:      userName,
		LocationID:    loc.ID,
		LocationName:  loc.Name,
		Area:          loc.Area,
		Address:       loc.Address,
		Image:         loc.Image,
		BookingDate:   sched.Date,
		StartTime:     sched.StartTime,
		EndTime:       sched.EndTime,
		Duration:      sched.Duration,
		HourlyRate:    loc.HourlyRate,
		TotalAmount:   Quote(sched.Duration, loc.HourlyRate),
		Status:        StatusBooked,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsOwnedBy は予約の所有者かを返す
func (b *Booking) IsOwnedBy(userID string) bool {
	return b.UserID == userID
}

// Cancel は予約をキャンセルする
// Booked 状態からのみ遷移できる
func (b *Booking) Cancel() error {
	switch b.Status {
	case StatusCancelled:
		return ErrBookingAlreadyCancelled
	case StatusFinished:
		return ErrBookingAlreadyFinished
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// Finish は予約を完了状態にする
func (b *Booking) Finish() error {
	if b.Status != StatusBooked {
		return ErrBookingNotActive
	}
	now := time.Now()
	b.Status = StatusFinished
	b.FinishedAt = &now
	b.UpdatedAt = now
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.BookingNumber == "" {
		return ErrBookingNumberRequired
	}
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if b.LocationID == "" {
		return ErrLocationIDRequired
	}
	if b.Duration < 1 {
		return ErrInvalidDuration
	}
	if b.HourlyRate <= 0 {
		return ErrInvalidHourlyRate
	}
	if b.TotalAmount != b.Duration*b.HourlyRate {
		return ErrInvalidTotalAmount
	}
	return nil
}

// Quote は時間数と時間料金から合計金額を計算する
func Quote(duration, hourlyRate int) int {
	return duration * hourlyRate
}
