package location

import "time"

// Location は駐車場ロケーションエンティティを表す
// AvailableSlots はクレーム/リリース操作または総台数変更の調整のみで変化する
type Location struct {
	ID             string
	Name           string
	Area           string
	Address        string
	Image          string // 画像参照（不透明な文字列として扱う）
	HourlyRate     int    // 1時間あたりの料金
	TotalSlots     int
	AvailableSlots int
	OwnerID        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewLocation は新しいロケーションを作成する
// 空き台数は総台数と同じ値で初期化される
func NewLocation(name, area, address, image string, hourlyRate, totalSlots int, ownerID string) *Location {
	now := time.Now()
	return &Location{
		Name:           name,
		Area:           area,
		Address:        address,
		Image:          image,
		HourlyRate:     hourlyRate,
		TotalSlots:     totalSlots,
		AvailableSlots: totalSlots,
		OwnerID:        ownerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsOwnedBy はロケーションの所有者かを返す
func (l *Location) IsOwnedBy(userID string) bool {
	return l.OwnerID == userID
}

// HasAvailableSlot は空きスロットがあるかを返す
func (l *Location) HasAvailableSlot() bool {
	return l.AvailableSlots > 0
}

// Resize は総台数を変更し、空き台数を同じ差分で調整する
// 調整後の空き台数は [0, newTotal] にクランプされる
func (l *Location) Resize(newTotal int) error {
	if newTotal < 0 {
		return ErrInvalidTotalSlots
	}
	diff := newTotal - l.TotalSlots
	available := l.AvailableSlots + diff
	if available < 0 {
		available = 0
	}
	if available > newTotal {
		available = newTotal
	}
	l.TotalSlots = newTotal
	l.AvailableSlots = available
	l.UpdatedAt = time.Now()
	return nil
}

// Validate はロケーションの検証を行う
func (l *Location) Validate() error {
	if l.Name == "" {
		return ErrLocationNameRequired
	}
	if l.Area == "" {
		return ErrAreaRequired
	}
	if l.Address == "" {
		return ErrAddressRequired
	}
	if l.HourlyRate <= 0 {
		return ErrInvalidHourlyRate
	}
	if l.TotalSlots < 0 {
		return ErrInvalidTotalSlots
	}
	if l.AvailableSlots < 0 || l.AvailableSlots > l.TotalSlots {
		return ErrInvalidAvailableSlots
	}
	if l.OwnerID == "" {
		return ErrOwnerRequired
	}
	return nil
}
