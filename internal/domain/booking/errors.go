package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound         = errors.New("予約が見つかりません")
	ErrBookingAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrBookingAlreadyFinished  = errors.New("予約は既に完了しています")
	ErrBookingNotActive        = errors.New("予約は有効な状態ではありません")
	ErrBookingNumberRequired   = errors.New("予約番号は必須です")
	ErrDuplicateBookingNumber  = errors.New("予約番号が重複しています")
	ErrUserIDRequired          = errors.New("ユーザーIDは必須です")
	ErrLocationIDRequired      = errors.New("ロケーションIDは必須です")
	ErrInvalidHourlyRate       = errors.New("時間料金は1以上である必要があります")
	ErrInvalidTotalAmount      = errors.New("合計金額が時間数と料金の積になっていません")

	// 時間モデルのエラー定義
	ErrInvalidDate        = errors.New("日付の形式が不正です")
	ErrInvalidTime        = errors.New("時刻の形式が不正です")
	ErrDateInPast         = errors.New("過去の日付は指定できません")
	ErrStartTimeInPast    = errors.New("過去の時刻は指定できません")
	ErrInvalidDuration    = errors.New("利用時間は1時間以上である必要があります")
	ErrDurationExceedsDay = errors.New("利用時間が当日の範囲を超えています")
)
