package location

import "errors"

// Location ドメインのエラー定義
var (
	ErrLocationNotFound      = errors.New("ロケーションが見つかりません")
	ErrLocationNameRequired  = errors.New("ロケーション名は必須です")
	ErrAreaRequired          = errors.New("エリアは必須です")
	ErrAddressRequired       = errors.New("住所は必須です")
	ErrInvalidHourlyRate     = errors.New("時間料金は1以上である必要があります")
	ErrInvalidTotalSlots     = errors.New("総台数は0以上である必要があります")
	ErrInvalidAvailableSlots = errors.New("空き台数は0以上かつ総台数以下である必要があります")
	ErrOwnerRequired         = errors.New("所有者IDは必須です")
	ErrNoSlotsAvailable      = errors.New("空きスロットがありません")
)
