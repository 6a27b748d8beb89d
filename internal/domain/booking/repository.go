package booking

import (
	"context"

	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/transaction"
)

// LocationEarnings はロケーション単位の売上集計
type LocationEarnings struct {
	Name   string
	Amount int
}

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する
	// 予約番号が重複した場合は ErrDuplicateBookingNumber を返す
	Create(ctx context.Context, booking *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByIDForUser はIDから予約を取得する（所有者のみ）
	// 他人の予約は存在しないものとして ErrBookingNotFound を返す
	GetByIDForUser(ctx context.Context, id, userID string) (*Booking, error)

	// ListByUser はユーザーの予約一覧を新しい順に取得する
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)

	// UpdateStatus は Booked 状態の予約を指定の状態へ遷移させる（トランザクション必須）
	// 既に別の遷移が確定している場合は ErrBookingAlreadyCancelled /
	// ErrBookingAlreadyFinished を返し、呼び出し側はスロットを解放してはならない
	UpdateStatus(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// ListActiveOnOrBefore は指定日以前の Booked 状態の予約一覧を取得する
	// 完了処理ワーカーが終了時刻の判定に使用する
	ListActiveOnOrBefore(ctx context.Context, date string) ([]*Booking, error)

	// EarningsByOwner は所有者のロケーション別売上と総売上を集計する
	// キャンセルされた予約は集計に含めない
	EarningsByOwner(ctx context.Context, ownerID string) ([]LocationEarnings, int, error)
}
