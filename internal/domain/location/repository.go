package location

import (
	"context"

	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/transaction"
)

// Repository はロケーションリポジトリのインターフェース
// ClaimSlot / ReleaseSlot が空き台数カウンターへの唯一の変更経路となる
type Repository interface {
	// Create は新しいロケーションを作成する
	Create(ctx context.Context, loc *Location) error

	// GetByID はIDからロケーションを取得する
	GetByID(ctx context.Context, id string) (*Location, error)

	// List はロケーション一覧を取得する（area指定時は部分一致で絞り込み）
	List(ctx context.Context, area string, limit, offset int) ([]*Location, error)

	// ListByOwner は所有者のロケーション一覧を取得する
	ListByOwner(ctx context.Context, ownerID string) ([]*Location, error)

	// Update はロケーションを更新し、更新後の行を loc に反映する
	// 空き台数は渡された値を書き込まず、総台数の変更差分のみで調整される
	Update(ctx context.Context, loc *Location) error

	// Delete は所有者のロケーションを削除する
	Delete(ctx context.Context, id, ownerID string) error

	// ClaimSlot は空き台数を条件付きで1減らす（単一のアトミック操作）
	// 空きがある場合のみ成功し、更新後のスナップショットを返す
	// 更新対象がない場合は ErrNoSlotsAvailable を返す
	ClaimSlot(ctx context.Context, id string) (*Location, error)

	// ReleaseSlot は空き台数を1増やす（総台数を超えない）
	// tx が nil の場合はトランザクション外で実行される
	ReleaseSlot(ctx context.Context, tx transaction.Tx, id string) error
}
