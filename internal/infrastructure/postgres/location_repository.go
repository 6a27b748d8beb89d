package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/location"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/transaction"
)

type locationRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Area           string    `db:"area"`
	Address        string    `db:"address"`
	Image          *string   `db:"image"`
	HourlyRate     int       `db:"hourly_rate"`
	TotalSlots     int       `db:"total_slots"`
	AvailableSlots int       `db:"available_slots"`
	OwnerID        string    `db:"owner_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r *locationRow) toEntity() *location.Location {
	var image string
	if r.Image != nil {
		image = *r.Image
	}
	return &location.Location{
		ID: r.ID, Name: r.Name, Area: r.Area, Address: r.Address,
		Image: image, HourlyRate: r.HourlyRate,
		TotalSlots: r.TotalSlots, AvailableSlots: r.AvailableSlots,
		OwnerID: r.OwnerID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const locationColumns = `id, name, area, address, image, hourly_rate, total_slots, available_slots, owner_id, created_at, updated_at`

// LocationRepository はロケーションリポジトリのPostgreSQL実装
type LocationRepository struct {
	db *sqlx.DB
}

// NewLocationRepository はLocationRepositoryを作成する
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Create は新しいロケーションを作成する
func (r *LocationRepository) Create(ctx context.Context, loc *location.Location) error {
	query := `
		INSERT INTO locations (name, area, address, image, hourly_rate, total_slots, available_slots, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var image *string
	if loc.Image != "" {
		image = &loc.Image
	}
	err := r.db.QueryRowContext(ctx, query,
		loc.Name, loc.Area, loc.Address, image, loc.HourlyRate,
		loc.TotalSlots, loc.AvailableSlots, loc.OwnerID, loc.CreatedAt, loc.UpdatedAt,
	).Scan(&loc.ID)
	if err != nil {
		return fmt.Errorf("ロケーション作成に失敗: %w", err)
	}
	return nil
}

// GetByID はIDからロケーションを取得する
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*location.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	var row locationRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, location.ErrLocationNotFound
		}
		return nil, fmt.Errorf("ロケーション取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// List はロケーション一覧を取得する（area指定時は部分一致・大文字小文字無視）
func (r *LocationRepository) List(ctx context.Context, area string, limit, offset int) ([]*location.Location, error) {
	var rows []locationRow
	var err error
	if area != "" {
		query := `SELECT ` + locationColumns + ` FROM locations WHERE area ILIKE '%' || $1 || '%' ORDER BY name LIMIT $2 OFFSET $3`
		err = r.db.SelectContext(ctx, &rows, query, area, limit, offset)
	} else {
		query := `SELECT ` + locationColumns + ` FROM locations ORDER BY name LIMIT $1 OFFSET $2`
		err = r.db.SelectContext(ctx, &rows, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("ロケーション一覧取得に失敗: %w", err)
	}
	locations := make([]*location.Location, len(rows))
	for i, row := range rows {
		locations[i] = row.toEntity()
	}
	return locations, nil
}

// ListByOwner は所有者のロケーション一覧を取得する
func (r *LocationRepository) ListByOwner(ctx context.Context, ownerID string) ([]*location.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE owner_id = $1 ORDER BY name`
	var rows []locationRow
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("所有ロケーション取得に失敗: %w", err)
	}
	locations := make([]*location.Location, len(rows))
	for i, row := range rows {
		locations[i] = row.toEntity()
	}
	return locations, nil
}

// Update はロケーションを更新し、更新後の行を loc に反映する
// 空き台数は読み取り時のスナップショットを書き戻さず、総台数の変更差分だけを
// SQL内で適用する。並行するクレーム/リリースの結果を上書きしないための措置
func (r *LocationRepository) Update(ctx context.Context, loc *location.Location) error {
	query := `
		UPDATE locations
		SET name = $1, area = $2, address = $3, image = $4, hourly_rate = $5,
		    available_slots = LEAST(GREATEST(available_slots + ($6 - total_slots), 0), $6),
		    total_slots = $6, updated_at = $7
		WHERE id = $8 AND owner_id = $9
		RETURNING ` + locationColumns
	var image *string
	if loc.Image != "" {
		image = &loc.Image
	}
	var row locationRow
	err := r.db.GetContext(ctx, &row, query,
		loc.Name, loc.Area, loc.Address, image, loc.HourlyRate,
		loc.TotalSlots, time.Now(), loc.ID, loc.OwnerID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return location.ErrLocationNotFound
		}
		return fmt.Errorf("ロケーション更新に失敗: %w", err)
	}
	*loc = *row.toEntity()
	return nil
}

// Delete は所有者のロケーションを削除する
func (r *LocationRepository) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("ロケーション削除に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗: %w", err)
	}
	if rows == 0 {
		return location.ErrLocationNotFound
	}
	return nil
}

// ClaimSlot は空き台数を条件付きで1減らす
// 条件チェックと減算を単一のUPDATEで行うため、同時リクエストが
// 残り1台を取り合っても成功するのは常に1件のみとなる
func (r *LocationRepository) ClaimSlot(ctx context.Context, id string) (*location.Location, error) {
	query := `
		UPDATE locations
		SET available_slots = available_slots - 1, updated_at = NOW()
		WHERE id = $1 AND available_slots > 0
		RETURNING ` + locationColumns
	var row locationRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err == nil {
		return row.toEntity(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("スロットクレームに失敗: %w", err)
	}

	// 更新対象なし: ロケーション不在か満車かを区別する
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1)`, id); err != nil {
		return nil, fmt.Errorf("ロケーション確認に失敗: %w", err)
	}
	if !exists {
		return nil, location.ErrLocationNotFound
	}
	return nil, location.ErrNoSlotsAvailable
}

// ReleaseSlot は空き台数を1増やす（総台数を上限とする）
func (r *LocationRepository) ReleaseSlot(ctx context.Context, tx transaction.Tx, id string) error {
	query := `
		UPDATE locations
		SET available_slots = LEAST(available_slots + 1, total_slots), updated_at = NOW()
		WHERE id = $1
	`
	var result sql.Result
	var err error
	if sqlxTx := UnwrapTx(tx); sqlxTx != nil {
		result, err = sqlxTx.ExecContext(ctx, query, id)
	} else {
		result, err = r.db.ExecContext(ctx, query, id)
	}
	if err != nil {
		return fmt.Errorf("スロット解放に失敗: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("解放結果の確認に失敗: %w", err)
	}
	if rows == 0 {
		return location.ErrLocationNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ location.Repository = (*LocationRepository)(nil)
