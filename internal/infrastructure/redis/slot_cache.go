package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// SlotCache はロケーションの空きスロット数キャッシュを管理する
type SlotCache struct {
	client *redis.Client
}

// NewSlotCache は新しいSlotCacheインスタンスを作成する
func NewSlotCache(client *redis.Client) *SlotCache {
	return &SlotCache{client: client}
}

// GetAvailableSlots はロケーションの空きスロット数をキャッシュから取得する
func (c *SlotCache) GetAvailableSlots(ctx context.Context, locationID string) (int, error) {
	key := c.availableSlotsKey(locationID)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableSlots はロケーションの空きスロット数をキャッシュに保存する
func (c *SlotCache) SetAvailableSlots(ctx context.Context, locationID string, count int, ttl time.Duration) error {
	key := c.availableSlotsKey(locationID)
	err := c.client.Set(ctx, key, count, ttl).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はロケーションのキャッシュを無効化する
// スロット数が変動する操作の後に呼び出す
func (c *SlotCache) Invalidate(ctx context.Context, locationID string) error {
	key := c.availableSlotsKey(locationID)
	err := c.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SlotCache) availableSlotsKey(locationID string) string {
	return fmt.Sprintf("slots:available:%s", locationID)
}
