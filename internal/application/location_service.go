package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/location"
	redisinfra "github.com/sanosuguru/go-parking-slot-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-parking-slot-booking/internal/pkg/logger"
)

const (
	slotCacheTTL = 30 * time.Second
)

// SlotCache は空きスロット数キャッシュのインターフェース
type SlotCache interface {
	GetAvailableSlots(ctx context.Context, locationID string) (int, error)
	SetAvailableSlots(ctx context.Context, locationID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, locationID string) error
}

type LocationService struct {
	locationRepo location.Repository
	cache        SlotCache
}

func NewLocationService(locationRepo location.Repository, cache SlotCache) *LocationService {
	return &LocationService{locationRepo: locationRepo, cache: cache}
}

type CreateLocationInput struct {
	Name       string
	Area       string
	Address    string
	Image      string
	HourlyRate int
	TotalSlots int
	OwnerID    string
}

func (s *LocationService) CreateLocation(ctx context.Context, input CreateLocationInput) (*location.Location, error) {
	loc := location.NewLocation(input.Name, input.Area, input.Address, input.Image, input.HourlyRate, input.TotalSlots, input.OwnerID)
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if err := s.locationRepo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *LocationService) GetLocation(ctx context.Context, id string) (*location.Location, error) {
	return s.locationRepo.GetByID(ctx, id)
}

// ListLocations はロケーション一覧を取得する（area指定時は部分一致で絞り込み）
func (s *LocationService) ListLocations(ctx context.Context, area string, limit, offset int) ([]*location.Location, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.locationRepo.List(ctx, area, limit, offset)
}

func (s *LocationService) ListMyLocations(ctx context.Context, ownerID string) ([]*location.Location, error) {
	return s.locationRepo.ListByOwner(ctx, ownerID)
}

type UpdateLocationInput struct {
	ID         string
	OwnerID    string
	Name       string
	Area       string
	Address    string
	Image      string
	HourlyRate int
	TotalSlots int
}

// UpdateLocation はロケーションを更新する（所有者のみ）
// 総台数の変更は空き台数を同じ差分で調整する
// 空き台数の確定値はリポジトリ側で算出され、読み取り時点の値には依存しない
func (s *LocationService) UpdateLocation(ctx context.Context, input UpdateLocationInput) (*location.Location, error) {
	loc, err := s.locationRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	// 他人のロケーションは存在しないものとして扱う
	if !loc.IsOwnedBy(input.OwnerID) {
		return nil, location.ErrLocationNotFound
	}

	loc.Name = input.Name
	loc.Area = input.Area
	loc.Address = input.Address
	loc.Image = input.Image
	loc.HourlyRate = input.HourlyRate
	if input.TotalSlots != loc.TotalSlots {
		if err := loc.Resize(input.TotalSlots); err != nil {
			return nil, err
		}
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	// Update は空き台数を書き戻さず、更新後の確定値を loc に反映する
	if err := s.locationRepo.Update(ctx, loc); err != nil {
		return nil, err
	}
	s.InvalidateCache(ctx, loc.ID)
	return loc, nil
}

func (s *LocationService) DeleteLocation(ctx context.Context, id, ownerID string) error {
	if err := s.locationRepo.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	s.InvalidateCache(ctx, id)
	return nil
}

// CountAvailableSlots はロケーションの空き台数を返す
// キャッシュを優先し、ミス時はDBから取得してキャッシュに保存する
func (s *LocationService) CountAvailableSlots(ctx context.Context, id string) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetAvailableSlots(ctx, id)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("location_id", id), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	loc, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetAvailableSlots(ctx, id, loc.AvailableSlots, slotCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}

	return loc.AvailableSlots, nil
}

// InvalidateCache はロケーションのキャッシュを無効化する
func (s *LocationService) InvalidateCache(ctx context.Context, id string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
}
