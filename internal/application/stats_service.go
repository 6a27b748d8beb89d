package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/booking"
	"github.com/sanosuguru/go-parking-slot-booking/internal/domain/location"
)

// OwnerStats は所有者向けの売上集計結果
type OwnerStats struct {
	LocationCount int
	Earnings      []booking.LocationEarnings
	TotalEarnings int
}

type StatsService struct {
	bookingRepo  booking.Repository
	locationRepo location.Repository
}

func NewStatsService(br booking.Repository, lr location.Repository) *StatsService {
	return &StatsService{bookingRepo: br, locationRepo: lr}
}

// GetOwnerStats は所有者のロケーション別売上と総売上を取得する
// キャンセルされた予約は集計に含まれない
func (s *StatsService) GetOwnerStats(ctx context.Context, ownerID string) (*OwnerStats, error) {
	locations, err := s.locationRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ロケーション一覧取得に失敗: %w", err)
	}
	earnings, total, err := s.bookingRepo.EarningsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("売上集計に失敗: %w", err)
	}
	return &OwnerStats{
		LocationCount: len(locations),
		Earnings:      earnings,
		TotalEarnings: total,
	}, nil
}
