package repository

import (
	"context"

	"PogoMap-App/internal/domain/model"
)

type SpawnPointsRepository interface {
	// SaveAll 出現ポイントを記録（既存の地点は最終観測時刻のみ更新）
	SaveAll(ctx context.Context, points []model.SpawnPointRecord) (int, error)
	FindNearby(ctx context.Context, center model.Coordinate, radiusMeters float64, limit int) ([]model.SpawnPointRecord, error)
}
