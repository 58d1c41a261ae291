package repository

import (
	"context"
	"time"

	"PogoMap-App/internal/domain/model"
)

// FortDetailsRepository フォート詳細のキャッシュストア
type FortDetailsRepository interface {
	// Get 有効期限内のフォート詳細を取得（存在しない場合は nil, nil）
	Get(ctx context.Context, fortID string) (*model.FortDetails, error)
	Save(ctx context.Context, details *model.FortDetails, ttl time.Duration) error
}
