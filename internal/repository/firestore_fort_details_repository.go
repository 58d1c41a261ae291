package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"PogoMap-App/internal/domain/model"
	"PogoMap-App/internal/domain/repository"
)

const fortDetailsCollection = "fortDetails"

// FirestoreFortDetailsRepository Firestoreを使用したフォート詳細キャッシュリポジトリ
type FirestoreFortDetailsRepository struct {
	client *firestore.Client
}

// NewFirestoreFortDetailsRepository 新しいFirestoreFortDetailsRepositoryインスタンスを作成
func NewFirestoreFortDetailsRepository(client *firestore.Client) repository.FortDetailsRepository {
	return &FirestoreFortDetailsRepository{
		client: client,
	}
}

// Get 有効期限内のフォート詳細を取得する（見つからない・期限切れの場合は nil）
func (r *FirestoreFortDetailsRepository) Get(ctx context.Context, fortID string) (*model.FortDetails, error) {
	doc, err := r.client.Collection(fortDetailsCollection).Doc(fortID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("フォート詳細の取得に失敗しました: %w", err)
	}

	var data model.FirestoreFortDetails
	if err := doc.DataTo(&data); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}

	if data.IsExpired(time.Now()) {
		log.Printf("⌛ Fort details expired: %s", fortID)
		return nil, nil
	}
	return data.ToFortDetails(fortID), nil
}

// Save フォート詳細を有効期限付きで保存する
func (r *FirestoreFortDetailsRepository) Save(ctx context.Context, details *model.FortDetails, ttl time.Duration) error {
	if details == nil || details.ID == "" {
		return fmt.Errorf("フォートIDが空です")
	}

	data := details.ToFirestoreFortDetails(time.Now(), ttl)
	if _, err := r.client.Collection(fortDetailsCollection).Doc(details.ID).Set(ctx, data); err != nil {
		log.Printf("❌ Failed to save fort details %s: %v", details.ID, err)
		return fmt.Errorf("フォート詳細の保存に失敗しました: %w", err)
	}

	log.Printf("✅ Fort details saved: %s (expires in %v)", details.ID, ttl)
	return nil
}
