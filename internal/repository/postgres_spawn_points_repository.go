package repository

import (
	"context"
	"fmt"
	"time"

	"PogoMap-App/internal/domain/model"
	"PogoMap-App/internal/domain/repository"
	"PogoMap-App/internal/infrastructure/database"
)

type PostgresSpawnPointsRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresSpawnPointsRepository(client *database.PostgreSQLClient) repository.SpawnPointsRepository {
	return &PostgresSpawnPointsRepository{
		client: client,
	}
}

// SaveAll 出現ポイントをまとめて記録する
// 既存の地点は last_seen を更新し、どちらかが通常の出現ポイントなら decimated を false にする
func (r *PostgresSpawnPointsRepository) SaveAll(ctx context.Context, points []model.SpawnPointRecord) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	const query = `
INSERT INTO spawn_points (id, cell_id, latitude, longitude, decimated, first_seen, last_seen)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
	last_seen = EXCLUDED.last_seen,
	decimated = spawn_points.decimated AND EXCLUDED.decimated`

	tx, err := r.client.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始失敗: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("出現ポイント保存クエリの準備失敗: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, p := range points {
		// BIGINT は符号付きのため、セルIDはビット列をそのまま int64 として保存する
		if _, err := stmt.ExecContext(ctx, p.ID, int64(p.CellID), p.Latitude, p.Longitude, p.Decimated, p.FirstSeen, p.LastSeen); err != nil {
			return 0, fmt.Errorf("出現ポイント %s の保存失敗: %w", p.ID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("トランザクションのコミット失敗: %w", err)
	}
	return saved, nil
}

// FindNearby 中心から半径内の出現ポイントを近い順に取得
func (r *PostgresSpawnPointsRepository) FindNearby(ctx context.Context, center model.Coordinate, radiusMeters float64, limit int) ([]model.SpawnPointRecord, error) {
	bound := SearchBound(center, radiusMeters)

	// 境界ボックスで絞り込んでから距離で判定する
	query := `
SELECT id, cell_id, latitude, longitude, decimated, first_seen, last_seen
FROM spawn_points
WHERE latitude BETWEEN $1 AND $2 AND longitude BETWEEN $3 AND $4`

	rows, err := r.client.DB.QueryContext(ctx, query, bound.Min.Lat(), bound.Max.Lat(), bound.Min.Lon(), bound.Max.Lon())
	if err != nil {
		return nil, fmt.Errorf("出現ポイントの検索失敗: %w", err)
	}
	defer rows.Close()

	var records []model.SpawnPointRecord
	for rows.Next() {
		var (
			rec       model.SpawnPointRecord
			cellID    int64
			firstSeen time.Time
			lastSeen  time.Time
		)
		if err := rows.Scan(&rec.ID, &cellID, &rec.Latitude, &rec.Longitude, &rec.Decimated, &firstSeen, &lastSeen); err != nil {
			return nil, fmt.Errorf("出現ポイントの読み込み失敗: %w", err)
		}
		rec.CellID = model.CellID(uint64(cellID))
		rec.FirstSeen = firstSeen
		rec.LastSeen = lastSeen
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("出現ポイントの読み込み失敗: %w", err)
	}

	return filterWithinRadius(records, center, radiusMeters, limit), nil
}
