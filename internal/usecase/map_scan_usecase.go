package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"PogoMap-App/internal/domain/cellgrid"
	"PogoMap-App/internal/domain/model"
	"PogoMap-App/internal/domain/repository"
	"PogoMap-App/internal/domain/service"
)

// DefaultFortDetailsTTL フォート詳細をFirestoreにキャッシュする期間
const DefaultFortDetailsTTL = 24 * time.Hour

// ErrArchiveDisabled 永続化先が設定されていない
var ErrArchiveDisabled = errors.New("アーカイブが設定されていません")

// MapWorld スキャンで使うWorldViewの操作
type MapWorld interface {
	Position() model.Coordinate
	GetWorldObjectsWithWidth(ctx context.Context, width int) (*model.MapObjects, error)
	GetWorldObjectsAt(ctx context.Context, query service.WorldObjectsQuery) (*model.MapObjects, error)
	GetFortDetails(ctx context.Context, fortID string, latitude, longitude float64) (*model.FortDetails, error)
}

// ScanRequest スキャン条件。Position が nil の場合は現在位置を使う
type ScanRequest struct {
	Position *model.Coordinate
	Width    int
}

// ScanResult スキャン結果と保存件数
type ScanResult struct {
	Objects          *model.MapObjects
	SpawnPointsSaved int
	SightingsSaved   int
	Warnings         []string
}

type MapScanUseCase interface {
	// Scan は周辺のマップオブジェクトを取得し、出現ポイントと目撃記録を保存する
	Scan(ctx context.Context, req ScanRequest) (*ScanResult, error)

	// GetFortDetails はFirestoreのキャッシュを優先してフォート詳細を返す
	GetFortDetails(ctx context.Context, fortID string, latitude, longitude float64) (*model.FortDetails, error)

	FindSpawnPoints(ctx context.Context, center model.Coordinate, radiusMeters float64, limit int) ([]model.SpawnPointRecord, error)
	GetSightings(ctx context.Context, pokemonID int, limit int) ([]model.Sighting, error)
}

// mapScanUseCaseImpl はMapScanUseCaseの実装
// 各リポジトリはnilの場合その機能を無効として扱う
type mapScanUseCaseImpl struct {
	world           MapWorld
	spawnPointsRepo repository.SpawnPointsRepository
	sightingsRepo   repository.SightingsRepository
	fortDetailsRepo repository.FortDetailsRepository
	fortDetailsTTL  time.Duration
	now             func() time.Time
}

// NewMapScanUseCase は新しいMapScanUseCaseインスタンスを作成
func NewMapScanUseCase(
	world MapWorld,
	spawnPointsRepo repository.SpawnPointsRepository,
	sightingsRepo repository.SightingsRepository,
	fortDetailsRepo repository.FortDetailsRepository,
) MapScanUseCase {
	return &mapScanUseCaseImpl{
		world:           world,
		spawnPointsRepo: spawnPointsRepo,
		sightingsRepo:   sightingsRepo,
		fortDetailsRepo: fortDetailsRepo,
		fortDetailsTTL:  DefaultFortDetailsTTL,
		now:             time.Now,
	}
}

func (u *mapScanUseCaseImpl) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	width := req.Width
	if width == 0 {
		width = service.DefaultWidth
	}

	var objects *model.MapObjects
	var err error
	if req.Position != nil {
		objects, err = u.world.GetWorldObjectsAt(ctx, service.WorldObjectsQuery{Position: *req.Position, Width: width})
	} else {
		objects, err = u.world.GetWorldObjectsWithWidth(ctx, width)
	}
	if err != nil {
		return nil, fmt.Errorf("マップオブジェクトの取得に失敗: %w", err)
	}

	now := u.now()
	spawnPoints := buildSpawnPointRecords(objects, now)
	sightings := buildSightings(objects, now)
	log.Printf("🔍 スキャン完了: 出現ポイント%d件, 目撃%d件", len(spawnPoints), len(sightings))

	result := &ScanResult{Objects: objects, Warnings: []string{}}

	var wg sync.WaitGroup
	var mu sync.Mutex
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		log.Printf("⚠️ %s", msg)
		mu.Lock()
		result.Warnings = append(result.Warnings, msg)
		mu.Unlock()
	}

	if u.spawnPointsRepo != nil && len(spawnPoints) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			saved, err := u.spawnPointsRepo.SaveAll(ctx, spawnPoints)
			if err != nil {
				warn("出現ポイントの保存に失敗: %v", err)
				return
			}
			mu.Lock()
			result.SpawnPointsSaved = saved
			mu.Unlock()
		}()
	}

	if u.sightingsRepo != nil && len(sightings) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := u.sightingsRepo.SaveAll(ctx, sightings); err != nil {
				warn("目撃記録の保存に失敗: %v", err)
				return
			}
			mu.Lock()
			result.SightingsSaved = len(sightings)
			mu.Unlock()
		}()
	}

	wg.Wait()
	return result, nil
}

func (u *mapScanUseCaseImpl) GetFortDetails(ctx context.Context, fortID string, latitude, longitude float64) (*model.FortDetails, error) {
	if u.fortDetailsRepo != nil {
		cached, err := u.fortDetailsRepo.Get(ctx, fortID)
		if err != nil {
			log.Printf("⚠️ フォート詳細キャッシュの取得に失敗、サーバーから取得します: %v", err)
		} else if cached != nil {
			log.Printf("✅ フォート詳細をキャッシュから取得: %s", fortID)
			return cached, nil
		}
	}

	details, err := u.world.GetFortDetails(ctx, fortID, latitude, longitude)
	if err != nil {
		return nil, fmt.Errorf("フォート詳細の取得に失敗: %w", err)
	}

	if u.fortDetailsRepo != nil {
		if err := u.fortDetailsRepo.Save(ctx, details, u.fortDetailsTTL); err != nil {
			log.Printf("⚠️ フォート詳細のキャッシュ保存に失敗: %v", err)
		}
	}
	return details, nil
}

func (u *mapScanUseCaseImpl) FindSpawnPoints(ctx context.Context, center model.Coordinate, radiusMeters float64, limit int) ([]model.SpawnPointRecord, error) {
	if u.spawnPointsRepo == nil {
		return nil, ErrArchiveDisabled
	}
	return u.spawnPointsRepo.FindNearby(ctx, center, radiusMeters, limit)
}

func (u *mapScanUseCaseImpl) GetSightings(ctx context.Context, pokemonID int, limit int) ([]model.Sighting, error) {
	if u.sightingsRepo == nil {
		return nil, ErrArchiveDisabled
	}
	return u.sightingsRepo.GetByPokemonID(ctx, pokemonID, limit)
}

// buildSpawnPointRecords 出現ポイントをリーフセルのトークンで重複排除する
// 通常と間引きの両方に現れたポイントは通常扱い
func buildSpawnPointRecords(objects *model.MapObjects, now time.Time) []model.SpawnPointRecord {
	index := make(map[string]int)
	records := make([]model.SpawnPointRecord, 0, len(objects.SpawnPoints)+len(objects.DecimatedSpawnPoints))

	add := func(sp model.SpawnPoint, decimated bool) {
		id := cellgrid.LeafToken(sp.Latitude, sp.Longitude)
		if i, ok := index[id]; ok {
			records[i].Decimated = records[i].Decimated && decimated
			return
		}
		index[id] = len(records)
		records = append(records, model.SpawnPointRecord{
			ID:        id,
			CellID:    cellgrid.CenterCell(sp.Latitude, sp.Longitude),
			Latitude:  sp.Latitude,
			Longitude: sp.Longitude,
			Decimated: decimated,
			FirstSeen: now,
			LastSeen:  now,
		})
	}

	for _, sp := range objects.SpawnPoints {
		add(sp, false)
	}
	for _, sp := range objects.DecimatedSpawnPoints {
		add(sp, true)
	}
	return records
}

// buildSightings 捕獲可能なポケモンをエンカウントIDで重複排除して目撃記録にする
func buildSightings(objects *model.MapObjects, now time.Time) []model.Sighting {
	seen := make(map[uint64]bool)
	sightings := make([]model.Sighting, 0, len(objects.CatchablePokemons)+len(objects.WildPokemons))

	add := func(p model.CatchablePokemon) {
		if seen[p.EncounterID] {
			return
		}
		seen[p.EncounterID] = true
		sightings = append(sightings, model.Sighting{
			ID:                    uuid.NewString(),
			EncounterID:           p.EncounterID,
			PokemonID:             p.PokemonID,
			SpawnPointID:          p.SpawnPointID,
			Latitude:              p.Latitude,
			Longitude:             p.Longitude,
			Wild:                  p.Wild,
			ExpirationTimestampMs: p.ExpirationTimestampMs,
			SeenAt:                now,
		})
	}

	for _, p := range objects.CatchablePokemons {
		add(model.NewCatchablePokemonFromMap(p))
	}
	for _, p := range objects.WildPokemons {
		add(model.NewCatchablePokemonFromWild(p))
	}
	return sightings
}
