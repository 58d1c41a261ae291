package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"PogoMap-App/internal/domain/cache"
	"PogoMap-App/internal/domain/cellgrid"
	"PogoMap-App/internal/domain/model"
	"PogoMap-App/internal/domain/repository"
)

// DefaultWidth 現在位置のまわりで取得するグリッドの既定幅（9×9セル）
const DefaultWidth = 9

// WorldObjectsQuery 位置と幅を明示したマップオブジェクト取得の条件
type WorldObjectsQuery struct {
	Position model.Coordinate
	Width    int            // 0の場合は DefaultWidth
	CellIDs  []model.CellID // 指定した場合は Width より優先
}

// WorldView 周辺のマップオブジェクトを取得し、有効期限付きでキャッシュする
//
// 期限判定・取得・マージ・時刻更新の一連の処理は mu で排他する。
type WorldView struct {
	session repository.Session
	codec   repository.Codec
	cache   *cache.Cache[*model.MapObjects]
	mu      sync.Mutex
}

// NewWorldView 新しいWorldViewを作成
// キャッシュは有効、有効期限は0（毎回期限切れ扱い）で始まる
func NewWorldView(session repository.Session, codec repository.Codec, clock cache.Clock) *WorldView {
	return &WorldView{
		session: session,
		codec:   codec,
		cache:   cache.New(model.NewMapObjects, 0, clock),
	}
}

// ClearCache キャッシュを空にし、最終更新時刻を0に戻す
func (w *WorldView) ClearCache() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache.Reset()
}

// SetCacheEnabled キャッシュの有効・無効を切り替える
func (w *WorldView) SetCacheEnabled(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache.SetEnabled(enabled)
}

// CacheEnabled キャッシュが有効か
func (w *WorldView) CacheEnabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cache.Enabled()
}

// SetExpiry キャッシュの有効期限を設定する
func (w *WorldView) SetExpiry(expiry time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache.SetExpiry(expiry)
}

// Expiry キャッシュの有効期限
func (w *WorldView) Expiry() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cache.Expiry()
}

// Position セッションの現在位置
func (w *WorldView) Position() model.Coordinate {
	return w.session.Position()
}

// MoveTo セッションの現在位置を更新する
// 以降のマップ取得・フォート検索・エンカウントはこの位置から行われる
func (w *WorldView) MoveTo(position model.Coordinate) {
	w.session.SetPosition(position)
}

// GetWorldObjects 現在位置のまわり DefaultWidth × DefaultWidth セルのマップオブジェクトを取得
func (w *WorldView) GetWorldObjects(ctx context.Context) (*model.MapObjects, error) {
	return w.GetWorldObjectsWithWidth(ctx, DefaultWidth)
}

// GetWorldObjectsWithWidth 現在位置のまわり width × width セルのマップオブジェクトを取得
func (w *WorldView) GetWorldObjectsWithWidth(ctx context.Context, width int) (*model.MapObjects, error) {
	position := w.session.Position()
	cellIDs := cellgrid.ComputeCellIDs(position.Latitude, position.Longitude, width)
	return w.GetWorldObjectsForCells(ctx, cellIDs)
}

// GetWorldObjectsAt 指定位置に移動してからマップオブジェクトを取得する
//
// セッションの現在位置を query.Position で上書きする（MoveTo と同じ副作用）。
func (w *WorldView) GetWorldObjectsAt(ctx context.Context, query WorldObjectsQuery) (*model.MapObjects, error) {
	cellIDs := query.CellIDs
	if len(cellIDs) == 0 {
		width := query.Width
		if width == 0 {
			width = DefaultWidth
		}
		cellIDs = cellgrid.ComputeCellIDs(query.Position.Latitude, query.Position.Longitude, width)
	}

	w.MoveTo(query.Position)
	return w.GetWorldObjectsForCells(ctx, cellIDs)
}

// GetWorldObjectsForCells 指定セルのマップオブジェクトを取得する
//
// キャッシュ有効時は期限切れなら空の状態から、そうでなければ既存のスナップショットに追記する。
// キャッシュ無効時は毎回取得した内容だけを返し、キャッシュの状態は変更しない。
// エラー時はキャッシュを一切変更しない。
func (w *WorldView) GetWorldObjectsForCells(ctx context.Context, cellIDs []model.CellID) (*model.MapObjects, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	useCache := w.cache.Enabled()
	stale := useCache && w.cache.Stale()

	var since int64
	if useCache && !stale {
		since = w.cache.Since()
	}

	position := w.session.Position()
	request := model.GetMapObjectsMessage{
		CellIDs:          make([]model.CellID, 0, len(cellIDs)),
		SinceTimestampMs: make([]int64, 0, len(cellIDs)),
		Latitude:         position.Latitude,
		Longitude:        position.Longitude,
	}
	for _, id := range cellIDs {
		request.CellIDs = append(request.CellIDs, id)
		request.SinceTimestampMs = append(request.SinceTimestampMs, since)
	}

	var response model.GetMapObjectsResponse
	if err := w.exchange(ctx, model.RequestTypeGetMapObjects, &request, &response); err != nil {
		return nil, err
	}

	result := model.NewMapObjects()
	for _, cell := range response.MapCells {
		result.AddMapCell(cell)
	}

	if !useCache {
		log.Printf("🗺️ マップオブジェクト取得 (キャッシュ無効): %dセル, %d件", len(cellIDs), result.Count())
		return result, nil
	}

	cached := w.cache.Value()
	if stale {
		log.Printf("🔄 マップキャッシュの有効期限切れ: スナップショットを再構築します")
		cached = w.cache.Fresh()
	}
	cached.Update(result)
	w.cache.Commit(cached)

	log.Printf("🗺️ マップオブジェクト取得: %dセル, 新規%d件 (キャッシュ合計%d件, since=%d)", len(cellIDs), result.Count(), cached.Count(), since)
	return cached.Clone(), nil
}

// GetCatchablePokemon 現在位置のまわりの捕獲可能なポケモン（マップ上 → 野生の順）
func (w *WorldView) GetCatchablePokemon(ctx context.Context) ([]model.CatchablePokemon, error) {
	objects, err := w.GetWorldObjects(ctx)
	if err != nil {
		return nil, err
	}

	pokemons := make([]model.CatchablePokemon, 0, len(objects.CatchablePokemons)+len(objects.WildPokemons))
	for _, p := range objects.CatchablePokemons {
		pokemons = append(pokemons, model.NewCatchablePokemonFromMap(p))
	}
	for _, p := range objects.WildPokemons {
		pokemons = append(pokemons, model.NewCatchablePokemonFromWild(p))
	}
	return pokemons, nil
}

// GetNearbyPokemon 近くにいる捕獲できないポケモン
func (w *WorldView) GetNearbyPokemon(ctx context.Context) ([]model.NearbyPokemon, error) {
	objects, err := w.GetWorldObjects(ctx)
	if err != nil {
		return nil, err
	}
	return objects.NearbyPokemons, nil
}

// GetSpawnPoints 出現ポイント
func (w *WorldView) GetSpawnPoints(ctx context.Context) ([]model.Point, error) {
	objects, err := w.GetWorldObjects(ctx)
	if err != nil {
		return nil, err
	}
	return toPoints(objects.SpawnPoints), nil
}

// GetDecimatedSpawnPoints 間引きされた出現ポイント
func (w *WorldView) GetDecimatedSpawnPoints(ctx context.Context) ([]model.Point, error) {
	objects, err := w.GetWorldObjects(ctx)
	if err != nil {
		return nil, err
	}
	return toPoints(objects.DecimatedSpawnPoints), nil
}

// GetFortDetails フォートの詳細を取得（キャッシュには影響しない）
func (w *WorldView) GetFortDetails(ctx context.Context, fortID string, latitude, longitude float64) (*model.FortDetails, error) {
	request := model.FortDetailsMessage{
		FortID:    fortID,
		Latitude:  latitude,
		Longitude: longitude,
	}

	var response model.FortDetailsResponse
	if err := w.exchange(ctx, model.RequestTypeFortDetails, &request, &response); err != nil {
		return nil, err
	}
	return model.NewFortDetails(&response), nil
}

// SearchFort 現在位置からフォートを回す
func (w *WorldView) SearchFort(ctx context.Context, fort model.FortData) (*model.FortSearchResponse, error) {
	position := w.session.Position()
	request := model.FortSearchMessage{
		FortID:          fort.ID,
		FortLatitude:    fort.Latitude,
		FortLongitude:   fort.Longitude,
		PlayerLatitude:  position.Latitude,
		PlayerLongitude: position.Longitude,
	}

	var response model.FortSearchResponse
	if err := w.exchange(ctx, model.RequestTypeFortSearch, &request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// EncounterPokemon 現在位置から捕獲可能なポケモンとエンカウントする
func (w *WorldView) EncounterPokemon(ctx context.Context, pokemon model.CatchablePokemon) (*model.EncounterResponse, error) {
	position := w.session.Position()
	request := model.EncounterMessage{
		EncounterID:     pokemon.EncounterID,
		SpawnPointID:    pokemon.SpawnPointID,
		PlayerLatitude:  position.Latitude,
		PlayerLongitude: position.Longitude,
	}

	var response model.EncounterResponse
	if err := w.exchange(ctx, model.RequestTypeEncounter, &request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CatchPokemon エンカウント中のポケモンにボールを投げる
func (w *WorldView) CatchPokemon(ctx context.Context, pokemon model.CatchablePokemon, params model.CatchParams) (*model.CatchPokemonResponse, error) {
	request := model.CatchPokemonMessage{
		EncounterID:           pokemon.EncounterID,
		Pokeball:              params.Pokeball,
		NormalizedReticleSize: params.NormalizedReticleSize,
		SpawnPointGUID:        pokemon.SpawnPointID,
		HitPokemon:            true,
		SpinModifier:          params.SpinModifier,
		NormalizedHitPosition: params.NormalizedHitPosition,
	}

	var response model.CatchPokemonResponse
	if err := w.exchange(ctx, model.RequestTypeCatchPokemon, &request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// exchange 1往復のリクエスト・レスポンスを行う
// セッションのエラーはそのまま返し、デコード失敗は RemoteServerError で包む
func (w *WorldView) exchange(ctx context.Context, requestType model.RequestType, request, response any) error {
	payload, err := w.codec.Marshal(request)
	if err != nil {
		return fmt.Errorf("%sリクエストのエンコード失敗: %w", requestType, err)
	}

	data, err := w.session.SendRequest(ctx, requestType, payload)
	if err != nil {
		return err
	}

	if err := w.codec.Unmarshal(data, response); err != nil {
		log.Printf("❌ %sレスポンスのデコード失敗: %v", requestType, err)
		return model.NewRemoteServerError(requestType.String(), err)
	}
	return nil
}

func toPoints(spawnPoints []model.SpawnPoint) []model.Point {
	points := make([]model.Point, 0, len(spawnPoints))
	for _, sp := range spawnPoints {
		points = append(points, model.NewPoint(sp))
	}
	return points
}
