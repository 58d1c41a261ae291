package model

import (
	"strconv"

	domain "PogoMap-App/internal/domain/model"
)

// Location リクエストで受け取る位置情報
type Location struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
	Altitude  float64 `json:"altitude"`
}

// ToCoordinate Location をドメインの Coordinate に変換
func (l *Location) ToCoordinate() domain.Coordinate {
	return domain.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude, Altitude: l.Altitude}
}

// NewLocation Coordinate から作成
func NewLocation(c domain.Coordinate) Location {
	return Location{Latitude: c.Latitude, Longitude: c.Longitude, Altitude: c.Altitude}
}

// MapObjectsRequest 指定位置のマップオブジェクト取得リクエスト
// cell_ids は10進文字列で受け取る
type MapObjectsRequest struct {
	Location
	Width   int      `json:"width" binding:"min=0"`
	CellIDs []string `json:"cell_ids"`
}

// NearbyPokemonView 近くのポケモン（64ビットのIDは10進文字列で返す）
type NearbyPokemonView struct {
	domain.NearbyPokemon
	EncounterID uint64 `json:"encounter_id,string"`
}

// MapPokemonView マップ上の捕獲可能なポケモン
type MapPokemonView struct {
	domain.MapPokemon
	EncounterID uint64 `json:"encounter_id,string"`
}

// WildPokemonView 野生ポケモン
type WildPokemonView struct {
	domain.WildPokemon
	EncounterID uint64 `json:"encounter_id,string"`
}

// MapObjectsView API で返すマップオブジェクト
type MapObjectsView struct {
	NearbyPokemons       []NearbyPokemonView `json:"nearby_pokemons"`
	CatchablePokemons    []MapPokemonView    `json:"catchable_pokemons"`
	WildPokemons         []WildPokemonView   `json:"wild_pokemons"`
	SpawnPoints          []domain.SpawnPoint `json:"spawn_points"`
	DecimatedSpawnPoints []domain.SpawnPoint `json:"decimated_spawn_points"`
	Gyms                 []domain.FortData   `json:"gyms"`
	Pokestops            []domain.FortData   `json:"pokestops"`
}

// NewMapObjectsView スナップショットから作成
func NewMapObjectsView(objects *domain.MapObjects) *MapObjectsView {
	if objects == nil {
		return nil
	}
	return &MapObjectsView{
		NearbyPokemons:       NewNearbyPokemonViews(objects.NearbyPokemons),
		CatchablePokemons:    convert(objects.CatchablePokemons, func(p domain.MapPokemon) MapPokemonView { return MapPokemonView{MapPokemon: p, EncounterID: p.EncounterID} }),
		WildPokemons:         convert(objects.WildPokemons, func(p domain.WildPokemon) WildPokemonView { return WildPokemonView{WildPokemon: p, EncounterID: p.EncounterID} }),
		SpawnPoints:          objects.SpawnPoints,
		DecimatedSpawnPoints: objects.DecimatedSpawnPoints,
		Gyms:                 objects.Gyms,
		Pokestops:            objects.Pokestops,
	}
}

// NewNearbyPokemonViews 近くのポケモン一覧を変換
func NewNearbyPokemonViews(pokemons []domain.NearbyPokemon) []NearbyPokemonView {
	return convert(pokemons, func(p domain.NearbyPokemon) NearbyPokemonView {
		return NearbyPokemonView{NearbyPokemon: p, EncounterID: p.EncounterID}
	})
}

// MapObjectsResponse マップオブジェクトのスナップショット
type MapObjectsResponse struct {
	Position     Location        `json:"position"`
	CacheEnabled bool            `json:"cache_enabled"`
	Objects      *MapObjectsView `json:"objects"`
}

// CellsResponse グリッドのセルID一覧（10進文字列）
type CellsResponse struct {
	Center  Location `json:"center"`
	Width   int      `json:"width"`
	CellIDs []string `json:"cell_ids"`
}

// NewCellsResponse セルIDを文字列に変換して作成
func NewCellsResponse(center Location, width int, cellIDs []domain.CellID) CellsResponse {
	return CellsResponse{
		Center:  center,
		Width:   width,
		CellIDs: convert(cellIDs, FormatCellID),
	}
}

// FormatCellID セルIDを10進文字列にする
func FormatCellID(id domain.CellID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseCellID 10進文字列のセルIDを読み取る
func ParseCellID(raw string) (domain.CellID, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return domain.CellID(v), nil
}

// CatchablePokemonItem 距離付きの捕獲可能ポケモン
type CatchablePokemonItem struct {
	domain.CatchablePokemon
	EncounterID    uint64  `json:"encounter_id,string"`
	DistanceMeters float64 `json:"distance_meters"`
}

// SpawnPointRecordView アーカイブ済みの出現ポイント
type SpawnPointRecordView struct {
	domain.SpawnPointRecord
	CellID string `json:"cell_id"`
}

// SightingView アーカイブ済みの目撃記録
type SightingView struct {
	domain.Sighting
	EncounterID uint64 `json:"encounter_id,string"`
}

// NewSpawnPointRecordViews 出現ポイント一覧を変換
func NewSpawnPointRecordViews(records []domain.SpawnPointRecord) []SpawnPointRecordView {
	return convert(records, func(r domain.SpawnPointRecord) SpawnPointRecordView {
		return SpawnPointRecordView{SpawnPointRecord: r, CellID: FormatCellID(r.CellID)}
	})
}

// NewSightingViews 目撃記録一覧を変換
func NewSightingViews(sightings []domain.Sighting) []SightingView {
	return convert(sightings, func(s domain.Sighting) SightingView {
		return SightingView{Sighting: s, EncounterID: s.EncounterID}
	})
}

type CatchablePokemonResponse struct {
	Position Location               `json:"position"`
	Pokemons []CatchablePokemonItem `json:"pokemons"`
}

// CacheSettingsRequest キャッシュ設定の更新。省略したフィールドは変更しない
type CacheSettingsRequest struct {
	Enabled  *bool  `json:"enabled"`
	ExpiryMs *int64 `json:"expiry_ms" binding:"omitempty,min=0"`
}

type CacheSettingsResponse struct {
	Enabled  bool  `json:"enabled"`
	ExpiryMs int64 `json:"expiry_ms"`
}

// ScanRequest スキャンリクエスト。Location 省略時は現在位置
type ScanRequest struct {
	Location *Location `json:"location"`
	Width    int       `json:"width" binding:"min=0"`
}

type ScanResponse struct {
	Status           string   `json:"status"`
	ObjectCount      int      `json:"object_count"`
	SpawnPointsSaved int      `json:"spawn_points_saved"`
	SightingsSaved   int      `json:"sightings_saved"`
	Warnings         []string `json:"warnings"`
}

// StreamSummary WebSocketで定期送信するスナップショットの要約
type StreamSummary struct {
	Position             Location `json:"position"`
	TimestampMs          int64    `json:"timestamp_ms"`
	CatchablePokemons    int      `json:"catchable_pokemons"`
	WildPokemons         int      `json:"wild_pokemons"`
	NearbyPokemons       int      `json:"nearby_pokemons"`
	SpawnPoints          int      `json:"spawn_points"`
	DecimatedSpawnPoints int      `json:"decimated_spawn_points"`
	Gyms                 int      `json:"gyms"`
	Pokestops            int      `json:"pokestops"`
}

// NewStreamSummary スナップショットから要約を作成
func NewStreamSummary(position domain.Coordinate, objects *domain.MapObjects, timestampMs int64) StreamSummary {
	return StreamSummary{
		Position:             NewLocation(position),
		TimestampMs:          timestampMs,
		CatchablePokemons:    len(objects.CatchablePokemons),
		WildPokemons:         len(objects.WildPokemons),
		NearbyPokemons:       len(objects.NearbyPokemons),
		SpawnPoints:          len(objects.SpawnPoints),
		DecimatedSpawnPoints: len(objects.DecimatedSpawnPoints),
		Gyms:                 len(objects.Gyms),
		Pokestops:            len(objects.Pokestops),
	}
}

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NearestFortResponse 最寄りのフォート
type NearestFortResponse struct {
	Fort           *domain.FortData `json:"fort"`
	DistanceMeters float64          `json:"distance_meters"`
}

// convert nil を保ったまま要素を変換する
func convert[T, U any](in []T, f func(T) U) []U {
	if in == nil {
		return nil
	}
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
