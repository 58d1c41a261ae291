package repository

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"PogoMap-App/internal/domain/model"
)

// GeoPoint PostGIS POINT 型の JSON 表現
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// CoordinateToGeoPoint model.Coordinate を PostGIS POINT 形式に変換
func CoordinateToGeoPoint(c model.Coordinate) *GeoPoint {
	point := c.ToPoint()
	return &GeoPoint{
		Type:        "Point",
		Coordinates: []float64{point.Lon(), point.Lat()},
	}
}

// GeoPointToCoordinate PostGIS POINT を model.Coordinate に変換
func GeoPointToCoordinate(geoPoint *GeoPoint) *model.Coordinate {
	if geoPoint == nil || len(geoPoint.Coordinates) < 2 {
		return nil
	}
	c := model.CoordinateFromPoint(orb.Point{geoPoint.Coordinates[0], geoPoint.Coordinates[1]})
	return &c
}

// SearchBound 中心から半径 radiusMeters を含む境界ボックス
func SearchBound(center model.Coordinate, radiusMeters float64) orb.Bound {
	return geo.NewBoundAroundPoint(center.ToPoint(), radiusMeters)
}

// filterWithinRadius 半径内の出現ポイントを近い順に最大 limit 件返す（limit が0以下なら全件）
func filterWithinRadius(records []model.SpawnPointRecord, center model.Coordinate, radiusMeters float64, limit int) []model.SpawnPointRecord {
	type withDistance struct {
		record   model.SpawnPointRecord
		distance float64
	}

	origin := center.ToPoint()
	candidates := make([]withDistance, 0, len(records))
	for _, r := range records {
		d := geo.Distance(origin, orb.Point{r.Longitude, r.Latitude})
		if d <= radiusMeters {
			candidates = append(candidates, withDistance{record: r, distance: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	result := make([]model.SpawnPointRecord, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.record)
	}
	return result
}

// SightingDB Sighting を DB 保存用に変換した構造体
type SightingDB struct {
	ID                    string    `json:"id"`
	EncounterID           string    `json:"encounter_id"` // uint64 は JSON 数値の精度を超えるため文字列で保存
	PokemonID             int       `json:"pokemon_id"`
	SpawnPointID          string    `json:"spawn_point_id"`
	Wild                  bool      `json:"wild"`
	ExpirationTimestampMs int64     `json:"expiration_timestamp_ms"`
	SeenAt                string    `json:"seen_at"`
	Location              *GeoPoint `json:"location"`
}
