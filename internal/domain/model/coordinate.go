package model

import "github.com/paulmach/orb"

// CanonicalLevel はサーバーとやり取りするセルIDの階層レベル
const CanonicalLevel = 15

// CellID 地球上の固定サイズ領域を表すS2セルID（サーバーに送る不透明なキー）
type CellID uint64

// Coordinate 緯度・経度・高度を表す位置情報
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"` // 未指定の場合は0
}

// NewCoordinate 高度0の位置情報を作成
func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{Latitude: lat, Longitude: lng}
}

// ToPoint orb.Point（[lng, lat]）に変換
func (c Coordinate) ToPoint() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// CoordinateFromPoint orb.Point から Coordinate に変換
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{
		Latitude:  p.Lat(),
		Longitude: p.Lon(),
	}
}

// CellGridRequest 中心座標と幅からセルグリッドを要求するためのパラメータ
type CellGridRequest struct {
	Center Coordinate `json:"center"`
	Width  int        `json:"width"`
}
