package cellgrid

import (
	"github.com/golang/geo/s2"

	"PogoMap-App/internal/domain/model"
)

// EdgeNeighbors の添字（フェイス座標系での方向）
const (
	edgeDown  = 0 // j-1
	edgeRight = 1 // i+1
	edgeUp    = 2 // j+1
	edgeLeft  = 3 // i-1
)

// CenterCell 指定座標を含む CanonicalLevel のセルを返す
func CenterCell(latitude, longitude float64) model.CellID {
	return model.CellID(centerCell(latitude, longitude))
}

// ComputeCellIDs 座標を中心とした width × width 近傍のセルIDを返す
//
// halfWidth = (width-1)/2 を両方向に適用するため、返す件数は (2*halfWidth+1)^2 件。
// 偶数の width は width-1 と同じグリッドになる。width が1未満の場合は1として扱う。
// 並びは i 軸オフセットが外側、j 軸オフセットが内側の行優先順。
// フェイスの境界を越える場合は隣接フェイスに回り込む。
func ComputeCellIDs(latitude, longitude float64, width int) []model.CellID {
	half := HalfWidth(width)
	size := 2*half + 1

	// i 軸方向に列の基点を並べる
	columns := make([]s2.CellID, size)
	columns[half] = centerCell(latitude, longitude)
	for x := 1; x <= half; x++ {
		columns[half+x] = columns[half+x-1].EdgeNeighbors()[edgeRight]
		columns[half-x] = columns[half-x+1].EdgeNeighbors()[edgeLeft]
	}

	cells := make([]model.CellID, 0, size*size)
	column := make([]s2.CellID, size)
	for _, base := range columns {
		column[half] = base
		for y := 1; y <= half; y++ {
			column[half+y] = column[half+y-1].EdgeNeighbors()[edgeUp]
			column[half-y] = column[half-y+1].EdgeNeighbors()[edgeDown]
		}
		for _, id := range column {
			cells = append(cells, model.CellID(id))
		}
	}
	return cells
}

// ComputeForRequest CellGridRequest からセルIDを計算する
func ComputeForRequest(req model.CellGridRequest) []model.CellID {
	return ComputeCellIDs(req.Center.Latitude, req.Center.Longitude, req.Width)
}

// HalfWidth グリッドの片側のセル数（偶数の width は切り捨てて width-1 として扱う）
func HalfWidth(width int) int {
	if width < 1 {
		width = 1
	}
	return (width - 1) / 2
}

// GridSize width に対して返されるセルIDの件数
func GridSize(width int) int {
	side := 2*HalfWidth(width) + 1
	return side * side
}

func centerCell(latitude, longitude float64) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(latitude, longitude)).Parent(model.CanonicalLevel)
}

// LeafToken 座標を含む最下層セルのトークン（地点を一意に識別するキーとして使う）
func LeafToken(latitude, longitude float64) string {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(latitude, longitude)).ToToken()
}
