package helper

import (
	"sort"

	"github.com/paulmach/orb/geo"

	"PogoMap-App/internal/domain/model"
)

// PokemonWithDistance 基準地点からの距離付きのポケモン
type PokemonWithDistance struct {
	model.CatchablePokemon
	DistanceMeters float64 `json:"distance_meters"`
}

// DistanceMeters 2地点間の距離を計算する (m)
func DistanceMeters(from, to model.Coordinate) float64 {
	return geo.Distance(from.ToPoint(), to.ToPoint())
}

// SortByDistance 基準地点から近い順に並べる（同じ距離なら元の順序を保つ）
func SortByDistance(pokemons []model.CatchablePokemon, origin model.Coordinate) []PokemonWithDistance {
	result := make([]PokemonWithDistance, 0, len(pokemons))
	for _, p := range pokemons {
		result = append(result, PokemonWithDistance{
			CatchablePokemon: p,
			DistanceMeters:   DistanceMeters(origin, p.Coordinate()),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceMeters < result[j].DistanceMeters
	})
	return result
}

// FilterByPokemonID 指定されたポケモンIDのみを抽出する（空の場合はそのまま返す）
func FilterByPokemonID(pokemons []model.CatchablePokemon, pokemonIDs []int) []model.CatchablePokemon {
	if len(pokemonIDs) == 0 {
		return pokemons
	}
	idSet := make(map[int]struct{}, len(pokemonIDs))
	for _, id := range pokemonIDs {
		idSet[id] = struct{}{}
	}

	var filtered []model.CatchablePokemon
	for _, p := range pokemons {
		if _, ok := idSet[p.PokemonID]; ok {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// FindNearestFort 基準地点に最も近いフォートを見つける
func FindNearestFort(forts []model.FortData, origin model.Coordinate) (*model.FortData, float64) {
	if len(forts) == 0 {
		return nil, 0
	}
	nearest := forts[0]
	nearestDistance := DistanceMeters(origin, model.NewCoordinate(nearest.Latitude, nearest.Longitude))
	for _, f := range forts[1:] {
		d := DistanceMeters(origin, model.NewCoordinate(f.Latitude, f.Longitude))
		if d < nearestDistance {
			nearest = f
			nearestDistance = d
		}
	}
	return &nearest, nearestDistance
}

// ExcludeExpired 指定時刻までに消滅するポケモンを除外する
// 消滅時刻が不明（0以下）のものは残す
func ExcludeExpired(pokemons []model.CatchablePokemon, nowMs int64) []model.CatchablePokemon {
	var alive []model.CatchablePokemon
	for _, p := range pokemons {
		if p.ExpirationTimestampMs <= 0 || p.ExpirationTimestampMs > nowMs {
			alive = append(alive, p)
		}
	}
	return alive
}
