package model

// FortType フォート（ランドマーク）の種別
type FortType int

const (
	FortTypeGym        FortType = 0
	FortTypeCheckpoint FortType = 1
)

// String 種別名を返す
func (t FortType) String() string {
	switch t {
	case FortTypeGym:
		return "GYM"
	case FortTypeCheckpoint:
		return "CHECKPOINT"
	default:
		return "UNKNOWN"
	}
}

// NearbyPokemon 近くにいるが捕獲できないポケモン
type NearbyPokemon struct {
	PokemonID        int     `json:"pokemon_id"`
	DistanceInMeters float64 `json:"distance_in_meters"`
	EncounterID      uint64  `json:"encounter_id"`
}

// MapPokemon マップ上で捕獲可能なポケモン
type MapPokemon struct {
	SpawnPointID          string  `json:"spawn_point_id"`
	EncounterID           uint64  `json:"encounter_id"`
	PokemonID             int     `json:"pokemon_id"`
	ExpirationTimestampMs int64   `json:"expiration_timestamp_ms"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
}

// PokemonData 野生ポケモンに付随する個体情報
type PokemonData struct {
	PokemonID int `json:"pokemon_id"`
	CP        int `json:"cp"`
	Stamina   int `json:"stamina"`
}

// WildPokemon 野生ポケモン（捕獲可能として正規化される）
type WildPokemon struct {
	EncounterID             uint64      `json:"encounter_id"`
	LastModifiedTimestampMs int64       `json:"last_modified_timestamp_ms"`
	Latitude                float64     `json:"latitude"`
	Longitude               float64     `json:"longitude"`
	SpawnPointID            string      `json:"spawn_point_id"`
	PokemonData             PokemonData `json:"pokemon_data"`
	TimeTillHiddenMs        int64       `json:"time_till_hidden_ms"`
}

// SpawnPoint 出現ポイント（通常・間引き済みの両方で使用）
type SpawnPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FortData ジム・ポケストップの生データ
type FortData struct {
	ID                          string   `json:"id"`
	LastModifiedTimestampMs     int64    `json:"last_modified_timestamp_ms"`
	Latitude                    float64  `json:"latitude"`
	Longitude                   float64  `json:"longitude"`
	Enabled                     bool     `json:"enabled"`
	Type                        FortType `json:"type"`
	OwnedByTeam                 int      `json:"owned_by_team,omitempty"`
	GuardPokemonID              int      `json:"guard_pokemon_id,omitempty"`
	GymPoints                   int64    `json:"gym_points,omitempty"`
	CooldownCompleteTimestampMs int64    `json:"cooldown_complete_timestamp_ms,omitempty"`
}

// MapCell 1セル分のレスポンスレコード
type MapCell struct {
	S2CellID             CellID          `json:"s2_cell_id"`
	CurrentTimestampMs   int64           `json:"current_timestamp_ms"`
	Forts                []FortData      `json:"forts"`
	SpawnPoints          []SpawnPoint    `json:"spawn_points"`
	WildPokemons         []WildPokemon   `json:"wild_pokemons"`
	DecimatedSpawnPoints []SpawnPoint    `json:"decimated_spawn_points"`
	CatchablePokemons    []MapPokemon    `json:"catchable_pokemons"`
	NearbyPokemons       []NearbyPokemon `json:"nearby_pokemons"`
	IsTruncatedList      bool            `json:"is_truncated_list"`
}
