package model

// CatchablePokemon 捕獲可能なポケモン（マップ上・野生の両方を正規化したもの）
type CatchablePokemon struct {
	SpawnPointID          string  `json:"spawn_point_id"`
	EncounterID           uint64  `json:"encounter_id"`
	PokemonID             int     `json:"pokemon_id"`
	ExpirationTimestampMs int64   `json:"expiration_timestamp_ms"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	Wild                  bool    `json:"wild"`
}

// NewCatchablePokemonFromMap マップ上のポケモンから作成
func NewCatchablePokemonFromMap(p MapPokemon) CatchablePokemon {
	return CatchablePokemon{
		SpawnPointID:          p.SpawnPointID,
		EncounterID:           p.EncounterID,
		PokemonID:             p.PokemonID,
		ExpirationTimestampMs: p.ExpirationTimestampMs,
		Latitude:              p.Latitude,
		Longitude:             p.Longitude,
	}
}

// NewCatchablePokemonFromWild 野生ポケモンから作成
// 消滅時刻は最終更新時刻 + 消滅までの残り時間
func NewCatchablePokemonFromWild(p WildPokemon) CatchablePokemon {
	return CatchablePokemon{
		SpawnPointID:          p.SpawnPointID,
		EncounterID:           p.EncounterID,
		PokemonID:             p.PokemonData.PokemonID,
		ExpirationTimestampMs: p.LastModifiedTimestampMs + p.TimeTillHiddenMs,
		Latitude:              p.Latitude,
		Longitude:             p.Longitude,
		Wild:                  true,
	}
}

// Coordinate ポケモンの位置
func (c CatchablePokemon) Coordinate() Coordinate {
	return NewCoordinate(c.Latitude, c.Longitude)
}

// Point 出現ポイントの位置
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewPoint SpawnPoint から作成
func NewPoint(sp SpawnPoint) Point {
	return Point{Latitude: sp.Latitude, Longitude: sp.Longitude}
}

// FortDetails フォートの詳細情報
type FortDetails struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURLs   []string `json:"image_urls"`
	TeamColor   int      `json:"team_color"`
	Fp          int      `json:"fp"`
	Stamina     int      `json:"stamina"`
	MaxStamina  int      `json:"max_stamina"`
	Type        FortType `json:"type"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
}

// NewFortDetails レスポンスから作成
func NewFortDetails(r *FortDetailsResponse) *FortDetails {
	return &FortDetails{
		ID:          r.FortID,
		Name:        r.Name,
		Description: r.Description,
		ImageURLs:   r.ImageURLs,
		TeamColor:   r.TeamColor,
		Fp:          r.Fp,
		Stamina:     r.Stamina,
		MaxStamina:  r.MaxStamina,
		Type:        r.Type,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

// CatchParams 捕獲時の投球パラメータ
type CatchParams struct {
	NormalizedHitPosition float64 `json:"normalized_hit_position"`
	NormalizedReticleSize float64 `json:"normalized_reticle_size"`
	SpinModifier          float64 `json:"spin_modifier"`
	Pokeball              int     `json:"pokeball"`
}
