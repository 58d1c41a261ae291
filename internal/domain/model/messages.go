package model

// RequestType ゲームサーバーへのリクエスト種別
type RequestType int

const (
	RequestTypeFortSearch    RequestType = 101
	RequestTypeEncounter     RequestType = 102
	RequestTypeCatchPokemon  RequestType = 103
	RequestTypeFortDetails   RequestType = 104
	RequestTypeGetMapObjects RequestType = 106
)

// String リクエスト種別名を返す
func (r RequestType) String() string {
	switch r {
	case RequestTypeFortSearch:
		return "FORT_SEARCH"
	case RequestTypeEncounter:
		return "ENCOUNTER"
	case RequestTypeCatchPokemon:
		return "CATCH_POKEMON"
	case RequestTypeFortDetails:
		return "FORT_DETAILS"
	case RequestTypeGetMapObjects:
		return "GET_MAP_OBJECTS"
	default:
		return "UNKNOWN"
	}
}

// GetMapObjectsMessage マップオブジェクト取得リクエスト
// CellIDs と SinceTimestampMs は同じ添字で対応する
type GetMapObjectsMessage struct {
	CellIDs          []CellID `json:"cell_id"`
	SinceTimestampMs []int64  `json:"since_timestamp_ms"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
}

// GetMapObjectsResponse マップオブジェクト取得レスポンス
type GetMapObjectsResponse struct {
	Status   int       `json:"status"`
	MapCells []MapCell `json:"map_cells"`
}

// FortDetailsMessage フォート詳細取得リクエスト
type FortDetailsMessage struct {
	FortID    string  `json:"fort_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FortDetailsResponse フォート詳細取得レスポンス
type FortDetailsResponse struct {
	FortID      string   `json:"fort_id"`
	TeamColor   int      `json:"team_color"`
	Name        string   `json:"name"`
	ImageURLs   []string `json:"image_urls"`
	Fp          int      `json:"fp"`
	Stamina     int      `json:"stamina"`
	MaxStamina  int      `json:"max_stamina"`
	Type        FortType `json:"type"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Description string   `json:"description"`
}

// FortSearchMessage フォート（ポケストップ）を回すリクエスト
type FortSearchMessage struct {
	FortID          string  `json:"fort_id"`
	PlayerLatitude  float64 `json:"player_latitude"`
	PlayerLongitude float64 `json:"player_longitude"`
	FortLatitude    float64 `json:"fort_latitude"`
	FortLongitude   float64 `json:"fort_longitude"`
}

// ItemAward フォート検索で獲得したアイテム
type ItemAward struct {
	ItemID    int `json:"item_id"`
	ItemCount int `json:"item_count"`
}

// FortSearchResponse フォート検索レスポンス
type FortSearchResponse struct {
	Result                      int         `json:"result"`
	ItemsAwarded                []ItemAward `json:"items_awarded"`
	GemsAwarded                 int         `json:"gems_awarded"`
	ExperienceAwarded           int         `json:"experience_awarded"`
	CooldownCompleteTimestampMs int64       `json:"cooldown_complete_timestamp_ms"`
	ChainHackSequenceNumber     int         `json:"chain_hack_sequence_number"`
}

// EncounterMessage エンカウントリクエスト
type EncounterMessage struct {
	EncounterID     uint64  `json:"encounter_id"`
	SpawnPointID    string  `json:"spawn_point_id"`
	PlayerLatitude  float64 `json:"player_latitude"`
	PlayerLongitude float64 `json:"player_longitude"`
}

// EncounterResponse エンカウントレスポンス
type EncounterResponse struct {
	WildPokemon        *WildPokemon `json:"wild_pokemon,omitempty"`
	Background         int          `json:"background"`
	Status             int          `json:"status"`
	CaptureProbability []float64    `json:"capture_probability"`
}

// CatchPokemonMessage 捕獲リクエスト
type CatchPokemonMessage struct {
	EncounterID           uint64  `json:"encounter_id"`
	Pokeball              int     `json:"pokeball"`
	NormalizedReticleSize float64 `json:"normalized_reticle_size"`
	SpawnPointGUID        string  `json:"spawn_point_guid"`
	HitPokemon            bool    `json:"hit_pokemon"`
	SpinModifier          float64 `json:"spin_modifier"`
	NormalizedHitPosition float64 `json:"normalized_hit_position"`
}

// CatchPokemonResponse 捕獲レスポンス
type CatchPokemonResponse struct {
	Status            int     `json:"status"`
	MissPercent       float64 `json:"miss_percent"`
	CapturedPokemonID uint64  `json:"captured_pokemon_id"`
}
