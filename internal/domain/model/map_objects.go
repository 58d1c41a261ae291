package model

// MapObjects 周辺のワールドオブジェクトのスナップショット
// 各フィールドはレスポンス到着順（リクエストのセル順 → セル内のサーバー順）で並ぶ
type MapObjects struct {
	NearbyPokemons       []NearbyPokemon `json:"nearby_pokemons"`
	CatchablePokemons    []MapPokemon    `json:"catchable_pokemons"`
	WildPokemons         []WildPokemon   `json:"wild_pokemons"`
	SpawnPoints          []SpawnPoint    `json:"spawn_points"`
	DecimatedSpawnPoints []SpawnPoint    `json:"decimated_spawn_points"`
	Gyms                 []FortData      `json:"gyms"`
	Pokestops            []FortData      `json:"pokestops"`
}

// NewMapObjects 空のスナップショットを作成
func NewMapObjects() *MapObjects {
	return &MapObjects{}
}

// AddMapCell 1セル分のレコードを各コレクションに振り分けて追加する
// フォートはジム・ポケストップ以外の種別を破棄する
func (m *MapObjects) AddMapCell(cell MapCell) {
	m.NearbyPokemons = append(m.NearbyPokemons, cell.NearbyPokemons...)
	m.CatchablePokemons = append(m.CatchablePokemons, cell.CatchablePokemons...)
	m.WildPokemons = append(m.WildPokemons, cell.WildPokemons...)
	m.SpawnPoints = append(m.SpawnPoints, cell.SpawnPoints...)
	m.DecimatedSpawnPoints = append(m.DecimatedSpawnPoints, cell.DecimatedSpawnPoints...)

	for _, fort := range cell.Forts {
		switch fort.Type {
		case FortTypeGym:
			m.Gyms = append(m.Gyms, fort)
		case FortTypeCheckpoint:
			m.Pokestops = append(m.Pokestops, fort)
		default:
			// 未知の種別は破棄
		}
	}
}

// Update 他のスナップショットの内容をフィールドごとに追記する（重複排除はしない）
func (m *MapObjects) Update(other *MapObjects) {
	if other == nil {
		return
	}
	m.NearbyPokemons = append(m.NearbyPokemons, other.NearbyPokemons...)
	m.CatchablePokemons = append(m.CatchablePokemons, other.CatchablePokemons...)
	m.WildPokemons = append(m.WildPokemons, other.WildPokemons...)
	m.SpawnPoints = append(m.SpawnPoints, other.SpawnPoints...)
	m.DecimatedSpawnPoints = append(m.DecimatedSpawnPoints, other.DecimatedSpawnPoints...)
	m.Gyms = append(m.Gyms, other.Gyms...)
	m.Pokestops = append(m.Pokestops, other.Pokestops...)
}

// Clone スライスを複製したコピーを返す
func (m *MapObjects) Clone() *MapObjects {
	if m == nil {
		return NewMapObjects()
	}
	return &MapObjects{
		NearbyPokemons:       cloneSlice(m.NearbyPokemons),
		CatchablePokemons:    cloneSlice(m.CatchablePokemons),
		WildPokemons:         cloneSlice(m.WildPokemons),
		SpawnPoints:          cloneSlice(m.SpawnPoints),
		DecimatedSpawnPoints: cloneSlice(m.DecimatedSpawnPoints),
		Gyms:                 cloneSlice(m.Gyms),
		Pokestops:            cloneSlice(m.Pokestops),
	}
}

// Count 全コレクションのレコード総数
func (m *MapObjects) Count() int {
	return len(m.NearbyPokemons) + len(m.CatchablePokemons) + len(m.WildPokemons) +
		len(m.SpawnPoints) + len(m.DecimatedSpawnPoints) + len(m.Gyms) + len(m.Pokestops)
}

// IsEmpty レコードが1件もないか
func (m *MapObjects) IsEmpty() bool {
	return m.Count() == 0
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
