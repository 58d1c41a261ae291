package model

import "time"

// SpawnPointRecord 観測済みの出現ポイント（永続化用）
type SpawnPointRecord struct {
	ID        string    `json:"id" db:"id"`
	CellID    CellID    `json:"cell_id" db:"cell_id"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	Decimated bool      `json:"decimated" db:"decimated"`
	FirstSeen time.Time `json:"first_seen" db:"first_seen"`
	LastSeen  time.Time `json:"last_seen" db:"last_seen"`
}

// Sighting 捕獲可能ポケモンの目撃記録
type Sighting struct {
	ID                    string    `json:"id"`
	EncounterID           uint64    `json:"encounter_id"`
	PokemonID             int       `json:"pokemon_id"`
	SpawnPointID          string    `json:"spawn_point_id"`
	Latitude              float64   `json:"latitude"`
	Longitude             float64   `json:"longitude"`
	Wild                  bool      `json:"wild"`
	ExpirationTimestampMs int64     `json:"expiration_timestamp_ms"`
	SeenAt                time.Time `json:"seen_at"`
}

// FirestoreFortDetails Firestoreに保存するフォート詳細のキャッシュ
type FirestoreFortDetails struct {
	Name        string    `firestore:"name"`
	Description string    `firestore:"description"`
	ImageURLs   []string  `firestore:"image_urls"`
	TeamColor   int       `firestore:"team_color"`
	Fp          int       `firestore:"fp"`
	Stamina     int       `firestore:"stamina"`
	MaxStamina  int       `firestore:"max_stamina"`
	Type        int       `firestore:"type"`
	Latitude    float64   `firestore:"latitude"`
	Longitude   float64   `firestore:"longitude"`
	CachedAt    time.Time `firestore:"cachedAt"`
	ExpireAt    time.Time `firestore:"expireAt"`
}

// ToFirestoreFortDetails FortDetails を Firestore 保存用に変換
func (d *FortDetails) ToFirestoreFortDetails(now time.Time, ttl time.Duration) *FirestoreFortDetails {
	return &FirestoreFortDetails{
		Name:        d.Name,
		Description: d.Description,
		ImageURLs:   d.ImageURLs,
		TeamColor:   d.TeamColor,
		Fp:          d.Fp,
		Stamina:     d.Stamina,
		MaxStamina:  d.MaxStamina,
		Type:        int(d.Type),
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		CachedAt:    now,
		ExpireAt:    now.Add(ttl),
	}
}

// ToFortDetails Firestore のドキュメントを FortDetails に変換
func (f *FirestoreFortDetails) ToFortDetails(fortID string) *FortDetails {
	return &FortDetails{
		ID:          fortID,
		Name:        f.Name,
		Description: f.Description,
		ImageURLs:   f.ImageURLs,
		TeamColor:   f.TeamColor,
		Fp:          f.Fp,
		Stamina:     f.Stamina,
		MaxStamina:  f.MaxStamina,
		Type:        FortType(f.Type),
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
	}
}

// IsExpired 有効期限切れか
func (f *FirestoreFortDetails) IsExpired(now time.Time) bool {
	return !f.ExpireAt.After(now)
}
