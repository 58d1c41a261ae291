package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/supabase-community/postgrest-go"

	"PogoMap-App/internal/database"
	"PogoMap-App/internal/domain/model"
	"PogoMap-App/internal/domain/repository"
)

const sightingsTable = "pokemon_sightings"

type SupabaseSightingsRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseSightingsRepository(client *database.SupabaseClient) repository.SightingsRepository {
	return &SupabaseSightingsRepository{
		client: client,
	}
}

// SaveAll 目撃記録をまとめて保存する（同じ encounter_id は上書き）
func (r *SupabaseSightingsRepository) SaveAll(ctx context.Context, sightings []model.Sighting) error {
	if len(sightings) == 0 {
		return nil
	}

	rows := make([]SightingDB, 0, len(sightings))
	for _, s := range sightings {
		rows = append(rows, SightingToSightingDB(s))
	}

	_, _, err := r.client.GetClient().From(sightingsTable).Insert(rows, true, "encounter_id", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("目撃データの保存失敗: %w", err)
	}
	return nil
}

// GetByPokemonID ポケモンIDごとの目撃記録を新しい順に最大 limit 件取得（limit が0以下なら全件）
func (r *SupabaseSightingsRepository) GetByPokemonID(ctx context.Context, pokemonID int, limit int) ([]model.Sighting, error) {
	query := r.client.GetClient().From(sightingsTable).
		Select("*", "", false).
		Eq("pokemon_id", strconv.Itoa(pokemonID)).
		Order("seen_at", &postgrest.OrderOpts{Ascending: false})
	if limit > 0 {
		query = query.Limit(limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("目撃データの取得失敗: %w", err)
	}

	var rows []SightingDB
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("目撃データのJSONアンマーシャル失敗: %w", err)
	}

	sightings := make([]model.Sighting, 0, len(rows))
	for _, row := range rows {
		s, err := SightingDBToSighting(row)
		if err != nil {
			return nil, err
		}
		sightings = append(sightings, s)
	}
	return sightings, nil
}

// SightingToSightingDB model.Sighting を DB 保存用に変換
func SightingToSightingDB(s model.Sighting) SightingDB {
	return SightingDB{
		ID:                    s.ID,
		EncounterID:           strconv.FormatUint(s.EncounterID, 10),
		PokemonID:             s.PokemonID,
		SpawnPointID:          s.SpawnPointID,
		Wild:                  s.Wild,
		ExpirationTimestampMs: s.ExpirationTimestampMs,
		SeenAt:                s.SeenAt.UTC().Format(time.RFC3339Nano),
		Location:              CoordinateToGeoPoint(model.NewCoordinate(s.Latitude, s.Longitude)),
	}
}

// SightingDBToSighting DB の行を model.Sighting に変換
func SightingDBToSighting(row SightingDB) (model.Sighting, error) {
	encounterID, err := strconv.ParseUint(row.EncounterID, 10, 64)
	if err != nil {
		return model.Sighting{}, fmt.Errorf("encounter_id %q のパース失敗: %w", row.EncounterID, err)
	}
	seenAt, err := time.Parse(time.RFC3339Nano, row.SeenAt)
	if err != nil {
		return model.Sighting{}, fmt.Errorf("seen_at %q のパース失敗: %w", row.SeenAt, err)
	}

	s := model.Sighting{
		ID:                    row.ID,
		EncounterID:           encounterID,
		PokemonID:             row.PokemonID,
		SpawnPointID:          row.SpawnPointID,
		Wild:                  row.Wild,
		ExpirationTimestampMs: row.ExpirationTimestampMs,
		SeenAt:                seenAt,
	}
	if c := GeoPointToCoordinate(row.Location); c != nil {
		s.Latitude = c.Latitude
		s.Longitude = c.Longitude
	}
	return s, nil
}
