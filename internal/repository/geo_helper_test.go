package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PogoMap-App/internal/domain/model"
)

var kyotoStation = model.NewCoordinate(34.985849, 135.758767)

func TestCoordinateToGeoPoint(t *testing.T) {
	geoPoint := CoordinateToGeoPoint(kyotoStation)
	assert.Equal(t, "Point", geoPoint.Type)
	assert.Equal(t, []float64{135.758767, 34.985849}, geoPoint.Coordinates, "GeoJSONは [lng, lat]")

	back := GeoPointToCoordinate(geoPoint)
	require.NotNil(t, back)
	assert.Equal(t, kyotoStation, *back)

	assert.Nil(t, GeoPointToCoordinate(nil))
	assert.Nil(t, GeoPointToCoordinate(&GeoPoint{Type: "Point", Coordinates: []float64{1}}))
}

func TestSearchBound(t *testing.T) {
	bound := SearchBound(kyotoStation, 500)
	assert.True(t, bound.Contains(kyotoStation.ToPoint()))
	assert.Less(t, bound.Min.Lat(), kyotoStation.Latitude)
	assert.Greater(t, bound.Max.Lon(), kyotoStation.Longitude)
}

func TestFilterWithinRadius(t *testing.T) {
	records := []model.SpawnPointRecord{
		{ID: "far", Latitude: kyotoStation.Latitude + 0.01, Longitude: kyotoStation.Longitude},   // 約1.1km
		{ID: "mid", Latitude: kyotoStation.Latitude + 0.002, Longitude: kyotoStation.Longitude},  // 約220m
		{ID: "near", Latitude: kyotoStation.Latitude + 0.0005, Longitude: kyotoStation.Longitude}, // 約55m
	}

	t.Run("半径内を近い順に返す", func(t *testing.T) {
		got := filterWithinRadius(records, kyotoStation, 500, 0)
		require.Len(t, got, 2)
		assert.Equal(t, "near", got[0].ID)
		assert.Equal(t, "mid", got[1].ID)
	})

	t.Run("件数制限", func(t *testing.T) {
		got := filterWithinRadius(records, kyotoStation, 5000, 1)
		require.Len(t, got, 1)
		assert.Equal(t, "near", got[0].ID)
	})
}

func TestSightingDBConversion(t *testing.T) {
	seenAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	sighting := model.Sighting{
		ID:                    "s1",
		EncounterID:           18446744073709551615,
		PokemonID:             25,
		SpawnPointID:          "sp1",
		Latitude:              kyotoStation.Latitude,
		Longitude:             kyotoStation.Longitude,
		Wild:                  true,
		ExpirationTimestampMs: 1_700_000_000_000,
		SeenAt:                seenAt,
	}

	row := SightingToSightingDB(sighting)
	assert.Equal(t, "18446744073709551615", row.EncounterID)

	back, err := SightingDBToSighting(row)
	require.NoError(t, err)
	assert.Equal(t, sighting, back)

	_, err = SightingDBToSighting(SightingDB{EncounterID: "abc", SeenAt: row.SeenAt})
	assert.Error(t, err)
}
