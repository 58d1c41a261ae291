package repository

import (
	"context"

	"PogoMap-App/internal/domain/model"
)

type SightingsRepository interface {
	SaveAll(ctx context.Context, sightings []model.Sighting) error
	GetByPokemonID(ctx context.Context, pokemonID int, limit int) ([]model.Sighting, error)
}
