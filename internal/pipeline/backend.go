package pipeline

import (
	"context"

	"placepipe/internal/extract"
	"placepipe/internal/services/ollama"
)

// NameExtractor is the narrow model interface: place names only.
type NameExtractor interface {
	ExtractPlaceNames(ctx context.Context, text string) ollama.Result
}

// PlaceEnricher resolves bare names into full place records.
type PlaceEnricher interface {
	EnrichPlaces(ctx context.Context, names []string) []extract.Place
}

// NarrowBackend adapts the name-only extraction path to the PlaceExtractor
// interface. The model degrades to an empty name list rather than failing,
// so this backend never returns an error. The enricher is optional; without
// one the result carries bare names.
type NarrowBackend struct {
	Names    NameExtractor
	Enricher PlaceEnricher
}

// ExtractPlaces implements PlaceExtractor.
func (b *NarrowBackend) ExtractPlaces(ctx context.Context, text string) ([]extract.Place, error) {
	result := b.Names.ExtractPlaceNames(ctx, text)
	if !result.HasPlaces {
		return []extract.Place{}, nil
	}
	if b.Enricher != nil {
		return b.Enricher.EnrichPlaces(ctx, result.PlaceNames), nil
	}
	places := make([]extract.Place, 0, len(result.PlaceNames))
	for _, name := range result.PlaceNames {
		places = append(places, extract.Place{Name: name})
	}
	return places, nil
}
