package studio

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gymkeyapp/gymkey-server/internal/docstore"
	"github.com/gymkeyapp/gymkey-server/internal/models"
)

const locationsCollection = "locations"

// Locations lists the studio locations shown on the map screen. The
// documents store coordinates as strings under a nested "loc" object;
// entries with unparseable coordinates are skipped rather than failing the
// whole list.
type Locations struct {
	docs docstore.Store
}

// NewLocations creates a new studio location reader
func NewLocations(docs docstore.Store) *Locations {
	return &Locations{docs: docs}
}

// List returns all studio locations with valid coordinates
func (l *Locations) List(ctx context.Context) ([]models.Location, error) {
	docs, err := l.docs.List(ctx, locationsCollection)
	if err != nil {
		return nil, fmt.Errorf("error listing locations: %w", err)
	}

	locations := make([]models.Location, 0, len(docs))
	for _, doc := range docs {
		loc, ok := parseLocation(doc)
		if !ok {
			continue
		}
		locations = append(locations, loc)
	}

	return locations, nil
}

func parseLocation(doc docstore.Document) (models.Location, bool) {
	name, _ := doc["name"].(string)

	coords, ok := doc["loc"].(map[string]any)
	if !ok {
		return models.Location{}, false
	}

	lat, ok := parseCoordinate(coords["latitude"])
	if !ok {
		return models.Location{}, false
	}

	lng, ok := parseCoordinate(coords["longitude"])
	if !ok {
		return models.Location{}, false
	}

	var tasks []string
	if raw, ok := doc["tasks"].([]any); ok {
		for _, t := range raw {
			if task, ok := t.(string); ok {
				tasks = append(tasks, task)
			}
		}
	}

	return models.Location{
		Name:      name,
		Latitude:  lat,
		Longitude: lng,
		Tasks:     tasks,
	}, true
}

func parseCoordinate(v any) (float64, bool) {
	switch c := v.(type) {
	case string:
		f, err := strconv.ParseFloat(c, 64)
		return f, err == nil
	case float64:
		return c, true
	default:
		return 0, false
	}
}
