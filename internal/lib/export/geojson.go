package export

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/dpup/scenario-geometry/server/internal/lib/routing"
)

// GeoJSON returns the route as a FeatureCollection: a LineString feature for the
// whole path followed by one Point feature per maneuver segment start.
func GeoJSON(name string, route routing.GeoRoute) ([]byte, error) {
	if len(route) == 0 {
		return nil, errors.New("route has no points")
	}

	line := make(orb.LineString, len(route))
	for i, entry := range route {
		line[i] = orb.Point{entry.Coordinate.Longitude, entry.Coordinate.Latitude}
	}

	fc := geojson.NewFeatureCollection()

	path := geojson.NewFeature(line)
	path.Properties["name"] = name
	path.Properties["entries"] = len(route)
	fc.Append(path)

	for i, entry := range route {
		if i > 0 && entry.Option == route[i-1].Option {
			continue
		}
		f := geojson.NewFeature(line[i])
		f.Properties["option"] = entry.Option.String()
		f.Properties["index"] = i
		f.Properties["altitude"] = entry.Coordinate.Altitude
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}
	return data, nil
}
