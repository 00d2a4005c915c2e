// Package export renders geo-referenced routes for map tooling.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/twpayne/go-kml"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/routing"
)

// WriteKML writes the route as a KML document: one tessellated LineString for the
// path, plus a placemark at the start, the end and wherever the maneuver tag changes.
func WriteKML(w io.Writer, name string, route routing.GeoRoute) error {
	if len(route) == 0 {
		return errors.New("route has no points")
	}

	coords := make([]kml.Coordinate, len(route))
	for i, entry := range route {
		coords[i] = coordinate(entry.Coordinate)
	}

	elements := []kml.Element{
		kml.Name(name),
		kml.Placemark(
			kml.Name(name),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(coords...),
			),
		),
		marker("start", route[0]),
	}
	for i := 1; i < len(route); i++ {
		if route[i].Option != route[i-1].Option {
			elements = append(elements, marker(route[i].Option.String(), route[i]))
		}
	}
	elements = append(elements, marker("end", route[len(route)-1]))

	if err := kml.KML(kml.Document(elements...)).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write KML: %w", err)
	}
	return nil
}

// EncodePolyline returns the route as a Google encoded polyline (altitude dropped)
func EncodePolyline(route routing.GeoRoute) string {
	return geo.NewGeoUtils().EncodePolyline(route.Polyline().Points)
}

func marker(label string, entry routing.GeoRouteEntry) kml.Element {
	return kml.Placemark(
		kml.Name(label),
		kml.Description(fmt.Sprintf("%s lat=%.7f lon=%.7f alt=%.2f", entry.Option, entry.Coordinate.Latitude, entry.Coordinate.Longitude, entry.Coordinate.Altitude)),
		kml.Point(kml.Coordinates(coordinate(entry.Coordinate))),
	)
}

func coordinate(c geo.GeoCoordinate) kml.Coordinate {
	return kml.Coordinate{Lon: c.Longitude, Lat: c.Latitude, Alt: c.Altitude}
}
