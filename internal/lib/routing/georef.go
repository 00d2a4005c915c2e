package routing

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
)

// openDriveHeader is the part of an OpenDRIVE document that carries the geo reference
type openDriveHeader struct {
	XMLName xml.Name `xml:"OpenDRIVE"`
	Header  struct {
		GeoReference *string `xml:"geoReference"`
	} `xml:"header"`
}

// ResolveGeoReference reads the geo reference declared by a map.
func ResolveGeoReference(metadata roadnet.MapMetadata) (geo.GeoReference, error) {
	doc, err := metadata.OpenDRIVE()
	if err != nil {
		return geo.GeoReference{}, fmt.Errorf("%w: read map description: %w", roadnet.ErrExternalService, err)
	}
	return ParseGeoReference(doc)
}

// ParseGeoReference extracts the geoReference of an OpenDRIVE header. The reference text
// holds two space-separated key=value tokens, latitude first, e.g.
// "+lat_0=4.9e+1 +lon_0=8.0e+0". Maps without a reference, including an empty
// document or an empty tag, use geo.DefaultGeoReference. A reference that is present
// but cannot be parsed is an ErrMalformedReference.
func ParseGeoReference(doc string) (geo.GeoReference, error) {
	if strings.TrimSpace(doc) == "" {
		return geo.DefaultGeoReference, nil
	}

	var parsed openDriveHeader
	if err := xml.Unmarshal([]byte(doc), &parsed); err != nil {
		return geo.GeoReference{}, fmt.Errorf("%w: parse map description: %w", roadnet.ErrExternalService, err)
	}

	if parsed.Header.GeoReference == nil || strings.TrimSpace(*parsed.Header.GeoReference) == "" {
		return geo.DefaultGeoReference, nil
	}

	tokens := strings.Fields(*parsed.Header.GeoReference)
	if len(tokens) < 2 {
		return geo.GeoReference{}, fmt.Errorf("%w: expected latitude and longitude tokens, got %q", roadnet.ErrMalformedReference, *parsed.Header.GeoReference)
	}

	lat, err := tokenValue(tokens[0])
	if err != nil {
		return geo.GeoReference{}, err
	}
	lon, err := tokenValue(tokens[1])
	if err != nil {
		return geo.GeoReference{}, err
	}

	if lat <= -90 || lat >= 90 {
		return geo.GeoReference{}, fmt.Errorf("%w: latitude %v must lie strictly between -90 and 90", roadnet.ErrMalformedReference, lat)
	}

	return geo.GeoReference{Latitude: lat, Longitude: lon}, nil
}

// tokenValue parses the numeric value of a key=value token
func tokenValue(token string) (float64, error) {
	_, value, ok := strings.Cut(token, "=")
	if !ok {
		return 0, fmt.Errorf("%w: token %q is not key=value", roadnet.ErrMalformedReference, token)
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: token %q: %w", roadnet.ErrMalformedReference, token, err)
	}
	return v, nil
}
