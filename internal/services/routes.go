package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/dpup/scenario-geometry/server/internal/cache"
	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
	"github.com/dpup/scenario-geometry/server/internal/lib/routing"
	"github.com/dpup/scenario-geometry/server/internal/logging"
)

// RouteService plans annotated routes for one map and caches their
// geographic projection
type RouteService struct {
	mapName   string
	annotator *routing.Annotator
	matcher   routing.RouteMatcher
	store     cache.RouteStore
	ttl       time.Duration
	log       logging.Logger
}

// NewRouteService creates a new RouteService. A nil store disables caching.
func NewRouteService(mapName string, annotator *routing.Annotator, matcher routing.RouteMatcher, store cache.RouteStore, ttl time.Duration, log logging.Logger) *RouteService {
	if log == nil {
		log = logging.Nop()
	}
	return &RouteService{
		mapName:   mapName,
		annotator: annotator,
		matcher:   matcher,
		store:     store,
		ttl:       ttl,
		log:       log,
	}
}

// BuildRoute plans a full route, returning both the in-world route and its
// projection. The projection is written to the cache for later PlanRoute calls.
func (s *RouteService) BuildRoute(ctx context.Context, coarse []geo.Location) (routing.GeoRoute, roadnet.Route, error) {
	start := time.Now()
	geoRoute, route, err := s.annotator.BuildRoute(ctx, coarse)
	routeBuildDuration.Observe(time.Since(start).Seconds())
	routeBuildsTotal.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		s.log.Warnw("Route build failed", "map", s.mapName, "waypoints", len(coarse), "error", err)
		return nil, nil, err
	}

	s.log.Debugw("Route built", "map", s.mapName, "waypoints", len(coarse), "entries", len(route),
		"duration", time.Since(start))

	if s.store != nil {
		if err := s.store.SetRoute(ctx, s.cacheKey(coarse), geoRoute, s.ttl); err != nil {
			s.log.Warnw("Failed to cache route", "map", s.mapName, "error", err)
		}
	}

	return geoRoute, route, nil
}

// PlanRoute returns the projected route for the coarse waypoints, from the
// cache when a fresh copy exists
func (s *RouteService) PlanRoute(ctx context.Context, coarse []geo.Location) (routing.GeoRoute, error) {
	if s.store != nil && len(coarse) >= 2 {
		cached, found, err := s.store.GetRoute(ctx, s.cacheKey(coarse))
		switch {
		case err != nil:
			routeCacheLookups.WithLabelValues("error").Inc()
			s.log.Warnw("Route cache error", "map", s.mapName, "error", err)
		case found:
			routeCacheLookups.WithLabelValues("hit").Inc()
			routeBuildsTotal.WithLabelValues("cached").Inc()
			s.log.Debugw("Returning cached route", "map", s.mapName, "entries", len(cached))
			return cached, nil
		default:
			routeCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	geoRoute, _, err := s.BuildRoute(ctx, coarse)
	if err != nil {
		return nil, err
	}
	return geoRoute, nil
}

// Summarize describes a projected route
func (s *RouteService) Summarize(route routing.GeoRoute) (routing.Summary, error) {
	return s.matcher.Summarize(route)
}

// Classify reports how far a point lies from a projected route
func (s *RouteService) Classify(point geo.Point, route routing.GeoRoute) (routing.RouteClassification, float64, error) {
	return s.matcher.Classify(point, route)
}

// cacheKey identifies a route by map, densification settings and coarse
// waypoints
func (s *RouteService) cacheKey(coarse []geo.Location) string {
	opts := s.annotator.Options()

	var b strings.Builder
	fmt.Fprintf(&b, "%g|%t", opts.HopResolution, opts.SelfPairing)
	for _, loc := range coarse {
		fmt.Fprintf(&b, "|%g,%g,%g", loc.X, loc.Y, loc.Z)
	}

	hash := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%s:%x", s.mapName, hash)
}
