package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dpup/scenario-geometry/server/internal/cache"
	"github.com/dpup/scenario-geometry/server/internal/config"
	"github.com/dpup/scenario-geometry/server/internal/lib/export"
	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/maneuver"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
	"github.com/dpup/scenario-geometry/server/internal/lib/routing"
	"github.com/dpup/scenario-geometry/server/internal/logging"
	"github.com/dpup/scenario-geometry/server/internal/services"
)

// env bundles what every subcommand needs once flags are parsed
type env struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	graph *roadnet.Graph
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "route":
		handleRoute()
	case "junction":
		handleJunction()
	case "crossing":
		handleCrossing()
	case "distance":
		handleDistance()
	case "project":
		handleProject()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// commonFlags registers --config and --network on a subcommand flag set
func commonFlags(fs *flag.FlagSet) (*string, *string) {
	configPath := fs.String("config", "", "Path to YAML config file")
	networkPath := fs.String("network", "", "Path to YAML road network (overrides network.path)")
	return configPath, networkPath
}

func setup(configPath, networkPath string) *env {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if networkPath == "" {
		networkPath = cfg.Network.Path
	}
	if networkPath == "" {
		logger.Fatalw("No road network given; pass --network or set network.path")
	}

	f, err := os.Open(networkPath)
	if err != nil {
		logger.Fatalw("Failed to open road network", "path", networkPath, "error", err)
	}
	defer f.Close()

	graph, err := roadnet.LoadGraph(f)
	if err != nil {
		logger.Fatalw("Failed to load road network", "path", networkPath, "error", err)
	}
	logger.Debugw("Loaded road network", "name", graph.Name(), "path", networkPath)

	return &env{cfg: cfg, log: logger, graph: graph}
}

func handleRoute() {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	configPath, networkPath := commonFlags(fs)
	points := fs.String("points", "", "Coarse waypoints as x,y[,z];x,y[,z];...")
	kmlPath := fs.String("kml", "", "Write the projected route as KML to this file")
	geoJSONPath := fs.String("geojson", "", "Write the projected route as GeoJSON to this file")
	showEntries := fs.Bool("entries", false, "Print every route entry")

	fs.Parse(os.Args[2:])

	if *points == "" {
		fmt.Println("Example usage:")
		fmt.Println("  scenario-geo route --network configs/networks/fourway.yaml --points '0,-40;0,-20;-40,0'")
		os.Exit(1)
	}

	coarse, err := parseLocations(*points)
	if err != nil {
		log.Fatalf("Invalid --points: %v", err)
	}

	e := setup(*configPath, *networkPath)
	defer e.log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := routeStore(ctx, e)
	defer closeStore()

	svc := newRouteService(e, store)

	geoRoute, route, err := planRoute(ctx, svc, coarse, *showEntries)
	if err != nil {
		e.log.Fatalw("Failed to build route", "error", err)
	}
	if c, ok := store.(*cache.Cache); ok {
		e.log.Debugw("Route cache", "stats", c.Stats())
	}

	summary, err := svc.Summarize(geoRoute)
	if err != nil {
		e.log.Fatalw("Failed to summarize route", "error", err)
	}

	fmt.Printf("Route on %s:\n", e.graph.Name())
	fmt.Printf("  Entries: %d\n", summary.Entries)
	fmt.Printf("  Length: %.2f meters\n", summary.LengthMeters)
	fmt.Printf("  Start: (%.7f, %.7f)\n", summary.Start.Latitude, summary.Start.Longitude)
	fmt.Printf("  End: (%.7f, %.7f)\n", summary.End.Latitude, summary.End.Longitude)
	for _, opt := range []roadnet.RouteOption{roadnet.LaneFollow, roadnet.Left, roadnet.Right, roadnet.Straight} {
		if n := summary.Maneuvers[opt]; n > 0 {
			fmt.Printf("  %s: %d entries\n", opt, n)
		}
	}
	fmt.Printf("  Polyline: %s\n", export.EncodePolyline(geoRoute))

	if *showEntries {
		for i, entry := range route {
			loc := entry.Waypoint.Transform().Location
			c := geoRoute[i].Coordinate
			fmt.Printf("  %4d %-11s (%.2f, %.2f) -> (%.7f, %.7f)\n", i, entry.Option, loc.X, loc.Y, c.Latitude, c.Longitude)
		}
	}

	if *kmlPath != "" {
		out, err := os.Create(*kmlPath)
		if err != nil {
			e.log.Fatalw("Failed to create KML file", "path", *kmlPath, "error", err)
		}
		defer out.Close()
		if err := export.WriteKML(out, e.graph.Name(), geoRoute); err != nil {
			e.log.Fatalw("Failed to write KML", "path", *kmlPath, "error", err)
		}
		fmt.Printf("  KML written to %s\n", *kmlPath)
	}

	if *geoJSONPath != "" {
		data, err := export.GeoJSON(e.graph.Name(), geoRoute)
		if err != nil {
			e.log.Fatalw("Failed to render GeoJSON", "error", err)
		}
		if err := os.WriteFile(*geoJSONPath, data, 0o644); err != nil {
			e.log.Fatalw("Failed to write GeoJSON", "path", *geoJSONPath, "error", err)
		}
		fmt.Printf("  GeoJSON written to %s\n", *geoJSONPath)
	}
}

func newRouteService(e *env, store cache.RouteStore) *services.RouteService {
	annotator := routing.NewAnnotator(e.graph, e.graph.NewPlanner, e.cfg.Routing.Options)
	matcher := routing.NewRouteMatcher(e.cfg.Routing.OnRouteThreshold, e.cfg.Routing.NearbyThreshold)
	return services.NewRouteService(e.graph.Name(), annotator, matcher, store, e.cfg.Cache.TTL, e.log)
}

// planRoute serves the projected route from the cache unless per-entry output
// is requested, which needs the in-world waypoints of a fresh build
func planRoute(ctx context.Context, svc *services.RouteService, coarse []geo.Location, withEntries bool) (routing.GeoRoute, roadnet.Route, error) {
	if withEntries {
		return svc.BuildRoute(ctx, coarse)
	}
	geoRoute, err := svc.PlanRoute(ctx, coarse)
	return geoRoute, nil, err
}

// routeStore picks Valkey when configured, otherwise an in-memory cache
func routeStore(ctx context.Context, e *env) (cache.RouteStore, func()) {
	if addr := e.cfg.Cache.ValkeyAddr; addr != "" {
		store, err := cache.NewValkeyStore(addr, e.cfg.Cache.KeyPrefix)
		if err != nil {
			e.log.Warnw("Valkey unavailable, using in-memory route cache", "addr", addr, "error", err)
		} else {
			return store, store.Close
		}
	}
	c := cache.NewCache(e.log)
	c.StartPeriodicCleanup(ctx, e.cfg.Cache.CleanupInterval)
	return c, func() {}
}

func handleJunction() {
	fs := flag.NewFlagSet("junction", flag.ExitOnError)
	configPath, networkPath := commonFlags(fs)
	at := fs.String("at", "", "Start location as x,y[,z]")
	direction := fs.String("dir", "straight", "Turn to take: left, right or straight")

	fs.Parse(os.Args[2:])

	if *at == "" {
		fmt.Println("Example usage:")
		fmt.Println("  scenario-geo junction --network configs/networks/fourway.yaml --at 0,-50 --dir left")
		os.Exit(1)
	}

	start, err := parseLocation(*at)
	if err != nil {
		log.Fatalf("Invalid --at: %v", err)
	}
	dir, err := maneuver.ParseDirection(*direction)
	if err != nil {
		log.Fatalf("Invalid --dir: %v", err)
	}

	e := setup(*configPath, *networkPath)
	defer e.log.Sync()

	svc := services.NewManeuverService(e.graph, e.cfg.Maneuver, e.log)
	exit, err := svc.ExitJunction(context.Background(), start, dir)
	if err != nil {
		e.log.Fatalw("Failed to find junction exit", "error", err)
	}

	tf := exit.Transform()
	fmt.Printf("Junction exit (%s):\n", dir)
	fmt.Printf("  Location: (%.2f, %.2f, %.2f)\n", tf.Location.X, tf.Location.Y, tf.Location.Z)
	fmt.Printf("  Yaw: %.1f degrees\n", tf.Rotation.Yaw)
	if l, ok := exit.(interface{ LaneID() string }); ok {
		fmt.Printf("  Lane: %s\n", l.LaneID())
	}
}

func handleCrossing() {
	fs := flag.NewFlagSet("crossing", flag.ExitOnError)
	configPath, networkPath := commonFlags(fs)
	egoFlag := fs.String("ego", "", "Ego actor location as x,y[,z]")
	otherFlag := fs.String("other", "", "Other actor location as x,y[,z]")

	fs.Parse(os.Args[2:])

	if *egoFlag == "" || *otherFlag == "" {
		fmt.Println("Example usage:")
		fmt.Println("  scenario-geo crossing --network configs/networks/fourway.yaml --ego 0,-40 --other 30,0")
		os.Exit(1)
	}

	ego, err := parseLocation(*egoFlag)
	if err != nil {
		log.Fatalf("Invalid --ego: %v", err)
	}
	other, err := parseLocation(*otherFlag)
	if err != nil {
		log.Fatalf("Invalid --other: %v", err)
	}

	e := setup(*configPath, *networkPath)
	defer e.log.Sync()

	svc := services.NewManeuverService(e.graph, e.cfg.Maneuver, e.log)
	crossing, err := svc.Crossing(context.Background(), ego, other)
	if err != nil {
		e.log.Fatalw("Failed to estimate crossing", "error", err)
	}

	if !crossing.Found {
		fmt.Println("Lanes are parallel; no crossing point")
		return
	}
	fmt.Printf("Crossing point: (%.2f, %.2f)\n", crossing.Location.X, crossing.Location.Y)
}

func handleDistance() {
	fs := flag.NewFlagSet("distance", flag.ExitOnError)
	configPath, networkPath := commonFlags(fs)
	at := fs.String("at", "", "Start location as x,y[,z]")
	maxDistance := fs.Float64("max", 0, "Advance at most this many meters; 0 searches for the nearest junction")

	fs.Parse(os.Args[2:])

	if *at == "" {
		fmt.Println("Example usage:")
		fmt.Println("  scenario-geo distance --network configs/networks/fourway.yaml --at 0,-50 --max 15")
		fmt.Println("  scenario-geo distance --network configs/networks/fourway.yaml --at 0,-50")
		os.Exit(1)
	}

	start, err := parseLocation(*at)
	if err != nil {
		log.Fatalf("Invalid --at: %v", err)
	}

	e := setup(*configPath, *networkPath)
	defer e.log.Sync()

	svc := services.NewManeuverService(e.graph, e.cfg.Maneuver, e.log)
	ctx := context.Background()

	if *maxDistance > 0 {
		loc, travelled, err := svc.Advance(ctx, start, *maxDistance)
		if err != nil {
			e.log.Fatalw("Failed to advance", "error", err)
		}
		fmt.Printf("Advanced %.2f of %.2f meters to (%.2f, %.2f)\n", travelled, *maxDistance, loc.X, loc.Y)
		return
	}

	loc, err := svc.NearestCrossing(ctx, start)
	if err != nil {
		e.log.Fatalw("Failed to find nearest junction", "error", err)
	}
	fmt.Printf("Nearest junction at (%.2f, %.2f), %.2f meters away\n", loc.X, loc.Y, start.DistanceTo(loc))
}

func handleProject() {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	configPath, networkPath := commonFlags(fs)
	at := fs.String("at", "", "Map location as x,y[,z]")
	latRef := fs.Float64("lat-ref", geo.DefaultGeoReference.Latitude, "Reference latitude when no network is given")
	lonRef := fs.Float64("lon-ref", geo.DefaultGeoReference.Longitude, "Reference longitude when no network is given")

	fs.Parse(os.Args[2:])

	if *at == "" {
		fmt.Println("Example usage:")
		fmt.Println("  scenario-geo project --at 100,50 --lat-ref 49 --lon-ref 8")
		fmt.Println("  scenario-geo project --network configs/networks/fourway.yaml --at 100,50")
		os.Exit(1)
	}

	loc, err := parseLocation(*at)
	if err != nil {
		log.Fatalf("Invalid --at: %v", err)
	}

	ref := geo.GeoReference{Latitude: *latRef, Longitude: *lonRef}
	if *networkPath != "" || *configPath != "" {
		e := setup(*configPath, *networkPath)
		defer e.log.Sync()
		ref, err = routing.ResolveGeoReference(e.graph)
		if err != nil {
			e.log.Fatalw("Failed to resolve geo reference", "error", err)
		}
	}

	out, err := projectionJSON(ref, loc)
	if err != nil {
		log.Fatalf("Failed to encode projection: %v", err)
	}
	fmt.Println(string(out))
}

func projectionJSON(ref geo.GeoReference, loc geo.Location) ([]byte, error) {
	return json.MarshalIndent(struct {
		Reference  geo.GeoReference  `json:"reference"`
		Location   geo.Location      `json:"location"`
		Coordinate geo.GeoCoordinate `json:"coordinate"`
	}{ref, loc, geo.Project(ref, loc)}, "", "  ")
}

// parseLocations splits "x,y;x,y,z" into locations
func parseLocations(s string) ([]geo.Location, error) {
	var locs []geo.Location
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		loc, err := parseLocation(part)
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// parseLocation reads "x,y" or "x,y,z"
func parseLocation(s string) (geo.Location, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	if len(fields) < 2 || len(fields) > 3 {
		return geo.Location{}, fmt.Errorf("expected x,y or x,y,z, got %q", s)
	}

	values := make([]float64, 3)
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return geo.Location{}, fmt.Errorf("invalid coordinate %q: %w", f, err)
		}
		values[i] = v
	}
	return geo.Location{X: values[0], Y: values[1], Z: values[2]}, nil
}

func printUsage() {
	fmt.Println("Scenario geometry tool for road networks")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scenario-geo <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  route      Plan a dense route through coarse waypoints and project it")
	fmt.Println("  junction   Walk through the next junction taking a turn")
	fmt.Println("  crossing   Estimate where two actors' lanes cross")
	fmt.Println("  distance   Advance along a lane, or find the nearest junction")
	fmt.Println("  project    Convert a map location to latitude/longitude")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Every command accepts --config (YAML file) and --network (YAML road network).")
	fmt.Printf("Config values can be overridden with %s prefixed environment variables,\n", config.EnvPrefix)
	fmt.Printf("e.g. %sMANEUVER__MAX_STEPS=500\n", config.EnvPrefix)
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  scenario-geo route --network configs/networks/fourway.yaml --points '0,-40;0,-20;-40,0' --kml route.kml")
	fmt.Println("  scenario-geo junction --network configs/networks/fourway.yaml --at 0,-50 --dir right")
	fmt.Println("  scenario-geo distance --network configs/networks/fourway.yaml --at 0,-50 --max 15")
	fmt.Println("  scenario-geo project --at 100,50 --lat-ref 49 --lon-ref 8")
}
