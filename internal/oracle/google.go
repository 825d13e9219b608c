package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
	gpolyline "github.com/twpayne/go-polyline"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gabriellangon/narrando-backend/internal/metrics"
	"github.com/gabriellangon/narrando-backend/internal/model"
)

// simplifyEpsilonDeg trims redundant polyline vertices; ~0.5 m, far below
// anything visible on a walking map.
const simplifyEpsilonDeg = 5e-6

// GoogleConfig configures the Directions-backed provider.
type GoogleConfig struct {
	APIKey  string
	BaseURL string // override for tests; defaults to the Directions endpoint
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls. Zero disables throttling.
	RequestsPerSecond float64
}

// GoogleClient implements all three injected oracles on top of the Google
// Directions API in walking mode. Every failure path returns a miss; the
// engine degrades to fallbacks rather than aborting a run.
type GoogleClient struct {
	cfg     GoogleConfig
	httpc   *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewGoogleClient(cfg GoogleConfig, log *zap.Logger) *GoogleClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://maps.googleapis.com/maps/api/directions/json"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &GoogleClient{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     log,
	}
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Distance struct {
				Value float64 `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"`
			} `json:"duration"`
		} `json:"legs"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		WaypointOrder []int `json:"waypoint_order"`
	} `json:"routes"`
}

func (g *GoogleClient) directions(ctx context.Context, origin, dest model.Location, waypoints string) (*directionsResponse, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	q := url.Values{}
	q.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	q.Set("destination", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	q.Set("mode", "walking")
	q.Set("key", g.cfg.APIKey)
	if waypoints != "" {
		q.Set("waypoints", waypoints)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions: status %d", resp.StatusCode)
	}
	var out directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Status != "OK" || len(out.Routes) == 0 {
		return nil, fmt.Errorf("directions: status %q, %d routes", out.Status, len(out.Routes))
	}
	return &out, nil
}

// WalkingDistance implements DistanceOracle.
func (g *GoogleClient) WalkingDistance(ctx context.Context, origin, dest model.Location) (float64, bool) {
	resp, err := g.directions(ctx, origin, dest, "")
	if err != nil || len(resp.Routes[0].Legs) == 0 {
		metrics.OracleCalls.WithLabelValues("distance", "error").Inc()
		g.log.Debug("walking distance lookup failed", zap.Error(err))
		return 0, false
	}
	metrics.OracleCalls.WithLabelValues("distance", "ok").Inc()
	return resp.Routes[0].Legs[0].Distance.Value, true
}

// WalkingPath implements PathOracle by decoding the route's overview
// polyline. The raw decode is Douglas-Peucker simplified before being
// handed to the adapter for endpoint normalization.
func (g *GoogleClient) WalkingPath(ctx context.Context, origin, dest model.Location) []model.Location {
	resp, err := g.directions(ctx, origin, dest, "")
	if err != nil {
		metrics.OracleCalls.WithLabelValues("path", "error").Inc()
		g.log.Debug("walking path lookup failed", zap.Error(err))
		return nil
	}
	coords, _, err := gpolyline.DecodeCoords([]byte(resp.Routes[0].OverviewPolyline.Points))
	if err != nil {
		metrics.OracleCalls.WithLabelValues("path", "error").Inc()
		g.log.Debug("polyline decode failed", zap.Error(err))
		return nil
	}
	metrics.OracleCalls.WithLabelValues("path", "ok").Inc()

	ls := make(orb.LineString, 0, len(coords))
	for _, c := range coords {
		if len(c) != 2 {
			continue
		}
		ls = append(ls, orb.Point{c[1], c[0]}) // orb is lon,lat
	}
	ls = simplify.DouglasPeucker(simplifyEpsilonDeg).Simplify(ls).(orb.LineString)

	path := make([]model.Location, len(ls))
	for i, p := range ls {
		path[i] = model.Location{Lat: p.Lat(), Lng: p.Lon()}
	}
	return path
}

// Reorder implements WaypointReorderer via Directions optimize:true,
// anchored at the first and last points. Interior waypoints only.
func (g *GoogleClient) Reorder(ctx context.Context, points []model.Point) ([]model.Point, bool) {
	if len(points) < 3 {
		return nil, false
	}
	origin := points[0]
	dest := points[len(points)-1]
	interior := points[1 : len(points)-1]

	parts := make([]string, 0, len(interior)+1)
	parts = append(parts, "optimize:true")
	for _, wp := range interior {
		parts = append(parts, fmt.Sprintf("%f,%f", wp.Location.Lat, wp.Location.Lng))
	}

	resp, err := g.directions(ctx, origin.Location, dest.Location, strings.Join(parts, "|"))
	if err != nil {
		metrics.OracleCalls.WithLabelValues("reorder", "error").Inc()
		g.log.Debug("waypoint reorder failed", zap.Error(err))
		return nil, false
	}
	order := resp.Routes[0].WaypointOrder
	if len(order) != len(interior) {
		metrics.OracleCalls.WithLabelValues("reorder", "error").Inc()
		return nil, false
	}
	metrics.OracleCalls.WithLabelValues("reorder", "ok").Inc()

	out := make([]model.Point, 0, len(points))
	out = append(out, origin)
	for _, idx := range order {
		if idx < 0 || idx >= len(interior) {
			return nil, false
		}
		out = append(out, interior[idx])
	}
	out = append(out, dest)
	return out, true
}
