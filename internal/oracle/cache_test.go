package oracle

import (
	"context"
	"testing"

	"github.com/gabriellangon/narrando-backend/internal/model"
)

func TestCachingDistanceMemoizes(t *testing.T) {
	calls := 0
	provider := DistanceFunc(func(_ context.Context, _, _ model.Location) (float64, bool) {
		calls++
		return 420, true
	})
	d := NewCachingDistance(provider, nil)

	a := model.Location{Lat: 48.8584, Lng: 2.2945}
	b := model.Location{Lat: 48.8606, Lng: 2.3376}
	ctx := context.Background()

	if m, ok := d.WalkingDistance(ctx, a, b); !ok || m != 420 {
		t.Fatalf("first lookup: got %f %v", m, ok)
	}
	if m, ok := d.WalkingDistance(ctx, a, b); !ok || m != 420 {
		t.Fatalf("repeat lookup: got %f %v", m, ok)
	}
	// Reverse direction hits the same physical pair.
	if m, ok := d.WalkingDistance(ctx, b, a); !ok || m != 420 {
		t.Fatalf("reverse lookup: got %f %v", m, ok)
	}
	if calls != 1 {
		t.Fatalf("provider called %d times, want 1", calls)
	}
}

func TestCachingDistanceProviderMiss(t *testing.T) {
	provider := DistanceFunc(func(_ context.Context, _, _ model.Location) (float64, bool) {
		return 0, false
	})
	d := NewCachingDistance(provider, nil)
	if _, ok := d.WalkingDistance(context.Background(), model.Location{}, model.Location{Lat: 1}); ok {
		t.Fatal("expected miss to propagate")
	}
	// Misses must not be cached as zeros.
	if m, ok := d.cache.GetDistance(context.Background(), "0.000000,0.000000-1.000000,0.000000"); ok {
		t.Fatalf("miss was cached: %f", m)
	}
}

func TestCachingDistanceNilProvider(t *testing.T) {
	d := NewCachingDistance(nil, nil)
	if _, ok := d.WalkingDistance(context.Background(), model.Location{}, model.Location{Lat: 1}); ok {
		t.Fatal("nil provider should miss")
	}
}

func TestDistanceOrFallback(t *testing.T) {
	a := model.Location{Lat: 0, Lng: 0}
	b := model.Location{Lat: 0.01, Lng: 0}
	got := DistanceOrFallback(context.Background(), nil, a, b)
	if got < 1109 || got > 1111 {
		t.Fatalf("fallback distance: got %f, want ~1110", got)
	}

	fixed := DistanceFunc(func(_ context.Context, _, _ model.Location) (float64, bool) { return 1234, true })
	if got := DistanceOrFallback(context.Background(), fixed, a, b); got != 1234 {
		t.Fatalf("oracle distance: got %f want 1234", got)
	}
}
