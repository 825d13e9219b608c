package merge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gabriellangon/narrando-backend/internal/merge"
	"github.com/gabriellangon/narrando-backend/internal/model"
	"github.com/gabriellangon/narrando-backend/internal/tour"
)

func singleStopTour(id, name string, lat, lng float64) model.Tour {
	p := model.Point{ID: id, Name: id, Location: model.Location{Lat: lat, Lng: lng}}
	t := model.Tour{ID: id, Name: name, Points: tour.Annotate(context.Background(), []model.Point{p}, nil)}
	t.RecomputeStats()
	return t
}

func multiStopTour(name string, points ...model.Point) model.Tour {
	t := model.Tour{ID: name, Name: name, Points: tour.Annotate(context.Background(), points, nil)}
	t.RecomputeStats()
	return t
}

func pt(id string, lat, lng float64) model.Point {
	return model.Point{ID: id, Name: id, Location: model.Location{Lat: lat, Lng: lng}}
}

func TestMergeFusesNearbySingletons(t *testing.T) {
	// ~834 m apart: ten walking minutes, inside the 18-minute budget.
	a := singleStopTour("a", "Tour 1", 48.1000, 2.1)
	b := singleStopTour("b", "Tour 2", 48.1075, 2.1)

	out := merge.Run(context.Background(), []model.Tour{a, b}, nil, nil, merge.DefaultBudgetMinutes, nil)
	require.Len(t, out, 1)
	require.Len(t, out[0].Points, 2)
	require.Zero(t, out[0].Points[0].DistFromPrevM)
	require.Greater(t, out[0].Points[1].DistFromPrevM, 0.0)
}

func TestMergeRespectsBudget(t *testing.T) {
	// ~2.2 km apart: about 26 walking minutes, beyond the budget.
	a := singleStopTour("a", "Tour 1", 48.10, 2.1)
	b := singleStopTour("b", "Tour 2", 48.12, 2.1)

	out := merge.Run(context.Background(), []model.Tour{a, b}, nil, nil, merge.DefaultBudgetMinutes, nil)
	require.Len(t, out, 2)
}

func TestMergePicksGloballyBestPairFirst(t *testing.T) {
	// c is close to b but closer still to a: the a-c fusion must win the
	// first round, then absorb b.
	a := singleStopTour("a", "Tour 1", 48.1000, 2.1)
	b := singleStopTour("b", "Tour 2", 48.1130, 2.1)
	c := singleStopTour("c", "Tour 3", 48.1060, 2.1)

	out := merge.Run(context.Background(), []model.Tour{a, b, c}, nil, nil, merge.DefaultBudgetMinutes, nil)
	require.Len(t, out, 1)
	require.Len(t, out[0].Points, 3)
}

func TestMergeChainsTours(t *testing.T) {
	// Two multi-stop tours whose ends nearly touch.
	t1 := multiStopTour("Tour 1",
		pt("a1", 48.1000, 2.1),
		pt("a2", 48.1050, 2.1),
	)
	t2 := multiStopTour("Tour 2",
		pt("b1", 48.1100, 2.1),
		pt("b2", 48.1150, 2.1),
	)

	out := merge.Run(context.Background(), []model.Tour{t1, t2}, nil, nil, merge.DefaultBudgetMinutes, nil)
	require.Len(t, out, 1)
	require.Len(t, out[0].Points, 4)

	// Every stop except the first carries a recomputed hop.
	for i, s := range out[0].Points {
		if i == 0 {
			require.Zero(t, s.DistFromPrevM)
		} else {
			require.Greater(t, s.DistFromPrevM, 0.0)
		}
	}
	require.Equal(t, out[0].Stats.PointCount, 4)
	var total float64
	for _, s := range out[0].Points {
		total += s.DistFromPrevM
	}
	require.InDelta(t, out[0].Stats.TotalDistanceM, total, 1e-9)
}

func TestMergeKeepsAllPoints(t *testing.T) {
	tours := []model.Tour{
		multiStopTour("Tour 1", pt("a1", 48.1000, 2.1), pt("a2", 48.1030, 2.1)),
		multiStopTour("Tour 2", pt("b1", 48.1060, 2.1), pt("b2", 48.1090, 2.1)),
		singleStopTour("c1", "Tour 3", 48.1120, 2.1),
	}
	out := merge.Run(context.Background(), tours, nil, nil, merge.DefaultBudgetMinutes, nil)

	seen := map[string]bool{}
	for _, tr := range out {
		for _, s := range tr.Points {
			require.False(t, seen[s.Point.ID])
			seen[s.Point.ID] = true
		}
	}
	require.Len(t, seen, 5)
}

func TestMergeSingleTourUntouched(t *testing.T) {
	t1 := multiStopTour("Tour 1", pt("a", 48.1, 2.1), pt("b", 48.11, 2.1))
	out := merge.Run(context.Background(), []model.Tour{t1}, nil, nil, merge.DefaultBudgetMinutes, nil)
	require.Len(t, out, 1)
	require.Equal(t, t1.Points, out[0].Points)
}

func TestMergedNameCombinesSources(t *testing.T) {
	a := singleStopTour("a", "Tour 1", 48.1000, 2.1)
	b := singleStopTour("b", "Tour 2", 48.1050, 2.1)
	out := merge.Run(context.Background(), []model.Tour{a, b}, nil, nil, merge.DefaultBudgetMinutes, nil)
	require.Len(t, out, 1)
	require.Equal(t, "Tour 1+2", out[0].Name)
}
