package engine

import (
	"fmt"
	"sort"

	"github.com/gabriellangon/narrando-backend/internal/model"
)

const (
	// expressMaxPoints caps an express variant at the top-rated stops.
	expressMaxPoints = 4
	// thematicMaxPoints caps a thematic variant per theme and tour.
	thematicMaxPoints = 5
	// discoveryRatingCeiling bounds the "lesser known" selection: stops
	// rated at or above it are considered headline attractions.
	discoveryRatingCeiling = 4.2
	// minVariantPoints is the smallest slice worth proposing as a walk.
	minVariantPoints = 2
)

// themeByTag maps place tags to visitor-facing theme names. Tags outside
// this table do not contribute to thematic variants.
var themeByTag = map[string]string{
	"museum":          "Culture",
	"art_gallery":     "Art",
	"historical_site": "Histoire",
	"church":          "Spirituel",
	"park":            "Nature",
}

// BuildVariants derives the alternative walks for a final tour set: an
// express slice of each tour's best-rated stops, thematic groupings by
// place tag, and a discovery slice of its lesser-known stops. Variants
// reference points of the tours they derive from; they are suggestions
// layered over the result, not additional tours, so the global uniqueness
// invariant does not apply to them.
func BuildVariants(tours []model.Tour) model.TourVariants {
	variants := model.TourVariants{Thematic: make(map[string][]model.TourVariant)}

	for i, t := range tours {
		points := make([]model.Point, len(t.Points))
		for j, s := range t.Points {
			points[j] = s.Point
		}

		if v, ok := expressVariant(t.ID, points, i+1); ok {
			variants.Express = append(variants.Express, v)
		}
		addThematicVariants(variants.Thematic, t.ID, points, i+1)
		if v, ok := discoveryVariant(t.ID, points, i+1); ok {
			variants.Discovery = append(variants.Discovery, v)
		}
	}
	return variants
}

// expressVariant keeps the best-rated stops, unrated ones counting as zero.
func expressVariant(tourID string, points []model.Point, n int) (model.TourVariant, bool) {
	byRating := append([]model.Point(nil), points...)
	sort.SliceStable(byRating, func(a, b int) bool {
		return byRating[a].Rating > byRating[b].Rating
	})
	if len(byRating) > expressMaxPoints {
		byRating = byRating[:expressMaxPoints]
	}
	if len(byRating) < minVariantPoints {
		return model.TourVariant{}, false
	}
	return model.TourVariant{
		TourID:   tourID,
		Name:     fmt.Sprintf("Express Tour %d", n),
		Points:   byRating,
		Duration: "30-45 min",
	}, true
}

func addThematicVariants(thematic map[string][]model.TourVariant, tourID string, points []model.Point, n int) {
	themed := make(map[string][]model.Point)
	for _, p := range points {
		for _, tag := range p.Tags {
			if theme, ok := themeByTag[tag]; ok {
				themed[theme] = append(themed[theme], p)
			}
		}
	}

	themes := make([]string, 0, len(themed))
	for theme := range themed {
		themes = append(themes, theme)
	}
	sort.Strings(themes)

	for _, theme := range themes {
		selection := themed[theme]
		if len(selection) < minVariantPoints {
			continue
		}
		size := len(selection)
		if len(selection) > thematicMaxPoints {
			selection = selection[:thematicMaxPoints]
		}
		thematic[theme] = append(thematic[theme], model.TourVariant{
			TourID:   tourID,
			Name:     fmt.Sprintf("%s Tour %d", theme, n),
			Points:   selection,
			Duration: fmt.Sprintf("%d-%d min", size*15, size*20),
		})
	}
}

// discoveryVariant keeps the stops below the headline-rating ceiling.
func discoveryVariant(tourID string, points []model.Point, n int) (model.TourVariant, bool) {
	var lesser []model.Point
	for _, p := range points {
		if p.Rating < discoveryRatingCeiling {
			lesser = append(lesser, p)
		}
	}
	if len(lesser) < minVariantPoints {
		return model.TourVariant{}, false
	}
	return model.TourVariant{
		TourID:   tourID,
		Name:     fmt.Sprintf("Découverte Tour %d", n),
		Points:   lesser,
		Duration: "45-60 min",
	}, true
}
