package model

// Core domain types for one planning run.

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point is a single point of interest. Immutable once ingested; the engine
// owns it only for the duration of one planning run.
type Point struct {
	ID       string   `json:"placeId"`
	Name     string   `json:"name"`
	Location Location `json:"location"`
	Rating   float64  `json:"rating,omitempty"`
	Tags     []string `json:"types,omitempty"`
}

// TourPoint is one stop of a tour. GlobalPosition is dense and unique across
// the whole result; the first stop of every tour carries zero distance/time.
type TourPoint struct {
	Point           Point   `json:"point"`
	Position        int     `json:"positionInTour"`
	GlobalPosition  int     `json:"globalPosition"`
	DistFromPrevM   float64 `json:"distanceFromPreviousM"`
	TimeFromPrevMin int     `json:"walkingTimeFromPreviousMin"`
}

// TourStats aggregates one tour.
type TourStats struct {
	TotalDistanceM float64 `json:"totalDistanceM"`
	TotalTimeMin   int     `json:"totalTimeMin"`
	PointCount     int     `json:"pointCount"`
}

// Tour is an ordered visiting sequence of points.
type Tour struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Points []TourPoint   `json:"points"`
	Stats  TourStats     `json:"stats"`
	Paths  []PathSegment `json:"walkingPaths,omitempty"`
}

// PathSegment is the walking-path geometry between two consecutive stops.
// Coordinates start exactly at From's location and end exactly at To's.
type PathSegment struct {
	From        string     `json:"fromPlaceId"`
	To          string     `json:"toPlaceId"`
	Coordinates []Location `json:"coordinates"`
}

// TourVariant is an alternative slice of one tour: fewer, differently
// selected stops for a visitor with less time or a narrower interest.
type TourVariant struct {
	TourID   string  `json:"tourId"`
	Name     string  `json:"name"`
	Points   []Point `json:"points"`
	Duration string  `json:"estimatedDuration"`
}

// TourVariants groups the per-tour alternatives by kind. Thematic variants
// are keyed by theme name.
type TourVariants struct {
	Express   []TourVariant            `json:"express"`
	Thematic  map[string][]TourVariant `json:"thematic"`
	Discovery []TourVariant            `json:"discovery"`
}

// PlanningResult is the output of one planning invocation. It has no
// persistent identity; persistence belongs to a downstream collaborator.
type PlanningResult struct {
	Tours             []Tour       `json:"tours"`
	Variants          TourVariants `json:"tourVariants"`
	ClustersCount     int          `json:"clustersCount"`
	InitialToursCount int          `json:"initialToursCount"`
	FinalToursCount   int          `json:"finalToursCount"`
	TotalDistanceM    float64      `json:"totalDistanceM"`
	TotalTimeMin      int          `json:"totalTimeMin"`
	PointCount        int          `json:"pointCount"`
	MaxWalkingMinutes int          `json:"constraintMaxWalkingMinutes"`
	ProcessingSeconds float64      `json:"processingSeconds"`
}

// RecomputeStats rebuilds the tour's aggregate from its points.
func (t *Tour) RecomputeStats() {
	var dist float64
	var mins int
	for _, p := range t.Points {
		dist += p.DistFromPrevM
		mins += p.TimeFromPrevMin
	}
	t.Stats = TourStats{TotalDistanceM: dist, TotalTimeMin: mins, PointCount: len(t.Points)}
}
