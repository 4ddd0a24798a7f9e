// internal/ranking/ranking.go
package ranking

import (
	"sort"

	"property-report-bot/internal/models"
)

// RankedProperty pairs a property record with its composite score.
type RankedProperty struct {
	Property models.Record
	Score    float64
}

// Score returns the arithmetic mean of the sub-ratings that are present and
// numeric. A record with no usable sub-rating scores 0.0; note this sentinel
// is indistinguishable from a genuinely reported rating of 0 in the same
// channel; rankings treat both the same.
func Score(r models.Record) float64 {
	var sum float64
	var count int

	if v, ok := r.AirbnbRating(); ok {
		sum += v
		count++
	}
	if v, ok := r.BookingRating(); ok {
		sum += v
		count++
	}

	if count == 0 {
		return 0.0
	}
	return sum / float64(count)
}

// TopRated scores every record, sorts by composite score descending and
// truncates to limit. The sort is stable: equal scores keep the order the
// data source returned them in. A limit beyond the input size returns
// everything; callers display the returned length, not the requested limit.
func TopRated(properties []models.Record, limit int) []RankedProperty {
	ranked := make([]RankedProperty, 0, len(properties))
	for _, p := range properties {
		ranked = append(ranked, RankedProperty{Property: p, Score: Score(p)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if limit < 0 {
		limit = 0
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
