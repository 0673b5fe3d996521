package reaction

import "time"

// Rating classifies a successful reaction time.
type Rating string

const (
	RatingExceptional   Rating = "exceptional"
	RatingVeryFast      Rating = "very fast"
	RatingFast          Rating = "fast"
	RatingGood          Rating = "good"
	RatingCouldBeFaster Rating = "could be faster"
)

var ratingBuckets = []struct {
	below  time.Duration
	rating Rating
}{
	{200 * time.Millisecond, RatingExceptional},
	{300 * time.Millisecond, RatingVeryFast},
	{400 * time.Millisecond, RatingFast},
	{500 * time.Millisecond, RatingGood},
}

// Rate returns the first bucket whose exclusive upper bound is above d.
func Rate(d time.Duration) Rating {
	for _, b := range ratingBuckets {
		if d < b.below {
			return b.rating
		}
	}
	return RatingCouldBeFaster
}
