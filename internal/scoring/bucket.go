// Package scoring turns raw questionnaire responses into scored answers,
// category totals, a grade and the report payload. It performs no I/O and
// imports nothing from the storage or transport layers, so every function can
// be tested without a database or network.
package scoring

import "garmentscore/internal/model"

// Bucket thresholds, as a percentage of the question's max score.
const (
	ExcellentMinPct        = 80
	GoodMinPct             = 60
	NeedsImprovementMinPct = 40
)

// Heat map palette.
const (
	ColorExcellent        = "#16a34a"
	ColorGood             = "#86efac"
	ColorNeedsImprovement = "#facc15"
	ColorCritical         = "#dc2626"
	ColorNA               = "#9ca3af"
)

var bucketColors = map[model.Bucket]string{
	model.BucketExcellent:        ColorExcellent,
	model.BucketGood:             ColorGood,
	model.BucketNeedsImprovement: ColorNeedsImprovement,
	model.BucketCritical:         ColorCritical,
	model.BucketNA:               ColorNA,
}

// BucketFor assigns the performance bucket for score out of max. Comparison is
// done in integers so 4/5 lands on the 80% boundary exactly.
func BucketFor(score, max int) model.Bucket {
	if max <= 0 {
		return model.BucketNA
	}
	switch {
	case score*100 >= ExcellentMinPct*max:
		return model.BucketExcellent
	case score*100 >= GoodMinPct*max:
		return model.BucketGood
	case score*100 >= NeedsImprovementMinPct*max:
		return model.BucketNeedsImprovement
	default:
		return model.BucketCritical
	}
}

// BucketForPercentage buckets an already computed percentage, used for
// category-level wording.
func BucketForPercentage(pct float64) model.Bucket {
	switch {
	case pct >= ExcellentMinPct:
		return model.BucketExcellent
	case pct >= GoodMinPct:
		return model.BucketGood
	case pct >= NeedsImprovementMinPct:
		return model.BucketNeedsImprovement
	default:
		return model.BucketCritical
	}
}

// ColorFor returns the heat map color of a bucket; unknown buckets are gray.
func ColorFor(b model.Bucket) string {
	if c, ok := bucketColors[b]; ok {
		return c
	}
	return ColorNA
}
