package finder

import (
	"math"

	"giftfinder/internal/domain"
)

type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Empty
	Failed
)

func (p Phase) String() string {
	switch p {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	}
	return "idle"
}

type Tier int

const (
	Poor Tier = iota
	Average
	Good
	Excellent
)

// Bucket maps a score in [0,1] to its tier.
func Bucket(score float64) Tier {
	switch {
	case score >= 0.8:
		return Excellent
	case score >= 0.6:
		return Good
	case score >= 0.4:
		return Average
	}
	return Poor
}

// Key is the dictionary key of the tier label.
func (t Tier) Key() string {
	switch t {
	case Excellent:
		return "results.matchScore.excellent"
	case Good:
		return "results.matchScore.good"
	case Average:
		return "results.matchScore.average"
	}
	return "results.matchScore.fair"
}

// Percent is the badge value, round(score*100).
func Percent(score float64) int { return int(math.Round(score * 100)) }

// Outcome is what the results area shows after one submission.
type Outcome struct {
	Phase   Phase
	Results []domain.Recommendation
	Err     error
}

// Resolve settles a finished request into Succeeded, Empty or Failed.
func Resolve(recs []domain.Recommendation, err error) Outcome {
	switch {
	case err != nil:
		return Outcome{Phase: Failed, Err: err}
	case len(recs) == 0:
		return Outcome{Phase: Empty}
	}
	return Outcome{Phase: Succeeded, Results: recs}
}
