package domain

import "math"

// ActivityTotals holds one figure per scored activity.
type ActivityTotals struct {
	Distance float64 `json:"distance"`
	Crunches float64 `json:"crunches"`
	Pushups  float64 `json:"pushups"`
	Squats   float64 `json:"squats"`
}

type PunchCalculation struct {
	CompletePunches int            `json:"complete_punches"`
	Remaining       ActivityTotals `json:"remaining"`
}

type Dashboard struct {
	PunchCalculation
	Totals   ActivityTotals `json:"totals"`
	Progress ActivityTotals `json:"progress"`
	Workouts int            `json:"workouts"`
}

func SumActivities(workouts []Workout) ActivityTotals {
	var t ActivityTotals
	for _, w := range workouts {
		t.Distance += w.Distance
		t.Crunches += float64(w.Crunches)
		t.Pushups += float64(w.Pushups)
		t.Squats += float64(w.Squats)
	}
	return t
}

// CalculatePunches scores the whole history. A punch needs every activity to
// reach its threshold, so the weakest activity decides the count.
func CalculatePunches(workouts []Workout) PunchCalculation {
	totals := SumActivities(workouts)

	punches := int(math.Min(
		math.Min(math.Floor(totals.Distance/ThresholdDistance), math.Floor(totals.Crunches/ThresholdReps)),
		math.Min(math.Floor(totals.Pushups/ThresholdReps), math.Floor(totals.Squats/ThresholdReps)),
	))

	next := float64(punches + 1)

	return PunchCalculation{
		CompletePunches: punches,
		Remaining: ActivityTotals{
			Distance: math.Max(0, next*ThresholdDistance-totals.Distance),
			Crunches: math.Max(0, next*ThresholdReps-totals.Crunches),
			Pushups:  math.Max(0, next*ThresholdReps-totals.Pushups),
			Squats:   math.Max(0, next*ThresholdReps-totals.Squats),
		},
	}
}

// BuildDashboard adds totals and per-activity punch progress to the score.
func BuildDashboard(workouts []Workout) Dashboard {
	totals := SumActivities(workouts)

	return Dashboard{
		PunchCalculation: CalculatePunches(workouts),
		Totals:           totals,
		Progress: ActivityTotals{
			Distance: progress(totals.Distance, ThresholdDistance),
			Crunches: progress(totals.Crunches, ThresholdReps),
			Pushups:  progress(totals.Pushups, ThresholdReps),
			Squats:   progress(totals.Squats, ThresholdReps),
		},
		Workouts: len(workouts),
	}
}

// progress is total/threshold rounded to one decimal.
func progress(total, threshold float64) float64 {
	return math.Round(total*10/threshold) / 10
}
