package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SentinelValue in an activity field turns a form submission into a command:
// one field deletes that day's record, two or more erase the whole history.
const SentinelValue = -1

// WorkoutForm is the raw input collected by the entry form.
type WorkoutForm struct {
	Date     string `json:"date"`
	Distance string `json:"distance"`
	Crunches string `json:"crunches"`
	Pushups  string `json:"pushups"`
	Squats   string `json:"squats"`
	Weight   string `json:"weight"`
}

type Command interface {
	command()
}

type UpsertCommand struct {
	Workout Workout
}

type DeleteDateCommand struct {
	Date string
}

type ClearAllCommand struct{}

func (UpsertCommand) command()     {}
func (DeleteDateCommand) command() {}
func (ClearAllCommand) command()   {}

// ParseSubmission coerces the form and resolves it into exactly one command.
func ParseSubmission(form WorkoutForm) (Command, error) {
	distance, err := parseNumber("distance", form.Distance)
	if err != nil {
		return nil, err
	}
	crunches, err := parseNumber("crunches", form.Crunches)
	if err != nil {
		return nil, err
	}
	pushups, err := parseNumber("pushups", form.Pushups)
	if err != nil {
		return nil, err
	}
	squats, err := parseNumber("squats", form.Squats)
	if err != nil {
		return nil, err
	}

	sentinels := 0
	for _, v := range []float64{distance, crunches, pushups, squats} {
		if v == SentinelValue {
			sentinels++
		}
	}

	switch {
	case sentinels >= 2:
		return ClearAllCommand{}, nil
	case sentinels == 1:
		date, err := NormalizeDate(form.Date)
		if err != nil {
			return nil, err
		}
		return DeleteDateCommand{Date: date}, nil
	}

	w := Workout{
		Date:     form.Date,
		Distance: distance,
	}
	if w.Crunches, err = toReps("crunches", crunches); err != nil {
		return nil, err
	}
	if w.Pushups, err = toReps("pushups", pushups); err != nil {
		return nil, err
	}
	if w.Squats, err = toReps("squats", squats); err != nil {
		return nil, err
	}

	if strings.TrimSpace(form.Weight) != "" {
		weight, err := parseNumber("weight", form.Weight)
		if err != nil {
			return nil, err
		}
		w.Weight = &weight
	}

	if err := w.Validate(); err != nil {
		return nil, err
	}
	return UpsertCommand{Workout: w}, nil
}

func parseNumber(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidWorkout, field)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidWorkout, field)
	}
	return v, nil
}

func toReps(field string, v float64) (int, error) {
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s must be a whole number", ErrInvalidWorkout, field)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s cannot be negative", ErrInvalidWorkout, field)
	}
	return int(v), nil
}
