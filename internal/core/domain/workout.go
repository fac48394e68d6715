package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidWorkout = errors.New("invalid workout data")
	ErrInvalidDate    = errors.New("invalid date (must be YYYY-MM-DD)")
)

// DateLayout is the canonical form of every workout date.
const DateLayout = "2006-01-02"

const (
	ThresholdDistance = 10.0
	ThresholdReps     = 100.0
)

type Workout struct {
	Date     string   `json:"date"`
	Distance float64  `json:"distance"`
	Crunches int      `json:"crunches"`
	Pushups  int      `json:"pushups"`
	Squats   int      `json:"squats"`
	Weight   *float64 `json:"weight,omitempty"`
}

// NormalizeDate accepts YYYY-MM-DD or YYYY/MM/DD (month and day may be unpadded)
// and returns the canonical YYYY-MM-DD form.
func NormalizeDate(raw string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "/", "-")
	if s == "" {
		return "", ErrInvalidDate
	}

	t, err := time.Parse("2006-1-2", s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t.Format(DateLayout), nil
}

// SameDate compares two dates regardless of their separator style.
func SameDate(a, b string) bool {
	na, errA := NormalizeDate(a)
	nb, errB := NormalizeDate(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return na == nb
}

// FormatDay returns the canonical date of t as seen in loc.
func FormatDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

func (w *Workout) Validate() error {
	date, err := NormalizeDate(w.Date)
	if err != nil {
		return err
	}
	w.Date = date

	if math.IsNaN(w.Distance) || math.IsInf(w.Distance, 0) || w.Distance < 0 {
		return fmt.Errorf("%w: distance cannot be negative", ErrInvalidWorkout)
	}
	if w.Crunches < 0 || w.Pushups < 0 || w.Squats < 0 {
		return fmt.Errorf("%w: repetitions cannot be negative", ErrInvalidWorkout)
	}
	if w.Weight != nil && (math.IsNaN(*w.Weight) || *w.Weight < 0) {
		return fmt.Errorf("%w: weight cannot be negative", ErrInvalidWorkout)
	}
	return nil
}

// storedWorkout is the on-disk shape. Numbers go through flexNumber so older
// slots that saved values as strings ("weight":"70") still load.
type storedWorkout struct {
	Date     string     `json:"date"`
	Distance flexNumber `json:"distance"`
	Crunches flexNumber `json:"crunches"`
	Pushups  flexNumber `json:"pushups"`
	Squats   flexNumber `json:"squats"`
	Weight   flexNumber `json:"weight"`
}

type flexNumber struct {
	set   bool
	value float64
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
		if s == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	n.set = true
	n.value = v
	return nil
}

func (w *Workout) UnmarshalJSON(data []byte) error {
	var raw storedWorkout
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	date, err := NormalizeDate(raw.Date)
	if err != nil {
		return err
	}

	var weight *float64
	if raw.Weight.set {
		v := raw.Weight.value
		weight = &v
	}

	*w = Workout{
		Date:     date,
		Distance: raw.Distance.value,
		Crunches: int(math.Round(raw.Crunches.value)),
		Pushups:  int(math.Round(raw.Pushups.value)),
		Squats:   int(math.Round(raw.Squats.value)),
		Weight:   weight,
	}
	return nil
}

// WeightPoint is one sample of the weight progress chart.
type WeightPoint struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

type FormDefaults struct {
	Date     string  `json:"date"`
	Distance float64 `json:"distance"`
	Crunches int     `json:"crunches"`
	Pushups  int     `json:"pushups"`
	Squats   int     `json:"squats"`
	Weight   float64 `json:"weight"`
}

const (
	DefaultFormDistance = 4
	DefaultFormReps     = 40
	DefaultFormWeight   = 100
)
