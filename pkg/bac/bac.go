// Package bac models blood alcohol concentration: the Widmark estimate of the
// level a set of drinks produces and its linear elimination over time.
//
// Levels are expressed in percent (grams per 100 ml), so 0.08 is the common
// legal driving limit.
package bac

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/finance-calculators/pkg/mathutil"
	"github.com/iwvelando/finance-calculators/pkg/projection"
)

const (
	// DefaultEliminationRate is the average BAC eliminated per hour.
	DefaultEliminationRate = 0.015
	// SoberThreshold is the level treated as fully eliminated.
	SoberThreshold = 0.001
	// LegalLimit is the driving limit the assessment reports against.
	LegalLimit = 0.08
	// MaxHours caps the elimination loop.
	MaxHours = 72

	ethanolDensity = 0.789 // g/ml
	maleRatio      = 0.68
	femaleRatio    = 0.55
)

// Sex selects the Widmark body water ratio.
type Sex int

const (
	Male Sex = iota
	Female
)

func (s Sex) String() string {
	if s == Female {
		return "female"
	}
	return "male"
}

// ParseSex parses "male"/"m" or "female"/"f".
func ParseSex(name string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	}
	return 0, projection.InvalidParameter("unknown sex %q", name)
}

func (s Sex) ratio() float64 {
	if s == Female {
		return femaleRatio
	}
	return maleRatio
}

// Drink is one serving of alcohol.
type Drink struct {
	VolumeMl   float64   `json:"volumeMl" yaml:"volumeMl"`
	ABVPercent float64   `json:"abvPercent" yaml:"abvPercent"`
	ConsumedAt time.Time `json:"consumedAt" yaml:"consumedAt"`
}

// AlcoholGrams returns the mass of ethanol in the drink.
func (d Drink) AlcoholGrams() float64 {
	return d.VolumeMl * mathutil.PercentToDecimal(d.ABVPercent) * ethanolDensity
}

func (d Drink) validate() error {
	if !mathutil.IsFinite(d.VolumeMl) || d.VolumeMl <= 0 {
		return projection.InvalidParameter("drink volume must be positive, got %v ml", d.VolumeMl)
	}
	if !mathutil.IsFinite(d.ABVPercent) || d.ABVPercent < 0 || d.ABVPercent > 100 {
		return projection.InvalidParameter("alcohol by volume must be between 0 and 100, got %v", d.ABVPercent)
	}
	return nil
}

// EstimatePeak returns the Widmark level the drinks produce if absorbed at
// once, before any elimination.
func EstimatePeak(drinks []Drink, weightKg float64, sex Sex) (float64, error) {
	if !mathutil.IsFinite(weightKg) || weightKg <= 0 {
		return 0, projection.InvalidParameter("body weight must be positive, got %v kg", weightKg)
	}
	grams := 0.0
	for _, d := range drinks {
		if err := d.validate(); err != nil {
			return 0, err
		}
		grams += d.AlcoholGrams()
	}
	return grams / (weightKg * 1000 * sex.ratio()) * 100, nil
}

// TimeUntilSober runs the level down at eliminationPerHour, one hour at a
// time, and resolves the final partial hour once the next step would cross
// SoberThreshold.
func TimeUntilSober(level, eliminationPerHour float64) (time.Duration, error) {
	if !mathutil.IsFinite(level) || level < 0 {
		return 0, projection.InvalidParameter("level must be a non-negative number, got %v", level)
	}
	if !mathutil.IsFinite(eliminationPerHour) || eliminationPerHour <= 0 {
		return 0, projection.InvalidParameter("elimination rate must be positive, got %v", eliminationPerHour)
	}

	hours := 0.0
	for level > SoberThreshold {
		if hours >= MaxHours {
			return 0, fmt.Errorf("%w: level %.3f remains after %d hours", projection.ErrDidNotConverge, level, MaxHours)
		}
		if level-eliminationPerHour <= SoberThreshold {
			hours += (level - SoberThreshold) / eliminationPerHour
			break
		}
		level -= eliminationPerHour
		hours++
	}
	return time.Duration(hours * float64(time.Hour)).Round(time.Second), nil
}

// Session is a drinking session to assess.
type Session struct {
	Drinks   []Drink
	WeightKg float64
	Sex      Sex
	// EliminationRate defaults to DefaultEliminationRate when zero.
	EliminationRate float64
}

// Point is one sample of the elimination curve.
type Point struct {
	Hour  int       `json:"hour" yaml:"hour"`
	At    time.Time `json:"at" yaml:"at"`
	Level float64   `json:"level" yaml:"level"`
}

// Assessment is the state of a session at a given moment.
type Assessment struct {
	Level          float64
	Peak           float64
	OverLimit      bool
	TimeUntilSober time.Duration
	SoberAt        time.Time
	// Curve samples the level hourly from now until sober.
	Curve []Point
}

// LevelAt replays the session's drinks in order, eliminating between them,
// and returns the level at the given moment. Drinks after at are ignored.
func (s Session) LevelAt(at time.Time) (float64, error) {
	if !mathutil.IsFinite(s.WeightKg) || s.WeightKg <= 0 {
		return 0, projection.InvalidParameter("body weight must be positive, got %v kg", s.WeightKg)
	}
	rate := s.eliminationRate()
	if rate <= 0 || !mathutil.IsFinite(rate) {
		return 0, projection.InvalidParameter("elimination rate must be positive, got %v", rate)
	}

	drinks := make([]Drink, len(s.Drinks))
	copy(drinks, s.Drinks)
	sort.SliceStable(drinks, func(i, j int) bool {
		return drinks[i].ConsumedAt.Before(drinks[j].ConsumedAt)
	})

	level := 0.0
	var (
		cursor time.Time
		seen   bool
	)
	for i, d := range drinks {
		if d.ConsumedAt.After(at) {
			break
		}
		peak, err := EstimatePeak([]Drink{d}, s.WeightKg, s.Sex)
		if err != nil {
			return 0, fmt.Errorf("drink %d: %w", i+1, err)
		}
		if seen {
			level = eliminate(level, rate, d.ConsumedAt.Sub(cursor))
		}
		level += peak
		cursor = d.ConsumedAt
		seen = true
	}
	if !seen {
		return 0, nil
	}
	return eliminate(level, rate, at.Sub(cursor)), nil
}

func (s Session) eliminationRate() float64 {
	if s.EliminationRate == 0 {
		return DefaultEliminationRate
	}
	return s.EliminationRate
}

func eliminate(level, rate float64, elapsed time.Duration) float64 {
	return math.Max(0, level-rate*elapsed.Hours())
}

// Assess evaluates the session at now. The caller supplies now so the result
// is reproducible.
func Assess(session Session, now time.Time) (Assessment, error) {
	level, err := session.LevelAt(now)
	if err != nil {
		return Assessment{}, err
	}
	peak, err := EstimatePeak(session.Drinks, session.WeightKg, session.Sex)
	if err != nil {
		return Assessment{}, err
	}
	rate := session.eliminationRate()
	remaining, err := TimeUntilSober(level, rate)
	if err != nil {
		return Assessment{}, err
	}

	assessment := Assessment{
		Level:          mathutil.RoundTo(level, 4),
		Peak:           mathutil.RoundTo(peak, 4),
		OverLimit:      level >= LegalLimit,
		TimeUntilSober: remaining,
		SoberAt:        now.Add(remaining),
	}

	current := level
	for hour := 0; ; hour++ {
		assessment.Curve = append(assessment.Curve, Point{
			Hour:  hour,
			At:    now.Add(time.Duration(hour) * time.Hour),
			Level: mathutil.RoundTo(current, 4),
		})
		if current <= SoberThreshold {
			break
		}
		current = math.Max(0, current-rate)
	}
	return assessment, nil
}
