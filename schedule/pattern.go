// Package schedule implements the workforce scheduling core: cyclic
// rotation patterns projected onto real calendars, conflict detection for
// proposed shift assignments, and coverage analytics over assignment sets.
//
// Everything in this package is a pure function over in-memory data. The
// callers (services, workers) fetch state from the store and interpret the
// results; nothing here touches storage or carries hidden state.
package schedule

import (
	"math"
	"time"

	"github.com/staffhubio/staffhub/db"
)

// DateLayout is the wire format for calendar dates throughout the API.
const DateLayout = "2006-01-02"

// ClockLayout is the wire format for wall-clock shift times.
const ClockLayout = "15:04"

// Preset pattern types.
const (
	PatternType4x2    = "4x2"
	PatternType5x2    = "5x2"
	PatternType6x1    = "6x1"
	PatternType3x2x2  = "3x2x2"
	PatternTypeCustom = "custom"
)

// presetPatterns are the canonical work/rest sequences for the built-in
// rotation types. 3x2x2 shows why the flag array exists at all: its work
// days are not consecutive.
var presetPatterns = map[string][]int{
	PatternType4x2:   {1, 1, 1, 1, 0, 0},
	PatternType5x2:   {1, 1, 1, 1, 1, 0, 0},
	PatternType6x1:   {1, 1, 1, 1, 1, 1, 0},
	PatternType3x2x2: {1, 1, 1, 0, 0, 1, 1, 0, 0},
}

// BuildPattern returns the canonical pattern for a preset type, or derives
// one from the given custom sequence. Custom sequences must be non-empty
// and strictly binary.
func BuildPattern(patternType string, custom []int) (db.RotationPattern, error) {
	if patternType == PatternTypeCustom {
		if len(custom) == 0 {
			return db.RotationPattern{}, &InvalidPatternError{Reason: "custom pattern is empty"}
		}
		work := 0
		days := make([]int, len(custom))
		for i, v := range custom {
			if v != 0 && v != 1 {
				return db.RotationPattern{}, &InvalidPatternError{Reason: "pattern values must be 0 or 1"}
			}
			days[i] = v
			work += v
		}
		return db.RotationPattern{
			WorkDays:    work,
			RestDays:    len(days) - work,
			Pattern:     days,
			CycleLength: len(days),
		}, nil
	}

	preset, ok := presetPatterns[patternType]
	if !ok {
		return db.RotationPattern{}, &InvalidPatternError{Reason: "unknown pattern type " + patternType}
	}
	work := 0
	days := make([]int, len(preset))
	copy(days, preset)
	for _, v := range days {
		work += v
	}
	return db.RotationPattern{
		WorkDays:    work,
		RestDays:    len(days) - work,
		Pattern:     days,
		CycleLength: len(days),
	}, nil
}

// IsWorkDay reports whether target falls on a work day of the cycle anchored
// at anchor. The cycle is indexed in both directions: dates before the
// anchor map back into the cycle via floored modulo.
//
// This is the single authoritative answer to "is employee X scheduled to
// work on day Y" for rotation-based staffing.
func IsWorkDay(p db.RotationPattern, anchor, target time.Time) bool {
	if p.CycleLength == 0 {
		return false
	}
	offset := daysBetween(anchor, target)
	idx := ((offset % p.CycleLength) + p.CycleLength) % p.CycleLength
	return p.Pattern[idx] == 1
}

// ProjectedDay is one calendar date of a projected rotation range.
type ProjectedDay struct {
	Date      string `json:"date"`
	IsWorkDay bool   `json:"is_work_day"`
}

// ProjectRange applies the pattern to every date in [from, to] inclusive.
func ProjectRange(p db.RotationPattern, anchor, from, to time.Time) ([]ProjectedDay, error) {
	from = truncateToDay(from)
	to = truncateToDay(to)
	if to.Before(from) {
		return nil, &InvalidRangeError{From: from.Format(DateLayout), To: to.Format(DateLayout)}
	}

	days := make([]ProjectedDay, 0, daysBetween(from, to)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, ProjectedDay{
			Date:      d.Format(DateLayout),
			IsWorkDay: IsWorkDay(p, anchor, d),
		})
	}
	return days, nil
}

// PatternStats summarizes a projected range.
type PatternStats struct {
	WorkDays        int `json:"work_days"`
	RestDays        int `json:"rest_days"`
	CoveragePercent int `json:"coverage_percent"`
}

// RangeStats counts work and rest days over [from, to] and derives the work
// share as a rounded percentage.
func RangeStats(p db.RotationPattern, anchor, from, to time.Time) (PatternStats, error) {
	days, err := ProjectRange(p, anchor, from, to)
	if err != nil {
		return PatternStats{}, err
	}

	stats := PatternStats{}
	for _, d := range days {
		if d.IsWorkDay {
			stats.WorkDays++
		} else {
			stats.RestDays++
		}
	}
	stats.CoveragePercent = roundPercent(stats.WorkDays, len(days))
	return stats, nil
}

// daysBetween returns the signed number of calendar days from a to b,
// ignoring clock time and zone.
func daysBetween(a, b time.Time) int {
	return int(truncateToDay(b).Sub(truncateToDay(a)).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
