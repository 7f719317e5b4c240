package schedule

import (
	"fmt"
	"time"

	"github.com/staffhubio/staffhub/db"
)

// Conflict types, in detection priority order.
const (
	ConflictOverlap       = "overlap"
	ConflictUnavailable   = "unavailable"
	ConflictExceededHours = "exceeded_hours"
	ConflictRotation      = "rotation_conflict"
	ConflictNone          = "none"
)

// Conflict severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
	SeverityNone     = "none"
)

const minutesPerDay = 24 * 60

// Default working-hour caps. Both are configuration inputs; these values
// apply when the caller passes zero limits.
const (
	DefaultWeeklyCapMinutes = 48 * 60
	DefaultDailyCapMinutes  = 12 * 60
)

// HourLimits caps an employee's scheduled minutes per week (Mon-Sun) and
// per calendar day.
type HourLimits struct {
	WeeklyCapMinutes int `json:"weekly_cap_minutes"`
	DailyCapMinutes  int `json:"daily_cap_minutes"`
}

// DefaultHourLimits returns the organization-wide default caps.
func DefaultHourLimits() HourLimits {
	return HourLimits{
		WeeklyCapMinutes: DefaultWeeklyCapMinutes,
		DailyCapMinutes:  DefaultDailyCapMinutes,
	}
}

// RotationContext is the employee's active rotation, when one exists.
type RotationContext struct {
	Pattern    db.RotationPattern
	AnchorDate string // YYYY-MM-DD
}

// ConflictInput carries everything the detector needs. The caller fetches
// the employee's existing assignments (at minimum the Mon-Sun week
// containing Date plus the adjacent days, for wraparound shifts) and the
// unavailability fact before calling; the detector itself never reads
// state and never mutates anything.
type ConflictInput struct {
	EmployeeID string
	Date       string // YYYY-MM-DD
	ShiftStart string // HH:MM
	ShiftEnd   string // HH:MM

	Existing          []db.ShiftAssignment
	Unavailable       bool
	UnavailableReason string
	Rotation          *RotationContext
	Limits            HourLimits
}

// DetectConflicts classifies a proposed assignment against the employee's
// existing commitments. Exactly one result comes back; the first matching
// check wins: overlap, unavailable, exceeded hours, rotation rest day,
// none. Conflicts are legitimate results, not errors — the only errors are
// unparsable times or dates.
func DetectConflicts(in ConflictInput) (db.ConflictResult, error) {
	date, err := parseDate(in.Date)
	if err != nil {
		return db.ConflictResult{}, err
	}
	propStart, propEnd, err := clockInterval(in.ShiftStart, in.ShiftEnd)
	if err != nil {
		return db.ConflictResult{}, err
	}

	limits := in.Limits
	if limits.WeeklyCapMinutes == 0 {
		limits.WeeklyCapMinutes = DefaultWeeklyCapMinutes
	}
	if limits.DailyCapMinutes == 0 {
		limits.DailyCapMinutes = DefaultDailyCapMinutes
	}

	// 1. Overlap with an existing shift (critical).
	for i := range in.Existing {
		ex := &in.Existing[i]
		if ex.EmployeeID != in.EmployeeID || ex.Status == db.ShiftStatusCancelled {
			continue
		}
		exDate, err := parseDate(ex.Date)
		if err != nil {
			continue // skip malformed stored rows rather than failing the check
		}
		dayOffset := daysBetween(date, exDate)
		if dayOffset < -1 || dayOffset > 1 {
			continue
		}
		exStart, exEnd, err := clockInterval(ex.ShiftStart, ex.ShiftEnd)
		if err != nil {
			continue
		}
		// Project the existing shift onto the proposed date's 24h axis so a
		// 22:00-06:00 shift from the previous day still occupies 00:00-06:00
		// of the proposed date.
		exStart += dayOffset * minutesPerDay
		exEnd += dayOffset * minutesPerDay
		if propStart < exEnd && exStart < propEnd {
			shift := *ex
			return db.ConflictResult{
				Type:     ConflictOverlap,
				Severity: SeverityCritical,
				Message: fmt.Sprintf("employee %s already has a shift on %s from %s to %s",
					in.EmployeeID, ex.Date, ex.ShiftStart, ex.ShiftEnd),
				ConflictingShift: &shift,
				Resolution:       "choose a non-overlapping time or reassign the existing shift",
			}, nil
		}
	}

	// 2. Recorded unavailability (critical).
	if in.Unavailable {
		msg := fmt.Sprintf("employee %s is unavailable on %s", in.EmployeeID, in.Date)
		if in.UnavailableReason != "" {
			msg += ": " + in.UnavailableReason
		}
		return db.ConflictResult{
			Type:       ConflictUnavailable,
			Severity:   SeverityCritical,
			Message:    msg,
			Resolution: "pick a different date or assign another employee",
		}, nil
	}

	// 3. Weekly/daily hour caps (warning).
	proposedMinutes := propEnd - propStart
	weekStart := StartOfWeek(date)
	weekEnd := weekStart.AddDate(0, 0, 6)

	weekMinutes := proposedMinutes
	dayMinutes := proposedMinutes
	for i := range in.Existing {
		ex := &in.Existing[i]
		if ex.EmployeeID != in.EmployeeID || ex.Status == db.ShiftStatusCancelled {
			continue
		}
		exDate, err := parseDate(ex.Date)
		if err != nil {
			continue
		}
		exStart, exEnd, err := clockInterval(ex.ShiftStart, ex.ShiftEnd)
		if err != nil {
			continue
		}
		dur := exEnd - exStart
		if !exDate.Before(weekStart) && !exDate.After(weekEnd) {
			weekMinutes += dur
		}
		if exDate.Equal(date) {
			dayMinutes += dur
		}
	}
	if weekMinutes > limits.WeeklyCapMinutes {
		return db.ConflictResult{
			Type:     ConflictExceededHours,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("employee %s would reach %s in the week of %s, over the %s cap",
				in.EmployeeID, formatMinutes(weekMinutes), weekStart.Format(DateLayout), formatMinutes(limits.WeeklyCapMinutes)),
			Resolution: "shorten the shift or move it to the next week",
		}, nil
	}
	if dayMinutes > limits.DailyCapMinutes {
		return db.ConflictResult{
			Type:     ConflictExceededHours,
			Severity: SeverityWarning,
			Message: fmt.Sprintf("employee %s would reach %s on %s, over the %s daily cap",
				in.EmployeeID, formatMinutes(dayMinutes), in.Date, formatMinutes(limits.DailyCapMinutes)),
			Resolution: "shorten the shift or move it to another day",
		}, nil
	}

	// 4. Rotation rest day (warning).
	if in.Rotation != nil && in.Rotation.Pattern.CycleLength > 0 {
		anchor, err := parseDate(in.Rotation.AnchorDate)
		if err != nil {
			return db.ConflictResult{}, err
		}
		if !IsWorkDay(in.Rotation.Pattern, anchor, date) {
			return db.ConflictResult{
				Type:     ConflictRotation,
				Severity: SeverityWarning,
				Message: fmt.Sprintf("%s is a rest day in employee %s's rotation",
					in.Date, in.EmployeeID),
				Resolution: "assign a rotation work day or acknowledge the rest-day override",
			}, nil
		}
	}

	return db.ConflictResult{Type: ConflictNone, Severity: SeverityNone}, nil
}

// ShiftsOverlap reports whether two assignments occupy intersecting time,
// including shifts that wrap past midnight into the other's date. The
// relation is symmetric.
func ShiftsOverlap(a, b db.ShiftAssignment) (bool, error) {
	aDate, err := parseDate(a.Date)
	if err != nil {
		return false, err
	}
	bDate, err := parseDate(b.Date)
	if err != nil {
		return false, err
	}
	offset := daysBetween(aDate, bDate)
	if offset < -1 || offset > 1 {
		return false, nil
	}
	aStart, aEnd, err := clockInterval(a.ShiftStart, a.ShiftEnd)
	if err != nil {
		return false, err
	}
	bStart, bEnd, err := clockInterval(b.ShiftStart, b.ShiftEnd)
	if err != nil {
		return false, err
	}
	bStart += offset * minutesPerDay
	bEnd += offset * minutesPerDay
	return aStart < bEnd && bStart < aEnd, nil
}

// ShiftDurationMinutes returns the wraparound-adjusted length of a shift.
func ShiftDurationMinutes(shiftStart, shiftEnd string) (int, error) {
	start, end, err := clockInterval(shiftStart, shiftEnd)
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

// clockInterval converts HH:MM strings into a half-open minute interval on
// a 24h axis, adding a day to the end whenever it does not fall strictly
// after the start.
func clockInterval(shiftStart, shiftEnd string) (int, int, error) {
	start, err := parseClock(shiftStart)
	if err != nil {
		return 0, 0, err
	}
	end, err := parseClock(shiftEnd)
	if err != nil {
		return 0, 0, err
	}
	if end <= start {
		end += minutesPerDay
	}
	return start, end, nil
}

func parseClock(v string) (int, error) {
	t, err := time.Parse(ClockLayout, v)
	if err != nil {
		return 0, &InvalidTimeRangeError{Value: v}
	}
	return t.Hour()*60 + t.Minute(), nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, &InvalidTimeRangeError{Value: v}
	}
	return t, nil
}

// StartOfWeek returns the Monday of the week containing d.
func StartOfWeek(d time.Time) time.Time {
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the week
	}
	return d.AddDate(0, 0, -(weekday - 1))
}

func formatMinutes(m int) string {
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
