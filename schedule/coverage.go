package schedule

import (
	"sort"
	"time"

	"github.com/staffhubio/staffhub/db"
)

// Coverage day classifications.
const (
	CoverageOverstaffed  = "overstaffed"
	CoverageAdequate     = "adequate"
	CoverageUnderstaffed = "understaffed"
)

// Classification thresholds, percent of required staffing. 100 and up is
// overstaffed (inclusive), 80 up to 100 is adequate, below 80 understaffed.
const (
	overstaffedThreshold = 100
	adequateThreshold    = 80
)

// DefaultRequiredStaffPerDay is the fallback staffing target when a
// department has none configured.
const DefaultRequiredStaffPerDay = 5

// CoverageReport bundles the per-day analyses, the weekly trend rollups,
// and the overall period summary.
type CoverageReport struct {
	Days    []db.CoverageDayAnalysis `json:"days"`
	Weeks   []db.CoverageTrend       `json:"weeks"`
	Summary db.CoverageSummary       `json:"summary"`
}

// AnalyzeCoverage turns an assignment set into staffing-health analytics
// against a per-day required headcount. Assignments are assumed pre-filtered
// to the period and department of interest; cancelled rows are excluded
// here. Dates with no assignments at all do not appear in the output —
// callers wanting them represented use AnalyzeCoverageRange.
func AnalyzeCoverage(assignments []db.ShiftAssignment, requiredStaffPerDay int) CoverageReport {
	return analyze(assignments, requiredStaffPerDay, nil)
}

// AnalyzeCoverageRange behaves like AnalyzeCoverage but seeds every date in
// [from, to] inclusive, so empty days show up as 0% understaffed entries.
func AnalyzeCoverageRange(assignments []db.ShiftAssignment, requiredStaffPerDay int, from, to time.Time) (CoverageReport, error) {
	from = truncateToDay(from)
	to = truncateToDay(to)
	if to.Before(from) {
		return CoverageReport{}, &InvalidRangeError{From: from.Format(DateLayout), To: to.Format(DateLayout)}
	}
	seed := make([]string, 0, daysBetween(from, to)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		seed = append(seed, d.Format(DateLayout))
	}
	return analyze(assignments, requiredStaffPerDay, seed), nil
}

func analyze(assignments []db.ShiftAssignment, requiredStaffPerDay int, seedDates []string) CoverageReport {
	if requiredStaffPerDay <= 0 {
		requiredStaffPerDay = DefaultRequiredStaffPerDay
	}

	byDate := make(map[string][]*db.ShiftAssignment)
	for _, d := range seedDates {
		byDate[d] = nil
	}
	for i := range assignments {
		a := &assignments[i]
		if a.Status == db.ShiftStatusCancelled {
			continue
		}
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	report := CoverageReport{Days: make([]db.CoverageDayAnalysis, 0, len(dates))}
	weekIndex := make(map[int]*db.CoverageTrend)
	weekPercentSums := make(map[int]int)
	weekDayCounts := make(map[int]int)
	percentSum := 0

	for _, dateStr := range dates {
		rows := byDate[dateStr]

		day := db.CoverageDayAnalysis{
			Date:                dateStr,
			AssignmentCount:     len(rows),
			DepartmentBreakdown: make(map[string]int),
		}
		for _, a := range rows {
			dept := a.DepartmentName
			if dept == "" {
				dept = a.DepartmentID
			}
			day.DepartmentBreakdown[dept]++
			if a.HasConflict {
				day.ConflictCount++
			}
		}
		day.CoveragePercent = roundPercent(day.AssignmentCount, requiredStaffPerDay)
		day.Status = classifyCoverage(day.CoveragePercent)
		report.Days = append(report.Days, day)

		percentSum += day.CoveragePercent
		report.Summary.TotalConflicts += day.ConflictCount
		switch day.Status {
		case CoverageOverstaffed:
			report.Summary.OverstaffedDays++
		case CoverageAdequate:
			report.Summary.AdequateDays++
		default:
			report.Summary.UnderstaffedDays++
		}

		date, err := time.Parse(DateLayout, dateStr)
		if err != nil {
			continue // unparsable group keys stay out of the weekly rollup
		}
		week := (date.Day()-1)/7 + 1
		trend, ok := weekIndex[week]
		if !ok {
			trend = &db.CoverageTrend{Week: week}
			weekIndex[week] = trend
		}
		trend.TotalAssignments += day.AssignmentCount
		if day.Status == CoverageUnderstaffed {
			trend.ConflictDays++
		}
		weekPercentSums[week] += day.CoveragePercent
		weekDayCounts[week]++
	}

	weeks := make([]int, 0, len(weekIndex))
	for w := range weekIndex {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	for _, w := range weeks {
		trend := weekIndex[w]
		trend.AveragePercent = roundPercent(weekPercentSums[w], weekDayCounts[w]*100)
		report.Weeks = append(report.Weeks, *trend)
	}

	if len(report.Days) > 0 {
		report.Summary.AveragePercent = roundPercent(percentSum, len(report.Days)*100)
	}
	return report
}

func classifyCoverage(percent int) string {
	switch {
	case percent >= overstaffedThreshold:
		return CoverageOverstaffed
	case percent >= adequateThreshold:
		return CoverageAdequate
	default:
		return CoverageUnderstaffed
	}
}
