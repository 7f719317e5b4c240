package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhubio/staffhub/db"
)

func coverageShift(shiftDate, departmentName string, hasConflict bool) db.ShiftAssignment {
	return db.ShiftAssignment{
		EmployeeID:     "emp",
		Date:           shiftDate,
		ShiftStart:     "08:00",
		ShiftEnd:       "16:00",
		Status:         db.ShiftStatusScheduled,
		DepartmentName: departmentName,
		HasConflict:    hasConflict,
	}
}

func repeatShifts(shiftDate string, n int) []db.ShiftAssignment {
	shifts := make([]db.ShiftAssignment, 0, n)
	for i := 0; i < n; i++ {
		shifts = append(shifts, coverageShift(shiftDate, "Operations", false))
	}
	return shifts
}

func TestAnalyzeCoverage_ClassificationBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		assignments int
		wantPercent int
		wantStatus  string
	}{
		{"five of five is overstaffed", 5, 100, CoverageOverstaffed},
		{"six of five is overstaffed", 6, 120, CoverageOverstaffed},
		{"four of five is adequate", 4, 80, CoverageAdequate},
		{"three of five is understaffed", 3, 60, CoverageUnderstaffed},
		{"one of five is understaffed", 1, 20, CoverageUnderstaffed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := AnalyzeCoverage(repeatShifts("2025-10-06", tt.assignments), 5)
			require.Len(t, report.Days, 1)
			assert.Equal(t, tt.assignments, report.Days[0].AssignmentCount)
			assert.Equal(t, tt.wantPercent, report.Days[0].CoveragePercent)
			assert.Equal(t, tt.wantStatus, report.Days[0].Status)
		})
	}
}

func TestAnalyzeCoverage_EmptyDaysAbsent(t *testing.T) {
	assignments := append(repeatShifts("2025-10-06", 2), repeatShifts("2025-10-08", 3)...)

	report := AnalyzeCoverage(assignments, 5)
	require.Len(t, report.Days, 2)
	assert.Equal(t, "2025-10-06", report.Days[0].Date)
	assert.Equal(t, "2025-10-08", report.Days[1].Date) // the 7th never appears
}

func TestAnalyzeCoverageRange_SeedsEmptyDays(t *testing.T) {
	assignments := repeatShifts("2025-10-07", 4)

	report, err := AnalyzeCoverageRange(assignments, 5, date("2025-10-06"), date("2025-10-08"))
	require.NoError(t, err)
	require.Len(t, report.Days, 3)

	assert.Equal(t, "2025-10-06", report.Days[0].Date)
	assert.Equal(t, 0, report.Days[0].AssignmentCount)
	assert.Equal(t, 0, report.Days[0].CoveragePercent)
	assert.Equal(t, CoverageUnderstaffed, report.Days[0].Status)

	assert.Equal(t, 4, report.Days[1].AssignmentCount)
	assert.Equal(t, CoverageAdequate, report.Days[1].Status)

	assert.Equal(t, CoverageUnderstaffed, report.Days[2].Status)
}

func TestAnalyzeCoverageRange_InvalidRange(t *testing.T) {
	_, err := AnalyzeCoverageRange(nil, 5, date("2025-10-08"), date("2025-10-06"))
	require.Error(t, err)
	var rangeErr *InvalidRangeError
	assert.ErrorAs(t, err, &rangeErr)
}

func TestAnalyzeCoverage_DepartmentBreakdownAndConflicts(t *testing.T) {
	assignments := []db.ShiftAssignment{
		coverageShift("2025-10-06", "Operations", false),
		coverageShift("2025-10-06", "Operations", true),
		coverageShift("2025-10-06", "Security", false),
	}

	report := AnalyzeCoverage(assignments, 5)
	require.Len(t, report.Days, 1)

	day := report.Days[0]
	assert.Equal(t, 3, day.AssignmentCount)
	assert.Equal(t, map[string]int{"Operations": 2, "Security": 1}, day.DepartmentBreakdown)
	assert.Equal(t, 1, day.ConflictCount)
	assert.Equal(t, 1, report.Summary.TotalConflicts)
}

func TestAnalyzeCoverage_ExcludesCancelled(t *testing.T) {
	cancelled := coverageShift("2025-10-06", "Operations", false)
	cancelled.Status = db.ShiftStatusCancelled
	assignments := append(repeatShifts("2025-10-06", 4), cancelled)

	report := AnalyzeCoverage(assignments, 5)
	require.Len(t, report.Days, 1)
	assert.Equal(t, 4, report.Days[0].AssignmentCount)
}

func TestAnalyzeCoverage_WeeklyTrend(t *testing.T) {
	// Two days in week 1 of the month, one in week 2.
	var assignments []db.ShiftAssignment
	assignments = append(assignments, repeatShifts("2025-10-02", 5)...) // 100%
	assignments = append(assignments, repeatShifts("2025-10-03", 3)...) // 60%
	assignments = append(assignments, repeatShifts("2025-10-09", 4)...) // 80%

	report := AnalyzeCoverage(assignments, 5)
	require.Len(t, report.Weeks, 2)

	week1 := report.Weeks[0]
	assert.Equal(t, 1, week1.Week)
	assert.Equal(t, 80, week1.AveragePercent) // mean of 100 and 60
	assert.Equal(t, 8, week1.TotalAssignments)
	assert.Equal(t, 1, week1.ConflictDays) // the 60% day

	week2 := report.Weeks[1]
	assert.Equal(t, 2, week2.Week)
	assert.Equal(t, 80, week2.AveragePercent)
	assert.Equal(t, 4, week2.TotalAssignments)
	assert.Equal(t, 0, week2.ConflictDays)
}

func TestAnalyzeCoverage_Summary(t *testing.T) {
	var assignments []db.ShiftAssignment
	assignments = append(assignments, repeatShifts("2025-10-06", 5)...) // overstaffed
	assignments = append(assignments, repeatShifts("2025-10-07", 4)...) // adequate
	assignments = append(assignments, repeatShifts("2025-10-08", 2)...) // understaffed

	report := AnalyzeCoverage(assignments, 5)
	assert.Equal(t, 1, report.Summary.OverstaffedDays)
	assert.Equal(t, 1, report.Summary.AdequateDays)
	assert.Equal(t, 1, report.Summary.UnderstaffedDays)
	assert.Equal(t, 73, report.Summary.AveragePercent) // mean of 100, 80, 40
}

func TestAnalyzeCoverage_DefaultTarget(t *testing.T) {
	report := AnalyzeCoverage(repeatShifts("2025-10-06", 5), 0)
	require.Len(t, report.Days, 1)
	assert.Equal(t, 100, report.Days[0].CoveragePercent)
}
