package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhubio/staffhub/db"
)

func shift(employeeID, shiftDate, start, end string) db.ShiftAssignment {
	return db.ShiftAssignment{
		ID:         "shift-" + shiftDate + "-" + start,
		EmployeeID: employeeID,
		Date:       shiftDate,
		ShiftStart: start,
		ShiftEnd:   end,
		Status:     db.ShiftStatusScheduled,
	}
}

func TestDetectConflicts_Overlap(t *testing.T) {
	existing := []db.ShiftAssignment{shift("emp-1", "2025-10-06", "08:00", "16:00")}

	tests := []struct {
		name       string
		start, end string
		wantType   string
	}{
		{"one hour overlap", "15:00", "23:00", ConflictOverlap},
		{"back to back is clean", "16:00", "23:00", ConflictNone},
		{"fully contained", "09:00", "12:00", ConflictOverlap},
		{"ends at existing start", "04:00", "08:00", ConflictNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DetectConflicts(ConflictInput{
				EmployeeID: "emp-1",
				Date:       "2025-10-06",
				ShiftStart: tt.start,
				ShiftEnd:   tt.end,
				Existing:   existing,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, result.Type)
			if tt.wantType == ConflictOverlap {
				assert.Equal(t, SeverityCritical, result.Severity)
				require.NotNil(t, result.ConflictingShift)
				assert.Equal(t, "2025-10-06", result.ConflictingShift.Date)
				assert.NotEmpty(t, result.Resolution)
			}
		})
	}
}

func TestDetectConflicts_WraparoundShift(t *testing.T) {
	// A 22:00-06:00 shift on the 6th occupies the early hours of the 7th.
	existing := []db.ShiftAssignment{shift("emp-1", "2025-10-06", "22:00", "06:00")}

	result, err := DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-07",
		ShiftStart: "05:00",
		ShiftEnd:   "09:00",
		Existing:   existing,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictOverlap, result.Type)
	assert.Equal(t, SeverityCritical, result.Severity)

	// Starting exactly when the wrapped shift ends is clean.
	result, err = DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-07",
		ShiftStart: "06:00",
		ShiftEnd:   "09:00",
		Existing:   existing,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictNone, result.Type)

	// Two days out the wrapped shift is irrelevant.
	result, err = DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-08",
		ShiftStart: "05:00",
		ShiftEnd:   "09:00",
		Existing:   existing,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictNone, result.Type)
}

func TestDetectConflicts_IgnoresCancelledAndOtherEmployees(t *testing.T) {
	cancelled := shift("emp-1", "2025-10-06", "08:00", "16:00")
	cancelled.Status = db.ShiftStatusCancelled
	existing := []db.ShiftAssignment{
		cancelled,
		shift("emp-2", "2025-10-06", "08:00", "16:00"),
	}

	result, err := DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-06",
		ShiftStart: "09:00",
		ShiftEnd:   "17:00",
		Existing:   existing,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictNone, result.Type)
}

func TestDetectConflicts_Unavailable(t *testing.T) {
	result, err := DetectConflicts(ConflictInput{
		EmployeeID:        "emp-1",
		Date:              "2025-10-06",
		ShiftStart:        "08:00",
		ShiftEnd:          "16:00",
		Unavailable:       true,
		UnavailableReason: "approved sick leave",
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictUnavailable, result.Type)
	assert.Equal(t, SeverityCritical, result.Severity)
	assert.Contains(t, result.Message, "approved sick leave")
}

func TestDetectConflicts_OverlapWinsOverUnavailable(t *testing.T) {
	existing := []db.ShiftAssignment{shift("emp-1", "2025-10-06", "08:00", "16:00")}

	result, err := DetectConflicts(ConflictInput{
		EmployeeID:  "emp-1",
		Date:        "2025-10-06",
		ShiftStart:  "15:00",
		ShiftEnd:    "23:00",
		Existing:    existing,
		Unavailable: true,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictOverlap, result.Type)
}

func TestDetectConflicts_WeeklyCapBoundary(t *testing.T) {
	// 44h across Mon-Thu of the week of 2025-10-06 (a Monday).
	existing := []db.ShiftAssignment{
		shift("emp-1", "2025-10-06", "08:00", "19:00"), // 11h
		shift("emp-1", "2025-10-07", "08:00", "19:00"),
		shift("emp-1", "2025-10-08", "08:00", "19:00"),
		shift("emp-1", "2025-10-09", "08:00", "19:00"),
	}

	// 5 more hours lands at 49h, over the 48h cap.
	result, err := DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-10",
		ShiftStart: "08:00",
		ShiftEnd:   "13:00",
		Existing:   existing,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictExceededHours, result.Type)
	assert.Equal(t, SeverityWarning, result.Severity)

	// 3 more hours lands at 47h and passes.
	result, err = DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-10",
		ShiftStart: "08:00",
		ShiftEnd:   "11:00",
		Existing:   existing,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictNone, result.Type)

	// Last week's hours never count against this week.
	result, err = DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-13",
		ShiftStart: "08:00",
		ShiftEnd:   "16:00",
		Existing:   existing,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictNone, result.Type)
}

func TestDetectConflicts_DailyCap(t *testing.T) {
	existing := []db.ShiftAssignment{shift("emp-1", "2025-10-06", "08:00", "14:00")} // 6h

	result, err := DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-06",
		ShiftStart: "15:00",
		ShiftEnd:   "22:00", // 7h, 13h for the day
		Existing:   existing,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictExceededHours, result.Type)
	assert.Equal(t, SeverityWarning, result.Severity)
}

func TestDetectConflicts_CustomLimits(t *testing.T) {
	result, err := DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-06",
		ShiftStart: "08:00",
		ShiftEnd:   "14:00",
		Limits:     HourLimits{WeeklyCapMinutes: 5 * 60, DailyCapMinutes: 5 * 60},
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictExceededHours, result.Type)
}

func TestDetectConflicts_RotationRestDay(t *testing.T) {
	pattern, err := BuildPattern(PatternType4x2, nil)
	require.NoError(t, err)
	rotation := &RotationContext{Pattern: pattern, AnchorDate: "2025-10-06"}

	// Offset 4 from the anchor is a rest day.
	result, err := DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-10",
		ShiftStart: "08:00",
		ShiftEnd:   "16:00",
		Rotation:   rotation,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictRotation, result.Type)
	assert.Equal(t, SeverityWarning, result.Severity)

	// Offset 2 is a work day.
	result, err = DetectConflicts(ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-08",
		ShiftStart: "08:00",
		ShiftEnd:   "16:00",
		Rotation:   rotation,
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictNone, result.Type)
	assert.Equal(t, SeverityNone, result.Severity)
}

func TestDetectConflicts_InvalidTimes(t *testing.T) {
	tests := []struct {
		name             string
		date, start, end string
	}{
		{"bad start", "2025-10-06", "25:99", "16:00"},
		{"bad end", "2025-10-06", "08:00", "sixteen"},
		{"bad date", "October 6th", "08:00", "16:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DetectConflicts(ConflictInput{
				EmployeeID: "emp-1",
				Date:       tt.date,
				ShiftStart: tt.start,
				ShiftEnd:   tt.end,
			})
			require.Error(t, err)
			var timeErr *InvalidTimeRangeError
			assert.ErrorAs(t, err, &timeErr)
		})
	}
}

func TestDetectConflicts_Idempotent(t *testing.T) {
	input := ConflictInput{
		EmployeeID: "emp-1",
		Date:       "2025-10-06",
		ShiftStart: "15:00",
		ShiftEnd:   "23:00",
		Existing:   []db.ShiftAssignment{shift("emp-1", "2025-10-06", "08:00", "16:00")},
	}

	first, err := DetectConflicts(input)
	require.NoError(t, err)
	second, err := DetectConflicts(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestShiftsOverlap_Symmetric(t *testing.T) {
	pairs := [][2]db.ShiftAssignment{
		{shift("emp-1", "2025-10-06", "08:00", "16:00"), shift("emp-1", "2025-10-06", "15:00", "23:00")},
		{shift("emp-1", "2025-10-06", "08:00", "16:00"), shift("emp-1", "2025-10-06", "16:00", "23:00")},
		{shift("emp-1", "2025-10-06", "22:00", "06:00"), shift("emp-1", "2025-10-07", "05:00", "09:00")},
		{shift("emp-1", "2025-10-06", "22:00", "06:00"), shift("emp-1", "2025-10-08", "05:00", "09:00")},
	}

	for _, pair := range pairs {
		ab, err := ShiftsOverlap(pair[0], pair[1])
		require.NoError(t, err)
		ba, err := ShiftsOverlap(pair[1], pair[0])
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
	}
}

func TestShiftDurationMinutes(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"08:00", "16:00", 480},
		{"22:00", "06:00", 480}, // crosses midnight
		{"09:30", "10:15", 45},
		{"00:00", "00:00", 1440}, // full day wrap
	}

	for _, tt := range tests {
		got, err := ShiftDurationMinutes(tt.start, tt.end)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s-%s", tt.start, tt.end)
	}
}
