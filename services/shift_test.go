package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhubio/staffhub/db"
	"github.com/staffhubio/staffhub/schedule"
)

var assignmentCols = []string{
	"id", "employee_id", "date", "shift_start", "shift_end", "shift_type",
	"status", "is_overtime", "department_id", "location",
	"has_conflict", "conflict_reason", "created_at", "updated_at", "created_by",
	"employee_name", "department_name",
}

func newShiftServiceWithMock(t *testing.T) (*ShiftService, sqlmock.Sqlmock, func()) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	leaveService := NewLeaveService(mockDB)
	rotationService := NewRotationService(mockDB)
	service := NewShiftService(mockDB, leaveService, rotationService, nil, schedule.HourLimits{})

	return service, mock, func() { mockDB.Close() }
}

// expectCheckInputs queues the three fetches CheckAssignment performs, in
// order: existing assignments, leave lookup, rotation lookup.
func expectCheckInputs(mock sqlmock.Sqlmock, existing *sqlmock.Rows, onLeave bool) {
	mock.ExpectQuery("FROM shift_assignments").WillReturnRows(existing)

	if onLeave {
		mock.ExpectQuery("SELECT leave_type FROM leave_records").
			WillReturnRows(sqlmock.NewRows([]string{"leave_type"}).AddRow("vacation"))
	} else {
		mock.ExpectQuery("SELECT leave_type FROM leave_records").
			WillReturnError(sql.ErrNoRows)
	}

	mock.ExpectQuery("FROM employee_rotations").WillReturnError(sql.ErrNoRows)
}

func TestShiftService_CreateShift_NoConflict(t *testing.T) {
	service, mock, closeDB := newShiftServiceWithMock(t)
	defer closeDB()

	expectCheckInputs(mock, sqlmock.NewRows(assignmentCols), false)
	mock.ExpectExec("INSERT INTO shift_assignments").
		WithArgs(sqlmock.AnyArg(), "emp-1", "2025-10-06", "08:00", "16:00", "morning",
			db.ShiftStatusScheduled, false, "dept-1", "", false, "",
			sqlmock.AnyArg(), sqlmock.AnyArg(), "scheduler-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment, conflict, err := service.CreateShift(db.CreateShiftRequest{
		EmployeeID:   "emp-1",
		Date:         "2025-10-06",
		ShiftStart:   "08:00",
		ShiftEnd:     "16:00",
		ShiftType:    "morning",
		DepartmentID: "dept-1",
	}, "scheduler-1")

	require.NoError(t, err)
	assert.Equal(t, schedule.ConflictNone, conflict.Type)
	assert.NotEmpty(t, assignment.ID)
	assert.False(t, assignment.HasConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftService_CreateShift_OverlapBlocks(t *testing.T) {
	service, mock, closeDB := newShiftServiceWithMock(t)
	defer closeDB()

	now := time.Now()
	existing := sqlmock.NewRows(assignmentCols).AddRow(
		"shift-1", "emp-1", "2025-10-06", "08:00", "16:00", "morning",
		db.ShiftStatusScheduled, false, "dept-1", "",
		false, "", now, now, "scheduler-1", "", "")
	expectCheckInputs(mock, existing, false)

	assignment, conflict, err := service.CreateShift(db.CreateShiftRequest{
		EmployeeID:   "emp-1",
		Date:         "2025-10-06",
		ShiftStart:   "15:00",
		ShiftEnd:     "23:00",
		DepartmentID: "dept-1",
	}, "scheduler-1")

	require.NoError(t, err)
	assert.Equal(t, schedule.ConflictOverlap, conflict.Type)
	assert.Equal(t, schedule.SeverityCritical, conflict.Severity)
	require.NotNil(t, conflict.ConflictingShift)
	assert.Equal(t, "shift-1", conflict.ConflictingShift.ID)
	assert.Empty(t, assignment.ID, "blocked creation must not produce an assignment")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftService_CreateShift_UnavailableBlocks(t *testing.T) {
	service, mock, closeDB := newShiftServiceWithMock(t)
	defer closeDB()

	expectCheckInputs(mock, sqlmock.NewRows(assignmentCols), true)

	assignment, conflict, err := service.CreateShift(db.CreateShiftRequest{
		EmployeeID:   "emp-1",
		Date:         "2025-10-06",
		ShiftStart:   "08:00",
		ShiftEnd:     "16:00",
		DepartmentID: "dept-1",
	}, "scheduler-1")

	require.NoError(t, err)
	assert.Equal(t, schedule.ConflictUnavailable, conflict.Type)
	assert.Contains(t, conflict.Message, "vacation")
	assert.Empty(t, assignment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftService_CreateShift_ForceOverridesConflict(t *testing.T) {
	service, mock, closeDB := newShiftServiceWithMock(t)
	defer closeDB()

	expectCheckInputs(mock, sqlmock.NewRows(assignmentCols), true)
	mock.ExpectExec("INSERT INTO shift_assignments").
		WithArgs(sqlmock.AnyArg(), "emp-1", "2025-10-06", "08:00", "16:00", "custom",
			db.ShiftStatusScheduled, false, "dept-1", "", true, sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), "scheduler-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment, conflict, err := service.CreateShift(db.CreateShiftRequest{
		EmployeeID:   "emp-1",
		Date:         "2025-10-06",
		ShiftStart:   "08:00",
		ShiftEnd:     "16:00",
		DepartmentID: "dept-1",
		Force:        true,
	}, "scheduler-1")

	require.NoError(t, err)
	assert.Equal(t, schedule.ConflictUnavailable, conflict.Type)
	assert.NotEmpty(t, assignment.ID)
	assert.True(t, assignment.HasConflict)
	assert.Equal(t, conflict.Message, assignment.ConflictReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftService_CheckAssignment_InvalidDate(t *testing.T) {
	service, mock, closeDB := newShiftServiceWithMock(t)
	defer closeDB()

	_, err := service.CheckAssignment("emp-1", "06-10-2025", "08:00", "16:00", "")

	var timeErr *schedule.InvalidTimeRangeError
	require.ErrorAs(t, err, &timeErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftService_CancelShift(t *testing.T) {
	service, mock, closeDB := newShiftServiceWithMock(t)
	defer closeDB()

	mock.ExpectExec("UPDATE shift_assignments SET status").
		WithArgs(db.ShiftStatusCancelled, "shift-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := service.CancelShift("shift-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftService_CancelShift_NotFound(t *testing.T) {
	service, mock, closeDB := newShiftServiceWithMock(t)
	defer closeDB()

	mock.ExpectExec("UPDATE shift_assignments SET status").
		WithArgs(db.ShiftStatusCancelled, "shift-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := service.CancelShift("shift-missing")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
