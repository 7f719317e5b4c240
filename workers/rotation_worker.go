package workers

import (
	"database/sql"
	"log"
	"time"

	"github.com/staffhubio/staffhub/db"
	"github.com/staffhubio/staffhub/schedule"
	"github.com/staffhubio/staffhub/services"
)

// RotationWorker pre-generates shift assignments from active rotations so
// the schedule board always shows the upcoming weeks. Generation is
// idempotent: dates that already carry an assignment for the employee are
// skipped, and every generated row still goes through conflict detection.
type RotationWorker struct {
	PG              *sql.DB
	RotationService *services.RotationService
	ShiftService    *services.ShiftService

	WeeksAhead int
	ShiftStart string
	ShiftEnd   string
}

func NewRotationWorker(pg *sql.DB, rotationService *services.RotationService, shiftService *services.ShiftService, weeksAhead int) *RotationWorker {
	if weeksAhead <= 0 {
		weeksAhead = 4
	}
	return &RotationWorker{
		PG:              pg,
		RotationService: rotationService,
		ShiftService:    shiftService,
		WeeksAhead:      weeksAhead,
		ShiftStart:      "09:00",
		ShiftEnd:        "17:00",
	}
}

// StartRotationWorker expands rotations once at startup and then daily.
func (w *RotationWorker) StartRotationWorker() {
	log.Println("Rotation worker started, generating upcoming assignments...")

	w.generateUpcoming()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		w.generateUpcoming()
	}
}

func (w *RotationWorker) generateUpcoming() {
	rotations, err := w.RotationService.ListRotations(true)
	if err != nil {
		log.Printf("Rotation worker: failed to list rotations: %v", err)
		return
	}

	from := time.Now().UTC()
	to := from.AddDate(0, 0, w.WeeksAhead*7-1)

	generated, skipped := 0, 0
	for _, rotation := range rotations {
		g, s := w.generateForRotation(rotation, from, to)
		generated += g
		skipped += s
	}
	log.Printf("Rotation worker: generated %d assignments, skipped %d", generated, skipped)
}

func (w *RotationWorker) generateForRotation(rotation db.EmployeeRotation, from, to time.Time) (int, int) {
	anchor, err := time.Parse(schedule.DateLayout, rotation.AnchorDate)
	if err != nil {
		log.Printf("Rotation worker: rotation %s has malformed anchor date %q", rotation.ID, rotation.AnchorDate)
		return 0, 0
	}

	days, err := schedule.ProjectRange(rotation.Pattern, anchor, from, to)
	if err != nil {
		log.Printf("Rotation worker: failed to project rotation %s: %v", rotation.ID, err)
		return 0, 0
	}

	generated, skipped := 0, 0
	for _, employeeID := range rotation.EmployeeIDs {
		departmentID, err := w.employeeDepartment(employeeID)
		if err != nil {
			log.Printf("Rotation worker: skipping employee %s: %v", employeeID, err)
			continue
		}

		for _, day := range days {
			if !day.IsWorkDay {
				continue
			}
			exists, err := w.hasAssignment(employeeID, day.Date)
			if err != nil {
				log.Printf("Rotation worker: failed to check existing assignment: %v", err)
				continue
			}
			if exists {
				skipped++
				continue
			}

			_, conflict, err := w.ShiftService.CreateShift(db.CreateShiftRequest{
				EmployeeID:   employeeID,
				Date:         day.Date,
				ShiftStart:   w.ShiftStart,
				ShiftEnd:     w.ShiftEnd,
				ShiftType:    "rotation",
				DepartmentID: departmentID,
			}, "rotation-worker")
			if err != nil {
				log.Printf("Rotation worker: failed to create assignment for %s on %s: %v", employeeID, day.Date, err)
				continue
			}
			if conflict.Type != schedule.ConflictNone {
				skipped++
				continue
			}
			generated++
		}
	}
	return generated, skipped
}

func (w *RotationWorker) employeeDepartment(employeeID string) (string, error) {
	var departmentID string
	err := w.PG.QueryRow(
		"SELECT department_id FROM employees WHERE id = $1 AND is_active = true",
		employeeID,
	).Scan(&departmentID)
	return departmentID, err
}

func (w *RotationWorker) hasAssignment(employeeID, date string) (bool, error) {
	var count int
	err := w.PG.QueryRow(`
		SELECT COUNT(*) FROM shift_assignments
		WHERE employee_id = $1 AND date = $2 AND status != $3
	`, employeeID, date, db.ShiftStatusCancelled).Scan(&count)
	return count > 0, err
}
