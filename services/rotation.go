package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/staffhubio/staffhub/db"
	"github.com/staffhubio/staffhub/schedule"
)

type RotationService struct {
	PG *sql.DB
}

func NewRotationService(pg *sql.DB) *RotationService {
	return &RotationService{PG: pg}
}

// CreateRotation builds the pattern for the requested type and stores the
// rotation with its employee bindings.
func (s *RotationService) CreateRotation(req db.CreateRotationRequest, createdBy string) (db.EmployeeRotation, error) {
	var rotation db.EmployeeRotation

	pattern, err := schedule.BuildPattern(req.PatternType, req.Pattern)
	if err != nil {
		return rotation, err
	}

	if _, err := time.Parse(schedule.DateLayout, req.AnchorDate); err != nil {
		return rotation, fmt.Errorf("invalid anchor date %q: %w", req.AnchorDate, err)
	}

	patternJSON, err := json.Marshal(pattern)
	if err != nil {
		return rotation, fmt.Errorf("failed to marshal pattern: %w", err)
	}
	employeesJSON, err := json.Marshal(emptyIfNil(req.EmployeeIDs))
	if err != nil {
		return rotation, fmt.Errorf("failed to marshal employee ids: %w", err)
	}

	rotation = db.EmployeeRotation{
		ID:          uuid.New().String(),
		Name:        req.Name,
		PatternType: req.PatternType,
		Pattern:     pattern,
		AnchorDate:  req.AnchorDate,
		IsActive:    true,
		EmployeeIDs: emptyIfNil(req.EmployeeIDs),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		CreatedBy:   createdBy,
	}

	_, err = s.PG.Exec(`
		INSERT INTO employee_rotations (id, name, pattern_type, pattern, anchor_date, is_active, employee_ids, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rotation.ID, rotation.Name, rotation.PatternType, string(patternJSON),
		rotation.AnchorDate, rotation.IsActive, string(employeesJSON),
		rotation.CreatedAt, rotation.UpdatedAt, rotation.CreatedBy)
	if err != nil {
		return rotation, fmt.Errorf("failed to create rotation: %w", err)
	}

	return rotation, nil
}

func (s *RotationService) GetRotation(rotationID string) (db.EmployeeRotation, error) {
	row := s.PG.QueryRow(`
		SELECT id, name, pattern_type, pattern::text, anchor_date, is_active,
		       employee_ids::text, created_at, updated_at, COALESCE(created_by, '')
		FROM employee_rotations
		WHERE id = $1
	`, rotationID)

	rotation, err := scanRotation(row)
	if err != nil {
		return rotation, fmt.Errorf("failed to get rotation %s: %w", rotationID, err)
	}
	return rotation, nil
}

// ListRotations returns rotations, newest first.
func (s *RotationService) ListRotations(activeOnly bool) ([]db.EmployeeRotation, error) {
	rows, err := s.PG.Query(`
		SELECT id, name, pattern_type, pattern::text, anchor_date, is_active,
		       employee_ids::text, created_at, updated_at, COALESCE(created_by, '')
		FROM employee_rotations
		WHERE ($1 = false OR is_active = true)
		ORDER BY created_at DESC
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list rotations: %w", err)
	}
	defer rows.Close()

	var rotations []db.EmployeeRotation
	for rows.Next() {
		rotation, err := scanRotation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rotation: %w", err)
		}
		rotations = append(rotations, rotation)
	}
	return rotations, nil
}

// UpdateRotation patches rotation fields. A pattern change replaces the
// whole pattern; partial pattern edits are not a thing.
func (s *RotationService) UpdateRotation(rotationID string, req db.UpdateRotationRequest) (db.EmployeeRotation, error) {
	rotation, err := s.GetRotation(rotationID)
	if err != nil {
		return rotation, err
	}

	if req.Name != nil {
		rotation.Name = *req.Name
	}
	if req.PatternType != nil {
		pattern, err := schedule.BuildPattern(*req.PatternType, req.Pattern)
		if err != nil {
			return rotation, err
		}
		rotation.PatternType = *req.PatternType
		rotation.Pattern = pattern
	}
	if req.AnchorDate != nil {
		if _, err := time.Parse(schedule.DateLayout, *req.AnchorDate); err != nil {
			return rotation, fmt.Errorf("invalid anchor date %q: %w", *req.AnchorDate, err)
		}
		rotation.AnchorDate = *req.AnchorDate
	}
	if req.IsActive != nil {
		rotation.IsActive = *req.IsActive
	}
	if req.EmployeeIDs != nil {
		rotation.EmployeeIDs = req.EmployeeIDs
	}

	patternJSON, err := json.Marshal(rotation.Pattern)
	if err != nil {
		return rotation, fmt.Errorf("failed to marshal pattern: %w", err)
	}
	employeesJSON, err := json.Marshal(emptyIfNil(rotation.EmployeeIDs))
	if err != nil {
		return rotation, fmt.Errorf("failed to marshal employee ids: %w", err)
	}

	_, err = s.PG.Exec(`
		UPDATE employee_rotations
		SET name = $2, pattern_type = $3, pattern = $4, anchor_date = $5,
		    is_active = $6, employee_ids = $7, updated_at = NOW()
		WHERE id = $1
	`, rotationID, rotation.Name, rotation.PatternType, string(patternJSON),
		rotation.AnchorDate, rotation.IsActive, string(employeesJSON))
	if err != nil {
		return rotation, fmt.Errorf("failed to update rotation: %w", err)
	}

	return rotation, nil
}

// DeactivateRotation switches the rotation off. Rotations are never
// physically deleted.
func (s *RotationService) DeactivateRotation(rotationID string) error {
	result, err := s.PG.Exec(`
		UPDATE employee_rotations SET is_active = false, updated_at = NOW() WHERE id = $1
	`, rotationID)
	if err != nil {
		return fmt.Errorf("failed to deactivate rotation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("rotation %s not found", rotationID)
	}
	return nil
}

// GetRotationForEmployee finds the employee's active rotation, or nil when
// the employee is not rotation-bound.
func (s *RotationService) GetRotationForEmployee(employeeID string) (*db.EmployeeRotation, error) {
	row := s.PG.QueryRow(`
		SELECT id, name, pattern_type, pattern::text, anchor_date, is_active,
		       employee_ids::text, created_at, updated_at, COALESCE(created_by, '')
		FROM employee_rotations
		WHERE is_active = true AND employee_ids @> to_jsonb(ARRAY[$1::text])
		ORDER BY created_at DESC
		LIMIT 1
	`, employeeID)

	rotation, err := scanRotation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rotation for employee %s: %w", employeeID, err)
	}
	return &rotation, nil
}

// PreviewCalendar projects the rotation's pattern onto [from, to].
func (s *RotationService) PreviewCalendar(rotationID string, from, to time.Time) ([]schedule.ProjectedDay, error) {
	rotation, err := s.GetRotation(rotationID)
	if err != nil {
		return nil, err
	}
	anchor, err := time.Parse(schedule.DateLayout, rotation.AnchorDate)
	if err != nil {
		return nil, fmt.Errorf("stored anchor date %q is malformed: %w", rotation.AnchorDate, err)
	}
	return schedule.ProjectRange(rotation.Pattern, anchor, from, to)
}

// CalendarStats summarizes work/rest counts for the rotation over a range.
func (s *RotationService) CalendarStats(rotationID string, from, to time.Time) (schedule.PatternStats, error) {
	rotation, err := s.GetRotation(rotationID)
	if err != nil {
		return schedule.PatternStats{}, err
	}
	anchor, err := time.Parse(schedule.DateLayout, rotation.AnchorDate)
	if err != nil {
		return schedule.PatternStats{}, fmt.Errorf("stored anchor date %q is malformed: %w", rotation.AnchorDate, err)
	}
	return schedule.RangeStats(rotation.Pattern, anchor, from, to)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRotation(row rowScanner) (db.EmployeeRotation, error) {
	var rotation db.EmployeeRotation
	var patternJSON, employeesJSON string

	err := row.Scan(
		&rotation.ID, &rotation.Name, &rotation.PatternType, &patternJSON,
		&rotation.AnchorDate, &rotation.IsActive, &employeesJSON,
		&rotation.CreatedAt, &rotation.UpdatedAt, &rotation.CreatedBy,
	)
	if err != nil {
		return rotation, err
	}

	if err := json.Unmarshal([]byte(patternJSON), &rotation.Pattern); err != nil {
		return rotation, fmt.Errorf("failed to parse stored pattern: %w", err)
	}
	if err := json.Unmarshal([]byte(employeesJSON), &rotation.EmployeeIDs); err != nil {
		return rotation, fmt.Errorf("failed to parse stored employee ids: %w", err)
	}
	rotation.EmployeeCount = len(rotation.EmployeeIDs)
	return rotation, nil
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
