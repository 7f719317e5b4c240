package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/staffhubio/staffhub/db"
)

type EmployeeService struct {
	PG *sql.DB
}

func NewEmployeeService(pg *sql.DB) *EmployeeService {
	return &EmployeeService{PG: pg}
}

// CreateEmployee inserts a new directory record. The password is already
// hashed by the auth service before it gets here.
func (s *EmployeeService) CreateEmployee(req db.CreateEmployeeRequest, passwordHash string) (db.Employee, error) {
	role := req.Role
	if role == "" {
		role = "employee"
	}

	employee := db.Employee{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         role,
		DepartmentID: req.DepartmentID,
		Position:     req.Position,
		IsActive:     true,
		HireDate:     req.HireDate,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	_, err := s.PG.Exec(`
		INSERT INTO employees (id, name, email, phone, role, department_id, position, password_hash, is_active, hire_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, employee.ID, employee.Name, employee.Email, employee.Phone, employee.Role,
		employee.DepartmentID, employee.Position, passwordHash, employee.IsActive,
		nullIfEmpty(employee.HireDate), employee.CreatedAt, employee.UpdatedAt)
	if err != nil {
		return employee, fmt.Errorf("failed to create employee: %w", err)
	}

	return employee, nil
}

func (s *EmployeeService) GetEmployee(employeeID string) (db.Employee, error) {
	var e db.Employee
	err := s.PG.QueryRow(`
		SELECT e.id, e.name, e.email, COALESCE(e.phone, ''), e.role, e.department_id,
		       COALESCE(e.position, ''), COALESCE(e.fcm_token, ''), e.is_active,
		       COALESCE(e.hire_date::text, ''), e.created_at, e.updated_at, d.name
		FROM employees e
		JOIN departments d ON e.department_id = d.id
		WHERE e.id = $1
	`, employeeID).Scan(
		&e.ID, &e.Name, &e.Email, &e.Phone, &e.Role, &e.DepartmentID,
		&e.Position, &e.FCMToken, &e.IsActive, &e.HireDate,
		&e.CreatedAt, &e.UpdatedAt, &e.DepartmentName,
	)
	if err != nil {
		return e, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// ListEmployees returns active employees, optionally filtered by department.
func (s *EmployeeService) ListEmployees(departmentID string) ([]db.Employee, error) {
	rows, err := s.PG.Query(`
		SELECT e.id, e.name, e.email, COALESCE(e.phone, ''), e.role, e.department_id,
		       COALESCE(e.position, ''), e.is_active, e.created_at, e.updated_at, d.name
		FROM employees e
		JOIN departments d ON e.department_id = d.id
		WHERE e.is_active = true AND ($1 = '' OR e.department_id = $1)
		ORDER BY e.name ASC
	`, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []db.Employee
	for rows.Next() {
		var e db.Employee
		err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Role, &e.DepartmentID,
			&e.Position, &e.IsActive, &e.CreatedAt, &e.UpdatedAt, &e.DepartmentName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, nil
}

func (s *EmployeeService) UpdateEmployee(employeeID string, req db.UpdateEmployeeRequest) (db.Employee, error) {
	// Build the SET clause from whichever fields the request carries.
	sets := "updated_at = NOW()"
	args := []interface{}{employeeID}
	idx := 2

	addSet := func(column string, value interface{}) {
		sets += fmt.Sprintf(", %s = $%d", column, idx)
		args = append(args, value)
		idx++
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Phone != nil {
		addSet("phone", *req.Phone)
	}
	if req.Role != nil {
		addSet("role", *req.Role)
	}
	if req.DepartmentID != nil {
		addSet("department_id", *req.DepartmentID)
	}
	if req.Position != nil {
		addSet("position", *req.Position)
	}
	if req.FCMToken != nil {
		addSet("fcm_token", *req.FCMToken)
	}
	if req.IsActive != nil {
		addSet("is_active", *req.IsActive)
	}

	query := fmt.Sprintf("UPDATE employees SET %s WHERE id = $1", sets)
	result, err := s.PG.Exec(query, args...)
	if err != nil {
		return db.Employee{}, fmt.Errorf("failed to update employee: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return db.Employee{}, fmt.Errorf("employee %s not found", employeeID)
	}

	return s.GetEmployee(employeeID)
}

func (s *EmployeeService) ListDepartments() ([]db.Department, error) {
	rows, err := s.PG.Query(`
		SELECT id, name, required_staff, is_active, created_at, updated_at
		FROM departments
		WHERE is_active = true
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []db.Department
	for rows.Next() {
		var d db.Department
		err := rows.Scan(&d.ID, &d.Name, &d.RequiredStaff, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, nil
}

func (s *EmployeeService) GetDepartment(departmentID string) (db.Department, error) {
	var d db.Department
	err := s.PG.QueryRow(`
		SELECT id, name, required_staff, is_active, created_at, updated_at
		FROM departments WHERE id = $1
	`, departmentID).Scan(&d.ID, &d.Name, &d.RequiredStaff, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return d, fmt.Errorf("failed to get department: %w", err)
	}
	return d, nil
}

func nullIfEmpty(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
