package services

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/staffhubio/staffhub/schedule"
)

// CoverageService computes staffing analytics over assignment sets. Reports
// are derived values, recomputed from assignments on demand; Redis only
// holds short-lived copies so dashboard polling does not hammer Postgres.
type CoverageService struct {
	PG              *sql.DB
	Redis           *redis.Client
	ShiftService    *ShiftService
	EmployeeService *EmployeeService

	DefaultRequiredStaff int
	CacheTTL             time.Duration
}

func NewCoverageService(pg *sql.DB, redisClient *redis.Client, shiftService *ShiftService, employeeService *EmployeeService, defaultRequiredStaff int, cacheTTL time.Duration) *CoverageService {
	if defaultRequiredStaff <= 0 {
		defaultRequiredStaff = schedule.DefaultRequiredStaffPerDay
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CoverageService{
		PG:                   pg,
		Redis:                redisClient,
		ShiftService:         shiftService,
		EmployeeService:      employeeService,
		DefaultRequiredStaff: defaultRequiredStaff,
		CacheTTL:             cacheTTL,
	}
}

// Report analyzes coverage for [from, to], scoped to one department when
// departmentID is set. The staffing target comes from the department's
// required_staff, falling back to the organization default.
func (s *CoverageService) Report(ctx context.Context, departmentID, from, to string) (schedule.CoverageReport, error) {
	var report schedule.CoverageReport

	if cached, ok := s.cachedReport(ctx, departmentID, from, to); ok {
		return cached, nil
	}

	fromDate, err := time.Parse(schedule.DateLayout, from)
	if err != nil {
		return report, &schedule.InvalidTimeRangeError{Value: from}
	}
	toDate, err := time.Parse(schedule.DateLayout, to)
	if err != nil {
		return report, &schedule.InvalidTimeRangeError{Value: to}
	}

	required := s.DefaultRequiredStaff
	if departmentID != "" {
		dept, err := s.EmployeeService.GetDepartment(departmentID)
		if err != nil {
			return report, err
		}
		if dept.RequiredStaff > 0 {
			required = dept.RequiredStaff
		}
	}

	assignments, err := s.ShiftService.ListShifts("", departmentID, from, to)
	if err != nil {
		return report, err
	}

	report, err = schedule.AnalyzeCoverageRange(assignments, required, fromDate, toDate)
	if err != nil {
		return report, err
	}

	s.cacheReport(ctx, departmentID, from, to, report)
	return report, nil
}

// ExportCSV renders the per-day analysis as CSV for HR exports.
func (s *CoverageService) ExportCSV(ctx context.Context, departmentID, from, to string) ([]byte, error) {
	report, err := s.Report(ctx, departmentID, from, to)
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Day", "Assignments", "Coverage %", "Status", "Conflicts"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, day := range report.Days {
		date, err := time.Parse(schedule.DateLayout, day.Date)
		if err != nil {
			continue
		}
		record := []string{
			day.Date,
			date.Weekday().String(),
			strconv.Itoa(day.AssignmentCount),
			strconv.Itoa(day.CoveragePercent),
			day.Status,
			strconv.Itoa(day.ConflictCount),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return []byte(buf.String()), nil
}

// RefreshCache recomputes and re-caches the rolling report every department
// shows by default. The coverage worker calls this on a ticker.
func (s *CoverageService) RefreshCache(ctx context.Context) error {
	today := time.Now().UTC()
	from := schedule.StartOfWeek(today).Format(schedule.DateLayout)
	to := schedule.StartOfWeek(today).AddDate(0, 0, 27).Format(schedule.DateLayout)

	s.invalidate(ctx, "", from, to)
	if _, err := s.Report(ctx, "", from, to); err != nil {
		return fmt.Errorf("failed to refresh org-wide coverage: %w", err)
	}

	departments, err := s.EmployeeService.ListDepartments()
	if err != nil {
		return err
	}
	for _, dept := range departments {
		s.invalidate(ctx, dept.ID, from, to)
		if _, err := s.Report(ctx, dept.ID, from, to); err != nil {
			log.Println("Failed to refresh coverage for department", dept.ID, ":", err)
		}
	}
	return nil
}

func coverageCacheKey(departmentID, from, to string) string {
	if departmentID == "" {
		departmentID = "all"
	}
	return fmt.Sprintf("coverage:%s:%s:%s", departmentID, from, to)
}

func (s *CoverageService) cachedReport(ctx context.Context, departmentID, from, to string) (schedule.CoverageReport, bool) {
	var report schedule.CoverageReport
	if s.Redis == nil {
		return report, false
	}

	payload, err := s.Redis.Get(ctx, coverageCacheKey(departmentID, from, to)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Println("Coverage cache read failed:", err)
		}
		return report, false
	}
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return report, false
	}
	return report, true
}

func (s *CoverageService) cacheReport(ctx context.Context, departmentID, from, to string, report schedule.CoverageReport) {
	if s.Redis == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, coverageCacheKey(departmentID, from, to), payload, s.CacheTTL).Err(); err != nil {
		log.Println("Coverage cache write failed:", err)
	}
}

func (s *CoverageService) invalidate(ctx context.Context, departmentID, from, to string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, coverageCacheKey(departmentID, from, to)).Err(); err != nil {
		log.Println("Coverage cache invalidation failed:", err)
	}
}
