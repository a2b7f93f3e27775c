package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anonmektep/portal/internal/models"
)

var (
	ErrReportNotFound = errors.New("report not found")
	ErrBadStatus      = errors.New("unknown status value")
)

// PageSize — размер страницы списков, одинаковый для веба.
const PageSize = 20

const reportColumns = `
	r.id, r.problem, r.help, r.contact, r.problem_type, r.status,
	r.school_id, COALESCE(s.name, ''), r.created_at, r.updated_at`

func scanReport(row interface{ Scan(...any) error }) (*models.Report, error) {
	var r models.Report
	err := row.Scan(&r.ID, &r.Problem, &r.Help, &r.Contact, &r.ProblemType,
		&r.Status, &r.SchoolID, &r.SchoolName, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func CreateReport(ctx context.Context, database *sql.DB, r *models.Report) error {
	if !r.ProblemType.Valid() {
		return fmt.Errorf("unknown problem type %q", r.ProblemType)
	}
	r.Status = models.StatusNew
	return database.QueryRowContext(ctx, `
		INSERT INTO reports (problem, help, contact, problem_type, status, school_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.Problem, r.Help, r.Contact, string(r.ProblemType), string(r.Status), r.SchoolID).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func GetReportByID(ctx context.Context, database *sql.DB, id int64) (*models.Report, error) {
	return scanReport(database.QueryRowContext(ctx, `
		SELECT `+reportColumns+`
		FROM reports r LEFT JOIN schools s ON s.id = r.school_id
		WHERE r.id = $1
	`, id))
}

// SetReportStatus отклоняет неизвестные значения, не трогая строку.
func SetReportStatus(ctx context.Context, database *sql.DB, id int64, status models.Status) error {
	if !status.Valid() {
		return ErrBadStatus
	}
	res, err := database.ExecContext(ctx, `
		UPDATE reports SET status = $1, updated_at = now() WHERE id = $2
	`, string(status), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReportNotFound
	}
	return nil
}

// ReportFilter — условия списка. VisibleSchoolID задаётся для учителя и
// жёстко ограничивает выборку его школой; остальные поля — пользовательские
// фильтры.
type ReportFilter struct {
	VisibleSchoolID *int64
	SchoolName      string // подстрока, без учёта регистра
	ProblemType     models.ProblemType
	Status          models.Status
	GeneralOnly     bool
	Page            int // с единицы
	PerPage         int // 0 — PageSize
}

func (f ReportFilter) build() (string, []any) {
	where := " WHERE TRUE"
	var args []any
	n := 1
	if f.VisibleSchoolID != nil {
		where += fmt.Sprintf(" AND r.school_id = $%d", n)
		args = append(args, *f.VisibleSchoolID)
		n++
	}
	if f.SchoolName != "" {
		where += fmt.Sprintf(" AND s.name ILIKE $%d", n)
		args = append(args, "%"+f.SchoolName+"%")
		n++
	}
	if f.ProblemType != "" {
		where += fmt.Sprintf(" AND r.problem_type = $%d", n)
		args = append(args, string(f.ProblemType))
		n++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND r.status = $%d", n)
		args = append(args, string(f.Status))
		n++
	}
	if f.GeneralOnly {
		where += " AND r.school_id IS NULL"
	}
	return where, args
}

// ListReports — страница выборки (новые сверху) плюс общее число строк
// под фильтром.
func ListReports(ctx context.Context, database *sql.DB, f ReportFilter) ([]models.Report, int, error) {
	where, args := f.build()

	var total int
	err := database.QueryRowContext(ctx, `
		SELECT count(*)
		FROM reports r LEFT JOIN schools s ON s.id = r.school_id`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	perPage := f.PerPage
	if perPage <= 0 {
		perPage = PageSize
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	rows, err := database.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s
		FROM reports r LEFT JOIN schools s ON s.id = r.school_id
		%s
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $%d OFFSET $%d`, reportColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

// ReportStats — счётчики для дашборда и статистики в боте.
type ReportStats struct {
	Total     int
	ByStatus  map[models.Status]int
	ByProblem map[models.ProblemType]int
}

// CountReports — статистика по статусам и типам в рамках видимости.
// schoolID nil — вся база; иначе только указанная школа.
func CountReports(ctx context.Context, database *sql.DB, schoolID *int64) (*ReportStats, error) {
	where := ""
	var args []any
	if schoolID != nil {
		where = " WHERE school_id = $1"
		args = append(args, *schoolID)
	}

	st := &ReportStats{
		ByStatus:  make(map[models.Status]int),
		ByProblem: make(map[models.ProblemType]int),
	}
	rows, err := database.QueryContext(ctx, `
		SELECT status, problem_type, count(*)
		FROM reports`+where+`
		GROUP BY status, problem_type`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status, problem string
		var cnt int
		if err := rows.Scan(&status, &problem, &cnt); err != nil {
			return nil, err
		}
		st.Total += cnt
		st.ByStatus[models.Status(status)] += cnt
		st.ByProblem[models.ProblemType(problem)] += cnt
	}
	return st, rows.Err()
}

// CountGeneralReports — срез по общим обращениям (school_id IS NULL),
// отдельный блок на дашборде районного отдела.
func CountGeneralReports(ctx context.Context, database *sql.DB) (*ReportStats, error) {
	st := &ReportStats{
		ByStatus:  make(map[models.Status]int),
		ByProblem: make(map[models.ProblemType]int),
	}
	rows, err := database.QueryContext(ctx, `
		SELECT status, problem_type, count(*)
		FROM reports
		WHERE school_id IS NULL
		GROUP BY status, problem_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status, problem string
		var cnt int
		if err := rows.Scan(&status, &problem, &cnt); err != nil {
			return nil, err
		}
		st.Total += cnt
		st.ByStatus[models.Status(status)] += cnt
		st.ByProblem[models.ProblemType(problem)] += cnt
	}
	return st, rows.Err()
}
