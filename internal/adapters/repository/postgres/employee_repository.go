package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-roster/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-roster/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

const (
	insertEmployeeQuery = `
        INSERT INTO employees (name, ssn, dob, address, city, state, zip, phone, join_date, exit_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, name, ssn, dob, address, city, state, zip, phone, join_date, exit_date
    `

	insertSalaryAssignmentQuery = `
        INSERT INTO salary_assignments (employee_id, from_date, to_date, title, salary)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, employee_id, from_date, to_date, title, salary::text
    `

	existsBySSNQuery = `SELECT EXISTS (SELECT 1 FROM employees WHERE ssn = $1)`

	countEmployeesQuery = `SELECT COUNT(*) FROM employees`

	titleSalaryRangesQuery = `
        SELECT title, MIN(salary)::text, MAX(salary)::text
          FROM salary_assignments
         WHERE to_date IS NULL OR to_date > $1
         GROUP BY title
         ORDER BY title
    `

	selectActiveQuery = `
        SELECT e.id, e.name, e.ssn, e.dob, e.address, e.city, e.state, e.zip, e.phone, e.join_date, e.exit_date,
               s.id, s.employee_id, s.from_date, s.to_date, s.title, s.salary::text
          FROM employees e
          JOIN salary_assignments s ON s.employee_id = e.id`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EmployeeRepository は PostgreSQL を利用した社員名簿の永続化実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// CreateEmployee は社員を新規作成します。SSN が重複した場合は ErrDuplicateSSN を返します。
func (r *EmployeeRepository) CreateEmployee(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, insertEmployeeQuery,
		e.Name,
		e.SSN,
		dateOnly(e.DOB),
		e.Address,
		e.City,
		e.State,
		e.Zip,
		e.Phone,
		dateOnly(e.JoinDate),
		nullableDate(e.ExitDate),
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

// CreateSalaryAssignment は給与割り当てを作成します。社員が存在しない場合は ErrEmployeeNotFound を返します。
func (r *EmployeeRepository) CreateSalaryAssignment(ctx context.Context, a *employee.SalaryAssignment) (*employee.SalaryAssignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, insertSalaryAssignmentQuery,
		a.EmployeeID,
		dateOnly(a.FromDate),
		nullableDate(a.ToDate),
		a.Title,
		a.Salary.StringFixed(2),
	)

	created, err := scanSalaryAssignment(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

// ExistsBySSN は SSN が登録済みかを返します。
func (r *EmployeeRepository) ExistsBySSN(ctx context.Context, ssn string) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var exists bool
	if err := exec.QueryRow(ctx, existsBySSNQuery, ssn).Scan(&exists); err != nil {
		return false, translatePgError(err)
	}
	return exists, nil
}

// CountEmployees は社員数を返します。
func (r *EmployeeRepository) CountEmployees(ctx context.Context) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var count int
	if err := exec.QueryRow(ctx, countEmployeesQuery).Scan(&count); err != nil {
		return 0, translatePgError(err)
	}
	return count, nil
}

// ListActive は社員と有効な給与割り当てを結合して取得します。
func (r *EmployeeRepository) ListActive(ctx context.Context, filter employee.ActiveFilter) ([]*employee.ActiveAssignment, error) {
	if filter.Limit <= 0 {
		return nil, employee.ErrInvalidLimit
	}

	query, args := buildListActiveQuery(filter)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	result := make([]*employee.ActiveAssignment, 0, min(filter.Limit, 64))
	for rows.Next() {
		item, err := scanActiveAssignment(rows)
		if err != nil {
			return nil, translatePgError(err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}

	return result, nil
}

// TitleSalaryRanges は有効な割り当てを役職ごとに集計します。
func (r *EmployeeRepository) TitleSalaryRanges(ctx context.Context, asOf time.Time) ([]*employee.TitleSalaryRange, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, titleSalaryRangesQuery, dateOnly(asOf))
	if err != nil {
		return nil, translatePgError(err)
	}
	defer rows.Close()

	var ranges []*employee.TitleSalaryRange
	for rows.Next() {
		var title, minRaw, maxRaw string
		if err := rows.Scan(&title, &minRaw, &maxRaw); err != nil {
			return nil, translatePgError(err)
		}

		minSalary, err := decimal.NewFromString(minRaw)
		if err != nil {
			return nil, fmt.Errorf("parse min salary for %q: %w", title, err)
		}
		maxSalary, err := decimal.NewFromString(maxRaw)
		if err != nil {
			return nil, fmt.Errorf("parse max salary for %q: %w", title, err)
		}

		ranges = append(ranges, &employee.TitleSalaryRange{Title: title, MinSalary: minSalary, MaxSalary: maxSalary})
	}

	if err := rows.Err(); err != nil {
		return nil, translatePgError(err)
	}

	return ranges, nil
}

func buildListActiveQuery(filter employee.ActiveFilter) (string, []any) {
	args := make([]any, 0, 4)
	conditions := make([]string, 0, 3)

	args = append(args, dateOnly(filter.AsOf))
	conditions = append(conditions, "(s.to_date IS NULL OR s.to_date > $"+strconv.Itoa(len(args))+")")

	if fragment := strings.TrimSpace(filter.NameFragment); fragment != "" {
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(fragment))+"%")
		conditions = append(conditions, "lower(e.name) LIKE $"+strconv.Itoa(len(args))+` ESCAPE '\'`)
	}

	if title := strings.TrimSpace(filter.Title); title != "" {
		args = append(args, strings.ToLower(title))
		conditions = append(conditions, "lower(s.title) = $"+strconv.Itoa(len(args)))
	}

	args = append(args, filter.Limit)
	limitPlaceholder := "$" + strconv.Itoa(len(args))

	query := selectActiveQuery + `
         WHERE ` + strings.Join(conditions, " AND ") + `
         ORDER BY e.id, s.id
         LIMIT ` + limitPlaceholder

	return query, args
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e        employee.Employee
		exitDate sql.NullTime
	)

	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.SSN,
		&e.DOB,
		&e.Address,
		&e.City,
		&e.State,
		&e.Zip,
		&e.Phone,
		&e.JoinDate,
		&exitDate,
	); err != nil {
		return nil, err
	}

	e.DOB = dateOnly(e.DOB)
	e.JoinDate = dateOnly(e.JoinDate)
	e.ExitDate = datePtr(exitDate)
	return &e, nil
}

func scanSalaryAssignment(row pgx.Row) (*employee.SalaryAssignment, error) {
	var (
		a         employee.SalaryAssignment
		toDate    sql.NullTime
		salaryRaw string
	)

	if err := row.Scan(&a.ID, &a.EmployeeID, &a.FromDate, &toDate, &a.Title, &salaryRaw); err != nil {
		return nil, err
	}

	salary, err := decimal.NewFromString(salaryRaw)
	if err != nil {
		return nil, fmt.Errorf("parse salary: %w", err)
	}

	a.FromDate = dateOnly(a.FromDate)
	a.ToDate = datePtr(toDate)
	a.Salary = salary
	return &a, nil
}

func scanActiveAssignment(row pgx.Row) (*employee.ActiveAssignment, error) {
	var (
		item      employee.ActiveAssignment
		exitDate  sql.NullTime
		toDate    sql.NullTime
		salaryRaw string
	)

	e := &item.Employee
	a := &item.Assignment
	if err := row.Scan(
		&e.ID, &e.Name, &e.SSN, &e.DOB, &e.Address, &e.City, &e.State, &e.Zip, &e.Phone, &e.JoinDate, &exitDate,
		&a.ID, &a.EmployeeID, &a.FromDate, &toDate, &a.Title, &salaryRaw,
	); err != nil {
		return nil, err
	}

	salary, err := decimal.NewFromString(salaryRaw)
	if err != nil {
		return nil, fmt.Errorf("parse salary: %w", err)
	}

	e.DOB = dateOnly(e.DOB)
	e.JoinDate = dateOnly(e.JoinDate)
	e.ExitDate = datePtr(exitDate)
	a.FromDate = dateOnly(a.FromDate)
	a.ToDate = datePtr(toDate)
	a.Salary = salary
	return &item, nil
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrDuplicateSSN
		case foreignKeyViolationCode:
			return employee.ErrEmployeeNotFound
		}
	}

	return err
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return dateOnly(*value)
}

func datePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	d := dateOnly(value.Time)
	return &d
}
