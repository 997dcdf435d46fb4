package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee は社員エンティティです。
type Employee struct {
	ID       int64
	Name     string
	SSN      string
	DOB      time.Time
	Address  string
	City     string
	State    string
	Zip      string
	Phone    string
	JoinDate time.Time
	ExitDate *time.Time
}

// SalaryAssignment は社員 1 名の役職と給与の適用期間です。
// 同一社員の期間重複はチェックしません。
type SalaryAssignment struct {
	ID         int64
	EmployeeID int64
	FromDate   time.Time
	ToDate     *time.Time
	Title      string
	Salary     decimal.Decimal
}

// IsActive は asOf 時点で有効な割り当てかどうかを返します。
// ToDate が未設定、または asOf の日付より後であれば有効です。
func (a *SalaryAssignment) IsActive(asOf time.Time) bool {
	if a.ToDate == nil {
		return true
	}
	return truncateDate(*a.ToDate).After(truncateDate(asOf))
}

// ActiveAssignment は社員と有効な給与割り当ての結合行です。
type ActiveAssignment struct {
	Employee   Employee
	Assignment SalaryAssignment
}

// TitleSalaryRange は役職ごとの給与レンジです。
type TitleSalaryRange struct {
	Title     string
	MinSalary decimal.Decimal
	MaxSalary decimal.Decimal
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
