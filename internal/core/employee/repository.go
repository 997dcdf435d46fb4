package employee

import (
	"context"
	"time"
)

// Repository は社員と給与割り当ての永続化の抽象です。
type Repository interface {
	CreateEmployee(ctx context.Context, employee *Employee) (*Employee, error)
	CreateSalaryAssignment(ctx context.Context, assignment *SalaryAssignment) (*SalaryAssignment, error)
	ExistsBySSN(ctx context.Context, ssn string) (bool, error)
	CountEmployees(ctx context.Context) (int, error)
	ListActive(ctx context.Context, filter ActiveFilter) ([]*ActiveAssignment, error)
	TitleSalaryRanges(ctx context.Context, asOf time.Time) ([]*TitleSalaryRange, error)
}

// ActiveFilter は有効な割り当ての一覧取得用フィルタです。
// NameFragment は氏名の部分一致、Title は役職の完全一致で、いずれも大文字小文字を区別しません。
type ActiveFilter struct {
	AsOf         time.Time
	NameFragment string
	Title        string
	Limit        int
}
