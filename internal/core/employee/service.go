package employee

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	// MaxRosterRows は全件一覧の上限です。
	MaxRosterRows = 1000
	// MaxSearchRows は氏名・役職検索の上限です。
	MaxSearchRows = 100
	// MaxSearchTermLength は検索語の最大文字数です。
	MaxSearchTermLength = 50
)

// Service は社員名簿に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は社員名簿ユースケースの公開インターフェースです。
type UseCase interface {
	ListAll(ctx context.Context) ([]*ActiveAssignment, error)
	Search(ctx context.Context, term string) (*SearchResult, error)
	TitleRanges(ctx context.Context) ([]*TitleSalaryRange, error)
	SSNExists(ctx context.Context, ssn string) (bool, error)
	Hire(ctx context.Context, in HireInput) (*ActiveAssignment, error)
	Today() time.Time
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// HireInput は社員登録時の入力です。
type HireInput struct {
	Name     string          `field:"name" validate:"employee_name"`
	SSN      string          `field:"ssn" validate:"employee_ssn"`
	DOB      time.Time       `field:"dob" validate:"hire_age"`
	Address  string          `field:"address" validate:"street_address"`
	City     string          `field:"city" validate:"city_name"`
	State    string          `field:"state" validate:"us_state"`
	Zip      string          `field:"zip" validate:"zip5"`
	Phone    string          `field:"phone" validate:"us_phone"`
	JoinDate time.Time       `field:"join_date" validate:"not_future"`
	Title    string          `field:"title" validate:"job_title"`
	Salary   decimal.Decimal `field:"salary" validate:"salary"`
}

// SearchResult は検索結果です。Kind はどの検索経路を通ったかを示します。
type SearchResult struct {
	Kind SearchKind
	Term string
	Rows []*ActiveAssignment
}

// Today は UTC の当日日付を返します。
func (s *Service) Today() time.Time {
	return truncateDate(s.clock.Now())
}

// ListAll は有効な給与割り当てを持つ社員を一覧します。
func (s *Service) ListAll(ctx context.Context) ([]*ActiveAssignment, error) {
	return s.listActive(ctx, ActiveFilter{Limit: MaxRosterRows})
}

// Search は検索語を分類し、氏名検索または役職検索を行います。
// 空の検索語は全件一覧として扱います。
func (s *Service) Search(ctx context.Context, term string) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) > MaxSearchTermLength {
		return nil, ErrSearchTermTooLong
	}

	kind := ClassifySearch(term)
	filter := ActiveFilter{Limit: MaxSearchRows}
	switch kind {
	case SearchAll:
		filter.Limit = MaxRosterRows
	case SearchTitle:
		filter.Title = term
	case SearchName:
		filter.NameFragment = term
	}

	rows, err := s.listActive(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Kind: kind, Term: term, Rows: rows}, nil
}

// TitleRanges は有効な割り当てを役職ごとに集計し、給与の最小値と最大値を返します。
func (s *Service) TitleRanges(ctx context.Context) ([]*TitleSalaryRange, error) {
	asOf := s.Today()

	var ranges []*TitleSalaryRange
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.TitleSalaryRanges(txCtx, asOf)
		if err != nil {
			return err
		}
		ranges = found
		return nil
	}); err != nil {
		return nil, err
	}

	return ranges, nil
}

// SSNExists は SSN が登録済みかを返します。
func (s *Service) SSNExists(ctx context.Context, ssn string) (bool, error) {
	ssn = strings.TrimSpace(ssn)
	if !ValidateSSN(ssn) {
		return false, &ValidationError{Field: "ssn"}
	}

	var exists bool
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ExistsBySSN(txCtx, ssn)
		if err != nil {
			return err
		}
		exists = found
		return nil
	}); err != nil {
		return false, err
	}

	return exists, nil
}

// Hire は社員と初期の給与割り当てを 1 つのトランザクションで登録します。
// 割り当ての作成に失敗した場合は社員も残りません。
func (s *Service) Hire(ctx context.Context, in HireInput) (*ActiveAssignment, error) {
	in, err := s.normalizeHireInput(ctx, in)
	if err != nil {
		return nil, err
	}

	var hired *ActiveAssignment
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureSSNNotExists(txCtx, in.SSN); err != nil {
			return err
		}

		emp, err := s.repo.CreateEmployee(txCtx, &Employee{
			Name:     in.Name,
			SSN:      in.SSN,
			DOB:      in.DOB,
			Address:  in.Address,
			City:     in.City,
			State:    in.State,
			Zip:      in.Zip,
			Phone:    in.Phone,
			JoinDate: in.JoinDate,
		})
		if err != nil {
			return err
		}

		assignment, err := s.repo.CreateSalaryAssignment(txCtx, &SalaryAssignment{
			EmployeeID: emp.ID,
			FromDate:   in.JoinDate,
			Title:      in.Title,
			Salary:     in.Salary,
		})
		if err != nil {
			return fmt.Errorf("create salary assignment for employee %d: %w", emp.ID, err)
		}

		hired = &ActiveAssignment{Employee: *emp, Assignment: *assignment}
		return nil
	}); err != nil {
		return nil, err
	}

	return hired, nil
}

// SeedIfEmpty は社員が 1 件も存在しない場合に限り generate の結果を登録します。
// 登録件数を返します。入力値の検証は行いません。
func (s *Service) SeedIfEmpty(ctx context.Context, generate func(today time.Time) []*ActiveAssignment) (int, error) {
	if generate == nil {
		return 0, nil
	}

	today := s.Today()
	inserted := 0
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		count, err := s.repo.CountEmployees(txCtx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		for _, row := range generate(today) {
			emp := row.Employee
			created, err := s.repo.CreateEmployee(txCtx, &emp)
			if err != nil {
				return fmt.Errorf("seed employee %s: %w", emp.SSN, err)
			}

			assignment := row.Assignment
			assignment.EmployeeID = created.ID
			if _, err := s.repo.CreateSalaryAssignment(txCtx, &assignment); err != nil {
				return fmt.Errorf("seed salary assignment for %s: %w", emp.SSN, err)
			}
			inserted++
		}
		return nil
	}); err != nil {
		return 0, err
	}

	return inserted, nil
}

func (s *Service) listActive(ctx context.Context, filter ActiveFilter) ([]*ActiveAssignment, error) {
	filter.AsOf = s.Today()

	var rows []*ActiveAssignment
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ListActive(txCtx, filter)
		if err != nil {
			return err
		}
		rows = found
		return nil
	}); err != nil {
		return nil, err
	}

	return rows, nil
}

func (s *Service) ensureSSNNotExists(ctx context.Context, ssn string) error {
	exists, err := s.repo.ExistsBySSN(ctx, ssn)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateSSN
	}
	return nil
}

func (s *Service) normalizeHireInput(ctx context.Context, in HireInput) (HireInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SSN = strings.TrimSpace(in.SSN)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.ToUpper(strings.TrimSpace(in.State))
	in.Zip = strings.TrimSpace(in.Zip)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Title = strings.TrimSpace(in.Title)
	in.DOB = truncateDate(in.DOB)
	in.JoinDate = truncateDate(in.JoinDate)

	if err := validateHireInput(ctx, &in, s.Today()); err != nil {
		return HireInput{}, err
	}
	return in, nil
}
