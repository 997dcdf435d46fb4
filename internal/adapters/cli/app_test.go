package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/codex-roster/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-roster/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

type fakeUseCase struct {
	rows      []*employee.ActiveAssignment
	ranges    []*employee.TitleSalaryRange
	searchErr error
	rangeErr  error
	existing  map[string]bool

	terms []string
	hired []employee.HireInput
}

func (f *fakeUseCase) ListAll(ctx context.Context) ([]*employee.ActiveAssignment, error) {
	res, err := f.Search(ctx, "")
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

func (f *fakeUseCase) Search(_ context.Context, term string) (*employee.SearchResult, error) {
	f.terms = append(f.terms, term)
	if len([]rune(term)) > employee.MaxSearchTermLength {
		return nil, employee.ErrSearchTermTooLong
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &employee.SearchResult{Kind: employee.ClassifySearch(term), Term: term, Rows: f.rows}, nil
}

func (f *fakeUseCase) TitleRanges(context.Context) ([]*employee.TitleSalaryRange, error) {
	return f.ranges, f.rangeErr
}

func (f *fakeUseCase) SSNExists(_ context.Context, ssn string) (bool, error) {
	return f.existing[ssn], nil
}

func (f *fakeUseCase) Hire(_ context.Context, in employee.HireInput) (*employee.ActiveAssignment, error) {
	f.hired = append(f.hired, in)
	return &employee.ActiveAssignment{
		Employee:   employee.Employee{ID: int64(len(f.hired)), Name: in.Name, SSN: in.SSN},
		Assignment: employee.SalaryAssignment{ID: 1, EmployeeID: int64(len(f.hired)), Title: in.Title, Salary: in.Salary},
	}, nil
}

func (f *fakeUseCase) Today() time.Time { return testToday }

type harness struct {
	svc    *fakeUseCase
	out    *bytes.Buffer
	opened int
	closed int
}

func (h *harness) run(t *testing.T, stdin string, args ...string) int {
	t.Helper()

	open := func(context.Context) (employee.UseCase, func(), error) {
		h.opened++
		return h.svc, func() { h.closed++ }, nil
	}
	return NewApp(open, strings.NewReader(stdin), h.out, nil).Run(context.Background(), args)
}

func newHarness(svc *fakeUseCase) *harness {
	return &harness{svc: svc, out: &bytes.Buffer{}}
}

func sampleRow() *employee.ActiveAssignment {
	return &employee.ActiveAssignment{
		Employee: employee.Employee{
			ID:       1,
			Name:     "Jane Doe",
			SSN:      "123-45-6789",
			DOB:      time.Date(1990, 1, 15, 0, 0, 0, 0, time.UTC),
			Address:  "100 Main St",
			City:     "Springfield",
			State:    "IL",
			Zip:      "62701",
			Phone:    "(217) 555-0100",
			JoinDate: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Assignment: employee.SalaryAssignment{
			ID:         1,
			EmployeeID: 1,
			FromDate:   time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
			Title:      "Senior Developer",
			Salary:     decimal.RequireFromString("85000.50"),
		},
	}
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeUseCase{})
	code := h.run(t, "")

	assert.Equal(t, 0, code)
	assert.Equal(t, Usage+"\n", h.out.String())
	assert.Zero(t, h.opened, "usage must not open the store")
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Parallel()

	for _, arg := range []string{"-delete", "report", "--"} {
		h := newHarness(&fakeUseCase{})
		code := h.run(t, "", arg)

		assert.Equal(t, 0, code, arg)
		assert.Equal(t, "Invalid command. Use -list, -titles, or -add\n", h.out.String(), arg)
		assert.Zero(t, h.opened, arg)
	}
}

func TestRun_ListRendersRoster(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeUseCase{rows: []*employee.ActiveAssignment{sampleRow()}})
	code := h.run(t, "", "-LIST")

	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimRight(h.out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Name"))
	assert.Equal(t, strings.Repeat("-", len(lines[0])), lines[1])
	assert.Contains(t, lines[2], "Jane Doe")
	assert.Contains(t, lines[2], "01/15/1990")
	assert.Contains(t, lines[2], "Active")
	assert.True(t, strings.HasSuffix(lines[2], "$85,000.50"))
	assert.Equal(t, []string{""}, h.svc.terms)
	assert.Equal(t, 1, h.opened)
	assert.Equal(t, 1, h.closed)
}

func TestRun_ListSearch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		rows []*employee.ActiveAssignment
		want string
	}{
		{
			name: "name match",
			args: []string{"-list", "jane"},
			rows: []*employee.ActiveAssignment{sampleRow()},
			want: "Name: Jane Doe, Title: Senior Developer, Salary: $85,000.50\n",
		},
		{
			name: "name no match",
			args: []string{"list", "zed"},
			want: "No employees found\n",
		},
		{
			name: "title no match",
			args: []string{"-list", "Manager"},
			want: "No employees found with that title\n",
		},
		{
			name: "term starting with dash",
			args: []string{"-list", "-x"},
			want: "No employees found\n",
		},
		{
			name: "term too long",
			args: []string{"-list", strings.Repeat("a", employee.MaxSearchTermLength+1)},
			want: "Search term too long\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(&fakeUseCase{rows: tt.rows})
			code := h.run(t, "", tt.args...)

			assert.Equal(t, 0, code)
			assert.Equal(t, tt.want, h.out.String())
		})
	}
}

func TestRun_ListStorageFailure(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":        "Error retrieving employee data\n",
		"jane":    "Error searching employees\n",
		"Analyst": "Error searching by title\n",
	}

	for term, want := range tests {
		h := newHarness(&fakeUseCase{searchErr: errors.New("connection reset")})
		args := []string{"-list"}
		if term != "" {
			args = append(args, term)
		}

		code := h.run(t, "", args...)

		assert.Equal(t, 0, code, term)
		assert.Equal(t, want, h.out.String(), term)
	}
}

func TestRun_Titles(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeUseCase{ranges: []*employee.TitleSalaryRange{
		{Title: "Analyst", MinSalary: decimal.NewFromInt(60000), MaxSalary: decimal.NewFromInt(72500)},
		{Title: "Developer", MinSalary: decimal.NewFromInt(90000), MaxSalary: decimal.NewFromInt(90000)},
	}})
	code := h.run(t, "", "-titles")

	assert.Equal(t, 0, code)
	assert.Equal(t,
		"Title: Analyst, Min Salary: $60,000.00, Max Salary: $72,500.00\n"+
			"Title: Developer, Min Salary: $90,000.00, Max Salary: $90,000.00\n",
		h.out.String())
}

func TestRun_TitlesEmptyAndFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeUseCase{})
	assert.Equal(t, 0, h.run(t, "", "titles"))
	assert.Equal(t, "No active titles found\n", h.out.String())

	h = newHarness(&fakeUseCase{rangeErr: errors.New("boom")})
	assert.Equal(t, 0, h.run(t, "", "-titles"))
	assert.Equal(t, "Error retrieving title data\n", h.out.String())
}

func TestRun_StoreUnavailable(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	open := func(context.Context) (employee.UseCase, func(), error) {
		return nil, nil, errors.Join(pgdb.ErrUnavailable, errors.New("dial tcp: refused"))
	}

	code := NewApp(open, strings.NewReader(""), &out, nil).Run(context.Background(), []string{"-list"})

	assert.Equal(t, 1, code)
	assert.Equal(t, "Application error\n", out.String())
}

const validAddInput = "Jane Doe\n123-45-6789\n01/15/1990\n100 Main St\nSpringfield\nil\n62701\n(217) 555-0100\n03/01/2020\nAnalyst\n$72,500\n"

func TestRun_AddSuccess(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeUseCase{})
	code := h.run(t, validAddInput, "-add")

	require.Equal(t, 0, code)
	require.Len(t, h.svc.hired, 1)
	in := h.svc.hired[0]
	assert.Equal(t, "Jane Doe", in.Name)
	assert.Equal(t, "IL", in.State)
	assert.True(t, in.Salary.Equal(decimal.NewFromInt(72500)))
	assert.True(t, strings.HasSuffix(h.out.String(), "Employee added successfully!\n"))
	assert.Contains(t, h.out.String(), "Enter Name: ")
}

func TestRun_AddRetriesThenAborts(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeUseCase{})
	code := h.run(t, "J4ne\n\n!!\n", "add")

	assert.Equal(t, 0, code)
	assert.Empty(t, h.svc.hired)
	assert.Equal(t, 3, strings.Count(h.out.String(), "Invalid input. Please try again."))
	assert.True(t, strings.HasSuffix(h.out.String(), "Error: Too many invalid attempts. Employee not added.\n"))
}

func TestRun_AddDuplicateSSN(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeUseCase{existing: map[string]bool{"123-45-6789": true}})
	code := h.run(t, validAddInput, "-add")

	assert.Equal(t, 0, code)
	assert.Empty(t, h.svc.hired)
	assert.True(t, strings.HasSuffix(h.out.String(), "Error: SSN already exists\n"))
}

func TestRun_AddInputEnds(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeUseCase{})
	code := h.run(t, "Jane Doe\n", "-add")

	assert.Equal(t, 0, code)
	assert.Empty(t, h.svc.hired)
	assert.True(t, strings.HasSuffix(h.out.String(), "Error: Input ended before all fields were entered\n"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "a very ...", truncate("a very long value", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestFormatCurrency(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$1,000,000.00", formatCurrency(decimal.NewFromInt(1000000)))
	assert.Equal(t, "$0.99", formatCurrency(decimal.RequireFromString("0.99")))
	assert.Equal(t, "$85,000.50", formatCurrency(decimal.RequireFromString("85000.5")))
	assert.Equal(t, "$999,999.99", formatCurrency(decimal.RequireFromString("999999.99")))
	assert.Equal(t, "$12,345,678,901,234.57", formatCurrency(decimal.RequireFromString("12345678901234.567")))
}
