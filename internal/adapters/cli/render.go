package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ogurasousui/codex-roster/internal/core/employee"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const displayDateLayout = "01/02/2006"

// column は名簿表の 1 列です。
type column struct {
	header string
	width  int
	right  bool
	value  func(*employee.ActiveAssignment) string
}

var rosterColumns = []column{
	{header: "Name", width: 20, value: func(r *employee.ActiveAssignment) string { return r.Employee.Name }},
	{header: "SSN", width: 12, value: func(r *employee.ActiveAssignment) string { return r.Employee.SSN }},
	{header: "DOB", width: 10, value: func(r *employee.ActiveAssignment) string { return formatDate(r.Employee.DOB) }},
	{header: "Address", width: 20, value: func(r *employee.ActiveAssignment) string { return r.Employee.Address }},
	{header: "City", width: 15, value: func(r *employee.ActiveAssignment) string { return r.Employee.City }},
	{header: "State", width: 5, value: func(r *employee.ActiveAssignment) string { return r.Employee.State }},
	{header: "Zip", width: 5, value: func(r *employee.ActiveAssignment) string { return r.Employee.Zip }},
	{header: "Phone", width: 15, value: func(r *employee.ActiveAssignment) string { return r.Employee.Phone }},
	{header: "Join Date", width: 10, value: func(r *employee.ActiveAssignment) string { return formatDate(r.Employee.JoinDate) }},
	{header: "Exit Date", width: 10, value: func(r *employee.ActiveAssignment) string { return formatExit(r.Employee.ExitDate) }},
	{header: "Title", width: 20, value: func(r *employee.ActiveAssignment) string { return r.Assignment.Title }},
	{header: "Salary", width: 12, right: true, value: func(r *employee.ActiveAssignment) string { return formatCurrency(r.Assignment.Salary) }},
}

var printer = message.NewPrinter(language.AmericanEnglish)

// renderRoster は全列の名簿表を出力します。
func renderRoster(w io.Writer, rows []*employee.ActiveAssignment) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No employees found")
		return
	}

	headers := make([]string, len(rosterColumns))
	for i, c := range rosterColumns {
		headers[i] = pad(c.header, c.width, c.right)
	}
	header := strings.Join(headers, " ")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	cells := make([]string, len(rosterColumns))
	for _, row := range rows {
		for i, c := range rosterColumns {
			cells[i] = pad(truncate(c.value(row), c.width), c.width, c.right)
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}
}

// renderSummary は検索結果を 1 行ずつ出力します。
func renderSummary(w io.Writer, rows []*employee.ActiveAssignment) {
	for _, row := range rows {
		fmt.Fprintf(w, "Name: %s, Title: %s, Salary: %s\n",
			row.Employee.Name, row.Assignment.Title, formatCurrency(row.Assignment.Salary))
	}
}

func renderTitleRanges(w io.Writer, ranges []*employee.TitleSalaryRange) {
	for _, r := range ranges {
		fmt.Fprintf(w, "Title: %s, Min Salary: %s, Max Salary: %s\n",
			r.Title, formatCurrency(r.MinSalary), formatCurrency(r.MaxSalary))
	}
}

// formatCurrency は米ドル表記 ($85,000.50) に整形します。
// 整数部のみ桁区切りし、小数部は decimal の値をそのまま使います。
func formatCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	fixed := d.Abs().StringFixed(2)
	_, cents, _ := strings.Cut(fixed, ".")
	return sign + printer.Sprintf("$%d.%s", d.Abs().Round(2).IntPart(), cents)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayDateLayout)
}

func formatExit(t *time.Time) string {
	if t == nil {
		return "Active"
	}
	return formatDate(*t)
}

// truncate は width を超える文字列を "..." で切り詰めます。
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func pad(s string, width int, right bool) string {
	if right {
		return fmt.Sprintf("%*s", width, s)
	}
	return fmt.Sprintf("%-*s", width, s)
}
