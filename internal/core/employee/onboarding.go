package employee

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DefaultMaxAttempts は 1 項目あたりの連続入力失敗の上限です。
const DefaultMaxAttempts = 3

// InputDateLayouts は日付入力として受け付ける書式です。
var InputDateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02"}

// Prompter は社員登録の対話入力を担います。
type Prompter interface {
	// Ask は prompt を表示して 1 行を読み取ります。
	Ask(ctx context.Context, prompt string) (string, error)
	// Reject は入力が受け付けられなかったことを通知します。
	Reject(ctx context.Context, field, reason string)
}

// HireWorkflow は項目ごとの入力と検証を順に行い、最後に社員を登録します。
// いずれかの項目で連続して MaxAttempts 回失敗すると何も保存せずに中断します。
type HireWorkflow struct {
	svc         UseCase
	prompter    Prompter
	maxAttempts int
}

// NewHireWorkflow は HireWorkflow を生成します。
func NewHireWorkflow(svc UseCase, prompter Prompter) *HireWorkflow {
	return &HireWorkflow{svc: svc, prompter: prompter, maxAttempts: DefaultMaxAttempts}
}

type hireStep struct {
	field  string
	prompt string
	maxLen int
	reason string
	// apply は raw を解釈して in に反映し、検証に通れば true を返します。
	apply func(raw string, in *HireInput, today time.Time) bool
	// check は検証済みの値に対する後続チェックで、エラーはリトライせずに返します。
	check func(ctx context.Context, in *HireInput) error
}

const (
	reasonInvalidInput = "Invalid input. Please try again."
	reasonInvalidDate  = "Invalid date format. Please try again."
)

func (w *HireWorkflow) steps() []hireStep {
	return []hireStep{
		{field: "name", prompt: "Enter Name: ", maxLen: 100, reason: reasonInvalidInput,
			apply: textField(ValidateName, func(in *HireInput, v string) { in.Name = v })},
		{field: "ssn", prompt: "Enter SSN (###-##-####): ", maxLen: 11, reason: reasonInvalidInput,
			apply: textField(ValidateSSN, func(in *HireInput, v string) { in.SSN = v }),
			check: w.checkSSNUnique},
		{field: "dob", prompt: "Enter DOB (MM/dd/yyyy): ", maxLen: 10,
			reason: "Invalid date. Employee must be between 22 and 64 years old.",
			apply: dateField(ValidateAge, func(in *HireInput, v time.Time) { in.DOB = v })},
		{field: "address", prompt: "Enter Address: ", maxLen: 100, reason: reasonInvalidInput,
			apply: textField(ValidateAddress, func(in *HireInput, v string) { in.Address = v })},
		{field: "city", prompt: "Enter City: ", maxLen: 50, reason: reasonInvalidInput,
			apply: textField(ValidateCity, func(in *HireInput, v string) { in.City = v })},
		{field: "state", prompt: "Enter State (2 letters): ", maxLen: 2, reason: reasonInvalidInput,
			apply: textField(ValidateState, func(in *HireInput, v string) { in.State = strings.ToUpper(v) })},
		{field: "zip", prompt: "Enter Zip: ", maxLen: 5, reason: reasonInvalidInput,
			apply: textField(ValidateZip, func(in *HireInput, v string) { in.Zip = v })},
		{field: "phone", prompt: "Enter Phone (###) ###-####: ", maxLen: 14, reason: reasonInvalidInput,
			apply: textField(ValidatePhone, func(in *HireInput, v string) { in.Phone = v })},
		{field: "join_date", prompt: "Enter Join Date (MM/dd/yyyy): ", maxLen: 10,
			reason: "Invalid date. Join date cannot be in the future.",
			apply: dateField(ValidateJoinDate, func(in *HireInput, v time.Time) { in.JoinDate = v })},
		{field: "title", prompt: "Enter Title: ", maxLen: 50, reason: reasonInvalidInput,
			apply: textField(ValidateTitle, func(in *HireInput, v string) { in.Title = v })},
		{field: "salary", prompt: "Enter Salary: ", maxLen: 20,
			reason: "Invalid salary. Must be positive and reasonable.",
			apply: salaryField},
	}
}

// Run は全項目を収集して社員を登録します。
func (w *HireWorkflow) Run(ctx context.Context) (*ActiveAssignment, error) {
	today := w.svc.Today()

	var in HireInput
	for _, step := range w.steps() {
		if err := w.collect(ctx, step, &in, today); err != nil {
			return nil, err
		}
	}

	return w.svc.Hire(ctx, in)
}

func (w *HireWorkflow) collect(ctx context.Context, step hireStep, in *HireInput, today time.Time) error {
	for attempt := 0; attempt < w.maxAttempts; attempt++ {
		raw, err := w.prompter.Ask(ctx, step.prompt)
		if err != nil {
			return fmt.Errorf("read %s: %w", step.field, err)
		}

		raw = strings.TrimSpace(raw)
		if raw != "" && utf8.RuneCountInString(raw) <= step.maxLen && step.apply(raw, in, today) {
			if step.check != nil {
				return step.check(ctx, in)
			}
			return nil
		}

		w.prompter.Reject(ctx, step.field, step.reason)
	}

	return fmt.Errorf("%s: %w", step.field, ErrTooManyInvalidAttempts)
}

func (w *HireWorkflow) checkSSNUnique(ctx context.Context, in *HireInput) error {
	exists, err := w.svc.SSNExists(ctx, in.SSN)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateSSN
	}
	return nil
}

func textField(valid func(string) bool, set func(*HireInput, string)) func(string, *HireInput, time.Time) bool {
	return func(raw string, in *HireInput, _ time.Time) bool {
		if !valid(raw) {
			return false
		}
		set(in, raw)
		return true
	}
}

func dateField(valid func(value, today time.Time) bool, set func(*HireInput, time.Time)) func(string, *HireInput, time.Time) bool {
	return func(raw string, in *HireInput, today time.Time) bool {
		value, ok := ParseInputDate(raw)
		if !ok || !valid(value, today) {
			return false
		}
		set(in, value)
		return true
	}
}

func salaryField(raw string, in *HireInput, _ time.Time) bool {
	value, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimPrefix(raw, "$"), ",", ""))
	if err != nil || !ValidateSalary(value) {
		return false
	}
	in.Salary = value
	return true
}

// ParseInputDate は InputDateLayouts のいずれかで日付を解釈します。
func ParseInputDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range InputDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return truncateDate(t), true
		}
	}
	return time.Time{}, false
}
