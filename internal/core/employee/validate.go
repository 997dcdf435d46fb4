package employee

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	minHireAge = 22
	maxHireAge = 64
)

var (
	ssnPattern   = regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)
	phonePattern = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
	statePattern = regexp.MustCompile(`^[A-Z]{2}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}$`)

	maxSalary = decimal.NewFromInt(1_000_000)
)

// ValidateName は英字・空白・アポストロフィのみで構成された氏名かを判定します。
func ValidateName(s string) bool {
	return notBlank(s) && allRunes(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsSpace(r) || r == '\''
	})
}

// ValidateSSN は ###-##-#### 形式かを判定します。
func ValidateSSN(s string) bool {
	return ssnPattern.MatchString(s)
}

// ValidateAge は today 時点で 22 歳以上 64 歳以下となる生年月日かを判定します。
func ValidateAge(dob, today time.Time) bool {
	dob = truncateDate(dob)
	today = truncateDate(today)
	youngest := today.AddDate(-minHireAge, 0, 0)
	oldest := today.AddDate(-maxHireAge, 0, 0)
	return !dob.After(youngest) && !dob.Before(oldest)
}

// ValidateAddress は番地らしき数字を含むかを判定します。
func ValidateAddress(s string) bool {
	return notBlank(s) && strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func ValidateCity(s string) bool {
	return notBlank(s) && allRunes(s, isLetterOrSpace)
}

// ValidateState は大文字化した上で 2 文字の英字かを判定します。
func ValidateState(s string) bool {
	return statePattern.MatchString(strings.ToUpper(s))
}

func ValidateZip(s string) bool {
	return zipPattern.MatchString(s)
}

// ValidatePhone は (###) ###-#### 形式かを判定します。
func ValidatePhone(s string) bool {
	return phonePattern.MatchString(s)
}

func ValidateTitle(s string) bool {
	return notBlank(s) && allRunes(s, isLetterOrSpace)
}

// ValidateSalary は 0 < d <= 1,000,000 かつ小数点以下 2 桁以内かを判定します。
func ValidateSalary(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThanOrEqual(maxSalary) && d.Equal(d.Truncate(2))
}

// ValidateJoinDate は入社日が today 以前かを判定します。
func ValidateJoinDate(join, today time.Time) bool {
	return !truncateDate(join).After(truncateDate(today))
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

func allRunes(s string, ok func(rune) bool) bool {
	for _, r := range s {
		if !ok(r) {
			return false
		}
	}
	return true
}

func isLetterOrSpace(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsSpace(r)
}

type todayKey struct{}

// hireValidator は HireInput の validate タグを上記の判定関数で検証します。
var hireValidator = newHireValidator()

func newHireValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("field")
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	text := map[string]func(string) bool{
		"employee_name":  ValidateName,
		"employee_ssn":   ValidateSSN,
		"street_address": ValidateAddress,
		"city_name":      ValidateCity,
		"us_state":       ValidateState,
		"zip5":           ValidateZip,
		"us_phone":       ValidatePhone,
		"job_title":      ValidateTitle,
	}
	for tag, fn := range text {
		mustRegister(v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}))
	}

	mustRegister(v.RegisterValidation("salary", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && ValidateSalary(d)
	}))

	dates := map[string]func(value, today time.Time) bool{
		"hire_age":   ValidateAge,
		"not_future": ValidateJoinDate,
	}
	for tag, fn := range dates {
		mustRegister(v.RegisterValidationCtx(tag, func(ctx context.Context, fl validator.FieldLevel) bool {
			today, _ := ctx.Value(todayKey{}).(time.Time)
			value, ok := fl.Field().Interface().(time.Time)
			return ok && fn(value, today)
		}))
	}

	return v
}

func mustRegister(err error) {
	if err != nil {
		panic(err)
	}
}

// validateHireInput は最初に失敗した項目を ValidationError として返します。
func validateHireInput(ctx context.Context, in *HireInput, today time.Time) error {
	err := hireValidator.StructCtx(context.WithValue(ctx, todayKey{}, today), in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: fieldErrs[0].Field()}
	}
	return err
}
