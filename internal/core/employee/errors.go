package employee

import "errors"

var (
	// ErrValidation は入力値が検証に通らなかった場合に返却されます。
	ErrValidation = errors.New("employee: validation failed")
	// ErrTooManyInvalidAttempts は同じ項目で規定回数続けて入力に失敗した場合に返却されます。
	ErrTooManyInvalidAttempts = errors.New("employee: too many invalid attempts")
	// ErrDuplicateSSN は SSN 重複時に返却されます。
	ErrDuplicateSSN = errors.New("employee: ssn already exists")
	// ErrEmployeeNotFound は参照先の社員が存在しない場合に返却されます。
	ErrEmployeeNotFound = errors.New("employee: not found")
	// ErrSearchTermTooLong は検索語が上限文字数を超えた場合に返却されます。
	ErrSearchTermTooLong = errors.New("employee: search term too long")
	// ErrInvalidLimit は一覧取得時の件数上限が不正な場合に返却されます。
	ErrInvalidLimit = errors.New("employee: invalid limit")
)

// ValidationError はフィールド単位の検証エラーです。
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "employee: invalid " + e.Field
}

// Is は errors.Is(err, ErrValidation) を満たすために実装しています。
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
