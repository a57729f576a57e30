// Package validation はリクエスト構造体の `validate` タグを検証し、
// すべての違反をフィールド単位のエラーとしてまとめて返します。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"cwh-todolist/backend/internal/models"
)

// FieldError はクライアントに返す検証エラーの1件です。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator は go-playground/validator をラップします。
type Validator struct {
	v *validator.Validate
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ISO 8601 として受け付けるレイアウト（上から順に試す）
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// New はカスタムルールを登録した Validator を作成します。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// エラーのフィールド名は JSON 名を使う
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		return hasPasswordComplexity(fl.Field().String())
	})
	mustRegister(v, "iso8601", func(fl validator.FieldLevel) bool {
		_, err := ParseTime(fl.Field().String())
		return err == nil
	})

	v.RegisterStructValidation(createTodoOrder, models.CreateTodoRequest{})
	v.RegisterStructValidation(updateTodoOrder, models.UpdateTodoRequest{})

	return &Validator{v: v}
}

// Struct は s を検証し、違反があればすべて返します。違反が無ければ nil です。
func (val *Validator) Struct(s any) []FieldError {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// 構造体以外を渡したなどのプログラミングエラー
		return []FieldError{{Field: "unknown", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

// ParseTime は ISO 8601 文字列を UTC の time.Time に変換します。
// オフセットの無い日時は UTC として解釈します。
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 date %q", s)
}

func createTodoOrder(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.CreateTodoRequest)
	checkOrder(sl, req.StartDate, req.DueDate)
}

// 更新時は両方の日付が同じリクエストに含まれる場合のみ順序を検証する
func updateTodoOrder(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.UpdateTodoRequest)
	if req.StartDate == nil || req.DueDate == nil {
		return
	}
	checkOrder(sl, *req.StartDate, *req.DueDate)
}

func checkOrder(sl validator.StructLevel, startRaw, dueRaw string) {
	start, err := ParseTime(startRaw)
	if err != nil {
		return
	}
	due, err := ParseTime(dueRaw)
	if err != nil {
		return
	}
	if !due.After(start) {
		sl.ReportError(dueRaw, "dueDate", "DueDate", "after_start", "")
	}
}

func hasPasswordComplexity(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return "Please enter a valid email address"
	case "username":
		return "Username may contain only letters, digits and underscores"
	case "password":
		return "Password must contain at least one lowercase letter, one uppercase letter and one digit"
	case "iso8601":
		return fmt.Sprintf("%s must be a valid ISO 8601 date", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "after_start":
		return "dueDate must be after startDate"
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}
