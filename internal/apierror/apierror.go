// Package apierror はクライアントに返すエラーコードとHTTPステータスの対応を定義します。
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"cwh-todolist/backend/internal/validation"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeInternal     = "INTERNAL_ERROR"
)

// Error はエンベロープ {success:false,error:{code,message,details?}} に変換されるエラーです。
type Error struct {
	Status  int                     `json:"-"`
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []validation.FieldError `json:"details,omitempty"`

	// Cause はサーバー側のログにのみ出力する元のエラーです。
	Cause error `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Validation(details []validation.FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: "Input validation failed", Details: details}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: CodeConflict, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

// Internal は詳細を隠した500エラーを返します。cause はログ用です。
func Internal(msg string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: msg, Cause: cause}
}

// Response はエラー時のレスポンス全体です。
type Response struct {
	Success bool   `json:"success"`
	Error   *Error `json:"error"`
}

// From は任意のエラーを *Error に変換します。未知のエラーは内部エラーとして扱い、詳細を隠します。
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("Internal server error", err)
}
