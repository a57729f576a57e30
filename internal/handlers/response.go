// Package handlers はHTTPリクエストを処理するハンドラーを提供します。
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"cwh-todolist/backend/internal/apierror"
	"cwh-todolist/backend/internal/auth"
	"cwh-todolist/backend/internal/validation"
)

// SuccessResponse は成功時のレスポンス全体です。
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, SuccessResponse{Success: true, Message: message})
}

// fail はエラーを登録して処理を中断します。レスポンスは routes.ErrorHandler が書き込みます。
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

type normalizer interface {
	Normalize()
}

// bindJSON はボディをデコードし、正規化してから検証します。
func bindJSON(c *gin.Context, v *validation.Validator, req normalizer) *apierror.Error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apierror.Validation([]validation.FieldError{decodeError(err)})
	}
	req.Normalize()
	if errs := v.Struct(req); errs != nil {
		return apierror.Validation(errs)
	}
	return nil
}

func decodeError(err error) validation.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return validation.FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type.Kind()),
		}
	}
	return validation.FieldError{Field: "body", Message: "Request body must be a valid JSON object"}
}

// principal は認証済みユーザーを取り出します。認証ミドルウェアを通っていなければ 401 です。
func principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := auth.PrincipalFrom(c.Request.Context())
	if !ok {
		fail(c, apierror.Unauthorized("Authorization token is required"))
	}
	return p, ok
}
