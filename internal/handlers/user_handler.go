package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cwh-todolist/backend/internal/apierror"
	"cwh-todolist/backend/internal/models"
	"cwh-todolist/backend/internal/services"
	"cwh-todolist/backend/internal/validation"
)

// UserHandler はユーザー関連のハンドラーを管理します。
type UserHandler struct {
	userService *services.UserService
	validator   *validation.Validator
}

// NewUserHandler は新しいUserHandlerを作成します。
func NewUserHandler(userService *services.UserService, v *validation.Validator) *UserHandler {
	return &UserHandler{userService: userService, validator: v}
}

// SignupHandler はユーザー登録を処理します。
func (h *UserHandler) SignupHandler(c *gin.Context) {
	var req models.UserSignupRequest
	if apiErr := bindJSON(c, h.validator, &req); apiErr != nil {
		fail(c, apiErr)
		return
	}

	res, err := h.userService.Signup(c.Request.Context(), req)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		fail(c, apierror.Conflict("Username is already taken"))
	case errors.Is(err, services.ErrEmailTaken):
		fail(c, apierror.Conflict("Email is already registered"))
	case err != nil:
		fail(c, apierror.Internal("Failed to register user", err))
	default:
		respondData(c, http.StatusOK, res)
	}
}

// LoginHandler はユーザーログインを処理します。
func (h *UserHandler) LoginHandler(c *gin.Context) {
	var req models.UserLoginRequest
	if apiErr := bindJSON(c, h.validator, &req); apiErr != nil {
		fail(c, apiErr)
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, apierror.Unauthorized("Invalid email or password"))
	case err != nil:
		fail(c, apierror.Internal("Failed to log in", err))
	default:
		respondData(c, http.StatusOK, res)
	}
}
