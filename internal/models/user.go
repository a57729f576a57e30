package models

import (
	"strings"
	"time"
)

// User はユーザーのデータベース構造体を表します。
// PasswordHash は JSON に出力されません。
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSignupRequest はユーザー登録リクエストの構造体です。
type UserSignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128,password"`
}

// Normalize は検証前に前後の空白を除去し、メールアドレスを小文字にします。
func (r *UserSignupRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = normalizeEmail(r.Email)
}

// UserLoginRequest はユーザーログインリクエストの構造体です。
// 既存の認証情報の照合なので、パスワードの複雑さは検証しません。
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Normalize は検証前にメールアドレスを正規化します。
func (r *UserLoginRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

// AuthResponse は signup / login 成功時の data 部分です。
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
