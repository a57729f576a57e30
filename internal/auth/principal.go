// Package auth は認証済みユーザーをリクエストの context.Context に載せて受け渡します。
package auth

import "context"

// Principal は検証済みトークンから得た認証済みユーザーです。
type Principal struct {
	UserID string
	Email  string
}

type principalKey struct{}

// WithPrincipal は p を持つ子コンテキストを返します。
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom はコンテキストから Principal を取り出します。
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}
