// Package logging は log/slog ベースの構造化ロガーを構築します。
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New は環境に応じたハンドラーで slog.Logger を作成します。
// production では JSON、それ以外ではテキスト形式で出力します。
func New(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if env == "production" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("service", "cwh-todolist-api")
}

// ParseLevel は LOG_LEVEL の文字列を slog.Level に変換します。不明な値は info になります。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard はテスト用に何も出力しないロガーを返します。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
