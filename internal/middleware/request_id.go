package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// contextKey 是用于在 context.Context 中存储值的自定义类型，以避免键冲突。
type contextKey string

// RequestIDKey 是用于在上下文中存储请求 ID 的键。
const RequestIDKey contextKey = "requestID"

// RequestIDHeader 是携带请求 ID 的 HTTP 头。
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// RequestID 是一个 HTTP 中间件，沿用调用方给出的 X-Request-ID，没有则生成一个，
// 写入上下文并回写到响应头。
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestIDFromContext 从上下文中获取请求 ID。
// 如果不存在或类型不正确，返回空字符串和 false。
func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDKey).(string)
	return id, ok
}
