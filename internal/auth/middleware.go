// Package auth 提供管理 API 的访问保护。
// 管理 API 只暴露只读的运行状态，因此认证机制保持极简：
// 一个静态管理令牌，通过 Bearer 头携带，以 SHA-256 哈希做恒定时间比较。
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// Middleware 是管理令牌认证中间件。
// 令牌为空时中间件处于关闭状态，所有请求直接放行。
type Middleware struct {
	// tokenHash 管理令牌的 SHA-256 哈希值，不保留原始令牌
	tokenHash [sha256.Size]byte
	// enabled 是否启用认证
	enabled bool
}

// NewMiddleware 创建管理令牌认证中间件。
// token 为空时返回的中间件不做任何检查。
func NewMiddleware(token string) *Middleware {
	m := &Middleware{}
	if token != "" {
		m.tokenHash = sha256.Sum256([]byte(token))
		m.enabled = true
	}
	return m
}

// Enabled 返回认证是否启用。
func (m *Middleware) Enabled() bool {
	return m.enabled
}

// Authenticate 验证请求携带的 Bearer 令牌。
// 比较在哈希值上以恒定时间进行，避免时序侧信道。
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			presented := sha256.Sum256([]byte(strings.TrimPrefix(authHeader, "Bearer ")))
			if subtle.ConstantTimeCompare(presented[:], m.tokenHash[:]) == 1 {
				next.ServeHTTP(w, r)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized"}`))
	})
}
