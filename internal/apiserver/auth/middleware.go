package auth

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// ============================================================================
// Token 校验网关
// ============================================================================

// Gate 请求网关：解析 Authorization 头中的 Bearer Token
//
// 没有 Bearer 头的请求按匿名放行，需要身份的路由再叠加 RequireAuth / RequireRoles。
type Gate struct {
	cfg Config

	// queryTokenPaths 允许通过 ?token= 传递令牌的路径（浏览器 WebSocket 无法设置请求头）
	queryTokenPaths map[string]bool
}

// NewGate 创建网关
func NewGate(cfg Config, queryTokenPaths ...string) *Gate {
	g := &Gate{cfg: cfg, queryTokenPaths: make(map[string]bool, len(queryTokenPaths))}
	for _, p := range queryTokenPaths {
		g.queryTokenPaths[p] = true
	}
	return g
}

// Verify 校验请求携带的令牌
//
//   - 无 Authorization 头或不是 Bearer 方案：返回 (nil, nil)，匿名
//   - "Bearer" 后没有令牌：ErrMissingToken
//   - 令牌签名错误、过期、格式错误：ErrInvalidToken
func (g *Gate) Verify(r *http.Request) (*AuthUser, error) {
	header := r.Header.Get("Authorization")
	if header == "" && g.queryTokenPaths[r.URL.Path] {
		if t := r.URL.Query().Get("token"); t != "" {
			header = "Bearer " + t
		}
	}
	if !strings.HasPrefix(header, "Bearer") {
		return nil, nil
	}

	// 与 "Bearer <token>" 严格按单个空格切分，多余空格视为缺少令牌
	parts := strings.Split(header, " ")
	if len(parts) < 2 || parts[1] == "" {
		return nil, ErrMissingToken
	}

	claims, err := ParseToken(g.cfg, parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.AuthUser(), nil
}

// Middleware 网关中间件：校验通过时将 AuthUser 注入 context
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.Verify(r)
		if err != nil {
			log.Printf("[auth] %s %s rejected: %v", r.Method, r.URL.Path, err)
			writeGateError(w, err)
			return
		}
		if user != nil {
			r = r.WithContext(WithAuthUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth 要求已认证
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if GetAuthUser(r.Context()) == nil {
			writeGateError(w, ErrMissingToken)
			return
		}
		next(w, r)
	}
}

// ============================================================================
// 角色授权
// ============================================================================

// Authorize 用户角色在允许列表中时返回 nil
func Authorize(user *AuthUser, allowed ...string) error {
	if user == nil {
		return ErrForbidden
	}
	for _, role := range allowed {
		if user.Role == role {
			return nil
		}
	}
	return ErrForbidden
}

// RequireRoles 角色授权中间件，匿名请求与角色不符都返回 403
func RequireRoles(allowed ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if err := Authorize(GetAuthUser(r.Context()), allowed...); err != nil {
				writeGateError(w, err)
				return
			}
			next(w, r)
		}
	}
}

type gateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeGateError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(err))
	json.NewEncoder(w).Encode(gateResponse{Success: false, Message: gateMessage(err)})
}
